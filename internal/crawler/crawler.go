// Package crawler drives a headless browser against one source storefront:
// discover candidate product links on the root page, fetch each detail page,
// extract a structured record heuristically, download images and emit the
// JSON/CSV export.
package crawler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/medkadi/boutik-scrap/internal/exporter"
	"github.com/medkadi/boutik-scrap/internal/extract"
	"github.com/medkadi/boutik-scrap/internal/models"
	"github.com/medkadi/boutik-scrap/internal/stealth"
)

// Config carries one crawl run's settings.
type Config struct {
	RootURL             string
	SourceSite          string
	UserAgent           string
	NavTimeout          time.Duration
	Attempts            int
	BaseDelay           time.Duration
	MaxDescriptionLines int
	ExportDir           string
	DryRun              bool
}

// Crawler owns a single sequential crawl run. The per-candidate loop is
// deliberately not parallelized: one shared pacer, one request in flight,
// nothing that looks like a burst to the source site.
type Crawler struct {
	cfg        Config
	pacer      *stealth.Pacer
	client     *http.Client
	classifier extract.PageClassifier
	log        *zap.Logger

	// Progress receives per-candidate "(i/total) slug" updates. Optional.
	Progress func(msg string)
}

// New creates a crawler. client is the throttled HTTP client used for image
// downloads; page navigation goes through the headless browser.
func New(cfg Config, pacer *stealth.Pacer, client *http.Client, classifier extract.PageClassifier, log *zap.Logger) *Crawler {
	if cfg.NavTimeout <= 0 {
		cfg.NavTimeout = 60 * time.Second
	}
	if cfg.MaxDescriptionLines <= 0 {
		cfg.MaxDescriptionLines = 6
	}
	if classifier == nil {
		classifier = extract.HeuristicClassifier{}
	}
	return &Crawler{cfg: cfg, pacer: pacer, client: client, classifier: classifier, log: log}
}

// Result summarizes one crawl run.
type Result struct {
	Products   []models.ScrapedProduct
	Candidates int
	Skipped    int
	JSONPath   string
	CSVPath    string
}

// Run executes the full crawl state machine. Browser launch and root
// navigation failures are fatal; a single candidate's detail fetch failing
// after retries is logged and skipped.
func (c *Crawler) Run(ctx context.Context) (*Result, error) {
	root, err := url.Parse(c.cfg.RootURL)
	if err != nil {
		return nil, fmt.Errorf("parse root url: %w", err)
	}

	sess, err := c.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	defer sess.close()

	anchors, err := stealth.Retry(ctx, c.log, "navigate root", c.cfg.Attempts, c.cfg.BaseDelay,
		func(ctx context.Context) ([]anchor, error) {
			return c.collectRootAnchors(ctx, sess)
		})
	if err != nil {
		return nil, err
	}

	candidates := filterCandidates(root, anchors)
	c.log.Info("candidates discovered",
		zap.Int("anchors", len(anchors)),
		zap.Int("candidates", len(candidates)))

	res := &Result{Candidates: len(candidates)}
	for i, cand := range candidates {
		c.progress(fmt.Sprintf("(%d/%d) %s", i+1, len(candidates), extract.Slugify(cand.Text)))

		detail, err := stealth.Retry(ctx, c.log, "detail "+cand.URL, c.cfg.Attempts, c.cfg.BaseDelay,
			func(ctx context.Context) (detailPage, error) {
				return c.fetchDetail(ctx, sess, cand.URL)
			})
		if err != nil {
			// Best-effort pipeline: one broken product page never aborts
			// the run.
			c.log.Warn("candidate skipped", zap.String("url", cand.URL), zap.Error(err))
			res.Skipped++
			continue
		}

		product := c.normalize(cand, detail)
		if err := c.downloadImages(ctx, &product); err != nil {
			c.log.Warn("image download incomplete", zap.String("slug", product.Slug), zap.Error(err))
		}
		res.Products = append(res.Products, product)
	}

	if err := c.emit(res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Crawler) emit(res *Result) error {
	if c.cfg.DryRun {
		if len(res.Products) > 0 {
			sample, _ := json.MarshalIndent(res.Products[0], "", "  ")
			fmt.Fprintf(os.Stdout, "dry run: %d products, sample record:\n%s\n", len(res.Products), sample)
		} else {
			fmt.Fprintln(os.Stdout, "dry run: no products extracted")
		}
		return nil
	}

	jsonPath, err := exporter.WriteJSON(c.cfg.ExportDir, res.Products)
	if err != nil {
		return err
	}
	csvPath, err := exporter.WriteCSV(c.cfg.ExportDir, res.Products)
	if err != nil {
		return err
	}
	res.JSONPath, res.CSVPath = jsonPath, csvPath
	return nil
}

func (c *Crawler) progress(msg string) {
	if c.Progress != nil {
		c.Progress(msg)
	}
}

// anchor is one link harvested from the root page.
type anchor struct {
	Href     string
	Text     string
	HasImage bool
}

// candidate is a deduplicated product-page link.
type candidate struct {
	URL  string
	Text string
}

// authPathParts mark links that are navigation chrome, not products.
var authPathParts = []string{
	"login", "logout", "register", "signin", "signup",
	"password", "account", "cart", "checkout", "admin",
}

// filterCandidates keeps same-origin anchors that carry an image and
// non-trivial text, excluding the root path and auth-related paths, deduped
// by URL in first-seen order.
func filterCandidates(root *url.URL, anchors []anchor) []candidate {
	rootPath := strings.TrimRight(root.Path, "/")
	seen := make(map[string]bool)
	var out []candidate

	for _, a := range anchors {
		if !a.HasImage || len(strings.TrimSpace(a.Text)) < 3 {
			continue
		}
		u, err := url.Parse(a.Href)
		if err != nil || u.Host != root.Host {
			continue
		}
		p := strings.TrimRight(u.Path, "/")
		if p == "" || p == rootPath {
			continue
		}
		if isAuthPath(p) {
			continue
		}

		u.Fragment = ""
		key := u.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, candidate{URL: key, Text: strings.TrimSpace(a.Text)})
	}
	return out
}

func isAuthPath(p string) bool {
	lower := strings.ToLower(p)
	for _, part := range authPathParts {
		if strings.Contains(lower, part) {
			return true
		}
	}
	return false
}

// detailPage is what one product page yields after rendering.
type detailPage struct {
	Title  string
	Text   string
	Images []string
}

// normalize merges the anchor text with the rendered detail page into a
// ScrapedProduct. The detail page's title wins over the anchor text; slug and
// delivery tag are recomputed against the merged text.
func (c *Crawler) normalize(cand candidate, d detailPage) models.ScrapedProduct {
	name := strings.TrimSpace(d.Title)
	if name == "" {
		name = firstLine(cand.Text)
	}
	if name == "" {
		name = "Produit"
	}

	merged := cand.Text + "\n" + d.Title + "\n" + d.Text

	p := models.ScrapedProduct{
		Name:        name,
		Slug:        extract.Slugify(name),
		Description: capLines(d.Text, c.cfg.MaxDescriptionLines),
		Stock:       models.DefaultStock,
		Status:      models.StatusDraft,
		TagDelivery: c.classifier.DeliveryTag(merged),
		Categories:  c.classifier.Categories(d.Text, name),
	}
	if price, ok := extract.Price(merged); ok {
		p.Price = price
	}
	p.Metadata = map[string]any{
		models.MetaSourceURL:  cand.URL,
		models.MetaSourceSite: c.cfg.SourceSite,
		models.MetaSourceKey:  models.SourceKey(c.cfg.SourceSite, p.Slug),
	}

	for i, img := range dedupeStrings(d.Images) {
		p.Images = append(p.Images, models.ImageRef{URL: img, Alt: name, Sort: i})
	}
	return p
}

// capLines truncates text to at most n non-empty lines so a page's full body
// text never leaks into the description.
func capLines(text string, n int) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
		if len(lines) == n {
			break
		}
	}
	return strings.Join(lines, "\n")
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// imageFileName derives the export filename for a product image: slug,
// position and the URL's extension, defaulting to .jpg when the URL has none
// or something unusable.
func imageFileName(slug string, idx int, rawURL string) string {
	ext := ".jpg"
	if u, err := url.Parse(rawURL); err == nil {
		if e := strings.ToLower(path.Ext(u.Path)); e != "" && len(e) <= 5 {
			ext = e
		}
	}
	return fmt.Sprintf("%s-%d%s", slug, idx, ext)
}
