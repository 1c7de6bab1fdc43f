// Package extract holds the pure text heuristics used by the crawler and the
// importer: slug derivation, price and category harvesting, and the
// delivery-availability tag. No I/O happens here.
package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/medkadi/boutik-scrap/internal/models"
)

// SlugFallback is returned when the input collapses to nothing after
// normalization.
const SlugFallback = "produit"

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns arbitrary text into a lowercase, ASCII-folded, hyphenated
// identifier. It never returns an empty string and is idempotent.
func Slugify(s string) string {
	// NFD + strip combining marks folds "é" to "e", "ï" to "i", etc.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	out := strings.ToLower(folded)
	out = slugStrip.ReplaceAllString(out, "-")
	out = strings.Trim(out, "-")
	if out == "" {
		return SlugFallback
	}
	return out
}

// priceRe matches a numeric token immediately followed by a currency marker.
// Thousands may be separated by spaces (incl. non-breaking), decimals by
// comma or dot.
var priceRe = regexp.MustCompile(`(?i)(\d[\d\s\x{00a0}.,]*)\s*(€|eur|\$|usd|mad|dhs?)`)

// Price scans text for the first price-looking token. The second return is
// false when no price was found.
func Price(text string) (float64, bool) {
	m := priceRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	return parseAmount(m[1])
}

// parseAmount normalizes a locale-formatted amount ("1 299,50", "1.299,50",
// "129.90") into a float. The last dot or comma is treated as the decimal
// separator when it is followed by at most two digits; everything else is a
// thousands separator.
func parseAmount(s string) (float64, bool) {
	s = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\u00a0' {
			return -1
		}
		return r
	}, s)
	s = strings.Trim(s, ".,")
	if s == "" {
		return 0, false
	}

	sep := strings.LastIndexAny(s, ".,")
	intPart, frac := s, ""
	if sep >= 0 && len(s)-sep-1 <= 2 {
		intPart, frac = s[:sep], s[sep+1:]
	}
	intPart = strings.NewReplacer(".", "", ",", "").Replace(intPart)

	num := intPart
	if frac != "" {
		num = intPart + "." + frac
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// stockKeywords mark a product as ready to ship when present anywhere in the
// combined name+description text. Case-insensitive substring match.
var stockKeywords = []string{"en stock", "disponible", "in stock", "available"}

// DeliveryTag classifies text as READY_TO_SHIP or ON_ORDER.
func DeliveryTag(text string) string {
	lower := strings.ToLower(text)
	for _, kw := range stockKeywords {
		if strings.Contains(lower, kw) {
			return models.TagReadyToShip
		}
	}
	return models.TagOnOrder
}

const (
	maxCategoryRunes = 40
	maxCategories    = 3
)

// Categories harvests short candidate lines from surrounding page text that
// look like category labels: not the product name, not a price, not an
// availability phrase. Best-effort enrichment only; the output is expected to
// be reviewed by an operator before it becomes catalog truth.
func Categories(text, productName string) []string {
	nameSlug := Slugify(productName)
	seen := make(map[string]bool)
	var out []string

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || len([]rune(line)) >= maxCategoryRunes {
			continue
		}
		if strings.EqualFold(line, productName) {
			continue
		}
		if _, ok := Price(line); ok {
			continue
		}
		if DeliveryTag(line) == models.TagReadyToShip {
			continue
		}
		slug := Slugify(line)
		if slug == SlugFallback || slug == nameSlug || seen[slug] {
			continue
		}
		seen[slug] = true
		out = append(out, line)
		if len(out) >= maxCategories {
			break
		}
	}
	return out
}

// PageClassifier is the pluggable seam over the text heuristics. The defaults
// are tuned to one source site's layout; a new target site swaps the
// classifier without touching the crawl loop.
type PageClassifier interface {
	Categories(text, productName string) []string
	DeliveryTag(text string) string
}

// HeuristicClassifier is the default PageClassifier backed by the package
// functions.
type HeuristicClassifier struct{}

func (HeuristicClassifier) Categories(text, productName string) []string {
	return Categories(text, productName)
}

func (HeuristicClassifier) DeliveryTag(text string) string {
	return DeliveryTag(text)
}
