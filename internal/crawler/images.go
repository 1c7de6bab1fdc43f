package crawler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/medkadi/boutik-scrap/internal/httputil"
	"github.com/medkadi/boutik-scrap/internal/models"
	"github.com/medkadi/boutik-scrap/internal/stealth"
)

// downloadImages fetches every unique image of the product and rewrites the
// image list to relative export paths. In dry-run mode the paths are recorded
// without fetching or writing anything. No per-product cap applies at crawl
// time; the importer caps at persist time.
func (c *Crawler) downloadImages(ctx context.Context, p *models.ScrapedProduct) error {
	var failures []error

	for i := range p.Images {
		name := imageFileName(p.Slug, i, p.Images[i].URL)
		relPath := filepath.ToSlash(filepath.Join("images", name))

		if !c.cfg.DryRun {
			remote := p.Images[i].URL
			if err := c.fetchImage(ctx, remote, name); err != nil {
				failures = append(failures, fmt.Errorf("%s: %w", remote, err))
				continue
			}
		}
		p.Images[i].URL = relPath
	}
	return errors.Join(failures...)
}

func (c *Crawler) fetchImage(ctx context.Context, remote, name string) error {
	_, err := stealth.Retry(ctx, c.log, "image "+remote, c.cfg.Attempts, c.cfg.BaseDelay,
		func(ctx context.Context) (struct{}, error) {
			if err := c.pacer.Wait(ctx); err != nil {
				return struct{}{}, err
			}
			data, _, err := httputil.Fetch(ctx, c.client, remote)
			if err != nil {
				return struct{}{}, err
			}

			dir := filepath.Join(c.cfg.ExportDir, "images")
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return struct{}{}, err
			}
			return struct{}{}, os.WriteFile(filepath.Join(dir, name), data, 0o644)
		})
	return err
}
