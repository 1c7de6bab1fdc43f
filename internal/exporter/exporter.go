// Package exporter writes the crawl results to disk: a full JSON dump for
// the importer and a flattened CSV summary for operators.
package exporter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/medkadi/boutik-scrap/internal/models"
)

const (
	JSONFileName = "products.json"
	CSVFileName  = "products.csv"
)

// csvRow is the flattened per-product summary line.
type csvRow struct {
	Name        string  `csv:"name"`
	Slug        string  `csv:"slug"`
	Price       float64 `csv:"price"`
	TagDelivery string  `csv:"tag_delivery"`
	Categories  string  `csv:"categories"`
	Images      string  `csv:"images"`
	SourceURL   string  `csv:"source_url"`
}

// WriteJSON serializes products to <dir>/products.json and returns the path.
func WriteJSON(dir string, products []models.ScrapedProduct) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	data, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal products: %w", err)
	}

	path := filepath.Join(dir, JSONFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// WriteCSV writes the flattened summary to <dir>/products.csv. Multi-valued
// columns are pipe-joined.
func WriteCSV(dir string, products []models.ScrapedProduct) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	rows := make([]csvRow, 0, len(products))
	for _, p := range products {
		imgs := make([]string, 0, len(p.Images))
		for _, img := range p.Images {
			imgs = append(imgs, img.URL)
		}
		rows = append(rows, csvRow{
			Name:        p.Name,
			Slug:        p.Slug,
			Price:       p.Price,
			TagDelivery: p.TagDelivery,
			Categories:  strings.Join(p.Categories, "|"),
			Images:      strings.Join(imgs, "|"),
			SourceURL:   sourceURL(p),
		})
	}

	path := filepath.Join(dir, CSVFileName)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(&rows, f); err != nil {
		return "", fmt.Errorf("write csv: %w", err)
	}
	return path, nil
}

func sourceURL(p models.ScrapedProduct) string {
	if v, ok := p.Metadata[models.MetaSourceURL].(string); ok {
		return v
	}
	return ""
}
