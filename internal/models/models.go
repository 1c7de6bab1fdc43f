package models

// Product status values.
const (
	StatusDraft  = "draft"
	StatusActive = "active"
)

// Delivery tags derived heuristically from page text. Best-effort signals,
// not authoritative inventory data.
const (
	TagReadyToShip = "READY_TO_SHIP"
	TagOnOrder     = "ON_ORDER"
)

// DefaultStock is the sentinel quantity used when the source site exposes no
// inventory signal. The catalog is a marketplace inventory proxy, not true
// stock tracking.
const DefaultStock = 999

// MaxImagesPerProduct bounds how many images the importer will persist for a
// single product.
const MaxImagesPerProduct = 10

// ImageRef points at one product image, either a remote URL or a relative
// export path produced by the crawler.
type ImageRef struct {
	URL  string `json:"url"`
	Alt  string `json:"alt,omitempty"`
	Sort int    `json:"sort_order"`
}

// ScrapedProduct is the interchange record produced by the crawler and
// consumed by the importer. It is created fresh on every crawl run and lives
// only in the export file.
type ScrapedProduct struct {
	Name              string         `json:"name"`
	Slug              string         `json:"slug"`
	Description       string         `json:"description,omitempty"`
	Price             float64        `json:"price"`
	CompareAtPrice    *float64       `json:"compare_at_price,omitempty"`
	Stock             int            `json:"stock"`
	Status            string         `json:"status"`
	TagDelivery       string         `json:"tag_delivery"`
	DeliveryDelayDays *int           `json:"delivery_delay_days,omitempty"`
	SKU               string         `json:"sku,omitempty"`
	Metadata          map[string]any `json:"metadata,omitempty"`
	Featured          bool           `json:"featured"`
	IsPromo           bool           `json:"is_promo"`
	Categories        []string       `json:"categories,omitempty"`
	Images            []ImageRef     `json:"images,omitempty"`
}

// Provenance keys carried in ScrapedProduct.Metadata. SourceKey
// (source_site + "|" + slug) is the primary dedup identity on re-import;
// SourceURL is the fallback when no key is computable.
const (
	MetaSourceURL  = "source_url"
	MetaSourceSite = "source_site"
	MetaSourceKey  = "source_key"
)

// SourceKey builds the composite import identity for a product slug.
func SourceKey(sourceSite, slug string) string {
	return sourceSite + "|" + slug
}
