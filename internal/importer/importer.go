// Package importer consumes crawler exports (or equivalent ad hoc JSON
// payloads) and writes catalog records: validate, dedup by source key,
// resolve categories, optionally mirror remote images into local storage.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cast"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/medkadi/boutik-scrap/internal/catalog"
	"github.com/medkadi/boutik-scrap/internal/extract"
	"github.com/medkadi/boutik-scrap/internal/models"
	"github.com/medkadi/boutik-scrap/internal/storage"
)

// Catalog is the slice of the catalog store the importer depends on.
type Catalog interface {
	FindBySlug(ctx context.Context, slug string) (*catalog.Product, error)
	FindBySourceKey(ctx context.Context, key string) (*catalog.Product, error)
	FindBySourceURL(ctx context.Context, url string) (*catalog.Product, error)
	UniqueSlug(ctx context.Context, base string) (string, error)
	Create(ctx context.Context, p *catalog.Product) error
	ReplaceImages(ctx context.Context, productID uint, images []catalog.ProductImage) error
	FirstOrCreateCategory(ctx context.Context, slug, name string) (*catalog.Category, error)
	SyncCategories(ctx context.Context, productID uint, categories []catalog.Category) error
}

// Options control one import batch.
type Options struct {
	DryRun         bool
	SkipExisting   bool
	DownloadImages bool
	SourceSite     string
}

// ItemError reports a failed record by its batch index.
type ItemError struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// Summary is the batch result handed back to the operator. The batch itself
// always succeeds; failures live in Errors.
type Summary struct {
	DryRun  bool        `json:"dry_run"`
	Created int         `json:"created"`
	Skipped int         `json:"skipped"`
	Errors  []ItemError `json:"errors"`
}

const downloadTimeout = 25 * time.Second

// Importer runs import batches against a catalog store.
type Importer struct {
	catalog Catalog
	store   storage.Storage
	client  *resty.Client
	log     *zap.Logger
}

// New creates an importer. The download client spoofs a browser user agent:
// several image CDNs refuse requests without one.
func New(cat Catalog, store storage.Storage, log *zap.Logger) *Importer {
	client := resty.New().
		SetTimeout(downloadTimeout).
		SetHeader("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36")
	return &Importer{catalog: cat, store: store, client: client, log: log}
}

// Run processes a batch of loosely typed product records. Records are handled
// sequentially and independently; one record's failure never aborts the
// batch, it lands in the summary's error list under the record's index.
func (im *Importer) Run(ctx context.Context, records []map[string]any, opts Options) Summary {
	sum := Summary{DryRun: opts.DryRun, Errors: []ItemError{}}

	for i, rec := range records {
		created, skipped, err := im.importOne(ctx, rec, opts)
		if created {
			sum.Created++
		}
		if skipped {
			sum.Skipped++
		}
		if err != nil {
			sum.Errors = append(sum.Errors, ItemError{Index: i, Message: err.Error()})
		}
	}

	im.log.Info("import batch done",
		zap.Bool("dry_run", sum.DryRun),
		zap.Int("created", sum.Created),
		zap.Int("skipped", sum.Skipped),
		zap.Int("errors", len(sum.Errors)))
	return sum
}

// importOne handles a single record. created can be true alongside a non-nil
// error: the product row is inserted before image work, and a failed image
// download leaves the product imageless rather than rolling it back.
func (im *Importer) importOne(ctx context.Context, rec map[string]any, opts Options) (created, skipped bool, err error) {
	name := strings.TrimSpace(cast.ToString(rec["name"]))
	if name == "" {
		return false, false, fmt.Errorf("missing name")
	}

	baseSlug := strings.TrimSpace(cast.ToString(rec["slug"]))
	if baseSlug == "" {
		baseSlug = name
	}
	baseSlug = extract.Slugify(baseSlug)

	meta := cast.ToStringMap(rec["metadata"])
	if meta == nil {
		meta = map[string]any{}
	}
	sourceURL := cast.ToString(rec[models.MetaSourceURL])
	if sourceURL == "" {
		sourceURL = cast.ToString(meta[models.MetaSourceURL])
	}

	var sourceKey string
	if opts.SourceSite != "" {
		sourceKey = models.SourceKey(opts.SourceSite, baseSlug)
	}

	if opts.SkipExisting {
		existing, lookErr := im.findExisting(ctx, sourceKey, sourceURL)
		if lookErr != nil {
			return false, false, lookErr
		}
		if existing != nil {
			return false, true, nil
		}
	}

	// Dry run stops here: counted as created, nothing persisted, no image or
	// category work.
	if opts.DryRun {
		return true, false, nil
	}

	slug, err := im.catalog.UniqueSlug(ctx, baseSlug)
	if err != nil {
		return false, false, err
	}

	// Provenance wins over caller-supplied keys of the same name; everything
	// else in the caller's metadata survives the merge.
	if sourceURL != "" {
		meta[models.MetaSourceURL] = sourceURL
	}
	if opts.SourceSite != "" {
		meta[models.MetaSourceSite] = opts.SourceSite
		meta[models.MetaSourceKey] = sourceKey
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return false, false, fmt.Errorf("encode metadata: %w", err)
	}

	product := &catalog.Product{
		Name:        name,
		Slug:        slug,
		Description: extract.TextFromHTML(cast.ToString(rec["description"])),
		Price:       cast.ToFloat64(rec["price"]),
		Stock:       models.DefaultStock,
		Status:      models.StatusDraft,
		TagDelivery: cast.ToString(rec["tag_delivery"]),
		SKU:         cast.ToString(rec["sku"]),
		Featured:    cast.ToBool(rec["featured"]),
		IsPromo:     cast.ToBool(rec["is_promo"]),
		Metadata:    datatypes.JSON(metaJSON),
	}
	if v, ok := rec["compare_at_price"]; ok && v != nil {
		ref := cast.ToFloat64(v)
		product.CompareAtPrice = &ref
	}
	if v, ok := rec["stock"]; ok && v != nil {
		product.Stock = cast.ToInt(v)
	}
	if cast.ToString(rec["status"]) == models.StatusActive {
		product.Status = models.StatusActive
	}
	if product.TagDelivery == "" {
		product.TagDelivery = extract.DeliveryTag(name + "\n" + product.Description)
	}
	if v, ok := rec["delivery_delay_days"]; ok && v != nil {
		days := cast.ToInt(v)
		product.DeliveryDelayDays = &days
	}

	if err := im.catalog.Create(ctx, product); err != nil {
		return false, false, fmt.Errorf("insert product: %w", err)
	}
	created = true

	if err := im.syncCategories(ctx, product.ID, rec["categories"]); err != nil {
		return created, false, err
	}

	if err := im.attachImages(ctx, product, rec["images"], opts); err != nil {
		return created, false, err
	}
	return created, false, nil
}

func (im *Importer) findExisting(ctx context.Context, sourceKey, sourceURL string) (*catalog.Product, error) {
	if sourceKey != "" {
		return im.catalog.FindBySourceKey(ctx, sourceKey)
	}
	if sourceURL != "" {
		return im.catalog.FindBySourceURL(ctx, sourceURL)
	}
	return nil, nil
}

// syncCategories resolves category names/slugs to persisted rows with
// create-if-absent semantics and replaces the product's associations.
func (im *Importer) syncCategories(ctx context.Context, productID uint, raw any) error {
	names := cast.ToStringSlice(raw)
	if len(names) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var cats []catalog.Category
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		slug := extract.Slugify(n)
		if seen[slug] {
			continue
		}
		seen[slug] = true

		c, err := im.catalog.FirstOrCreateCategory(ctx, slug, n)
		if err != nil {
			return fmt.Errorf("resolve category %q: %w", n, err)
		}
		cats = append(cats, *c)
	}
	if len(cats) == 0 {
		return nil
	}
	if err := im.catalog.SyncCategories(ctx, productID, cats); err != nil {
		return fmt.Errorf("sync categories: %w", err)
	}
	return nil
}
