package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/medkadi/boutik-scrap/internal/models"
)

// Store wraps the gorm handle with the catalog operations the importer uses.
type Store struct {
	db *gorm.DB
}

// Open connects to Postgres, configures the pool and migrates the catalog
// tables.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Product{}, &Category{}, &ProductImage{}); err != nil {
		return nil, fmt.Errorf("migrate catalog tables: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStore wraps an existing gorm handle. Tables must already be migrated;
// tests use this with an in-memory sqlite database.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the catalog tables on the given handle.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Product{}, &Category{}, &ProductImage{})
}

// FindBySlug returns the product with the given slug, or nil when absent.
func (s *Store) FindBySlug(ctx context.Context, slug string) (*Product, error) {
	var p Product
	err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindBySourceKey returns the product whose metadata carries the given
// source_key, or nil when absent.
func (s *Store) FindBySourceKey(ctx context.Context, key string) (*Product, error) {
	return s.findByMetadata(ctx, models.MetaSourceKey, key)
}

// FindBySourceURL returns the product whose metadata carries the given
// source_url, or nil when absent.
func (s *Store) FindBySourceURL(ctx context.Context, url string) (*Product, error) {
	return s.findByMetadata(ctx, models.MetaSourceURL, url)
}

func (s *Store) findByMetadata(ctx context.Context, field, value string) (*Product, error) {
	var p Product
	err := s.db.WithContext(ctx).
		Where(datatypes.JSONQuery("metadata").Equals(value, field)).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UniqueSlug resolves base to a slug no existing product carries, appending
// -2, -3, ... deterministically. The read-then-probe loop races under truly
// concurrent importers; imports are operator-triggered, so that is accepted.
func (s *Store) UniqueSlug(ctx context.Context, base string) (string, error) {
	slug := base
	for i := 2; ; i++ {
		existing, err := s.FindBySlug(ctx, slug)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

// Create inserts a product row.
func (s *Store) Create(ctx context.Context, p *Product) error {
	return s.db.WithContext(ctx).Create(p).Error
}

// ReplaceImages swaps the product's image set atomically: existing rows are
// deleted and the new ordered set inserted inside one transaction, so no
// partial/mixed state survives.
func (s *Store) ReplaceImages(ctx context.Context, productID uint, images []ProductImage) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&ProductImage{}).Error; err != nil {
			return err
		}
		if len(images) == 0 {
			return nil
		}
		for i := range images {
			images[i].ProductID = productID
		}
		return tx.Create(&images).Error
	})
}

// FirstOrCreateCategory looks a category up by slug, creating it with the
// given display name when absent.
func (s *Store) FirstOrCreateCategory(ctx context.Context, slug, name string) (*Category, error) {
	var c Category
	err := s.db.WithContext(ctx).
		Where(Category{Slug: slug}).
		Attrs(Category{Name: name}).
		FirstOrCreate(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// SyncCategories replaces the product's category associations.
func (s *Store) SyncCategories(ctx context.Context, productID uint, categories []Category) error {
	return s.db.WithContext(ctx).
		Model(&Product{ID: productID}).
		Association("Categories").
		Replace(categories)
}

// CountProducts is used by tests and the import summary log line.
func (s *Store) CountProducts(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Product{}).Count(&n).Error
	return n, err
}
