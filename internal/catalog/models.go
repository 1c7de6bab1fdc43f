// Package catalog is the importer's boundary with the storefront database:
// product, category and image records plus the handful of operations the
// import pipeline needs. The rest of the storefront schema lives elsewhere.
package catalog

import (
	"time"

	"gorm.io/datatypes"
)

// Product is a persisted catalog product. Slug is the globally unique public
// identity; Metadata carries import provenance (source_url, source_site,
// source_key) along with arbitrary operator-supplied keys.
type Product struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Name              string  `gorm:"size:255;not null"`
	Slug              string  `gorm:"size:255;uniqueIndex;not null"`
	Description       string  `gorm:"type:text"`
	Price             float64 `gorm:"default:0"`
	CompareAtPrice    *float64
	Stock             int    `gorm:"default:999"`
	Status            string `gorm:"size:20;default:draft"`
	TagDelivery       string `gorm:"size:20"`
	DeliveryDelayDays *int
	SKU               string         `gorm:"size:100;index"`
	Featured          bool           `gorm:"default:false"`
	IsPromo           bool           `gorm:"default:false"`
	Metadata          datatypes.JSON `gorm:"type:json"`

	Categories []Category     `gorm:"many2many:product_categories"`
	Images     []ProductImage `gorm:"foreignKey:ProductID"`
}

func (Product) TableName() string { return "products" }

// Category is created on demand during import; slug is the stable identity.
type Category struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Name        string `gorm:"size:255;not null"`
	Slug        string `gorm:"size:255;uniqueIndex;not null"`
	Description string `gorm:"type:text"`
	ImageURL    string `gorm:"size:512"`
}

func (Category) TableName() string { return "categories" }

// ProductImage rows are fully replaced (delete + recreate) on every import
// run that supplies images for the product.
type ProductImage struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time

	ProductID uint   `gorm:"index;not null"`
	URL       string `gorm:"size:512;not null"`
	Alt       string `gorm:"size:255"`
	SortOrder int    `gorm:"default:0"`
}

func (ProductImage) TableName() string { return "product_images" }
