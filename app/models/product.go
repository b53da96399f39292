package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a catalog listing owned by a seller. Quantity is mutated only
// by the inventory adjuster inside order transactions; listings are
// soft-disabled via IsActive rather than hard-deleted in the normal flow.
type Product struct {
	gorm.Model
	SellerID    uint             `gorm:"not null;index" json:"seller_id"`
	CategoryID  *uint            `gorm:"index" json:"category_id,omitempty"`
	Title       string           `gorm:"size:255;not null;index" json:"title"`
	Slug        string           `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Description string           `gorm:"type:text" json:"description"`
	Price       decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"price"`
	OldPrice    *decimal.Decimal `gorm:"type:decimal(10,2)" json:"old_price,omitempty"`
	Quantity    uint             `gorm:"not null;default:0" json:"quantity"`
	// No default tag: gorm would skip the zero value on insert and an
	// explicitly inactive listing would be stored active.
	IsActive bool `gorm:"not null" json:"is_active"`

	Category *Category      `gorm:"constraint:OnDelete:SET NULL" json:"category,omitempty"`
	Images   []ProductImage `gorm:"constraint:OnDelete:CASCADE" json:"images,omitempty"`
}

// ProductImage is one uploaded image of a product, stored through the
// storage manager; Path is relative to the configured disk.
type ProductImage struct {
	gorm.Model
	ProductID uint   `gorm:"not null;index" json:"product_id"`
	Path      string `gorm:"size:500;not null" json:"path"`
	AltText   string `gorm:"size:255" json:"alt_text"`
	SortOrder int    `gorm:"not null;default:0" json:"sort_order"`
}
