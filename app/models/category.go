package models

import "gorm.io/gorm"

// Category is a node in the catalog tree. ParentID is nil for roots.
// The category service rejects parent chains that would form a cycle.
type Category struct {
	gorm.Model
	Name      string `gorm:"size:255;not null" json:"name"`
	Slug      string `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	ParentID  *uint  `gorm:"index" json:"parent_id,omitempty"`
	IsActive  bool   `gorm:"not null" json:"is_active"` // default set in the service, see Product.IsActive
	SortOrder int    `gorm:"not null;default:0" json:"sort_order"`

	Parent   *Category  `gorm:"foreignKey:ParentID" json:"-"`
	Children []Category `gorm:"foreignKey:ParentID" json:"children,omitempty"`
}
