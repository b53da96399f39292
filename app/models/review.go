package models

import "gorm.io/gorm"

// ProductReview is a buyer's rating of a product. One review per
// (product, user) pair; unapproved reviews are hidden from public
// listings until an admin approves them.
type ProductReview struct {
	gorm.Model
	ProductID  uint   `gorm:"not null;uniqueIndex:idx_product_user" json:"product_id"`
	UserID     uint   `gorm:"not null;uniqueIndex:idx_product_user" json:"user_id"`
	Rating     int    `gorm:"not null" json:"rating"` // 1..5, validated at the boundary
	Comment    string `gorm:"type:text" json:"comment"`
	IsApproved bool   `gorm:"not null;default:false;index" json:"is_approved"`
}
