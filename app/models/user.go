package models

import "gorm.io/gorm"

// User is the primary account model. Email and phone are both nullable
// because registration may verify either contact; at least one is set.
type User struct {
	gorm.Model
	Username      string  `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email         *string `gorm:"size:255;uniqueIndex" json:"email,omitempty"`
	Phone         *string `gorm:"size:32;uniqueIndex" json:"phone,omitempty"`
	Password      string  `gorm:"size:255;not null" json:"-"` // bcrypt hash, never serialised
	Role          string  `gorm:"size:50;not null;default:user" json:"role"`
	Bio           string  `gorm:"type:text" json:"bio"`
	AvatarPath    string  `gorm:"size:500" json:"avatar_path"`
	EmailVerified bool    `gorm:"not null;default:false" json:"email_verified"`
	PhoneVerified bool    `gorm:"not null;default:false" json:"phone_verified"`

	Seller *SellerProfile `gorm:"constraint:OnDelete:CASCADE" json:"seller,omitempty"`
}

// IsSeller reports whether the user has a seller profile. Presence of the
// profile is the capability that allows listing and managing products.
func (u *User) IsSeller() bool { return u.Seller != nil }

// SellerID returns the seller profile ID, or nil for plain buyers.
func (u *User) SellerID() *uint {
	if u.Seller == nil {
		return nil
	}
	return &u.Seller.ID
}

// SellerProfile marks a user as authorized to list and manage products.
type SellerProfile struct {
	gorm.Model
	UserID      uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	ShopName    string `gorm:"size:255;not null" json:"shop_name"`
	Description string `gorm:"type:text" json:"description"`
}
