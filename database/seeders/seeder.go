// Package seeders fills a fresh database with a small demo marketplace:
// an admin, two sellers with stocked products, a buyer, and a category
// tree. Intended for local development, not production.
package seeders

import (
	"fmt"

	"github.com/mkamalov/bazar/app/models"
	"github.com/mkamalov/bazar/pkg/auth"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run executes every seeder inside one transaction.
func Run(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		users, err := seedUsers(tx)
		if err != nil {
			return err
		}
		categories, err := seedCategories(tx)
		if err != nil {
			return err
		}
		return seedProducts(tx, users, categories)
	})
}

type seededUsers struct {
	sellerOne models.SellerProfile
	sellerTwo models.SellerProfile
}

func seedUsers(tx *gorm.DB) (seededUsers, error) {
	hash, err := auth.HashPassword("password")
	if err != nil {
		return seededUsers{}, err
	}

	admin := models.User{Username: "admin", Password: hash, Role: "admin"}
	adminMail := "admin@bazar.local"
	admin.Email = &adminMail
	admin.EmailVerified = true
	if err := tx.Create(&admin).Error; err != nil {
		return seededUsers{}, err
	}

	buyer := models.User{Username: "buyer", Password: hash, Role: "user"}
	buyerMail := "buyer@bazar.local"
	buyer.Email = &buyerMail
	buyer.EmailVerified = true
	if err := tx.Create(&buyer).Error; err != nil {
		return seededUsers{}, err
	}

	out := seededUsers{}
	for i, shop := range []string{"Silk Road Goods", "Chorsu Electronics"} {
		user := models.User{
			Username: fmt.Sprintf("seller%d", i+1),
			Password: hash,
			Role:     "user",
		}
		mail := fmt.Sprintf("seller%d@bazar.local", i+1)
		user.Email = &mail
		user.EmailVerified = true
		if err := tx.Create(&user).Error; err != nil {
			return seededUsers{}, err
		}

		profile := models.SellerProfile{UserID: user.ID, ShopName: shop}
		if err := tx.Create(&profile).Error; err != nil {
			return seededUsers{}, err
		}
		if i == 0 {
			out.sellerOne = profile
		} else {
			out.sellerTwo = profile
		}
	}
	return out, nil
}

type seededCategories struct {
	electronics models.Category
	clothing    models.Category
	phones      models.Category
}

func seedCategories(tx *gorm.DB) (seededCategories, error) {
	electronics := models.Category{Name: "Electronics", Slug: "electronics", IsActive: true}
	if err := tx.Create(&electronics).Error; err != nil {
		return seededCategories{}, err
	}
	clothing := models.Category{Name: "Clothing", Slug: "clothing", IsActive: true, SortOrder: 1}
	if err := tx.Create(&clothing).Error; err != nil {
		return seededCategories{}, err
	}
	phones := models.Category{Name: "Phones", Slug: "phones", ParentID: &electronics.ID, IsActive: true}
	if err := tx.Create(&phones).Error; err != nil {
		return seededCategories{}, err
	}
	return seededCategories{electronics: electronics, clothing: clothing, phones: phones}, nil
}

func seedProducts(tx *gorm.DB, users seededUsers, cats seededCategories) error {
	old := decimal.NewFromInt(899)
	items := []models.Product{
		{
			SellerID:   users.sellerTwo.ID,
			CategoryID: &cats.phones.ID,
			Title:      "Redmi Note 13",
			Slug:       "redmi-note-13-demo",
			Price:      decimal.NewFromInt(799),
			OldPrice:   &old,
			Quantity:   25,
			IsActive:   true,
		},
		{
			SellerID:   users.sellerTwo.ID,
			CategoryID: &cats.electronics.ID,
			Title:      "Bluetooth Speaker",
			Slug:       "bluetooth-speaker-demo",
			Price:      decimal.NewFromFloat(49.90),
			Quantity:   100,
			IsActive:   true,
		},
		{
			SellerID:   users.sellerOne.ID,
			CategoryID: &cats.clothing.ID,
			Title:      "Silk Scarf",
			Slug:       "silk-scarf-demo",
			Price:      decimal.NewFromFloat(19.50),
			Quantity:   40,
			IsActive:   true,
		},
	}
	for i := range items {
		if err := tx.Create(&items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
