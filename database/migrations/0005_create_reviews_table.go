package migrations

import (
	"github.com/mkamalov/bazar/app/models"
	"github.com/mkamalov/bazar/pkg/migration"
	"gorm.io/gorm"
)

func init() {
	migration.Register("2025_01_10_000005_create_product_reviews_table", &createProductReviewsTable{})
}

type createProductReviewsTable struct{}

func (m *createProductReviewsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.ProductReview{})
}

func (m *createProductReviewsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.ProductReview{})
}
