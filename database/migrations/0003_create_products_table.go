package migrations

import (
	"github.com/mkamalov/bazar/app/models"
	"github.com/mkamalov/bazar/pkg/migration"
	"gorm.io/gorm"
)

func init() {
	migration.Register("2025_01_10_000003_create_products_table", &createProductsTable{})
}

type createProductsTable struct{}

func (m *createProductsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Product{}, &models.ProductImage{})
}

func (m *createProductsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.ProductImage{}, &models.Product{})
}
