package migrations

import (
	"github.com/mkamalov/bazar/app/models"
	"github.com/mkamalov/bazar/pkg/migration"
	"gorm.io/gorm"
)

func init() {
	migration.Register("2025_01_10_000002_create_categories_table", &createCategoriesTable{})
}

type createCategoriesTable struct{}

func (m *createCategoriesTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Category{})
}

func (m *createCategoriesTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.Category{})
}
