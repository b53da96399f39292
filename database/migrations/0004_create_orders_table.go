package migrations

import (
	"github.com/mkamalov/bazar/app/models"
	"github.com/mkamalov/bazar/pkg/migration"
	"gorm.io/gorm"
)

func init() {
	migration.Register("2025_01_10_000004_create_orders_table", &createOrdersTable{})
}

type createOrdersTable struct{}

func (m *createOrdersTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Order{}, &models.OrderItem{})
}

func (m *createOrdersTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.OrderItem{}, &models.Order{})
}
