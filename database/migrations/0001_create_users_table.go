// Package migrations registers the schema history. Files run in
// registration-name order; each one must also know how to undo itself.
package migrations

import (
	"github.com/mkamalov/bazar/app/models"
	"github.com/mkamalov/bazar/pkg/migration"
	"gorm.io/gorm"
)

func init() {
	migration.Register("2025_01_10_000001_create_users_table", &createUsersTable{})
}

type createUsersTable struct{}

func (m *createUsersTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{}, &models.SellerProfile{})
}

func (m *createUsersTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.SellerProfile{}, &models.User{})
}
