package migrations

import (
	"github.com/mkamalov/bazar/app/models"
	"github.com/mkamalov/bazar/pkg/migration"
	"gorm.io/gorm"
)

func init() {
	migration.Register("2025_01_10_000006_create_chats_table", &createChatsTable{})
}

type createChatsTable struct{}

func (m *createChatsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Chat{}, &models.ChatMessage{})
}

func (m *createChatsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.ChatMessage{}, &models.Chat{})
}
