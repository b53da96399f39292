package repositories

import (
	"github.com/mkamalov/bazar/app/models"
	"github.com/mkamalov/bazar/pkg/pagination"
	"gorm.io/gorm"
)

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// FindOrCreate returns the chat between the two users, creating it if
// absent. Callers must pass a normalized pair (user1 < user2).
func (r *ChatRepository) FindOrCreate(user1ID, user2ID uint) (models.Chat, error) {
	var chat models.Chat
	err := r.db.Where("user1_id = ? AND user2_id = ?", user1ID, user2ID).First(&chat).Error
	if err == nil {
		return chat, nil
	}
	if err != gorm.ErrRecordNotFound {
		return chat, err
	}

	chat = models.Chat{User1ID: user1ID, User2ID: user2ID}
	if err := r.db.Create(&chat).Error; err != nil {
		// A concurrent request may have created the pair first.
		var existing models.Chat
		if ferr := r.db.Where("user1_id = ? AND user2_id = ?", user1ID, user2ID).First(&existing).Error; ferr == nil {
			return existing, nil
		}
		return chat, err
	}
	return chat, nil
}

func (r *ChatRepository) FindByID(id uint) (models.Chat, error) {
	var chat models.Chat
	err := r.db.First(&chat, id).Error
	return chat, err
}

// ForUser lists chats the user participates in, most recently updated first.
func (r *ChatRepository) ForUser(userID uint) ([]models.Chat, error) {
	var chats []models.Chat
	err := r.db.Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("updated_at desc").
		Find(&chats).Error
	return chats, err
}

// Messages returns a chat's messages, newest first, paginated.
func (r *ChatRepository) Messages(chatID uint, page, perPage int) ([]models.ChatMessage, pagination.Pagination, error) {
	query := r.db.Model(&models.ChatMessage{}).
		Where("chat_id = ?", chatID).
		Order("created_at desc")

	var messages []models.ChatMessage
	p, err := pagination.Paginate(query, page, perPage, &messages)
	return messages, p, err
}

func (r *ChatRepository) AddMessage(message *models.ChatMessage) error {
	if err := r.db.Create(message).Error; err != nil {
		return err
	}
	// Bump the chat so ForUser ordering reflects activity.
	return r.db.Model(&models.Chat{}).Where("id = ?", message.ChatID).
		Update("updated_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
}
