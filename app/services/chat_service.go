package services

import (
	"encoding/json"
	"time"

	"github.com/mkamalov/bazar/app/models"
	"github.com/mkamalov/bazar/app/policies"
	"github.com/mkamalov/bazar/app/repositories"
	"github.com/mkamalov/bazar/pkg/logger"
	"github.com/mkamalov/bazar/pkg/middleware"
	"github.com/mkamalov/bazar/pkg/pagination"
	"github.com/mkamalov/bazar/pkg/ws"
	"gorm.io/gorm"
)

// ChatMessagePayload is what goes over the websocket to the peer.
type ChatMessagePayload struct {
	Type      string `json:"type"`
	ChatID    uint   `json:"chat_id"`
	MessageID uint   `json:"message_id"`
	SenderID  uint   `json:"sender_id"`
	Body      string `json:"body"`
	SentAt    string `json:"sent_at"`
}

type ChatService struct {
	chats *repositories.ChatRepository
	users *repositories.UserRepository
	hub   *ws.Hub
}

// NewChatService builds the chat workflow. hub may be nil in tests, in
// which case messages are persisted without live delivery.
func NewChatService(db *gorm.DB, hub *ws.Hub) *ChatService {
	return &ChatService{
		chats: repositories.NewChatRepository(db),
		users: repositories.NewUserRepository(db),
		hub:   hub,
	}
}

// Open returns the chat between the caller and peer, creating it on
// first contact. The pair is stored normalized (lower ID first) so the
// same two users always map to one row.
func (s *ChatService) Open(id middleware.Identity, peerID uint) (models.Chat, error) {
	if peerID == id.UserID {
		return models.Chat{}, NewValidationError("peer_id", "You cannot open a chat with yourself.")
	}
	if _, err := s.users.FindByID(peerID); err != nil {
		return models.Chat{}, translateNotFound(err)
	}

	a, b := id.UserID, peerID
	if a > b {
		a, b = b, a
	}
	return s.chats.FindOrCreate(a, b)
}

// ListChats returns the caller's conversations, most recent first.
func (s *ChatService) ListChats(id middleware.Identity) ([]models.Chat, error) {
	return s.chats.ForUser(id.UserID)
}

// Messages pages through a chat's history, participants only.
func (s *ChatService) Messages(id middleware.Identity, chatID uint, page, perPage int) ([]models.ChatMessage, pagination.Pagination, error) {
	chat, err := s.chats.FindByID(chatID)
	if err != nil {
		return nil, pagination.Pagination{}, translateNotFound(err)
	}
	if !policies.CanAccessChat(id, chat) {
		return nil, pagination.Pagination{}, ErrForbidden
	}
	return s.chats.Messages(chatID, page, perPage)
}

// Send persists a message and pushes it to the peer's live connections.
func (s *ChatService) Send(id middleware.Identity, chatID uint, body string) (models.ChatMessage, error) {
	if body == "" {
		return models.ChatMessage{}, NewValidationError("body", "The body field is required.")
	}

	chat, err := s.chats.FindByID(chatID)
	if err != nil {
		return models.ChatMessage{}, translateNotFound(err)
	}
	if !policies.CanAccessChat(id, chat) {
		return models.ChatMessage{}, ErrForbidden
	}

	message := models.ChatMessage{
		ChatID:   chat.ID,
		SenderID: id.UserID,
		Body:     body,
	}
	if err := s.chats.AddMessage(&message); err != nil {
		return models.ChatMessage{}, err
	}

	if s.hub != nil {
		payload, err := json.Marshal(ChatMessagePayload{
			Type:      "chat.message",
			ChatID:    chat.ID,
			MessageID: message.ID,
			SenderID:  message.SenderID,
			Body:      message.Body,
			SentAt:    message.CreatedAt.UTC().Format(time.RFC3339),
		})
		if err == nil {
			s.hub.SendToUser(chat.Peer(id.UserID), payload)
		} else {
			logger.Warn("chat payload marshal failed", "error", err)
		}
	}
	return message, nil
}
