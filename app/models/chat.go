package models

import "gorm.io/gorm"

// Chat is a conversation between exactly two users. The pair is
// normalized so User1ID < User2ID, which makes the unique index catch
// duplicates regardless of who opened the chat. Self-chats are rejected
// by the service.
type Chat struct {
	gorm.Model
	User1ID uint `gorm:"not null;uniqueIndex:idx_chat_pair" json:"user1_id"`
	User2ID uint `gorm:"not null;uniqueIndex:idx_chat_pair" json:"user2_id"`

	Messages []ChatMessage `gorm:"constraint:OnDelete:CASCADE" json:"messages,omitempty"`
}

// Involves reports whether userID is one of the two participants.
func (c Chat) Involves(userID uint) bool {
	return c.User1ID == userID || c.User2ID == userID
}

// Peer returns the other participant's ID.
func (c Chat) Peer(userID uint) uint {
	if c.User1ID == userID {
		return c.User2ID
	}
	return c.User1ID
}

// ChatMessage is one message inside a chat, ordered by creation time.
type ChatMessage struct {
	gorm.Model
	ChatID   uint   `gorm:"not null;index" json:"chat_id"`
	SenderID uint   `gorm:"not null;index" json:"sender_id"`
	Body     string `gorm:"type:text;not null" json:"body"`
}
