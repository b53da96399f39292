package controllers

import (
	"net/http"

	"github.com/mkamalov/bazar/app/services"
	"github.com/mkamalov/bazar/pkg/bind"
	"github.com/mkamalov/bazar/pkg/response"
	"github.com/mkamalov/bazar/pkg/ws"
)

type ChatController struct {
	chats *services.ChatService
	hub   *ws.Hub
}

func NewChatController(svc *services.ChatService, hub *ws.Hub) *ChatController {
	return &ChatController{chats: svc, hub: hub}
}

// Index lists the caller's conversations.
func (c *ChatController) Index(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	chats, err := c.chats.ListChats(id)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, chats)
}

type openChatRequest struct {
	PeerID uint `json:"peer_id" validate:"required,integer,gt=0"`
}

// Store opens (or returns) the chat with another user.
func (c *ChatController) Store(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var req openChatRequest
	if !bind.JSON(w, r, &req) {
		return
	}

	chat, err := c.chats.Open(id, req.PeerID)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Created(w, chat)
}

// Messages pages through a conversation's history.
func (c *ChatController) Messages(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	chatID, ok := bind.UintParam(w, r, "id")
	if !ok {
		return
	}
	page, perPage := pageParams(r)

	messages, p, err := c.chats.Messages(id, chatID, page, perPage)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Paginated(w, messages, p)
}

type sendMessageRequest struct {
	Body string `json:"body" validate:"required,max=4000"`
}

// Send posts a message into a conversation.
func (c *ChatController) Send(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	chatID, ok := bind.UintParam(w, r, "id")
	if !ok {
		return
	}
	var req sendMessageRequest
	if !bind.JSON(w, r, &req) {
		return
	}

	message, err := c.chats.Send(id, chatID, req.Body)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Created(w, message)
}

// Socket upgrades the connection for live message delivery.
func (c *ChatController) Socket(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	ws.Upgrade(w, r, c.hub, id.UserID)
}
