// Package ws provides WebSocket support for the chat transport using
// gorilla/websocket.
//
// Connections are registered per user so the chat service can deliver a
// message to every open connection of a given participant:
//
//	hub := ws.NewHub()
//	go hub.Run()
//
//	// in the handler, after authentication:
//	ws.Upgrade(w, r, hub, identity.UserID)
//
//	// from the chat service:
//	hub.SendToUser(peerID, payload)
package ws

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mkamalov/bazar/pkg/logger"
	"github.com/mkamalov/bazar/pkg/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins by default; restrict in production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// SetCheckOrigin replaces the default (allow-all) origin checker.
func SetCheckOrigin(fn func(r *http.Request) bool) {
	upgrader.CheckOrigin = fn
}

// Client is a single connected WebSocket client bound to a user.
type Client struct {
	UserID uint

	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("ws: unexpected close", "error", err)
			}
			break
		}
		c.hub.Inbound <- Message{Client: c, Data: msg}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Send queues a message for this client, dropping it if the buffer is full.
func (c *Client) Send(data []byte) {
	select {
	case c.send <- data:
	default:
	}
}

// Message is an inbound message received from a client.
type Message struct {
	Client *Client
	Data   []byte
}

type userMessage struct {
	userID uint
	data   []byte
}

// Hub maintains active connections indexed by user and routes messages.
type Hub struct {
	clients    map[uint]map[*Client]bool
	Inbound    chan Message
	register   chan *Client
	unregister chan *Client
	direct     chan userMessage
	broadcast  chan []byte

	// OnMessage is called for every inbound message (optional).
	OnMessage func(hub *Hub, msg Message)
}

// NewHub creates a Hub. Call hub.Run() in a goroutine at startup.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint]map[*Client]bool),
		Inbound:    make(chan Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		direct:     make(chan userMessage, 256),
		broadcast:  make(chan []byte, 256),
	}
}

// Run starts the hub event loop. Must be run in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			if h.clients[client.UserID] == nil {
				h.clients[client.UserID] = make(map[*Client]bool)
			}
			h.clients[client.UserID][client] = true
			metrics.ChatConnections.Inc()

		case client := <-h.unregister:
			if conns, ok := h.clients[client.UserID]; ok && conns[client] {
				delete(conns, client)
				if len(conns) == 0 {
					delete(h.clients, client.UserID)
				}
				close(client.send)
				metrics.ChatConnections.Dec()
			}

		case dm := <-h.direct:
			for client := range h.clients[dm.userID] {
				client.Send(dm.data)
			}

		case msg := <-h.broadcast:
			for _, conns := range h.clients {
				for client := range conns {
					client.Send(msg)
				}
			}

		case msg := <-h.Inbound:
			if h.OnMessage != nil {
				h.OnMessage(h, msg)
			}
		}
	}
}

// SendToUser delivers data to every open connection of the given user.
func (h *Hub) SendToUser(userID uint, data []byte) {
	h.direct <- userMessage{userID: userID, data: data}
}

// Broadcast delivers data to every connected client.
func (h *Hub) Broadcast(data []byte) {
	h.broadcast <- data
}

// Upgrade upgrades an HTTP connection to a WebSocket and registers the
// resulting client under userID.
func Upgrade(w http.ResponseWriter, r *http.Request, hub *Hub, userID uint) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("ws: upgrade failed", "error", err)
		return
	}
	client := &Client{UserID: userID, hub: hub, conn: conn, send: make(chan []byte, 256)}
	hub.register <- client
	go client.writePump()
	go client.readPump()
}
