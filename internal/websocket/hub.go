package websocket

import (
	"context"
	"encoding/json"
	"time"

	"workorder/internal/models"
	"workorder/pkg/logger"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// Task event types.
const (
	EventTaskCreated = "task.created"
	EventTaskUpdated = "task.updated"
	EventTaskDeleted = "task.deleted"
)

// TaskEvent is the payload pushed to a task owner's connections.
type TaskEvent struct {
	Type   string       `json:"type"`
	TaskID string       `json:"task_id"`
	Task   *models.Task `json:"task,omitempty"`
}

// writeWait bounds a single write so one stalled client cannot hold up
// delivery to everyone else.
const writeWait = 5 * time.Second

// Conn is the part of a WebSocket connection the hub writes to.
type Conn interface {
	SetWriteDeadline(t time.Time) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client merepresentasikan klien WebSocket milik satu user. Only the hub's
// Run goroutine writes to Conn.
type Client struct {
	UserID string
	Conn   Conn
}

type message struct {
	userID string
	data   []byte
}

// Hub fans task events out to the connections of the owning user. Only the
// Run goroutine touches the client map.
type Hub struct {
	clients    map[string]map[*Client]bool
	broadcast  chan message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

// NewHub membuat instance Hub baru. buffer bounds pending events; events
// published while the buffer is full are dropped.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 256
	}
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan message, buffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run menjalankan loop Hub sampai ctx selesai, lalu menutup semua koneksi.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, set := range h.clients {
				for client := range set {
					_ = client.Conn.Close()
				}
			}
			h.clients = map[string]map[*Client]bool{}
			return
		case client := <-h.register:
			set, ok := h.clients[client.UserID]
			if !ok {
				set = make(map[*Client]bool)
				h.clients[client.UserID] = set
			}
			set[client] = true
		case client := <-h.unregister:
			h.remove(client)
		case msg := <-h.broadcast:
			for client := range h.clients[msg.userID] {
				if err := write(client.Conn, msg.data); err != nil {
					logger.SystemLogger.Info("Dropping websocket client after write error",
						zap.String("user_id", client.UserID), zap.Error(err))
					h.remove(client)
				}
			}
		}
	}
}

func write(conn Conn, data []byte) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (h *Hub) remove(client *Client) {
	set, ok := h.clients[client.UserID]
	if !ok || !set[client] {
		return
	}
	delete(set, client)
	if len(set) == 0 {
		delete(h.clients, client.UserID)
	}
	_ = client.Conn.Close()
}

// Register adds a client. It returns false when the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish queues event for every connection of userID without blocking.
func (h *Hub) Publish(userID string, event TaskEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.ErrorLogger.Error("Error encoding task event", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- message{userID: userID, data: data}:
	default:
		logger.SystemLogger.Warn("Task event dropped, hub buffer full",
			zap.String("user_id", userID), zap.String("type", event.Type))
	}
}
