package handlers

import (
	"workorder/internal/middleware"
	myws "workorder/internal/websocket"
	"workorder/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

type TaskEventsHandler struct {
	hub *myws.Hub
}

func NewTaskEventsHandler(hub *myws.Hub) *TaskEventsHandler {
	return &TaskEventsHandler{hub: hub}
}

// RequireUpgrade rejects plain HTTP requests on WebSocket routes.
func (h *TaskEventsHandler) RequireUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		c.Locals("allowed", true)
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Stream keeps the connection registered until the client goes away.
// Incoming messages are ignored.
func (h *TaskEventsHandler) Stream(conn *websocket.Conn) {
	userID, _ := conn.Locals(middleware.LocalUserID).(string)
	client := &myws.Client{UserID: userID, Conn: conn}
	if !h.hub.Register(client) {
		_ = conn.Close()
		return
	}
	defer h.hub.Unregister(client)
	logger.SystemLogger.Info("Websocket client connected", zap.String("user_id", userID))

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
