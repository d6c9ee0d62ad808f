package server

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"pinmap/internal/models"
	"pinmap/internal/notifications"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebsocketHandler streams activity events to the authenticated user. Must be
// placed after an auth middleware that sets userID.
// @Summary Activity stream
// @Description WebSocket upgrade. Pass the identity token as ?token=.
// @Tags activity
// @Param token query string true "Identity token"
// @Success 101
// @Failure 426 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /ws [get]
func (s *Server) WebsocketHandler() fiber.Handler {
	stream := websocket.New(func(conn *websocket.Conn) {
		userID, ok := conn.Locals("userID").(uint)
		if !ok || userID == 0 {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			log.Printf("WebSocket: failed to register user %d: %v", userID, err)
			msg, _ := json.Marshal(fiber.Map{"error": err.Error()})
			_ = conn.WriteMessage(websocket.TextMessage, msg)
			_ = conn.Close()
			return
		}

		hello, _ := json.Marshal(notifications.Event{
			Type:      "connected",
			Payload:   fiber.Map{"user_id": userID},
			CreatedAt: time.Now().UTC(),
		})
		client.TrySend(hello)

		go client.WritePump()
		client.ReadPump()
	})

	return func(c *fiber.Ctx) error {
		if s.hub == nil {
			return models.RespondWithError(c, fiber.StatusServiceUnavailable,
				errors.New("activity stream unavailable"))
		}
		if !websocket.IsWebSocketUpgrade(c) {
			return models.RespondWithError(c, fiber.StatusUpgradeRequired,
				models.NewValidationError("WebSocket upgrade required"))
		}
		return stream(c)
	}
}
