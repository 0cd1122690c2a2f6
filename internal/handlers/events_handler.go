package handlers

import (
	"context"
	"strings"

	"github.com/Radennn1/tutoring-backend/internal/identity"
	"github.com/Radennn1/tutoring-backend/internal/middleware"
	"github.com/Radennn1/tutoring-backend/internal/models"
	sessionws "github.com/Radennn1/tutoring-backend/internal/websocket"
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type sessionViewer interface {
	GetSession(ctx context.Context, actorID string, sessionID string) (*models.Session, error)
}

// SessionEventsHandler streams lifecycle events of one session to its
// tutor and ready students.
type SessionEventsHandler struct {
	verifier identity.Verifier
	sessions sessionViewer
	hub      *sessionws.Hub
}

func NewSessionEventsHandler(verifier identity.Verifier, sessions sessionViewer, hub *sessionws.Hub) *SessionEventsHandler {
	return &SessionEventsHandler{
		verifier: verifier,
		sessions: sessions,
		hub:      hub,
	}
}

func (h *SessionEventsHandler) WebSocketAuth(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{"message": "WebSocket upgrade required"})
	}

	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		token, _ = middleware.BearerToken(c.Get(fiber.HeaderAuthorization))
	}
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
	}

	caller, err := h.verifier.VerifyCredential(c.UserContext(), token)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token"})
	}

	session, err := h.sessions.GetSession(c.UserContext(), caller.Subject, c.Params("id"))
	if err != nil {
		return mapSessionError(c, err)
	}

	c.Locals("user_id", caller.Subject)
	c.Locals("session_id", session.ID)
	return c.Next()
}

func (h *SessionEventsHandler) HandleWebSocket(conn *websocket.Conn) {
	sessionID, _ := conn.Locals("session_id").(string)
	client := sessionws.NewClient(h.hub, conn, sessionID)

	if !h.hub.Register(client) {
		_ = conn.Close()
		return
	}
	go client.WritePump()
	client.ReadPump()
}
