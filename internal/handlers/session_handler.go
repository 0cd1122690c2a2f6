package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Radennn1/tutoring-backend/internal/models"
	"github.com/Radennn1/tutoring-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type SessionHandler struct {
	service sessionApplicationService
}

type sessionApplicationService interface {
	CreateSession(ctx context.Context, tutorID string, scheduledStart time.Time) (*models.Session, error)
	GetSession(ctx context.Context, actorID string, sessionID string) (*models.Session, error)
	ListTutorSessions(ctx context.Context, tutorID string, status string) ([]models.Session, error)
	MarkReady(ctx context.Context, studentID string, sessionID string) (int, error)
	StartSession(ctx context.Context, tutorID string, sessionID string) (*models.Session, error)
	EndSession(ctx context.Context, tutorID string, sessionID string) (*services.EndSessionResult, error)
}

func NewSessionHandler(service sessionApplicationService) *SessionHandler {
	return &SessionHandler{service: service}
}

type sessionIDRequest struct {
	SessionID string `json:"session_id"`
}

type createSessionRequest struct {
	ScheduledStart string `json:"scheduled_start"`
}

func (h *SessionHandler) Ready(c *fiber.Ctx) error {
	studentID, ok := callerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token"})
	}

	var req sessionIDRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	total, err := h.service.MarkReady(c.UserContext(), studentID, req.SessionID)
	if err != nil {
		return mapSessionError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":              "Student marked as ready",
		"total_ready_students": total,
	})
}

func (h *SessionHandler) Start(c *fiber.Ctx) error {
	tutorID, ok := callerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token"})
	}

	var req sessionIDRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	if _, err := h.service.StartSession(c.UserContext(), tutorID, req.SessionID); err != nil {
		return mapSessionError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Session started successfully"})
}

func (h *SessionHandler) End(c *fiber.Ctx) error {
	tutorID, ok := callerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token"})
	}

	var req sessionIDRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	result, err := h.service.EndSession(c.UserContext(), tutorID, req.SessionID)
	if err != nil {
		return mapSessionError(c, err)
	}

	switch {
	case result.Paid:
		return c.JSON(fiber.Map{
			"message":          "Session completed and payment issued",
			"duration_minutes": result.DurationMinutes,
			"paid":             true,
			"amount":           result.Amount,
		})
	case result.PaymentPending:
		return c.JSON(fiber.Map{
			"message":          "Session completed, payment is being processed",
			"duration_minutes": result.DurationMinutes,
			"paid":             false,
			"amount":           result.Amount,
			"payment_pending":  true,
		})
	default:
		return c.JSON(fiber.Map{
			"message": fmt.Sprintf(
				"Session ended, but duration is less than %d minutes. No payment issued.",
				result.RequiredDurationMinutes,
			),
			"duration_minutes": result.DurationMinutes,
			"paid":             false,
		})
	}
}

func (h *SessionHandler) Create(c *fiber.Ctx) error {
	tutorID, ok := callerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token"})
	}

	var req createSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	scheduledStart, err := time.Parse(time.RFC3339, strings.TrimSpace(req.ScheduledStart))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "scheduled_start must be a valid RFC3339 timestamp"})
	}

	session, err := h.service.CreateSession(c.UserContext(), tutorID, scheduledStart)
	if err != nil {
		return mapSessionError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"session": session})
}

func (h *SessionHandler) List(c *fiber.Ctx) error {
	tutorID, ok := callerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token"})
	}

	sessions, err := h.service.ListTutorSessions(c.UserContext(), tutorID, c.Query("status"))
	if err != nil {
		return mapSessionError(c, err)
	}

	return c.JSON(fiber.Map{"sessions": sessions})
}

func (h *SessionHandler) Get(c *fiber.Ctx) error {
	actorID, ok := callerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token"})
	}

	session, err := h.service.GetSession(c.UserContext(), actorID, c.Params("id"))
	if err != nil {
		return mapSessionError(c, err)
	}

	return c.JSON(fiber.Map{"session": session})
}
