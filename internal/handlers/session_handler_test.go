package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Radennn1/tutoring-backend/internal/models"
	"github.com/Radennn1/tutoring-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type stubSessionService struct {
	createResult    *models.Session
	createErr       error
	getResult       *models.Session
	getErr          error
	listResult      []models.Session
	listErr         error
	readyCount      int
	readyErr        error
	startResult     *models.Session
	startErr        error
	endResult       *services.EndSessionResult
	endErr          error
	lastActorID     string
	lastSessionID   string
	lastStatus      string
	lastScheduledAt time.Time
}

func (s *stubSessionService) CreateSession(_ context.Context, tutorID string, scheduledStart time.Time) (*models.Session, error) {
	s.lastActorID = tutorID
	s.lastScheduledAt = scheduledStart
	return s.createResult, s.createErr
}

func (s *stubSessionService) GetSession(_ context.Context, actorID string, sessionID string) (*models.Session, error) {
	s.lastActorID = actorID
	s.lastSessionID = sessionID
	return s.getResult, s.getErr
}

func (s *stubSessionService) ListTutorSessions(_ context.Context, tutorID string, status string) ([]models.Session, error) {
	s.lastActorID = tutorID
	s.lastStatus = status
	return s.listResult, s.listErr
}

func (s *stubSessionService) MarkReady(_ context.Context, studentID string, sessionID string) (int, error) {
	s.lastActorID = studentID
	s.lastSessionID = sessionID
	return s.readyCount, s.readyErr
}

func (s *stubSessionService) StartSession(_ context.Context, tutorID string, sessionID string) (*models.Session, error) {
	s.lastActorID = tutorID
	s.lastSessionID = sessionID
	return s.startResult, s.startErr
}

func (s *stubSessionService) EndSession(_ context.Context, tutorID string, sessionID string) (*services.EndSessionResult, error) {
	s.lastActorID = tutorID
	s.lastSessionID = sessionID
	return s.endResult, s.endErr
}

func newSessionTestApp(service *stubSessionService, userID string) *fiber.App {
	handler := NewSessionHandler(service)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if userID != "" {
			c.Locals("user_id", userID)
		}
		return c.Next()
	})
	app.Post("/sessions", handler.Create)
	app.Get("/sessions", handler.List)
	app.Post("/sessions/ready", handler.Ready)
	app.Post("/sessions/start", handler.Start)
	app.Post("/sessions/end", handler.End)
	app.Get("/sessions/:id", handler.Get)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, target, body string) (int, map[string]any) {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.StatusCode, payload
}

func TestReadyReturnsTotalReadyStudents(t *testing.T) {
	service := &stubSessionService{readyCount: 3}
	app := newSessionTestApp(service, "student-1")

	status, body := doJSON(t, app, http.MethodPost, "/sessions/ready", `{"session_id":"session-9"}`)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if body["message"] != "Student marked as ready" {
		t.Fatalf("unexpected message %v", body["message"])
	}
	if body["total_ready_students"] != float64(3) {
		t.Fatalf("expected 3 ready students, got %v", body["total_ready_students"])
	}
	if service.lastActorID != "student-1" || service.lastSessionID != "session-9" {
		t.Fatalf("unexpected call student=%q session=%q", service.lastActorID, service.lastSessionID)
	}
}

func TestReadyMapsDomainErrors(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{name: "missing id", err: services.ErrSessionIDRequired, status: http.StatusBadRequest, message: "session_id is required"},
		{name: "subscription", err: services.ErrSubscriptionRequired, status: http.StatusForbidden, message: "Active subscription required"},
		{name: "not found", err: services.ErrSessionNotFound, status: http.StatusNotFound, message: "Session not found"},
		{name: "not open", err: services.ErrSessionNotOpen, status: http.StatusBadRequest, message: "Session is not open for students"},
		{name: "full", err: services.ErrSessionFull, status: http.StatusBadRequest, message: "Session is full (max 6 students)"},
		{name: "duplicate", err: services.ErrAlreadyReady, status: http.StatusBadRequest, message: "Student already marked as ready"},
		{name: "store failure", err: errors.New("connection reset"), status: http.StatusInternalServerError, message: "Internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newSessionTestApp(&stubSessionService{readyErr: tc.err}, "student-1")
			status, body := doJSON(t, app, http.MethodPost, "/sessions/ready", `{"session_id":"session-9"}`)
			if status != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, status)
			}
			if body["message"] != tc.message {
				t.Fatalf("expected message %q, got %v", tc.message, body["message"])
			}
		})
	}
}

func TestStartReturnsSuccessMessage(t *testing.T) {
	service := &stubSessionService{startResult: &models.Session{ID: "session-9", Status: models.SessionOngoing}}
	app := newSessionTestApp(service, "tutor-1")

	status, body := doJSON(t, app, http.MethodPost, "/sessions/start", `{"session_id":"session-9"}`)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if body["message"] != "Session started successfully" {
		t.Fatalf("unexpected message %v", body["message"])
	}
}

func TestStartRejectsNonOwner(t *testing.T) {
	app := newSessionTestApp(&stubSessionService{startErr: services.ErrNotSessionOwner}, "tutor-2")

	status, body := doJSON(t, app, http.MethodPost, "/sessions/start", `{"session_id":"session-9"}`)
	if status != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", status)
	}
	if body["message"] != "Not your session" {
		t.Fatalf("unexpected message %v", body["message"])
	}
}

func TestEndResponses(t *testing.T) {
	cases := []struct {
		name       string
		result     *services.EndSessionResult
		message    string
		paid       bool
		wantAmount bool
		pending    bool
	}{
		{
			name:       "paid",
			result:     &services.EndSessionResult{DurationMinutes: 50, RequiredDurationMinutes: 45, Paid: true, Amount: 50000},
			message:    "Session completed and payment issued",
			paid:       true,
			wantAmount: true,
		},
		{
			name:    "too short",
			result:  &services.EndSessionResult{DurationMinutes: 30, RequiredDurationMinutes: 45},
			message: "Session ended, but duration is less than 45 minutes. No payment issued.",
		},
		{
			name:       "pending",
			result:     &services.EndSessionResult{DurationMinutes: 60, RequiredDurationMinutes: 45, Amount: 50000, PaymentPending: true},
			message:    "Session completed, payment is being processed",
			wantAmount: true,
			pending:    true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newSessionTestApp(&stubSessionService{endResult: tc.result}, "tutor-1")
			status, body := doJSON(t, app, http.MethodPost, "/sessions/end", `{"session_id":"session-9"}`)
			if status != http.StatusOK {
				t.Fatalf("expected 200, got %d", status)
			}
			if body["message"] != tc.message {
				t.Fatalf("unexpected message %v", body["message"])
			}
			if body["paid"] != tc.paid {
				t.Fatalf("expected paid=%v, got %v", tc.paid, body["paid"])
			}
			if body["duration_minutes"] != float64(tc.result.DurationMinutes) {
				t.Fatalf("unexpected duration %v", body["duration_minutes"])
			}
			if _, ok := body["amount"]; ok != tc.wantAmount {
				t.Fatalf("amount presence mismatch: %v", body)
			}
			if _, ok := body["payment_pending"]; ok != tc.pending {
				t.Fatalf("payment_pending presence mismatch: %v", body)
			}
		})
	}
}

func TestEndRejectsSessionNotOngoing(t *testing.T) {
	app := newSessionTestApp(&stubSessionService{endErr: services.ErrSessionNotOngoing}, "tutor-1")

	status, body := doJSON(t, app, http.MethodPost, "/sessions/end", `{"session_id":"session-9"}`)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	if body["message"] != "Session is not ongoing" {
		t.Fatalf("unexpected message %v", body["message"])
	}
}

func TestLifecycleEndpointsRequireCaller(t *testing.T) {
	app := newSessionTestApp(&stubSessionService{}, "")

	for _, target := range []string{"/sessions/ready", "/sessions/start", "/sessions/end"} {
		status, _ := doJSON(t, app, http.MethodPost, target, `{"session_id":"session-9"}`)
		if status != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", target, status)
		}
	}
}

func TestCreateSessionParsesSchedule(t *testing.T) {
	service := &stubSessionService{createResult: &models.Session{ID: "session-1", TutorID: "tutor-1", Status: models.SessionScheduled}}
	app := newSessionTestApp(service, "tutor-1")

	status, body := doJSON(t, app, http.MethodPost, "/sessions", `{"scheduled_start":"2026-06-01T10:00:00Z"}`)
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}
	if _, ok := body["session"]; !ok {
		t.Fatalf("expected session in body, got %v", body)
	}
	if !service.lastScheduledAt.Equal(time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected schedule %v", service.lastScheduledAt)
	}

	status, _ = doJSON(t, app, http.MethodPost, "/sessions", `{"scheduled_start":"tomorrow"}`)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad timestamp, got %d", status)
	}
}

func TestListSessionsPassesStatusFilter(t *testing.T) {
	service := &stubSessionService{listResult: []models.Session{{ID: "session-1"}}}
	app := newSessionTestApp(service, "tutor-1")

	status, body := doJSON(t, app, http.MethodGet, "/sessions?status=ongoing", "")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if service.lastStatus != "ongoing" {
		t.Fatalf("expected status filter ongoing, got %q", service.lastStatus)
	}
	sessions, ok := body["sessions"].([]any)
	if !ok || len(sessions) != 1 {
		t.Fatalf("unexpected sessions %v", body["sessions"])
	}
}

func TestGetSessionHiddenFromStrangers(t *testing.T) {
	app := newSessionTestApp(&stubSessionService{getErr: services.ErrSessionHidden}, "stranger")

	status, _ := doJSON(t, app, http.MethodGet, "/sessions/session-1", "")
	if status != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", status)
	}
}
