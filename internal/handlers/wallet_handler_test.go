package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/Radennn1/tutoring-backend/internal/models"
	"github.com/gofiber/fiber/v2"
)

type stubWalletService struct {
	detail    *models.WalletDetail
	err       error
	lastTutor string
}

func (s *stubWalletService) Wallet(_ context.Context, tutorID string) (*models.WalletDetail, error) {
	s.lastTutor = tutorID
	return s.detail, s.err
}

func newWalletTestApp(service *stubWalletService) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "tutor-1")
		return c.Next()
	})
	app.Get("/wallet", NewWalletHandler(service).Get)
	return app
}

func TestWalletReturnsBalanceAndTransactions(t *testing.T) {
	service := &stubWalletService{detail: &models.WalletDetail{
		Wallet:       models.Wallet{TutorID: "tutor-1", Balance: 100000},
		Transactions: []models.Transaction{{ID: "tx-1", SessionID: "session-1", Amount: 50000}, {ID: "tx-2", SessionID: "session-2", Amount: 50000}},
	}}

	status, body := doJSON(t, newWalletTestApp(service), http.MethodGet, "/wallet", "")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if service.lastTutor != "tutor-1" {
		t.Fatalf("unexpected tutor %q", service.lastTutor)
	}
	wallet, ok := body["wallet"].(map[string]any)
	if !ok || wallet["balance"] != float64(100000) {
		t.Fatalf("unexpected wallet %v", body["wallet"])
	}
	transactions, ok := body["transactions"].([]any)
	if !ok || len(transactions) != 2 {
		t.Fatalf("unexpected transactions %v", body["transactions"])
	}
}

func TestWalletStoreFailureIsInternal(t *testing.T) {
	status, body := doJSON(t, newWalletTestApp(&stubWalletService{err: errors.New("db down")}), http.MethodGet, "/wallet", "")
	if status != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", status)
	}
	if body["message"] != "Internal server error" {
		t.Fatalf("unexpected message %v", body["message"])
	}
}
