package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestMeReturnsNullEmailWhenAbsent(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "tutor-1")
		c.Locals("email", "")
		return c.Next()
	})
	app.Get("/me", NewAuthHandler().Me)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["uid"] != "tutor-1" {
		t.Fatalf("unexpected uid %v", body["uid"])
	}
	if email, ok := body["email"]; !ok || email != nil {
		t.Fatalf("expected null email, got %v", body["email"])
	}
}
