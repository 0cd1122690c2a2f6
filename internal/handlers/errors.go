package handlers

import (
	"errors"
	"log"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Radennn1/tutoring-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

func mapSessionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrInvalidState),
		errors.Is(err, services.ErrCapacity),
		errors.Is(err, services.ErrConflict):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": publicMessage(err)})
	case errors.Is(err, services.ErrUnauthenticated):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": publicMessage(err)})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": publicMessage(err)})
	default:
		log.Printf("%s %s: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}
}

// publicMessage renders a domain error as a sentence for the response body.
// Messages that open with a field name keep it verbatim.
func publicMessage(err error) string {
	message := strings.TrimSpace(err.Error())
	if word, _, _ := strings.Cut(message, " "); strings.Contains(word, "_") {
		return message
	}
	first, size := utf8.DecodeRuneInString(message)
	if first == utf8.RuneError {
		return message
	}
	return string(unicode.ToUpper(first)) + message[size:]
}

func callerID(c *fiber.Ctx) (string, bool) {
	userID, ok := c.Locals("user_id").(string)
	if !ok || strings.TrimSpace(userID) == "" {
		return "", false
	}
	return userID, true
}
