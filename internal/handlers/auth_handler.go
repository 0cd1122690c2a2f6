package handlers

import "github.com/gofiber/fiber/v2"

type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// Me echoes the verified caller. A caller without an email gets null.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, ok := callerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token"})
	}

	var email any
	if value, ok := c.Locals("email").(string); ok && value != "" {
		email = value
	}

	return c.JSON(fiber.Map{
		"uid":   userID,
		"email": email,
	})
}
