package middleware

import (
	"strings"

	"github.com/Radennn1/tutoring-backend/internal/identity"
	"github.com/gofiber/fiber/v2"
)

// AuthRequired resolves the bearer credential and stores the caller in
// Locals as user_id, email and role.
func AuthRequired(verifier identity.Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := BearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Unauthorized",
			})
		}

		caller, err := verifier.VerifyCredential(c.UserContext(), token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid token",
			})
		}

		c.Locals("user_id", caller.Subject)
		c.Locals("email", caller.Email)
		c.Locals("role", caller.Role)

		return c.Next()
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header value.
func BearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}
