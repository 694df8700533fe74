package middleware

import (
	"errors"

	"portfolio/internal/security"

	"github.com/gofiber/fiber/v2"
)

// HeaderCSRFToken carries the CSRF token on state-changing requests.
const HeaderCSRFToken = "X-CSRF-Token"

// CSRFProtected rejects POST, PUT, PATCH and DELETE requests whose CSRF
// token is missing, unknown, expired or issued to another IP.
func CSRFProtected(guard *security.CSRFGuard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return c.Next()
		}

		err := guard.Validate(c.Get(HeaderCSRFToken), ClientIP(c))
		switch {
		case err == nil:
			return c.Next()
		case errors.Is(err, security.ErrCSRFMissing):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "CSRF token missing"})
		default:
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Invalid or expired CSRF token"})
		}
	}
}
