package middleware

import (
	"errors"
	"strings"

	"portfolio/internal/models"
	"portfolio/internal/services"
	"portfolio/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

const identityKey = "user"

// AuthRequired is a Fiber middleware that resolves the bearer session token
// to a member identity.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer" && parts[1] != "") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		identity, err := authService.Authenticate(parts[1])
		if err != nil {
			if errors.Is(err, services.ErrUnauthorized) {
				logger.Debug().Err(err).Str("ip", ClientIP(c)).Msg("rejected session token")
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Invalid authentication token",
				})
			}
			logger.Error().Err(err).Msg("authentication failed")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Authentication failed",
			})
		}

		// Store identity in Fiber context for subsequent handlers
		c.Locals(identityKey, identity)
		return c.Next()
	}
}

// CurrentIdentity returns the identity set by AuthRequired, or nil.
func CurrentIdentity(c *fiber.Ctx) *models.Identity {
	identity, _ := c.Locals(identityKey).(*models.Identity)
	return identity
}
