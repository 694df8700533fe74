package middleware

import (
	"strings"

	"portfolio/internal/audit"

	"github.com/gofiber/fiber/v2"
)

// AdminRequired only lets through identities whose email is on the admin
// allow-list. It must run after AuthRequired.
func AdminRequired(adminEmails []string, auditor *audit.Logger) fiber.Handler {
	admins := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		admins[strings.ToLower(strings.TrimSpace(e))] = true
	}

	return func(c *fiber.Ctx) error {
		identity := CurrentIdentity(c)
		if identity == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}
		if !admins[strings.ToLower(identity.Email)] {
			auditor.Log(ClientIP(c), identity, audit.ActionAdminAccessDenied, map[string]any{
				"method": c.Method(),
				"path":   c.Path(),
			})
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Access denied. Administrator privileges required.",
			})
		}
		return c.Next()
	}
}
