package middleware

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// MaxJSONBody caps JSON request bodies; multipart uploads have their own cap.
const MaxJSONBody = 1 << 20

// SanitizeJSON drops object keys that start with "$" or contain "." from
// JSON request bodies, and refuses JSON bodies over MaxJSONBody.
func SanitizeJSON() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEApplicationJSON) {
			return c.Next()
		}
		body := c.Body()
		if len(body) > MaxJSONBody {
			return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"error": "Request body too large"})
		}
		if len(bytes.TrimSpace(body)) == 0 {
			return c.Next()
		}

		var payload interface{}
		if err := json.Unmarshal(body, &payload); err != nil {
			// leave malformed bodies to the handler's parser
			return c.Next()
		}
		if sanitizeValue(payload) {
			cleaned, err := json.Marshal(payload)
			if err != nil {
				return err
			}
			c.Request().SetBody(cleaned)
		}
		return c.Next()
	}
}

// sanitizeValue strips forbidden keys in place and reports whether anything changed.
func sanitizeValue(v interface{}) bool {
	changed := false
	switch val := v.(type) {
	case map[string]interface{}:
		for k, child := range val {
			if strings.HasPrefix(k, "$") || strings.Contains(k, ".") {
				delete(val, k)
				changed = true
				continue
			}
			if sanitizeValue(child) {
				changed = true
			}
		}
	case []interface{}:
		for _, child := range val {
			if sanitizeValue(child) {
				changed = true
			}
		}
	}
	return changed
}
