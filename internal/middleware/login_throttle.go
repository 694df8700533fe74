package middleware

import (
	"math"
	"strconv"

	"portfolio/internal/audit"
	"portfolio/internal/security"

	"github.com/gofiber/fiber/v2"
)

// LoginThrottle guards the login route. Each attempt is reserved before the
// handler runs and locked IPs are refused; afterwards a 401 keeps the
// reservation as a failure, a 2xx clears the IP and anything else hands the
// attempt back.
func LoginThrottle(throttle *security.LoginThrottle, auditor *audit.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := ClientIP(c)

		if locked, retryAfter := throttle.Acquire(ip); locked {
			seconds := int(math.Ceil(retryAfter.Seconds()))
			auditor.Log(ip, nil, audit.ActionLoginLocked, map[string]any{"retryAfter": seconds})
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(seconds))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":      "Too many failed login attempts. Please try again later.",
				"retryAfter": seconds,
			})
		}

		if err := c.Next(); err != nil {
			throttle.Release(ip)
			return err
		}

		status := c.Response().StatusCode()
		switch {
		case status == fiber.StatusUnauthorized:
		case status >= 200 && status < 300:
			throttle.Reset(ip)
		default:
			throttle.Release(ip)
		}
		return nil
	}
}
