package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimitWindow is the window shared by all request limiters.
const RateLimitWindow = 15 * time.Minute

// Request budgets per IP and window.
const (
	GeneralRateLimit = 200
	AuthRateLimit    = 10
	UploadRateLimit  = 20
)

// RateLimit returns a per-IP sliding window limiter allowing max requests
// per window.
func RateLimit(max int, window time.Duration) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        window,
		KeyGenerator:      ClientIP,
		LimiterMiddleware: limiter.SlidingWindow{},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	})
}
