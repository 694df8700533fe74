package handlers

import "github.com/gofiber/fiber/v2"

// RouteMiddleware carries the per-route middleware the handlers attach.
type RouteMiddleware struct {
	Auth          fiber.Handler
	Admin         fiber.Handler
	CSRF          fiber.Handler
	AuthLimit     fiber.Handler
	UploadLimit   fiber.Handler
	LoginThrottle fiber.Handler
}

// Passthrough is a middleware that does nothing.
func Passthrough(c *fiber.Ctx) error { return c.Next() }

func (m RouteMiddleware) orPassthrough() RouteMiddleware {
	fill := func(h fiber.Handler) fiber.Handler {
		if h == nil {
			return Passthrough
		}
		return h
	}
	return RouteMiddleware{
		Auth:          fill(m.Auth),
		Admin:         fill(m.Admin),
		CSRF:          fill(m.CSRF),
		AuthLimit:     fill(m.AuthLimit),
		UploadLimit:   fill(m.UploadLimit),
		LoginThrottle: fill(m.LoginThrottle),
	}
}
