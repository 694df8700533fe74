package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// ProxyConfig returns a fiber config that reads the client address from
// X-Forwarded-For only when the peer is one of trustedProxies (IPs or
// CIDRs). With no trusted proxies the header is ignored.
func ProxyConfig(trustedProxies []string) fiber.Config {
	return fiber.Config{
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          trustedProxies,
		EnableIPValidation:      true,
	}
}

// ClientIP returns the caller's address as resolved by fiber. The result is
// copied out of the request buffers, so it is safe to keep after the
// handler returns (CSRF bindings, throttle and limiter keys).
func ClientIP(c *fiber.Ctx) string {
	if ip := c.IP(); ip != "" {
		return utils.CopyString(ip)
	}
	return "unknown"
}
