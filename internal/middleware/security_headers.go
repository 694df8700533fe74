package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
)

const productionCSP = "default-src 'self'; " +
	"img-src 'self' https: data: blob:; " +
	"media-src 'self' https: data: blob:; " +
	"script-src 'self' https: 'unsafe-inline'; " +
	"style-src 'self' https: 'unsafe-inline'; " +
	"font-src 'self' https: data:; " +
	"connect-src 'self' https: http://localhost:3000 http://localhost:5173; " +
	"frame-src 'self' https:; " +
	"object-src 'none'; " +
	"base-uri 'self'; " +
	"form-action 'self'"

// SecurityHeaders sets the standard hardening headers. The content security
// policy is only sent in production.
func SecurityHeaders(production bool) fiber.Handler {
	cfg := helmet.Config{
		XSSProtection:             "0",
		ContentTypeNosniff:        "nosniff",
		XFrameOptions:             "SAMEORIGIN",
		ReferrerPolicy:            "no-referrer",
		CrossOriginResourcePolicy: "cross-origin",
		CrossOriginOpenerPolicy:   "same-origin",
		CrossOriginEmbedderPolicy: "unsafe-none",
		OriginAgentCluster:        "?1",
		XDNSPrefetchControl:       "off",
		XDownloadOptions:          "noopen",
		XPermittedCrossDomain:     "none",
	}
	if production {
		cfg.ContentSecurityPolicy = productionCSP
		cfg.HSTSMaxAge = 15552000
	}
	return helmet.New(cfg)
}

// CORS allows the configured frontend origins.
func CORS(origins []string) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins: strings.Join(origins, ","),
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Content-Type,Authorization," + HeaderCSRFToken,
	})
}
