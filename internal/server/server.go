// Package server assembles the HTTP application from configuration.
package server

import (
	"context"
	"fmt"
	"mime"
	"time"

	"portfolio/internal/audit"
	"portfolio/internal/config"
	"portfolio/internal/handlers"
	"portfolio/internal/middleware"
	"portfolio/internal/repositories"
	"portfolio/internal/security"
	"portfolio/internal/services"
	"portfolio/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Login throttle policy.
const (
	MaxLoginFailures = 5
	LoginWindow      = 15 * time.Minute
	LoginLockout     = 15 * time.Minute
)

// SweepInterval is how often expired security entries are evicted.
const SweepInterval = 5 * time.Minute

func init() {
	// The platform MIME table does not always know these.
	_ = mime.AddExtensionType(".mp4", "video/mp4")
	_ = mime.AddExtensionType(".webm", "video/webm")
	_ = mime.AddExtensionType(".ogv", "video/ogg")
	_ = mime.AddExtensionType(".mov", "video/quicktime")
}

// Deps are optional collaborators supplied by the caller.
type Deps struct {
	// Publisher receives message.created events. Nil disables publishing.
	Publisher services.EventPublisher
	// Clock drives the security tables. Nil means time.Now.
	Clock security.Clock
}

// Repositories groups the stores selected by STORAGE_DRIVER.
type Repositories struct {
	Members  repositories.MemberRepository
	Messages repositories.MessageRepository
	Projects repositories.ProjectRepository
}

// NewRepositories opens the stores for the configured driver.
func NewRepositories(cfg *config.Config) (*Repositories, error) {
	switch cfg.StorageDriver {
	case "", "json":
		return &Repositories{
			Members:  repositories.NewJSONMemberRepository(cfg.MembersFile()),
			Messages: repositories.NewJSONMessageRepository(cfg.MessagesFile()),
			Projects: repositories.NewJSONProjectRepository(cfg.ProjectsFile()),
		}, nil
	default:
		db, err := repositories.OpenDatabase(cfg.StorageDriver, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		return &Repositories{
			Members:  repositories.NewGORMMemberRepository(db),
			Messages: repositories.NewGORMMessageRepository(db),
			Projects: repositories.NewGORMProjectRepository(db),
		}, nil
	}
}

// NewApp builds the fiber application. Background sweepers run until ctx is
// cancelled.
func NewApp(ctx context.Context, cfg *config.Config, deps Deps) (*fiber.App, error) {
	repos, err := NewRepositories(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	auditor := audit.New(cfg.AuditLogFile)
	revoked := security.NewRevocationList(deps.Clock)
	throttle := security.NewLoginThrottle(MaxLoginFailures, LoginWindow, LoginLockout, deps.Clock)
	sweepers := []security.Sweeper{revoked, throttle}

	var csrfGuard *security.CSRFGuard
	if cfg.CSRFEnabled {
		csrfGuard = security.NewCSRFGuard(cfg.CSRFTTL, deps.Clock)
		sweepers = append(sweepers, csrfGuard)
	}
	go security.RunSweeper(ctx, SweepInterval, sweepers...)

	// Services
	authService := services.NewAuthService(repos.Members, cfg.JWTSecret, cfg.TokenTTL, revoked)
	messageService := services.NewMessageService(repos.Messages, repos.Members, deps.Publisher)
	projectService := services.NewProjectService(repos.Projects)
	uploadService := services.NewUploadService(cfg.PublicDir)

	appConfig := middleware.ProxyConfig(cfg.TrustedProxies)
	appConfig.AppName = "portfolio"
	appConfig.BodyLimit = services.MaxUploadSize
	appConfig.ErrorHandler = handlers.ErrorHandler(cfg.IsDevelopment())
	app := fiber.New(appConfig)

	app.Use(recover.New())
	app.Use(logger.FiberLogger())
	app.Use(middleware.SanitizeJSON())
	app.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	app.Use(middleware.CORS(cfg.AllowedOrigins()))
	app.Use(middleware.RateLimit(middleware.GeneralRateLimit, middleware.RateLimitWindow))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"time":    time.Now().Format(time.RFC3339),
			"storage": cfg.StorageDriver,
			"events":  deps.Publisher != nil,
		})
	})

	mw := handlers.RouteMiddleware{
		Auth:          middleware.AuthRequired(authService),
		Admin:         middleware.AdminRequired(cfg.AdminEmails, auditor),
		AuthLimit:     middleware.RateLimit(middleware.AuthRateLimit, middleware.RateLimitWindow),
		UploadLimit:   middleware.RateLimit(middleware.UploadRateLimit, middleware.RateLimitWindow),
		LoginThrottle: middleware.LoginThrottle(throttle, auditor),
	}
	if csrfGuard != nil {
		mw.CSRF = middleware.CSRFProtected(csrfGuard)
	}

	api := app.Group("/api")
	handlers.NewAuthHandler(authService, csrfGuard, auditor).RegisterRoutes(api, mw)
	handlers.NewMessageHandler(messageService, auditor).RegisterRoutes(api, mw)
	handlers.NewProjectHandler(projectService, auditor).RegisterRoutes(api, mw)
	handlers.NewUploadHandler(uploadService, auditor).RegisterRoutes(api, mw)

	app.Static("/", cfg.PublicDir, fiber.Static{ByteRange: true})
	app.Use(handlers.NotFound)

	logger.Info().
		Str("storage", cfg.StorageDriver).
		Bool("csrf", csrfGuard != nil).
		Int("admins", len(cfg.AdminEmails)).
		Msg("application initialized")

	return app, nil
}
