package handlers

import (
	"errors"
	"strings"

	"portfolio/internal/audit"
	"portfolio/internal/middleware"
	"portfolio/internal/security"
	"portfolio/internal/services"
	"portfolio/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for members, sessions and CSRF tokens.
type AuthHandler struct {
	authService *services.AuthService
	csrf        *security.CSRFGuard
	auditor     *audit.Logger
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler. csrf may be nil when CSRF
// protection is disabled.
func NewAuthHandler(authService *services.AuthService, csrf *security.CSRFGuard, auditor *audit.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		csrf:        csrf,
		auditor:     auditor,
		validate:    NewValidator(),
	}
}

// RegisterRoutes registers the member and session routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, mw RouteMiddleware) {
	mw = mw.orPassthrough()

	router.Get("/csrf-token", h.HandleCSRFToken)
	router.Get("/members", h.HandleListMembers)
	router.Post("/members", mw.AuthLimit, mw.CSRF, h.HandleSignup)
	router.Post("/login", mw.AuthLimit, mw.CSRF, mw.LoginThrottle, h.HandleLogin)
	router.Post("/logout", mw.Auth, mw.CSRF, h.HandleLogout)
	router.Get("/me", mw.Auth, h.HandleMe)
}

// SignupRequest is the body of POST /members.
type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=100,password_strength"`
	Phone    string `json:"phone" validate:"omitempty,min=7,max=20"`
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleCSRFToken issues a CSRF token bound to the caller's IP.
func (h *AuthHandler) HandleCSRFToken(c *fiber.Ctx) error {
	if h.csrf == nil {
		return c.JSON(fiber.Map{"csrfToken": "", "enabled": false})
	}

	token, expiresAt, err := h.csrf.Issue(middleware.ClientIP(c))
	if err != nil {
		return internalError("Failed to issue CSRF token", err)
	}
	return c.JSON(fiber.Map{
		"csrfToken": token,
		"expiresAt": expiresAt,
	})
}

// HandleListMembers returns every member without passwords.
func (h *AuthHandler) HandleListMembers(c *fiber.Ctx) error {
	members, err := h.authService.ListMembers()
	if err != nil {
		return internalError("Failed to read members", err)
	}
	return c.JSON(members)
}

// HandleSignup handles new member registration.
func (h *AuthHandler) HandleSignup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = services.NormalizeEmail(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)

	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	member, err := h.authService.RegisterMember(services.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	})
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Email already registered"})
		}
		return internalError("Failed to create account", err)
	}

	h.auditor.Log(middleware.ClientIP(c), nil, audit.ActionSignup, map[string]any{
		"memberId": member.ID,
		"email":    member.Email,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Account created successfully",
		"member":  member.Public(),
	})
}

// HandleLogin checks credentials and issues a session token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	req.Email = services.NormalizeEmail(req.Email)

	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	ip := middleware.ClientIP(c)
	result, err := h.authService.LoginMember(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			logger.Warn().Str("ip", ip).Str("email", req.Email).Msg("failed login attempt")
			h.auditor.Log(ip, nil, audit.ActionLoginFailed, map[string]any{"email": req.Email})
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
		}
		return internalError("Login failed", err)
	}

	member := result.Member
	h.auditor.Log(ip, member.Identity(), audit.ActionLogin, nil)

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"member": fiber.Map{
			"id":    member.ID,
			"name":  member.Name,
			"email": member.Email,
		},
		"token":     result.Token,
		"expiresAt": result.ExpiresAt,
	})
}

// HandleLogout revokes the caller's session token.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	identity := middleware.CurrentIdentity(c)
	if identity == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	h.authService.RevokeToken(identity)
	h.auditor.Log(middleware.ClientIP(c), identity, audit.ActionLogout, nil)

	return c.JSON(fiber.Map{"message": "Logged out"})
}

// HandleMe returns the authenticated member.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	identity := middleware.CurrentIdentity(c)
	if identity == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	member, err := h.authService.GetMember(identity.ID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User account not found."})
		}
		return internalError("Failed to read member", err)
	}
	return c.JSON(member.Public())
}
