package handlers

import (
	"errors"
	"strings"

	"portfolio/internal/audit"
	"portfolio/internal/middleware"
	"portfolio/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// MessageHandler handles HTTP requests for contact messages.
type MessageHandler struct {
	messageService *services.MessageService
	auditor        *audit.Logger
	validate       *validator.Validate
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(messageService *services.MessageService, auditor *audit.Logger) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		auditor:        auditor,
		validate:       NewValidator(),
	}
}

// RegisterRoutes registers the contact and message routes.
func (h *MessageHandler) RegisterRoutes(router fiber.Router, mw RouteMiddleware) {
	mw = mw.orPassthrough()

	router.Post("/contact", mw.Auth, mw.CSRF, h.HandleContact)
	router.Get("/messages", mw.Auth, mw.Admin, h.HandleListMessages)
}

// ContactRequest is the body of POST /contact.
type ContactRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,min=2,max=200"`
	Message string `json:"message" validate:"required,min=2,max=5000"`
}

// HandleContact stores a message from the authenticated member.
func (h *MessageHandler) HandleContact(c *fiber.Ctx) error {
	identity := middleware.CurrentIdentity(c)
	if identity == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req ContactRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = services.NormalizeEmail(req.Email)
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)

	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	message, err := h.messageService.SubmitMessage(identity, services.ContactInput{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User account not found."})
		}
		return internalError("Failed to send message", err)
	}

	h.auditor.Log(middleware.ClientIP(c), identity, audit.ActionMessageSent, map[string]any{
		"messageId": message.ID,
		"subject":   message.Subject,
	})

	return c.JSON(fiber.Map{
		"message":   "Message sent successfully",
		"messageId": message.ID,
	})
}

// HandleListMessages returns all messages with the sender's phone number.
func (h *MessageHandler) HandleListMessages(c *fiber.Ctx) error {
	messages, err := h.messageService.ListMessages()
	if err != nil {
		return internalError("Failed to read messages", err)
	}
	return c.JSON(messages)
}
