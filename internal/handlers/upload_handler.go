package handlers

import (
	"errors"

	"portfolio/internal/audit"
	"portfolio/internal/middleware"
	"portfolio/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UploadHandler handles project media uploads.
type UploadHandler struct {
	uploadService *services.UploadService
	auditor       *audit.Logger
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(uploadService *services.UploadService, auditor *audit.Logger) *UploadHandler {
	return &UploadHandler{uploadService: uploadService, auditor: auditor}
}

// RegisterRoutes registers the upload route.
func (h *UploadHandler) RegisterRoutes(router fiber.Router, mw RouteMiddleware) {
	mw = mw.orPassthrough()
	router.Post("/upload", mw.Auth, mw.UploadLimit, mw.CSRF, h.HandleUpload)
}

// HandleUpload stores the multipart field "file" under the category given
// by the form field "category".
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No file uploaded"})
	}

	result, err := h.uploadService.Store(header, c.FormValue("category"))
	if err != nil {
		if errors.Is(err, services.ErrUnsupportedMedia) {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{"error": "Only image and video files are allowed"})
		}
		return internalError("Upload failed", err)
	}

	h.auditor.Log(middleware.ClientIP(c), middleware.CurrentIdentity(c), audit.ActionFileUploaded, map[string]any{
		"url":  result.URL,
		"type": result.Type,
		"size": header.Size,
	})

	return c.JSON(result)
}
