package handlers

import (
	"errors"
	"strings"

	"portfolio/internal/audit"
	"portfolio/internal/middleware"
	"portfolio/internal/models"
	"portfolio/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ProjectHandler handles HTTP requests for portfolio projects.
type ProjectHandler struct {
	projectService *services.ProjectService
	auditor        *audit.Logger
	validate       *validator.Validate
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService *services.ProjectService, auditor *audit.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		auditor:        auditor,
		validate:       NewValidator(),
	}
}

// RegisterRoutes registers the project routes. Reads are public.
func (h *ProjectHandler) RegisterRoutes(router fiber.Router, mw RouteMiddleware) {
	mw = mw.orPassthrough()

	projectRoutes := router.Group("/projects")
	projectRoutes.Get("/", h.HandleGetAllProjects)
	projectRoutes.Get("/:id", h.HandleGetProjectByID)
	projectRoutes.Post("/", mw.Auth, mw.Admin, mw.CSRF, h.HandleSaveProject)
	projectRoutes.Delete("/:id", mw.Auth, mw.Admin, mw.CSRF, h.HandleDeleteProject)
}

// HandleGetAllProjects returns all projects ordered by id.
func (h *ProjectHandler) HandleGetAllProjects(c *fiber.Ctx) error {
	projects, err := h.projectService.GetAllProjects()
	if err != nil {
		return internalError("Failed to read projects", err)
	}
	return c.JSON(projects)
}

// HandleGetProjectByID returns a single project.
func (h *ProjectHandler) HandleGetProjectByID(c *fiber.Ctx) error {
	id, ok := projectID(c)
	if !ok {
		return invalidProjectID(c)
	}

	project, err := h.projectService.GetProjectByID(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Project not found"})
		}
		return internalError("Failed to read project", err)
	}
	return c.JSON(project)
}

// HandleSaveProject creates a project, or merges the given fields into an
// existing one when the body carries an id.
func (h *ProjectHandler) HandleSaveProject(c *fiber.Ctx) error {
	var in models.ProjectInput
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c, err)
	}
	trim(in.Title)
	trim(in.Description)
	trim(in.Category)

	if err := h.validate.Struct(in); err != nil {
		return validationFailed(c, err)
	}

	project, err := h.projectService.SaveProject(&in)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Project not found"})
		}
		return internalError("Failed to save project", err)
	}

	h.auditor.Log(middleware.ClientIP(c), middleware.CurrentIdentity(c), audit.ActionProjectSaved, map[string]any{
		"projectId": project.ID,
		"title":     project.Title,
		"updated":   in.ID != nil,
	})

	return c.JSON(fiber.Map{
		"message": "Project saved successfully",
		"project": project,
	})
}

// HandleDeleteProject removes a project.
func (h *ProjectHandler) HandleDeleteProject(c *fiber.Ctx) error {
	id, ok := projectID(c)
	if !ok {
		return invalidProjectID(c)
	}

	if err := h.projectService.DeleteProject(id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Project not found"})
		}
		return internalError("Failed to delete project", err)
	}

	h.auditor.Log(middleware.ClientIP(c), middleware.CurrentIdentity(c), audit.ActionProjectDeleted, map[string]any{
		"projectId": id,
	})

	return c.JSON(fiber.Map{"message": "Project deleted successfully"})
}

func projectID(c *fiber.Ctx) (int, bool) {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

func invalidProjectID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":   "Validation failed",
		"details": fiber.Map{"id": "id must be a positive integer"},
	})
}

func trim(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
