package repositories

import "portfolio/internal/models"

// ProjectRepository defines the interface for project data access.
type ProjectRepository interface {
	GetAll() ([]models.Project, error)
	GetByID(id int) (*models.Project, error)
	// Create assigns the next free id (max existing + 1) before storing.
	Create(project *models.Project) error
	Update(project *models.Project) error
	Delete(id int) error
}
