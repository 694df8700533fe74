package repositories

import (
	"errors"
	"fmt"

	"portfolio/internal/models"

	"gorm.io/gorm"
)

// GORMProjectRepository is a GORM implementation of ProjectRepository.
type GORMProjectRepository struct {
	db *gorm.DB
}

// NewGORMProjectRepository creates a new instance of GORMProjectRepository.
func NewGORMProjectRepository(db *gorm.DB) *GORMProjectRepository {
	return &GORMProjectRepository{
		db: db,
	}
}

// GetAll retrieves all projects ordered by id.
func (r *GORMProjectRepository) GetAll() ([]models.Project, error) {
	var projects []models.Project
	if err := r.db.Order("id").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("failed to get all projects: %w", err)
	}
	return projects, nil
}

// GetByID retrieves a single project by its id.
func (r *GORMProjectRepository) GetByID(id int) (*models.Project, error) {
	var project models.Project
	if err := r.db.First(&project, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("project with ID %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get project by ID %d: %w", id, err)
	}
	return &project, nil
}

// Create inserts a project under max(id)+1.
func (r *GORMProjectRepository) Create(project *models.Project) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var maxID int
		if err := tx.Model(&models.Project{}).Select("COALESCE(MAX(id), 0)").Scan(&maxID).Error; err != nil {
			return fmt.Errorf("failed to compute next project id: %w", err)
		}
		project.ID = maxID + 1
		if err := tx.Create(project).Error; err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}
		return nil
	})
}

// Update replaces an existing project.
func (r *GORMProjectRepository) Update(project *models.Project) error {
	res := r.db.Model(&models.Project{}).Where("id = ?", project.ID).Select("*").Updates(project)
	if res.Error != nil {
		return fmt.Errorf("failed to update project: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("project with ID %d: %w", project.ID, ErrNotFound)
	}
	return nil
}

// Delete deletes a project by its id.
func (r *GORMProjectRepository) Delete(id int) error {
	res := r.db.Delete(&models.Project{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete project: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("project with ID %d: %w", id, ErrNotFound)
	}
	return nil
}
