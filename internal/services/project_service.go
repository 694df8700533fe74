package services

import (
	"errors"
	"fmt"

	"portfolio/internal/models"
	"portfolio/internal/repositories"
)

// ProjectService handles business logic related to portfolio projects.
type ProjectService struct {
	repo repositories.ProjectRepository
}

// NewProjectService creates a new ProjectService.
func NewProjectService(repo repositories.ProjectRepository) *ProjectService {
	return &ProjectService{
		repo: repo,
	}
}

// GetAllProjects retrieves all projects.
func (s *ProjectService) GetAllProjects() ([]models.Project, error) {
	return s.repo.GetAll()
}

// GetProjectByID retrieves a single project by its id.
func (s *ProjectService) GetProjectByID(id int) (*models.Project, error) {
	project, err := s.repo.GetByID(id)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return project, nil
}

// SaveProject creates a project, or merges the input into an existing one
// when an id is given.
func (s *ProjectService) SaveProject(in *models.ProjectInput) (*models.Project, error) {
	if in.ID != nil {
		project, err := s.repo.GetByID(*in.ID)
		if err != nil {
			return nil, translateNotFound(err)
		}
		in.Apply(project)
		if err := s.repo.Update(project); err != nil {
			return nil, translateNotFound(err)
		}
		return project, nil
	}

	project := &models.Project{}
	in.Apply(project)
	if err := s.repo.Create(project); err != nil {
		return nil, err
	}
	return project, nil
}

// DeleteProject deletes a project by its id.
func (s *ProjectService) DeleteProject(id int) error {
	return translateNotFound(s.repo.Delete(id))
}

func translateNotFound(err error) error {
	if err != nil && errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}
