package repositories

import (
	"fmt"
	"sort"

	"portfolio/internal/models"
)

// JSONProjectRepository keeps projects in a structured JSON data file.
type JSONProjectRepository struct {
	file *jsonFile[models.Project]
}

// NewJSONProjectRepository creates a project repository backed by path.
func NewJSONProjectRepository(path string) *JSONProjectRepository {
	return &JSONProjectRepository{file: newJSONFile[models.Project](path)}
}

// GetAll returns all projects ordered by id.
func (r *JSONProjectRepository) GetAll() ([]models.Project, error) {
	r.file.mu.Lock()
	defer r.file.mu.Unlock()

	projects, err := r.file.load()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(projects, func(i, j int) bool { return projects[i].ID < projects[j].ID })
	return projects, nil
}

// GetByID returns a project by its id.
func (r *JSONProjectRepository) GetByID(id int) (*models.Project, error) {
	r.file.mu.Lock()
	defer r.file.mu.Unlock()

	projects, err := r.file.load()
	if err != nil {
		return nil, err
	}
	for i := range projects {
		if projects[i].ID == id {
			return &projects[i], nil
		}
	}
	return nil, fmt.Errorf("project with ID %d: %w", id, ErrNotFound)
}

// Create stores a new project under the next free id.
func (r *JSONProjectRepository) Create(project *models.Project) error {
	r.file.mu.Lock()
	defer r.file.mu.Unlock()

	projects, err := r.file.load()
	if err != nil {
		return err
	}
	maxID := 0
	for _, p := range projects {
		if p.ID > maxID {
			maxID = p.ID
		}
	}
	project.ID = maxID + 1

	projects = append(projects, *project)
	if err := r.file.save(projects); err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// Update replaces an existing project.
func (r *JSONProjectRepository) Update(project *models.Project) error {
	r.file.mu.Lock()
	defer r.file.mu.Unlock()

	projects, err := r.file.load()
	if err != nil {
		return err
	}
	for i := range projects {
		if projects[i].ID == project.ID {
			projects[i] = *project
			if err := r.file.save(projects); err != nil {
				return fmt.Errorf("failed to update project: %w", err)
			}
			return nil
		}
	}
	return fmt.Errorf("project with ID %d: %w", project.ID, ErrNotFound)
}

// Delete removes a project by its id.
func (r *JSONProjectRepository) Delete(id int) error {
	r.file.mu.Lock()
	defer r.file.mu.Unlock()

	projects, err := r.file.load()
	if err != nil {
		return err
	}
	kept := projects[:0]
	for _, p := range projects {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(projects) {
		return fmt.Errorf("project with ID %d: %w", id, ErrNotFound)
	}
	if err := r.file.save(kept); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}
