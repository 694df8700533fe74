package repositories

import (
	"fmt"

	"portfolio/internal/models"
)

// JSONMemberRepository keeps members in a single JSON array file.
type JSONMemberRepository struct {
	file *jsonFile[models.Member]
}

// NewJSONMemberRepository creates a member repository backed by path.
func NewJSONMemberRepository(path string) *JSONMemberRepository {
	return &JSONMemberRepository{file: newJSONFile[models.Member](path)}
}

// GetAll returns all members.
func (r *JSONMemberRepository) GetAll() ([]models.Member, error) {
	r.file.mu.Lock()
	defer r.file.mu.Unlock()

	return r.file.load()
}

// GetByID returns a member by its ID.
func (r *JSONMemberRepository) GetByID(id string) (*models.Member, error) {
	r.file.mu.Lock()
	defer r.file.mu.Unlock()

	members, err := r.file.load()
	if err != nil {
		return nil, err
	}
	for i := range members {
		if members[i].ID == id {
			return &members[i], nil
		}
	}
	return nil, fmt.Errorf("member with ID %s: %w", id, ErrNotFound)
}

// GetByEmail returns a member by its normalized email.
func (r *JSONMemberRepository) GetByEmail(email string) (*models.Member, error) {
	r.file.mu.Lock()
	defer r.file.mu.Unlock()

	members, err := r.file.load()
	if err != nil {
		return nil, err
	}
	for i := range members {
		if members[i].Email == email {
			return &members[i], nil
		}
	}
	return nil, fmt.Errorf("member with email %s: %w", email, ErrNotFound)
}

// Create appends a member. The email must not already be registered.
func (r *JSONMemberRepository) Create(member *models.Member) error {
	r.file.mu.Lock()
	defer r.file.mu.Unlock()

	members, err := r.file.load()
	if err != nil {
		return err
	}
	ids := make(map[string]bool, len(members))
	for _, m := range members {
		if m.Email == member.Email {
			return fmt.Errorf("email %s: %w", member.Email, ErrDuplicate)
		}
		ids[m.ID] = true
	}
	if member.ID == "" || ids[member.ID] {
		member.ID = timestampID(func(id string) bool { return ids[id] })
	}

	members = append(members, *member)
	if err := r.file.save(members); err != nil {
		return fmt.Errorf("failed to create member: %w", err)
	}
	return nil
}

// UpdatePassword replaces the stored password of a member.
func (r *JSONMemberRepository) UpdatePassword(id, password string) error {
	r.file.mu.Lock()
	defer r.file.mu.Unlock()

	members, err := r.file.load()
	if err != nil {
		return err
	}
	for i := range members {
		if members[i].ID == id {
			members[i].Password = password
			if err := r.file.save(members); err != nil {
				return fmt.Errorf("failed to update member password: %w", err)
			}
			return nil
		}
	}
	return fmt.Errorf("member with ID %s: %w", id, ErrNotFound)
}
