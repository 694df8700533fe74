package repositories

import "portfolio/internal/models"

// MemberRepository defines the interface for member data access.
type MemberRepository interface {
	GetAll() ([]models.Member, error)
	GetByID(id string) (*models.Member, error)
	GetByEmail(email string) (*models.Member, error)
	Create(member *models.Member) error
	UpdatePassword(id, password string) error
}
