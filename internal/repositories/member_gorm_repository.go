package repositories

import (
	"errors"
	"fmt"

	"portfolio/internal/models"

	"gorm.io/gorm"
)

// GORMMemberRepository is a GORM implementation of MemberRepository.
type GORMMemberRepository struct {
	db *gorm.DB
}

// NewGORMMemberRepository creates a new instance of GORMMemberRepository.
func NewGORMMemberRepository(db *gorm.DB) *GORMMemberRepository {
	return &GORMMemberRepository{
		db: db,
	}
}

// GetAll retrieves all members ordered by registration time.
func (r *GORMMemberRepository) GetAll() ([]models.Member, error) {
	var members []models.Member
	if err := r.db.Order("created_at").Find(&members).Error; err != nil {
		return nil, fmt.Errorf("failed to get all members: %w", err)
	}
	return members, nil
}

// GetByID retrieves a member by its ID.
func (r *GORMMemberRepository) GetByID(id string) (*models.Member, error) {
	var member models.Member
	if err := r.db.First(&member, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("member with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get member by ID %s: %w", id, err)
	}
	return &member, nil
}

// GetByEmail retrieves a member by its normalized email.
func (r *GORMMemberRepository) GetByEmail(email string) (*models.Member, error) {
	var member models.Member
	if err := r.db.First(&member, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("member with email %s: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get member by email %s: %w", email, err)
	}
	return &member, nil
}

// Create inserts a member, rejecting an email that is already registered.
func (r *GORMMemberRepository) Create(member *models.Member) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Member{}).Where("email = ?", member.Email).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check email: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("email %s: %w", member.Email, ErrDuplicate)
		}
		if member.ID == "" {
			member.ID = timestampID(func(id string) bool {
				var n int64
				tx.Model(&models.Member{}).Where("id = ?", id).Count(&n)
				return n > 0
			})
		}
		if err := tx.Create(member).Error; err != nil {
			return fmt.Errorf("failed to create member: %w", err)
		}
		return nil
	})
}

// UpdatePassword replaces the stored password of a member.
func (r *GORMMemberRepository) UpdatePassword(id, password string) error {
	res := r.db.Model(&models.Member{}).Where("id = ?", id).Update("password", password)
	if res.Error != nil {
		return fmt.Errorf("failed to update member password: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("member with ID %s: %w", id, ErrNotFound)
	}
	return nil
}
