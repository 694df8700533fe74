package repositories

import "portfolio/internal/models"

// MessageRepository defines the interface for contact message data access.
type MessageRepository interface {
	GetAll() ([]models.Message, error)
	Create(message *models.Message) error
}
