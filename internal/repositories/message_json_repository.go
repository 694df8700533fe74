package repositories

import (
	"fmt"

	"portfolio/internal/models"
)

// JSONMessageRepository keeps contact messages in a single JSON array file.
type JSONMessageRepository struct {
	file *jsonFile[models.Message]
}

// NewJSONMessageRepository creates a message repository backed by path.
func NewJSONMessageRepository(path string) *JSONMessageRepository {
	return &JSONMessageRepository{file: newJSONFile[models.Message](path)}
}

// GetAll returns all messages in submission order.
func (r *JSONMessageRepository) GetAll() ([]models.Message, error) {
	r.file.mu.Lock()
	defer r.file.mu.Unlock()

	return r.file.load()
}

// Create appends a message.
func (r *JSONMessageRepository) Create(message *models.Message) error {
	r.file.mu.Lock()
	defer r.file.mu.Unlock()

	messages, err := r.file.load()
	if err != nil {
		return err
	}
	ids := make(map[string]bool, len(messages))
	for _, m := range messages {
		ids[m.ID] = true
	}
	if message.ID == "" || ids[message.ID] {
		message.ID = timestampID(func(id string) bool { return ids[id] })
	}

	messages = append(messages, *message)
	if err := r.file.save(messages); err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}
