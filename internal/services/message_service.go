package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"portfolio/internal/models"
	"portfolio/internal/repositories"
	"portfolio/pkg/logger"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// MessageCreatedRoutingKey is the routing key of new contact message events.
const MessageCreatedRoutingKey = "message.created"

// ContactInput is a validated contact form submission.
type ContactInput struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// MessageService handles contact messages.
type MessageService struct {
	messageRepo repositories.MessageRepository
	memberRepo  repositories.MemberRepository
	publisher   EventPublisher
}

// NewMessageService creates a new MessageService. publisher may be nil.
func NewMessageService(messageRepo repositories.MessageRepository, memberRepo repositories.MemberRepository, publisher EventPublisher) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		memberRepo:  memberRepo,
		publisher:   publisher,
	}
}

// SubmitMessage stores a message from the authenticated member and
// announces it on the broker.
func (s *MessageService) SubmitMessage(sender *models.Identity, in ContactInput) (*models.Message, error) {
	if _, err := s.memberRepo.GetByID(sender.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("member %s: %w", sender.ID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load member: %w", err)
	}

	message := &models.Message{
		UserID:    sender.ID,
		UserName:  strings.TrimSpace(in.Name),
		UserEmail: NormalizeEmail(in.Email),
		Subject:   strings.TrimSpace(in.Subject),
		Message:   strings.TrimSpace(in.Message),
		CreatedAt: time.Now().UTC(),
		Read:      false,
	}
	if err := s.messageRepo.Create(message); err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}

	logger.Info().
		Str("message_id", message.ID).
		Str("from", message.UserEmail).
		Str("subject", message.Subject).
		Msg("new contact message")

	s.publishCreated(message)
	return message, nil
}

func (s *MessageService) publishCreated(message *models.Message) {
	if s.publisher == nil {
		return
	}
	body, err := json.Marshal(map[string]interface{}{
		"messageId": message.ID,
		"userId":    message.UserID,
		"userName":  message.UserName,
		"userEmail": message.UserEmail,
		"subject":   message.Subject,
		"createdAt": message.CreatedAt,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("failed to marshal message event")
		return
	}
	if err := s.publisher.Publish("", MessageCreatedRoutingKey, body); err != nil {
		logger.Warn().Err(err).Str("message_id", message.ID).Msg("failed to publish message event")
	}
}

// ListMessages returns all messages with the sender's current phone number.
func (s *MessageService) ListMessages() ([]models.EnrichedMessage, error) {
	messages, err := s.messageRepo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}
	members, err := s.memberRepo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read members: %w", err)
	}

	phones := make(map[string]string, len(members))
	for _, m := range members {
		phones[m.ID] = m.Phone
	}

	enriched := make([]models.EnrichedMessage, 0, len(messages))
	for _, msg := range messages {
		item := models.EnrichedMessage{Message: msg}
		if phone := phones[msg.UserID]; phone != "" {
			p := phone
			item.UserPhone = &p
		}
		enriched = append(enriched, item)
	}
	return enriched, nil
}
