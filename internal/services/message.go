package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"microblog-server/internal/models"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

// MessageStore is the persistence surface the message service depends on.
// ListBetween returns messages oldest first regardless of direction.
type MessageStore interface {
	Create(ctx context.Context, msg *models.Message) error
	ListBetween(ctx context.Context, userAID, userBID string) ([]*models.Message, error)
	ListPartners(ctx context.Context, userID string) ([]*models.User, error)
}

// MessageService handles direct messages between users
type MessageService struct {
	messages  MessageStore
	users     UserStore
	sanitizer *bluemonday.Policy
}

// NewMessageService creates a new message service
func NewMessageService(messages MessageStore, users UserStore) *MessageService {
	return &MessageService{
		messages:  messages,
		users:     users,
		sanitizer: bluemonday.UGCPolicy(),
	}
}

// Send sanitizes and persists a message to the named recipient. Messaging
// yourself is rejected with ErrSelfAction.
func (s *MessageService) Send(ctx context.Context, senderID, recipientUsername, body string) (*models.Message, error) {
	recipient, err := s.users.GetByUsername(ctx, strings.ToLower(recipientUsername))
	if err != nil {
		return nil, fmt.Errorf("failed to get recipient: %w", err)
	}

	if recipient.ID == senderID {
		return nil, ErrSelfAction
	}

	clean := strings.TrimSpace(s.sanitizer.Sanitize(body))
	if clean == "" {
		return nil, ErrEmptyBody
	}

	msg := &models.Message{
		ID:          uuid.New().String(),
		SenderID:    senderID,
		RecipientID: recipient.ID,
		Body:        clean,
		CreatedAt:   time.Now(),
	}

	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	return msg, nil
}

// Conversation returns the other user and every message exchanged with
// them, oldest first. A conversation with yourself reports ErrSelfAction.
func (s *MessageService) Conversation(ctx context.Context, userID, otherUsername string) (*models.User, []*models.Message, error) {
	other, err := s.users.GetByUsername(ctx, strings.ToLower(otherUsername))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}

	if other.ID == userID {
		return nil, nil, ErrSelfAction
	}

	messages, err := s.messages.ListBetween(ctx, userID, other.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list conversation: %w", err)
	}

	return other, messages, nil
}

// Partners returns the distinct users the given user has exchanged at
// least one message with, in either direction.
func (s *MessageService) Partners(ctx context.Context, userID string) ([]*models.User, error) {
	return s.messages.ListPartners(ctx, userID)
}
