package repository

import (
	"context"
	"fmt"

	"microblog-server/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MessageRepository handles database operations for direct messages
type MessageRepository struct {
	db *pgxpool.Pool
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create creates a new message
func (r *MessageRepository) Create(ctx context.Context, msg *models.Message) error {
	query := `
		INSERT INTO messages (id, sender_id, recipient_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query,
		msg.ID, msg.SenderID, msg.RecipientID, msg.Body, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// ListBetween retrieves all messages exchanged between two users in either
// direction, oldest first.
func (r *MessageRepository) ListBetween(ctx context.Context, userAID, userBID string) ([]*models.Message, error) {
	query := `
		SELECT m.id, m.sender_id, m.recipient_id, m.body, m.created_at, u.username
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE (m.sender_id = $1 AND m.recipient_id = $2)
		   OR (m.sender_id = $2 AND m.recipient_id = $1)
		ORDER BY m.created_at ASC
	`
	rows, err := r.db.Query(ctx, query, userAID, userBID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		var msg models.Message
		err := rows.Scan(
			&msg.ID, &msg.SenderID, &msg.RecipientID, &msg.Body, &msg.CreatedAt,
			&msg.SenderUsername,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, &msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}

	return messages, nil
}

// ListPartners retrieves the distinct users who have exchanged at least one
// message with the given user, in either direction.
func (r *MessageRepository) ListPartners(ctx context.Context, userID string) ([]*models.User, error) {
	query := `
		SELECT DISTINCT u.id, u.username, u.email, u.password_hash, u.image_file, u.created_at
		FROM users u
		JOIN messages m
		  ON (m.sender_id = u.id AND m.recipient_id = $1)
		  OR (m.recipient_id = u.id AND m.sender_id = $1)
		ORDER BY u.username
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversation partners: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var user models.User
		err := rows.Scan(
			&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.ImageFile, &user.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversation partner: %w", err)
		}
		users = append(users, &user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conversation partners: %w", err)
	}

	return users, nil
}
