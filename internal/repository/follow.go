package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// FollowRepository handles database operations for the follower edge
type FollowRepository struct {
	db *pgxpool.Pool
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *pgxpool.Pool) *FollowRepository {
	return &FollowRepository{db: db}
}

// Create inserts a follower edge. Inserting an existing edge is a no-op,
// so concurrent duplicate follows collapse to a single edge.
func (r *FollowRepository) Create(ctx context.Context, followerID, followedID string) error {
	query := `
		INSERT INTO followers (follower_id, followed_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (follower_id, followed_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, followerID, followedID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to create follow: %w", err)
	}
	return nil
}

// Delete removes a follower edge. Removing a missing edge is a no-op.
func (r *FollowRepository) Delete(ctx context.Context, followerID, followedID string) error {
	query := `DELETE FROM followers WHERE follower_id = $1 AND followed_id = $2`
	_, err := r.db.Exec(ctx, query, followerID, followedID)
	if err != nil {
		return fmt.Errorf("failed to delete follow: %w", err)
	}
	return nil
}

// Exists checks whether followerID follows followedID
func (r *FollowRepository) Exists(ctx context.Context, followerID, followedID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM followers WHERE follower_id = $1 AND followed_id = $2)`
	var exists bool
	err := r.db.QueryRow(ctx, query, followerID, followedID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check follow existence: %w", err)
	}
	return exists, nil
}
