package repository

import (
	"context"
	"errors"
	"fmt"

	"microblog-server/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostRepository handles database operations for posts
type PostRepository struct {
	db *pgxpool.Pool
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *pgxpool.Pool) *PostRepository {
	return &PostRepository{db: db}
}

// Create creates a new post
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (id, user_id, body, image_file, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query,
		post.ID, post.UserID, post.Body, post.ImageFile, post.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// GetByID retrieves a post by ID
func (r *PostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	query := `
		SELECT p.id, p.user_id, p.body, p.image_file, p.created_at, u.username, u.image_file
		FROM posts p
		JOIN users u ON u.id = p.user_id
		WHERE p.id = $1
	`
	var post models.Post
	err := r.db.QueryRow(ctx, query, id).Scan(
		&post.ID, &post.UserID, &post.Body, &post.ImageFile, &post.CreatedAt,
		&post.AuthorUsername, &post.AuthorImage,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("post not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return &post, nil
}

// ListAll retrieves all posts, newest first
func (r *PostRepository) ListAll(ctx context.Context) ([]*models.Post, error) {
	query := `
		SELECT p.id, p.user_id, p.body, p.image_file, p.created_at, u.username, u.image_file
		FROM posts p
		JOIN users u ON u.id = p.user_id
		ORDER BY p.created_at DESC
	`
	return r.list(ctx, query)
}

// ListByUser retrieves one user's posts, newest first
func (r *PostRepository) ListByUser(ctx context.Context, userID string) ([]*models.Post, error) {
	query := `
		SELECT p.id, p.user_id, p.body, p.image_file, p.created_at, u.username, u.image_file
		FROM posts p
		JOIN users u ON u.id = p.user_id
		WHERE p.user_id = $1
		ORDER BY p.created_at DESC
	`
	return r.list(ctx, query, userID)
}

func (r *PostRepository) list(ctx context.Context, query string, args ...any) ([]*models.Post, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		var post models.Post
		err := rows.Scan(
			&post.ID, &post.UserID, &post.Body, &post.ImageFile, &post.CreatedAt,
			&post.AuthorUsername, &post.AuthorImage,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, &post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}

	return posts, nil
}

// Delete deletes a post by ID
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM posts WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("post not found: %w", ErrNotFound)
	}
	return nil
}
