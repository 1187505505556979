package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"microblog-server/internal/models"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog/log"
)

// PostStore is the persistence surface the post service depends on.
// Listings come back newest first with author fields joined in.
type PostStore interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	ListAll(ctx context.Context) ([]*models.Post, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Post, error)
	Delete(ctx context.Context, id string) error
}

// PostService handles post-related business logic
type PostService struct {
	posts     PostStore
	users     UserStore
	media     MediaStore
	sanitizer *bluemonday.Policy
}

// NewPostService creates a new post service
func NewPostService(posts PostStore, users UserStore, media MediaStore) *PostService {
	return &PostService{
		posts:     posts,
		users:     users,
		media:     media,
		sanitizer: bluemonday.UGCPolicy(),
	}
}

// Create sanitizes the body, stores the optional image and persists the
// post with a server timestamp. A bad upload aborts the whole operation.
func (s *PostService) Create(ctx context.Context, ownerID, body string, upload io.Reader, uploadName string) (*models.Post, error) {
	clean := strings.TrimSpace(s.sanitizer.Sanitize(body))
	if clean == "" {
		return nil, ErrEmptyBody
	}

	post := &models.Post{
		ID:        uuid.New().String(),
		UserID:    ownerID,
		Body:      clean,
		CreatedAt: time.Now(),
	}

	if upload != nil {
		filename, err := s.media.Store(ctx, upload, uploadName, ImagePost)
		if err != nil {
			return nil, err
		}
		post.ImageFile = &filename
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	return post, nil
}

// ListAll returns all posts, newest first
func (s *PostService) ListAll(ctx context.Context) ([]*models.Post, error) {
	return s.posts.ListAll(ctx)
}

// ListByUsername returns one user's posts, newest first, along with the
// user. Unknown usernames report repository.ErrNotFound.
func (s *PostService) ListByUsername(ctx context.Context, username string) (*models.User, []*models.Post, error) {
	user, err := s.users.GetByUsername(ctx, strings.ToLower(username))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}

	posts, err := s.posts.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list posts: %w", err)
	}

	return user, posts, nil
}

// Delete removes a post owned by the actor. The associated image file is
// removed best-effort first; a failed removal is logged and never blocks
// the record delete.
func (s *PostService) Delete(ctx context.Context, actorID, postID string) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return fmt.Errorf("failed to get post: %w", err)
	}

	if post.UserID != actorID {
		return ErrForbidden
	}

	if post.ImageFile != nil && *post.ImageFile != "" {
		if err := s.media.Remove(ctx, ImagePost, *post.ImageFile); err != nil {
			log.Warn().
				Err(err).
				Str("post_id", postID).
				Str("image", *post.ImageFile).
				Msg("Failed to remove post image")
		}
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	return nil
}
