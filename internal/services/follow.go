package services

import (
	"context"
	"fmt"
	"strings"

	"microblog-server/internal/models"
)

// FollowStore is the persistence surface the follow service depends on.
// Create is idempotent; Delete of a missing edge is a no-op.
type FollowStore interface {
	Create(ctx context.Context, followerID, followedID string) error
	Delete(ctx context.Context, followerID, followedID string) error
	Exists(ctx context.Context, followerID, followedID string) (bool, error)
}

// FollowService handles the follower relationship
type FollowService struct {
	follows FollowStore
	users   UserStore
}

// NewFollowService creates a new follow service
func NewFollowService(follows FollowStore, users UserStore) *FollowService {
	return &FollowService{
		follows: follows,
		users:   users,
	}
}

// Follow makes the actor follow the target user. Following yourself is
// rejected with ErrSelfAction; following an already-followed user is a
// no-op.
func (s *FollowService) Follow(ctx context.Context, actorID, targetUsername string) (*models.User, error) {
	target, err := s.users.GetByUsername(ctx, strings.ToLower(targetUsername))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if target.ID == actorID {
		return nil, ErrSelfAction
	}

	if err := s.follows.Create(ctx, actorID, target.ID); err != nil {
		return nil, fmt.Errorf("failed to follow: %w", err)
	}

	return target, nil
}

// Unfollow removes the actor's follow of the target user
func (s *FollowService) Unfollow(ctx context.Context, actorID, targetUsername string) (*models.User, error) {
	target, err := s.users.GetByUsername(ctx, strings.ToLower(targetUsername))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if target.ID == actorID {
		return nil, ErrSelfAction
	}

	if err := s.follows.Delete(ctx, actorID, target.ID); err != nil {
		return nil, fmt.Errorf("failed to unfollow: %w", err)
	}

	return target, nil
}

// IsFollowing checks whether the actor follows the given user
func (s *FollowService) IsFollowing(ctx context.Context, actorID, targetID string) (bool, error) {
	return s.follows.Exists(ctx, actorID, targetID)
}
