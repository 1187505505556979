package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"microblog-server/internal/models"
	"microblog-server/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const sessionExpDays = 30

// UserStore is the persistence surface the user service depends on.
// Not-found conditions satisfy errors.Is(err, repository.ErrNotFound).
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UsernameExists(ctx context.Context, username, excludeID string) (bool, error)
	EmailExists(ctx context.Context, email, excludeID string) (bool, error)
	Update(ctx context.Context, user *models.User) error
}

// UserService handles identity, credentials and session tokens
type UserService struct {
	users     UserStore
	media     MediaStore
	jwtSecret string
}

// NewUserService creates a new user service
func NewUserService(users UserStore, media MediaStore, jwtSecret string) *UserService {
	return &UserService{
		users:     users,
		media:     media,
		jwtSecret: jwtSecret,
	}
}

// Register creates a user with a bcrypt-hashed password. Username and
// email are normalized to lower case; both must be globally unique.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))

	taken, err := s.users.UsernameExists(ctx, username, "")
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	taken, err = s.users.EmailExists(ctx, email, "")
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		ImageFile:    DefaultProfileImage,
		CreatedAt:    time.Now(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login verifies credentials. Unknown email and wrong password both come
// back as ErrInvalidCredentials so callers cannot tell which was wrong.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// SessionToken generates a signed session token for a user
func (s *UserService) SessionToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().AddDate(0, 0, sessionExpDays).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateSession validates a session token and returns the user ID
func (s *UserService) ValidateSession(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return "", fmt.Errorf("user_id not found in token")
	}

	return userID, nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// GetByUsername retrieves a user by username
func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.users.GetByUsername(ctx, username)
}

// UpdateAccount updates a user's username, email and optionally their
// profile picture. A new picture replaces the stored reference; the
// previous file is removed best-effort afterwards. A bad upload aborts
// the whole update.
func (s *UserService) UpdateAccount(ctx context.Context, userID, username, email string, upload io.Reader, uploadName string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))

	taken, err := s.users.UsernameExists(ctx, username, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	taken, err = s.users.EmailExists(ctx, email, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	oldImage := ""
	if upload != nil {
		filename, err := s.media.Store(ctx, upload, uploadName, ImageProfile)
		if err != nil {
			return nil, err
		}
		oldImage = user.ImageFile
		user.ImageFile = filename
	}

	user.Username = username
	user.Email = email

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if oldImage != "" {
		if err := s.media.Remove(ctx, ImageProfile, oldImage); err != nil {
			log.Warn().
				Err(err).
				Str("user_id", userID).
				Str("image", oldImage).
				Msg("Failed to remove old profile image")
		}
	}

	return user, nil
}
