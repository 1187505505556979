package models

import "time"

// User represents a registered account. ImageFile names the stored profile
// picture, "default.jpg" when none was uploaded.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	ImageFile    string    `json:"image_file"`
	CreatedAt    time.Time `json:"created_at"`
}

// Post represents a text post, optionally with an attached image.
// The owning user never changes after creation.
type Post struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Body      string    `json:"body"`
	ImageFile *string   `json:"image_file,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	// Author fields joined in for listings.
	AuthorUsername string `json:"author_username,omitempty"`
	AuthorImage    string `json:"author_image,omitempty"`
}

// Message represents a direct message between two users.
// Messages are immutable after creation.
type Message struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"sender_id"`
	RecipientID string    `json:"recipient_id"`
	Body        string    `json:"body"`
	CreatedAt   time.Time `json:"created_at"`

	// Sender username joined in for conversation rendering.
	SenderUsername string `json:"sender_username,omitempty"`
}
