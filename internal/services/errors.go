package services

import "errors"

// Sentinel errors surfaced to the HTTP layer. Not-found conditions are
// reported with repository.ErrNotFound and propagate unchanged.
var (
	ErrForbidden          = errors.New("not allowed")
	ErrSelfAction         = errors.New("cannot target yourself")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already taken")
	ErrEmptyBody          = errors.New("body must not be empty")
	ErrBadImage           = errors.New("unsupported or corrupt image")
)
