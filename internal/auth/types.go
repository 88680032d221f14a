package auth

import (
	"errors"
	"regexp"
	"time"
)

// usernamePattern defines the valid format for usernames:
// alphanumeric, dots, hyphens, underscores, 3-64 characters.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{3,64}$`)

// IsValidUsername checks if a username meets format requirements.
func IsValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// UserType represents an authorisation tier.
type UserType string

const (
	// TypeUser is a household account: can read its own house's data and
	// recharge energy.
	TypeUser UserType = "user"

	// TypeAdmin manages houses, users, and the command queue.
	TypeAdmin UserType = "admin"
)

// IsValidUserType returns true for a recognised account type.
func IsValidUserType(t UserType) bool {
	return t == TypeUser || t == TypeAdmin
}

// User represents an account that can log in to the gateway.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // never serialised
	UserType     UserType  `json:"user_type"`
	CreatedAt    time.Time `json:"created_at"`
}

// Sentinel errors for auth operations.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameExists     = errors.New("username already exists")
	ErrTokenInvalid       = errors.New("invalid token")
)
