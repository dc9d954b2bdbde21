package domain

import (
	"context"
	"time"
)

// User represents a registered user
// swagger:model User
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Password string `json:"-"` // bcrypt hash, never serialized
}

// NewUser returns a new User with the given fields. ID is set by the repository on create.
func NewUser(username, passwordHash string) *User {
	return &User{
		Username: username,
		Password: passwordHash,
	}
}

// PasswordHasher handles password hashing and verification.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID int64, username string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID int64, err error)
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	// Create stores the user and assigns its ID. Returns ErrConflict
	// when the username is already taken.
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
}

// AuthService defines the business logic for registration and login.
type AuthService interface {
	SignUp(ctx context.Context, username, password string) (*User, error)
	Login(ctx context.Context, username, password string) (token string, user *User, err error)
}
