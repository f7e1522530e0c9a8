package domain

import (
	"context"
	"time"
)

// Role is the access level of a shop user.
type Role string

const (
	RoleManager   Role = "manager"
	RoleReception Role = "reception"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleManager || r == RoleReception
}

// UserRow represents a user record returned from the database.
// It includes the password hash so the Logic layer can verify credentials.
type UserRow struct {
	ID           int
	Username     string
	PasswordHash string
	Role         Role
}

// User is the public view of a shop user.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned on successful login.
type AuthResponse struct {
	User      User      `json:"user"`
	SessionID string    `json:"session_id"`
	CSRFToken string    `json:"csrf_token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserRepository defines the data-access contract for user operations.
// The Logic layer depends on this interface only, never on SQL or pgx directly.
type UserRepository interface {
	// GetByUsername returns the user matching the given username.
	// Returns (nil, nil) when no user is found.
	GetByUsername(ctx context.Context, username string) (*UserRow, error)

	// ExistsByUsername returns true when the username is taken.
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// Create inserts a new user and returns the generated user ID.
	Create(ctx context.Context, username, passwordHash string, role Role) (int, error)

	// UpdateLastLogin sets the last_login timestamp to now for the given user.
	UpdateLastLogin(ctx context.Context, userID int) error
}
