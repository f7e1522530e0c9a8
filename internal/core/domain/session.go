package domain

import (
	"context"
	"time"
)

// Session is a server-side record binding an opaque id to an authenticated user.
type Session struct {
	ID        string
	UserID    int
	Username  string
	Role      Role
	CSRFToken string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionRepository defines the data-access contract for session operations.
// Implementations live in internal/core/repository (Core layer).
type SessionRepository interface {
	// Create persists a new session. It returns only after the write is durable.
	Create(ctx context.Context, s *Session) error

	// Get looks up a session by id regardless of expiry.
	// Returns (nil, nil) when the id does not match any session.
	Get(ctx context.Context, id string) (*Session, error)

	// Delete removes the session. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error

	// BindCSRFToken stores token on the session only if it has none yet and
	// returns the token that is bound after the call.
	// Returns ("", nil) when the session does not exist.
	BindCSRFToken(ctx context.Context, id, token string) (string, error)

	// DeleteExpired removes sessions whose expiry is at or before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
