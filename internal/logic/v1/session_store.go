package v1

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/pos-service/internal/core/domain"
	"github.com/duynhne/pos-service/middleware"
)

// SessionStore issues, validates and destroys sessions. It is the only
// component that writes session records.
type SessionStore struct {
	repo domain.SessionRepository
	ttl  time.Duration
	now  func() time.Time
}

// NewSessionStore creates a SessionStore whose sessions live for ttl.
func NewSessionStore(repo domain.SessionRepository, ttl time.Duration) *SessionStore {
	return &SessionStore{repo: repo, ttl: ttl, now: time.Now}
}

// TTL returns the fixed session lifetime.
func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}

// CreateSession issues a session for user with a CSRF token bound from the start.
// The record is durable before CreateSession returns.
func (s *SessionStore) CreateSession(ctx context.Context, user domain.User) (*domain.Session, error) {
	ctx, span := middleware.StartSpan(ctx, "session.create", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int("user.id", user.ID),
	))
	defer span.End()

	id, err := randomToken(sessionIDBytes)
	if err != nil {
		return nil, err
	}
	csrf, err := randomToken(csrfTokenBytes)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	sess := &domain.Session{
		ID:        id,
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		CSRFToken: csrf,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.repo.Create(ctx, sess); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("persist session for user %d: %w: %w", user.ID, ErrStorage, err)
	}

	sessionsCreated.Inc()
	return sess, nil
}

// GetSession returns the live session for id. Unknown and expired ids both
// yield ErrSessionNotFound; expiry is judged here, at lookup time.
func (s *SessionStore) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	if id == "" {
		return nil, fmt.Errorf("lookup session: %w", ErrSessionNotFound)
	}

	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("query session: %w: %w", ErrStorage, err)
	}
	if sess == nil {
		return nil, fmt.Errorf("lookup session: %w", ErrSessionNotFound)
	}
	if sess.Expired(s.now()) {
		return nil, fmt.Errorf("session expired at %v: %w", sess.ExpiresAt, ErrSessionNotFound)
	}

	return sess, nil
}

// ResolveSession adapts GetSession for the auth gate: a missing or expired
// session is reported as found=false rather than an error.
func (s *SessionStore) ResolveSession(ctx context.Context, id string) (*domain.Session, bool, error) {
	sess, err := s.GetSession(ctx, id)
	if errors.Is(err, ErrSessionNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return sess, true, nil
}

// DestroySession removes the session. Destroying an unknown id succeeds.
func (s *SessionStore) DestroySession(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w: %w", ErrStorage, err)
	}
	sessionsDestroyed.Inc()
	return nil
}

// PurgeExpired deletes expired session records. Lookups never depend on it.
func (s *SessionStore) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("purge expired sessions: %w: %w", ErrStorage, err)
	}
	return n, nil
}
