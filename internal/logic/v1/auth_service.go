package v1

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"github.com/duynhne/pos-service/internal/core/domain"
	"github.com/duynhne/pos-service/middleware"
)

const minPasswordLength = 8

// AuthService implements login, logout and user provisioning.
// It depends on repository interfaces (injected via constructor) and
// MUST NOT access the database or SQL directly.
type AuthService struct {
	users    domain.UserRepository
	sessions *SessionStore
}

// NewAuthService creates a new AuthService with the given dependencies.
func NewAuthService(users domain.UserRepository, sessions *SessionStore) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
	}
}

// Login verifies credentials and issues a session.
func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, *domain.Session, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.login", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("username", req.Username),
	))
	defer span.End()

	row, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		span.RecordError(err)
		return nil, nil, fmt.Errorf("query user %q: %w: %w", req.Username, ErrStorage, err)
	}
	if row == nil {
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		return nil, nil, fmt.Errorf("authenticate user %q: %w", req.Username, ErrInvalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(req.Password)); err != nil {
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		return nil, nil, fmt.Errorf("authenticate user %q: %w", req.Username, ErrInvalidCredentials)
	}

	// Best-effort, don't fail login
	if updateErr := s.users.UpdateLastLogin(ctx, row.ID); updateErr != nil {
		span.RecordError(fmt.Errorf("update last_login: %w", updateErr))
	}

	user := domain.User{
		ID:       row.ID,
		Username: row.Username,
		Role:     row.Role,
	}

	sess, err := s.sessions.CreateSession(ctx, user)
	if err != nil {
		span.RecordError(err)
		return nil, nil, err
	}

	span.SetAttributes(
		attribute.Int("user.id", user.ID),
		attribute.Bool("auth.success", true),
	)
	span.AddEvent("user.authenticated")

	return &domain.AuthResponse{
		User:      user,
		SessionID: sess.ID,
		CSRFToken: sess.CSRFToken,
		ExpiresAt: sess.ExpiresAt,
	}, sess, nil
}

// Logout destroys the session. It is idempotent.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	ctx, span := middleware.StartSpan(ctx, "auth.logout", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	if err := s.sessions.DestroySession(ctx, sessionID); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// CreateUser provisions a user with a bcrypt-hashed password.
func (s *AuthService) CreateUser(ctx context.Context, username, password string, role domain.Role) (*domain.User, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.create_user", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("username", username),
	))
	defer span.End()

	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("username is required: %w", ErrValidation)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("password shorter than %d characters: %w", minPasswordLength, ErrValidation)
	}
	if !role.Valid() {
		return nil, fmt.Errorf("role %q: %w", role, ErrValidation)
	}

	exists, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("check existing user: %w: %w", ErrStorage, err)
	}
	if exists {
		return nil, fmt.Errorf("username %q already exists: %w", username, ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	id, err := s.users.Create(ctx, username, string(hash), role)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			return nil, fmt.Errorf("username %q already exists: %w", username, ErrConflict)
		}
		span.RecordError(err)
		return nil, fmt.Errorf("insert user: %w: %w", ErrStorage, err)
	}

	span.AddEvent("user.created")
	return &domain.User{ID: id, Username: username, Role: role}, nil
}
