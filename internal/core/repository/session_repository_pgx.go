package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/duynhne/pos-service/internal/core/domain"
)

// PgxSessionRepository implements domain.SessionRepository using pgxpool.
type PgxSessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new PgxSessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *PgxSessionRepository {
	return &PgxSessionRepository{pool: pool}
}

// Create inserts a new session. The insert is autocommitted before returning.
func (r *PgxSessionRepository) Create(ctx context.Context, s *domain.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, csrf_token, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query, s.ID, s.UserID, s.CSRFToken, s.CreatedAt, s.ExpiresAt)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateKey
	}
	return err
}

// Get looks up the session by id together with its owner.
// Returns (nil, nil) when the id does not match any session.
func (r *PgxSessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	query := `
		SELECT s.id, s.user_id, u.username, u.role, s.csrf_token, s.created_at, s.expires_at
		FROM sessions s
		JOIN users u ON s.user_id = u.id
		WHERE s.id = $1
	`

	var s domain.Session
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.UserID, &s.Username, &s.Role, &s.CSRFToken, &s.CreatedAt, &s.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &s, nil
}

// Delete removes the session if present.
func (r *PgxSessionRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

// BindCSRFToken sets the token only when none is bound. The conditional
// update serialises concurrent binders on the row, so every caller reads
// back the same winner.
func (r *PgxSessionRepository) BindCSRFToken(ctx context.Context, id, token string) (string, error) {
	query := `
		UPDATE sessions
		SET csrf_token = CASE WHEN csrf_token = '' THEN $2 ELSE csrf_token END
		WHERE id = $1
		RETURNING csrf_token
	`

	var bound string
	err := r.pool.QueryRow(ctx, query, id, token).Scan(&bound)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", err
	}

	return bound, nil
}

// DeleteExpired removes sessions whose expiry is at or before now.
func (r *PgxSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
