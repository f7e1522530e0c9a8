package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/duynhne/pos-service/internal/core/domain"
)

const bindRetries = 3

// redisSession is the JSON document stored under session:<id>.
type redisSession struct {
	ID        string      `json:"id"`
	UserID    int         `json:"user_id"`
	Username  string      `json:"username"`
	Role      domain.Role `json:"role"`
	CSRFToken string      `json:"csrf_token"`
	CreatedAt time.Time   `json:"created_at"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// RedisSessionRepository implements domain.SessionRepository on Redis.
// Keys carry a TTL equal to the remaining session lifetime, so Redis evicts
// expired sessions on its own.
type RedisSessionRepository struct {
	client *redis.Client
	prefix string
}

// NewRedisSessionRepository creates a Redis-backed session repository.
func NewRedisSessionRepository(client *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{client: client, prefix: "session:"}
}

func (r *RedisSessionRepository) key(id string) string {
	return r.prefix + id
}

// Create stores the session with SET NX so an id collision never overwrites
// a live session.
func (r *RedisSessionRepository) Create(ctx context.Context, s *domain.Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session %s: expires_at must be in the future", s.ID)
	}

	data, err := json.Marshal(toRedisSession(s))
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ok, err := r.client.SetNX(ctx, r.key(s.ID), data, ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrDuplicateKey
	}
	return nil
}

// Get returns (nil, nil) when the key is absent or evicted.
func (r *RedisSessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var rs redisSession
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return rs.toDomain(), nil
}

func (r *RedisSessionRepository) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.key(id)).Err()
}

// BindCSRFToken runs an optimistic WATCH/MULTI transaction on the session key,
// retrying when a concurrent writer touched it first.
func (r *RedisSessionRepository) BindCSRFToken(ctx context.Context, id, token string) (string, error) {
	key := r.key(id)
	var bound string

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			bound = ""
			return nil
		}
		if err != nil {
			return err
		}

		var rs redisSession
		if err := json.Unmarshal(data, &rs); err != nil {
			return fmt.Errorf("unmarshal session: %w", err)
		}
		if rs.CSRFToken != "" {
			bound = rs.CSRFToken
			return nil
		}

		ttl := time.Until(rs.ExpiresAt)
		if ttl <= 0 {
			bound = ""
			return nil
		}
		rs.CSRFToken = token
		updated, err := json.Marshal(rs)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, ttl)
			return nil
		})
		if err == nil {
			bound = token
		}
		return err
	}

	for i := 0; i < bindRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return "", err
		}
		return bound, nil
	}
	return "", fmt.Errorf("bind csrf token for session: %w", redis.TxFailedErr)
}

// DeleteExpired is a no-op: Redis expires keys through their TTL.
func (r *RedisSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

func toRedisSession(s *domain.Session) redisSession {
	return redisSession{
		ID:        s.ID,
		UserID:    s.UserID,
		Username:  s.Username,
		Role:      s.Role,
		CSRFToken: s.CSRFToken,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
	}
}

func (rs redisSession) toDomain() *domain.Session {
	return &domain.Session{
		ID:        rs.ID,
		UserID:    rs.UserID,
		Username:  rs.Username,
		Role:      rs.Role,
		CSRFToken: rs.CSRFToken,
		CreatedAt: rs.CreatedAt,
		ExpiresAt: rs.ExpiresAt,
	}
}
