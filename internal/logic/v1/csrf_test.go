package v1

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynhne/pos-service/internal/core/domain"
	"github.com/duynhne/pos-service/internal/core/repository/memory"
)

func TestCSRFGuard_TokenIsStable(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSessions()
	store := NewSessionStore(repo, time.Hour)
	guard := NewCSRFGuard(repo)

	sess, err := store.CreateSession(ctx, testUser)
	require.NoError(t, err)

	first, err := guard.TokenFor(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, sess.CSRFToken, first)

	reloaded, err := store.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	second, err := guard.TokenFor(ctx, reloaded)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCSRFGuard_LazyBindForLegacySession(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSessions()
	guard := NewCSRFGuard(repo)

	legacy := domain.Session{ID: "legacy", UserID: 1, ExpiresAt: time.Now().Add(time.Hour)}
	repo.Put(legacy)

	a := legacy
	tokenA, err := guard.TokenFor(ctx, &a)
	require.NoError(t, err)
	require.NotEmpty(t, tokenA)
	assert.Equal(t, tokenA, a.CSRFToken)

	// A second request that loaded the session before the bind must get the
	// token the first one bound, not a new one.
	b := legacy
	tokenB, err := guard.TokenFor(ctx, &b)
	require.NoError(t, err)
	assert.Equal(t, tokenA, tokenB)
}

func TestCSRFGuard_BindOnDeletedSession(t *testing.T) {
	guard := NewCSRFGuard(memory.NewSessions())
	_, err := guard.TokenFor(context.Background(), &domain.Session{ID: "gone"})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCSRFGuard_Validate(t *testing.T) {
	guard := NewCSRFGuard(memory.NewSessions())
	sess := &domain.Session{ID: "s", CSRFToken: "token-123"}

	assert.True(t, guard.Validate(sess, "token-123"))
	assert.False(t, guard.Validate(sess, "token-124"))
	assert.False(t, guard.Validate(sess, "token-12"))
	assert.False(t, guard.Validate(sess, ""))
	assert.False(t, guard.Validate(&domain.Session{ID: "s"}, ""))
	assert.False(t, guard.Validate(nil, "token-123"))
}
