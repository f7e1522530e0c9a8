package v1

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/duynhne/pos-service/internal/core/domain"
)

// CSRFGuard hands out and checks the per-session anti-forgery token.
//
// A session carries exactly one token for its whole lifetime. TokenFor never
// replaces a bound token: clients cache the token from any earlier response
// and must be able to use it on their next write.
type CSRFGuard struct {
	sessions domain.SessionRepository
}

func NewCSRFGuard(sessions domain.SessionRepository) *CSRFGuard {
	return &CSRFGuard{sessions: sessions}
}

// TokenFor returns the session's token, binding a fresh one only when the
// session has none. sess is updated in place with the bound token.
func (g *CSRFGuard) TokenFor(ctx context.Context, sess *domain.Session) (string, error) {
	if sess.CSRFToken != "" {
		return sess.CSRFToken, nil
	}

	candidate, err := randomToken(csrfTokenBytes)
	if err != nil {
		return "", err
	}
	bound, err := g.sessions.BindCSRFToken(ctx, sess.ID, candidate)
	if err != nil {
		return "", fmt.Errorf("bind csrf token: %w: %w", ErrStorage, err)
	}
	if bound == "" {
		return "", fmt.Errorf("bind csrf token: %w", ErrSessionNotFound)
	}
	if bound == candidate {
		csrfTokensBound.Inc()
	}

	sess.CSRFToken = bound
	return bound, nil
}

// Validate reports whether supplied equals the session's bound token, in
// constant time. An empty token on either side never validates.
func (g *CSRFGuard) Validate(sess *domain.Session, supplied string) bool {
	if sess == nil || sess.CSRFToken == "" || supplied == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(sess.CSRFToken), []byte(supplied)) == 1
}
