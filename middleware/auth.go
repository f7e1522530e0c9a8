package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/munnerz/goautoneg"
	"github.com/rs/zerolog"

	"github.com/duynhne/pos-service/internal/core/domain"
)

// Context keys set by AuthGate.
const (
	ContextUserID  = "user_id"
	ContextSession = "session"
)

const (
	CSRFHeader    = "X-CSRF-Token"
	LoginPath     = "/login"
	bearerPrefix  = "Bearer "
	reasonMissing = "no_session"
)

// Error codes shared by the gate and the API handlers.
const (
	CodeAuthRequired       = "auth_required"
	CodeInvalidCredentials = "invalid_credentials"
	CodeCSRFMissing        = "csrf_missing"
	CodeCSRFInvalid        = "csrf_invalid"
	CodeForbidden          = "forbidden"
	CodeNotFound           = "not_found"
	CodeConflict           = "conflict"
	CodeInvalidMove        = "invalid_move"
	CodeInvalidRequest     = "invalid_request"
	CodeInternal           = "internal_error"
)

var (
	// ErrAuthRequired indicates no live session accompanied the request.
	ErrAuthRequired = errors.New("authentication required")
	// ErrCSRFMissing indicates a state-changing request without X-CSRF-Token.
	ErrCSRFMissing = errors.New("csrf token missing")
	// ErrCSRFInvalid indicates an X-CSRF-Token that does not match the session.
	ErrCSRFInvalid = errors.New("csrf token invalid")
)

// SessionResolver looks up a live session. found is false for unknown or
// expired ids; err is reserved for storage failures.
type SessionResolver interface {
	ResolveSession(ctx context.Context, id string) (sess *domain.Session, found bool, err error)
}

// CSRFGuard binds and checks the per-session anti-forgery token.
type CSRFGuard interface {
	TokenFor(ctx context.Context, sess *domain.Session) (string, error)
	Validate(sess *domain.Session, supplied string) bool
}

// ErrorResponse builds the JSON error body used across the API.
func ErrorResponse(code, message string) gin.H {
	return gin.H{"error": gin.H{"code": code, "message": message}}
}

// AuthGate admits only requests carrying a live session. Browsers asking for
// HTML are redirected to the login page; API clients get a 401. Every admitted
// response carries the session's CSRF token, and state-changing methods must
// echo it back in the X-CSRF-Token header.
func AuthGate(sessions SessionResolver, csrf CSRFGuard, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		logger := zerolog.Ctx(ctx)

		id := SessionIDFromRequest(c, cookieName)
		if id == "" {
			rejectUnauthenticated(c, reasonMissing)
			return
		}

		sess, found, err := sessions.ResolveSession(ctx, id)
		if err != nil {
			logger.Error().Err(err).Msg("Session lookup failed")
			authRejectionsTotal.WithLabelValues("lookup_error").Inc()
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse(CodeInternal, "Internal server error"))
			return
		}
		if !found {
			rejectUnauthenticated(c, "invalid_session")
			return
		}

		token, err := csrf.TokenFor(ctx, sess)
		if err != nil {
			logger.Error().Err(err).Msg("CSRF token bind failed")
			authRejectionsTotal.WithLabelValues("csrf_bind_error").Inc()
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse(CodeInternal, "Internal server error"))
			return
		}
		c.Header(CSRFHeader, token)

		if !safeMethod(c.Request.Method) {
			supplied := c.GetHeader(CSRFHeader)
			if supplied == "" {
				_ = c.Error(ErrCSRFMissing)
				authRejectionsTotal.WithLabelValues(CodeCSRFMissing).Inc()
				c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse(CodeCSRFMissing, "CSRF token required"))
				return
			}
			if !csrf.Validate(sess, supplied) {
				_ = c.Error(ErrCSRFInvalid)
				logger.Warn().Int("user_id", sess.UserID).Msg("CSRF token mismatch")
				authRejectionsTotal.WithLabelValues(CodeCSRFInvalid).Inc()
				c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse(CodeCSRFInvalid, "CSRF token invalid"))
				return
			}
		}

		c.Set(ContextUserID, sess.UserID)
		c.Set(ContextSession, sess)
		c.Next()
	}
}

// RequireRole aborts with 403 unless the session's role is one of roles.
// It must run after AuthGate.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := SessionFromContext(c)
		if !ok {
			rejectUnauthenticated(c, reasonMissing)
			return
		}
		for _, r := range roles {
			if sess.Role == r {
				c.Next()
				return
			}
		}
		authRejectionsTotal.WithLabelValues(CodeForbidden).Inc()
		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse(CodeForbidden, "Insufficient role"))
	}
}

// SessionFromContext returns the session AuthGate admitted.
func SessionFromContext(c *gin.Context) (*domain.Session, bool) {
	v, ok := c.Get(ContextSession)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*domain.Session)
	return sess, ok && sess != nil
}

// SessionIDFromRequest reads the session id from a Bearer Authorization
// header, falling back to the session cookie.
func SessionIDFromRequest(c *gin.Context, cookieName string) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, bearerPrefix) {
		if id := strings.TrimSpace(h[len(bearerPrefix):]); id != "" {
			return id
		}
	}
	if id, err := c.Cookie(cookieName); err == nil {
		return id
	}
	return ""
}

// SetSessionCookie issues the session cookie for the full session lifetime.
func SetSessionCookie(c *gin.Context, name, id string, ttl time.Duration, secure bool) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    id,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		Expires:  time.Now().Add(ttl).UTC(),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearSessionCookie instructs the client to drop the session cookie.
func ClearSessionCookie(c *gin.Context, name string, secure bool) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func rejectUnauthenticated(c *gin.Context, reason string) {
	_ = c.Error(ErrAuthRequired)
	authRejectionsTotal.WithLabelValues(reason).Inc()

	if prefersHTML(c.GetHeader("Accept")) {
		c.Redirect(http.StatusFound, LoginPath)
		c.Abort()
		return
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse(CodeAuthRequired, "Authentication required"))
}

// prefersHTML reports whether the Accept header ranks text/html above JSON.
// A missing header or a bare wildcard selects JSON.
func prefersHTML(accept string) bool {
	return goautoneg.Negotiate(accept, []string{gin.MIMEJSON, gin.MIMEHTML}) == gin.MIMEHTML
}

func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
