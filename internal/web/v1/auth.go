package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"github.com/duynhne/pos-service/internal/core/domain"
	"github.com/duynhne/pos-service/internal/logger"
	"github.com/duynhne/pos-service/middleware"
)

// Login handles HTTP request for user login.
// On success the session id is set as an HttpOnly cookie for the full session
// lifetime and returned in the body for bearer clients.
func (h *Handler) Login(c *gin.Context) {
	ctx, span := startSpan(c)
	defer span.End()

	log := logger.FromContext(ctx)

	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		span.RecordError(err)
		log.Warn().Err(err).Msg("Invalid login request")
		badRequest(c, "username and password are required")
		return
	}

	span.SetAttributes(attribute.Bool("request.valid", true))

	response, sess, err := h.auth.Login(ctx, req)
	if err != nil {
		span.RecordError(err)
		respondError(c, log, err, "Login failed")
		return
	}

	middleware.SetSessionCookie(c, h.cookie.Name, sess.ID, h.sessions.TTL(), h.cookie.Secure)
	c.Header(middleware.CSRFHeader, sess.CSRFToken)

	log.Info().Int("user_id", response.User.ID).Msg("Login successful")
	c.JSON(http.StatusOK, response)
}

// Logout destroys the caller's session and clears the cookie.
func (h *Handler) Logout(c *gin.Context) {
	ctx, span := startSpan(c)
	defer span.End()

	log := logger.FromContext(ctx)

	sess, _ := middleware.SessionFromContext(c)
	if err := h.auth.Logout(ctx, sess.ID); err != nil {
		span.RecordError(err)
		respondError(c, log, err, "Logout failed")
		return
	}

	middleware.ClearSessionCookie(c, h.cookie.Name, h.cookie.Secure)
	log.Info().Int("user_id", sess.UserID).Msg("Logout successful")
	c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
}

// GetMe returns the user of the current session.
// GET /api/v1/auth/me
func (h *Handler) GetMe(c *gin.Context) {
	sess, _ := middleware.SessionFromContext(c)
	c.JSON(http.StatusOK, gin.H{
		"user": domain.User{
			ID:       sess.UserID,
			Username: sess.Username,
			Role:     sess.Role,
		},
		"expires_at": sess.ExpiresAt,
	})
}
