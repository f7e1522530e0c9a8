package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	logicv1 "github.com/duynhne/pos-service/internal/logic/v1"
	"github.com/duynhne/pos-service/middleware"
)

// respondError maps a logic-layer error to its HTTP status and error code.
// Unclassified errors are logged and reported as 500.
func respondError(c *gin.Context, logger *zerolog.Logger, err error, msg string) {
	status, code, message := classify(err)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Msg(msg)
	} else {
		logger.Warn().Err(err).Msg(msg)
	}
	c.JSON(status, middleware.ErrorResponse(code, message))
}

func classify(err error) (status int, code, message string) {
	switch {
	case errors.Is(err, logicv1.ErrInvalidCredentials):
		return http.StatusUnauthorized, middleware.CodeInvalidCredentials, "Invalid credentials"
	case errors.Is(err, logicv1.ErrSessionNotFound):
		return http.StatusUnauthorized, middleware.CodeAuthRequired, "Authentication required"
	case errors.Is(err, logicv1.ErrForbidden):
		return http.StatusForbidden, middleware.CodeForbidden, "Forbidden"
	case errors.Is(err, logicv1.ErrNotFound):
		return http.StatusNotFound, middleware.CodeNotFound, "Not found"
	case errors.Is(err, logicv1.ErrInvalidMove):
		return http.StatusConflict, middleware.CodeInvalidMove, detailMessage(err, logicv1.ErrInvalidMove)
	case errors.Is(err, logicv1.ErrConflict):
		return http.StatusConflict, middleware.CodeConflict, detailMessage(err, logicv1.ErrConflict)
	case errors.Is(err, logicv1.ErrInvalidStatus):
		return http.StatusBadRequest, middleware.CodeInvalidRequest, "Unknown roster status"
	case errors.Is(err, logicv1.ErrValidation):
		return http.StatusBadRequest, middleware.CodeInvalidRequest, detailMessage(err, logicv1.ErrValidation)
	default:
		return http.StatusInternalServerError, middleware.CodeInternal, "Internal server error"
	}
}

// detailMessage exposes the context wrapped around sentinel, e.g.
// "price -1 is negative" or `add to roster: staff "Anna" already on roster at position 1`.
func detailMessage(err, sentinel error) string {
	return strings.TrimSuffix(err.Error(), ": "+sentinel.Error())
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, middleware.ErrorResponse(middleware.CodeInvalidRequest, message))
}
