package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"github.com/duynhne/pos-service/internal/core/domain"
	"github.com/duynhne/pos-service/internal/logger"
)

type addToRosterRequest struct {
	StaffID int `json:"staff_id" binding:"required"`
}

type setStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type clearRosterRequest struct {
	Confirm bool `json:"confirm"`
}

// ListRoster returns today's roster ordered by position.
func (h *Handler) ListRoster(c *gin.Context) {
	ctx, span := startSpan(c)
	defer span.End()

	entries, err := h.roster.List(ctx)
	if err != nil {
		span.RecordError(err)
		respondError(c, logger.FromContext(ctx), err, "List roster failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"day": h.roster.Today(), "entries": entries})
}

func (h *Handler) AddToRoster(c *gin.Context) {
	ctx, span := startSpan(c)
	defer span.End()

	log := logger.FromContext(ctx)

	var req addToRosterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		badRequest(c, "staff_id is required")
		return
	}

	entry, err := h.roster.AddToRoster(ctx, req.StaffID)
	if err != nil {
		span.RecordError(err)
		respondError(c, log, err, "Add to roster failed")
		return
	}

	log.Info().Int("staff_id", entry.StaffID).Int("position", entry.Position).Msg("Staff added to roster")
	c.JSON(http.StatusCreated, entry)
}

func (h *Handler) RemoveFromRoster(c *gin.Context) {
	ctx, span := startSpan(c)
	defer span.End()

	position, ok := intParam(c, "position")
	if !ok {
		return
	}
	span.SetAttributes(attribute.Int("roster.position", position))

	if err := h.roster.RemoveFromRoster(ctx, position); err != nil {
		span.RecordError(err)
		respondError(c, logger.FromContext(ctx), err, "Remove from roster failed")
		return
	}
	h.ListRoster(c)
}

func (h *Handler) MoveUp(c *gin.Context) {
	h.move(c, h.roster.MoveUp)
}

func (h *Handler) MoveDown(c *gin.Context) {
	h.move(c, h.roster.MoveDown)
}

func (h *Handler) move(c *gin.Context, op func(ctx context.Context, position int) error) {
	ctx, span := startSpan(c)
	defer span.End()

	position, ok := intParam(c, "position")
	if !ok {
		return
	}
	span.SetAttributes(attribute.Int("roster.position", position))

	if err := op(ctx, position); err != nil {
		span.RecordError(err)
		respondError(c, logger.FromContext(ctx), err, "Move roster entry failed")
		return
	}
	h.ListRoster(c)
}

func (h *Handler) SetRosterStatus(c *gin.Context) {
	ctx, span := startSpan(c)
	defer span.End()

	log := logger.FromContext(ctx)

	position, ok := intParam(c, "position")
	if !ok {
		return
	}

	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		badRequest(c, "status is required")
		return
	}
	status, err := domain.ParseRosterStatus(req.Status)
	if err != nil {
		span.RecordError(err)
		badRequest(c, err.Error())
		return
	}

	entry, err := h.roster.SetStatus(ctx, position, status)
	if err != nil {
		span.RecordError(err)
		respondError(c, log, err, "Set roster status failed")
		return
	}
	c.JSON(http.StatusOK, entry)
}

// ClearRoster empties today's roster. The body must carry {"confirm": true}.
func (h *Handler) ClearRoster(c *gin.Context) {
	ctx, span := startSpan(c)
	defer span.End()

	log := logger.FromContext(ctx)

	var req clearRosterRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.Confirm {
		badRequest(c, `clearing the roster requires {"confirm": true}`)
		return
	}

	if err := h.roster.ClearRoster(ctx); err != nil {
		span.RecordError(err)
		respondError(c, log, err, "Clear roster failed")
		return
	}

	log.Info().Int("user_id", currentUserID(c)).Msg("Roster cleared")
	c.JSON(http.StatusOK, gin.H{"day": h.roster.Today(), "entries": []domain.RosterEntry{}})
}

// ServeNext hands the next customer to the earliest waiting staff member.
// An empty queue is a normal outcome: 200 with a null entry.
func (h *Handler) ServeNext(c *gin.Context) {
	ctx, span := startSpan(c)
	defer span.End()

	entry, found, err := h.roster.ServeNext(ctx)
	if err != nil {
		span.RecordError(err)
		respondError(c, logger.FromContext(ctx), err, "Serve next failed")
		return
	}
	if !found {
		c.JSON(http.StatusOK, gin.H{"entry": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry": entry})
}
