package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/duynhne/pos-service/internal/core/domain"
	"github.com/duynhne/pos-service/internal/logger"
)

// ListStaff returns the staff list; ?all=true includes inactive staff.
func (h *Handler) ListStaff(c *gin.Context) {
	ctx, span := startSpan(c)
	defer span.End()

	staff, err := h.catalog.ListStaff(ctx, c.Query("all") == "true")
	if err != nil {
		span.RecordError(err)
		respondError(c, logger.FromContext(ctx), err, "List staff failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"staff": staff})
}

func (h *Handler) CreateStaff(c *gin.Context) {
	ctx, span := startSpan(c)
	defer span.End()

	var req domain.CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name is required")
		return
	}

	staff, err := h.catalog.CreateStaff(ctx, req)
	if err != nil {
		span.RecordError(err)
		respondError(c, logger.FromContext(ctx), err, "Create staff failed")
		return
	}
	c.JSON(http.StatusCreated, staff)
}

func (h *Handler) UpdateStaff(c *gin.Context) {
	ctx, span := startSpan(c)
	defer span.End()

	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req domain.UpdateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name is required")
		return
	}

	staff, err := h.catalog.UpdateStaff(ctx, id, req)
	if err != nil {
		span.RecordError(err)
		respondError(c, logger.FromContext(ctx), err, "Update staff failed")
		return
	}
	c.JSON(http.StatusOK, staff)
}

// ListServices returns the price list; ?all=true includes inactive services.
func (h *Handler) ListServices(c *gin.Context) {
	ctx, span := startSpan(c)
	defer span.End()

	services, err := h.catalog.ListServices(ctx, c.Query("all") == "true")
	if err != nil {
		span.RecordError(err)
		respondError(c, logger.FromContext(ctx), err, "List services failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": services})
}

func (h *Handler) CreateService(c *gin.Context) {
	ctx, span := startSpan(c)
	defer span.End()

	var req domain.ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name is required")
		return
	}

	svc, err := h.catalog.CreateService(ctx, req)
	if err != nil {
		span.RecordError(err)
		respondError(c, logger.FromContext(ctx), err, "Create service failed")
		return
	}
	c.JSON(http.StatusCreated, svc)
}

func (h *Handler) UpdateService(c *gin.Context) {
	ctx, span := startSpan(c)
	defer span.End()

	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req domain.ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name is required")
		return
	}

	svc, err := h.catalog.UpdateService(ctx, id, req)
	if err != nil {
		span.RecordError(err)
		respondError(c, logger.FromContext(ctx), err, "Update service failed")
		return
	}
	c.JSON(http.StatusOK, svc)
}
