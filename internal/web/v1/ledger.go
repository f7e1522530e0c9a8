package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"github.com/duynhne/pos-service/internal/core/domain"
	"github.com/duynhne/pos-service/internal/logger"
)

// ListTransactions returns transactions for ?from=YYYY-MM-DD&to=YYYY-MM-DD,
// defaulting to today.
func (h *Handler) ListTransactions(c *gin.Context) {
	ctx, span := startSpan(c)
	defer span.End()

	txns, err := h.ledger.ListTransactions(ctx, c.Query("from"), c.Query("to"))
	if err != nil {
		span.RecordError(err)
		respondError(c, logger.FromContext(ctx), err, "List transactions failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txns})
}

func (h *Handler) RecordTransaction(c *gin.Context) {
	ctx, span := startSpan(c)
	defer span.End()

	log := logger.FromContext(ctx)

	var req domain.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		badRequest(c, "staff_id and service_id are required")
		return
	}

	txn, err := h.ledger.RecordTransaction(ctx, currentUserID(c), req)
	if err != nil {
		span.RecordError(err)
		respondError(c, log, err, "Record transaction failed")
		return
	}

	span.SetAttributes(attribute.String("transaction.id", txn.ID))
	log.Info().
		Str("transaction_id", txn.ID).
		Int("staff_id", txn.StaffID).
		Int64("amount", txn.Amount).
		Msg("Transaction recorded")
	c.JSON(http.StatusCreated, txn)
}

func (h *Handler) DeleteTransaction(c *gin.Context) {
	ctx, span := startSpan(c)
	defer span.End()

	log := logger.FromContext(ctx)

	id := c.Param("id")
	if err := h.ledger.DeleteTransaction(ctx, id); err != nil {
		span.RecordError(err)
		respondError(c, log, err, "Delete transaction failed")
		return
	}

	log.Info().Str("transaction_id", id).Int("user_id", currentUserID(c)).Msg("Transaction deleted")
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListExpenses(c *gin.Context) {
	ctx, span := startSpan(c)
	defer span.End()

	expenses, err := h.ledger.ListExpenses(ctx, c.Query("from"), c.Query("to"))
	if err != nil {
		span.RecordError(err)
		respondError(c, logger.FromContext(ctx), err, "List expenses failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"expenses": expenses})
}

func (h *Handler) RecordExpense(c *gin.Context) {
	ctx, span := startSpan(c)
	defer span.End()

	var req domain.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "category is required")
		return
	}

	expense, err := h.ledger.RecordExpense(ctx, currentUserID(c), req)
	if err != nil {
		span.RecordError(err)
		respondError(c, logger.FromContext(ctx), err, "Record expense failed")
		return
	}
	c.JSON(http.StatusCreated, expense)
}

func (h *Handler) DeleteExpense(c *gin.Context) {
	ctx, span := startSpan(c)
	defer span.End()

	if err := h.ledger.DeleteExpense(ctx, c.Param("id")); err != nil {
		span.RecordError(err)
		respondError(c, logger.FromContext(ctx), err, "Delete expense failed")
		return
	}
	c.Status(http.StatusNoContent)
}
