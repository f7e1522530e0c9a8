package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"github.com/duynhne/pos-service/internal/core/domain"
	"github.com/duynhne/pos-service/internal/logger"
	logicv1 "github.com/duynhne/pos-service/internal/logic/v1"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GetReport returns the daily, weekly or monthly report containing ?date=.
func (h *Handler) GetReport(c *gin.Context) {
	report, ok := h.buildReport(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, report)
}

// ExportReport returns the same report as an XLSX workbook.
func (h *Handler) ExportReport(c *gin.Context) {
	report, ok := h.buildReport(c)
	if !ok {
		return
	}

	body, err := logicv1.ExportXLSX(report)
	if err != nil {
		respondError(c, logger.FromContext(c.Request.Context()), err, "Export report failed")
		return
	}

	filename := fmt.Sprintf("report-%s-%s.xlsx", report.Period, report.From.Format(domain.DayLayout))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, body)
}

func (h *Handler) buildReport(c *gin.Context) (*domain.Report, bool) {
	period := domain.Period(c.Param("period"))
	ctx, span := startSpan(c, attribute.String("report.period", string(period)))
	defer span.End()

	if !period.Valid() {
		badRequest(c, "period must be daily, weekly or monthly")
		return nil, false
	}

	report, err := h.reports.Build(ctx, period, c.Query("date"))
	if err != nil {
		span.RecordError(err)
		respondError(c, logger.FromContext(ctx), err, "Build report failed")
		return nil, false
	}
	return report, true
}
