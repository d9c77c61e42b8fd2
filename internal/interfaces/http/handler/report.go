package handler

import (
	"time"

	ledgerapp "github.com/academia/backend/internal/application/ledger"
	"github.com/academia/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// defaultDebtorLimit bounds the debtor ranking when no limit is given
const defaultDebtorLimit = 10

// ReportHandler handles the reporting endpoints
type ReportHandler struct {
	BaseHandler
	service *ledgerapp.ReportingService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(service *ledgerapp.ReportingService) *ReportHandler {
	return &ReportHandler{service: service}
}

// MonthlySummary handles GET /reports/summary?month=&year=
func (h *ReportHandler) MonthlySummary(c *gin.Context) {
	var req dto.MonthRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "month (1-12) and year are required")
		return
	}

	summary, err := h.service.MonthlySummary(c.Request.Context(), time.Month(req.Month), req.Year)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.NewMonthlySummaryResponse(summary))
}

// TopDebtors handles GET /reports/debtors?limit=
func (h *ReportHandler) TopDebtors(c *gin.Context) {
	var req dto.DebtorsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "limit must be between 1 and 100")
		return
	}
	if req.Limit == 0 {
		req.Limit = defaultDebtorLimit
	}

	debtors, err := h.service.TopDebtors(c.Request.Context(), req.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]dto.DebtorResponse, len(debtors))
	for i, d := range debtors {
		out[i] = dto.NewDebtorResponse(d)
	}
	h.Success(c, out)
}

// PaymentTracking handles GET /reports/tracking?month=&year=
func (h *ReportHandler) PaymentTracking(c *gin.Context) {
	var req dto.MonthRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "month (1-12) and year are required")
		return
	}

	matrix, err := h.service.PaymentTrackingMatrix(c.Request.Context(), time.Month(req.Month), req.Year)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.NewTrackingMatrixResponse(matrix))
}

// RegisterRoutes registers all reporting routes
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reports := rg.Group("/reports")
	{
		reports.GET("/summary", h.MonthlySummary)
		reports.GET("/debtors", h.TopDebtors)
		reports.GET("/tracking", h.PaymentTracking)
	}
}
