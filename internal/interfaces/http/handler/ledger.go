package handler

import (
	"time"

	ledgerapp "github.com/academia/backend/internal/application/ledger"
	"github.com/academia/backend/internal/domain/ledger"
	"github.com/academia/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerHandler handles payment, expense, and balance endpoints
type LedgerHandler struct {
	BaseHandler
	service *ledgerapp.BalanceService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(service *ledgerapp.BalanceService) *LedgerHandler {
	return &LedgerHandler{service: service}
}

// RecordPayment handles POST /payments
func (h *LedgerHandler) RecordPayment(c *gin.Context) {
	var req dto.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	staffID, err := getStaffID(c)
	if err != nil {
		h.Unauthorized(c, "Staff identity required")
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.BadRequest(c, "Amount is not a valid decimal")
		return
	}

	paidOn, err := parseOptionalDate(req.PaidOn)
	if err != nil {
		h.BadRequest(c, "paid_on must be formatted as YYYY-MM-DD")
		return
	}

	payment, err := h.service.RecordPayment(c.Request.Context(), ledgerapp.RecordPaymentRequest{
		EnrollmentID: uuid.MustParse(req.EnrollmentID),
		Amount:       amount,
		Method:       ledger.PaymentMethod(req.Method),
		Receipt:      req.Receipt,
		Note:         req.Note,
		PaidOn:       paidOn,
		RecordedBy:   staffID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, dto.NewPaymentResponse(payment))
}

// ReversePayment handles DELETE /payments/:id
func (h *LedgerHandler) ReversePayment(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Payment ID must be a UUID")
		return
	}

	if _, err := getStaffID(c); err != nil {
		h.Unauthorized(c, "Staff identity required")
		return
	}

	reversed, err := h.service.ReversePayment(c.Request.Context(), uuid.MustParse(req.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.NewPaymentResponse(reversed))
}

// RecordExpense handles POST /expenses
func (h *LedgerHandler) RecordExpense(c *gin.Context) {
	var req dto.RecordExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	staffID, err := getStaffID(c)
	if err != nil {
		h.Unauthorized(c, "Staff identity required")
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.BadRequest(c, "Amount is not a valid decimal")
		return
	}

	spentOn, err := parseOptionalDate(req.SpentOn)
	if err != nil {
		h.BadRequest(c, "spent_on must be formatted as YYYY-MM-DD")
		return
	}

	expense, err := h.service.RecordExpense(c.Request.Context(), ledgerapp.RecordExpenseRequest{
		Category:    ledger.ExpenseCategory(req.Category),
		Description: req.Description,
		Amount:      amount,
		SpentOn:     spentOn,
		RecordedBy:  staffID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, dto.NewExpenseResponse(expense))
}

// CheckBalance handles GET /enrollments/:id/balance
func (h *LedgerHandler) CheckBalance(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Enrollment ID must be a UUID")
		return
	}

	enrollmentID := uuid.MustParse(req.ID)
	recomputed, warning, err := h.service.RecomputeBalance(c.Request.Context(), enrollmentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := dto.BalanceResponse{
		EnrollmentID: enrollmentID.String(),
		Stored:       recomputed.StringFixed(2),
		Recomputed:   recomputed.StringFixed(2),
		Consistent:   warning == nil,
	}
	if warning != nil {
		resp.Stored = warning.Stored.StringFixed(2)
		resp.Warning = &dto.WarningResponse{
			Stored:     warning.Stored.StringFixed(2),
			Recomputed: warning.Recomputed.StringFixed(2),
			Drift:      warning.Drift().StringFixed(2),
		}
	}
	h.Success(c, resp)
}

// RepairBalance handles POST /enrollments/:id/balance/repair
func (h *LedgerHandler) RepairBalance(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Enrollment ID must be a UUID")
		return
	}

	if _, err := getStaffID(c); err != nil {
		h.Unauthorized(c, "Staff identity required")
		return
	}

	enrollmentID := uuid.MustParse(req.ID)
	repaired, err := h.service.RepairBalance(c.Request.Context(), enrollmentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.BalanceResponse{
		EnrollmentID: enrollmentID.String(),
		Stored:       repaired.StringFixed(2),
		Recomputed:   repaired.StringFixed(2),
		Consistent:   true,
	})
}

// parseOptionalDate parses a YYYY-MM-DD date, returning the zero time for
// an empty string so the domain defaults to today.
func parseOptionalDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", raw)
}

// RegisterRoutes registers all ledger mutation routes
func (h *LedgerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	{
		payments.POST("", h.RecordPayment)
		payments.DELETE("/:id", h.ReversePayment)
	}

	rg.POST("/expenses", h.RecordExpense)

	enrollments := rg.Group("/enrollments")
	{
		enrollments.GET("/:id/balance", h.CheckBalance)
		enrollments.POST("/:id/balance/repair", h.RepairBalance)
	}
}
