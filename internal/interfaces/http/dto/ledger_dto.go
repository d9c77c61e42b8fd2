package dto

import (
	"time"

	"github.com/academia/backend/internal/domain/ledger"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RecordPaymentRequest is the payload for recording a payment
type RecordPaymentRequest struct {
	EnrollmentID string `json:"enrollment_id" binding:"required,uuid"`
	Amount       string `json:"amount" binding:"required"`
	Method       string `json:"method" binding:"required,oneof=CASH TRANSFER CARD"`
	Receipt      string `json:"receipt"`
	Note         string `json:"note"`
	PaidOn       string `json:"paid_on" binding:"omitempty,datetime=2006-01-02"`
}

// RecordExpenseRequest is the payload for recording an expense
type RecordExpenseRequest struct {
	Category    string `json:"category" binding:"required,oneof=RENT UTILITIES SALARY SUPPLIES MARKETING OTHER"`
	Description string `json:"description" binding:"required,max=500"`
	Amount      string `json:"amount" binding:"required"`
	SpentOn     string `json:"spent_on" binding:"omitempty,datetime=2006-01-02"`
}

// MonthRequest carries the month/year query pair for report endpoints
type MonthRequest struct {
	Month int `form:"month" binding:"required,month"`
	Year  int `form:"year" binding:"required,min=2000,max=2100"`
}

// DebtorsRequest carries the limit for the debtor ranking
type DebtorsRequest struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// PaymentResponse renders a payment with fixed two-digit amounts
type PaymentResponse struct {
	ID           string `json:"id"`
	EnrollmentID string `json:"enrollment_id"`
	StudentID    string `json:"student_id"`
	Amount       string `json:"amount"`
	Method       string `json:"method"`
	Receipt      string `json:"receipt,omitempty"`
	Note         string `json:"note,omitempty"`
	PaidOn       string `json:"paid_on"`
	RecordedBy   string `json:"recorded_by"`
	CreatedAt    string `json:"created_at"`
}

// NewPaymentResponse converts a domain payment to its API shape
func NewPaymentResponse(p *ledger.Payment) PaymentResponse {
	return PaymentResponse{
		ID:           p.ID.String(),
		EnrollmentID: p.EnrollmentID.String(),
		StudentID:    p.StudentID.String(),
		Amount:       p.Amount.StringFixed(2),
		Method:       p.Method.String(),
		Receipt:      p.Receipt,
		Note:         p.Note,
		PaidOn:       p.PaidOn.Format("2006-01-02"),
		RecordedBy:   p.RecordedBy.String(),
		CreatedAt:    p.CreatedAt.Format(time.RFC3339),
	}
}

// ExpenseResponse renders an expense with fixed two-digit amounts
type ExpenseResponse struct {
	ID          string `json:"id"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	SpentOn     string `json:"spent_on"`
	RecordedBy  string `json:"recorded_by"`
	CreatedAt   string `json:"created_at"`
}

// NewExpenseResponse converts a domain expense to its API shape
func NewExpenseResponse(e *ledger.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          e.ID.String(),
		Category:    e.Category.String(),
		Description: e.Description,
		Amount:      e.Amount.StringFixed(2),
		SpentOn:     e.SpentOn.Format("2006-01-02"),
		RecordedBy:  e.RecordedBy.String(),
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
	}
}

// BalanceResponse renders the recompute/repair outcome for an enrollment
type BalanceResponse struct {
	EnrollmentID string           `json:"enrollment_id"`
	Stored       string           `json:"stored"`
	Recomputed   string           `json:"recomputed"`
	Consistent   bool             `json:"consistent"`
	Warning      *WarningResponse `json:"warning,omitempty"`
}

// WarningResponse renders a balance drift warning
type WarningResponse struct {
	Stored     string `json:"stored"`
	Recomputed string `json:"recomputed"`
	Drift      string `json:"drift"`
}

// MonthlySummaryResponse renders the monthly summary
type MonthlySummaryResponse struct {
	Month            int    `json:"month"`
	Year             int    `json:"year"`
	Income           string `json:"income"`
	Expenses         string `json:"expenses"`
	Balance          string `json:"balance"`
	TodayIncome      string `json:"today_income"`
	OutstandingTotal string `json:"outstanding_total"`
}

// NewMonthlySummaryResponse converts a domain summary to its API shape
func NewMonthlySummaryResponse(s *ledger.MonthlySummary) MonthlySummaryResponse {
	return MonthlySummaryResponse{
		Month:            int(s.Month),
		Year:             s.Year,
		Income:           s.Income.StringFixed(2),
		Expenses:         s.Expenses.StringFixed(2),
		Balance:          s.Balance.StringFixed(2),
		TodayIncome:      s.TodayIncome.StringFixed(2),
		OutstandingTotal: s.OutstandingTotal.StringFixed(2),
	}
}

// DebtorResponse renders one debtor row
type DebtorResponse struct {
	EnrollmentID string `json:"enrollment_id"`
	StudentID    string `json:"student_id"`
	StudentName  string `json:"student_name"`
	CourseLabel  string `json:"course_label"`
	Outstanding  string `json:"outstanding"`
}

// NewDebtorResponse converts a domain debtor to its API shape
func NewDebtorResponse(d ledger.Debtor) DebtorResponse {
	return DebtorResponse{
		EnrollmentID: d.EnrollmentID.String(),
		StudentID:    d.StudentID.String(),
		StudentName:  d.StudentName,
		CourseLabel:  d.CourseLabel,
		Outstanding:  d.Outstanding.StringFixed(2),
	}
}

// TrackingRowResponse renders one row of the payment tracking matrix
type TrackingRowResponse struct {
	EnrollmentID  string            `json:"enrollment_id"`
	StudentID     string            `json:"student_id"`
	StudentName   string            `json:"student_name"`
	CourseLabel   string            `json:"course_label"`
	PaidThisMonth string            `json:"paid_this_month"`
	Payments      []PaymentResponse `json:"payments"`
	Outstanding   string            `json:"outstanding"`
}

// TrackingMatrixResponse renders the payment tracking matrix
type TrackingMatrixResponse struct {
	Month              int                   `json:"month"`
	Year               int                   `json:"year"`
	Rows               []TrackingRowResponse `json:"rows"`
	PaidCount          int                   `json:"paid_count"`
	UnpaidCount        int                   `json:"unpaid_count"`
	TotalCollected     string                `json:"total_collected"`
	NoPaymentThisMonth []TrackingRowResponse `json:"no_payment_this_month"`
}

// NewTrackingMatrixResponse converts a domain matrix to its API shape
func NewTrackingMatrixResponse(m *ledger.TrackingMatrix) TrackingMatrixResponse {
	return TrackingMatrixResponse{
		Month:              int(m.Month),
		Year:               m.Year,
		Rows:               newTrackingRows(m.Rows),
		PaidCount:          m.PaidCount,
		UnpaidCount:        m.UnpaidCount,
		TotalCollected:     m.TotalCollected.StringFixed(2),
		NoPaymentThisMonth: newTrackingRows(m.NoPaymentThisMonth),
	}
}

func newTrackingRows(rows []ledger.TrackingRow) []TrackingRowResponse {
	out := make([]TrackingRowResponse, len(rows))
	for i, row := range rows {
		payments := make([]PaymentResponse, len(row.Payments))
		for j := range row.Payments {
			payments[j] = NewPaymentResponse(&row.Payments[j])
		}
		out[i] = TrackingRowResponse{
			EnrollmentID:  row.EnrollmentID.String(),
			StudentID:     row.StudentID.String(),
			StudentName:   row.StudentName,
			CourseLabel:   row.CourseLabel,
			PaidThisMonth: row.PaidThisMonth.StringFixed(2),
			Payments:      payments,
			Outstanding:   row.Outstanding.StringFixed(2),
		}
	}
	return out
}

// RegisterCustomValidations installs the ledger-specific binding rules on
// gin's validator engine. Call once at startup.
func RegisterCustomValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("month", func(fl validator.FieldLevel) bool {
		month := fl.Field().Int()
		return month >= 1 && month <= 12
	})
}
