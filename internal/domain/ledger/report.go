package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MonthlySummary aggregates one calendar month of ledger activity for the
// dashboard. OutstandingTotal is a point-in-time figure over all active
// enrollments and is not month-filtered.
type MonthlySummary struct {
	Month            time.Month      `json:"month"`
	Year             int             `json:"year"`
	Income           decimal.Decimal `json:"income"`
	Expenses         decimal.Decimal `json:"expenses"`
	Balance          decimal.Decimal `json:"balance"`
	TodayIncome      decimal.Decimal `json:"today_income"`
	OutstandingTotal decimal.Decimal `json:"outstanding_total"`
}

// Debtor is an active enrollment with a positive outstanding balance
type Debtor struct {
	EnrollmentID uuid.UUID       `json:"enrollment_id"`
	StudentID    uuid.UUID       `json:"student_id"`
	StudentName  string          `json:"student_name"`
	CourseLabel  string          `json:"course_label"`
	Outstanding  decimal.Decimal `json:"outstanding"`
}

// TrackingRow is one active enrollment's line in the monthly
// payment-tracking matrix.
type TrackingRow struct {
	EnrollmentID  uuid.UUID       `json:"enrollment_id"`
	StudentID     uuid.UUID       `json:"student_id"`
	StudentName   string          `json:"student_name"`
	CourseLabel   string          `json:"course_label"`
	PaidThisMonth decimal.Decimal `json:"paid_this_month"`
	Payments      []Payment       `json:"payments"`
	Outstanding   decimal.Decimal `json:"outstanding"`
}

// TrackingMatrix is the per-student collection view for one month.
// Rows are sorted ascending by PaidThisMonth (zero-payers first), ties
// broken ascending by student name. TotalCollected over all rows must
// equal the month's income restricted to active enrollments.
type TrackingMatrix struct {
	Month          time.Month      `json:"month"`
	Year           int             `json:"year"`
	Rows           []TrackingRow   `json:"rows"`
	PaidCount      int             `json:"paid_count"`
	UnpaidCount    int             `json:"unpaid_count"`
	TotalCollected decimal.Decimal `json:"total_collected"`
	// NoPaymentThisMonth lists active enrollments absent from the
	// month's payment set entirely.
	NoPaymentThisMonth []TrackingRow `json:"no_payment_this_month"`
}

// ReportRepository is the read-only aggregation contract behind the
// reporting service. Queries require no locking, may run concurrently
// with mutations, and observe the latest committed state.
type ReportRepository interface {
	// SumPaymentsInRange sums payment amounts with fecha_pago in [from, to).
	SumPaymentsInRange(ctx context.Context, from, to time.Time) (decimal.Decimal, error)

	// SumExpensesInRange sums expense amounts with fecha in [from, to).
	SumExpensesInRange(ctx context.Context, from, to time.Time) (decimal.Decimal, error)

	// SumOutstandingActive sums saldo_pendiente over all active enrollments.
	SumOutstandingActive(ctx context.Context) (decimal.Decimal, error)

	// TopDebtors returns at most n active enrollments with positive
	// balance, sorted descending by balance, ties ascending by student name.
	TopDebtors(ctx context.Context, n int) ([]Debtor, error)

	// ActiveEnrollmentRows returns one row per active enrollment with the
	// student name and resolved course label, payments not yet attached.
	ActiveEnrollmentRows(ctx context.Context) ([]TrackingRow, error)

	// PaymentsInRange lists payments with fecha_pago in [from, to).
	PaymentsInRange(ctx context.Context, from, to time.Time) ([]Payment, error)
}
