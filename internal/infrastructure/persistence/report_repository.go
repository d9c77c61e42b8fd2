package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/academia/backend/internal/domain/ledger"
	"github.com/academia/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormLedgerReportRepository implements ledger.ReportRepository using GORM.
// All queries are read-only aggregations over committed state.
type GormLedgerReportRepository struct {
	db *gorm.DB
}

// NewGormLedgerReportRepository creates a new GORM-based report repository
func NewGormLedgerReportRepository(db *gorm.DB) *GormLedgerReportRepository {
	return &GormLedgerReportRepository{db: db}
}

// SumPaymentsInRange sums payment amounts with fecha_pago in [from, to)
func (r *GormLedgerReportRepository) SumPaymentsInRange(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Select("COALESCE(SUM(monto), 0)").
		Where("fecha_pago >= ? AND fecha_pago < ?", from, to).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum payments in range: %w", err)
	}
	return total, nil
}

// SumExpensesInRange sums expense amounts with fecha in [from, to)
func (r *GormLedgerReportRepository) SumExpensesInRange(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&models.ExpenseModel{}).
		Select("COALESCE(SUM(monto), 0)").
		Where("fecha >= ? AND fecha < ?", from, to).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum expenses in range: %w", err)
	}
	return total, nil
}

// SumOutstandingActive sums the outstanding balance over all active enrollments
func (r *GormLedgerReportRepository) SumOutstandingActive(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&models.EnrollmentModel{}).
		Select("COALESCE(SUM(saldo_pendiente), 0)").
		Where("estado = ?", ledger.EnrollmentStatusActive).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum outstanding balances: %w", err)
	}
	return total, nil
}

// enrollmentRowResult is the scan target for the joined enrollment queries.
// The course label is resolved in SQL: the free-text override, when present
// and nonempty, supersedes the referenced course name.
type enrollmentRowResult struct {
	EnrollmentID uuid.UUID       `gorm:"column:enrollment_id"`
	StudentID    uuid.UUID       `gorm:"column:student_id"`
	StudentName  string          `gorm:"column:student_name"`
	CourseLabel  string          `gorm:"column:course_label"`
	Outstanding  decimal.Decimal `gorm:"column:outstanding"`
}

const enrollmentRowSelect = `
		e.id AS enrollment_id,
		e.student_id AS student_id,
		s.nombre AS student_name,
		COALESCE(NULLIF(e.course_label_override, ''), c.nombre, '') AS course_label,
		e.saldo_pendiente AS outstanding`

// TopDebtors returns at most n active enrollments with a positive balance,
// sorted descending by balance, ties broken ascending by student name.
func (r *GormLedgerReportRepository) TopDebtors(ctx context.Context, n int) ([]ledger.Debtor, error) {
	var rows []enrollmentRowResult
	err := r.db.WithContext(ctx).
		Table("enrollments e").
		Select(enrollmentRowSelect).
		Joins("JOIN students s ON s.id = e.student_id").
		Joins("LEFT JOIN courses c ON c.id = e.course_id").
		Where("e.estado = ? AND e.saldo_pendiente > 0", ledger.EnrollmentStatusActive).
		Order("e.saldo_pendiente DESC, s.nombre ASC").
		Limit(n).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query top debtors: %w", err)
	}

	debtors := make([]ledger.Debtor, len(rows))
	for i, row := range rows {
		debtors[i] = ledger.Debtor{
			EnrollmentID: row.EnrollmentID,
			StudentID:    row.StudentID,
			StudentName:  row.StudentName,
			CourseLabel:  row.CourseLabel,
			Outstanding:  row.Outstanding,
		}
	}
	return debtors, nil
}

// ActiveEnrollmentRows returns one tracking row per active enrollment with
// the student name and resolved course label. Payments are attached by the
// reporting service.
func (r *GormLedgerReportRepository) ActiveEnrollmentRows(ctx context.Context) ([]ledger.TrackingRow, error) {
	var rows []enrollmentRowResult
	err := r.db.WithContext(ctx).
		Table("enrollments e").
		Select(enrollmentRowSelect).
		Joins("JOIN students s ON s.id = e.student_id").
		Joins("LEFT JOIN courses c ON c.id = e.course_id").
		Where("e.estado = ?", ledger.EnrollmentStatusActive).
		Order("s.nombre ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query active enrollment rows: %w", err)
	}

	trackingRows := make([]ledger.TrackingRow, len(rows))
	for i, row := range rows {
		trackingRows[i] = ledger.TrackingRow{
			EnrollmentID:  row.EnrollmentID,
			StudentID:     row.StudentID,
			StudentName:   row.StudentName,
			CourseLabel:   row.CourseLabel,
			PaidThisMonth: decimal.Zero,
			Outstanding:   row.Outstanding,
		}
	}
	return trackingRows, nil
}

// PaymentsInRange lists payments with fecha_pago in [from, to)
func (r *GormLedgerReportRepository) PaymentsInRange(ctx context.Context, from, to time.Time) ([]ledger.Payment, error) {
	var modelList []models.PaymentModel
	err := r.db.WithContext(ctx).
		Where("fecha_pago >= ? AND fecha_pago < ?", from, to).
		Order("fecha_pago ASC, created_at ASC").
		Find(&modelList).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payments in range: %w", err)
	}

	payments := make([]ledger.Payment, len(modelList))
	for i, m := range modelList {
		payments[i] = *m.ToDomain()
	}
	return payments, nil
}
