package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/academia/backend/internal/domain/ledger"
	"github.com/academia/backend/internal/domain/shared"
	"github.com/academia/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormLedgerStore implements ledger.Store using GORM.
// Month windows are computed in the business timezone.
type GormLedgerStore struct {
	db  *gorm.DB
	loc *time.Location
}

// NewGormLedgerStore creates a new GORM-based ledger store
func NewGormLedgerStore(db *gorm.DB, loc *time.Location) *GormLedgerStore {
	if loc == nil {
		loc = time.UTC
	}
	return &GormLedgerStore{db: db, loc: loc}
}

// InTransaction runs fn with a store bound to a single transaction.
func (s *GormLedgerStore) InTransaction(ctx context.Context, fn func(ledger.Store) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormLedgerStore{db: tx, loc: s.loc})
	})
	if err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) {
			return err
		}
		return fmt.Errorf("%w: %v", shared.ErrTransactionFailed, err)
	}
	return nil
}

// Enrollment finds an enrollment by ID
func (s *GormLedgerStore) Enrollment(ctx context.Context, id uuid.UUID) (*ledger.Enrollment, error) {
	var model models.EnrollmentModel
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find enrollment: %w", err)
	}
	return model.ToDomain(), nil
}

// EnrollmentForUpdate finds an enrollment and locks its row until the
// surrounding transaction ends.
func (s *GormLedgerStore) EnrollmentForUpdate(ctx context.Context, id uuid.UUID) (*ledger.Enrollment, error) {
	var model models.EnrollmentModel
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock enrollment: %w", err)
	}
	return model.ToDomain(), nil
}

// LatestEnrollmentForStudent returns the student's most recently created enrollment
func (s *GormLedgerStore) LatestEnrollmentForStudent(ctx context.Context, studentID uuid.UUID) (*ledger.Enrollment, error) {
	var model models.EnrollmentModel
	err := s.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find latest enrollment: %w", err)
	}
	return model.ToDomain(), nil
}

// ActiveEnrollments lists all active enrollments
func (s *GormLedgerStore) ActiveEnrollments(ctx context.Context) ([]ledger.Enrollment, error) {
	var modelList []models.EnrollmentModel
	err := s.db.WithContext(ctx).
		Where("estado = ?", ledger.EnrollmentStatusActive).
		Order("created_at DESC").
		Find(&modelList).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active enrollments: %w", err)
	}

	enrollments := make([]ledger.Enrollment, len(modelList))
	for i, m := range modelList {
		enrollments[i] = *m.ToDomain()
	}
	return enrollments, nil
}

// InsertEnrollment persists a new enrollment
func (s *GormLedgerStore) InsertEnrollment(ctx context.Context, enrollment *ledger.Enrollment) error {
	model := models.EnrollmentModelFromDomain(enrollment)
	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to insert enrollment: %w", err)
	}
	return nil
}

// AdjustEnrollmentBalance applies a delta to the stored balance as a single
// atomic UPDATE. The new balance is computed by the database, not read into
// application memory first.
func (s *GormLedgerStore) AdjustEnrollmentBalance(ctx context.Context, enrollmentID uuid.UUID, delta decimal.Decimal) error {
	result := s.db.WithContext(ctx).
		Model(&models.EnrollmentModel{}).
		Where("id = ?", enrollmentID).
		Updates(map[string]any{
			"saldo_pendiente": gorm.Expr("saldo_pendiente + ?", delta),
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to adjust balance: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SetEnrollmentBalance overwrites the stored balance
func (s *GormLedgerStore) SetEnrollmentBalance(ctx context.Context, enrollmentID uuid.UUID, balance decimal.Decimal) error {
	result := s.db.WithContext(ctx).
		Model(&models.EnrollmentModel{}).
		Where("id = ?", enrollmentID).
		Updates(map[string]any{
			"saldo_pendiente": balance,
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to set balance: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// InsertPayment persists a new payment
func (s *GormLedgerStore) InsertPayment(ctx context.Context, payment *ledger.Payment) error {
	model := models.PaymentModelFromDomain(payment)
	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

// DeletePaymentReturningIt hard-deletes a payment and returns the deleted row
func (s *GormLedgerStore) DeletePaymentReturningIt(ctx context.Context, id uuid.UUID) (*ledger.Payment, error) {
	var model models.PaymentModel
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}

	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.PaymentModel{})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to delete payment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, shared.ErrNotFound
	}
	return model.ToDomain(), nil
}

// PaymentsForEnrollment lists all payments on an enrollment, newest first
func (s *GormLedgerStore) PaymentsForEnrollment(ctx context.Context, enrollmentID uuid.UUID) ([]ledger.Payment, error) {
	var modelList []models.PaymentModel
	err := s.db.WithContext(ctx).
		Where("enrollment_id = ?", enrollmentID).
		Order("fecha_pago DESC, created_at DESC").
		Find(&modelList).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	payments := make([]ledger.Payment, len(modelList))
	for i, m := range modelList {
		payments[i] = *m.ToDomain()
	}
	return payments, nil
}

// PaymentsInMonth lists all payments dated inside the given calendar month
func (s *GormLedgerStore) PaymentsInMonth(ctx context.Context, month time.Month, year int) ([]ledger.Payment, error) {
	from, to := s.monthWindow(month, year)
	var modelList []models.PaymentModel
	err := s.db.WithContext(ctx).
		Where("fecha_pago >= ? AND fecha_pago < ?", from, to).
		Order("fecha_pago DESC, created_at DESC").
		Find(&modelList).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payments for month: %w", err)
	}

	payments := make([]ledger.Payment, len(modelList))
	for i, m := range modelList {
		payments[i] = *m.ToDomain()
	}
	return payments, nil
}

// SumPaymentsForEnrollment returns the total paid on an enrollment
func (s *GormLedgerStore) SumPaymentsForEnrollment(ctx context.Context, enrollmentID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Select("COALESCE(SUM(monto), 0)").
		Where("enrollment_id = ?", enrollmentID).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum payments: %w", err)
	}
	return total, nil
}

// InsertExpense persists a new expense
func (s *GormLedgerStore) InsertExpense(ctx context.Context, expense *ledger.Expense) error {
	model := models.ExpenseModelFromDomain(expense)
	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	return nil
}

// ExpensesInMonth lists all expenses dated inside the given calendar month
func (s *GormLedgerStore) ExpensesInMonth(ctx context.Context, month time.Month, year int) ([]ledger.Expense, error) {
	from, to := s.monthWindow(month, year)
	var modelList []models.ExpenseModel
	err := s.db.WithContext(ctx).
		Where("fecha >= ? AND fecha < ?", from, to).
		Order("fecha DESC, created_at DESC").
		Find(&modelList).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses for month: %w", err)
	}

	expenses := make([]ledger.Expense, len(modelList))
	for i, m := range modelList {
		expenses[i] = *m.ToDomain()
	}
	return expenses, nil
}

// LegacyDepositsNonZero lists every student with a nonzero legacy deposit
func (s *GormLedgerStore) LegacyDepositsNonZero(ctx context.Context) ([]ledger.LegacyDeposit, error) {
	var modelList []models.StudentModel
	err := s.db.WithContext(ctx).
		Where("abono <> 0").
		Order("nombre ASC").
		Find(&modelList).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list legacy deposits: %w", err)
	}

	deposits := make([]ledger.LegacyDeposit, len(modelList))
	for i, m := range modelList {
		deposits[i] = ledger.LegacyDeposit{
			StudentID:   m.ID,
			StudentName: m.Name,
			Amount:      m.Deposit,
			TotalCost:   m.TotalCost,
		}
	}
	return deposits, nil
}

// ClearLegacyDeposits zeroes the legacy deposit field for the given students
func (s *GormLedgerStore) ClearLegacyDeposits(ctx context.Context, studentIDs []uuid.UUID) error {
	if len(studentIDs) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).
		Model(&models.StudentModel{}).
		Where("id IN ?", studentIDs).
		Update("abono", decimal.Zero).Error
	if err != nil {
		return fmt.Errorf("failed to clear legacy deposits: %w", err)
	}
	return nil
}

// AppendMigrationLog records one migrated deposit
func (s *GormLedgerStore) AppendMigrationLog(ctx context.Context, entry *ledger.MigrationLogEntry) error {
	model := models.MigrationLogModelFromDomain(entry)
	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to append migration log: %w", err)
	}
	return nil
}

// StudentName resolves a student's display name
func (s *GormLedgerStore) StudentName(ctx context.Context, studentID uuid.UUID) (string, error) {
	var model models.StudentModel
	err := s.db.WithContext(ctx).
		Select("id", "nombre").
		Where("id = ?", studentID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", shared.ErrNotFound
		}
		return "", fmt.Errorf("failed to find student: %w", err)
	}
	return model.Name, nil
}

// monthWindow returns the half-open interval [from, to) covering the given
// calendar month in the business timezone.
func (s *GormLedgerStore) monthWindow(month time.Month, year int) (time.Time, time.Time) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, s.loc)
	return from, from.AddDate(0, 1, 0)
}
