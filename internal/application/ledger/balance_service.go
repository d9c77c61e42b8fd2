package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/academia/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BalanceService keeps each enrollment's outstanding balance consistent
// with its payment history. Every mutation couples the ledger row and the
// balance adjustment in one transaction.
type BalanceService struct {
	store  ledger.Store
	cache  ledger.ReportCache
	loc    *time.Location
	logger *zap.Logger
}

// NewBalanceService creates a new BalanceService
func NewBalanceService(store ledger.Store, cache ledger.ReportCache, loc *time.Location, logger *zap.Logger) *BalanceService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BalanceService{
		store:  store,
		cache:  cache,
		loc:    loc,
		logger: logger,
	}
}

// RecordPaymentRequest represents a request to record a payment
type RecordPaymentRequest struct {
	EnrollmentID uuid.UUID
	Amount       decimal.Decimal
	Method       ledger.PaymentMethod
	Receipt      string
	Note         string
	PaidOn       time.Time
	RecordedBy   uuid.UUID
}

// RecordExpenseRequest represents a request to record an expense
type RecordExpenseRequest struct {
	Category    ledger.ExpenseCategory
	Description string
	Amount      decimal.Decimal
	SpentOn     time.Time
	RecordedBy  uuid.UUID
}

// RecordPayment inserts a payment and decrements the enrollment's
// outstanding balance in the same transaction. An overpayment drives the
// balance negative, which represents credit toward the enrollment.
func (s *BalanceService) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*ledger.Payment, error) {
	enrollment, err := s.store.Enrollment(ctx, req.EnrollmentID)
	if err != nil {
		return nil, err
	}

	payment, err := ledger.NewPayment(
		enrollment.ID,
		enrollment.StudentID,
		req.Amount,
		req.Method,
		req.Note,
		req.PaidOn,
		req.RecordedBy,
	)
	if err != nil {
		return nil, err
	}
	if req.Receipt != "" {
		payment.WithReceipt(req.Receipt)
	}

	err = s.store.InTransaction(ctx, func(tx ledger.Store) error {
		if err := tx.InsertPayment(ctx, payment); err != nil {
			return err
		}
		return tx.AdjustEnrollmentBalance(ctx, enrollment.ID, payment.Amount.Neg())
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	s.logger.Info("payment recorded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("enrollment_id", enrollment.ID.String()),
		zap.String("amount", payment.Amount.String()),
		zap.String("method", payment.Method.String()),
	)
	s.invalidateMonth(ctx, payment.PaidOn)

	return payment, nil
}

// ReversePayment hard-deletes a payment and restores its amount to the
// enrollment's balance. The enrollment row is locked for the duration of
// the transaction so a concurrent payment cannot interleave.
func (s *BalanceService) ReversePayment(ctx context.Context, paymentID uuid.UUID) (*ledger.Payment, error) {
	var reversed *ledger.Payment

	err := s.store.InTransaction(ctx, func(tx ledger.Store) error {
		payment, err := tx.DeletePaymentReturningIt(ctx, paymentID)
		if err != nil {
			return err
		}
		if _, err := tx.EnrollmentForUpdate(ctx, payment.EnrollmentID); err != nil {
			return err
		}
		if err := tx.AdjustEnrollmentBalance(ctx, payment.EnrollmentID, payment.Amount); err != nil {
			return err
		}
		reversed = payment
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment reversed",
		zap.String("payment_id", reversed.ID.String()),
		zap.String("enrollment_id", reversed.EnrollmentID.String()),
		zap.String("amount", reversed.Amount.String()),
	)
	s.invalidateMonth(ctx, reversed.PaidOn)

	return reversed, nil
}

// RecordExpense inserts an expense row. Expenses carry no balance linkage.
func (s *BalanceService) RecordExpense(ctx context.Context, req RecordExpenseRequest) (*ledger.Expense, error) {
	expense, err := ledger.NewExpense(req.Category, req.Description, req.Amount, req.SpentOn, req.RecordedBy)
	if err != nil {
		return nil, err
	}

	if err := s.store.InsertExpense(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to record expense: %w", err)
	}

	s.logger.Info("expense recorded",
		zap.String("expense_id", expense.ID.String()),
		zap.String("category", expense.Category.String()),
		zap.String("amount", expense.Amount.String()),
	)
	s.invalidateMonth(ctx, expense.SpentOn)

	return expense, nil
}

// RecomputeBalance derives the enrollment's balance from its payment
// history (costo_total minus the payment sum) and compares it with the
// stored value. Drift is logged and returned as a warning, never
// auto-corrected; RepairBalance is the explicit correction path.
func (s *BalanceService) RecomputeBalance(ctx context.Context, enrollmentID uuid.UUID) (decimal.Decimal, *ledger.ConsistencyWarning, error) {
	enrollment, err := s.store.Enrollment(ctx, enrollmentID)
	if err != nil {
		return decimal.Zero, nil, err
	}

	paid, err := s.store.SumPaymentsForEnrollment(ctx, enrollmentID)
	if err != nil {
		return decimal.Zero, nil, err
	}

	recomputed := enrollment.TotalCost.Sub(paid)
	if recomputed.Equal(enrollment.OutstandingBalance) {
		return recomputed, nil, nil
	}

	warning := &ledger.ConsistencyWarning{
		EnrollmentID: enrollmentID,
		Stored:       enrollment.OutstandingBalance,
		Recomputed:   recomputed,
	}
	s.logger.Warn("balance drift detected",
		zap.String("enrollment_id", enrollmentID.String()),
		zap.String("stored", warning.Stored.String()),
		zap.String("recomputed", warning.Recomputed.String()),
		zap.String("drift", warning.Drift().String()),
	)
	return recomputed, warning, nil
}

// RepairBalance overwrites the stored balance with the value recomputed
// from the payment history. Operator-triggered; the row stays locked while
// the sum is taken so the repair cannot race a concurrent payment.
func (s *BalanceService) RepairBalance(ctx context.Context, enrollmentID uuid.UUID) (decimal.Decimal, error) {
	var repaired decimal.Decimal

	err := s.store.InTransaction(ctx, func(tx ledger.Store) error {
		enrollment, err := tx.EnrollmentForUpdate(ctx, enrollmentID)
		if err != nil {
			return err
		}
		paid, err := tx.SumPaymentsForEnrollment(ctx, enrollmentID)
		if err != nil {
			return err
		}
		repaired = enrollment.TotalCost.Sub(paid)
		return tx.SetEnrollmentBalance(ctx, enrollmentID, repaired)
	})
	if err != nil {
		return decimal.Zero, err
	}

	s.logger.Info("balance repaired",
		zap.String("enrollment_id", enrollmentID.String()),
		zap.String("balance", repaired.String()),
	)
	return repaired, nil
}

// invalidateMonth drops the cached summary covering the given date. Cache
// errors are logged and swallowed; the ledger write already committed.
func (s *BalanceService) invalidateMonth(ctx context.Context, on time.Time) {
	if s.cache == nil {
		return
	}
	local := on.In(s.loc)
	if err := s.cache.InvalidateMonth(ctx, local.Month(), local.Year()); err != nil {
		s.logger.Warn("failed to invalidate summary cache",
			zap.Int("year", local.Year()),
			zap.Int("month", int(local.Month())),
			zap.Error(err),
		)
	}
}
