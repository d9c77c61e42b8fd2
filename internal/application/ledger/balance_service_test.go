package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/academia/backend/internal/domain/ledger"
	"github.com/academia/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBalanceFixture() (*BalanceService, *memStore, *spyCache) {
	store := newMemStore()
	cache := newSpyCache()
	svc := NewBalanceService(store, cache, time.UTC, nil)
	return svc, store, cache
}

func recordPayment(t *testing.T, svc *BalanceService, enrollmentID uuid.UUID, amount int64, paidOn time.Time) *ledger.Payment {
	t.Helper()
	payment, err := svc.RecordPayment(context.Background(), RecordPaymentRequest{
		EnrollmentID: enrollmentID,
		Amount:       decimal.NewFromInt(amount),
		Method:       ledger.PaymentMethodCash,
		PaidOn:       paidOn,
		RecordedBy:   uuid.New(),
	})
	require.NoError(t, err)
	return payment
}

func TestBalanceService_RecordPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("decrements the balance with the payment amount", func(t *testing.T) {
		svc, store, _ := newBalanceFixture()
		studentID := store.addStudent("Ana Garcia", decimal.Zero, nil)
		enrollment := store.addEnrollment(studentID, decimal.NewFromInt(1900))

		payment := recordPayment(t, svc, enrollment.ID, 500, time.Now())

		assert.Equal(t, enrollment.ID, payment.EnrollmentID)
		assert.Equal(t, studentID, payment.StudentID)

		updated, err := store.Enrollment(ctx, enrollment.ID)
		require.NoError(t, err)
		assert.True(t, updated.OutstandingBalance.Equal(decimal.NewFromInt(1400)))
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		svc, store, _ := newBalanceFixture()
		studentID := store.addStudent("Ana Garcia", decimal.Zero, nil)
		enrollment := store.addEnrollment(studentID, decimal.NewFromInt(1000))

		_, err := svc.RecordPayment(ctx, RecordPaymentRequest{
			EnrollmentID: enrollment.ID,
			Amount:       decimal.Zero,
			Method:       ledger.PaymentMethodCash,
			RecordedBy:   uuid.New(),
		})

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_AMOUNT", domainErr.Code)
	})

	t.Run("returns not found for unknown enrollment", func(t *testing.T) {
		svc, _, _ := newBalanceFixture()

		_, err := svc.RecordPayment(ctx, RecordPaymentRequest{
			EnrollmentID: uuid.New(),
			Amount:       decimal.NewFromInt(100),
			Method:       ledger.PaymentMethodCash,
			RecordedBy:   uuid.New(),
		})

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("overpayment drives the balance negative as credit", func(t *testing.T) {
		svc, store, _ := newBalanceFixture()
		studentID := store.addStudent("Ana Garcia", decimal.Zero, nil)
		enrollment := store.addEnrollment(studentID, decimal.NewFromInt(300))

		recordPayment(t, svc, enrollment.ID, 500, time.Now())

		updated, err := store.Enrollment(ctx, enrollment.ID)
		require.NoError(t, err)
		assert.True(t, updated.OutstandingBalance.Equal(decimal.NewFromInt(-200)))
	})

	t.Run("invalidates the cached summary for the payment month", func(t *testing.T) {
		svc, store, cache := newBalanceFixture()
		studentID := store.addStudent("Ana Garcia", decimal.Zero, nil)
		enrollment := store.addEnrollment(studentID, decimal.NewFromInt(1000))

		paidOn := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
		recordPayment(t, svc, enrollment.ID, 100, paidOn)

		require.Len(t, cache.invalidations, 1)
		assert.Equal(t, "2026-03", cache.invalidations[0])
	})
}

func TestBalanceService_ReversePayment(t *testing.T) {
	ctx := context.Background()

	t.Run("restores the prior balance exactly", func(t *testing.T) {
		svc, store, _ := newBalanceFixture()
		studentID := store.addStudent("Ana Garcia", decimal.Zero, nil)
		enrollment := store.addEnrollment(studentID, decimal.NewFromInt(1900))

		recordPayment(t, svc, enrollment.ID, 500, time.Now())
		before, err := store.Enrollment(ctx, enrollment.ID)
		require.NoError(t, err)

		payment := recordPayment(t, svc, enrollment.ID, 400, time.Now())
		reversed, err := svc.ReversePayment(ctx, payment.ID)
		require.NoError(t, err)
		assert.Equal(t, payment.ID, reversed.ID)

		after, err := store.Enrollment(ctx, enrollment.ID)
		require.NoError(t, err)
		assert.True(t, after.OutstandingBalance.Equal(before.OutstandingBalance))

		// The payment row is gone, not flagged.
		_, err = store.DeletePaymentReturningIt(ctx, payment.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("restores the running balance after several payments", func(t *testing.T) {
		svc, store, _ := newBalanceFixture()
		studentID := store.addStudent("Ana Garcia", decimal.Zero, nil)
		enrollment := store.addEnrollment(studentID, decimal.NewFromInt(1900))

		recordPayment(t, svc, enrollment.ID, 500, time.Now())
		recordPayment(t, svc, enrollment.ID, 500, time.Now())
		last := recordPayment(t, svc, enrollment.ID, 400, time.Now())

		current, err := store.Enrollment(ctx, enrollment.ID)
		require.NoError(t, err)
		assert.True(t, current.OutstandingBalance.Equal(decimal.NewFromInt(500)))

		_, err = svc.ReversePayment(ctx, last.ID)
		require.NoError(t, err)

		current, err = store.Enrollment(ctx, enrollment.ID)
		require.NoError(t, err)
		assert.True(t, current.OutstandingBalance.Equal(decimal.NewFromInt(900)))
	})

	t.Run("returns not found for unknown payment", func(t *testing.T) {
		svc, _, _ := newBalanceFixture()

		_, err := svc.ReversePayment(ctx, uuid.New())

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestBalanceService_RecomputeBalance(t *testing.T) {
	ctx := context.Background()

	t.Run("stored balance stays consistent through mutations", func(t *testing.T) {
		svc, store, _ := newBalanceFixture()
		studentID := store.addStudent("Ana Garcia", decimal.Zero, nil)
		enrollment := store.addEnrollment(studentID, decimal.NewFromInt(1900))

		recordPayment(t, svc, enrollment.ID, 500, time.Now())
		p := recordPayment(t, svc, enrollment.ID, 400, time.Now())
		_, err := svc.ReversePayment(ctx, p.ID)
		require.NoError(t, err)
		recordPayment(t, svc, enrollment.ID, 250, time.Now())

		recomputed, warning, err := svc.RecomputeBalance(ctx, enrollment.ID)
		require.NoError(t, err)
		assert.Nil(t, warning)

		stored, err := store.Enrollment(ctx, enrollment.ID)
		require.NoError(t, err)
		assert.True(t, recomputed.Equal(stored.OutstandingBalance))
	})

	t.Run("reports drift without correcting it", func(t *testing.T) {
		svc, store, _ := newBalanceFixture()
		studentID := store.addStudent("Ana Garcia", decimal.Zero, nil)
		enrollment := store.addEnrollment(studentID, decimal.NewFromInt(1000))

		recordPayment(t, svc, enrollment.ID, 400, time.Now())
		// Corrupt the stored balance behind the service's back.
		require.NoError(t, store.SetEnrollmentBalance(ctx, enrollment.ID, decimal.NewFromInt(999)))

		recomputed, warning, err := svc.RecomputeBalance(ctx, enrollment.ID)
		require.NoError(t, err)
		require.NotNil(t, warning)
		assert.True(t, recomputed.Equal(decimal.NewFromInt(600)))
		assert.True(t, warning.Stored.Equal(decimal.NewFromInt(999)))
		assert.True(t, warning.Drift().Equal(decimal.NewFromInt(399)))

		// Still corrupt: recompute never writes.
		stored, err := store.Enrollment(ctx, enrollment.ID)
		require.NoError(t, err)
		assert.True(t, stored.OutstandingBalance.Equal(decimal.NewFromInt(999)))
	})
}

func TestBalanceService_RepairBalance(t *testing.T) {
	ctx := context.Background()

	t.Run("overwrites the stored balance with the recomputed value", func(t *testing.T) {
		svc, store, _ := newBalanceFixture()
		studentID := store.addStudent("Ana Garcia", decimal.Zero, nil)
		enrollment := store.addEnrollment(studentID, decimal.NewFromInt(1000))

		recordPayment(t, svc, enrollment.ID, 400, time.Now())
		require.NoError(t, store.SetEnrollmentBalance(ctx, enrollment.ID, decimal.NewFromInt(999)))

		repaired, err := svc.RepairBalance(ctx, enrollment.ID)
		require.NoError(t, err)
		assert.True(t, repaired.Equal(decimal.NewFromInt(600)))

		stored, err := store.Enrollment(ctx, enrollment.ID)
		require.NoError(t, err)
		assert.True(t, stored.OutstandingBalance.Equal(decimal.NewFromInt(600)))

		_, warning, err := svc.RecomputeBalance(ctx, enrollment.ID)
		require.NoError(t, err)
		assert.Nil(t, warning)
	})
}

func TestBalanceService_RecordExpense(t *testing.T) {
	ctx := context.Background()

	t.Run("persists the expense and invalidates the month", func(t *testing.T) {
		svc, store, cache := newBalanceFixture()

		expense, err := svc.RecordExpense(ctx, RecordExpenseRequest{
			Category:    ledger.ExpenseCategoryRent,
			Description: "Office rent",
			Amount:      decimal.NewFromInt(7000),
			SpentOn:     time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
			RecordedBy:  uuid.New(),
		})
		require.NoError(t, err)
		assert.Equal(t, ledger.ExpenseCategoryRent, expense.Category)

		stored, err := store.ExpensesInMonth(ctx, time.March, 2026)
		require.NoError(t, err)
		assert.Len(t, stored, 1)
		assert.Contains(t, cache.invalidations, "2026-03")
	})

	t.Run("rejects an empty description", func(t *testing.T) {
		svc, _, _ := newBalanceFixture()

		_, err := svc.RecordExpense(ctx, RecordExpenseRequest{
			Category:   ledger.ExpenseCategoryOther,
			Amount:     decimal.NewFromInt(10),
			RecordedBy: uuid.New(),
		})

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_DESCRIPTION", domainErr.Code)
	})
}
