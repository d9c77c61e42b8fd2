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

func newMigrationFixture(store *memStore) *MigrationService {
	return NewMigrationService(
		store,
		newSpyCache(),
		uuid.New(),
		decimal.RequireFromString("3000.00"),
		time.UTC,
		nil,
	)
}

func TestMigrationService_Preview(t *testing.T) {
	ctx := context.Background()

	t.Run("reports deposits and enrollment existence without side effects", func(t *testing.T) {
		store := newMemStore()
		withEnrollment := store.addStudent("Ana Garcia", decimal.NewFromInt(800), nil)
		store.addEnrollment(withEnrollment, decimal.NewFromInt(2000))
		store.addStudent("Luis Perez", decimal.NewFromInt(1200), nil)
		store.addStudent("Sin Abono", decimal.Zero, nil)

		svc := newMigrationFixture(store)
		preview, err := svc.Preview(ctx)
		require.NoError(t, err)

		assert.Equal(t, 2, preview.StudentCount)
		assert.True(t, preview.TotalAmount.Equal(decimal.NewFromInt(2000)))
		require.Len(t, preview.Rows, 2)
		assert.Equal(t, "Ana Garcia", preview.Rows[0].StudentName)
		assert.True(t, preview.Rows[0].HasEnrollment)
		assert.Equal(t, "Luis Perez", preview.Rows[1].StudentName)
		assert.False(t, preview.Rows[1].HasEnrollment)

		// Nothing was written.
		assert.Empty(t, store.payments)
		assert.Empty(t, store.migrationLog)
	})

	t.Run("is idempotent", func(t *testing.T) {
		store := newMemStore()
		store.addStudent("Ana Garcia", decimal.NewFromInt(800), nil)
		store.addStudent("Luis Perez", decimal.NewFromInt(1200), nil)

		svc := newMigrationFixture(store)
		first, err := svc.Preview(ctx)
		require.NoError(t, err)
		second, err := svc.Preview(ctx)
		require.NoError(t, err)

		assert.Equal(t, first.StudentCount, second.StudentCount)
		assert.True(t, first.TotalAmount.Equal(second.TotalAmount))
		assert.Equal(t, first.Rows, second.Rows)
	})
}

func TestMigrationService_Run(t *testing.T) {
	ctx := context.Background()
	operator := uuid.New()

	t.Run("migrates deposits into payments and clears legacy fields", func(t *testing.T) {
		store := newMemStore()
		studentID := store.addStudent("Ana Garcia", decimal.NewFromInt(800), nil)
		enrollment := store.addEnrollment(studentID, decimal.NewFromInt(2000))

		svc := newMigrationFixture(store)
		report, err := svc.Run(ctx, operator)
		require.NoError(t, err)

		assert.Equal(t, 1, report.StudentCount)
		assert.Equal(t, 0, report.EnrollmentsCreated)
		assert.True(t, report.TotalAmount.Equal(decimal.NewFromInt(800)))

		// Payment carries the migration marker and the operator.
		payments, err := store.PaymentsForEnrollment(ctx, enrollment.ID)
		require.NoError(t, err)
		require.Len(t, payments, 1)
		assert.Equal(t, "migrated", payments[0].Note)
		assert.Equal(t, ledger.PaymentMethodCash, payments[0].Method)
		assert.Equal(t, operator, payments[0].RecordedBy)

		updated, err := store.Enrollment(ctx, enrollment.ID)
		require.NoError(t, err)
		assert.True(t, updated.OutstandingBalance.Equal(decimal.NewFromInt(1200)))

		assert.True(t, store.students[studentID].deposit.IsZero())
		require.Len(t, store.migrationLog, 1)
		assert.Equal(t, studentID, store.migrationLog[0].StudentID)
		assert.Equal(t, operator, store.migrationLog[0].MigratedBy)
	})

	t.Run("clamps the balance at zero for oversized deposits", func(t *testing.T) {
		store := newMemStore()
		studentID := store.addStudent("Ana Garcia", decimal.NewFromInt(2500), nil)
		enrollment := store.addEnrollment(studentID, decimal.NewFromInt(2000))

		svc := newMigrationFixture(store)
		_, err := svc.Run(ctx, operator)
		require.NoError(t, err)

		updated, err := store.Enrollment(ctx, enrollment.ID)
		require.NoError(t, err)
		assert.True(t, updated.OutstandingBalance.IsZero())

		// The payment still records the full deposit.
		payments, err := store.PaymentsForEnrollment(ctx, enrollment.ID)
		require.NoError(t, err)
		require.Len(t, payments, 1)
		assert.True(t, payments[0].Amount.Equal(decimal.NewFromInt(2500)))
	})

	t.Run("creates an enrollment for students without one", func(t *testing.T) {
		store := newMemStore()
		total := decimal.NewFromInt(4500)
		store.addStudent("Luis Perez", decimal.NewFromInt(1000), &total)

		svc := newMigrationFixture(store)
		report, err := svc.Run(ctx, operator)
		require.NoError(t, err)

		assert.Equal(t, 1, report.EnrollmentsCreated)
		require.Len(t, report.Rows, 1)
		assert.True(t, report.Rows[0].EnrollmentCreated)

		created, err := store.Enrollment(ctx, report.Rows[0].EnrollmentID)
		require.NoError(t, err)
		assert.True(t, created.TotalCost.Equal(total))
		assert.True(t, created.OutstandingBalance.Equal(decimal.NewFromInt(3500)))
	})

	t.Run("uses the fallback cost when the legacy record has no total", func(t *testing.T) {
		store := newMemStore()
		store.addStudent("Luis Perez", decimal.NewFromInt(1000), nil)

		svc := newMigrationFixture(store)
		report, err := svc.Run(ctx, operator)
		require.NoError(t, err)

		created, err := store.Enrollment(ctx, report.Rows[0].EnrollmentID)
		require.NoError(t, err)
		assert.True(t, created.TotalCost.Equal(decimal.RequireFromString("3000.00")))
	})

	t.Run("rolls the whole batch back on a mid-batch failure", func(t *testing.T) {
		store := newMemStore()
		deposits := []decimal.Decimal{
			decimal.NewFromInt(100), decimal.NewFromInt(200), decimal.NewFromInt(300),
			decimal.NewFromInt(400), decimal.NewFromInt(500),
		}
		students := make([]uuid.UUID, len(deposits))
		for i, amount := range deposits {
			students[i] = store.addStudent("Student "+string(rune('A'+i)), amount, nil)
		}
		store.failInsertPaymentAt = 3

		svc := newMigrationFixture(store)
		report, err := svc.Run(ctx, operator)

		require.Error(t, err)
		assert.Nil(t, report)

		// Zero side effects: no payments, no enrollments, no log rows,
		// every legacy deposit intact.
		assert.Empty(t, store.payments)
		assert.Empty(t, store.enrollments)
		assert.Empty(t, store.migrationLog)
		for i, id := range students {
			assert.True(t, store.students[id].deposit.Equal(deposits[i]))
		}
	})

	t.Run("fails when a student needs an enrollment and no default course is configured", func(t *testing.T) {
		store := newMemStore()
		studentID := store.addStudent("Luis Perez", decimal.NewFromInt(1000), nil)

		svc := NewMigrationService(store, newSpyCache(), uuid.Nil, decimal.NewFromInt(3000), time.UTC, nil)
		_, err := svc.Run(ctx, operator)

		require.Error(t, err)
		assert.True(t, store.students[studentID].deposit.Equal(decimal.NewFromInt(1000)))
		assert.Empty(t, store.enrollments)
	})

	t.Run("rejects an empty operator", func(t *testing.T) {
		store := newMemStore()
		svc := newMigrationFixture(store)

		_, err := svc.Run(ctx, uuid.Nil)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_OPERATOR", domainErr.Code)
	})

	t.Run("empty batch is a successful no-op", func(t *testing.T) {
		store := newMemStore()
		store.addStudent("Sin Abono", decimal.Zero, nil)

		svc := newMigrationFixture(store)
		report, err := svc.Run(ctx, operator)

		require.NoError(t, err)
		assert.Equal(t, 0, report.StudentCount)
		assert.True(t, report.TotalAmount.IsZero())
	})
}
