package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store is the persistence contract the ledger subsystem depends on.
// It carries no business logic.
//
// A Store value is bound to a database handle. InTransaction yields a
// Store bound to a single transaction; every mutating method called on
// that value executes inside it, and the whole function commits or rolls
// back atomically. Calling mutating methods on the root Store runs each
// statement in its own implicit transaction.
type Store interface {
	// InTransaction runs fn with a Store bound to one transaction.
	// Any error returned by fn rolls the transaction back.
	InTransaction(ctx context.Context, fn func(Store) error) error

	// Enrollment finds an enrollment by ID. Returns shared.ErrNotFound
	// when absent.
	Enrollment(ctx context.Context, id uuid.UUID) (*Enrollment, error)

	// EnrollmentForUpdate finds an enrollment and locks its row
	// (SELECT ... FOR UPDATE). Only meaningful inside InTransaction.
	EnrollmentForUpdate(ctx context.Context, id uuid.UUID) (*Enrollment, error)

	// LatestEnrollmentForStudent returns the student's most recently
	// created enrollment, or shared.ErrNotFound when the student has none.
	LatestEnrollmentForStudent(ctx context.Context, studentID uuid.UUID) (*Enrollment, error)

	// ActiveEnrollments lists all active enrollments.
	ActiveEnrollments(ctx context.Context) ([]Enrollment, error)

	// InsertEnrollment persists a new enrollment.
	InsertEnrollment(ctx context.Context, enrollment *Enrollment) error

	// AdjustEnrollmentBalance applies a delta to the stored outstanding
	// balance as a single atomic UPDATE (saldo = saldo + delta), never a
	// read-then-write from application memory.
	AdjustEnrollmentBalance(ctx context.Context, enrollmentID uuid.UUID, delta decimal.Decimal) error

	// SetEnrollmentBalance overwrites the stored balance. Reserved for
	// the operator-triggered repair path.
	SetEnrollmentBalance(ctx context.Context, enrollmentID uuid.UUID, balance decimal.Decimal) error

	// InsertPayment persists a new payment.
	InsertPayment(ctx context.Context, payment *Payment) error

	// DeletePaymentReturningIt hard-deletes a payment and returns the
	// deleted row, or shared.ErrNotFound when absent.
	DeletePaymentReturningIt(ctx context.Context, id uuid.UUID) (*Payment, error)

	// PaymentsForEnrollment lists all payments on an enrollment,
	// newest first.
	PaymentsForEnrollment(ctx context.Context, enrollmentID uuid.UUID) ([]Payment, error)

	// PaymentsInMonth lists all payments dated inside the given calendar
	// month of the business timezone.
	PaymentsInMonth(ctx context.Context, month time.Month, year int) ([]Payment, error)

	// SumPaymentsForEnrollment returns the total paid on an enrollment.
	SumPaymentsForEnrollment(ctx context.Context, enrollmentID uuid.UUID) (decimal.Decimal, error)

	// InsertExpense persists a new expense.
	InsertExpense(ctx context.Context, expense *Expense) error

	// ExpensesInMonth lists all expenses dated inside the given calendar
	// month of the business timezone.
	ExpensesInMonth(ctx context.Context, month time.Month, year int) ([]Expense, error)

	// LegacyDepositsNonZero lists every student with a nonzero legacy
	// deposit amount.
	LegacyDepositsNonZero(ctx context.Context) ([]LegacyDeposit, error)

	// ClearLegacyDeposits zeroes the legacy deposit field for the given
	// students in one statement.
	ClearLegacyDeposits(ctx context.Context, studentIDs []uuid.UUID) error

	// AppendMigrationLog records one migrated deposit.
	AppendMigrationLog(ctx context.Context, entry *MigrationLogEntry) error

	// StudentName resolves a student's display name for reporting.
	StudentName(ctx context.Context, studentID uuid.UUID) (string, error)
}
