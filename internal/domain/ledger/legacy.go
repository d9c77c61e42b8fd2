package ledger

import (
	"time"

	"github.com/academia/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LegacyDeposit is the deprecated pair of scalar fields on the student
// record (a raw prior-payment amount plus an optional total cost) that
// predates the Payment/Enrollment model. It exists only until migrated;
// the migration engine is the only component that reads or clears it.
type LegacyDeposit struct {
	StudentID   uuid.UUID
	StudentName string
	Amount      decimal.Decimal  // prior-payment amount ("abono")
	TotalCost   *decimal.Decimal // optional total cost ("total")
}

// MigrationLogEntry is an append-only record of one migrated deposit.
// Together with the cleared legacy field it makes a migration auditable
// per student instead of leaving only a silently-nulled scalar behind.
type MigrationLogEntry struct {
	shared.BaseEntity
	StudentID    uuid.UUID
	EnrollmentID uuid.UUID
	Amount       decimal.Decimal
	MigratedAt   time.Time
	MigratedBy   uuid.UUID
}

// NewMigrationLogEntry creates a migration log entry for one converted deposit
func NewMigrationLogEntry(studentID, enrollmentID uuid.UUID, amount decimal.Decimal, migratedBy uuid.UUID) *MigrationLogEntry {
	return &MigrationLogEntry{
		BaseEntity:   shared.NewBaseEntity(),
		StudentID:    studentID,
		EnrollmentID: enrollmentID,
		Amount:       amount,
		MigratedAt:   time.Now(),
		MigratedBy:   migratedBy,
	}
}

// ConsistencyWarning reports drift between an enrollment's stored balance
// and the balance recomputed from its payment history. It is logged and
// surfaced to the operator, never auto-corrected.
type ConsistencyWarning struct {
	EnrollmentID uuid.UUID       `json:"enrollment_id"`
	Stored       decimal.Decimal `json:"stored"`
	Recomputed   decimal.Decimal `json:"recomputed"`
}

// Drift returns stored minus recomputed balance
func (w ConsistencyWarning) Drift() decimal.Decimal {
	return w.Stored.Sub(w.Recomputed)
}
