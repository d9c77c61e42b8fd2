package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/academia/backend/internal/domain/ledger"
	"github.com/academia/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MigrationService converts legacy per-student deposit fields into proper
// payment rows against an enrollment, clamping the enrollment balance at
// zero and clearing the legacy field.
type MigrationService struct {
	store ledger.Store
	cache ledger.ReportCache
	// defaultCourseID is the active course used when a student with a
	// legacy deposit has no enrollment at all.
	defaultCourseID uuid.UUID
	// fallbackCourseCost is used as costo_total when the legacy record
	// carries no total.
	fallbackCourseCost decimal.Decimal
	loc                *time.Location
	logger             *zap.Logger
}

// NewMigrationService creates a new MigrationService
func NewMigrationService(
	store ledger.Store,
	cache ledger.ReportCache,
	defaultCourseID uuid.UUID,
	fallbackCourseCost decimal.Decimal,
	loc *time.Location,
	logger *zap.Logger,
) *MigrationService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MigrationService{
		store:              store,
		cache:              cache,
		defaultCourseID:    defaultCourseID,
		fallbackCourseCost: fallbackCourseCost,
		loc:                loc,
		logger:             logger,
	}
}

// PreviewRow describes what Run would do for one student
type PreviewRow struct {
	StudentID     uuid.UUID       `json:"student_id"`
	StudentName   string          `json:"student_name"`
	Amount        decimal.Decimal `json:"amount"`
	HasEnrollment bool            `json:"has_enrollment"`
}

// Preview describes the pending migration without performing it
type Preview struct {
	Rows         []PreviewRow    `json:"rows"`
	StudentCount int             `json:"student_count"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

// MigratedRow is the outcome of Run for one student
type MigratedRow struct {
	StudentID         uuid.UUID       `json:"student_id"`
	StudentName       string          `json:"student_name"`
	EnrollmentID      uuid.UUID       `json:"enrollment_id"`
	PaymentID         uuid.UUID       `json:"payment_id"`
	Amount            decimal.Decimal `json:"amount"`
	EnrollmentCreated bool            `json:"enrollment_created"`
}

// RunReport summarizes one completed migration batch
type RunReport struct {
	Rows               []MigratedRow   `json:"rows"`
	StudentCount       int             `json:"student_count"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	EnrollmentsCreated int             `json:"enrollments_created"`
}

// Preview reports, without side effects, what Run would migrate: every
// student with a nonzero legacy deposit, the amount, and whether the
// student already has an enrollment to attach it to. Running Preview any
// number of times yields the same result for the same database state.
func (s *MigrationService) Preview(ctx context.Context) (*Preview, error) {
	deposits, err := s.store.LegacyDepositsNonZero(ctx)
	if err != nil {
		return nil, err
	}

	preview := &Preview{
		Rows:        make([]PreviewRow, 0, len(deposits)),
		TotalAmount: decimal.Zero,
	}
	for _, dep := range deposits {
		hasEnrollment := true
		if _, err := s.store.LatestEnrollmentForStudent(ctx, dep.StudentID); err != nil {
			if !errors.Is(err, shared.ErrNotFound) {
				return nil, err
			}
			hasEnrollment = false
		}
		preview.Rows = append(preview.Rows, PreviewRow{
			StudentID:     dep.StudentID,
			StudentName:   dep.StudentName,
			Amount:        dep.Amount,
			HasEnrollment: hasEnrollment,
		})
		preview.TotalAmount = preview.TotalAmount.Add(dep.Amount)
	}
	preview.StudentCount = len(preview.Rows)
	return preview, nil
}

// Run migrates every nonzero legacy deposit in one transaction. For each
// student it resolves (or creates) an enrollment, inserts a cash payment
// for the deposit, decrements the balance clamped at zero, and appends a
// migration_log entry; at the end all migrated legacy fields are cleared
// in one statement. Any failure rolls the entire batch back.
//
// Run is not serialized against concurrent invocations; callers must
// ensure only one migration runs at a time.
func (s *MigrationService) Run(ctx context.Context, operatorID uuid.UUID) (*RunReport, error) {
	if operatorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OPERATOR", "Operator reference cannot be empty")
	}

	report := &RunReport{TotalAmount: decimal.Zero}

	err := s.store.InTransaction(ctx, func(tx ledger.Store) error {
		deposits, err := tx.LegacyDepositsNonZero(ctx)
		if err != nil {
			return err
		}
		if len(deposits) == 0 {
			return nil
		}

		migratedIDs := make([]uuid.UUID, 0, len(deposits))
		for _, dep := range deposits {
			row, err := s.migrateOne(ctx, tx, dep, operatorID)
			if err != nil {
				return fmt.Errorf("student %s: %w", dep.StudentID, err)
			}
			report.Rows = append(report.Rows, *row)
			report.TotalAmount = report.TotalAmount.Add(row.Amount)
			if row.EnrollmentCreated {
				report.EnrollmentsCreated++
			}
			migratedIDs = append(migratedIDs, dep.StudentID)
		}

		return tx.ClearLegacyDeposits(ctx, migratedIDs)
	})
	if err != nil {
		return nil, err
	}

	report.StudentCount = len(report.Rows)
	s.logger.Info("legacy deposit migration completed",
		zap.Int("students", report.StudentCount),
		zap.Int("enrollments_created", report.EnrollmentsCreated),
		zap.String("total_amount", report.TotalAmount.String()),
	)
	s.invalidateCurrentMonth(ctx)

	return report, nil
}

// migrateOne converts a single legacy deposit inside the batch transaction.
func (s *MigrationService) migrateOne(ctx context.Context, tx ledger.Store, dep ledger.LegacyDeposit, operatorID uuid.UUID) (*MigratedRow, error) {
	created := false
	enrollment, err := tx.LatestEnrollmentForStudent(ctx, dep.StudentID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		enrollment, err = s.createEnrollmentFor(ctx, tx, dep)
		if err != nil {
			return nil, err
		}
		created = true
	} else {
		// Lock the existing row so the clamp below reads a stable balance.
		enrollment, err = tx.EnrollmentForUpdate(ctx, enrollment.ID)
		if err != nil {
			return nil, err
		}
	}

	payment, err := ledger.NewPayment(
		enrollment.ID,
		dep.StudentID,
		dep.Amount,
		ledger.PaymentMethodCash,
		"migrated",
		time.Now().In(s.loc),
		operatorID,
	)
	if err != nil {
		return nil, err
	}
	if err := tx.InsertPayment(ctx, payment); err != nil {
		return nil, err
	}

	// Clamp at zero: a deposit larger than the outstanding balance only
	// clears the balance, it never produces credit.
	delta := decimal.Min(dep.Amount, enrollment.OutstandingBalance).Neg()
	if delta.IsNegative() {
		if err := tx.AdjustEnrollmentBalance(ctx, enrollment.ID, delta); err != nil {
			return nil, err
		}
	}

	entry := ledger.NewMigrationLogEntry(dep.StudentID, enrollment.ID, dep.Amount, operatorID)
	if err := tx.AppendMigrationLog(ctx, entry); err != nil {
		return nil, err
	}

	return &MigratedRow{
		StudentID:         dep.StudentID,
		StudentName:       dep.StudentName,
		EnrollmentID:      enrollment.ID,
		PaymentID:         payment.ID,
		Amount:            dep.Amount,
		EnrollmentCreated: created,
	}, nil
}

// createEnrollmentFor creates an enrollment in the default course for a
// student who has a legacy deposit but no enrollment to attach it to.
func (s *MigrationService) createEnrollmentFor(ctx context.Context, tx ledger.Store, dep ledger.LegacyDeposit) (*ledger.Enrollment, error) {
	if s.defaultCourseID == uuid.Nil {
		return nil, shared.NewDomainError("MIGRATION_NO_DEFAULT_COURSE",
			"No default course configured for students without an enrollment")
	}

	cost := s.fallbackCourseCost
	if dep.TotalCost != nil && dep.TotalCost.IsPositive() {
		cost = *dep.TotalCost
	}

	enrollment, err := ledger.NewEnrollment(dep.StudentID, s.defaultCourseID, cost)
	if err != nil {
		return nil, err
	}
	if err := tx.InsertEnrollment(ctx, enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}

func (s *MigrationService) invalidateCurrentMonth(ctx context.Context) {
	if s.cache == nil {
		return
	}
	now := time.Now().In(s.loc)
	if err := s.cache.InvalidateMonth(ctx, now.Month(), now.Year()); err != nil {
		s.logger.Warn("failed to invalidate summary cache after migration", zap.Error(err))
	}
}
