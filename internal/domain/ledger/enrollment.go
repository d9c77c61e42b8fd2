package ledger

import (
	"github.com/academia/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EnrollmentStatus represents the lifecycle status of an enrollment
type EnrollmentStatus string

const (
	EnrollmentStatusActive   EnrollmentStatus = "ACTIVE"
	EnrollmentStatusInactive EnrollmentStatus = "INACTIVE"
)

// IsValid checks if the status is a valid EnrollmentStatus
func (s EnrollmentStatus) IsValid() bool {
	return s == EnrollmentStatusActive || s == EnrollmentStatusInactive
}

// String returns the string representation of EnrollmentStatus
func (s EnrollmentStatus) String() string {
	return string(s)
}

// Enrollment represents a student's registration in a course term.
// It carries a fixed price (TotalCost) and a mutable outstanding balance
// kept consistent with the payment history by the balance service.
//
// The intended invariant is:
//
//	OutstandingBalance == TotalCost - sum(payments for this enrollment)
//
// The invariant is never enforced at the store level; RecomputeBalance
// detects drift and the operator repair path corrects it.
type Enrollment struct {
	shared.BaseEntity
	StudentID           uuid.UUID
	CourseID            uuid.UUID
	ScheduleID          *uuid.UUID
	CourseLabelOverride string // free text superseding the course display name
	ScheduleOverride    string // free text superseding the schedule display name
	TotalCost           decimal.Decimal
	OutstandingBalance  decimal.Decimal
	Status              EnrollmentStatus
	Module              int
	Promotion           string
}

// NewEnrollment creates a new active enrollment with the full cost outstanding
func NewEnrollment(studentID, courseID uuid.UUID, totalCost decimal.Decimal) (*Enrollment, error) {
	if studentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STUDENT", "Student reference cannot be empty")
	}
	if courseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COURSE", "Course reference cannot be empty")
	}
	if totalCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Total cost cannot be negative")
	}

	return &Enrollment{
		BaseEntity:         shared.NewBaseEntity(),
		StudentID:          studentID,
		CourseID:           courseID,
		TotalCost:          totalCost,
		OutstandingBalance: totalCost,
		Status:             EnrollmentStatusActive,
		Module:             1,
	}, nil
}

// CourseLabel resolves the display label for this enrollment's course.
// The free-text override, when present, supersedes the referenced course
// name; every read site goes through this accessor instead of repeating
// the null-coalescing.
func (e *Enrollment) CourseLabel(courseName string) string {
	if e.CourseLabelOverride != "" {
		return e.CourseLabelOverride
	}
	return courseName
}

// ScheduleLabel resolves the display label for this enrollment's schedule
func (e *Enrollment) ScheduleLabel(scheduleName string) string {
	if e.ScheduleOverride != "" {
		return e.ScheduleOverride
	}
	return scheduleName
}

// IsActive returns true if the enrollment is active
func (e *Enrollment) IsActive() bool {
	return e.Status == EnrollmentStatusActive
}

// IsDebtor returns true if the enrollment has a positive outstanding balance
func (e *Enrollment) IsDebtor() bool {
	return e.IsActive() && e.OutstandingBalance.IsPositive()
}
