package models

import (
	"time"

	"github.com/academia/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EnrollmentModel is the persistence model for the Enrollment entity.
// Column names follow the existing schema of the back-office database.
type EnrollmentModel struct {
	BaseModel
	StudentID           uuid.UUID               `gorm:"type:uuid;not null;index;column:student_id"`
	CourseID            uuid.UUID               `gorm:"type:uuid;not null;index;column:course_id"`
	ScheduleID          *uuid.UUID              `gorm:"type:uuid;column:schedule_id"`
	CourseLabelOverride string                  `gorm:"type:varchar(200);column:course_label_override"`
	ScheduleOverride    string                  `gorm:"type:varchar(200);column:schedule_override"`
	TotalCost           decimal.Decimal         `gorm:"type:decimal(12,2);not null;column:costo_total"`
	OutstandingBalance  decimal.Decimal         `gorm:"type:decimal(12,2);not null;index;column:saldo_pendiente"`
	Status              ledger.EnrollmentStatus `gorm:"type:varchar(20);not null;default:'ACTIVE';index;column:estado"`
	Module              int                     `gorm:"not null;default:1;column:modulo"`
	Promotion           string                  `gorm:"type:varchar(100);column:promocion"`
}

// TableName returns the table name for GORM
func (EnrollmentModel) TableName() string {
	return "enrollments"
}

// ToDomain converts the persistence model to a domain Enrollment entity.
func (m *EnrollmentModel) ToDomain() *ledger.Enrollment {
	return &ledger.Enrollment{
		BaseEntity:          m.BaseModel.ToDomain(),
		StudentID:           m.StudentID,
		CourseID:            m.CourseID,
		ScheduleID:          m.ScheduleID,
		CourseLabelOverride: m.CourseLabelOverride,
		ScheduleOverride:    m.ScheduleOverride,
		TotalCost:           m.TotalCost,
		OutstandingBalance:  m.OutstandingBalance,
		Status:              m.Status,
		Module:              m.Module,
		Promotion:           m.Promotion,
	}
}

// EnrollmentModelFromDomain creates a new persistence model from a domain Enrollment.
func EnrollmentModelFromDomain(e *ledger.Enrollment) *EnrollmentModel {
	m := &EnrollmentModel{
		StudentID:           e.StudentID,
		CourseID:            e.CourseID,
		ScheduleID:          e.ScheduleID,
		CourseLabelOverride: e.CourseLabelOverride,
		ScheduleOverride:    e.ScheduleOverride,
		TotalCost:           e.TotalCost,
		OutstandingBalance:  e.OutstandingBalance,
		Status:              e.Status,
		Module:              e.Module,
		Promotion:           e.Promotion,
	}
	m.FromDomainBaseEntity(e.BaseEntity)
	return m
}

// PaymentModel is the persistence model for the Payment entity.
type PaymentModel struct {
	BaseModel
	EnrollmentID uuid.UUID            `gorm:"type:uuid;not null;index;column:enrollment_id"`
	StudentID    uuid.UUID            `gorm:"type:uuid;not null;index;column:student_id"`
	Amount       decimal.Decimal      `gorm:"type:decimal(12,2);not null;column:monto"`
	Method       ledger.PaymentMethod `gorm:"type:varchar(20);not null;column:metodo_pago"`
	Receipt      string               `gorm:"type:varchar(100);column:comprobante"`
	Note         string               `gorm:"type:varchar(500);column:nota"`
	PaidOn       time.Time            `gorm:"type:date;not null;index;column:fecha_pago"`
	RecordedBy   uuid.UUID            `gorm:"type:uuid;not null;column:registrado_por"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment entity.
func (m *PaymentModel) ToDomain() *ledger.Payment {
	return &ledger.Payment{
		BaseEntity:   m.BaseModel.ToDomain(),
		EnrollmentID: m.EnrollmentID,
		StudentID:    m.StudentID,
		Amount:       m.Amount,
		Method:       m.Method,
		Receipt:      m.Receipt,
		Note:         m.Note,
		PaidOn:       m.PaidOn,
		RecordedBy:   m.RecordedBy,
	}
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment.
func PaymentModelFromDomain(p *ledger.Payment) *PaymentModel {
	m := &PaymentModel{
		EnrollmentID: p.EnrollmentID,
		StudentID:    p.StudentID,
		Amount:       p.Amount,
		Method:       p.Method,
		Receipt:      p.Receipt,
		Note:         p.Note,
		PaidOn:       p.PaidOn,
		RecordedBy:   p.RecordedBy,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}

// ExpenseModel is the persistence model for the Expense entity.
type ExpenseModel struct {
	BaseModel
	Category    ledger.ExpenseCategory `gorm:"type:varchar(30);not null;index;column:tipo"`
	Description string                 `gorm:"type:varchar(500);not null;column:descripcion"`
	Amount      decimal.Decimal        `gorm:"type:decimal(12,2);not null;column:monto"`
	SpentOn     time.Time              `gorm:"type:date;not null;index;column:fecha"`
	RecordedBy  uuid.UUID              `gorm:"type:uuid;not null;column:registrado_por"`
}

// TableName returns the table name for GORM
func (ExpenseModel) TableName() string {
	return "expenses"
}

// ToDomain converts the persistence model to a domain Expense entity.
func (m *ExpenseModel) ToDomain() *ledger.Expense {
	return &ledger.Expense{
		BaseEntity:  m.BaseModel.ToDomain(),
		Category:    m.Category,
		Description: m.Description,
		Amount:      m.Amount,
		SpentOn:     m.SpentOn,
		RecordedBy:  m.RecordedBy,
	}
}

// ExpenseModelFromDomain creates a new persistence model from a domain Expense.
func ExpenseModelFromDomain(e *ledger.Expense) *ExpenseModel {
	m := &ExpenseModel{
		Category:    e.Category,
		Description: e.Description,
		Amount:      e.Amount,
		SpentOn:     e.SpentOn,
		RecordedBy:  e.RecordedBy,
	}
	m.FromDomainBaseEntity(e.BaseEntity)
	return m
}

// StudentModel maps the columns of the student record the ledger reads.
// Students are owned by another part of the system; the ledger only reads
// the display name and the deprecated legacy deposit pair (abono, total),
// and the migration engine clears abono.
type StudentModel struct {
	ID        uuid.UUID        `gorm:"type:uuid;primary_key"`
	Name      string           `gorm:"type:varchar(200);not null;column:nombre"`
	Deposit   decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0;column:abono"`
	TotalCost *decimal.Decimal `gorm:"type:decimal(12,2);column:total"`
}

// TableName returns the table name for GORM
func (StudentModel) TableName() string {
	return "students"
}

// MigrationLogModel is the persistence model for the append-only migration log.
type MigrationLogModel struct {
	BaseModel
	StudentID    uuid.UUID       `gorm:"type:uuid;not null;index;column:student_id"`
	EnrollmentID uuid.UUID       `gorm:"type:uuid;not null;column:enrollment_id"`
	Amount       decimal.Decimal `gorm:"type:decimal(12,2);not null;column:amount"`
	MigratedAt   time.Time       `gorm:"not null;column:migrated_at"`
	MigratedBy   uuid.UUID       `gorm:"type:uuid;not null;column:migrated_by"`
}

// TableName returns the table name for GORM
func (MigrationLogModel) TableName() string {
	return "migration_log"
}

// MigrationLogModelFromDomain creates a persistence model from a domain entry.
func MigrationLogModelFromDomain(e *ledger.MigrationLogEntry) *MigrationLogModel {
	m := &MigrationLogModel{
		StudentID:    e.StudentID,
		EnrollmentID: e.EnrollmentID,
		Amount:       e.Amount,
		MigratedAt:   e.MigratedAt,
		MigratedBy:   e.MigratedBy,
	}
	m.FromDomainBaseEntity(e.BaseEntity)
	return m
}
