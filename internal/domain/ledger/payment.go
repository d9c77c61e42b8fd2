package ledger

import (
	"time"

	"github.com/academia/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents how a payment was received.
// All payments are manually recorded cash/transfer/card entries; there is
// no gateway capture.
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodTransfer PaymentMethod = "TRANSFER"
	PaymentMethodCard     PaymentMethod = "CARD"
)

// IsValid checks if the method is a valid PaymentMethod
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodTransfer, PaymentMethodCard:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// Payment represents a recorded receipt of money against an enrollment.
// The student reference is denormalized for reporting queries.
// Payments are immutable once written; reversing one is a hard delete
// paired with the opposite balance adjustment in the same transaction.
type Payment struct {
	shared.BaseEntity
	EnrollmentID uuid.UUID
	StudentID    uuid.UUID
	Amount       decimal.Decimal
	Method       PaymentMethod
	Receipt      string // optional receipt reference
	Note         string
	PaidOn       time.Time // calendar date of the payment
	RecordedBy   uuid.UUID // staff member who recorded it
}

// NewPayment creates a new payment record
func NewPayment(
	enrollmentID, studentID uuid.UUID,
	amount decimal.Decimal,
	method PaymentMethod,
	note string,
	paidOn time.Time,
	recordedBy uuid.UUID,
) (*Payment, error) {
	if enrollmentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ENROLLMENT", "Enrollment reference cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method is not valid")
	}
	if paidOn.IsZero() {
		paidOn = time.Now()
	}

	return &Payment{
		BaseEntity:   shared.NewBaseEntity(),
		EnrollmentID: enrollmentID,
		StudentID:    studentID,
		Amount:       amount,
		Method:       method,
		Note:         note,
		PaidOn:       paidOn,
		RecordedBy:   recordedBy,
	}, nil
}

// WithReceipt attaches a receipt reference
func (p *Payment) WithReceipt(receipt string) *Payment {
	p.Receipt = receipt
	return p
}
