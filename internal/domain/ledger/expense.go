package ledger

import (
	"time"

	"github.com/academia/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseCategory represents the category of an expense
type ExpenseCategory string

const (
	ExpenseCategoryRent      ExpenseCategory = "RENT"
	ExpenseCategoryUtilities ExpenseCategory = "UTILITIES"
	ExpenseCategorySalary    ExpenseCategory = "SALARY"
	ExpenseCategorySupplies  ExpenseCategory = "SUPPLIES"
	ExpenseCategoryMarketing ExpenseCategory = "MARKETING"
	ExpenseCategoryOther     ExpenseCategory = "OTHER"
)

// IsValid checks if the category is a valid ExpenseCategory
func (c ExpenseCategory) IsValid() bool {
	switch c {
	case ExpenseCategoryRent, ExpenseCategoryUtilities, ExpenseCategorySalary,
		ExpenseCategorySupplies, ExpenseCategoryMarketing, ExpenseCategoryOther:
		return true
	}
	return false
}

// String returns the string representation of ExpenseCategory
func (c ExpenseCategory) String() string {
	return string(c)
}

// Expense represents a recorded outgoing cost. Expenses are independent of
// enrollments and carry no balance linkage.
type Expense struct {
	shared.BaseEntity
	Category    ExpenseCategory
	Description string
	Amount      decimal.Decimal
	SpentOn     time.Time // calendar date of the expense
	RecordedBy  uuid.UUID // staff member who recorded it
}

// NewExpense creates a new expense record
func NewExpense(
	category ExpenseCategory,
	description string,
	amount decimal.Decimal,
	spentOn time.Time,
	recordedBy uuid.UUID,
) (*Expense, error) {
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Expense category is not valid")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Expense amount must be positive")
	}
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot be empty")
	}
	if spentOn.IsZero() {
		spentOn = time.Now()
	}

	return &Expense{
		BaseEntity:  shared.NewBaseEntity(),
		Category:    category,
		Description: description,
		Amount:      amount,
		SpentOn:     spentOn,
		RecordedBy:  recordedBy,
	}, nil
}
