package finance

import (
	"context"
	"strings"
	"time"

	"github.com/bizhub/backend/internal/domain/shared"
	"github.com/bizhub/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const AggregateTypeExpense = "Expense"

// ExpenseCategory represents the category of an expense
type ExpenseCategory string

const (
	ExpenseCategoryRent      ExpenseCategory = "rent"
	ExpenseCategoryUtilities ExpenseCategory = "utilities"
	ExpenseCategorySalaries  ExpenseCategory = "salaries"
	ExpenseCategoryInventory ExpenseCategory = "inventory"
	ExpenseCategoryMarketing ExpenseCategory = "marketing"
	ExpenseCategoryTransport ExpenseCategory = "transport"
	ExpenseCategoryOther     ExpenseCategory = "other"
)

// IsValid checks if the category is a valid ExpenseCategory
func (c ExpenseCategory) IsValid() bool {
	switch c {
	case ExpenseCategoryRent, ExpenseCategoryUtilities, ExpenseCategorySalaries,
		ExpenseCategoryInventory, ExpenseCategoryMarketing, ExpenseCategoryTransport,
		ExpenseCategoryOther:
		return true
	}
	return false
}

// DisplayName returns a human-readable name for the category
func (c ExpenseCategory) DisplayName() string {
	switch c {
	case ExpenseCategoryRent:
		return "Rent"
	case ExpenseCategoryUtilities:
		return "Utilities"
	case ExpenseCategorySalaries:
		return "Salaries"
	case ExpenseCategoryInventory:
		return "Inventory"
	case ExpenseCategoryMarketing:
		return "Marketing"
	case ExpenseCategoryTransport:
		return "Transport"
	case ExpenseCategoryOther:
		return "Other"
	default:
		return string(c)
	}
}

// Expense is money spent running the business
type Expense struct {
	shared.OwnedAggregateRoot
	Category      ExpenseCategory
	Description   string
	Amount        decimal.Decimal
	ExpenseDate   time.Time
	PaymentMethod trade.PaymentMethod
	Vendor        string
}

// ExpenseDetails are the editable fields of an expense
type ExpenseDetails struct {
	Category      ExpenseCategory
	Description   string
	Amount        decimal.Decimal
	ExpenseDate   time.Time
	PaymentMethod trade.PaymentMethod
	Vendor        string
}

func NewExpense(userID uuid.UUID, d ExpenseDetails) (*Expense, error) {
	e := &Expense{OwnedAggregateRoot: shared.NewOwnedAggregateRoot(userID)}
	if err := e.apply(d); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Expense) Update(d ExpenseDetails) error {
	if err := e.apply(d); err != nil {
		return err
	}
	e.IncrementVersion()
	return nil
}

func (e *Expense) apply(d ExpenseDetails) error {
	category := ExpenseCategory(strings.ToLower(string(d.Category)))
	if category == "" {
		category = ExpenseCategoryOther
	}
	if !category.IsValid() {
		return shared.NewDomainError("INVALID_CATEGORY", "Invalid expense category: "+string(d.Category))
	}
	if !d.Amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Expense amount must be positive")
	}
	method := d.PaymentMethod
	if method == "" {
		method = trade.PaymentMethodCash
	}
	if !method.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_METHOD", "Invalid payment method: "+string(method))
	}
	date := d.ExpenseDate
	if date.IsZero() {
		date = time.Now()
	}
	e.Category = category
	e.Description = strings.TrimSpace(d.Description)
	e.Amount = d.Amount.Round(2)
	e.ExpenseDate = date
	e.PaymentMethod = method
	e.Vendor = strings.TrimSpace(d.Vendor)
	return nil
}

// ExpenseRepository persists expenses
type ExpenseRepository interface {
	shared.OwnedRepository[Expense]
	// SumBetween totals expenses dated in [from, to)
	SumBetween(ctx context.Context, ownerID uuid.UUID, from, to time.Time) (decimal.Decimal, error)
}
