package finance

import (
	"context"
	"strings"
	"time"

	"github.com/bizhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const AggregateTypeInvoice = "Invoice"

var hundred = decimal.NewFromInt(100)

// InvoiceStatus represents the lifecycle state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// IsValid checks if the status is a known InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusCancelled
}

// CanTransitionTo reports whether the invoice may move from s to next
func (s InvoiceStatus) CanTransitionTo(next InvoiceStatus) bool {
	switch s {
	case InvoiceStatusDraft:
		return next == InvoiceStatusSent || next == InvoiceStatusCancelled
	case InvoiceStatusSent:
		return next == InvoiceStatusPaid || next == InvoiceStatusOverdue || next == InvoiceStatusCancelled
	case InvoiceStatusOverdue:
		return next == InvoiceStatusPaid || next == InvoiceStatusCancelled
	}
	return false
}

// InvoiceItem is a line on an invoice. Amount is Quantity x UnitPrice.
type InvoiceItem struct {
	ID          uuid.UUID
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
}

// InvoiceItemInput is a caller-supplied invoice line
type InvoiceItemInput struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// InvoiceDetails are the editable fields of an invoice
type InvoiceDetails struct {
	CustomerID   *uuid.UUID
	IssueDate    time.Time
	DueDate      time.Time
	TaxRate      decimal.Decimal
	DiscountRate decimal.Decimal
	Items        []InvoiceItemInput
	Notes        string
}

// Invoice is a bill sent to a customer
type Invoice struct {
	shared.OwnedAggregateRoot
	CustomerID     *uuid.UUID
	InvoiceNumber  string
	Status         InvoiceStatus
	IssueDate      time.Time
	DueDate        time.Time
	TaxRate        decimal.Decimal
	DiscountRate   decimal.Decimal
	Items          []InvoiceItem
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
	Notes          string
}

// NewInvoice creates a draft invoice with the given number
func NewInvoice(userID uuid.UUID, number string, d InvoiceDetails) (*Invoice, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number is required")
	}
	inv := &Invoice{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(userID),
		InvoiceNumber:      number,
		Status:             InvoiceStatusDraft,
	}
	if err := inv.apply(d); err != nil {
		return nil, err
	}
	return inv, nil
}

// Update replaces the invoice contents. Only drafts are editable.
func (inv *Invoice) Update(d InvoiceDetails) error {
	if inv.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft invoices can be edited")
	}
	if err := inv.apply(d); err != nil {
		return err
	}
	inv.IncrementVersion()
	return nil
}

func (inv *Invoice) apply(d InvoiceDetails) error {
	if len(d.Items) == 0 {
		return shared.NewDomainError("INVALID_ITEMS", "An invoice needs at least one item")
	}
	if err := validateRate("tax", d.TaxRate); err != nil {
		return err
	}
	if err := validateRate("discount", d.DiscountRate); err != nil {
		return err
	}
	issue := d.IssueDate
	if issue.IsZero() {
		issue = time.Now()
	}
	due := d.DueDate
	if due.IsZero() {
		due = issue.AddDate(0, 0, 14)
	}
	if due.Before(issue) {
		return shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot be before issue date")
	}

	items := make([]InvoiceItem, 0, len(d.Items))
	for _, in := range d.Items {
		desc := strings.TrimSpace(in.Description)
		switch {
		case desc == "":
			return shared.NewDomainError("INVALID_ITEMS", "Item description is required")
		case !in.Quantity.IsPositive():
			return shared.NewDomainError("INVALID_ITEMS", "Item quantity must be positive")
		case in.UnitPrice.IsNegative():
			return shared.NewDomainError("INVALID_ITEMS", "Item unit price cannot be negative")
		}
		price := in.UnitPrice.Round(2)
		items = append(items, InvoiceItem{
			ID:          uuid.New(),
			Description: desc,
			Quantity:    in.Quantity,
			UnitPrice:   price,
			Amount:      in.Quantity.Mul(price).Round(2),
		})
	}

	inv.CustomerID = d.CustomerID
	inv.IssueDate = issue
	inv.DueDate = due
	inv.TaxRate = d.TaxRate
	inv.DiscountRate = d.DiscountRate
	inv.Items = items
	inv.Notes = d.Notes
	inv.Recalculate()
	return nil
}

func validateRate(name string, r decimal.Decimal) error {
	if r.IsNegative() || r.GreaterThan(hundred) {
		return shared.NewDomainError("INVALID_RATE", "The "+name+" rate must be between 0 and 100")
	}
	return nil
}

// Recalculate derives subtotal, discount, tax and total from the items
func (inv *Invoice) Recalculate() {
	subtotal := decimal.Zero
	for _, it := range inv.Items {
		subtotal = subtotal.Add(it.Amount)
	}
	discount := subtotal.Mul(inv.DiscountRate).Div(hundred).Round(2)
	tax := subtotal.Sub(discount).Mul(inv.TaxRate).Div(hundred).Round(2)
	inv.Subtotal = subtotal.Round(2)
	inv.DiscountAmount = discount
	inv.TaxAmount = tax
	inv.Total = inv.Subtotal.Sub(discount).Add(tax)
}

// ChangeStatus moves the invoice to next if the transition is allowed
func (inv *Invoice) ChangeStatus(next InvoiceStatus) error {
	if !next.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Invalid invoice status: "+string(next))
	}
	if inv.Status == next {
		return nil
	}
	if !inv.Status.CanTransitionTo(next) {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot change invoice from "+string(inv.Status)+" to "+string(next))
	}
	inv.Status = next
	inv.IncrementVersion()
	return nil
}

// IsOverdue reports whether a sent invoice has passed its due date
func (inv *Invoice) IsOverdue(now time.Time) bool {
	return inv.Status == InvoiceStatusSent && now.After(inv.DueDate)
}

// MarkOverdue flips a sent invoice past its due date to overdue and records
// an InvoiceOverdue event. It returns false when nothing changed.
func (inv *Invoice) MarkOverdue(now time.Time) bool {
	if !inv.IsOverdue(now) {
		return false
	}
	inv.Status = InvoiceStatusOverdue
	inv.IncrementVersion()
	inv.AddDomainEvent(NewInvoiceOverdueEvent(inv))
	return true
}

// InvoiceRepository persists invoices with their items
type InvoiceRepository interface {
	shared.OwnedRepository[Invoice]
	// NextNumber returns the next sequential invoice number for the owner
	NextNumber(ctx context.Context, ownerID uuid.UUID) (string, error)
	// FindOverdue returns sent invoices of every owner due before now
	FindOverdue(ctx context.Context, now time.Time) ([]*Invoice, error)
	// SumByStatus totals invoices of the owner grouped by status
	SumByStatus(ctx context.Context, ownerID uuid.UUID) (map[InvoiceStatus]decimal.Decimal, error)
}
