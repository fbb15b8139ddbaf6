package finance

import (
	"time"

	"github.com/bizhub/backend/internal/domain/finance"
	"github.com/bizhub/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceItemRequest is one line of an invoice request
type InvoiceItemRequest struct {
	Description string          `json:"description" binding:"required,max=500"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// CreateInvoiceRequest creates a draft invoice. The number is assigned.
type CreateInvoiceRequest struct {
	CustomerID   *uuid.UUID           `json:"customer_id"`
	IssueDate    *time.Time           `json:"issue_date"`
	DueDate      *time.Time           `json:"due_date"`
	TaxRate      decimal.Decimal      `json:"tax_rate"`
	DiscountRate decimal.Decimal      `json:"discount_rate"`
	Items        []InvoiceItemRequest `json:"items" binding:"required,min=1,dive"`
	Notes        string               `json:"notes" binding:"max=2000"`
}

// UpdateInvoiceRequest replaces the contents of a draft invoice
type UpdateInvoiceRequest = CreateInvoiceRequest

func (r CreateInvoiceRequest) details() finance.InvoiceDetails {
	d := finance.InvoiceDetails{
		CustomerID:   r.CustomerID,
		TaxRate:      r.TaxRate,
		DiscountRate: r.DiscountRate,
		Notes:        r.Notes,
		Items:        make([]finance.InvoiceItemInput, len(r.Items)),
	}
	if r.IssueDate != nil {
		d.IssueDate = *r.IssueDate
	}
	if r.DueDate != nil {
		d.DueDate = *r.DueDate
	}
	for i, it := range r.Items {
		d.Items[i] = finance.InvoiceItemInput{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		}
	}
	return d
}

// ChangeInvoiceStatusRequest moves an invoice through its lifecycle
type ChangeInvoiceStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=draft sent paid overdue cancelled"`
}

// InvoiceListFilter holds list query parameters
type InvoiceListFilter struct {
	Search     string     `form:"search"`
	Status     string     `form:"status" binding:"omitempty,oneof=draft sent paid overdue cancelled"`
	CustomerID *uuid.UUID `form:"customer_id"`
	Page       int        `form:"page" binding:"min=0"`
	PageSize   int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// InvoiceItemResponse is one invoice line in API responses
type InvoiceItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID             uuid.UUID             `json:"id"`
	InvoiceNumber  string                `json:"invoice_number"`
	CustomerID     *uuid.UUID            `json:"customer_id,omitempty"`
	Status         string                `json:"status"`
	IssueDate      time.Time             `json:"issue_date"`
	DueDate        time.Time             `json:"due_date"`
	TaxRate        decimal.Decimal       `json:"tax_rate"`
	DiscountRate   decimal.Decimal       `json:"discount_rate"`
	Items          []InvoiceItemResponse `json:"items"`
	Subtotal       decimal.Decimal       `json:"subtotal"`
	DiscountAmount decimal.Decimal       `json:"discount_amount"`
	TaxAmount      decimal.Decimal       `json:"tax_amount"`
	Total          decimal.Decimal       `json:"total"`
	Notes          string                `json:"notes"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
	Version        int                   `json:"version"`
}

// ToInvoiceResponse converts a domain invoice to a response DTO
func ToInvoiceResponse(inv *finance.Invoice) InvoiceResponse {
	items := make([]InvoiceItemResponse, len(inv.Items))
	for i, it := range inv.Items {
		items[i] = InvoiceItemResponse{
			ID:          it.ID,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Amount:      it.Amount,
		}
	}
	return InvoiceResponse{
		ID:             inv.ID,
		InvoiceNumber:  inv.InvoiceNumber,
		CustomerID:     inv.CustomerID,
		Status:         string(inv.Status),
		IssueDate:      inv.IssueDate,
		DueDate:        inv.DueDate,
		TaxRate:        inv.TaxRate,
		DiscountRate:   inv.DiscountRate,
		Items:          items,
		Subtotal:       inv.Subtotal,
		DiscountAmount: inv.DiscountAmount,
		TaxAmount:      inv.TaxAmount,
		Total:          inv.Total,
		Notes:          inv.Notes,
		CreatedAt:      inv.CreatedAt,
		UpdatedAt:      inv.UpdatedAt,
		Version:        inv.Version,
	}
}

// CreateExpenseRequest records an expense
type CreateExpenseRequest struct {
	Category      string          `json:"category" binding:"omitempty,oneof=rent utilities salaries inventory marketing transport other"`
	Description   string          `json:"description" binding:"max=500"`
	Amount        decimal.Decimal `json:"amount"`
	ExpenseDate   *time.Time      `json:"expense_date"`
	PaymentMethod string          `json:"payment_method" binding:"omitempty,oneof=cash transfer card pos other"`
	Vendor        string          `json:"vendor" binding:"max=200"`
}

// UpdateExpenseRequest replaces an expense's details
type UpdateExpenseRequest = CreateExpenseRequest

func (r CreateExpenseRequest) details() finance.ExpenseDetails {
	d := finance.ExpenseDetails{
		Category:      finance.ExpenseCategory(r.Category),
		Description:   r.Description,
		Amount:        r.Amount,
		PaymentMethod: trade.PaymentMethod(r.PaymentMethod),
		Vendor:        r.Vendor,
	}
	if r.ExpenseDate != nil {
		d.ExpenseDate = *r.ExpenseDate
	}
	return d
}

// ExpenseListFilter holds list query parameters
type ExpenseListFilter struct {
	Search   string     `form:"search"`
	Category string     `form:"category"`
	From     *time.Time `form:"from" time_format:"2006-01-02"`
	To       *time.Time `form:"to" time_format:"2006-01-02"`
	Page     int        `form:"page" binding:"min=0"`
	PageSize int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string     `form:"order_by"`
	OrderDir string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ExpenseResponse represents an expense in API responses
type ExpenseResponse struct {
	ID            uuid.UUID       `json:"id"`
	Category      string          `json:"category"`
	CategoryName  string          `json:"category_name"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	ExpenseDate   time.Time       `json:"expense_date"`
	PaymentMethod string          `json:"payment_method"`
	Vendor        string          `json:"vendor"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Version       int             `json:"version"`
}

// ToExpenseResponse converts a domain expense to a response DTO
func ToExpenseResponse(e *finance.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:            e.ID,
		Category:      string(e.Category),
		CategoryName:  e.Category.DisplayName(),
		Description:   e.Description,
		Amount:        e.Amount,
		ExpenseDate:   e.ExpenseDate,
		PaymentMethod: string(e.PaymentMethod),
		Vendor:        e.Vendor,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
		Version:       e.Version,
	}
}
