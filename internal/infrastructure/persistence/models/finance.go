package models

import (
	"time"

	"github.com/bizhub/backend/internal/domain/finance"
	"github.com/bizhub/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for finance.Invoice
type InvoiceModel struct {
	OwnedModel
	CustomerID     *uuid.UUID         `gorm:"type:uuid;index"`
	InvoiceNumber  string             `gorm:"type:varchar(32);not null;index"`
	Status         string             `gorm:"type:varchar(20);not null;default:'draft';index"`
	IssueDate      time.Time          `gorm:"not null"`
	DueDate        time.Time          `gorm:"not null;index"`
	TaxRate        decimal.Decimal    `gorm:"type:decimal(5,2);not null;default:0"`
	DiscountRate   decimal.Decimal    `gorm:"type:decimal(5,2);not null;default:0"`
	Subtotal       decimal.Decimal    `gorm:"type:decimal(18,2);not null;default:0"`
	DiscountAmount decimal.Decimal    `gorm:"type:decimal(18,2);not null;default:0"`
	TaxAmount      decimal.Decimal    `gorm:"type:decimal(18,2);not null;default:0"`
	Total          decimal.Decimal    `gorm:"type:decimal(18,2);not null;default:0"`
	Notes          string             `gorm:"type:text"`
	Items          []InvoiceItemModel `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

func (InvoiceModel) TableName() string {
	return "invoices"
}

// InvoiceItemModel is one line of an invoice
type InvoiceItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position    int             `gorm:"not null;default:0"`
	Description string          `gorm:"type:varchar(500);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

func (m *InvoiceModel) ToDomain() *finance.Invoice {
	inv := &finance.Invoice{
		OwnedAggregateRoot: m.toOwned(),
		CustomerID:         m.CustomerID,
		InvoiceNumber:      m.InvoiceNumber,
		Status:             finance.InvoiceStatus(m.Status),
		IssueDate:          m.IssueDate,
		DueDate:            m.DueDate,
		TaxRate:            m.TaxRate,
		DiscountRate:       m.DiscountRate,
		Subtotal:           m.Subtotal,
		DiscountAmount:     m.DiscountAmount,
		TaxAmount:          m.TaxAmount,
		Total:              m.Total,
		Notes:              m.Notes,
		Items:              make([]finance.InvoiceItem, len(m.Items)),
	}
	for i, it := range m.Items {
		inv.Items[i] = finance.InvoiceItem{
			ID:          it.ID,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Amount:      it.Amount,
		}
	}
	return inv
}

func (m *InvoiceModel) FromDomain(inv *finance.Invoice) {
	m.fromOwned(inv.OwnedAggregateRoot)
	m.CustomerID = inv.CustomerID
	m.InvoiceNumber = inv.InvoiceNumber
	m.Status = string(inv.Status)
	m.IssueDate = inv.IssueDate
	m.DueDate = inv.DueDate
	m.TaxRate = inv.TaxRate
	m.DiscountRate = inv.DiscountRate
	m.Subtotal = inv.Subtotal
	m.DiscountAmount = inv.DiscountAmount
	m.TaxAmount = inv.TaxAmount
	m.Total = inv.Total
	m.Notes = inv.Notes
	m.Items = make([]InvoiceItemModel, len(inv.Items))
	for i, it := range inv.Items {
		m.Items[i] = InvoiceItemModel{
			ID:          it.ID,
			InvoiceID:   inv.ID,
			Position:    i,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Amount:      it.Amount,
		}
	}
}

func InvoiceModelFromDomain(inv *finance.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// ExpenseModel is the persistence model for finance.Expense
type ExpenseModel struct {
	OwnedModel
	Category      string          `gorm:"type:varchar(30);not null;index"`
	Description   string          `gorm:"type:text"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ExpenseDate   time.Time       `gorm:"not null;index"`
	PaymentMethod string          `gorm:"type:varchar(20);not null;default:'cash'"`
	Vendor        string          `gorm:"type:varchar(200)"`
}

func (ExpenseModel) TableName() string {
	return "expenses"
}

func (m *ExpenseModel) ToDomain() *finance.Expense {
	return &finance.Expense{
		OwnedAggregateRoot: m.toOwned(),
		Category:           finance.ExpenseCategory(m.Category),
		Description:        m.Description,
		Amount:             m.Amount,
		ExpenseDate:        m.ExpenseDate,
		PaymentMethod:      trade.PaymentMethod(m.PaymentMethod),
		Vendor:             m.Vendor,
	}
}

func (m *ExpenseModel) FromDomain(e *finance.Expense) {
	m.fromOwned(e.OwnedAggregateRoot)
	m.Category = string(e.Category)
	m.Description = e.Description
	m.Amount = e.Amount
	m.ExpenseDate = e.ExpenseDate
	m.PaymentMethod = string(e.PaymentMethod)
	m.Vendor = e.Vendor
}

func ExpenseModelFromDomain(e *finance.Expense) *ExpenseModel {
	m := &ExpenseModel{}
	m.FromDomain(e)
	return m
}
