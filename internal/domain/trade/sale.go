package trade

import (
	"context"
	"strings"
	"time"

	"github.com/bizhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const AggregateTypeSale = "Sale"

// PaymentMethod is how a sale or expense was paid
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodPOS      PaymentMethod = "pos"
	PaymentMethodOther    PaymentMethod = "other"
)

// IsValid checks if the method is a known PaymentMethod
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodTransfer, PaymentMethodCard, PaymentMethodPOS, PaymentMethodOther:
		return true
	}
	return false
}

// ParsePaymentMethod parses a payment method. Empty input means cash.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return PaymentMethodCash, nil
	}
	m := PaymentMethod(s)
	if !m.IsValid() {
		return "", shared.NewDomainError("INVALID_PAYMENT_METHOD", "Invalid payment method: "+s)
	}
	return m, nil
}

// Sale records units of one product sold to an optional customer.
// Total is always Quantity x UnitPrice.
type Sale struct {
	shared.OwnedAggregateRoot
	ProductID     uuid.UUID
	CustomerID    *uuid.UUID
	Quantity      int64
	UnitPrice     decimal.Decimal
	Total         decimal.Decimal
	PaymentMethod PaymentMethod
	Notes         string
	SoldAt        time.Time
}

// SaleDetails are the caller-supplied fields of a sale
type SaleDetails struct {
	ProductID     uuid.UUID
	CustomerID    *uuid.UUID
	Quantity      int64
	UnitPrice     decimal.Decimal
	PaymentMethod PaymentMethod
	Notes         string
	SoldAt        time.Time
}

// NewSale creates a sale and records a SaleRecorded event
func NewSale(userID uuid.UUID, d SaleDetails) (*Sale, error) {
	s := &Sale{OwnedAggregateRoot: shared.NewOwnedAggregateRoot(userID)}
	if err := s.apply(d); err != nil {
		return nil, err
	}
	s.AddDomainEvent(NewSaleRecordedEvent(s))
	return s, nil
}

// Update replaces the sale details and returns the change in quantity
// so the caller can move stock by the same amount.
func (s *Sale) Update(d SaleDetails) (int64, error) {
	before := s.Quantity
	if d.ProductID != s.ProductID {
		return 0, shared.NewDomainError("PRODUCT_IMMUTABLE", "The product of a sale cannot be changed")
	}
	if err := s.apply(d); err != nil {
		return 0, err
	}
	s.IncrementVersion()
	return s.Quantity - before, nil
}

func (s *Sale) apply(d SaleDetails) error {
	switch {
	case d.ProductID == uuid.Nil:
		return shared.NewDomainError("INVALID_PRODUCT", "Product is required")
	case d.Quantity <= 0:
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	case d.UnitPrice.IsNegative():
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	method := d.PaymentMethod
	if method == "" {
		method = PaymentMethodCash
	}
	if !method.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_METHOD", "Invalid payment method: "+string(method))
	}
	soldAt := d.SoldAt
	if soldAt.IsZero() {
		soldAt = time.Now()
	}
	s.ProductID = d.ProductID
	s.CustomerID = d.CustomerID
	s.Quantity = d.Quantity
	s.UnitPrice = d.UnitPrice.Round(2)
	s.Total = s.UnitPrice.Mul(decimal.NewFromInt(d.Quantity)).Round(2)
	s.PaymentMethod = method
	s.Notes = d.Notes
	s.SoldAt = soldAt
	return nil
}

// SalesTotals summarises sales in a period
type SalesTotals struct {
	Count   int64
	Units   int64
	Revenue decimal.Decimal
}

// SaleRepository persists sales
type SaleRepository interface {
	shared.OwnedRepository[Sale]
	// Totals sums sales sold in [from, to)
	Totals(ctx context.Context, ownerID uuid.UUID, from, to time.Time) (SalesTotals, error)
	FindRecent(ctx context.Context, ownerID uuid.UUID, limit int) ([]*Sale, error)
}
