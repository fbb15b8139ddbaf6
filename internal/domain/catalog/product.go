package catalog

import (
	"context"
	"strings"

	"github.com/bizhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const AggregateTypeProduct = "Product"

// DefaultLowStockThreshold applies when a product is created without one
const DefaultLowStockThreshold int64 = 5

// Product is a stock-keeping item. Quantity never goes negative.
type Product struct {
	shared.OwnedAggregateRoot
	Name              string
	SKU               string
	Description       string
	Category          string
	Price             decimal.Decimal
	Cost              decimal.Decimal
	Quantity          int64
	LowStockThreshold int64
}

// ProductDetails are the editable catalog fields of a product
type ProductDetails struct {
	Name              string
	SKU               string
	Description       string
	Category          string
	Price             decimal.Decimal
	Cost              decimal.Decimal
	LowStockThreshold *int64
}

// NewProduct creates a product with an opening stock quantity
func NewProduct(userID uuid.UUID, d ProductDetails, quantity int64) (*Product, error) {
	if quantity < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	p := &Product{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(userID),
		Quantity:           quantity,
		LowStockThreshold:  DefaultLowStockThreshold,
	}
	if err := p.apply(d); err != nil {
		return nil, err
	}
	return p, nil
}

// Update replaces the catalog fields. Stock only moves through AdjustStock.
func (p *Product) Update(d ProductDetails) error {
	if err := p.apply(d); err != nil {
		return err
	}
	p.IncrementVersion()
	return nil
}

// UpdateWithStock replaces the catalog fields and sets the stock on hand as
// a single change, so the version moves once
func (p *Product) UpdateWithStock(d ProductDetails, quantity int64) error {
	if quantity < 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	if err := p.apply(d); err != nil {
		return err
	}
	removed := quantity < p.Quantity
	p.Quantity = quantity
	p.IncrementVersion()
	if removed && p.IsLowStock() {
		p.AddDomainEvent(NewProductLowStockEvent(p))
	}
	return nil
}

func (p *Product) apply(d ProductDetails) error {
	name := strings.TrimSpace(d.Name)
	switch {
	case name == "":
		return shared.NewDomainError("INVALID_NAME", "Product name is required")
	case len(name) > 200:
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	case d.Price.IsNegative():
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	case d.Cost.IsNegative():
		return shared.NewDomainError("INVALID_COST", "Cost cannot be negative")
	case d.LowStockThreshold != nil && *d.LowStockThreshold < 0:
		return shared.NewDomainError("INVALID_THRESHOLD", "Low stock threshold cannot be negative")
	}
	p.Name = name
	p.SKU = strings.ToUpper(strings.TrimSpace(d.SKU))
	p.Description = d.Description
	p.Category = strings.TrimSpace(d.Category)
	p.Price = d.Price.Round(2)
	p.Cost = d.Cost.Round(2)
	if d.LowStockThreshold != nil {
		p.LowStockThreshold = *d.LowStockThreshold
	}
	return nil
}

// IsLowStock reports whether quantity is at or below the threshold
func (p *Product) IsLowStock() bool {
	return p.Quantity <= p.LowStockThreshold
}

// AdjustStock adds delta (negative to remove). Removing more than is on hand
// fails with ErrInsufficientStock. A removal that leaves the product low on
// stock records a ProductLowStock event.
func (p *Product) AdjustStock(delta int64) error {
	if delta == 0 {
		return nil
	}
	if p.Quantity+delta < 0 {
		return shared.NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock for "+p.Name)
	}
	p.Quantity += delta
	p.IncrementVersion()
	if delta < 0 && p.IsLowStock() {
		p.AddDomainEvent(NewProductLowStockEvent(p))
	}
	return nil
}

// Margin is price minus cost per unit
func (p *Product) Margin() decimal.Decimal {
	return p.Price.Sub(p.Cost)
}

// ProductRepository persists products
type ProductRepository interface {
	shared.OwnedRepository[Product]
	FindLowStock(ctx context.Context, ownerID uuid.UUID) ([]*Product, error)
	ExistsBySKU(ctx context.Context, ownerID uuid.UUID, sku string, excludeID uuid.UUID) (bool, error)
}
