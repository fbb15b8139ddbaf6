package catalog

import (
	"github.com/bizhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const EventTypeProductLowStock = "ProductLowStock"

// ProductLowStockEvent is recorded whenever stock is removed from a product
// that ends at or below its threshold
type ProductLowStockEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Quantity  int64     `json:"quantity"`
	Threshold int64     `json:"threshold"`
}

func NewProductLowStockEvent(p *Product) *ProductLowStockEvent {
	return &ProductLowStockEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductLowStock, AggregateTypeProduct, p.ID, p.UserID),
		ProductID:       p.ID,
		Name:            p.Name,
		Quantity:        p.Quantity,
		Threshold:       p.LowStockThreshold,
	}
}
