package trade

import (
	"github.com/bizhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const EventTypeSaleRecorded = "SaleRecorded"

// SaleRecordedEvent is raised when a new sale is created
type SaleRecordedEvent struct {
	shared.BaseDomainEvent
	SaleID    uuid.UUID       `json:"sale_id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	Total     decimal.Decimal `json:"total"`
}

func NewSaleRecordedEvent(s *Sale) *SaleRecordedEvent {
	return &SaleRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleRecorded, AggregateTypeSale, s.ID, s.UserID),
		SaleID:          s.ID,
		ProductID:       s.ProductID,
		Quantity:        s.Quantity,
		Total:           s.Total,
	}
}
