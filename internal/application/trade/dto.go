package trade

import (
	"time"

	"github.com/bizhub/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateSaleRequest records a sale. UnitPrice defaults to the product price.
type CreateSaleRequest struct {
	ProductID     uuid.UUID        `json:"product_id" binding:"required"`
	CustomerID    *uuid.UUID       `json:"customer_id"`
	Quantity      int64            `json:"quantity" binding:"required,min=1"`
	UnitPrice     *decimal.Decimal `json:"unit_price"`
	PaymentMethod string           `json:"payment_method" binding:"omitempty,oneof=cash transfer card pos other"`
	Notes         string           `json:"notes" binding:"max=2000"`
	SoldAt        *time.Time       `json:"sold_at"`
}

// UpdateSaleRequest replaces a sale's details. The product cannot change.
type UpdateSaleRequest struct {
	CustomerID    *uuid.UUID       `json:"customer_id"`
	Quantity      int64            `json:"quantity" binding:"required,min=1"`
	UnitPrice     *decimal.Decimal `json:"unit_price"`
	PaymentMethod string           `json:"payment_method" binding:"omitempty,oneof=cash transfer card pos other"`
	Notes         string           `json:"notes" binding:"max=2000"`
	SoldAt        *time.Time       `json:"sold_at"`
}

// SaleListFilter holds list query parameters
type SaleListFilter struct {
	Search        string     `form:"search"`
	ProductID     *uuid.UUID `form:"product_id"`
	CustomerID    *uuid.UUID `form:"customer_id"`
	PaymentMethod string     `form:"payment_method"`
	From          *time.Time `form:"from" time_format:"2006-01-02"`
	To            *time.Time `form:"to" time_format:"2006-01-02"`
	Page          int        `form:"page" binding:"min=0"`
	PageSize      int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy       string     `form:"order_by"`
	OrderDir      string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID            uuid.UUID       `json:"id"`
	ProductID     uuid.UUID       `json:"product_id"`
	CustomerID    *uuid.UUID      `json:"customer_id,omitempty"`
	Quantity      int64           `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method"`
	Notes         string          `json:"notes"`
	SoldAt        time.Time       `json:"sold_at"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Version       int             `json:"version"`
}

// ToSaleResponse converts a domain sale to a response DTO
func ToSaleResponse(s *trade.Sale) SaleResponse {
	return SaleResponse{
		ID:            s.ID,
		ProductID:     s.ProductID,
		CustomerID:    s.CustomerID,
		Quantity:      s.Quantity,
		UnitPrice:     s.UnitPrice,
		Total:         s.Total,
		PaymentMethod: string(s.PaymentMethod),
		Notes:         s.Notes,
		SoldAt:        s.SoldAt,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
		Version:       s.Version,
	}
}
