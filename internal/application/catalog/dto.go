package catalog

import (
	"time"

	"github.com/bizhub/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	Name              string          `json:"name" binding:"required,min=1,max=200"`
	SKU               string          `json:"sku" binding:"max=64"`
	Description       string          `json:"description" binding:"max=2000"`
	Category          string          `json:"category" binding:"max=100"`
	Price             decimal.Decimal `json:"price"`
	Cost              decimal.Decimal `json:"cost"`
	Quantity          int64           `json:"quantity" binding:"min=0"`
	LowStockThreshold *int64          `json:"low_stock_threshold" binding:"omitempty,min=0"`
}

// UpdateProductRequest replaces the catalog fields of a product. A quantity,
// when given, becomes the new stock level.
type UpdateProductRequest struct {
	Name              string          `json:"name" binding:"required,min=1,max=200"`
	SKU               string          `json:"sku" binding:"max=64"`
	Description       string          `json:"description" binding:"max=2000"`
	Category          string          `json:"category" binding:"max=100"`
	Price             decimal.Decimal `json:"price"`
	Cost              decimal.Decimal `json:"cost"`
	Quantity          *int64          `json:"quantity" binding:"omitempty,min=0"`
	LowStockThreshold *int64          `json:"low_stock_threshold" binding:"omitempty,min=0"`
}

func (r CreateProductRequest) details() catalog.ProductDetails {
	return catalog.ProductDetails{
		Name:              r.Name,
		SKU:               r.SKU,
		Description:       r.Description,
		Category:          r.Category,
		Price:             r.Price,
		Cost:              r.Cost,
		LowStockThreshold: r.LowStockThreshold,
	}
}

func (r UpdateProductRequest) details() catalog.ProductDetails {
	return catalog.ProductDetails{
		Name:              r.Name,
		SKU:               r.SKU,
		Description:       r.Description,
		Category:          r.Category,
		Price:             r.Price,
		Cost:              r.Cost,
		LowStockThreshold: r.LowStockThreshold,
	}
}

// ProductListFilter holds list query parameters
type ProductListFilter struct {
	Search   string `form:"search"`
	Category string `form:"category"`
	LowStock *bool  `form:"low_stock"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"name"`
	SKU               string          `json:"sku"`
	Description       string          `json:"description"`
	Category          string          `json:"category"`
	Price             decimal.Decimal `json:"price"`
	Cost              decimal.Decimal `json:"cost"`
	Margin            decimal.Decimal `json:"margin"`
	Quantity          int64           `json:"quantity"`
	LowStockThreshold int64           `json:"low_stock_threshold"`
	LowStock          bool            `json:"low_stock"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Version           int             `json:"version"`
}

// ToProductResponse converts a domain product to a response DTO
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:                p.ID,
		Name:              p.Name,
		SKU:               p.SKU,
		Description:       p.Description,
		Category:          p.Category,
		Price:             p.Price,
		Cost:              p.Cost,
		Margin:            p.Margin(),
		Quantity:          p.Quantity,
		LowStockThreshold: p.LowStockThreshold,
		LowStock:          p.IsLowStock(),
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
		Version:           p.Version,
	}
}

func toProductResponses(products []*catalog.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i, p := range products {
		out[i] = ToProductResponse(p)
	}
	return out
}
