package models

import (
	"github.com/bizhub/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for catalog.Product
type ProductModel struct {
	OwnedModel
	Name              string          `gorm:"type:varchar(200);not null"`
	SKU               string          `gorm:"column:sku;type:varchar(64);index"`
	Description       string          `gorm:"type:text"`
	Category          string          `gorm:"type:varchar(100);index"`
	Price             decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Cost              decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Quantity          int64           `gorm:"not null;default:0"`
	LowStockThreshold int64           `gorm:"not null"`
}

func (ProductModel) TableName() string {
	return "products"
}

func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		OwnedAggregateRoot: m.toOwned(),
		Name:               m.Name,
		SKU:                m.SKU,
		Description:        m.Description,
		Category:           m.Category,
		Price:              m.Price,
		Cost:               m.Cost,
		Quantity:           m.Quantity,
		LowStockThreshold:  m.LowStockThreshold,
	}
}

func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.fromOwned(p.OwnedAggregateRoot)
	m.Name = p.Name
	m.SKU = p.SKU
	m.Description = p.Description
	m.Category = p.Category
	m.Price = p.Price
	m.Cost = p.Cost
	m.Quantity = p.Quantity
	m.LowStockThreshold = p.LowStockThreshold
}

func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}
