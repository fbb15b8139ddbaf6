package models

import (
	"time"

	"github.com/bizhub/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleModel is the persistence model for trade.Sale
type SaleModel struct {
	OwnedModel
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerID    *uuid.UUID      `gorm:"type:uuid;index"`
	Quantity      int64           `gorm:"not null"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Total         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PaymentMethod string          `gorm:"type:varchar(20);not null;default:'cash'"`
	Notes         string          `gorm:"type:text"`
	SoldAt        time.Time       `gorm:"not null;index"`
}

func (SaleModel) TableName() string {
	return "sales"
}

func (m *SaleModel) ToDomain() *trade.Sale {
	return &trade.Sale{
		OwnedAggregateRoot: m.toOwned(),
		ProductID:          m.ProductID,
		CustomerID:         m.CustomerID,
		Quantity:           m.Quantity,
		UnitPrice:          m.UnitPrice,
		Total:              m.Total,
		PaymentMethod:      trade.PaymentMethod(m.PaymentMethod),
		Notes:              m.Notes,
		SoldAt:             m.SoldAt,
	}
}

func (m *SaleModel) FromDomain(s *trade.Sale) {
	m.fromOwned(s.OwnedAggregateRoot)
	m.ProductID = s.ProductID
	m.CustomerID = s.CustomerID
	m.Quantity = s.Quantity
	m.UnitPrice = s.UnitPrice
	m.Total = s.Total
	m.PaymentMethod = string(s.PaymentMethod)
	m.Notes = s.Notes
	m.SoldAt = s.SoldAt
}

func SaleModelFromDomain(s *trade.Sale) *SaleModel {
	m := &SaleModel{}
	m.FromDomain(s)
	return m
}
