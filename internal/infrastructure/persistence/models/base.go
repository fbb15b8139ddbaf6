package models

import (
	"time"

	"github.com/bizhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel provides common persistence fields for all models
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (m *BaseModel) toEntity() shared.BaseEntity {
	return shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}
}

func (m *BaseModel) fromEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// AggregateModel adds the optimistic-lock version
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

func (m *AggregateModel) toAggregate() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{BaseEntity: m.toEntity(), Version: m.Version}
}

func (m *AggregateModel) fromAggregate(a shared.BaseAggregateRoot) {
	m.fromEntity(a.BaseEntity)
	m.Version = a.Version
}

// OwnedModel is the base of every row that belongs to one account
type OwnedModel struct {
	AggregateModel
	UserID uuid.UUID `gorm:"type:uuid;not null;index"`
}

func (m *OwnedModel) toOwned() shared.OwnedAggregateRoot {
	return shared.OwnedAggregateRoot{BaseAggregateRoot: m.toAggregate(), UserID: m.UserID}
}

func (m *OwnedModel) fromOwned(o shared.OwnedAggregateRoot) {
	m.fromAggregate(o.BaseAggregateRoot)
	m.UserID = o.UserID
}

// All lists every model, in dependency order, for AutoMigrate in tests
func All() []any {
	return []any{
		&UserModel{},
		&VerificationTokenModel{},
		&NotificationPreferenceModel{},
		&CustomerModel{},
		&ProductModel{},
		&SaleModel{},
		&InvoiceModel{},
		&InvoiceItemModel{},
		&ExpenseModel{},
	}
}
