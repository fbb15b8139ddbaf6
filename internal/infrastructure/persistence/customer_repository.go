package persistence

import (
	"context"

	"github.com/bizhub/backend/internal/domain/partner"
	"github.com/bizhub/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCustomerRepository implements partner.CustomerRepository using GORM
type GormCustomerRepository struct {
	ownedQueries[partner.Customer, models.CustomerModel, *models.CustomerModel]
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{ownedQueries[partner.Customer, models.CustomerModel, *models.CustomerModel]{
		db:           db,
		sortFields:   CustomerSortFields,
		defaultSort:  "created_at",
		searchFields: []string{"name", "email", "phone"},
	}}
}

// Save inserts or updates a customer
func (r *GormCustomerRepository) Save(ctx context.Context, c *partner.Customer) error {
	return translateError(r.db.WithContext(ctx).Save(models.CustomerModelFromDomain(c)).Error)
}

// ExistsForOwner reports whether the owner has a customer with this ID
func (r *GormCustomerRepository) ExistsForOwner(ctx context.Context, ownerID, id uuid.UUID) (bool, error) {
	var n int64
	err := r.scoped(ctx, ownerID).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

var _ partner.CustomerRepository = (*GormCustomerRepository)(nil)
