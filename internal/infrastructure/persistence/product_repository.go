package persistence

import (
	"context"
	"strings"

	"github.com/bizhub/backend/internal/domain/catalog"
	"github.com/bizhub/backend/internal/domain/shared"
	"github.com/bizhub/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	ownedQueries[catalog.Product, models.ProductModel, *models.ProductModel]
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{ownedQueries[catalog.Product, models.ProductModel, *models.ProductModel]{
		db:           db,
		sortFields:   ProductSortFields,
		defaultSort:  "created_at",
		searchFields: []string{"name", "sku", "category"},
		filters: map[string]string{
			"category":  "category = ?",
			"low_stock": "(quantity <= low_stock_threshold) = ?",
		},
	}}
}

// Save inserts a new product or updates an existing one with optimistic
// locking. Every mutation bumps Version by one, so the stored row must still
// carry Version-1; otherwise another writer got there first and the update
// fails with shared.ErrConcurrencyConflict.
func (r *GormProductRepository) Save(ctx context.Context, p *catalog.Product) error {
	m := models.ProductModelFromDomain(p)
	if p.Version <= 1 {
		return translateError(r.db.WithContext(ctx).Create(m).Error)
	}

	result := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("id = ? AND user_id = ? AND version = ?", p.ID, p.UserID, p.Version-1).
		Updates(map[string]any{
			"name":                m.Name,
			"sku":                 m.SKU,
			"description":         m.Description,
			"category":            m.Category,
			"price":               m.Price,
			"cost":                m.Cost,
			"quantity":            m.Quantity,
			"low_stock_threshold": m.LowStockThreshold,
			"version":             m.Version,
			"updated_at":          m.UpdatedAt,
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// FindLowStock returns the owner's products at or below their threshold
func (r *GormProductRepository) FindLowStock(ctx context.Context, ownerID uuid.UUID) ([]*catalog.Product, error) {
	var rows []models.ProductModel
	if err := r.scoped(ctx, ownerID).
		Where("quantity <= low_stock_threshold").
		Order("quantity ASC").Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*catalog.Product, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// ExistsBySKU reports whether another of the owner's products uses sku
func (r *GormProductRepository) ExistsBySKU(ctx context.Context, ownerID uuid.UUID, sku string, excludeID uuid.UUID) (bool, error) {
	sku = strings.ToUpper(strings.TrimSpace(sku))
	if sku == "" {
		return false, nil
	}
	query := r.scoped(ctx, ownerID).Where("sku = ?", sku)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	var n int64
	err := query.Count(&n).Error
	return n > 0, err
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)
