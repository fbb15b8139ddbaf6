package persistence

import (
	"context"
	"time"

	"github.com/bizhub/backend/internal/domain/trade"
	"github.com/bizhub/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormSaleRepository implements trade.SaleRepository using GORM
type GormSaleRepository struct {
	ownedQueries[trade.Sale, models.SaleModel, *models.SaleModel]
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{ownedQueries[trade.Sale, models.SaleModel, *models.SaleModel]{
		db:           db,
		sortFields:   SaleSortFields,
		defaultSort:  "sold_at",
		searchFields: []string{"notes"},
		filters: map[string]string{
			"product_id":     "product_id = ?",
			"customer_id":    "customer_id = ?",
			"payment_method": "payment_method = ?",
			"from":           "sold_at >= ?",
			"to":             "sold_at < ?",
		},
	}}
}

// Save inserts or updates a sale
func (r *GormSaleRepository) Save(ctx context.Context, s *trade.Sale) error {
	return translateError(r.db.WithContext(ctx).Save(models.SaleModelFromDomain(s)).Error)
}

type saleTotalsRow struct {
	Count   int64
	Units   int64
	Revenue decimal.NullDecimal
}

// Totals sums the owner's sales sold in [from, to)
func (r *GormSaleRepository) Totals(ctx context.Context, ownerID uuid.UUID, from, to time.Time) (trade.SalesTotals, error) {
	var row saleTotalsRow
	err := r.scoped(ctx, ownerID).
		Select("COUNT(*) AS count, COALESCE(SUM(quantity), 0) AS units, SUM(total) AS revenue").
		Where("sold_at >= ? AND sold_at < ?", from, to).
		Scan(&row).Error
	if err != nil {
		return trade.SalesTotals{}, err
	}
	revenue := decimal.Zero
	if row.Revenue.Valid {
		revenue = row.Revenue.Decimal
	}
	return trade.SalesTotals{Count: row.Count, Units: row.Units, Revenue: revenue.Round(2)}, nil
}

// FindRecent returns the owner's latest sales, newest first
func (r *GormSaleRepository) FindRecent(ctx context.Context, ownerID uuid.UUID, limit int) ([]*trade.Sale, error) {
	var rows []models.SaleModel
	if err := r.scoped(ctx, ownerID).Order("sold_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*trade.Sale, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

var _ trade.SaleRepository = (*GormSaleRepository)(nil)
