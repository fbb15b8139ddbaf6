package persistence

import (
	"context"
	"time"

	"github.com/bizhub/backend/internal/domain/finance"
	"github.com/bizhub/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormExpenseRepository implements finance.ExpenseRepository using GORM
type GormExpenseRepository struct {
	ownedQueries[finance.Expense, models.ExpenseModel, *models.ExpenseModel]
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{ownedQueries[finance.Expense, models.ExpenseModel, *models.ExpenseModel]{
		db:           db,
		sortFields:   ExpenseSortFields,
		defaultSort:  "expense_date",
		searchFields: []string{"description", "vendor"},
		filters: map[string]string{
			"category": "category = ?",
			"from":     "expense_date >= ?",
			"to":       "expense_date < ?",
		},
	}}
}

// Save inserts or updates an expense
func (r *GormExpenseRepository) Save(ctx context.Context, e *finance.Expense) error {
	return translateError(r.db.WithContext(ctx).Save(models.ExpenseModelFromDomain(e)).Error)
}

// SumBetween totals the owner's expenses dated in [from, to)
func (r *GormExpenseRepository) SumBetween(ctx context.Context, ownerID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.scoped(ctx, ownerID).
		Select("SUM(amount)").
		Where("expense_date >= ? AND expense_date < ?", from, to).
		Row().Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal.Round(2), nil
}

var _ finance.ExpenseRepository = (*GormExpenseRepository)(nil)
