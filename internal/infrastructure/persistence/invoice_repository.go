package persistence

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bizhub/backend/internal/domain/finance"
	"github.com/bizhub/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceNumberPrefix starts every generated invoice number
const InvoiceNumberPrefix = "INV-"

// GormInvoiceRepository implements finance.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	ownedQueries[finance.Invoice, models.InvoiceModel, *models.InvoiceModel]
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{ownedQueries[finance.Invoice, models.InvoiceModel, *models.InvoiceModel]{
		db:           db,
		sortFields:   InvoiceSortFields,
		defaultSort:  "issue_date",
		searchFields: []string{"invoice_number", "notes"},
		filters: map[string]string{
			"status":      "status = ?",
			"customer_id": "customer_id = ?",
		},
		preload: preloadInvoiceItems,
	}}
}

func preloadInvoiceItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

// Save writes the invoice and replaces its items in one transaction
func (r *GormInvoiceRepository) Save(ctx context.Context, inv *finance.Invoice) error {
	m := models.InvoiceModelFromDomain(inv)
	items := m.Items
	m.Items = nil

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(m).Error; err != nil {
			return translateError(err)
		}
		if err := tx.Where("invoice_id = ?", m.ID).Delete(&models.InvoiceItemModel{}).Error; err != nil {
			return err
		}
		for i := range items {
			if items[i].ID == uuid.Nil {
				items[i].ID = uuid.New()
			}
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

// NextNumber returns INV-000001 for a new owner, otherwise one past the
// highest number issued so far
func (r *GormInvoiceRepository) NextNumber(ctx context.Context, ownerID uuid.UUID) (string, error) {
	var numbers []string
	if err := r.scoped(ctx, ownerID).
		Where("invoice_number LIKE ?", InvoiceNumberPrefix+"%").
		Pluck("invoice_number", &numbers).Error; err != nil {
		return "", err
	}
	var highest int64
	for _, n := range numbers {
		seq, err := strconv.ParseInt(strings.TrimPrefix(n, InvoiceNumberPrefix), 10, 64)
		if err == nil && seq > highest {
			highest = seq
		}
	}
	return fmt.Sprintf("%s%06d", InvoiceNumberPrefix, highest+1), nil
}

// FindOverdue returns sent invoices of every owner due before now
func (r *GormInvoiceRepository) FindOverdue(ctx context.Context, now time.Time) ([]*finance.Invoice, error) {
	var rows []models.InvoiceModel
	if err := preloadInvoiceItems(r.db.WithContext(ctx)).
		Where("status = ? AND due_date < ?", string(finance.InvoiceStatusSent), now).
		Order("due_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*finance.Invoice, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

type statusSumRow struct {
	Status string
	Total  decimal.NullDecimal
}

// SumByStatus totals the owner's invoices per status. Statuses with no
// invoices are absent from the map.
func (r *GormInvoiceRepository) SumByStatus(ctx context.Context, ownerID uuid.UUID) (map[finance.InvoiceStatus]decimal.Decimal, error) {
	var rows []statusSumRow
	if err := r.scoped(ctx, ownerID).
		Select("status, SUM(total) AS total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[finance.InvoiceStatus]decimal.Decimal, len(rows))
	for _, row := range rows {
		if row.Total.Valid {
			out[finance.InvoiceStatus(row.Status)] = row.Total.Decimal.Round(2)
		}
	}
	return out, nil
}

var _ finance.InvoiceRepository = (*GormInvoiceRepository)(nil)
