package report

import (
	"context"
	"fmt"
	"time"

	appbilling "github.com/bizhub/backend/internal/application/billing"
	apptrade "github.com/bizhub/backend/internal/application/trade"
	"github.com/bizhub/backend/internal/domain/catalog"
	"github.com/bizhub/backend/internal/domain/finance"
	"github.com/bizhub/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	recentSalesLimit = 5
	lowStockLimit    = 10
)

// UsageReporter reports plan usage for the dashboard
type UsageReporter interface {
	Report(ctx context.Context, userID uuid.UUID) (*appbilling.UsageReportResponse, error)
}

// DashboardService assembles the dashboard summary from every module
type DashboardService struct {
	saleRepo    trade.SaleRepository
	expenseRepo finance.ExpenseRepository
	invoiceRepo finance.InvoiceRepository
	productRepo catalog.ProductRepository
	usage       UsageReporter
	logger      *zap.Logger
	location    *time.Location
	now         func() time.Time
}

// NewDashboardService creates a new DashboardService. Day and month
// boundaries are computed in loc; nil means UTC.
func NewDashboardService(
	saleRepo trade.SaleRepository,
	expenseRepo finance.ExpenseRepository,
	invoiceRepo finance.InvoiceRepository,
	productRepo catalog.ProductRepository,
	usage UsageReporter,
	loc *time.Location,
	logger *zap.Logger,
) *DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardService{
		saleRepo:    saleRepo,
		expenseRepo: expenseRepo,
		invoiceRepo: invoiceRepo,
		productRepo: productRepo,
		usage:       usage,
		logger:      logger,
		location:    loc,
		now:         time.Now,
	}
}

// Summary runs every dashboard query concurrently. Any failing query fails
// the whole summary.
func (s *DashboardService) Summary(ctx context.Context, userID uuid.UUID) (*SummaryResponse, error) {
	now := s.now().In(s.location)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
	dayEnd := dayStart.AddDate(0, 0, 1)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.location)
	monthEnd := monthStart.AddDate(0, 1, 0)

	var (
		today, month  trade.SalesTotals
		monthExpenses decimal.Decimal
		byStatus      map[finance.InvoiceStatus]decimal.Decimal
		lowStock      []*catalog.Product
		recent        []*trade.Sale
		usage         *appbilling.UsageReportResponse
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		today, err = s.saleRepo.Totals(gctx, userID, dayStart, dayEnd)
		return wrap("sales today", err)
	})
	g.Go(func() (err error) {
		month, err = s.saleRepo.Totals(gctx, userID, monthStart, monthEnd)
		return wrap("sales this month", err)
	})
	g.Go(func() (err error) {
		monthExpenses, err = s.expenseRepo.SumBetween(gctx, userID, monthStart, monthEnd)
		return wrap("expenses this month", err)
	})
	g.Go(func() (err error) {
		byStatus, err = s.invoiceRepo.SumByStatus(gctx, userID)
		return wrap("invoice totals", err)
	})
	g.Go(func() (err error) {
		lowStock, err = s.productRepo.FindLowStock(gctx, userID)
		return wrap("low stock", err)
	})
	g.Go(func() (err error) {
		recent, err = s.saleRepo.FindRecent(gctx, userID, recentSalesLimit)
		return wrap("recent sales", err)
	})
	if s.usage != nil {
		g.Go(func() (err error) {
			usage, err = s.usage.Report(gctx, userID)
			return wrap("usage", err)
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("Failed to build dashboard summary",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return nil, err
	}

	resp := &SummaryResponse{
		GeneratedAt: now,
		Today:       toSalesPeriod(dayStart, dayEnd, today),
		Month:       toSalesPeriod(monthStart, monthEnd, month),
		Expenses:    monthExpenses,
		NetIncome:   month.Revenue.Sub(monthExpenses),
		Invoices:    toInvoiceSummary(byStatus),
		LowStock: LowStockSummary{
			Count: len(lowStock),
			Items: make([]LowStockItem, 0, min(len(lowStock), lowStockLimit)),
		},
		RecentSales: make([]apptrade.SaleResponse, len(recent)),
		Usage:       usage,
	}
	for i, p := range lowStock {
		if i == lowStockLimit {
			break
		}
		resp.LowStock.Items = append(resp.LowStock.Items, LowStockItem{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  p.Quantity,
			Threshold: p.LowStockThreshold,
		})
	}
	for i, sale := range recent {
		resp.RecentSales[i] = apptrade.ToSaleResponse(sale)
	}
	return resp, nil
}

func wrap(what string, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}
