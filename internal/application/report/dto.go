package report

import (
	"time"

	appbilling "github.com/bizhub/backend/internal/application/billing"
	apptrade "github.com/bizhub/backend/internal/application/trade"
	"github.com/bizhub/backend/internal/domain/finance"
	"github.com/bizhub/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SummaryResponse is the dashboard summary
type SummaryResponse struct {
	GeneratedAt time.Time                       `json:"generated_at"`
	Today       SalesPeriod                     `json:"today"`
	Month       SalesPeriod                     `json:"month"`
	Expenses    decimal.Decimal                 `json:"month_expenses"`
	NetIncome   decimal.Decimal                 `json:"month_net_income"`
	Invoices    InvoiceSummary                  `json:"invoices"`
	LowStock    LowStockSummary                 `json:"low_stock"`
	RecentSales []apptrade.SaleResponse         `json:"recent_sales"`
	Usage       *appbilling.UsageReportResponse `json:"usage,omitempty"`
}

// SalesPeriod totals sales sold in [From, To)
type SalesPeriod struct {
	From        time.Time       `json:"from"`
	To          time.Time       `json:"to"`
	Count       int64           `json:"count"`
	Units       int64           `json:"units"`
	Revenue     decimal.Decimal `json:"revenue"`
	AverageSale decimal.Decimal `json:"average_sale"`
}

// InvoiceSummary totals invoices by state. Outstanding is sent plus overdue.
type InvoiceSummary struct {
	Draft       decimal.Decimal `json:"draft"`
	Outstanding decimal.Decimal `json:"outstanding"`
	Overdue     decimal.Decimal `json:"overdue"`
	Paid        decimal.Decimal `json:"paid"`
}

// LowStockSummary counts every low stock product and lists the first few
type LowStockSummary struct {
	Count int            `json:"count"`
	Items []LowStockItem `json:"items"`
}

type LowStockItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Quantity  int64     `json:"quantity"`
	Threshold int64     `json:"threshold"`
}

func toSalesPeriod(from, to time.Time, t trade.SalesTotals) SalesPeriod {
	p := SalesPeriod{
		From:        from,
		To:          to,
		Count:       t.Count,
		Units:       t.Units,
		Revenue:     t.Revenue,
		AverageSale: decimal.Zero,
	}
	if t.Count > 0 {
		p.AverageSale = t.Revenue.Div(decimal.NewFromInt(t.Count)).Round(2)
	}
	return p
}

func toInvoiceSummary(byStatus map[finance.InvoiceStatus]decimal.Decimal) InvoiceSummary {
	get := func(s finance.InvoiceStatus) decimal.Decimal {
		if v, ok := byStatus[s]; ok {
			return v
		}
		return decimal.Zero
	}
	overdue := get(finance.InvoiceStatusOverdue)
	return InvoiceSummary{
		Draft:       get(finance.InvoiceStatusDraft),
		Outstanding: get(finance.InvoiceStatusSent).Add(overdue),
		Overdue:     overdue,
		Paid:        get(finance.InvoiceStatusPaid),
	}
}
