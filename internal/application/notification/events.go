package notification

import (
	"context"

	"github.com/bizhub/backend/internal/domain/billing"
	"github.com/bizhub/backend/internal/domain/catalog"
	"github.com/bizhub/backend/internal/domain/finance"
	"github.com/bizhub/backend/internal/domain/notification"
	"github.com/bizhub/backend/internal/domain/shared"
	"github.com/bizhub/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// EventTypes lists the domain events that become toasts
func (c *Center) EventTypes() []string {
	return []string{
		catalog.EventTypeProductLowStock,
		billing.EventTypeUsageThresholdReached,
		finance.EventTypeInvoiceOverdue,
		trade.EventTypeSaleRecorded,
	}
}

// Handle turns a domain event into a toast for its owner
func (c *Center) Handle(ctx context.Context, event shared.DomainEvent) error {
	in, ok := c.toastFor(event)
	if !ok {
		return nil
	}
	pushed, err := c.Notify(ctx, event.OwnerID(), in)
	if err != nil {
		return err
	}
	if pushed {
		c.logger.Debug("Toast raised from event",
			zap.String("event_type", event.EventType()),
			zap.String("user_id", event.OwnerID().String()))
	}
	return nil
}

func (c *Center) toastFor(event shared.DomainEvent) (notification.ToastInput, bool) {
	p := c.printer
	switch e := event.(type) {
	case *catalog.ProductLowStockEvent:
		msg := p.Sprintf("%s is running low: %d left", e.Name, e.Quantity)
		if e.Quantity == 0 {
			msg = p.Sprintf("%s is out of stock", e.Name)
		}
		return notification.ToastInput{
			Type:     notification.ToastWarning,
			Category: notification.CategoryLowStock,
			Title:    "Low stock",
			Message:  msg,
		}, true

	case *billing.UsageThresholdReachedEvent:
		u := e.Usage
		msg := p.Sprintf("You have used %d of %d %s on the %s plan", u.Current, u.Limit, u.Resource, e.Plan)
		if u.Status == billing.UsageExceeded {
			msg = p.Sprintf("You have reached the limit of %d %s on the %s plan. Upgrade to add more",
				u.Limit, u.Resource, e.Plan)
		}
		return notification.ToastInput{
			Type:     notification.ToastWarning,
			Category: notification.CategoryUsageLimit,
			Title:    "Plan usage",
			Message:  msg,
		}, true

	case *finance.InvoiceOverdueEvent:
		return notification.ToastInput{
			Type:     notification.ToastWarning,
			Category: notification.CategoryInvoiceOverdue,
			Title:    "Invoice overdue",
			Message:  p.Sprintf("Invoice %s for %s is overdue", e.InvoiceNumber, c.money(e.Total)),
		}, true

	case *trade.SaleRecordedEvent:
		return notification.ToastInput{
			Type:     notification.ToastSuccess,
			Category: notification.CategorySaleRecorded,
			Message:  p.Sprintf("Sale recorded: %d units for %s", e.Quantity, c.money(e.Total)),
		}, true
	}
	return notification.ToastInput{}, false
}

// money formats an amount with grouped thousands and two decimals
func (c *Center) money(d decimal.Decimal) string {
	return c.printer.Sprintf("%.2f", d.InexactFloat64())
}

var _ shared.EventHandler = (*Center)(nil)
