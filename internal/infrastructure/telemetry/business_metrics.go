package telemetry

import (
	"context"
	"errors"
	"fmt"

	"github.com/bizhub/backend/internal/domain/billing"
	"github.com/bizhub/backend/internal/domain/catalog"
	"github.com/bizhub/backend/internal/domain/finance"
	"github.com/bizhub/backend/internal/domain/identity"
	"github.com/bizhub/backend/internal/domain/shared"
	"github.com/bizhub/backend/internal/domain/trade"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var ErrMeterNil = errors.New("meter cannot be nil")

// BusinessMetrics turns domain events into OTel counters. It subscribes to
// the event bus like any other handler.
type BusinessMetrics struct {
	sales        metric.Int64Counter
	unitsSold    metric.Int64Counter
	revenue      metric.Float64Counter
	lowStock     metric.Int64Counter
	overdue      metric.Int64Counter
	usageAlerts  metric.Int64Counter
	signups      metric.Int64Counter
	confirmed    metric.Int64Counter
	planChanges  metric.Int64Counter
	deactivation metric.Int64Counter
}

func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	m := &BusinessMetrics{}
	var errs []error
	int64Counter := func(name, desc, unit string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
		errs = append(errs, err)
		return c
	}

	m.sales = int64Counter("bizhub.sales.recorded", "Sales recorded", "{sale}")
	m.unitsSold = int64Counter("bizhub.sales.units", "Units sold", "{unit}")
	m.lowStock = int64Counter("bizhub.products.low_stock", "Stock removals that left a product low", "{event}")
	m.overdue = int64Counter("bizhub.invoices.overdue", "Invoices moved to overdue", "{invoice}")
	m.usageAlerts = int64Counter("bizhub.usage.threshold_reached", "Plan usage threshold crossings", "{event}")
	m.signups = int64Counter("bizhub.users.registered", "Accounts registered", "{user}")
	m.confirmed = int64Counter("bizhub.users.email_confirmed", "Email addresses confirmed", "{user}")
	m.planChanges = int64Counter("bizhub.users.plan_changed", "Subscription plan changes", "{event}")
	m.deactivation = int64Counter("bizhub.users.deactivated", "Accounts deactivated", "{user}")

	revenue, err := meter.Float64Counter("bizhub.sales.revenue",
		metric.WithDescription("Revenue from recorded sales"), metric.WithUnit("{currency}"))
	errs = append(errs, err)
	m.revenue = revenue

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}
	return m, nil
}

func (m *BusinessMetrics) EventTypes() []string {
	return []string{
		trade.EventTypeSaleRecorded,
		catalog.EventTypeProductLowStock,
		finance.EventTypeInvoiceOverdue,
		billing.EventTypeUsageThresholdReached,
		identity.EventTypeUserRegistered,
		identity.EventTypeEmailConfirmed,
		identity.EventTypePlanChanged,
		identity.EventTypeUserDeactivated,
	}
}

func (m *BusinessMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch ev := event.(type) {
	case *trade.SaleRecordedEvent:
		m.sales.Add(ctx, 1)
		m.unitsSold.Add(ctx, ev.Quantity)
		m.revenue.Add(ctx, ev.Total.InexactFloat64())
	case *catalog.ProductLowStockEvent:
		m.lowStock.Add(ctx, 1)
	case *finance.InvoiceOverdueEvent:
		m.overdue.Add(ctx, 1)
	case *billing.UsageThresholdReachedEvent:
		m.usageAlerts.Add(ctx, 1, metric.WithAttributes(
			attribute.String("resource", string(ev.Usage.Resource)),
			attribute.String("status", string(ev.Usage.Status)),
			attribute.String("plan", string(ev.Plan)),
		))
	case *identity.UserRegisteredEvent:
		m.signups.Add(ctx, 1)
	case *identity.EmailConfirmedEvent:
		m.confirmed.Add(ctx, 1)
	case *identity.PlanChangedEvent:
		m.planChanges.Add(ctx, 1, metric.WithAttributes(
			attribute.String("from", string(ev.From)),
			attribute.String("to", string(ev.To)),
		))
	case *identity.UserDeactivatedEvent:
		m.deactivation.Add(ctx, 1)
	}
	return nil
}

var _ shared.EventHandler = (*BusinessMetrics)(nil)
