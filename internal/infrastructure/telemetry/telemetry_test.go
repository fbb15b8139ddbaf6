package telemetry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bizhub/backend/internal/domain/billing"
	"github.com/bizhub/backend/internal/domain/trade"
	"github.com/bizhub/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func TestSetup_Disabled(t *testing.T) {
	p, err := Setup(context.Background(), config.TelemetryConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, p.Enabled())
	assert.NotNil(t, p.Meter("test"))
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestHTTPMetrics(t *testing.T) {
	m := NewHTTPMetrics()

	done := m.Begin()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.inFlight))
	done("GET", "/api/v1/customers", http.StatusOK)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.inFlight))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/v1/customers", "200")))

	m.Begin()("GET", "", http.StatusNotFound)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404")))

	m.ObserveEvent("SaleRecorded", nil)
	m.ObserveEvent("SaleRecorded", errors.New("boom"))
	m.ObserveEvent("SaleRecorded", nil)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.events.WithLabelValues("SaleRecorded", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.events.WithLabelValues("SaleRecorded", "error")))

	m.ObserveUsageRejection("invoices")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejected.WithLabelValues("invoices")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "bizhub_http_requests_total"))
}

func TestBusinessMetrics(t *testing.T) {
	_, err := NewBusinessMetrics(nil)
	assert.ErrorIs(t, err, ErrMeterNil)

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewBusinessMetrics(provider.Meter("test"))
	require.NoError(t, err)

	owner := uuid.New()
	sale, err := trade.NewSale(owner, trade.SaleDetails{
		ProductID: uuid.New(),
		Quantity:  3,
		UnitPrice: decimal.NewFromInt(50),
	})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, m.Handle(ctx, trade.NewSaleRecordedEvent(sale)))
	usage := billing.NewResourceUsage(billing.ResourceInvoices, 8, 10)
	require.NoError(t, m.Handle(ctx, billing.NewUsageThresholdReachedEvent(owner, billing.PlanFree, usage, billing.UsageOK)))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	sums := map[string]float64{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			switch data := md.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					sums[md.Name] += float64(dp.Value)
				}
			case metricdata.Sum[float64]:
				for _, dp := range data.DataPoints {
					sums[md.Name] += dp.Value
				}
			}
		}
	}
	assert.Equal(t, 1.0, sums["bizhub.sales.recorded"])
	assert.Equal(t, 3.0, sums["bizhub.sales.units"])
	assert.Equal(t, 150.0, sums["bizhub.sales.revenue"])
	assert.Equal(t, 1.0, sums["bizhub.usage.threshold_reached"])
	assert.Len(t, m.EventTypes(), 8)
}

func TestInstrumentDB_DisabledIsNoop(t *testing.T) {
	assert.NoError(t, InstrumentDB(nil, config.TelemetryConfig{Enabled: true, DBTraceEnabled: false}, zap.NewNop()))
}
