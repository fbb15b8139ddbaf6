package notification

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bizhub/backend/internal/domain/billing"
	"github.com/bizhub/backend/internal/domain/catalog"
	"github.com/bizhub/backend/internal/domain/finance"
	"github.com/bizhub/backend/internal/domain/notification"
	"github.com/bizhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockPreferenceRepository struct {
	mock.Mock
}

func (m *MockPreferenceRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*notification.Preference, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notification.Preference), args.Error(1)
}

func (m *MockPreferenceRepository) Save(ctx context.Context, p *notification.Preference) error {
	return m.Called(ctx, p).Error(0)
}

// fakeClock is a manually advanced clock
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newCenter(t *testing.T, prefs *MockPreferenceRepository) (*Center, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)}
	c, err := NewCenter(prefs, DefaultCenterConfig(), zap.NewNop(), WithClock(clock))
	require.NoError(t, err)
	return c, clock
}

func TestNewCenter_RejectsBadQueueConfig(t *testing.T) {
	cfg := DefaultCenterConfig()
	cfg.Queue.MaxVisible = 11
	_, err := NewCenter(new(MockPreferenceRepository), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestCenter_InitResetAreIsolatedPerUser(t *testing.T) {
	c, _ := newCenter(t, new(MockPreferenceRepository))
	alice, bob := uuid.New(), uuid.New()

	require.NoError(t, c.Init(alice))
	require.NoError(t, c.Init(bob))
	_, ok, err := c.Push(alice, notification.ToastInput{Message: "Saved"})
	require.NoError(t, err)
	require.True(t, ok)

	// Init on an open session keeps its toasts
	require.NoError(t, c.Init(alice))
	list, err := c.List(alice)
	require.NoError(t, err)
	assert.Len(t, list.Visible, 1)

	bobs, err := c.List(bob)
	require.NoError(t, err)
	assert.Empty(t, bobs.Visible)

	c.Reset(alice)
	assert.False(t, c.Active(alice))
	assert.True(t, c.Active(bob))
}

func TestCenter_PushBoundAndDismiss(t *testing.T) {
	c, clock := newCenter(t, new(MockPreferenceRepository))
	user := uuid.New()

	var first uuid.UUID
	for i := 0; i < 6; i++ {
		toast, ok, err := c.Push(user, notification.ToastInput{Type: notification.ToastError, Message: string(rune('a' + i))})
		require.NoError(t, err)
		require.True(t, ok)
		if i == 0 {
			first = toast.ID
		}
	}
	list, err := c.List(user)
	require.NoError(t, err)
	assert.Len(t, list.Visible, 4)
	assert.Len(t, list.Queued, 2)
	assert.Equal(t, 4, list.MaxVisible)
	assert.Equal(t, notification.DefaultMaxQueued, list.MaxQueued)

	dismissed, err := c.Dismiss(user, first)
	require.NoError(t, err)
	assert.Equal(t, "dismissed", dismissed.Status)

	list, err = c.List(user)
	require.NoError(t, err)
	assert.Len(t, list.Visible, 4)
	assert.Len(t, list.Queued, 1)

	_, err = c.Dismiss(user, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)

	clock.Advance(8 * time.Second)
	list, err = c.List(user)
	require.NoError(t, err)
	assert.Len(t, list.Visible, 1)
	assert.Empty(t, list.Queued)
}

func TestCenter_PushDeduplicates(t *testing.T) {
	c, clock := newCenter(t, new(MockPreferenceRepository))
	user := uuid.New()

	_, ok, err := c.Push(user, notification.ToastInput{Type: notification.ToastInfo, Message: "Synced"})
	require.NoError(t, err)
	assert.True(t, ok)

	clock.Advance(2 * time.Second)
	_, ok, err = c.Push(user, notification.ToastInput{Type: notification.ToastInfo, Message: "Synced"})
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = c.Push(user, notification.ToastInput{Type: notification.ToastSuccess, Message: "Synced"})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCenter_NotifyRespectsPreferences(t *testing.T) {
	prefs := new(MockPreferenceRepository)
	c, _ := newCenter(t, prefs)
	user, offline := uuid.New(), uuid.New()
	require.NoError(t, c.Init(user))

	pref := notification.DefaultPreference(user)
	pref.SaleRecorded = false
	require.NoError(t, pref.SetQuietHours("09:00", "11:00"))
	prefs.On("FindByUser", mock.Anything, user).Return(pref, nil)

	pushed, err := c.Notify(context.Background(), user, notification.ToastInput{
		Type: notification.ToastSuccess, Category: notification.CategorySaleRecorded, Message: "Sale",
	})
	require.NoError(t, err)
	assert.False(t, pushed, "category disabled")

	pushed, err = c.Notify(context.Background(), user, notification.ToastInput{
		Type: notification.ToastWarning, Category: notification.CategoryLowStock, Message: "Low",
	})
	require.NoError(t, err)
	assert.False(t, pushed, "quiet hours hold back non-errors")

	pushed, err = c.Notify(context.Background(), user, notification.ToastInput{
		Type: notification.ToastError, Category: notification.CategorySystem, Message: "Sync failed",
	})
	require.NoError(t, err)
	assert.True(t, pushed)

	pushed, err = c.Notify(context.Background(), offline, notification.ToastInput{Message: "x"})
	require.NoError(t, err)
	assert.False(t, pushed)
	prefs.AssertNotCalled(t, "FindByUser", mock.Anything, offline)
}

func TestCenter_HandleEvents(t *testing.T) {
	prefs := new(MockPreferenceRepository)
	c, _ := newCenter(t, prefs)
	user := uuid.New()
	require.NoError(t, c.Init(user))
	prefs.On("FindByUser", mock.Anything, user).Return(nil, shared.ErrNotFound)

	threshold := int64(5)
	product, err := catalog.NewProduct(user, catalog.ProductDetails{Name: "Rice", LowStockThreshold: &threshold}, 1500)
	require.NoError(t, err)
	product.Quantity = 4
	require.NoError(t, c.Handle(context.Background(), catalog.NewProductLowStockEvent(product)))

	usage := billing.NewResourceUsage(billing.ResourceSales, 2000, 2500)
	require.NoError(t, c.Handle(context.Background(),
		billing.NewUsageThresholdReachedEvent(user, billing.PlanMonthly, usage, billing.UsageOK)))

	inv, err := finance.NewInvoice(user, "INV-000007", finance.InvoiceDetails{
		Items: []finance.InvoiceItemInput{{Description: "Catering", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(1250)}},
	})
	require.NoError(t, err)
	require.NoError(t, c.Handle(context.Background(), finance.NewInvoiceOverdueEvent(inv)))

	list, err := c.List(user)
	require.NoError(t, err)
	require.Len(t, list.Visible, 3)
	assert.Equal(t, "Rice is running low: 4 left", list.Visible[0].Message)
	assert.Equal(t, "You have used 2,000 of 2,500 sales on the monthly plan", list.Visible[1].Message)
	assert.Equal(t, "Invoice INV-000007 for 1,250.00 is overdue", list.Visible[2].Message)
	for _, toast := range list.Visible {
		assert.Equal(t, "warning", toast.Type)
	}
}

func TestCenter_Sweep(t *testing.T) {
	c, clock := newCenter(t, new(MockPreferenceRepository))
	idle, busy := uuid.New(), uuid.New()
	require.NoError(t, c.Init(idle))
	require.NoError(t, c.Init(busy))

	clock.Advance(90 * time.Minute)
	_, err := c.List(busy)
	require.NoError(t, err)
	clock.Advance(45 * time.Minute)

	assert.Equal(t, 1, c.Sweep())
	assert.False(t, c.Active(idle))
	assert.True(t, c.Active(busy))
}

func TestCenter_UpdatePreferences(t *testing.T) {
	prefs := new(MockPreferenceRepository)
	c, _ := newCenter(t, prefs)
	user := uuid.New()
	prefs.On("FindByUser", mock.Anything, user).Return(nil, shared.ErrNotFound)
	prefs.On("Save", mock.Anything, mock.AnythingOfType("*notification.Preference")).Return(nil)

	off := false
	start, end := "22:00", "06:30"
	resp, err := c.UpdatePreferences(context.Background(), user, UpdatePreferenceRequest{
		LowStock: &off, QuietHoursStart: &start, QuietHoursEnd: &end,
	})
	require.NoError(t, err)
	assert.False(t, resp.LowStock)
	assert.True(t, resp.UsageLimit)
	assert.Equal(t, "22:00", resp.QuietHoursStart)

	bad := "25:00"
	_, err = c.UpdatePreferences(context.Background(), user, UpdatePreferenceRequest{QuietHoursStart: &bad})
	assert.Error(t, err)
}
