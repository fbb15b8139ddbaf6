package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bizhub/backend/internal/domain/billing"
	"github.com/bizhub/backend/internal/domain/identity"
	"github.com/bizhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockUserRepository struct {
	mock.Mock
	identity.UserRepository
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	return m.Called(ctx, events).Error(0)
}

// fixedCounter always reports n
type fixedCounter struct {
	n   int64
	err error
}

func (c *fixedCounter) Count(context.Context, uuid.UUID) (int64, error) {
	return c.n, c.err
}

var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func newUser(plan billing.PlanTier, status identity.SubscriptionStatus) *identity.User {
	return identity.NewUser(uuid.New(), identity.RegistrationInput{
		Email:              "owner@shop.ng",
		Phone:              "+2348000000001",
		FullName:           "Ada Obi",
		SubscriptionPlan:   plan,
		SubscriptionStatus: status,
	}, testNow.Add(-time.Hour))
}

func newService(t *testing.T, user *identity.User, counters Counters, publisher shared.EventPublisher) *UsageService {
	t.Helper()
	users := new(MockUserRepository)
	users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	svc := NewUsageService(users, counters, publisher, zap.NewNop())
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestUsageService_Report(t *testing.T) {
	user := newUser(billing.PlanMonthly, identity.SubscriptionExpired)
	svc := newService(t, user, Counters{
		billing.ResourceInvoices: &fixedCounter{n: 8},
		billing.ResourceSales:    &fixedCounter{n: 3},
	}, nil)

	report, err := svc.Report(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "free", report.Plan)
	assert.Equal(t, "warning", report.Status)
	require.Len(t, report.Resources, 4)
	assert.Equal(t, "invoices", report.Resources[0].Resource)
	assert.Equal(t, int64(10), report.Resources[0].Limit)
	assert.Equal(t, int64(2), report.Resources[0].Remaining)
	assert.Equal(t, "ok", report.Resources[1].Status)
}

func TestUsageService_Report_CounterError(t *testing.T) {
	user := newUser(billing.PlanWeekly, identity.SubscriptionActive)
	svc := newService(t, user, Counters{billing.ResourceProducts: &fixedCounter{err: errors.New("db down")}}, nil)

	_, err := svc.Report(context.Background(), user.ID)
	assert.ErrorContains(t, err, "count products")
}

func TestUsageService_Check(t *testing.T) {
	user := newUser(billing.PlanYearly, identity.SubscriptionActive)
	svc := newService(t, user, Counters{billing.ResourceInvoices: &fixedCounter{n: 100000}}, nil)

	usage, err := svc.Check(context.Background(), user.ID, "Invoices")
	require.NoError(t, err)
	assert.True(t, usage.Unlimited)
	assert.True(t, usage.CanCreate)
	assert.Equal(t, "ok", usage.Status)
	assert.Equal(t, int64(-1), usage.Remaining)

	_, err = svc.Check(context.Background(), user.ID, "widgets")
	assert.Error(t, err)
}

func TestUsageService_EnsureCanCreate(t *testing.T) {
	user := newUser(billing.PlanFree, identity.SubscriptionActive)

	t.Run("under limit", func(t *testing.T) {
		svc := newService(t, user, Counters{billing.ResourceInvoices: &fixedCounter{n: 9}}, nil)
		assert.NoError(t, svc.EnsureCanCreate(context.Background(), user.ID, billing.ResourceInvoices))
	})

	t.Run("at limit", func(t *testing.T) {
		svc := newService(t, user, Counters{billing.ResourceInvoices: &fixedCounter{n: 10}}, nil)
		err := svc.EnsureCanCreate(context.Background(), user.ID, billing.ResourceInvoices)
		assert.ErrorIs(t, err, shared.ErrUsageLimitExceeded)
		assert.Contains(t, err.Error(), "free plan limit of 10 invoices")
	})

	t.Run("lapsed trial falls back to free", func(t *testing.T) {
		trial := identity.NewUser(uuid.New(), identity.RegistrationInput{
			Email: "t@shop.ng", Phone: "+2348000000002",
		}, testNow.Add(-8*24*time.Hour))
		svc := newService(t, trial, Counters{billing.ResourceInvoices: &fixedCounter{n: 10}}, nil)
		err := svc.EnsureCanCreate(context.Background(), trial.ID, billing.ResourceInvoices)
		assert.ErrorIs(t, err, shared.ErrUsageLimitExceeded)
	})
}

func TestUsageService_RecordCreated(t *testing.T) {
	user := newUser(billing.PlanWeekly, identity.SubscriptionActive)

	tests := []struct {
		name     string
		count    int64
		publish  bool
		status   billing.UsageStatus
		previous billing.UsageStatus
	}{
		{"still ok", 39, false, "", ""},
		{"crosses warning", 40, true, billing.UsageWarning, billing.UsageOK},
		{"stays warning", 41, false, "", ""},
		{"crosses critical", 48, true, billing.UsageCritical, billing.UsageWarning},
		{"reaches limit", 50, true, billing.UsageExceeded, billing.UsageCritical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			publisher := new(MockEventPublisher)
			svc := newService(t, user, Counters{billing.ResourceInvoices: &fixedCounter{n: tt.count}}, publisher)
			if tt.publish {
				publisher.On("Publish", mock.Anything, mock.MatchedBy(func(events []shared.DomainEvent) bool {
					ev, ok := events[0].(*billing.UsageThresholdReachedEvent)
					return ok && ev.Usage.Status == tt.status && ev.Previous == tt.previous && ev.OwnerID() == user.ID
				})).Return(nil)
			}

			svc.RecordCreated(context.Background(), user.ID, billing.ResourceInvoices)

			if tt.publish {
				publisher.AssertExpectations(t)
			} else {
				publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
			}
		})
	}
}
