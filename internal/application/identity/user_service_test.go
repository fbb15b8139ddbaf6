package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bizhub/backend/internal/domain/billing"
	"github.com/bizhub/backend/internal/domain/identity"
	"github.com/bizhub/backend/internal/domain/shared"
	"github.com/bizhub/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUserService_ChangePlan(t *testing.T) {
	users := new(MockUserRepository)
	publisher := new(MockEventPublisher)
	svc := NewUserService(users, nil, time.Hour, nil, publisher, zap.NewNop())
	user := confirmedUser(t)

	users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	users.On("Save", mock.Anything, user).Return(nil)
	publisher.On("Publish", mock.Anything, mock.MatchedBy(func(events []shared.DomainEvent) bool {
		ev, ok := events[0].(*identity.PlanChangedEvent)
		return ok && ev.From == billing.PlanWeekly && ev.To == billing.PlanYearly
	})).Return(nil)

	resp, err := svc.ChangePlan(context.Background(), user.ID, ChangePlanRequest{Plan: "yearly"})
	require.NoError(t, err)
	assert.Equal(t, "yearly", resp.Plan)
	assert.Equal(t, "yearly", resp.EffectivePlan)
	assert.Equal(t, "active", resp.SubscriptionStatus)
	publisher.AssertExpectations(t)

	_, err = svc.ChangePlan(context.Background(), user.ID, ChangePlanRequest{Plan: "platinum"})
	assert.Error(t, err)
}

func TestUserService_Deactivate(t *testing.T) {
	users := new(MockUserRepository)
	sessions := new(MockSessionHooks)
	blacklist := auth.NewInMemoryTokenBlacklist()
	svc := NewUserService(users, blacklist, 7*24*time.Hour, sessions, nil, zap.NewNop())
	user := confirmedUser(t)
	issuedAt := time.Now().Add(-time.Minute)

	users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	users.On("Save", mock.Anything, user).Return(nil)
	sessions.On("Reset", user.ID).Return()

	require.NoError(t, svc.Deactivate(context.Background(), user.ID))
	assert.False(t, user.Active)
	sessions.AssertExpectations(t)

	revoked, err := blacklist.IsUserRevoked(context.Background(), user.ID.String(), issuedAt)
	require.NoError(t, err)
	assert.True(t, revoked)

	err = svc.Deactivate(context.Background(), user.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestUserService_UpdateProfile(t *testing.T) {
	users := new(MockUserRepository)
	svc := NewUserService(users, nil, time.Hour, nil, nil, zap.NewNop())
	user := confirmedUser(t)
	users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	users.On("Save", mock.Anything, user).Return(nil)

	resp, err := svc.UpdateProfile(context.Background(), user.ID, UpdateProfileRequest{BusinessName: "Ada Foods", Phone: "+234 800 000 0002"})
	require.NoError(t, err)
	assert.Equal(t, "Ada Foods", resp.BusinessName)
	assert.Equal(t, "+2348000000002", resp.Phone)
	assert.Equal(t, "Ada Obi", resp.FullName)

	missing := uuid.New()
	users.On("FindByID", mock.Anything, missing).Return(nil, shared.ErrNotFound)
	_, err = svc.Me(context.Background(), missing)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUserService_ExpireTrials(t *testing.T) {
	users := new(MockUserRepository)
	svc := NewUserService(users, nil, time.Hour, nil, nil, zap.NewNop())
	now := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	lapsed := func() *identity.User {
		return identity.NewUser(uuid.New(), identity.RegistrationInput{Email: "x@y.com", Phone: "+2348000000003"}, now.Add(-8*24*time.Hour))
	}
	a, b := lapsed(), lapsed()
	users.On("FindLapsedTrials", mock.Anything, now).Return([]*identity.User{a, b}, nil)
	users.On("Save", mock.Anything, a).Return(nil)
	users.On("Save", mock.Anything, b).Return(errors.New("db down"))

	n, err := svc.ExpireTrials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, identity.SubscriptionExpired, a.SubscriptionStatus)
}
