package identity

import (
	"context"
	"time"

	"github.com/bizhub/backend/internal/domain/identity"
	"github.com/bizhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByPhone(ctx context.Context, phone string) (*identity.User, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) FindLapsedTrials(ctx context.Context, now time.Time) ([]*identity.User, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]*identity.User), args.Error(1)
}

type MockRegistrationStore struct {
	mock.Mock
}

func (m *MockRegistrationStore) Register(ctx context.Context, in identity.RegistrationInput, now time.Time) (*identity.RegistrationResult, error) {
	args := m.Called(ctx, in, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.RegistrationResult), args.Error(1)
}

func (m *MockRegistrationStore) Reissue(ctx context.Context, email string, now time.Time) (*identity.RegistrationResult, error) {
	args := m.Called(ctx, email, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.RegistrationResult), args.Error(1)
}

func (m *MockRegistrationStore) ConfirmEmail(ctx context.Context, token string, now time.Time) (*identity.User, error) {
	args := m.Called(ctx, token, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

type MockVerificationTokenRepository struct {
	mock.Mock
	identity.VerificationTokenRepository
}

func (m *MockVerificationTokenRepository) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	return m.Called(ctx, events).Error(0)
}

type MockSessionHooks struct {
	mock.Mock
}

func (m *MockSessionHooks) Init(userID uuid.UUID) error {
	return m.Called(userID).Error(0)
}

func (m *MockSessionHooks) Reset(userID uuid.UUID) {
	m.Called(userID)
}
