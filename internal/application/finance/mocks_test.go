package finance

import (
	"context"
	"time"

	"github.com/bizhub/backend/internal/domain/finance"
	"github.com/bizhub/backend/internal/domain/partner"
	"github.com/bizhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, ownerID, id uuid.UUID) (*finance.Invoice, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]*finance.Invoice, int64, error) {
	args := m.Called(ctx, ownerID, filter)
	return args.Get(0).([]*finance.Invoice), args.Get(1).(int64), args.Error(2)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, inv *finance.Invoice) error {
	return m.Called(ctx, inv).Error(0)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

func (m *MockInvoiceRepository) Count(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) NextNumber(ctx context.Context, ownerID uuid.UUID) (string, error) {
	args := m.Called(ctx, ownerID)
	return args.String(0), args.Error(1)
}

func (m *MockInvoiceRepository) FindOverdue(ctx context.Context, now time.Time) ([]*finance.Invoice, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]*finance.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) SumByStatus(ctx context.Context, ownerID uuid.UUID) (map[finance.InvoiceStatus]decimal.Decimal, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(map[finance.InvoiceStatus]decimal.Decimal), args.Error(1)
}

type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) FindByID(ctx context.Context, ownerID, id uuid.UUID) (*finance.Expense, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Expense), args.Error(1)
}

func (m *MockExpenseRepository) FindAll(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]*finance.Expense, int64, error) {
	args := m.Called(ctx, ownerID, filter)
	return args.Get(0).([]*finance.Expense), args.Get(1).(int64), args.Error(2)
}

func (m *MockExpenseRepository) Save(ctx context.Context, e *finance.Expense) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockExpenseRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

func (m *MockExpenseRepository) Count(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockExpenseRepository) SumBetween(ctx context.Context, ownerID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, ownerID, from, to)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockCustomerRepository struct {
	mock.Mock
	partner.CustomerRepository
}

func (m *MockCustomerRepository) ExistsForOwner(ctx context.Context, ownerID, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, ownerID, id)
	return args.Bool(0), args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	return m.Called(ctx, events).Error(0)
}
