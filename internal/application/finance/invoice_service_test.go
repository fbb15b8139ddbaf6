package finance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bizhub/backend/internal/domain/finance"
	"github.com/bizhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func invoiceRequest() CreateInvoiceRequest {
	issue := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return CreateInvoiceRequest{
		IssueDate:    &issue,
		TaxRate:      decimal.RequireFromString("7.5"),
		DiscountRate: decimal.NewFromInt(10),
		Items: []InvoiceItemRequest{
			{Description: "Design work", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(500)},
		},
	}
}

func TestInvoiceService_Create(t *testing.T) {
	repo := new(MockInvoiceRepository)
	svc := NewInvoiceService(repo, new(MockCustomerRepository), nil, zap.NewNop())
	userID := uuid.New()

	repo.On("NextNumber", mock.Anything, userID).Return("INV-000004", nil)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*finance.Invoice")).Return(nil)

	resp, err := svc.Create(context.Background(), userID, invoiceRequest())
	require.NoError(t, err)
	assert.Equal(t, "INV-000004", resp.InvoiceNumber)
	assert.Equal(t, "draft", resp.Status)
	assert.Equal(t, "1000", resp.Subtotal.String())
	assert.Equal(t, "100", resp.DiscountAmount.String())
	assert.Equal(t, "67.5", resp.TaxAmount.String())
	assert.Equal(t, "967.5", resp.Total.String())
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), resp.DueDate)
}

func TestInvoiceService_Create_RetriesTakenNumber(t *testing.T) {
	repo := new(MockInvoiceRepository)
	svc := NewInvoiceService(repo, new(MockCustomerRepository), nil, zap.NewNop())
	userID := uuid.New()

	repo.On("NextNumber", mock.Anything, userID).Return("INV-000001", nil).Once()
	repo.On("NextNumber", mock.Anything, userID).Return("INV-000002", nil).Once()
	repo.On("Save", mock.Anything, mock.Anything).Return(shared.ErrAlreadyExists).Once()
	repo.On("Save", mock.Anything, mock.Anything).Return(nil).Once()

	resp, err := svc.Create(context.Background(), userID, invoiceRequest())
	require.NoError(t, err)
	assert.Equal(t, "INV-000002", resp.InvoiceNumber)
}

func TestInvoiceService_Create_GivesUpAfterRetries(t *testing.T) {
	repo := new(MockInvoiceRepository)
	svc := NewInvoiceService(repo, new(MockCustomerRepository), nil, zap.NewNop())
	userID := uuid.New()

	repo.On("NextNumber", mock.Anything, userID).Return("INV-000001", nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(shared.ErrAlreadyExists)

	_, err := svc.Create(context.Background(), userID, invoiceRequest())
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	repo.AssertNumberOfCalls(t, "Save", maxNumberAttempts)
}

func TestInvoiceService_Create_UnknownCustomer(t *testing.T) {
	customers := new(MockCustomerRepository)
	repo := new(MockInvoiceRepository)
	svc := NewInvoiceService(repo, customers, nil, zap.NewNop())
	userID, customerID := uuid.New(), uuid.New()

	customers.On("ExistsForOwner", mock.Anything, userID, customerID).Return(false, nil)
	req := invoiceRequest()
	req.CustomerID = &customerID

	_, err := svc.Create(context.Background(), userID, req)
	require.Error(t, err)
	repo.AssertNotCalled(t, "NextNumber", mock.Anything, mock.Anything)
}

func TestInvoiceService_ChangeStatus(t *testing.T) {
	repo := new(MockInvoiceRepository)
	svc := NewInvoiceService(repo, new(MockCustomerRepository), nil, zap.NewNop())
	userID := uuid.New()
	inv, err := finance.NewInvoice(userID, "INV-000001", invoiceRequest().details())
	require.NoError(t, err)

	repo.On("FindByID", mock.Anything, userID, inv.ID).Return(inv, nil)
	repo.On("Save", mock.Anything, inv).Return(nil)

	resp, err := svc.ChangeStatus(context.Background(), userID, inv.ID, ChangeInvoiceStatusRequest{Status: "sent"})
	require.NoError(t, err)
	assert.Equal(t, "sent", resp.Status)

	_, err = svc.ChangeStatus(context.Background(), userID, inv.ID, ChangeInvoiceStatusRequest{Status: "draft"})
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	_, err = svc.Update(context.Background(), userID, inv.ID, invoiceRequest())
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestInvoiceService_Delete_PaidRejected(t *testing.T) {
	repo := new(MockInvoiceRepository)
	svc := NewInvoiceService(repo, new(MockCustomerRepository), nil, zap.NewNop())
	userID := uuid.New()
	inv, err := finance.NewInvoice(userID, "INV-000001", invoiceRequest().details())
	require.NoError(t, err)
	require.NoError(t, inv.ChangeStatus(finance.InvoiceStatusSent))
	require.NoError(t, inv.ChangeStatus(finance.InvoiceStatusPaid))

	repo.On("FindByID", mock.Anything, userID, inv.ID).Return(inv, nil)

	err = svc.Delete(context.Background(), userID, inv.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestInvoiceService_MarkOverdue(t *testing.T) {
	repo := new(MockInvoiceRepository)
	publisher := new(MockEventPublisher)
	svc := NewInvoiceService(repo, new(MockCustomerRepository), publisher, zap.NewNop())
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	sent := func() *finance.Invoice {
		inv, err := finance.NewInvoice(uuid.New(), "INV-000001", invoiceRequest().details())
		require.NoError(t, err)
		require.NoError(t, inv.ChangeStatus(finance.InvoiceStatusSent))
		return inv
	}
	a, b := sent(), sent()

	repo.On("FindOverdue", mock.Anything, now).Return([]*finance.Invoice{a, b}, nil)
	repo.On("Save", mock.Anything, a).Return(nil)
	repo.On("Save", mock.Anything, b).Return(errors.New("db down"))
	publisher.On("Publish", mock.Anything, mock.MatchedBy(func(events []shared.DomainEvent) bool {
		return len(events) == 1 && events[0].EventType() == finance.EventTypeInvoiceOverdue
	})).Return(nil).Once()

	n, err := svc.MarkOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, finance.InvoiceStatusOverdue, a.Status)
	publisher.AssertExpectations(t)
}

func TestInvoiceService_List_Filters(t *testing.T) {
	repo := new(MockInvoiceRepository)
	svc := NewInvoiceService(repo, new(MockCustomerRepository), nil, zap.NewNop())
	userID := uuid.New()

	repo.On("FindAll", mock.Anything, userID, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Filters["status"] == "overdue" && len(f.Filters) == 1
	})).Return([]*finance.Invoice{}, int64(0), nil)

	_, _, err := svc.List(context.Background(), userID, InvoiceListFilter{Status: "overdue"})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}
