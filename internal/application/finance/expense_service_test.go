package finance

import (
	"context"
	"testing"
	"time"

	"github.com/bizhub/backend/internal/domain/finance"
	"github.com/bizhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestExpenseService_Create(t *testing.T) {
	repo := new(MockExpenseRepository)
	svc := NewExpenseService(repo)
	userID := uuid.New()
	repo.On("Save", mock.Anything, mock.AnythingOfType("*finance.Expense")).Return(nil)

	resp, err := svc.Create(context.Background(), userID, CreateExpenseRequest{
		Category: "rent", Amount: decimal.RequireFromString("150000.004"), Vendor: " Landlord ",
	})
	require.NoError(t, err)
	assert.Equal(t, "150000", resp.Amount.String())
	assert.Equal(t, "Rent", resp.CategoryName)
	assert.Equal(t, "cash", resp.PaymentMethod)
	assert.Equal(t, "Landlord", resp.Vendor)

	_, err = svc.Create(context.Background(), userID, CreateExpenseRequest{Amount: decimal.Zero})
	assert.Error(t, err)
}

func TestExpenseService_Update(t *testing.T) {
	repo := new(MockExpenseRepository)
	svc := NewExpenseService(repo)
	userID := uuid.New()
	e, err := finance.NewExpense(userID, finance.ExpenseDetails{Amount: decimal.NewFromInt(10)})
	require.NoError(t, err)

	repo.On("FindByID", mock.Anything, userID, e.ID).Return(e, nil)
	repo.On("Save", mock.Anything, e).Return(nil)

	resp, err := svc.Update(context.Background(), userID, e.ID, UpdateExpenseRequest{Category: "transport", Amount: decimal.NewFromInt(25)})
	require.NoError(t, err)
	assert.Equal(t, "transport", resp.Category)
	assert.Equal(t, 2, resp.Version)

	missing := uuid.New()
	repo.On("FindByID", mock.Anything, userID, missing).Return(nil, shared.ErrNotFound)
	_, err = svc.Update(context.Background(), userID, missing, UpdateExpenseRequest{Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestExpenseService_List_InclusiveTo(t *testing.T) {
	repo := new(MockExpenseRepository)
	svc := NewExpenseService(repo)
	userID := uuid.New()
	to := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	repo.On("FindAll", mock.Anything, userID, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Filters["to"] == time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	})).Return([]*finance.Expense{}, int64(0), nil)

	_, _, err := svc.List(context.Background(), userID, ExpenseListFilter{To: &to})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}
