package finance

import (
	"context"

	"github.com/bizhub/backend/internal/domain/finance"
	"github.com/bizhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ExpenseService manages business expenses
type ExpenseService struct {
	expenseRepo finance.ExpenseRepository
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(expenseRepo finance.ExpenseRepository) *ExpenseService {
	return &ExpenseService{expenseRepo: expenseRepo}
}

// Create records an expense
func (s *ExpenseService) Create(ctx context.Context, userID uuid.UUID, req CreateExpenseRequest) (*ExpenseResponse, error) {
	expense, err := finance.NewExpense(userID, req.details())
	if err != nil {
		return nil, err
	}
	if err := s.expenseRepo.Save(ctx, expense); err != nil {
		return nil, err
	}
	response := ToExpenseResponse(expense)
	return &response, nil
}

// GetByID retrieves an expense by ID
func (s *ExpenseService) GetByID(ctx context.Context, userID, expenseID uuid.UUID) (*ExpenseResponse, error) {
	expense, err := s.expenseRepo.FindByID(ctx, userID, expenseID)
	if err != nil {
		return nil, err
	}
	response := ToExpenseResponse(expense)
	return &response, nil
}

// List retrieves a page of expenses
func (s *ExpenseService) List(ctx context.Context, userID uuid.UUID, filter ExpenseListFilter) ([]ExpenseResponse, int64, error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  map[string]any{},
	}
	if filter.Category != "" {
		domainFilter.Filters["category"] = filter.Category
	}
	if filter.From != nil {
		domainFilter.Filters["from"] = *filter.From
	}
	if filter.To != nil {
		domainFilter.Filters["to"] = filter.To.AddDate(0, 0, 1)
	}

	expenses, total, err := s.expenseRepo.FindAll(ctx, userID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]ExpenseResponse, len(expenses))
	for i, e := range expenses {
		out[i] = ToExpenseResponse(e)
	}
	return out, total, nil
}

// Update replaces an expense's details
func (s *ExpenseService) Update(ctx context.Context, userID, expenseID uuid.UUID, req UpdateExpenseRequest) (*ExpenseResponse, error) {
	expense, err := s.expenseRepo.FindByID(ctx, userID, expenseID)
	if err != nil {
		return nil, err
	}
	if err := expense.Update(req.details()); err != nil {
		return nil, err
	}
	if err := s.expenseRepo.Save(ctx, expense); err != nil {
		return nil, err
	}
	response := ToExpenseResponse(expense)
	return &response, nil
}

// Delete removes an expense
func (s *ExpenseService) Delete(ctx context.Context, userID, expenseID uuid.UUID) error {
	return s.expenseRepo.Delete(ctx, userID, expenseID)
}
