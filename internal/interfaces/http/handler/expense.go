package handler

import (
	"context"

	financeapp "github.com/bizhub/backend/internal/application/finance"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ExpenseService is the part of financeapp.ExpenseService the handler uses
type ExpenseService interface {
	Create(ctx context.Context, userID uuid.UUID, req financeapp.CreateExpenseRequest) (*financeapp.ExpenseResponse, error)
	GetByID(ctx context.Context, userID, expenseID uuid.UUID) (*financeapp.ExpenseResponse, error)
	List(ctx context.Context, userID uuid.UUID, filter financeapp.ExpenseListFilter) ([]financeapp.ExpenseResponse, int64, error)
	Update(ctx context.Context, userID, expenseID uuid.UUID, req financeapp.UpdateExpenseRequest) (*financeapp.ExpenseResponse, error)
	Delete(ctx context.Context, userID, expenseID uuid.UUID) error
}

// ExpenseHandler handles expense endpoints
type ExpenseHandler struct {
	BaseHandler
	expenseService ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenseService ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// Create handles POST /expenses
func (h *ExpenseHandler) Create(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req financeapp.CreateExpenseRequest
	if !h.bindJSON(c, &req) {
		return
	}
	expense, err := h.expenseService.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, expense)
}

// GetByID handles GET /expenses/:id
func (h *ExpenseHandler) GetByID(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	expense, err := h.expenseService.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}

// List handles GET /expenses
func (h *ExpenseHandler) List(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var filter financeapp.ExpenseListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	expenses, total, err := h.expenseService.List(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, expenses, total, filter.Page, filter.PageSize)
}

// Update handles PUT /expenses/:id
func (h *ExpenseHandler) Update(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req financeapp.UpdateExpenseRequest
	if !h.bindJSON(c, &req) {
		return
	}
	expense, err := h.expenseService.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}

// Delete handles DELETE /expenses/:id
func (h *ExpenseHandler) Delete(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.expenseService.Delete(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMessage(c, nil, "Expense deleted")
}
