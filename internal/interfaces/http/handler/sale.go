package handler

import (
	"context"

	tradeapp "github.com/bizhub/backend/internal/application/trade"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SaleService is the part of tradeapp.SaleService the handler uses
type SaleService interface {
	Create(ctx context.Context, userID uuid.UUID, req tradeapp.CreateSaleRequest) (*tradeapp.SaleResponse, error)
	GetByID(ctx context.Context, userID, saleID uuid.UUID) (*tradeapp.SaleResponse, error)
	List(ctx context.Context, userID uuid.UUID, filter tradeapp.SaleListFilter) ([]tradeapp.SaleResponse, int64, error)
	Update(ctx context.Context, userID, saleID uuid.UUID, req tradeapp.UpdateSaleRequest) (*tradeapp.SaleResponse, error)
	Delete(ctx context.Context, userID, saleID uuid.UUID) error
}

// SaleHandler handles sale endpoints
type SaleHandler struct {
	BaseHandler
	saleService SaleService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(saleService SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// Create handles POST /sales. Stock is decremented in the same transaction.
func (h *SaleHandler) Create(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req tradeapp.CreateSaleRequest
	if !h.bindJSON(c, &req) {
		return
	}
	sale, err := h.saleService.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sale)
}

// GetByID handles GET /sales/:id
func (h *SaleHandler) GetByID(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	sale, err := h.saleService.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// List handles GET /sales
func (h *SaleHandler) List(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var filter tradeapp.SaleListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	sales, total, err := h.saleService.List(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, sales, total, filter.Page, filter.PageSize)
}

// Update handles PUT /sales/:id
func (h *SaleHandler) Update(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req tradeapp.UpdateSaleRequest
	if !h.bindJSON(c, &req) {
		return
	}
	sale, err := h.saleService.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// Delete handles DELETE /sales/:id. The sold quantity goes back to stock.
func (h *SaleHandler) Delete(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.saleService.Delete(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMessage(c, nil, "Sale deleted")
}
