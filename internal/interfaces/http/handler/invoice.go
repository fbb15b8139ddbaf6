package handler

import (
	"context"

	financeapp "github.com/bizhub/backend/internal/application/finance"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InvoiceService is the part of financeapp.InvoiceService the handler uses
type InvoiceService interface {
	Create(ctx context.Context, userID uuid.UUID, req financeapp.CreateInvoiceRequest) (*financeapp.InvoiceResponse, error)
	GetByID(ctx context.Context, userID, invoiceID uuid.UUID) (*financeapp.InvoiceResponse, error)
	List(ctx context.Context, userID uuid.UUID, filter financeapp.InvoiceListFilter) ([]financeapp.InvoiceResponse, int64, error)
	Update(ctx context.Context, userID, invoiceID uuid.UUID, req financeapp.UpdateInvoiceRequest) (*financeapp.InvoiceResponse, error)
	ChangeStatus(ctx context.Context, userID, invoiceID uuid.UUID, req financeapp.ChangeInvoiceStatusRequest) (*financeapp.InvoiceResponse, error)
	Delete(ctx context.Context, userID, invoiceID uuid.UUID) error
}

// InvoiceHandler handles invoice endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// Create handles POST /invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req financeapp.CreateInvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	invoice, err := h.invoiceService.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invoice)
}

// GetByID handles GET /invoices/:id
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	invoice, err := h.invoiceService.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// List handles GET /invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var filter financeapp.InvoiceListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	invoices, total, err := h.invoiceService.List(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, invoices, total, filter.Page, filter.PageSize)
}

// Update handles PUT /invoices/:id. Only drafts can be edited.
func (h *InvoiceHandler) Update(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req financeapp.UpdateInvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	invoice, err := h.invoiceService.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// ChangeStatus handles POST /invoices/:id/status
func (h *InvoiceHandler) ChangeStatus(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req financeapp.ChangeInvoiceStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	invoice, err := h.invoiceService.ChangeStatus(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// Delete handles DELETE /invoices/:id
func (h *InvoiceHandler) Delete(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.invoiceService.Delete(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMessage(c, nil, "Invoice deleted")
}
