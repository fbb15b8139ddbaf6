package client

import (
	"context"
	"net/http"
	"net/url"

	catalogapp "github.com/bizhub/backend/internal/application/catalog"
	financeapp "github.com/bizhub/backend/internal/application/finance"
	partnerapp "github.com/bizhub/backend/internal/application/partner"
	tradeapp "github.com/bizhub/backend/internal/application/trade"
	"github.com/bizhub/backend/internal/domain/billing"
	"github.com/bizhub/backend/internal/infrastructure/cache"
	"github.com/google/uuid"
)

// Cache key classes without a dedicated TTL
const (
	ClassSales    = "sales:"
	ClassInvoices = "invoices:"
	ClassExpenses = "expenses:"
)

const (
	resourceProducts = billing.ResourceProducts
	resourceSales    = billing.ResourceSales
	resourceInvoices = billing.ResourceInvoices
	resourceExpenses = billing.ResourceExpenses
)

// Wire types shared with the server
type (
	CustomerResponse = partnerapp.CustomerResponse
	CustomerInput    = partnerapp.CreateCustomerRequest
	ProductResponse  = catalogapp.ProductResponse
	ProductInput     = catalogapp.CreateProductRequest
	ProductUpdate    = catalogapp.UpdateProductRequest
	SaleResponse     = tradeapp.SaleResponse
	SaleInput        = tradeapp.CreateSaleRequest
	SaleUpdate       = tradeapp.UpdateSaleRequest
	InvoiceResponse  = financeapp.InvoiceResponse
	InvoiceInput     = financeapp.CreateInvoiceRequest
	ExpenseResponse  = financeapp.ExpenseResponse
	ExpenseInput     = financeapp.CreateExpenseRequest
)

// Page is one page of a list
type Page[T any] struct {
	Items []T
	Meta  *Meta
}

// Resource is the CRUD surface of one REST collection. T is the record,
// C the create payload and U the update payload.
type Resource[T, C, U any] struct {
	c     *Client
	path  string
	class string
	// counted is the plan-limited resource, empty when creation is free
	counted billing.ResourceType
	// related are classes whose cached reads change with this collection
	related []string
}

func newResource[T, C, U any](c *Client, path, class string, counted billing.ResourceType, related ...string) *Resource[T, C, U] {
	return &Resource[T, C, U]{c: c, path: path, class: class, counted: counted, related: related}
}

// List returns one page. query holds the server's list filters, e.g.
// page, page_size and search.
func (r *Resource[T, C, U]) List(ctx context.Context, query url.Values) (*Page[T], error) {
	key := r.class + "list?" + query.Encode()
	page := &Page[T]{}
	meta, err := r.c.get(ctx, key, r.path, query, &page.Items)
	if err != nil {
		return nil, err
	}
	page.Meta = meta
	return page, nil
}

// Get returns one record
func (r *Resource[T, C, U]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	var out T
	if _, err := r.c.get(ctx, r.class+id.String(), r.path+"/"+id.String(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create adds a record. Plan-limited collections are checked against the
// cached usage report first.
func (r *Resource[T, C, U]) Create(ctx context.Context, in C) (*T, error) {
	if r.counted != "" {
		if err := r.c.CanCreate(ctx, r.counted); err != nil {
			return nil, err
		}
	}
	var out T
	if _, err := r.c.send(ctx, http.MethodPost, r.path, in, &out); err != nil {
		return nil, err
	}
	r.invalidate(ctx)
	return &out, nil
}

// Update replaces a record's editable fields
func (r *Resource[T, C, U]) Update(ctx context.Context, id uuid.UUID, in U) (*T, error) {
	var out T
	if _, err := r.c.send(ctx, http.MethodPut, r.path+"/"+id.String(), in, &out); err != nil {
		return nil, err
	}
	r.invalidate(ctx)
	return &out, nil
}

// Delete removes a record
func (r *Resource[T, C, U]) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.c.send(ctx, http.MethodDelete, r.path+"/"+id.String(), nil, nil); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *Resource[T, C, U]) invalidate(ctx context.Context) {
	prefixes := append([]string{r.class, cache.ClassDashboard}, r.related...)
	if r.counted != "" {
		prefixes = append(prefixes, cache.ClassUsage)
	}
	r.c.cache.Invalidate(ctx, prefixes...)
}

// LowStockProducts lists products at or below their threshold
func (c *Client) LowStockProducts(ctx context.Context) ([]ProductResponse, error) {
	var out []ProductResponse
	if _, err := c.get(ctx, cache.ClassProducts+"low-stock", "/products/low-stock", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ChangeInvoiceStatus moves an invoice through its lifecycle
func (c *Client) ChangeInvoiceStatus(ctx context.Context, id uuid.UUID, status string) (*InvoiceResponse, error) {
	var out InvoiceResponse
	req := financeapp.ChangeInvoiceStatusRequest{Status: status}
	if _, err := c.send(ctx, http.MethodPost, "/invoices/"+id.String()+"/status", req, &out); err != nil {
		return nil, err
	}
	c.cache.Invalidate(ctx, ClassInvoices, cache.ClassDashboard)
	return &out, nil
}
