package trade

import (
	"context"
	"testing"
	"time"

	"github.com/bizhub/backend/internal/domain/catalog"
	"github.com/bizhub/backend/internal/domain/partner"
	"github.com/bizhub/backend/internal/domain/shared"
	"github.com/bizhub/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, ownerID, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]*catalog.Product, int64, error) {
	args := m.Called(ctx, ownerID, filter)
	return args.Get(0).([]*catalog.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) Save(ctx context.Context, p *catalog.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

func (m *MockProductRepository) Count(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) FindLowStock(ctx context.Context, ownerID uuid.UUID) ([]*catalog.Product, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) ExistsBySKU(ctx context.Context, ownerID uuid.UUID, sku string, excludeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, ownerID, sku, excludeID)
	return args.Bool(0), args.Error(1)
}

type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) FindByID(ctx context.Context, ownerID, id uuid.UUID) (*trade.Sale, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindAll(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]*trade.Sale, int64, error) {
	args := m.Called(ctx, ownerID, filter)
	return args.Get(0).([]*trade.Sale), args.Get(1).(int64), args.Error(2)
}

func (m *MockSaleRepository) Save(ctx context.Context, s *trade.Sale) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockSaleRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

func (m *MockSaleRepository) Count(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSaleRepository) Totals(ctx context.Context, ownerID uuid.UUID, from, to time.Time) (trade.SalesTotals, error) {
	args := m.Called(ctx, ownerID, from, to)
	return args.Get(0).(trade.SalesTotals), args.Error(1)
}

func (m *MockSaleRepository) FindRecent(ctx context.Context, ownerID uuid.UUID, limit int) ([]*trade.Sale, error) {
	args := m.Called(ctx, ownerID, limit)
	return args.Get(0).([]*trade.Sale), args.Error(1)
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

type saleFixture struct {
	products  *MockProductRepository
	sales     *MockSaleRepository
	customers *MockCustomerRepository
	publisher *MockEventPublisher
	svc       *SaleService
	userID    uuid.UUID
}

func newSaleFixture() *saleFixture {
	f := &saleFixture{
		products:  new(MockProductRepository),
		sales:     new(MockSaleRepository),
		customers: new(MockCustomerRepository),
		publisher: new(MockEventPublisher),
		userID:    uuid.New(),
	}
	scope := NewNoOpTransactionScope(f.products, f.sales)
	f.svc = NewSaleService(f.sales, f.customers, scope, f.publisher, zap.NewNop())
	return f
}

func (f *saleFixture) product(t *testing.T, qty int64) *catalog.Product {
	t.Helper()
	threshold := int64(2)
	p, err := catalog.NewProduct(f.userID, catalog.ProductDetails{
		Name:              "Sugar 1kg",
		Price:             decimal.NewFromInt(800),
		LowStockThreshold: &threshold,
	}, qty)
	require.NoError(t, err)
	return p
}

func TestSaleService_Create_DecrementsStock(t *testing.T) {
	f := newSaleFixture()
	p := f.product(t, 10)

	f.products.On("FindByID", mock.Anything, f.userID, p.ID).Return(p, nil)
	f.products.On("Save", mock.Anything, p).Return(nil)
	f.sales.On("Save", mock.Anything, mock.AnythingOfType("*trade.Sale")).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(events []shared.DomainEvent) bool {
		return len(events) == 1 && events[0].EventType() == trade.EventTypeSaleRecorded
	})).Return(nil)

	resp, err := f.svc.Create(context.Background(), f.userID, CreateSaleRequest{ProductID: p.ID, Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(7), p.Quantity)
	assert.Equal(t, "2400", resp.Total.String())
	assert.Equal(t, "cash", resp.PaymentMethod)
	f.publisher.AssertExpectations(t)
}

func TestSaleService_Create_LowStockEventPublished(t *testing.T) {
	f := newSaleFixture()
	p := f.product(t, 3)

	f.products.On("FindByID", mock.Anything, f.userID, p.ID).Return(p, nil)
	f.products.On("Save", mock.Anything, p).Return(nil)
	f.sales.On("Save", mock.Anything, mock.Anything).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(events []shared.DomainEvent) bool {
		return len(events) == 2 && events[1].EventType() == catalog.EventTypeProductLowStock
	})).Return(nil)

	price := decimal.NewFromInt(750)
	resp, err := f.svc.Create(context.Background(), f.userID, CreateSaleRequest{ProductID: p.ID, Quantity: 2, UnitPrice: &price})
	require.NoError(t, err)
	assert.Equal(t, "1500", resp.Total.String())
	f.publisher.AssertExpectations(t)
}

func TestSaleService_Create_InsufficientStock(t *testing.T) {
	f := newSaleFixture()
	p := f.product(t, 1)
	f.products.On("FindByID", mock.Anything, f.userID, p.ID).Return(p, nil)

	_, err := f.svc.Create(context.Background(), f.userID, CreateSaleRequest{ProductID: p.ID, Quantity: 5})
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	f.sales.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestSaleService_Create_UnknownProductOrCustomer(t *testing.T) {
	f := newSaleFixture()
	productID := uuid.New()
	f.products.On("FindByID", mock.Anything, f.userID, productID).Return(nil, shared.ErrNotFound)

	_, err := f.svc.Create(context.Background(), f.userID, CreateSaleRequest{ProductID: productID, Quantity: 1})
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_PRODUCT", de.Code)

	customerID := uuid.New()
	f.customers.On("ExistsForOwner", mock.Anything, f.userID, customerID).Return(false, nil)
	_, err = f.svc.Create(context.Background(), f.userID, CreateSaleRequest{ProductID: productID, CustomerID: &customerID, Quantity: 1})
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_CUSTOMER", de.Code)
}

func TestSaleService_Update_AppliesDelta(t *testing.T) {
	f := newSaleFixture()
	p := f.product(t, 10)
	sale, err := trade.NewSale(f.userID, trade.SaleDetails{ProductID: p.ID, Quantity: 4, UnitPrice: decimal.NewFromInt(800)})
	require.NoError(t, err)
	sale.ClearDomainEvents()

	f.sales.On("FindByID", mock.Anything, f.userID, sale.ID).Return(sale, nil)
	f.sales.On("Save", mock.Anything, sale).Return(nil)
	f.products.On("FindByID", mock.Anything, f.userID, p.ID).Return(p, nil)
	f.products.On("Save", mock.Anything, p).Return(nil)

	resp, err := f.svc.Update(context.Background(), f.userID, sale.ID, UpdateSaleRequest{Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Quantity)
	assert.Equal(t, int64(13), p.Quantity)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestSaleService_Update_SameQuantityLeavesStock(t *testing.T) {
	f := newSaleFixture()
	sale, err := trade.NewSale(f.userID, trade.SaleDetails{ProductID: uuid.New(), Quantity: 4, UnitPrice: decimal.NewFromInt(10)})
	require.NoError(t, err)

	f.sales.On("FindByID", mock.Anything, f.userID, sale.ID).Return(sale, nil)
	f.sales.On("Save", mock.Anything, sale).Return(nil)

	resp, err := f.svc.Update(context.Background(), f.userID, sale.ID, UpdateSaleRequest{Quantity: 4, Notes: "paid late"})
	require.NoError(t, err)
	assert.Equal(t, "paid late", resp.Notes)
	f.products.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything, mock.Anything)
}

func TestSaleService_Delete_RestoresStock(t *testing.T) {
	f := newSaleFixture()
	p := f.product(t, 5)
	sale, err := trade.NewSale(f.userID, trade.SaleDetails{ProductID: p.ID, Quantity: 3, UnitPrice: decimal.NewFromInt(1)})
	require.NoError(t, err)

	f.sales.On("FindByID", mock.Anything, f.userID, sale.ID).Return(sale, nil)
	f.products.On("FindByID", mock.Anything, f.userID, p.ID).Return(p, nil)
	f.products.On("Save", mock.Anything, p).Return(nil)
	f.sales.On("Delete", mock.Anything, f.userID, sale.ID).Return(nil)

	require.NoError(t, f.svc.Delete(context.Background(), f.userID, sale.ID))
	assert.Equal(t, int64(8), p.Quantity)
}

func TestSaleService_Delete_ProductGone(t *testing.T) {
	f := newSaleFixture()
	sale, err := trade.NewSale(f.userID, trade.SaleDetails{ProductID: uuid.New(), Quantity: 3, UnitPrice: decimal.NewFromInt(1)})
	require.NoError(t, err)

	f.sales.On("FindByID", mock.Anything, f.userID, sale.ID).Return(sale, nil)
	f.products.On("FindByID", mock.Anything, f.userID, sale.ProductID).Return(nil, shared.ErrNotFound)
	f.sales.On("Delete", mock.Anything, f.userID, sale.ID).Return(nil)

	require.NoError(t, f.svc.Delete(context.Background(), f.userID, sale.ID))
	f.products.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSaleService_List_BuildsFilter(t *testing.T) {
	f := newSaleFixture()
	productID := uuid.New()
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	f.sales.On("FindAll", mock.Anything, f.userID, mock.MatchedBy(func(fl shared.Filter) bool {
		return fl.Filters["product_id"] == productID && fl.Filters["from"] == from && fl.Filters["payment_method"] == "card"
	})).Return([]*trade.Sale{}, int64(0), nil)

	out, total, err := f.svc.List(context.Background(), f.userID, SaleListFilter{ProductID: &productID, From: &from, PaymentMethod: "card"})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Zero(t, total)
}
