package catalog

import (
	"context"
	"testing"

	"github.com/bizhub/backend/internal/domain/catalog"
	"github.com/bizhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockProductRepository is a mock implementation of catalog.ProductRepository
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

// MockEventPublisher records published events
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	return m.Called(ctx, events).Error(0)
}

func TestProductService_Create(t *testing.T) {
	repo := new(MockProductRepository)
	svc := NewProductService(repo, nil, zap.NewNop())
	userID := uuid.New()

	repo.On("ExistsBySKU", mock.Anything, userID, "rice-50", uuid.Nil).Return(false, nil)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*catalog.Product")).Return(nil)

	resp, err := svc.Create(context.Background(), userID, CreateProductRequest{
		Name: "Rice", SKU: "rice-50", Price: decimal.NewFromInt(50), Cost: decimal.NewFromInt(40), Quantity: 12,
	})
	require.NoError(t, err)
	assert.Equal(t, "RICE-50", resp.SKU)
	assert.Equal(t, "10", resp.Margin.String())
	assert.Equal(t, catalog.DefaultLowStockThreshold, resp.LowStockThreshold)
	assert.False(t, resp.LowStock)
}

func TestProductService_Create_DuplicateSKU(t *testing.T) {
	repo := new(MockProductRepository)
	svc := NewProductService(repo, nil, zap.NewNop())
	userID := uuid.New()
	repo.On("ExistsBySKU", mock.Anything, userID, "X1", uuid.Nil).Return(true, nil)

	_, err := svc.Create(context.Background(), userID, CreateProductRequest{Name: "X", SKU: "X1"})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestProductService_Update_SetsStockAndPublishesLowStock(t *testing.T) {
	repo := new(MockProductRepository)
	publisher := new(MockEventPublisher)
	svc := NewProductService(repo, publisher, zap.NewNop())
	userID := uuid.New()

	product, err := catalog.NewProduct(userID, catalog.ProductDetails{Name: "Beans"}, 20)
	require.NoError(t, err)
	repo.On("FindByID", mock.Anything, userID, product.ID).Return(product, nil)
	repo.On("Save", mock.Anything, product).Return(nil)
	publisher.On("Publish", mock.Anything, mock.MatchedBy(func(events []shared.DomainEvent) bool {
		return len(events) == 1 && events[0].EventType() == catalog.EventTypeProductLowStock
	})).Return(nil)

	qty := int64(3)
	resp, err := svc.Update(context.Background(), userID, product.ID, UpdateProductRequest{Name: "Beans", Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.Quantity)
	assert.True(t, resp.LowStock)
	publisher.AssertExpectations(t)
	assert.Empty(t, product.GetDomainEvents())
}

func TestProductService_List_Filters(t *testing.T) {
	repo := new(MockProductRepository)
	svc := NewProductService(repo, nil, zap.NewNop())
	userID := uuid.New()
	low := true

	repo.On("FindAll", mock.Anything, userID, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Filters["category"] == "grains" && f.Filters["low_stock"] == true
	})).Return([]*catalog.Product{}, int64(0), nil)

	list, total, err := svc.List(context.Background(), userID, ProductListFilter{Category: "grains", LowStock: &low})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Zero(t, total)
}
