package catalog

import (
	"context"

	"github.com/bizhub/backend/internal/domain/catalog"
	"github.com/bizhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductService handles product-related business operations
type ProductService struct {
	productRepo    catalog.ProductRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository, eventPublisher shared.EventPublisher, logger *zap.Logger) *ProductService {
	return &ProductService{
		productRepo:    productRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, userID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	if err := s.ensureUniqueSKU(ctx, userID, req.SKU, uuid.Nil); err != nil {
		return nil, err
	}

	product, err := catalog.NewProduct(userID, req.details(), req.Quantity)
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, userID, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves a page of products
func (s *ProductService) List(ctx context.Context, userID uuid.UUID, filter ProductListFilter) ([]ProductResponse, int64, error) {
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
	if filter.LowStock != nil {
		domainFilter.Filters["low_stock"] = *filter.LowStock
	}

	products, total, err := s.productRepo.FindAll(ctx, userID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return toProductResponses(products), total, nil
}

// LowStock lists the products at or below their threshold
func (s *ProductService) LowStock(ctx context.Context, userID uuid.UUID) ([]ProductResponse, error) {
	products, err := s.productRepo.FindLowStock(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toProductResponses(products), nil
}

// Update replaces a product's catalog fields and optionally sets its stock
func (s *ProductService) Update(ctx context.Context, userID, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueSKU(ctx, userID, req.SKU, product.ID); err != nil {
		return nil, err
	}
	if req.Quantity != nil {
		err = product.UpdateWithStock(req.details(), *req.Quantity)
	} else {
		err = product.Update(req.details())
	}
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.publish(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// Delete removes a product
func (s *ProductService) Delete(ctx context.Context, userID, productID uuid.UUID) error {
	return s.productRepo.Delete(ctx, userID, productID)
}

func (s *ProductService) ensureUniqueSKU(ctx context.Context, userID uuid.UUID, sku string, excludeID uuid.UUID) error {
	if sku == "" {
		return nil
	}
	exists, err := s.productRepo.ExistsBySKU(ctx, userID, sku, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("ALREADY_EXISTS", "A product with this SKU already exists")
	}
	return nil
}

// publish sends pending product events. Failures are logged only; the
// stock change is already committed.
func (s *ProductService) publish(ctx context.Context, product *catalog.Product) {
	events := product.GetDomainEvents()
	if len(events) == 0 || s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish product events",
			zap.String("product_id", product.ID.String()), zap.Error(err))
	}
	product.ClearDomainEvents()
}
