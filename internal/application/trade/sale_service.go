package trade

import (
	"context"
	"errors"

	"github.com/bizhub/backend/internal/domain/catalog"
	"github.com/bizhub/backend/internal/domain/partner"
	"github.com/bizhub/backend/internal/domain/shared"
	"github.com/bizhub/backend/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SaleService records sales and keeps product stock in step with them
type SaleService struct {
	saleRepo       trade.SaleRepository
	customerRepo   partner.CustomerRepository
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewSaleService creates a new SaleService
func NewSaleService(
	saleRepo trade.SaleRepository,
	customerRepo partner.CustomerRepository,
	txScope TransactionScope,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *SaleService {
	return &SaleService{
		saleRepo:       saleRepo,
		customerRepo:   customerRepo,
		txScope:        txScope,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// Create records a sale and removes its quantity from stock in one
// transaction. Insufficient stock rejects the sale.
func (s *SaleService) Create(ctx context.Context, userID uuid.UUID, req CreateSaleRequest) (*SaleResponse, error) {
	if err := s.checkCustomer(ctx, userID, req.CustomerID); err != nil {
		return nil, err
	}

	var sale *trade.Sale
	var product *catalog.Product
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		product, err = findProduct(ctx, repos.ProductRepo(), userID, req.ProductID)
		if err != nil {
			return err
		}

		d := trade.SaleDetails{
			ProductID:     product.ID,
			CustomerID:    req.CustomerID,
			Quantity:      req.Quantity,
			UnitPrice:     product.Price,
			PaymentMethod: trade.PaymentMethod(req.PaymentMethod),
			Notes:         req.Notes,
		}
		if req.UnitPrice != nil {
			d.UnitPrice = *req.UnitPrice
		}
		if req.SoldAt != nil {
			d.SoldAt = *req.SoldAt
		}
		sale, err = trade.NewSale(userID, d)
		if err != nil {
			return err
		}

		if err := product.AdjustStock(-sale.Quantity); err != nil {
			return err
		}
		if err := repos.ProductRepo().Save(ctx, product); err != nil {
			return err
		}
		return repos.SaleRepo().Save(ctx, sale)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, sale.GetDomainEvents(), product.GetDomainEvents())
	sale.ClearDomainEvents()
	product.ClearDomainEvents()

	response := ToSaleResponse(sale)
	return &response, nil
}

// GetByID retrieves a sale by ID
func (s *SaleService) GetByID(ctx context.Context, userID, saleID uuid.UUID) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindByID(ctx, userID, saleID)
	if err != nil {
		return nil, err
	}
	response := ToSaleResponse(sale)
	return &response, nil
}

// List retrieves a page of sales
func (s *SaleService) List(ctx context.Context, userID uuid.UUID, filter SaleListFilter) ([]SaleResponse, int64, error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  map[string]any{},
	}
	if filter.ProductID != nil {
		domainFilter.Filters["product_id"] = *filter.ProductID
	}
	if filter.CustomerID != nil {
		domainFilter.Filters["customer_id"] = *filter.CustomerID
	}
	if filter.PaymentMethod != "" {
		domainFilter.Filters["payment_method"] = filter.PaymentMethod
	}
	if filter.From != nil {
		domainFilter.Filters["from"] = *filter.From
	}
	if filter.To != nil {
		// to is an inclusive calendar day
		domainFilter.Filters["to"] = filter.To.AddDate(0, 0, 1)
	}

	sales, total, err := s.saleRepo.FindAll(ctx, userID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]SaleResponse, len(sales))
	for i, sale := range sales {
		out[i] = ToSaleResponse(sale)
	}
	return out, total, nil
}

// Update changes a sale and moves stock by the change in quantity
func (s *SaleService) Update(ctx context.Context, userID, saleID uuid.UUID, req UpdateSaleRequest) (*SaleResponse, error) {
	if err := s.checkCustomer(ctx, userID, req.CustomerID); err != nil {
		return nil, err
	}

	var sale *trade.Sale
	var product *catalog.Product
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		sale, err = repos.SaleRepo().FindByID(ctx, userID, saleID)
		if err != nil {
			return err
		}

		d := trade.SaleDetails{
			ProductID:     sale.ProductID,
			CustomerID:    req.CustomerID,
			Quantity:      req.Quantity,
			UnitPrice:     sale.UnitPrice,
			PaymentMethod: trade.PaymentMethod(req.PaymentMethod),
			Notes:         req.Notes,
			SoldAt:        sale.SoldAt,
		}
		if req.UnitPrice != nil {
			d.UnitPrice = *req.UnitPrice
		}
		if req.SoldAt != nil {
			d.SoldAt = *req.SoldAt
		}
		delta, err := sale.Update(d)
		if err != nil {
			return err
		}

		if delta != 0 {
			product, err = findProduct(ctx, repos.ProductRepo(), userID, sale.ProductID)
			if err != nil {
				return err
			}
			if err := product.AdjustStock(-delta); err != nil {
				return err
			}
			if err := repos.ProductRepo().Save(ctx, product); err != nil {
				return err
			}
		}
		return repos.SaleRepo().Save(ctx, sale)
	})
	if err != nil {
		return nil, err
	}

	if product != nil {
		s.publish(ctx, product.GetDomainEvents())
		product.ClearDomainEvents()
	}

	response := ToSaleResponse(sale)
	return &response, nil
}

// Delete removes a sale and returns its quantity to stock. A sale whose
// product was deleted is removed without a stock change.
func (s *SaleService) Delete(ctx context.Context, userID, saleID uuid.UUID) error {
	return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		sale, err := repos.SaleRepo().FindByID(ctx, userID, saleID)
		if err != nil {
			return err
		}

		product, err := repos.ProductRepo().FindByID(ctx, userID, sale.ProductID)
		switch {
		case err == nil:
			if err := product.AdjustStock(sale.Quantity); err != nil {
				return err
			}
			if err := repos.ProductRepo().Save(ctx, product); err != nil {
				return err
			}
		case !errors.Is(err, shared.ErrNotFound):
			return err
		}
		return repos.SaleRepo().Delete(ctx, userID, saleID)
	})
}

func (s *SaleService) checkCustomer(ctx context.Context, userID uuid.UUID, customerID *uuid.UUID) error {
	if customerID == nil {
		return nil
	}
	ok, err := s.customerRepo.ExistsForOwner(ctx, userID, *customerID)
	if err != nil {
		return err
	}
	if !ok {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer not found")
	}
	return nil
}

func findProduct(ctx context.Context, repo catalog.ProductRepository, userID, productID uuid.UUID) (*catalog.Product, error) {
	product, err := repo.FindByID(ctx, userID, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_PRODUCT", "Product not found")
		}
		return nil, err
	}
	return product, nil
}

// publish sends events after commit. A failure is logged and never undoes
// the sale.
func (s *SaleService) publish(ctx context.Context, groups ...[]shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	var events []shared.DomainEvent
	for _, g := range groups {
		events = append(events, g...)
	}
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish sale events", zap.Error(err))
	}
}
