package trade

import (
	"context"

	"github.com/bizhub/backend/internal/domain/catalog"
	"github.com/bizhub/backend/internal/domain/trade"
)

// TransactionScope runs sale and stock changes atomically. If fn returns an
// error the transaction is rolled back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories share one database transaction
type TransactionalRepositories interface {
	ProductRepo() catalog.ProductRepository
	SaleRepo() trade.SaleRepository
}

// NoOpTransactionScope runs fn against plain repositories without a
// transaction. Tests use it with mocks.
type NoOpTransactionScope struct {
	productRepo catalog.ProductRepository
	saleRepo    trade.SaleRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(productRepo catalog.ProductRepository, saleRepo trade.SaleRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{productRepo: productRepo, saleRepo: saleRepo}
}

// Execute runs fn directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository { return s.productRepo }

func (s *NoOpTransactionScope) SaleRepo() trade.SaleRepository { return s.saleRepo }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
