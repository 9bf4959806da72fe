package trade

import (
	"context"

	"github.com/murdhanno/backend/internal/domain/catalog"
	"github.com/murdhanno/backend/internal/domain/trade"
)

// TransactionScope runs order placement atomically: the order row, its items
// and every stock change commit together or not at all.
type TransactionScope interface {
	// Execute runs fn in one transaction and rolls back when fn fails
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories hands out repositories bound to the running
// transaction
type TransactionalRepositories interface {
	OrderRepo() trade.OrderRepository
	ProductRepo() catalog.ProductRepository
}

// NoOpTransactionScope runs fn directly on the given repositories. Tests use
// it with mocks.
type NoOpTransactionScope struct {
	orderRepo   trade.OrderRepository
	productRepo catalog.ProductRepository
}

func NewNoOpTransactionScope(orderRepo trade.OrderRepository, productRepo catalog.ProductRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{orderRepo: orderRepo, productRepo: productRepo}
}

func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) OrderRepo() trade.OrderRepository {
	return s.orderRepo
}

func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository {
	return s.productRepo
}
