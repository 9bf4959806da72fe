package shipping

import (
	"context"

	"github.com/murdhanno/backend/internal/domain/shipping"
	"github.com/murdhanno/backend/internal/domain/trade"
)

// TransactionScope stores a booked shipment and the order's shipping flag
// together
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories hands out repositories bound to the running
// transaction
type TransactionalRepositories interface {
	OrderRepo() trade.OrderRepository
	ShipmentRepo() shipping.ShipmentRepository
}

// NoOpTransactionScope runs fn directly on the given repositories
type NoOpTransactionScope struct {
	orderRepo    trade.OrderRepository
	shipmentRepo shipping.ShipmentRepository
}

func NewNoOpTransactionScope(orderRepo trade.OrderRepository, shipmentRepo shipping.ShipmentRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{orderRepo: orderRepo, shipmentRepo: shipmentRepo}
}

func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) OrderRepo() trade.OrderRepository {
	return s.orderRepo
}

func (s *NoOpTransactionScope) ShipmentRepo() shipping.ShipmentRepository {
	return s.shipmentRepo
}
