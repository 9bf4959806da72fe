package persistence

import (
	"context"

	shippingapp "github.com/murdhanno/backend/internal/application/shipping"
	tradeapp "github.com/murdhanno/backend/internal/application/trade"
	"github.com/murdhanno/backend/internal/domain/catalog"
	"github.com/murdhanno/backend/internal/domain/shipping"
	"github.com/murdhanno/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// GormTransactionScope implements tradeapp.TransactionScope with a GORM
// transaction
type GormTransactionScope struct {
	db *gorm.DB
}

func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute commits when fn returns nil and rolls back otherwise
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos tradeapp.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) OrderRepo() trade.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

func (r *gormTransactionalRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

func (r *gormTransactionalRepositories) ShipmentRepo() shipping.ShipmentRepository {
	return NewGormShipmentRepository(r.tx)
}

// GormShippingTransactionScope implements shippingapp.TransactionScope
type GormShippingTransactionScope struct {
	db *gorm.DB
}

func NewGormShippingTransactionScope(db *gorm.DB) *GormShippingTransactionScope {
	return &GormShippingTransactionScope{db: db}
}

func (s *GormShippingTransactionScope) Execute(ctx context.Context, fn func(repos shippingapp.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

var (
	_ tradeapp.TransactionScope             = (*GormTransactionScope)(nil)
	_ tradeapp.TransactionalRepositories    = (*gormTransactionalRepositories)(nil)
	_ shippingapp.TransactionScope          = (*GormShippingTransactionScope)(nil)
	_ shippingapp.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
