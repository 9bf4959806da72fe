package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/murdhanno/backend/internal/domain/shared"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByID returns shared.ErrNotFound when no order matches
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByNumber finds an order by its invoice number
	FindByNumber(ctx context.Context, number int64) (*Order, error)

	// FindAll lists orders with their items
	FindAll(ctx context.Context, filter OrderFilter) ([]Order, error)

	// Count returns the number of orders matching the filter
	Count(ctx context.Context, filter OrderFilter) (int64, error)

	// Save inserts or updates an order and replaces its items
	Save(ctx context.Context, order *Order) error

	// NextNumber reserves the next invoice number
	NextNumber(ctx context.Context) (int64, error)

	// NextItemSerial reserves the next item serial used in tracking codes
	NextItemSerial(ctx context.Context) (int64, error)
}

// OrderFilter narrows order listings
type OrderFilter struct {
	shared.Filter
	Status    *OrderStatus
	CreatedBy *uuid.UUID
	From      *time.Time
	To        *time.Time
}
