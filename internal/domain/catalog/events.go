package catalog

import (
	"github.com/google/uuid"
	"github.com/murdhanno/backend/internal/domain/shared"
)

const AggregateTypeProduct = "Product"

const (
	EventTypeProductCreated = "ProductCreated"
	EventTypeStockReduced   = "StockReduced"
	EventTypeLowStock       = "LowStock"
)

// ProductCreatedEvent is raised when a product enters the catalog
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	Name     string `json:"name"`
	Code     string `json:"code"`
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

func NewProductCreatedEvent(p *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductCreated, AggregateTypeProduct, p.ID),
		Name:            p.Name,
		Code:            p.Code,
		Size:            p.Size,
		Quantity:        p.Quantity,
	}
}

// StockReducedEvent is raised every time an order draws from a product
type StockReducedEvent struct {
	shared.BaseDomainEvent
	Taken     int `json:"taken"`
	Remaining int `json:"remaining"`
}

func NewStockReducedEvent(p *Product, taken int) *StockReducedEvent {
	return &StockReducedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReduced, AggregateTypeProduct, p.ID),
		Taken:           taken,
		Remaining:       p.Quantity,
	}
}

// LowStockEvent is raised when stock falls below LowStockThreshold
type LowStockEvent struct {
	shared.BaseDomainEvent
	ProductTypeID uuid.UUID `json:"product_type_id"`
	Name          string    `json:"name"`
	Size          string    `json:"size"`
	Remaining     int       `json:"remaining"`
}

func NewLowStockEvent(p *Product) *LowStockEvent {
	return &LowStockEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLowStock, AggregateTypeProduct, p.ID),
		ProductTypeID:   p.ProductTypeID,
		Name:            p.Name,
		Size:            p.Size,
		Remaining:       p.Quantity,
	}
}
