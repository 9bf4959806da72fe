package shipping

import (
	"github.com/google/uuid"
	"github.com/murdhanno/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const AggregateTypeShipment = "Shipment"

const (
	EventTypeShipmentRequested     = "ShipmentRequested"
	EventTypeShipmentStatusChanged = "ShipmentStatusChanged"
)

// ShipmentRequestedEvent is raised when a courier accepts an order
type ShipmentRequestedEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID       `json:"order_id"`
	OrderNumber   int64           `json:"order_number"`
	Courier       string          `json:"courier"`
	ConsignmentID string          `json:"consignment_id"`
	DeliveryFee   decimal.Decimal `json:"delivery_fee"`
}

func NewShipmentRequestedEvent(s *Shipment) *ShipmentRequestedEvent {
	return &ShipmentRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShipmentRequested, AggregateTypeShipment, s.ID),
		OrderID:         s.OrderID,
		OrderNumber:     s.OrderNumber,
		Courier:         s.Courier,
		ConsignmentID:   s.ConsignmentID,
		DeliveryFee:     s.DeliveryFee,
	}
}

type ShipmentStatusChangedEvent struct {
	shared.BaseDomainEvent
	ConsignmentID string `json:"consignment_id"`
	OldStatus     string `json:"old_status"`
	NewStatus     string `json:"new_status"`
}

func NewShipmentStatusChangedEvent(s *Shipment, old string) *ShipmentStatusChangedEvent {
	return &ShipmentStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShipmentStatusChanged, AggregateTypeShipment, s.ID),
		ConsignmentID:   s.ConsignmentID,
		OldStatus:       old,
		NewStatus:       s.Status,
	}
}
