package shipping

import (
	"strings"

	"github.com/google/uuid"
	"github.com/murdhanno/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// StatusPending is the status of a consignment the courier has not picked up
const StatusPending = "Pending"

var transitStatuses = map[string]bool{
	"pickup_requested": true,
	"picked_up":        true,
	"in_transit":       true,
	"out_for_delivery": true,
}

// Shipment records a delivery booked with a courier for one order
type Shipment struct {
	shared.BaseAggregateRoot
	OrderID       uuid.UUID
	OrderNumber   int64
	Courier       string
	StoreID       int
	ConsignmentID string
	Status        string
	DeliveryFee   decimal.Decimal
}

// NewShipment records a consignment the courier accepted
func NewShipment(orderID uuid.UUID, orderNumber int64, courier string, storeID int, c Consignment) (*Shipment, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Shipment must belong to an order")
	}
	if strings.TrimSpace(c.ConsignmentID) == "" {
		return nil, shared.NewDomainError("INVALID_CONSIGNMENT", "Courier did not return a consignment ID")
	}
	status := c.Status
	if status == "" {
		status = StatusPending
	}
	fee := c.DeliveryFee
	if fee.IsNegative() {
		fee = decimal.Zero
	}

	s := &Shipment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           orderID,
		OrderNumber:       orderNumber,
		Courier:           courier,
		StoreID:           storeID,
		ConsignmentID:     c.ConsignmentID,
		Status:            status,
		DeliveryFee:       fee,
	}
	s.AddDomainEvent(NewShipmentRequestedEvent(s))
	return s, nil
}

func normalizeStatus(status string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(status)), " ", "_")
}

func (s *Shipment) IsDelivered() bool {
	st := normalizeStatus(s.Status)
	return st == "delivered" || st == "completed"
}

func (s *Shipment) IsPending() bool {
	return normalizeStatus(s.Status) == "pending"
}

func (s *Shipment) IsInTransit() bool {
	return transitStatuses[normalizeStatus(s.Status)]
}

// UpdateStatus records a courier status change. A nil fee keeps the current one.
func (s *Shipment) UpdateStatus(status string, fee *decimal.Decimal) error {
	if strings.TrimSpace(status) == "" {
		return shared.NewDomainError("INVALID_STATUS", "Shipment status is required")
	}
	if fee != nil && fee.IsNegative() {
		return shared.NewDomainError("INVALID_DELIVERY_FEE", "Delivery fee cannot be negative")
	}
	old := s.Status
	s.Status = status
	if fee != nil {
		s.DeliveryFee = *fee
	}
	s.Bump(NewShipmentStatusChangedEvent(s, old))
	return nil
}
