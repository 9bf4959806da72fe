package shipping

import (
	"time"

	"github.com/google/uuid"
	"github.com/murdhanno/backend/internal/domain/shipping"
	"github.com/shopspring/decimal"
)

// LocationQuery asks for the cached list or a fresh one from the courier
type LocationQuery struct {
	Refresh bool `form:"refresh"`
}

type CityResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type ZoneResponse struct {
	ID     int    `json:"id"`
	CityID int    `json:"city_id"`
	Name   string `json:"name"`
}

// ShippingRequest books a courier pickup for an order. StoreID and
// ItemWeight fall back to the configured defaults.
type ShippingRequest struct {
	StoreID     int              `json:"store_id" binding:"omitempty,min=1"`
	CityID      int              `json:"city_id" binding:"required,min=1"`
	ZoneID      int              `json:"zone_id" binding:"required,min=1"`
	ItemWeight  *decimal.Decimal `json:"item_weight,omitempty"`
	Instruction string           `json:"instruction" binding:"max=200"`
}

// ShipmentResponse represents a booked delivery in API responses
type ShipmentResponse struct {
	ID            uuid.UUID       `json:"id"`
	OrderID       uuid.UUID       `json:"order_id"`
	OrderNumber   int64           `json:"order_number"`
	Courier       string          `json:"courier"`
	StoreID       int             `json:"store_id"`
	ConsignmentID string          `json:"consignment_id"`
	Status        string          `json:"status"`
	DeliveryFee   decimal.Decimal `json:"delivery_fee"`
	Delivered     bool            `json:"delivered"`
	InTransit     bool            `json:"in_transit"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func toCityResponses(cities []shipping.City) []CityResponse {
	out := make([]CityResponse, len(cities))
	for i, c := range cities {
		out[i] = CityResponse{ID: c.ID, Name: c.Name}
	}
	return out
}

func toZoneResponses(zones []shipping.Zone) []ZoneResponse {
	out := make([]ZoneResponse, len(zones))
	for i, z := range zones {
		out[i] = ZoneResponse{ID: z.ID, CityID: z.CityID, Name: z.Name}
	}
	return out
}

func toShipmentResponse(s *shipping.Shipment) ShipmentResponse {
	return ShipmentResponse{
		ID:            s.ID,
		OrderID:       s.OrderID,
		OrderNumber:   s.OrderNumber,
		Courier:       s.Courier,
		StoreID:       s.StoreID,
		ConsignmentID: s.ConsignmentID,
		Status:        s.Status,
		DeliveryFee:   s.DeliveryFee,
		Delivered:     s.IsDelivered(),
		InTransit:     s.IsInTransit(),
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}
