package shipping

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrCourierNotConfigured = errors.New("shipping: courier not configured")
	ErrCourierUnavailable   = errors.New("shipping: courier temporarily unavailable")
	ErrCourierAuthFailed    = errors.New("shipping: courier authentication failed")
	ErrCourierRejected      = errors.New("shipping: courier rejected the request")
	ErrCourierBadResponse   = errors.New("shipping: invalid courier response")
)

// Courier is the port to a delivery company
type Courier interface {
	// Name identifies the courier in logs and shipment records
	Name() string

	// Cities lists the cities the courier delivers to
	Cities(ctx context.Context) ([]City, error)

	// Zones lists the zones of one city
	Zones(ctx context.Context, cityID int) ([]Zone, error)

	// CreateDelivery books a pickup for one order
	CreateDelivery(ctx context.Context, req DeliveryRequest) (*Consignment, error)
}

// DeliveryRequest is everything the courier needs to pick up and deliver
// one order
type DeliveryRequest struct {
	StoreID          int
	MerchantOrderID  string
	RecipientName    string
	RecipientPhone   string
	RecipientAddress string
	CityID           int
	ZoneID           int
	ItemQuantity     int
	ItemWeight       decimal.Decimal
	ItemDescription  string
	AmountToCollect  decimal.Decimal
	Instruction      string
}

// Consignment is the courier's receipt for a booked delivery
type Consignment struct {
	ConsignmentID string
	Status        string
	DeliveryFee   decimal.Decimal
}
