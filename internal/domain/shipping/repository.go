package shipping

import (
	"context"

	"github.com/google/uuid"
)

// ShipmentRepository persists shipments. An order has at most one.
type ShipmentRepository interface {
	// FindByOrderID returns shared.ErrNotFound when the order was never shipped
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*Shipment, error)

	Save(ctx context.Context, shipment *Shipment) error
}

// LocationRepository caches the courier's city and zone lists
type LocationRepository interface {
	Cities(ctx context.Context) ([]City, error)

	// SaveCities upserts by city ID
	SaveCities(ctx context.Context, cities []City) error

	Zones(ctx context.Context, cityID int) ([]Zone, error)

	// SaveZones upserts by zone ID
	SaveZones(ctx context.Context, zones []Zone) error

	// CityName and ZoneName return "" for unknown IDs
	CityName(ctx context.Context, cityID int) (string, error)
	ZoneName(ctx context.Context, zoneID int) (string, error)
}
