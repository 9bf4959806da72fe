package shipping

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/murdhanno/backend/internal/domain/shared"
	"github.com/murdhanno/backend/internal/domain/shipping"
	"github.com/murdhanno/backend/internal/domain/trade"
	"github.com/murdhanno/backend/internal/infrastructure/logger"
	"github.com/murdhanno/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const serviceName = "ShippingService"

// Config holds the shipping defaults
type Config struct {
	DefaultStoreID int
	DefaultWeight  decimal.Decimal
	// LocationTTL is how long cached cities and zones are served before the
	// courier is asked again
	LocationTTL time.Duration
}

// ShippingService books deliveries with the courier and serves its city and
// zone lists from a local cache
type ShippingService struct {
	courier        shipping.Courier
	locations      shipping.LocationRepository
	shipments      shipping.ShipmentRepository
	orders         trade.OrderRepository
	txScope        TransactionScope
	config         Config
	eventPublisher shared.EventPublisher
	now            func() time.Time
}

// NewShippingService creates a new ShippingService
func NewShippingService(
	courier shipping.Courier,
	locations shipping.LocationRepository,
	shipments shipping.ShipmentRepository,
	orders trade.OrderRepository,
	txScope TransactionScope,
	config Config,
) *ShippingService {
	if config.DefaultWeight.IsZero() {
		config.DefaultWeight = decimal.RequireFromString("0.5")
	}
	return &ShippingService{
		courier:   courier,
		locations: locations,
		shipments: shipments,
		orders:    orders,
		txScope:   txScope,
		config:    config,
		now:       time.Now,
	}
}

// SetEventPublisher sets the event publisher for shipment events
func (s *ShippingService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// ListCities serves cached cities while they are fresh. Otherwise the
// courier is asked; when it fails, stale cache beats an error.
func (s *ShippingService) ListCities(ctx context.Context, q LocationQuery) ([]CityResponse, error) {
	cached, err := s.locations.Cities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load cities: %w", err)
	}
	if !q.Refresh && shipping.AllFresh(cached, s.now(), s.config.LocationTTL) {
		return toCityResponses(cached), nil
	}

	fetched, err := s.courier.Cities(ctx)
	if err != nil {
		if len(cached) > 0 {
			logger.L(ctx).Warn("courier city list unavailable, serving cache", zap.Error(err))
			return toCityResponses(cached), nil
		}
		return nil, courierError(err)
	}
	if err := s.locations.SaveCities(ctx, fetched); err != nil {
		logger.L(ctx).Warn("failed to cache courier cities", zap.Error(err))
	}
	slices.SortFunc(fetched, func(a, b shipping.City) int { return strings.Compare(a.Name, b.Name) })
	return toCityResponses(fetched), nil
}

// ListZones is ListCities for the zones of one city
func (s *ShippingService) ListZones(ctx context.Context, cityID int, q LocationQuery) ([]ZoneResponse, error) {
	if cityID <= 0 {
		return nil, shared.NewDomainError("INVALID_CITY", "City ID must be positive")
	}
	cached, err := s.locations.Zones(ctx, cityID)
	if err != nil {
		return nil, fmt.Errorf("failed to load zones: %w", err)
	}
	if !q.Refresh && shipping.ZonesFresh(cached, s.now(), s.config.LocationTTL) {
		return toZoneResponses(cached), nil
	}

	fetched, err := s.courier.Zones(ctx, cityID)
	if err != nil {
		if len(cached) > 0 {
			logger.L(ctx).Warn("courier zone list unavailable, serving cache",
				zap.Int("city_id", cityID), zap.Error(err))
			return toZoneResponses(cached), nil
		}
		return nil, courierError(err)
	}
	if err := s.locations.SaveZones(ctx, fetched); err != nil {
		logger.L(ctx).Warn("failed to cache courier zones", zap.Int("city_id", cityID), zap.Error(err))
	}
	slices.SortFunc(fetched, func(a, b shipping.Zone) int { return strings.Compare(a.Name, b.Name) })
	return toZoneResponses(fetched), nil
}

// RequestShipping books a pickup for the order and records the consignment.
// An order is shipped once; the owner or an admin may ask.
func (s *ShippingService) RequestShipping(ctx context.Context, actor shared.Actor, orderID uuid.UUID, req ShippingRequest) (resp *ShipmentResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "RequestShipping")
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(order.CreatedBy) {
		return nil, shared.NewDomainError("FORBIDDEN", "Access denied")
	}
	if order.ShippingRequested {
		return nil, shared.NewDomainError("SHIPPING_ALREADY_REQUESTED", "Shipping already requested for this order")
	}
	if order.Status == trade.OrderStatusCancelled {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot ship an order that is "+order.Status.String())
	}

	storeID := req.StoreID
	if storeID == 0 {
		storeID = s.config.DefaultStoreID
	}
	if storeID <= 0 {
		return nil, shared.NewDomainError("INVALID_STORE", "A courier store must be selected")
	}
	weight := s.config.DefaultWeight
	if req.ItemWeight != nil {
		if !req.ItemWeight.IsPositive() {
			return nil, shared.NewDomainError("INVALID_ITEM_WEIGHT", "Item weight must be positive")
		}
		weight = *req.ItemWeight
	}

	consignment, err := s.courier.CreateDelivery(ctx, shipping.DeliveryRequest{
		StoreID:          storeID,
		MerchantOrderID:  strconv.FormatInt(order.Number, 10),
		RecipientName:    order.Customer.Name,
		RecipientPhone:   order.Customer.Phone,
		RecipientAddress: order.Customer.Address,
		CityID:           req.CityID,
		ZoneID:           req.ZoneID,
		ItemQuantity:     order.ItemCount(),
		ItemWeight:       weight,
		ItemDescription:  describeItems(order),
		AmountToCollect:  order.TotalAmount,
		Instruction:      req.Instruction,
	})
	if err != nil {
		return nil, courierError(err)
	}

	shipment, err := shipping.NewShipment(order.ID, order.Number, s.courier.Name(), storeID, *consignment)
	if err != nil {
		return nil, err
	}
	city, zone := s.locationNames(ctx, req.CityID, req.ZoneID)

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.ShipmentRepo().Save(ctx, shipment); err != nil {
			return err
		}
		if err := order.RequestShipping(city, zone); err != nil {
			return err
		}
		return repos.OrderRepo().Save(ctx, order)
	})
	if err != nil {
		// the courier already holds the consignment; keep its ID in the log
		// so the record can be repaired by hand
		logger.L(ctx).Error("courier accepted the order but the shipment was not stored",
			zap.Int64("order_number", order.Number),
			zap.String("consignment_id", shipment.ConsignmentID),
			zap.Error(err),
		)
		return nil, err
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrOrderNumber, order.Number)
	logger.L(ctx).Info("shipping requested",
		zap.Int64("order_number", order.Number),
		zap.String("courier", shipment.Courier),
		zap.String("consignment_id", shipment.ConsignmentID),
		zap.String("delivery_fee", shipment.DeliveryFee.String()),
	)
	if err := shared.PublishAndClear(ctx, s.eventPublisher, shipment); err != nil {
		logger.L(ctx).Warn("failed to publish shipment events",
			zap.String("shipment_id", shipment.ID.String()), zap.Error(err))
	}

	response := toShipmentResponse(shipment)
	return &response, nil
}

// GetShipment returns the shipment booked for an order
func (s *ShippingService) GetShipment(ctx context.Context, actor shared.Actor, orderID uuid.UUID) (*ShipmentResponse, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(order.CreatedBy) {
		return nil, shared.NewDomainError("FORBIDDEN", "Access denied")
	}
	shipment, err := s.shipments.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := toShipmentResponse(shipment)
	return &response, nil
}

// locationNames looks up cached names; unknown IDs leave the order's names
func (s *ShippingService) locationNames(ctx context.Context, cityID, zoneID int) (string, string) {
	city, err := s.locations.CityName(ctx, cityID)
	if err != nil {
		logger.L(ctx).Warn("failed to look up city name", zap.Int("city_id", cityID), zap.Error(err))
	}
	zone, err := s.locations.ZoneName(ctx, zoneID)
	if err != nil {
		logger.L(ctx).Warn("failed to look up zone name", zap.Int("zone_id", zoneID), zap.Error(err))
	}
	return city, zone
}

// describeItems lists "name xN" per line for the courier's parcel note
func describeItems(order *trade.Order) string {
	parts := make([]string, len(order.Items))
	for i, item := range order.Items {
		parts[i] = item.ProductName + " x" + strconv.Itoa(item.Quantity)
	}
	return strings.Join(parts, ", ")
}

// courierError turns courier port failures into coded domain errors
func courierError(err error) error {
	switch {
	case errors.Is(err, shipping.ErrCourierNotConfigured):
		return shared.NewDomainError("COURIER_NOT_CONFIGURED", "No courier is configured")
	case errors.Is(err, shipping.ErrCourierRejected):
		return shared.NewDomainError("COURIER_REJECTED", err.Error())
	case errors.Is(err, shipping.ErrCourierUnavailable),
		errors.Is(err, shipping.ErrCourierAuthFailed),
		errors.Is(err, shipping.ErrCourierBadResponse):
		return shared.NewDomainError("COURIER_UNAVAILABLE", "Courier service is unavailable, please try again later")
	default:
		return err
	}
}
