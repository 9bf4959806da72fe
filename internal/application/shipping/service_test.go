package shipping

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/murdhanno/backend/internal/domain/shared"
	"github.com/murdhanno/backend/internal/domain/shipping"
	"github.com/murdhanno/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCourier struct {
	mock.Mock
}

func (m *MockCourier) Name() string { return "pathao" }

func (m *MockCourier) Cities(ctx context.Context) ([]shipping.City, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]shipping.City), args.Error(1)
}

func (m *MockCourier) Zones(ctx context.Context, cityID int) ([]shipping.Zone, error) {
	args := m.Called(ctx, cityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]shipping.Zone), args.Error(1)
}

func (m *MockCourier) CreateDelivery(ctx context.Context, req shipping.DeliveryRequest) (*shipping.Consignment, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.Consignment), args.Error(1)
}

type MockLocationRepository struct {
	mock.Mock
}

func (m *MockLocationRepository) Cities(ctx context.Context) ([]shipping.City, error) {
	args := m.Called(ctx)
	return args.Get(0).([]shipping.City), args.Error(1)
}

func (m *MockLocationRepository) SaveCities(ctx context.Context, cities []shipping.City) error {
	return m.Called(ctx, cities).Error(0)
}

func (m *MockLocationRepository) Zones(ctx context.Context, cityID int) ([]shipping.Zone, error) {
	args := m.Called(ctx, cityID)
	return args.Get(0).([]shipping.Zone), args.Error(1)
}

func (m *MockLocationRepository) SaveZones(ctx context.Context, zones []shipping.Zone) error {
	return m.Called(ctx, zones).Error(0)
}

func (m *MockLocationRepository) CityName(ctx context.Context, cityID int) (string, error) {
	args := m.Called(ctx, cityID)
	return args.String(0), args.Error(1)
}

func (m *MockLocationRepository) ZoneName(ctx context.Context, zoneID int) (string, error) {
	args := m.Called(ctx, zoneID)
	return args.String(0), args.Error(1)
}

type MockShipmentRepository struct {
	mock.Mock
}

func (m *MockShipmentRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*shipping.Shipment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) Save(ctx context.Context, s *shipping.Shipment) error {
	return m.Called(ctx, s).Error(0)
}

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByNumber(ctx context.Context, number int64) (*trade.Order, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter trade.OrderFilter) ([]trade.Order, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]trade.Order), args.Error(1)
}

func (m *MockOrderRepository) Count(ctx context.Context, filter trade.OrderFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, order *trade.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *MockOrderRepository) NextNumber(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) NextItemSerial(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

var (
	owner = shared.Actor{UserID: uuid.New()}
	other = shared.Actor{UserID: uuid.New()}
	admin = shared.Actor{UserID: uuid.New(), IsAdmin: true}
	now   = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
)

type fixture struct {
	courier   *MockCourier
	locations *MockLocationRepository
	shipments *MockShipmentRepository
	orders    *MockOrderRepository
	service   *ShippingService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		courier:   new(MockCourier),
		locations: new(MockLocationRepository),
		shipments: new(MockShipmentRepository),
		orders:    new(MockOrderRepository),
	}
	f.service = NewShippingService(f.courier, f.locations, f.shipments, f.orders,
		NewNoOpTransactionScope(f.orders, f.shipments),
		Config{DefaultStoreID: 7, LocationTTL: 24 * time.Hour})
	f.service.now = func() time.Time { return now }
	return f
}

func testOrder(t *testing.T) *trade.Order {
	t.Helper()
	customer, err := trade.NewCustomer("Rahim", "01700000000", "House 1, Road 2")
	require.NoError(t, err)
	order, err := trade.NewOrder(owner.UserID, 1001, customer, decimal.NewFromInt(60), decimal.Zero)
	require.NoError(t, err)
	order.SetLocation("Dhaka", "Mirpur", false)

	saree, err := trade.NewOrderItem(100, "Saree - Jamdani", "JS", "FREE", 1, decimal.NewFromInt(3200))
	require.NoError(t, err)
	panjabi, err := trade.NewOrderItem(101, "Panjabi - Cotton", "CP", "XL", 2, decimal.RequireFromString("950.50"))
	require.NoError(t, err)
	require.NoError(t, order.AddItem(*saree))
	require.NoError(t, order.AddItem(*panjabi))
	require.NoError(t, order.Finalize())
	order.ClearDomainEvents()
	return order
}

func TestShippingService_ListCities(t *testing.T) {
	ctx := context.Background()
	fresh := []shipping.City{{ID: 1, Name: "Dhaka", UpdatedAt: now.Add(-time.Hour)}}
	stale := []shipping.City{{ID: 1, Name: "Dhaka", UpdatedAt: now.Add(-48 * time.Hour)}}
	fetched := []shipping.City{
		{ID: 2, Name: "Chittagong", UpdatedAt: now},
		{ID: 1, Name: "Dhaka", UpdatedAt: now},
	}

	t.Run("serves fresh cache", func(t *testing.T) {
		f := newFixture(t)
		f.locations.On("Cities", ctx).Return(fresh, nil)

		cities, err := f.service.ListCities(ctx, LocationQuery{})
		require.NoError(t, err)
		assert.Equal(t, []CityResponse{{ID: 1, Name: "Dhaka"}}, cities)
		f.courier.AssertNotCalled(t, "Cities", mock.Anything)
	})

	t.Run("refetches stale cache", func(t *testing.T) {
		f := newFixture(t)
		f.locations.On("Cities", ctx).Return(stale, nil)
		f.courier.On("Cities", ctx).Return(fetched, nil)
		f.locations.On("SaveCities", ctx, fetched).Return(nil)

		cities, err := f.service.ListCities(ctx, LocationQuery{})
		require.NoError(t, err)
		require.Len(t, cities, 2)
		assert.Equal(t, "Chittagong", cities[0].Name)
		f.locations.AssertExpectations(t)
	})

	t.Run("refresh bypasses fresh cache", func(t *testing.T) {
		f := newFixture(t)
		f.locations.On("Cities", ctx).Return(fresh, nil)
		f.courier.On("Cities", ctx).Return(fetched, nil)
		f.locations.On("SaveCities", ctx, fetched).Return(nil)

		cities, err := f.service.ListCities(ctx, LocationQuery{Refresh: true})
		require.NoError(t, err)
		assert.Len(t, cities, 2)
	})

	t.Run("courier down serves stale cache", func(t *testing.T) {
		f := newFixture(t)
		f.locations.On("Cities", ctx).Return(stale, nil)
		f.courier.On("Cities", ctx).Return(nil, shipping.ErrCourierUnavailable)

		cities, err := f.service.ListCities(ctx, LocationQuery{})
		require.NoError(t, err)
		assert.Equal(t, []CityResponse{{ID: 1, Name: "Dhaka"}}, cities)
	})

	t.Run("courier down without cache", func(t *testing.T) {
		f := newFixture(t)
		f.locations.On("Cities", ctx).Return([]shipping.City{}, nil)
		f.courier.On("Cities", ctx).Return(nil, shipping.ErrCourierNotConfigured)

		_, err := f.service.ListCities(ctx, LocationQuery{})
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "COURIER_NOT_CONFIGURED", de.Code)
	})
}

func TestShippingService_ListZones(t *testing.T) {
	ctx := context.Background()

	t.Run("fetches and caches", func(t *testing.T) {
		f := newFixture(t)
		fetched := []shipping.Zone{
			{ID: 300, CityID: 1, Name: "Uttara", UpdatedAt: now},
			{ID: 298, CityID: 1, Name: "Mirpur", UpdatedAt: now},
		}
		f.locations.On("Zones", ctx, 1).Return([]shipping.Zone{}, nil)
		f.courier.On("Zones", ctx, 1).Return(fetched, nil)
		f.locations.On("SaveZones", ctx, fetched).Return(nil)

		zones, err := f.service.ListZones(ctx, 1, LocationQuery{})
		require.NoError(t, err)
		assert.Equal(t, []ZoneResponse{{ID: 298, CityID: 1, Name: "Mirpur"}, {ID: 300, CityID: 1, Name: "Uttara"}}, zones)
	})

	t.Run("invalid city", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.ListZones(ctx, 0, LocationQuery{})
		assert.Error(t, err)
	})
}

func TestShippingService_RequestShipping(t *testing.T) {
	ctx := context.Background()

	t.Run("books delivery and marks order", func(t *testing.T) {
		f := newFixture(t)
		pub := &recordingPublisher{}
		f.service.SetEventPublisher(pub)
		order := testOrder(t)
		version := order.Version

		f.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		f.courier.On("CreateDelivery", mock.Anything, mock.MatchedBy(func(req shipping.DeliveryRequest) bool {
			return req.StoreID == 7 &&
				req.MerchantOrderID == "1001" &&
				req.RecipientPhone == "01700000000" &&
				req.CityID == 1 && req.ZoneID == 300 &&
				req.ItemQuantity == 3 &&
				req.ItemWeight.Equal(decimal.RequireFromString("0.5")) &&
				req.AmountToCollect.Equal(decimal.NewFromInt(5161)) &&
				req.ItemDescription == "Saree - Jamdani x1, Panjabi - Cotton x2"
		})).Return(&shipping.Consignment{ConsignmentID: "DL121224VS8TTJ", Status: "Pending", DeliveryFee: decimal.NewFromInt(80)}, nil)
		f.locations.On("CityName", mock.Anything, 1).Return("Dhaka", nil)
		f.locations.On("ZoneName", mock.Anything, 300).Return("Uttara", nil)
		f.shipments.On("Save", mock.Anything, mock.AnythingOfType("*shipping.Shipment")).Return(nil)
		f.orders.On("Save", mock.Anything, order).Return(nil)

		resp, err := f.service.RequestShipping(ctx, owner, order.ID, ShippingRequest{CityID: 1, ZoneID: 300})
		require.NoError(t, err)
		assert.Equal(t, "DL121224VS8TTJ", resp.ConsignmentID)
		assert.Equal(t, "pathao", resp.Courier)
		assert.Equal(t, 7, resp.StoreID)
		assert.True(t, resp.DeliveryFee.Equal(decimal.NewFromInt(80)))

		assert.True(t, order.ShippingRequested)
		assert.Equal(t, "Uttara", order.ZoneName)
		assert.Equal(t, version+1, order.Version)

		require.Len(t, pub.events, 1)
		assert.Equal(t, shipping.EventTypeShipmentRequested, pub.events[0].EventType())
		f.shipments.AssertExpectations(t)
		f.orders.AssertExpectations(t)
	})

	t.Run("already requested", func(t *testing.T) {
		f := newFixture(t)
		order := testOrder(t)
		require.NoError(t, order.RequestShipping("", ""))
		f.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)

		_, err := f.service.RequestShipping(ctx, owner, order.ID, ShippingRequest{CityID: 1, ZoneID: 300})
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "SHIPPING_ALREADY_REQUESTED", de.Code)
		f.courier.AssertNotCalled(t, "CreateDelivery", mock.Anything, mock.Anything)
	})

	t.Run("other users order", func(t *testing.T) {
		f := newFixture(t)
		order := testOrder(t)
		f.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)

		_, err := f.service.RequestShipping(ctx, other, order.ID, ShippingRequest{CityID: 1, ZoneID: 300})
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("cancelled order", func(t *testing.T) {
		f := newFixture(t)
		order := testOrder(t)
		require.NoError(t, order.UpdateStatus(trade.OrderStatusCancelled))
		f.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)

		_, err := f.service.RequestShipping(ctx, admin, order.ID, ShippingRequest{CityID: 1, ZoneID: 300})
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("non-positive weight", func(t *testing.T) {
		f := newFixture(t)
		order := testOrder(t)
		f.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		zero := decimal.Zero

		_, err := f.service.RequestShipping(ctx, owner, order.ID, ShippingRequest{CityID: 1, ZoneID: 300, ItemWeight: &zero})
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "INVALID_ITEM_WEIGHT", de.Code)
	})

	t.Run("courier rejects", func(t *testing.T) {
		f := newFixture(t)
		order := testOrder(t)
		f.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		f.courier.On("CreateDelivery", mock.Anything, mock.Anything).
			Return(nil, errors.Join(shipping.ErrCourierRejected, errors.New("recipient_phone is invalid")))

		_, err := f.service.RequestShipping(ctx, owner, order.ID, ShippingRequest{StoreID: 9, CityID: 1, ZoneID: 300})
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "COURIER_REJECTED", de.Code)
		assert.False(t, order.ShippingRequested)
		f.shipments.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("store failure after booking", func(t *testing.T) {
		f := newFixture(t)
		order := testOrder(t)
		f.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		f.courier.On("CreateDelivery", mock.Anything, mock.Anything).
			Return(&shipping.Consignment{ConsignmentID: "C1"}, nil)
		f.locations.On("CityName", mock.Anything, 1).Return("", nil)
		f.locations.On("ZoneName", mock.Anything, 300).Return("", nil)
		f.shipments.On("Save", mock.Anything, mock.Anything).Return(errors.New("db down"))

		_, err := f.service.RequestShipping(ctx, owner, order.ID, ShippingRequest{CityID: 1, ZoneID: 300})
		assert.EqualError(t, err, "db down")
		f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestShippingService_GetShipment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	order := testOrder(t)
	shipment, err := shipping.NewShipment(order.ID, order.Number, "pathao", 7, shipping.Consignment{
		ConsignmentID: "C1", Status: "Picked Up",
	})
	require.NoError(t, err)
	f.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)
	f.shipments.On("FindByOrderID", mock.Anything, order.ID).Return(shipment, nil)

	resp, err := f.service.GetShipment(ctx, owner, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "C1", resp.ConsignmentID)
	assert.True(t, resp.InTransit)
	assert.False(t, resp.Delivered)

	_, err = f.service.GetShipment(ctx, other, order.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}
