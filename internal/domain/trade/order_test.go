package trade

import (
	"testing"

	"github.com/google/uuid"
	"github.com/murdhanno/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testCustomer(t *testing.T) Customer {
	t.Helper()
	c, err := NewCustomer("  Rahim  ", "01700000000", "House 1, Road 2")
	require.NoError(t, err)
	return c
}

func newTestOrder(t *testing.T, delivery, discount string) *Order {
	t.Helper()
	o, err := NewOrder(uuid.New(), 7, testCustomer(t), dec(delivery), dec(discount))
	require.NoError(t, err)
	return o
}

func mustItem(t *testing.T, serial int64, name, code, size string, qty int, price string) OrderItem {
	t.Helper()
	item, err := NewOrderItem(serial, name, code, size, qty, dec(price))
	require.NoError(t, err)
	return *item
}

func TestNewCustomer(t *testing.T) {
	c := testCustomer(t)
	assert.Equal(t, "Rahim", c.Name)

	_, err := NewCustomer("", "1", "x")
	assert.Error(t, err)
	_, err = NewCustomer("a", "", "x")
	assert.Error(t, err)
	_, err = NewCustomer("a", "1", "  ")
	assert.Error(t, err)
}

func TestNewOrder_Validation(t *testing.T) {
	c := testCustomer(t)
	user := uuid.New()

	_, err := NewOrder(user, 0, c, decimal.Zero, decimal.Zero)
	assert.Error(t, err)
	_, err = NewOrder(uuid.Nil, 1, c, decimal.Zero, decimal.Zero)
	assert.Error(t, err)
	_, err = NewOrder(user, 1, c, dec("-1"), decimal.Zero)
	assert.Error(t, err)
	_, err = NewOrder(user, 1, c, decimal.Zero, dec("-1"))
	assert.Error(t, err)

	o, err := NewOrder(user, 1, c, decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusPending, o.Status)
	assert.True(t, o.IsOwnedBy(user))
}

func TestOrder_FinalTotalTruncatesComponents(t *testing.T) {
	o := newTestOrder(t, "60.9", "5.5")
	require.NoError(t, o.AddItem(mustItem(t, 1, "Panjabi", "PNJ01", "M", 1, "12.7")))

	assert.True(t, dec("12.7").Equal(o.ProductsSubtotal()))
	assert.True(t, dec("67").Equal(o.FinalTotal()), o.FinalTotal().String())

	assert.True(t, o.TotalAmount.IsZero())
	assert.True(t, dec("67").Equal(o.CalculateTotal()))
	assert.True(t, dec("67").Equal(o.TotalAmount))
}

func TestOrder_Finalize(t *testing.T) {
	o := newTestOrder(t, "60", "0")
	err := o.Finalize()
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "EMPTY_ORDER", de.Code)

	require.NoError(t, o.AddItem(mustItem(t, 1, "Shirt", "SH", "L", 2, "450")))
	require.NoError(t, o.AddItem(mustItem(t, 2, "Cap", "CP", "", 1, "150")))
	require.NoError(t, o.Finalize())

	assert.True(t, dec("1110").Equal(o.TotalAmount))
	assert.Equal(t, 3, o.ItemCount())
	require.Len(t, o.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeOrderCreated, o.GetDomainEvents()[0].EventType())
}

func TestOrder_FinalizeRejectsNegativeTotal(t *testing.T) {
	o := newTestOrder(t, "0", "500")
	require.NoError(t, o.AddItem(mustItem(t, 1, "Shirt", "SH", "L", 1, "100")))

	err := o.Finalize()
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_DISCOUNT", de.Code)
}

func TestOrder_UpdateStatus(t *testing.T) {
	tests := []struct {
		name    string
		path    []OrderStatus
		wantErr bool
	}{
		{"pending to processing to completed", []OrderStatus{OrderStatusProcessing, OrderStatusCompleted}, false},
		{"pending straight to cancelled", []OrderStatus{OrderStatusCancelled}, false},
		{"same status", []OrderStatus{OrderStatusPending}, true},
		{"reopen completed", []OrderStatus{OrderStatusCompleted, OrderStatusProcessing}, true},
		{"unknown status", []OrderStatus{OrderStatus("shipped")}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newTestOrder(t, "0", "0")
			var err error
			for _, s := range tt.path {
				if err = o.UpdateStatus(s); err != nil {
					break
				}
			}
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.path[len(tt.path)-1], o.Status)
			assert.Len(t, o.GetDomainEvents(), len(tt.path))
		})
	}
}

func TestOrder_AddItemOnlyWhilePending(t *testing.T) {
	o := newTestOrder(t, "0", "0")
	require.NoError(t, o.UpdateStatus(OrderStatusProcessing))

	err := o.AddItem(mustItem(t, 1, "Shirt", "SH", "L", 1, "100"))
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestOrder_DeliveryLocation(t *testing.T) {
	o := newTestOrder(t, "0", "0")
	assert.Equal(t, "Location not specified", o.DeliveryLocation())

	o.SetLocation("Dhaka", "", false)
	assert.Equal(t, "Dhaka", o.DeliveryLocation())

	o.SetLocation("Dhaka", "Mirpur", true)
	assert.Equal(t, "Mirpur, Dhaka", o.DeliveryLocation())
	assert.True(t, o.ShippingRequested)
}

func TestOrder_RequestShipping(t *testing.T) {
	o := newTestOrder(t, "0", "0")
	o.SetLocation("Dhaka", "Mirpur", false)
	version := o.Version

	require.NoError(t, o.RequestShipping("", "Uttara"))
	assert.True(t, o.ShippingRequested)
	assert.Equal(t, "Uttara, Dhaka", o.DeliveryLocation())
	assert.Equal(t, version+1, o.Version)

	err := o.RequestShipping("", "")
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "SHIPPING_ALREADY_REQUESTED", de.Code)

	cancelled := newTestOrder(t, "0", "0")
	require.NoError(t, cancelled.UpdateStatus(OrderStatusCancelled))
	assert.ErrorIs(t, cancelled.RequestShipping("", ""), shared.ErrInvalidState)
	assert.False(t, cancelled.ShippingRequested)
}

func TestNewOrderItem_Validation(t *testing.T) {
	_, err := NewOrderItem(1, " ", "SH", "L", 1, dec("1"))
	assert.Error(t, err)
	_, err = NewOrderItem(1, "Shirt", "TOOLONG", "L", 1, dec("1"))
	assert.Error(t, err)
	_, err = NewOrderItem(1, "Shirt", "SH", "L", 0, dec("1"))
	assert.Error(t, err)
	_, err = NewOrderItem(1, "Shirt", "SH", "L", 1, dec("-1"))
	assert.Error(t, err)
	_, err = NewOrderItem(0, "Shirt", "SH", "L", 1, dec("1"))
	assert.Error(t, err)

	item, err := NewOrderItem(42, "Panjabi", "PNJ01", "M", 2, dec("50"))
	require.NoError(t, err)
	assert.Equal(t, "PNJ01M000042", item.TrackingCode)
	assert.True(t, dec("100").Equal(item.Subtotal()))
}

func TestGenerateTrackingCode(t *testing.T) {
	tests := []struct {
		code   string
		size   string
		serial int64
		want   string
	}{
		{"PNJ01", "M", 42, "PNJ01M000042"},
		{"AB", "XXLARGE", 7, "ABXXLA000007"},
		{"", "", 5, "000000000005"},
		{"ABCDE", "XL", 1234567890123, "ABCDEXL90123"},
		{"ABCDE", "FREE", 1, "ABCDEFREE001"},
	}
	for _, tt := range tests {
		got := GenerateTrackingCode(tt.code, tt.size, tt.serial)
		assert.Equal(t, tt.want, got)
		assert.Len(t, got, TrackingCodeLength)
	}
}
