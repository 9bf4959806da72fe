package trade

import (
	"github.com/google/uuid"
	"github.com/murdhanno/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Order is the sales order aggregate. Number is the human facing invoice
// number; ID is the storage identity.
type Order struct {
	shared.OwnedAggregateRoot
	Number            int64
	Customer          Customer
	CityName          string
	ZoneName          string
	ShippingRequested bool
	DeliveryCharge    decimal.Decimal
	Discount          decimal.Decimal
	TotalAmount       decimal.Decimal
	Status            OrderStatus
	Items             []OrderItem
}

// NewOrder creates a pending order without items
func NewOrder(createdBy uuid.UUID, number int64, customer Customer, deliveryCharge, discount decimal.Decimal) (*Order, error) {
	if number <= 0 {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number must be positive")
	}
	if createdBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Order must be created by a user")
	}
	if deliveryCharge.IsNegative() {
		return nil, shared.NewDomainError("INVALID_DELIVERY_CHARGE", "Delivery charge cannot be negative")
	}
	if discount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}

	return &Order{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(createdBy),
		Number:             number,
		Customer:           customer,
		DeliveryCharge:     deliveryCharge,
		Discount:           discount,
		TotalAmount:        decimal.Zero,
		Status:             OrderStatusPending,
		Items:              make([]OrderItem, 0),
	}, nil
}

// SetLocation records the courier city and zone names
func (o *Order) SetLocation(city, zone string, shippingRequested bool) {
	o.CityName = city
	o.ZoneName = zone
	o.ShippingRequested = shippingRequested
	o.Touch()
}

// RequestShipping marks the order as handed to a courier. City and zone
// replace the stored names when given.
func (o *Order) RequestShipping(city, zone string) error {
	if o.ShippingRequested {
		return shared.NewDomainError("SHIPPING_ALREADY_REQUESTED", "Shipping already requested for this order")
	}
	if o.Status == OrderStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Cannot ship an order that is "+o.Status.String())
	}
	if city != "" {
		o.CityName = city
	}
	if zone != "" {
		o.ZoneName = zone
	}
	o.ShippingRequested = true
	o.Bump()
	return nil
}

// AddItem appends a line while the order is still pending
func (o *Order) AddItem(item OrderItem) error {
	if o.Status != OrderStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Cannot add items to an order that is "+o.Status.String())
	}
	o.Items = append(o.Items, item)
	o.Touch()
	return nil
}

// ProductsSubtotal sums quantity times unit price over all items
func (o *Order) ProductsSubtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range o.Items {
		sum = sum.Add(item.Subtotal())
	}
	return sum
}

// FinalTotal is the whole-unit subtotal plus delivery minus discount. Each
// component is truncated before combining.
func (o *Order) FinalTotal() decimal.Decimal {
	return o.ProductsSubtotal().Truncate(0).
		Add(o.DeliveryCharge.Truncate(0)).
		Sub(o.Discount.Truncate(0))
}

// CalculateTotal stores FinalTotal in TotalAmount and returns it
func (o *Order) CalculateTotal() decimal.Decimal {
	o.TotalAmount = o.FinalTotal()
	return o.TotalAmount
}

// ItemCount returns the total quantity across items
func (o *Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// DeliveryLocation formats "zone, city" from whichever parts are known
func (o *Order) DeliveryLocation() string {
	switch {
	case o.ZoneName != "" && o.CityName != "":
		return o.ZoneName + ", " + o.CityName
	case o.ZoneName != "":
		return o.ZoneName
	case o.CityName != "":
		return o.CityName
	default:
		return "Location not specified"
	}
}

// Finalize computes the stored total and raises OrderCreated. The order must
// have items and a non-negative total.
func (o *Order) Finalize() error {
	if len(o.Items) == 0 {
		return shared.NewDomainError("EMPTY_ORDER", "Please select at least one product")
	}
	if o.CalculateTotal().IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot exceed the order amount")
	}
	o.AddDomainEvent(NewOrderCreatedEvent(o))
	return nil
}

// UpdateStatus moves the order along its lifecycle
func (o *Order) UpdateStatus(target OrderStatus) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown order status: "+target.String())
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot change order status from "+o.Status.String()+" to "+target.String())
	}

	old := o.Status
	o.Status = target
	o.Bump(NewOrderStatusChangedEvent(o, old, target))
	return nil
}
