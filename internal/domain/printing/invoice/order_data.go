package invoice

import "github.com/shopspring/decimal"

// Customer is the billing block printed under the invoice header.
type Customer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// LineItem is one row of the itemized table.
type LineItem struct {
	ProductName  string          `json:"productName"`
	ProductSize  string          `json:"productSize"`
	TrackingCode string          `json:"trackingCode,omitempty"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
}

// LineTotal returns unit price times quantity, unrounded.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// OrderData is the immutable input of a render. Amounts are expected to be
// validated and currency-normalized by the caller.
type OrderData struct {
	ID             int64           `json:"id"`
	Date           string          `json:"date"`
	Customer       Customer        `json:"customer"`
	Items          []LineItem      `json:"items"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DeliveryCharge decimal.Decimal `json:"deliveryCharge"`
	Discount       decimal.Decimal `json:"discount"`
	Total          decimal.Decimal `json:"total"`
}
