package trade

import (
	"github.com/murdhanno/backend/internal/domain/printing/invoice"
	"github.com/murdhanno/backend/internal/domain/trade"
)

// ToInvoiceData snapshots an order into the layout engine's input. The date
// is the creation day; amounts are the order's own figures.
func ToInvoiceData(o *trade.Order) invoice.OrderData {
	items := make([]invoice.LineItem, len(o.Items))
	for i, item := range o.Items {
		items[i] = invoice.LineItem{
			ProductName:  item.ProductName,
			ProductSize:  item.Size,
			TrackingCode: item.TrackingCode,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
		}
	}
	return invoice.OrderData{
		ID:   o.Number,
		Date: o.CreatedAt.Format(dateLayout),
		Customer: invoice.Customer{
			Name:    o.Customer.Name,
			Phone:   o.Customer.Phone,
			Address: o.Customer.Address,
		},
		Items:          items,
		Subtotal:       o.ProductsSubtotal(),
		DeliveryCharge: o.DeliveryCharge,
		Discount:       o.Discount,
		Total:          o.TotalAmount,
	}
}
