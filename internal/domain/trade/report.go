package trade

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// TopProductLimit is the number of products ranked in a sales report
const TopProductLimit = 5

// ProductSales aggregates one product across a report window
type ProductSales struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// SalesReport summarizes the orders created in a date window
type SalesReport struct {
	Start           time.Time       `json:"start"`
	End             time.Time       `json:"end"`
	TotalOrders     int             `json:"total_orders"`
	CompletedOrders int             `json:"completed_orders"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	TopProducts     []ProductSales  `json:"top_products"`
	Orders          []Order         `json:"-"`
}

// BuildSalesReport aggregates orders. Products rank by quantity, ties by name.
func BuildSalesReport(start, end time.Time, orders []Order) SalesReport {
	report := SalesReport{
		Start:        start,
		End:          end,
		TotalOrders:  len(orders),
		TotalRevenue: decimal.Zero,
		Orders:       orders,
	}

	byName := map[string]*ProductSales{}
	for _, o := range orders {
		report.TotalRevenue = report.TotalRevenue.Add(o.TotalAmount)
		if o.Status == OrderStatusCompleted {
			report.CompletedOrders++
		}
		for _, item := range o.Items {
			ps, ok := byName[item.ProductName]
			if !ok {
				ps = &ProductSales{Name: item.ProductName, Revenue: decimal.Zero}
				byName[item.ProductName] = ps
			}
			ps.Quantity += item.Quantity
			ps.Revenue = ps.Revenue.Add(item.Subtotal())
		}
	}

	products := make([]ProductSales, 0, len(byName))
	for _, ps := range byName {
		products = append(products, *ps)
	}
	sort.Slice(products, func(i, j int) bool {
		if products[i].Quantity != products[j].Quantity {
			return products[i].Quantity > products[j].Quantity
		}
		return products[i].Name < products[j].Name
	})
	if len(products) > TopProductLimit {
		products = products[:TopProductLimit]
	}
	report.TopProducts = products
	return report
}

// EndOfDay returns the last second of t's calendar day
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}
