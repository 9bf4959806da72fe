package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/murdhanno/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Order DTOs
// =============================================================================

// CreateOrderRequest represents a request to create an order
type CreateOrderRequest struct {
	CustomerName      string                 `json:"customer_name" binding:"required,max=100"`
	CustomerPhone     string                 `json:"customer_phone" binding:"required,max=20"`
	CustomerAddress   string                 `json:"customer_address" binding:"required"`
	CityName          string                 `json:"city_name" binding:"max=100"`
	ZoneName          string                 `json:"zone_name" binding:"max=100"`
	ShippingRequested bool                   `json:"shipping_requested"`
	DeliveryCharge    decimal.Decimal        `json:"delivery_charge"`
	Discount          decimal.Decimal        `json:"discount"`
	Items             []CreateOrderItemInput `json:"items" binding:"required,min=1,dive"`
}

// CreateOrderItemInput is one product line of a new order. Name, code, size
// and price come from the product.
type CreateOrderItemInput struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// UpdateStatusRequest changes an order's status
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,order_status"`
}

// OrderListFilter represents filter options for listing orders
type OrderListFilter struct {
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string     `form:"order_by" binding:"omitempty,oneof=created_at number total_amount customer_name status"`
	OrderDir string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search   string     `form:"search" binding:"max=100"`
	Status   string     `form:"status" binding:"omitempty,order_status"`
	From     *time.Time `form:"from" time_format:"2006-01-02"`
	To       *time.Time `form:"to" time_format:"2006-01-02"`
}

// OrderItemResponse represents an order line in API responses
type OrderItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	Serial       int64           `json:"serial"`
	ProductID    *uuid.UUID      `json:"product_id,omitempty"`
	ProductName  string          `json:"product_name"`
	ProductCode  string          `json:"product_code,omitempty"`
	Size         string          `json:"size,omitempty"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	TrackingCode string          `json:"tracking_code"`
}

// CustomerResponse is the buyer block of an order response
type CustomerResponse struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID                uuid.UUID           `json:"id"`
	Number            int64               `json:"number"`
	Customer          CustomerResponse    `json:"customer"`
	CityName          string              `json:"city_name,omitempty"`
	ZoneName          string              `json:"zone_name,omitempty"`
	DeliveryLocation  string              `json:"delivery_location"`
	ShippingRequested bool                `json:"shipping_requested"`
	ProductsSubtotal  decimal.Decimal     `json:"products_subtotal"`
	DeliveryCharge    decimal.Decimal     `json:"delivery_charge"`
	Discount          decimal.Decimal     `json:"discount"`
	TotalAmount       decimal.Decimal     `json:"total_amount"`
	Status            string              `json:"status"`
	ItemCount         int                 `json:"item_count"`
	Items             []OrderItemResponse `json:"items"`
	CreatedBy         uuid.UUID           `json:"created_by"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
	Version           int                 `json:"version"`
}

// OrderListItemResponse is the condensed order used in listings
type OrderListItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	Number       int64           `json:"number"`
	CustomerName string          `json:"customer_name"`
	Phone        string          `json:"customer_phone"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Status       string          `json:"status"`
	ItemCount    int             `json:"item_count"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ToOrderResponse converts a domain order to its API shape
func ToOrderResponse(o *trade.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ID:           item.ID,
			Serial:       item.Serial,
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			ProductCode:  item.ProductCode,
			Size:         item.Size,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			Subtotal:     item.Subtotal(),
			TrackingCode: item.TrackingCode,
		}
	}
	return OrderResponse{
		ID:     o.ID,
		Number: o.Number,
		Customer: CustomerResponse{
			Name:    o.Customer.Name,
			Phone:   o.Customer.Phone,
			Address: o.Customer.Address,
		},
		CityName:          o.CityName,
		ZoneName:          o.ZoneName,
		DeliveryLocation:  o.DeliveryLocation(),
		ShippingRequested: o.ShippingRequested,
		ProductsSubtotal:  o.ProductsSubtotal(),
		DeliveryCharge:    o.DeliveryCharge,
		Discount:          o.Discount,
		TotalAmount:       o.TotalAmount,
		Status:            o.Status.String(),
		ItemCount:         o.ItemCount(),
		Items:             items,
		CreatedBy:         o.CreatedBy,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
		Version:           o.Version,
	}
}

// ToOrderListItemResponses converts orders for a listing
func ToOrderListItemResponses(orders []trade.Order) []OrderListItemResponse {
	out := make([]OrderListItemResponse, len(orders))
	for i := range orders {
		o := &orders[i]
		out[i] = OrderListItemResponse{
			ID:           o.ID,
			Number:       o.Number,
			CustomerName: o.Customer.Name,
			Phone:        o.Customer.Phone,
			TotalAmount:  o.TotalAmount,
			Status:       o.Status.String(),
			ItemCount:    o.ItemCount(),
			CreatedAt:    o.CreatedAt,
		}
	}
	return out
}

// =============================================================================
// Report DTOs
// =============================================================================

// SalesReportRequest selects the report window. Dates are inclusive calendar
// days; both default to the last 30 days ending today.
type SalesReportRequest struct {
	Start *time.Time `form:"start" time_format:"2006-01-02"`
	End   *time.Time `form:"end" time_format:"2006-01-02"`
}

// DefaultReportWindow is used when the request leaves a bound open
const DefaultReportWindow = 30 * 24 * time.Hour

// SalesReportResponse is the JSON shape of a sales report
type SalesReportResponse struct {
	Start           string                  `json:"start_date"`
	End             string                  `json:"end_date"`
	TotalOrders     int                     `json:"total_orders"`
	CompletedOrders int                     `json:"completed_orders"`
	TotalRevenue    decimal.Decimal         `json:"total_revenue"`
	TopProducts     []trade.ProductSales    `json:"top_products"`
	Orders          []OrderListItemResponse `json:"orders"`
}

// ToSalesReportResponse converts a built report
func ToSalesReportResponse(r trade.SalesReport) SalesReportResponse {
	return SalesReportResponse{
		Start:           r.Start.Format(dateLayout),
		End:             r.End.Format(dateLayout),
		TotalOrders:     r.TotalOrders,
		CompletedOrders: r.CompletedOrders,
		TotalRevenue:    r.TotalRevenue,
		TopProducts:     r.TopProducts,
		Orders:          ToOrderListItemResponses(r.Orders),
	}
}

const dateLayout = "2006-01-02"
