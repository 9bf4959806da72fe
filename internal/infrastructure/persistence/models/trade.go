package models

import (
	"github.com/google/uuid"
	"github.com/murdhanno/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order aggregate
type OrderModel struct {
	OwnedAggregateModel
	Number            int64            `gorm:"not null;uniqueIndex"`
	CustomerName      string           `gorm:"type:varchar(100);not null"`
	CustomerPhone     string           `gorm:"type:varchar(20);not null"`
	CustomerAddress   string           `gorm:"type:text;not null"`
	CityName          string           `gorm:"type:varchar(100)"`
	ZoneName          string           `gorm:"type:varchar(100)"`
	ShippingRequested bool             `gorm:"not null;default:false"`
	DeliveryCharge    decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	Discount          decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	TotalAmount       decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	Status            string           `gorm:"type:varchar(20);not null;default:'pending';index"`
	Items             []OrderItemModel `gorm:"foreignKey:OrderID;references:ID"`
}

func (OrderModel) TableName() string {
	return "orders"
}

func (m *OrderModel) ToDomain() *trade.Order {
	items := make([]trade.OrderItem, len(m.Items))
	for i := range m.Items {
		items[i] = m.Items[i].ToDomain()
	}
	return &trade.Order{
		OwnedAggregateRoot: m.ToDomainOwnedAggregateRoot(),
		Number:             m.Number,
		Customer: trade.Customer{
			Name:    m.CustomerName,
			Phone:   m.CustomerPhone,
			Address: m.CustomerAddress,
		},
		CityName:          m.CityName,
		ZoneName:          m.ZoneName,
		ShippingRequested: m.ShippingRequested,
		DeliveryCharge:    m.DeliveryCharge,
		Discount:          m.Discount,
		TotalAmount:       m.TotalAmount,
		Status:            trade.OrderStatus(m.Status),
		Items:             items,
	}
}

func OrderModelFromDomain(o *trade.Order) *OrderModel {
	m := &OrderModel{
		Number:            o.Number,
		CustomerName:      o.Customer.Name,
		CustomerPhone:     o.Customer.Phone,
		CustomerAddress:   o.Customer.Address,
		CityName:          o.CityName,
		ZoneName:          o.ZoneName,
		ShippingRequested: o.ShippingRequested,
		DeliveryCharge:    o.DeliveryCharge,
		Discount:          o.Discount,
		TotalAmount:       o.TotalAmount,
		Status:            string(o.Status),
		Items:             make([]OrderItemModel, len(o.Items)),
	}
	m.FromDomainOwnedAggregateRoot(o.OwnedAggregateRoot)
	for i := range o.Items {
		m.Items[i] = *OrderItemModelFromDomain(o.ID, i, &o.Items[i])
	}
	return m
}

// OrderItemModel is one row of order_items. Position keeps the entry order.
type OrderItemModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position     int             `gorm:"not null"`
	Serial       int64           `gorm:"not null;uniqueIndex"`
	ProductID    *uuid.UUID      `gorm:"type:uuid;index"`
	ProductName  string          `gorm:"type:varchar(200);not null"`
	ProductCode  string          `gorm:"type:varchar(5)"`
	Size         string          `gorm:"type:varchar(20)"`
	Quantity     int             `gorm:"not null"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TrackingCode string          `gorm:"type:varchar(12);index"`
}

func (OrderItemModel) TableName() string {
	return "order_items"
}

func (m *OrderItemModel) ToDomain() trade.OrderItem {
	return trade.OrderItem{
		ID:           m.ID,
		Serial:       m.Serial,
		ProductID:    m.ProductID,
		ProductName:  m.ProductName,
		ProductCode:  m.ProductCode,
		Size:         m.Size,
		Quantity:     m.Quantity,
		UnitPrice:    m.UnitPrice,
		TrackingCode: m.TrackingCode,
	}
}

func OrderItemModelFromDomain(orderID uuid.UUID, position int, i *trade.OrderItem) *OrderItemModel {
	return &OrderItemModel{
		ID:           i.ID,
		OrderID:      orderID,
		Position:     position,
		Serial:       i.Serial,
		ProductID:    i.ProductID,
		ProductName:  i.ProductName,
		ProductCode:  i.ProductCode,
		Size:         i.Size,
		Quantity:     i.Quantity,
		UnitPrice:    i.UnitPrice,
		TrackingCode: i.TrackingCode,
	}
}
