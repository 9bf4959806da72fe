package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/murdhanno/backend/internal/domain/shipping"
	"github.com/shopspring/decimal"
)

// CourierCityModel caches one courier city. ID is the courier's city ID.
type CourierCityModel struct {
	ID        int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"type:varchar(100);not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (CourierCityModel) TableName() string {
	return "courier_cities"
}

func (m *CourierCityModel) ToDomain() shipping.City {
	return shipping.City{ID: m.ID, Name: m.Name, UpdatedAt: m.UpdatedAt}
}

func CourierCityModelFromDomain(c shipping.City) CourierCityModel {
	return CourierCityModel{ID: c.ID, Name: c.Name, UpdatedAt: c.UpdatedAt}
}

// CourierZoneModel caches one courier zone
type CourierZoneModel struct {
	ID        int       `gorm:"primaryKey;autoIncrement:false"`
	CityID    int       `gorm:"not null;index"`
	Name      string    `gorm:"type:varchar(100);not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (CourierZoneModel) TableName() string {
	return "courier_zones"
}

func (m *CourierZoneModel) ToDomain() shipping.Zone {
	return shipping.Zone{ID: m.ID, CityID: m.CityID, Name: m.Name, UpdatedAt: m.UpdatedAt}
}

func CourierZoneModelFromDomain(z shipping.Zone) CourierZoneModel {
	return CourierZoneModel{ID: z.ID, CityID: z.CityID, Name: z.Name, UpdatedAt: z.UpdatedAt}
}

// ShipmentModel is the persistence model for the Shipment aggregate
type ShipmentModel struct {
	AggregateModel
	OrderID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	OrderNumber   int64           `gorm:"not null"`
	Courier       string          `gorm:"type:varchar(30);not null"`
	StoreID       int             `gorm:"not null;default:0"`
	ConsignmentID string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Status        string          `gorm:"type:varchar(50);not null"`
	DeliveryFee   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
}

func (ShipmentModel) TableName() string {
	return "shipments"
}

func (m *ShipmentModel) ToDomain() *shipping.Shipment {
	return &shipping.Shipment{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		OrderID:           m.OrderID,
		OrderNumber:       m.OrderNumber,
		Courier:           m.Courier,
		StoreID:           m.StoreID,
		ConsignmentID:     m.ConsignmentID,
		Status:            m.Status,
		DeliveryFee:       m.DeliveryFee,
	}
}

func ShipmentModelFromDomain(s *shipping.Shipment) *ShipmentModel {
	m := &ShipmentModel{
		OrderID:       s.OrderID,
		OrderNumber:   s.OrderNumber,
		Courier:       s.Courier,
		StoreID:       s.StoreID,
		ConsignmentID: s.ConsignmentID,
		Status:        s.Status,
		DeliveryFee:   s.DeliveryFee,
	}
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	return m
}
