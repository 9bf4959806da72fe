package models

import (
	"github.com/google/uuid"
	"github.com/murdhanno/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductTypeModel is the persistence model for product_types
type ProductTypeModel struct {
	AggregateModel
	Name        string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Description string `gorm:"type:varchar(200)"`
}

func (ProductTypeModel) TableName() string {
	return "product_types"
}

func (m *ProductTypeModel) ToDomain() *catalog.ProductType {
	return &catalog.ProductType{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Description:       m.Description,
	}
}

func ProductTypeModelFromDomain(t *catalog.ProductType) *ProductTypeModel {
	m := &ProductTypeModel{Name: t.Name, Description: t.Description}
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	return m
}

// SizeGroupModel is the persistence model for size_groups. Its sizes live in
// size_group_sizes.
type SizeGroupModel struct {
	AggregateModel
	ProductTypeID uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:idx_size_groups_type_name,priority:1"`
	Name          string               `gorm:"type:varchar(50);not null;uniqueIndex:idx_size_groups_type_name,priority:2"`
	Description   string               `gorm:"type:varchar(200)"`
	Sizes         []SizeGroupSizeModel `gorm:"foreignKey:SizeGroupID;references:ID"`
}

func (SizeGroupModel) TableName() string {
	return "size_groups"
}

// SizeGroupSizeModel is one size of a size group
type SizeGroupSizeModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	SizeGroupID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_size_group_sizes_group_size,priority:1"`
	Position    int       `gorm:"not null"`
	Size        string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_size_group_sizes_group_size,priority:2"`
}

func (SizeGroupSizeModel) TableName() string {
	return "size_group_sizes"
}

func (m *SizeGroupModel) ToDomain() *catalog.SizeGroup {
	sizes := make([]string, len(m.Sizes))
	for i, s := range m.Sizes {
		sizes[i] = s.Size
	}
	return &catalog.SizeGroup{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		ProductTypeID:     m.ProductTypeID,
		Name:              m.Name,
		Description:       m.Description,
		Sizes:             sizes,
	}
}

func SizeGroupModelFromDomain(g *catalog.SizeGroup) *SizeGroupModel {
	m := &SizeGroupModel{
		ProductTypeID: g.ProductTypeID,
		Name:          g.Name,
		Description:   g.Description,
		Sizes:         make([]SizeGroupSizeModel, len(g.Sizes)),
	}
	m.FromDomainAggregateRoot(g.BaseAggregateRoot)
	for i, size := range g.Sizes {
		m.Sizes[i] = SizeGroupSizeModel{ID: uuid.New(), SizeGroupID: g.ID, Position: i, Size: size}
	}
	return m
}

// ProductModel is the persistence model for products
type ProductModel struct {
	AggregateModel
	ProductTypeID uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_products_type_name_size,priority:1"`
	ProductType   *ProductTypeModel `gorm:"foreignKey:ProductTypeID"`
	Name          string            `gorm:"type:varchar(100);not null;uniqueIndex:idx_products_type_name_size,priority:2"`
	Code          string            `gorm:"type:varchar(5);not null"`
	Size          string            `gorm:"type:varchar(20);not null;uniqueIndex:idx_products_type_name_size,priority:3"`
	SizeGroupID   *uuid.UUID        `gorm:"type:uuid;index"`
	Quantity      int               `gorm:"not null;default:0;index"`
	Price         decimal.Decimal   `gorm:"type:decimal(12,2);not null"`
}

func (ProductModel) TableName() string {
	return "products"
}

func (m *ProductModel) ToDomain() *catalog.Product {
	p := &catalog.Product{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		ProductTypeID:     m.ProductTypeID,
		Name:              m.Name,
		Code:              m.Code,
		Size:              m.Size,
		SizeGroupID:       m.SizeGroupID,
		Quantity:          m.Quantity,
		Price:             m.Price,
	}
	if m.ProductType != nil {
		p.TypeName = m.ProductType.Name
	}
	return p
}

func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{
		ProductTypeID: p.ProductTypeID,
		Name:          p.Name,
		Code:          p.Code,
		Size:          p.Size,
		SizeGroupID:   p.SizeGroupID,
		Quantity:      p.Quantity,
		Price:         p.Price,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	return m
}
