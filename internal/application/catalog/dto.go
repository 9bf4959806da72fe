package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/murdhanno/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Product type DTOs
// =============================================================================

type ProductTypeRequest struct {
	Name        string `json:"name" binding:"required,max=50"`
	Description string `json:"description" binding:"max=200"`
}

type ProductTypeResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ProductTypeListFilter struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Search   string `form:"search" binding:"max=100"`
}

func toProductTypeResponse(t *catalog.ProductType) ProductTypeResponse {
	return ProductTypeResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// =============================================================================
// Size group DTOs
// =============================================================================

type CreateSizeGroupRequest struct {
	ProductTypeID uuid.UUID `json:"product_type_id" binding:"required"`
	Name          string    `json:"name" binding:"required,max=50"`
	Description   string    `json:"description" binding:"max=200"`
	Sizes         []string  `json:"sizes" binding:"required,min=1,dive,max=20"`
}

// UpdateSizeGroupRequest replaces a group's name, description and sizes. The
// product type of a group is fixed.
type UpdateSizeGroupRequest struct {
	Name        string   `json:"name" binding:"required,max=50"`
	Description string   `json:"description" binding:"max=200"`
	Sizes       []string `json:"sizes" binding:"required,min=1,dive,max=20"`
}

type SizeGroupResponse struct {
	ID            uuid.UUID `json:"id"`
	ProductTypeID uuid.UUID `json:"product_type_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Sizes         []string  `json:"sizes"`
	// AssignedProducts counts the ungrouped products linked by this call
	AssignedProducts int64     `json:"assigned_products,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

type SizeGroupListFilter struct {
	Page          int        `form:"page" binding:"omitempty,min=1"`
	PageSize      int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	ProductTypeID *uuid.UUID `form:"product_type_id"`
}

func toSizeGroupResponse(g *catalog.SizeGroup) SizeGroupResponse {
	return SizeGroupResponse{
		ID:            g.ID,
		ProductTypeID: g.ProductTypeID,
		Name:          g.Name,
		Description:   g.Description,
		Sizes:         g.Sizes,
		CreatedAt:     g.CreatedAt,
	}
}

// =============================================================================
// Product DTOs
// =============================================================================

// ProductRequest creates or replaces a product. Without SizeGroupID the
// product joins the group of its type that holds its size, if any.
type ProductRequest struct {
	ProductTypeID uuid.UUID       `json:"product_type_id" binding:"required"`
	Name          string          `json:"name" binding:"required,max=100"`
	Code          string          `json:"code" binding:"required,max=5"`
	Size          string          `json:"size" binding:"required,max=20"`
	Quantity      int             `json:"quantity" binding:"min=0"`
	Price         decimal.Decimal `json:"price"`
	SizeGroupID   *uuid.UUID      `json:"size_group_id"`
}

func (r ProductRequest) spec() catalog.ProductSpec {
	return catalog.ProductSpec{
		ProductTypeID: r.ProductTypeID,
		Name:          r.Name,
		Code:          r.Code,
		Size:          r.Size,
		Quantity:      r.Quantity,
		Price:         r.Price,
	}
}

type ProductResponse struct {
	ID            uuid.UUID       `json:"id"`
	ProductTypeID uuid.UUID       `json:"product_type_id"`
	TypeName      string          `json:"type_name,omitempty"`
	Name          string          `json:"name"`
	DisplayName   string          `json:"display_name"`
	Code          string          `json:"code"`
	Size          string          `json:"size"`
	SizeGroupID   *uuid.UUID      `json:"size_group_id,omitempty"`
	Quantity      int             `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	LowStock      bool            `json:"low_stock"`
	// TotalAvailable adds the stock of compatible sizes; only set by the
	// available products list
	TotalAvailable int       `json:"total_available,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type ProductListFilter struct {
	Page          int        `form:"page" binding:"omitempty,min=1"`
	PageSize      int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy       string     `form:"order_by" binding:"omitempty,oneof=created_at updated_at name code size quantity price"`
	OrderDir      string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search        string     `form:"search" binding:"max=100"`
	ProductTypeID *uuid.UUID `form:"product_type_id"`
	InStock       bool       `form:"in_stock"`
	LowStock      bool       `form:"low_stock"`
}

func toProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		ProductTypeID: p.ProductTypeID,
		TypeName:      p.TypeName,
		Name:          p.Name,
		DisplayName:   p.DisplayName(),
		Code:          p.Code,
		Size:          p.Size,
		SizeGroupID:   p.SizeGroupID,
		Quantity:      p.Quantity,
		Price:         p.Price,
		LowStock:      p.IsLowStock(),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
