package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/murdhanno/backend/internal/domain/shared"
)

// ProductTypeRepository persists product types
type ProductTypeRepository interface {
	// FindByID returns shared.ErrNotFound when no type matches
	FindByID(ctx context.Context, id uuid.UUID) (*ProductType, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]ProductType, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// ExistsByName ignores case; excludeID skips the type being renamed
	ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error)
	Save(ctx context.Context, t *ProductType) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SizeGroupRepository persists size groups with their sizes
type SizeGroupRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SizeGroup, error)
	FindAll(ctx context.Context, filter SizeGroupFilter) ([]SizeGroup, error)
	Count(ctx context.Context, filter SizeGroupFilter) (int64, error)
	// FindForSize returns the group of productTypeID holding size, or
	// shared.ErrNotFound
	FindForSize(ctx context.Context, productTypeID uuid.UUID, size string) (*SizeGroup, error)
	ExistsByName(ctx context.Context, productTypeID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error)
	Save(ctx context.Context, g *SizeGroup) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductRepository persists products and their stock
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindAll(ctx context.Context, filter ProductFilter) ([]Product, error)
	Count(ctx context.Context, filter ProductFilter) (int64, error)
	// FindCompatible lists the other sizes of p's name in its size group
	FindCompatible(ctx context.Context, p *Product) ([]*Product, error)
	// ExistsCombination checks the type, name and size uniqueness rule
	ExistsCombination(ctx context.Context, productTypeID uuid.UUID, name, size string, excludeID *uuid.UUID) (bool, error)
	CountByProductType(ctx context.Context, productTypeID uuid.UUID) (int64, error)
	CountBySizeGroup(ctx context.Context, sizeGroupID uuid.UUID) (int64, error)
	// AssignUngrouped links products of the group's type whose size is in
	// the group and that have no group yet. It returns how many changed.
	AssignUngrouped(ctx context.Context, g *SizeGroup) (int64, error)
	// IsReferenced reports whether an order item points at the product
	IsReferenced(ctx context.Context, id uuid.UUID) (bool, error)
	Save(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductFilter narrows product listings
type ProductFilter struct {
	shared.Filter
	ProductTypeID *uuid.UUID
	InStockOnly   bool
	LowStockOnly  bool
}

// SizeGroupFilter narrows size group listings
type SizeGroupFilter struct {
	shared.Filter
	ProductTypeID *uuid.UUID
}
