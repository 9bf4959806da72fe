package catalog

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/murdhanno/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	// LowStockThreshold is the quantity below which a product is flagged
	LowStockThreshold = 10
	// MaxCodeLength matches the product code prefix of an item tracking code
	MaxCodeLength = 5

	maxProductNameLength = 100
)

// Product is one sellable name and size of a product type with its own stock
// and price. Type, name and size are unique together.
type Product struct {
	shared.BaseAggregateRoot
	ProductTypeID uuid.UUID
	// TypeName is filled by repositories for display only
	TypeName    string
	Name        string
	Code        string
	Size        string
	SizeGroupID *uuid.UUID
	Quantity    int
	Price       decimal.Decimal
}

// ProductSpec carries the editable fields of a product
type ProductSpec struct {
	ProductTypeID uuid.UUID
	Name          string
	Code          string
	Size          string
	Quantity      int
	Price         decimal.Decimal
}

// NewProduct validates spec and creates a product without a size group
func NewProduct(spec ProductSpec) (*Product, error) {
	p := &Product{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	if err := p.apply(spec); err != nil {
		return nil, err
	}
	p.AddDomainEvent(NewProductCreatedEvent(p))
	return p, nil
}

// Update replaces every editable field. Changing the type or size clears the
// size group so it can be assigned again.
func (p *Product) Update(spec ProductSpec) error {
	typeID, size := p.ProductTypeID, p.Size
	if err := p.apply(spec); err != nil {
		return err
	}
	if typeID != p.ProductTypeID || size != p.Size {
		p.SizeGroupID = nil
	}
	p.Bump()
	return nil
}

func (p *Product) apply(spec ProductSpec) error {
	if spec.ProductTypeID == uuid.Nil {
		return shared.NewDomainError("INVALID_PRODUCT_TYPE", "Product type is required")
	}
	name := strings.TrimSpace(spec.Name)
	if name == "" || utf8.RuneCountInString(name) > maxProductNameLength {
		return shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name must be 1 to 100 characters")
	}
	code := strings.ToUpper(strings.TrimSpace(spec.Code))
	if code == "" || utf8.RuneCountInString(code) > MaxCodeLength {
		return shared.NewDomainError("INVALID_PRODUCT_CODE", "Product code must be 1 to 5 characters")
	}
	size := strings.TrimSpace(spec.Size)
	if size == "" || utf8.RuneCountInString(size) > maxSizeLength {
		return shared.NewDomainError("INVALID_SIZE", "Size must be 1 to 20 characters")
	}
	if spec.Quantity < 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Stock quantity cannot be negative")
	}
	if spec.Price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}

	p.ProductTypeID = spec.ProductTypeID
	p.Name = name
	p.Code = code
	p.Size = size
	p.Quantity = spec.Quantity
	p.Price = spec.Price
	return nil
}

// AssignSizeGroup links the product to group, or unlinks it when group is
// nil. The group must belong to the product's type and contain its size.
func (p *Product) AssignSizeGroup(group *SizeGroup) error {
	if group == nil {
		p.SizeGroupID = nil
		return nil
	}
	if group.ProductTypeID != p.ProductTypeID {
		return shared.NewDomainError("SIZE_GROUP_MISMATCH", "Size group belongs to another product type")
	}
	if !group.HasSize(p.Size) {
		return shared.NewDomainError("SIZE_GROUP_MISMATCH", "Size "+p.Size+" is not part of size group "+group.Name)
	}
	id := group.ID
	p.SizeGroupID = &id
	return nil
}

func (p *Product) IsInStock() bool  { return p.Quantity > 0 }
func (p *Product) IsLowStock() bool { return p.Quantity < LowStockThreshold }

// DisplayName is "Type - Name" when the type name is known
func (p *Product) DisplayName() string {
	if p.TypeName == "" {
		return p.Name
	}
	return p.TypeName + " - " + p.Name
}

// IsCompatibleWith reports whether other is another size of the same product
// in the same size group.
func (p *Product) IsCompatibleWith(other *Product) bool {
	return p.SizeGroupID != nil && other.SizeGroupID != nil &&
		*p.SizeGroupID == *other.SizeGroupID &&
		p.ProductTypeID == other.ProductTypeID &&
		p.Name == other.Name &&
		p.ID != other.ID
}

// take removes up to n units and returns how many were taken
func (p *Product) take(n int) int {
	used := min(n, p.Quantity)
	if used <= 0 {
		return 0
	}
	wasLow := p.IsLowStock()
	p.Quantity -= used
	p.Bump(NewStockReducedEvent(p, used))
	if !wasLow && p.IsLowStock() {
		p.AddDomainEvent(NewLowStockEvent(p))
	}
	return used
}
