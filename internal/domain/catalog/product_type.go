package catalog

import (
	"strings"
	"unicode/utf8"

	"github.com/murdhanno/backend/internal/domain/shared"
)

const (
	maxTypeNameLength    = 50
	maxDescriptionLength = 200
)

// ProductType groups products of one kind, e.g. Panjabi or Saree. Size groups
// are defined per type.
type ProductType struct {
	shared.BaseAggregateRoot
	Name        string
	Description string
}

// NewProductType validates and creates a product type
func NewProductType(name, description string) (*ProductType, error) {
	t := &ProductType{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	if err := t.set(name, description); err != nil {
		return nil, err
	}
	return t, nil
}

// Update renames the type and replaces its description
func (t *ProductType) Update(name, description string) error {
	if err := t.set(name, description); err != nil {
		return err
	}
	t.Bump()
	return nil
}

func (t *ProductType) set(name, description string) error {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxTypeNameLength {
		return shared.NewDomainError("INVALID_PRODUCT_TYPE_NAME", "Product type name must be 1 to 50 characters")
	}
	description = strings.TrimSpace(description)
	if utf8.RuneCountInString(description) > maxDescriptionLength {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 200 characters")
	}
	t.Name = name
	t.Description = description
	return nil
}
