package catalog

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/murdhanno/backend/internal/domain/shared"
)

const (
	maxGroupNameLength = 50
	maxSizeLength      = 20
)

// SizeGroup marks sizes of one product type as interchangeable. An order for
// one size may be filled from the stock of the other sizes in its group.
type SizeGroup struct {
	shared.BaseAggregateRoot
	ProductTypeID uuid.UUID
	Name          string
	Description   string
	Sizes         []string
}

// NewSizeGroup validates and creates a size group for a product type
func NewSizeGroup(productTypeID uuid.UUID, name, description string, sizes []string) (*SizeGroup, error) {
	if productTypeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT_TYPE", "Product type is required")
	}
	g := &SizeGroup{BaseAggregateRoot: shared.NewBaseAggregateRoot(), ProductTypeID: productTypeID}
	if err := g.set(name, description); err != nil {
		return nil, err
	}
	if err := g.setSizes(sizes); err != nil {
		return nil, err
	}
	return g, nil
}

// Update replaces the name, description and the whole size list
func (g *SizeGroup) Update(name, description string, sizes []string) error {
	if err := g.set(name, description); err != nil {
		return err
	}
	if err := g.setSizes(sizes); err != nil {
		return err
	}
	g.Bump()
	return nil
}

// HasSize reports whether size belongs to the group
func (g *SizeGroup) HasSize(size string) bool {
	return slices.Contains(g.Sizes, strings.TrimSpace(size))
}

func (g *SizeGroup) set(name, description string) error {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxGroupNameLength {
		return shared.NewDomainError("INVALID_SIZE_GROUP_NAME", "Size group name must be 1 to 50 characters")
	}
	description = strings.TrimSpace(description)
	if utf8.RuneCountInString(description) > maxDescriptionLength {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 200 characters")
	}
	g.Name = name
	g.Description = description
	return nil
}

func (g *SizeGroup) setSizes(sizes []string) error {
	var out []string
	for _, s := range sizes {
		s = strings.TrimSpace(s)
		if s == "" || slices.Contains(out, s) {
			continue
		}
		if utf8.RuneCountInString(s) > maxSizeLength {
			return shared.NewDomainError("INVALID_SIZE", "Size cannot exceed 20 characters")
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return shared.NewDomainError("EMPTY_SIZE_GROUP", "A size group needs at least one size")
	}
	g.Sizes = out
	return nil
}
