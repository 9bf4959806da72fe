package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/murdhanno/backend/internal/domain/catalog"
)

// stockDraw tracks the products one order touches. Every product is loaded
// once so repeated lines and shared compatible sizes draw from the same
// in-memory stock, and each changed product is saved once.
type stockDraw struct {
	repo    catalog.ProductRepository
	loaded  map[uuid.UUID]*catalog.Product
	touched []*catalog.Product
	seen    map[uuid.UUID]bool
}

func newStockDraw(repo catalog.ProductRepository) *stockDraw {
	return &stockDraw{
		repo:   repo,
		loaded: make(map[uuid.UUID]*catalog.Product),
		seen:   make(map[uuid.UUID]bool),
	}
}

func (d *stockDraw) load(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	if p, ok := d.loaded[id]; ok {
		return p, nil
	}
	p, err := d.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d.loaded[id] = p
	return p, nil
}

func (d *stockDraw) compatible(ctx context.Context, p *catalog.Product) ([]*catalog.Product, error) {
	found, err := d.repo.FindCompatible(ctx, p)
	if err != nil {
		return nil, err
	}
	out := make([]*catalog.Product, len(found))
	for i, c := range found {
		if cached, ok := d.loaded[c.ID]; ok {
			out[i] = cached
			continue
		}
		d.loaded[c.ID] = c
		out[i] = c
	}
	return out, nil
}

// draw takes qty units for productID and returns the ordered product
func (d *stockDraw) draw(ctx context.Context, productID uuid.UUID, qty int) (*catalog.Product, error) {
	p, err := d.load(ctx, productID)
	if err != nil {
		return nil, err
	}
	compatible, err := d.compatible(ctx, p)
	if err != nil {
		return nil, err
	}
	used, err := catalog.Fulfill(p, compatible, qty)
	if err != nil {
		return nil, err
	}
	for _, u := range used {
		if !d.seen[u.ID] {
			d.seen[u.ID] = true
			d.touched = append(d.touched, u)
		}
	}
	return p, nil
}

func (d *stockDraw) save(ctx context.Context) ([]*catalog.Product, error) {
	for _, p := range d.touched {
		if err := d.repo.Save(ctx, p); err != nil {
			return nil, err
		}
	}
	return d.touched, nil
}
