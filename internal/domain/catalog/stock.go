package catalog

import (
	"fmt"

	"github.com/murdhanno/backend/internal/domain/shared"
)

// ErrInsufficientStock is matched by code; Fulfill returns it with the
// available quantity in the message.
var ErrInsufficientStock = shared.NewDomainError("INSUFFICIENT_STOCK", "Not enough stock")

// Available is the stock of p plus the stock of every compatible size
func Available(p *Product, compatible []*Product) int {
	total := p.Quantity
	for _, c := range compatible {
		if p.IsCompatibleWith(c) {
			total += c.Quantity
		}
	}
	return total
}

// Fulfill draws qty units from p and, once p runs out, from the compatible
// sizes in the given order. Nothing changes when the combined stock is short.
// It returns the products whose stock was reduced.
func Fulfill(p *Product, compatible []*Product, qty int) ([]*Product, error) {
	if qty <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if available := Available(p, compatible); available < qty {
		return nil, shared.NewDomainError(ErrInsufficientStock.Code,
			fmt.Sprintf("Only %d items available for %s", available, p.DisplayName()))
	}

	var touched []*Product
	remaining := qty
	if used := p.take(remaining); used > 0 {
		touched = append(touched, p)
		remaining -= used
	}
	for _, c := range compatible {
		if remaining == 0 {
			break
		}
		if !p.IsCompatibleWith(c) {
			continue
		}
		if used := c.take(remaining); used > 0 {
			touched = append(touched, c)
			remaining -= used
		}
	}
	return touched, nil
}
