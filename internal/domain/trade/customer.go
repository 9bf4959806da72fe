package trade

import (
	"strings"
	"unicode/utf8"

	"github.com/murdhanno/backend/internal/domain/shared"
)

// Customer is the buyer snapshot stored with an order
type Customer struct {
	Name    string
	Phone   string
	Address string
}

// NewCustomer trims and validates the customer fields
func NewCustomer(name, phone, address string) (Customer, error) {
	c := Customer{
		Name:    strings.TrimSpace(name),
		Phone:   strings.TrimSpace(phone),
		Address: strings.TrimSpace(address),
	}
	if c.Name == "" || utf8.RuneCountInString(c.Name) > 100 {
		return Customer{}, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name must be 1 to 100 characters")
	}
	if c.Phone == "" || len(c.Phone) > 20 {
		return Customer{}, shared.NewDomainError("INVALID_CUSTOMER_PHONE", "Customer phone must be 1 to 20 characters")
	}
	if c.Address == "" {
		return Customer{}, shared.NewDomainError("INVALID_CUSTOMER_ADDRESS", "Customer address cannot be empty")
	}
	return c, nil
}
