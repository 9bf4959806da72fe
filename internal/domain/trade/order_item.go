package trade

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/murdhanno/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	// TrackingCodeLength is the fixed length of an item tracking code
	TrackingCodeLength = 12
	// MaxProductCodeLength bounds the product code prefix of a tracking code
	MaxProductCodeLength = 5
	maxSizeChars         = 4
)

// OrderItem is one product line of an order
type OrderItem struct {
	ID     uuid.UUID
	Serial int64
	// ProductID links the line to the catalog product it was sold from
	ProductID    *uuid.UUID
	ProductName  string
	ProductCode  string
	Size         string
	Quantity     int
	UnitPrice    decimal.Decimal
	TrackingCode string
}

// NewOrderItem validates and builds an item. serial is the store-wide item
// sequence value that ends the tracking code.
func NewOrderItem(serial int64, productName, productCode, size string, quantity int, unitPrice decimal.Decimal) (*OrderItem, error) {
	productName = strings.TrimSpace(productName)
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if utf8.RuneCountInString(productCode) > MaxProductCodeLength {
		return nil, shared.NewDomainError("INVALID_PRODUCT_CODE", "Product code cannot exceed 5 characters")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if serial <= 0 {
		return nil, shared.NewDomainError("INVALID_SERIAL", "Item serial must be positive")
	}

	return &OrderItem{
		ID:           uuid.New(),
		Serial:       serial,
		ProductName:  productName,
		ProductCode:  productCode,
		Size:         size,
		Quantity:     quantity,
		UnitPrice:    unitPrice,
		TrackingCode: GenerateTrackingCode(productCode, size, serial),
	}, nil
}

// Subtotal returns quantity times unit price
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// GenerateTrackingCode builds product code + size (at most 4 chars) + the
// serial left-padded with zeros to TrackingCodeLength. The serial always keeps
// at least one character; the size shrinks first and an overlong serial keeps
// its rightmost digits.
func GenerateTrackingCode(productCode, size string, serial int64) string {
	code := []rune(productCode)
	sz := []rune(size)
	if len(sz) > maxSizeChars {
		sz = sz[:maxSizeChars]
	}

	pad := TrackingCodeLength - len(code) - len(sz)
	if pad < 1 {
		keep := max(TrackingCodeLength-len(code)-1, 0)
		if len(sz) > keep {
			sz = sz[:keep]
		}
		pad = max(TrackingCodeLength-len(code)-len(sz), 1)
	}

	id := strconv.FormatInt(serial, 10)
	if len(id) < pad {
		id = strings.Repeat("0", pad-len(id)) + id
	} else if len(id) > pad {
		id = id[len(id)-pad:]
	}
	return string(code) + string(sz) + id
}
