// Package cache holds the rendered invoice cache backends.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const invoiceKeyPrefix = "invoice:pdf:"

// InvoiceKey identifies one rendering of an order. Version is the order's
// last update time, so any change to the order misses the cache.
type InvoiceKey struct {
	OrderID   uuid.UUID
	PaperSize string
	Version   int64
}

// NewInvoiceKey builds a key versioned by updatedAt
func NewInvoiceKey(orderID uuid.UUID, paperSize string, updatedAt time.Time) InvoiceKey {
	return InvoiceKey{OrderID: orderID, PaperSize: paperSize, Version: updatedAt.Unix()}
}

// String returns invoice:pdf:{order}:{paper}:{version}
func (k InvoiceKey) String() string {
	return fmt.Sprintf("%s%s:%s:%d", invoiceKeyPrefix, k.OrderID, k.PaperSize, k.Version)
}

// CachedInvoice is a rendered PDF with its page count
type CachedInvoice struct {
	PDFData   []byte
	PageCount int
}

// InvoiceCache stores rendered invoice PDFs
type InvoiceCache interface {
	// Get returns the cached invoice and true on a hit
	Get(ctx context.Context, key InvoiceKey) (*CachedInvoice, bool, error)
	// Set stores the invoice for ttl. A non-positive ttl disables caching.
	Set(ctx context.Context, key InvoiceKey, inv *CachedInvoice, ttl time.Duration) error
	// Close releases resources held by the cache
	Close() error
}
