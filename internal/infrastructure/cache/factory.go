package cache

import (
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrRedisRequired is returned when Redis is unavailable and the in-memory
// fallback is disabled
var ErrRedisRequired = errors.New("redis required for invoice cache but unavailable")

// InvoiceCacheFactory creates invoice caches based on Redis availability
type InvoiceCacheFactory struct {
	client                redis.UniversalClient
	logger                *zap.Logger
	allowInMemoryFallback bool
	maxEntries            int
}

// InvoiceCacheFactoryOption is a functional option for configuring the factory
type InvoiceCacheFactoryOption func(*InvoiceCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) InvoiceCacheFactoryOption {
	return func(f *InvoiceCacheFactory) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory cache
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) InvoiceCacheFactoryOption {
	return func(f *InvoiceCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// WithMaxEntries bounds the in-memory fallback
func WithMaxEntries(n int) InvoiceCacheFactoryOption {
	return func(f *InvoiceCacheFactory) {
		f.maxEntries = n
	}
}

// NewInvoiceCacheFactory creates a new factory. client may be nil when Redis
// is disabled or could not be reached.
func NewInvoiceCacheFactory(client redis.UniversalClient, opts ...InvoiceCacheFactoryOption) *InvoiceCacheFactory {
	f := &InvoiceCacheFactory{
		client:                client,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
		maxEntries:            DefaultMaxEntries,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateCache returns a Redis cache when a client is available and falls
// back to the in-memory cache otherwise
func (f *InvoiceCacheFactory) CreateCache() (InvoiceCache, error) {
	if f.client != nil {
		f.logger.Info("using Redis invoice cache")
		return NewRedisInvoiceCache(f.client), nil
	}

	if !f.allowInMemoryFallback {
		return nil, ErrRedisRequired
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory invoice cache. " +
		"Rendered invoices are not shared between instances.")
	return NewInMemoryInvoiceCache(f.maxEntries), nil
}
