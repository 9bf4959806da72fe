package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/murdhanno/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

const (
	fieldPDF   = "pdf"
	fieldPages = "pages"
)

// RedisInvoiceCache implements InvoiceCache using Redis hashes
// This is suitable for distributed deployments where multiple instances
// need to share rendered invoices
type RedisInvoiceCache struct {
	client redis.UniversalClient
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisInvoiceCache creates a cache with an existing Redis client.
// The client is shared, so Close does not close it.
func NewRedisInvoiceCache(client redis.UniversalClient) *RedisInvoiceCache {
	return &RedisInvoiceCache{client: client}
}

func (c *RedisInvoiceCache) Get(ctx context.Context, key InvoiceKey) (*CachedInvoice, bool, error) {
	values, err := c.client.HGetAll(ctx, key.String()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read cached invoice: %w", err)
	}
	pdf, ok := values[fieldPDF]
	if !ok || pdf == "" {
		return nil, false, nil
	}

	pages, err := strconv.Atoi(values[fieldPages])
	if err != nil {
		return nil, false, nil
	}
	return &CachedInvoice{PDFData: []byte(pdf), PageCount: pages}, true, nil
}

// Set writes the hash and its expiry in one transaction
func (c *RedisInvoiceCache) Set(ctx context.Context, key InvoiceKey, inv *CachedInvoice, ttl time.Duration) error {
	if ttl <= 0 || inv == nil || len(inv.PDFData) == 0 {
		return nil
	}

	k := key.String()
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, k, fieldPDF, inv.PDFData, fieldPages, inv.PageCount)
		pipe.Expire(ctx, k, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to cache invoice: %w", err)
	}
	return nil
}

func (c *RedisInvoiceCache) Close() error {
	return nil
}

var _ InvoiceCache = (*RedisInvoiceCache)(nil)
