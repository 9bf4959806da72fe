package cache

import (
	"context"
	"sync"
	"time"
)

// DefaultMaxEntries bounds the in-memory cache
const DefaultMaxEntries = 256

type invoiceEntry struct {
	invoice   CachedInvoice
	expiresAt time.Time
}

// InMemoryInvoiceCache implements InvoiceCache using an in-memory map
// This is suitable for single-instance deployments and testing
type InMemoryInvoiceCache struct {
	mu         sync.RWMutex
	entries    map[string]invoiceEntry
	maxEntries int
	stopChan   chan struct{}
	wg         sync.WaitGroup
	closeOnce  sync.Once
}

// NewInMemoryInvoiceCache creates a new in-memory cache holding at most
// maxEntries invoices. It starts a background goroutine to clean up
// expired entries.
func NewInMemoryInvoiceCache(maxEntries int) *InMemoryInvoiceCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	c := &InMemoryInvoiceCache{
		entries:    make(map[string]invoiceEntry),
		maxEntries: maxEntries,
		stopChan:   make(chan struct{}),
	}

	c.wg.Add(1)
	go c.cleanupLoop()

	return c
}

func (c *InMemoryInvoiceCache) Get(ctx context.Context, key InvoiceKey) (*CachedInvoice, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key.String()]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false, nil
	}
	inv := e.invoice
	return &inv, true, nil
}

func (c *InMemoryInvoiceCache) Set(ctx context.Context, key InvoiceKey, inv *CachedInvoice, ttl time.Duration) error {
	if ttl <= 0 || inv == nil || len(inv.PDFData) == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	k := key.String()
	if _, exists := c.entries[k]; !exists && len(c.entries) >= c.maxEntries {
		c.evictLocked()
	}
	c.entries[k] = invoiceEntry{
		invoice:   CachedInvoice{PDFData: append([]byte(nil), inv.PDFData...), PageCount: inv.PageCount},
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// evictLocked drops expired entries, or the one closest to expiry when
// none have expired
func (c *InMemoryInvoiceCache) evictLocked() {
	now := time.Now()
	var (
		victim string
		oldest time.Time
	)
	removed := false
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
			removed = true
			continue
		}
		if victim == "" || e.expiresAt.Before(oldest) {
			victim, oldest = k, e.expiresAt
		}
	}
	if !removed && victim != "" {
		delete(c.entries, victim)
	}
}

// Close stops the cleanup goroutine and releases resources
// Safe to call multiple times
func (c *InMemoryInvoiceCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

// cleanupLoop periodically removes expired entries
func (c *InMemoryInvoiceCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *InMemoryInvoiceCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}

// Size returns the number of entries in the cache (for testing/monitoring)
func (c *InMemoryInvoiceCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

var _ InvoiceCache = (*InMemoryInvoiceCache)(nil)
