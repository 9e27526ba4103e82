package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/openbooks/backend/internal/domain/billing"
)

// InMemoryTaxRateCache caches per-tenant tax rate lists in process memory.
// Suitable for single-instance deployments and tests; distributed setups
// should use RedisTaxRateCache so invalidations reach every instance.
type InMemoryTaxRateCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]inMemoryTaxRateEntry
	ttl     time.Duration
}

type inMemoryTaxRateEntry struct {
	rates     []billing.TaxRate
	expiresAt time.Time
}

// NewInMemoryTaxRateCache creates a new in-memory tax rate cache
func NewInMemoryTaxRateCache(ttl time.Duration) *InMemoryTaxRateCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &InMemoryTaxRateCache{
		entries: make(map[uuid.UUID]inMemoryTaxRateEntry),
		ttl:     ttl,
	}
}

// Get returns the cached tax rate list for a tenant, if present and fresh
func (c *InMemoryTaxRateCache) Get(_ context.Context, tenantID uuid.UUID) ([]billing.TaxRate, bool) {
	c.mu.RLock()
	entry, ok := c.entries[tenantID]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, tenantID)
		c.mu.Unlock()
		return nil, false
	}

	// Copy so callers cannot mutate the cached slice
	rates := make([]billing.TaxRate, len(entry.rates))
	copy(rates, entry.rates)
	return rates, true
}

// Set stores the tax rate list for a tenant
func (c *InMemoryTaxRateCache) Set(_ context.Context, tenantID uuid.UUID, rates []billing.TaxRate) {
	stored := make([]billing.TaxRate, len(rates))
	copy(stored, rates)

	c.mu.Lock()
	c.entries[tenantID] = inMemoryTaxRateEntry{
		rates:     stored,
		expiresAt: time.Now().Add(c.ttl),
	}
	c.mu.Unlock()
}

// Invalidate drops the cached list for a tenant
func (c *InMemoryTaxRateCache) Invalidate(_ context.Context, tenantID uuid.UUID) {
	c.mu.Lock()
	delete(c.entries, tenantID)
	c.mu.Unlock()
}
