package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/openbooks/backend/internal/domain/billing"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const taxRateKeyPrefix = "taxrates:tenant:"

// RedisTaxRateCache caches per-tenant tax rate lists in Redis. This is
// suitable for distributed deployments where multiple instances share
// cache state. Cache failures degrade to misses; the database stays the
// source of truth.
type RedisTaxRateCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisTaxRateCache creates a cache backed by an existing Redis client
func NewRedisTaxRateCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisTaxRateCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisTaxRateCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Get returns the cached tax rate list for a tenant, if present
func (c *RedisTaxRateCache) Get(ctx context.Context, tenantID uuid.UUID) ([]billing.TaxRate, bool) {
	payload, err := c.client.Get(ctx, taxRateKeyPrefix+tenantID.String()).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("tax rate cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var rates []billing.TaxRate
	if err := json.Unmarshal(payload, &rates); err != nil {
		c.logger.Warn("tax rate cache entry corrupt, discarding",
			zap.String("tenant_id", tenantID.String()), zap.Error(err))
		c.client.Del(ctx, taxRateKeyPrefix+tenantID.String())
		return nil, false
	}
	return rates, true
}

// Set stores the tax rate list for a tenant with the configured TTL
func (c *RedisTaxRateCache) Set(ctx context.Context, tenantID uuid.UUID, rates []billing.TaxRate) {
	payload, err := json.Marshal(rates)
	if err != nil {
		c.logger.Warn("tax rate cache marshal failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, taxRateKeyPrefix+tenantID.String(), payload, c.ttl).Err(); err != nil {
		c.logger.Warn("tax rate cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached list for a tenant
func (c *RedisTaxRateCache) Invalidate(ctx context.Context, tenantID uuid.UUID) {
	if err := c.client.Del(ctx, taxRateKeyPrefix+tenantID.String()).Err(); err != nil {
		c.logger.Warn("tax rate cache invalidation failed", zap.Error(err))
	}
}

// Close closes the underlying Redis client
func (c *RedisTaxRateCache) Close() error {
	return c.client.Close()
}
