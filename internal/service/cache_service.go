package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"cricket-hub/pkg/redis"

	"go.uber.org/zap"
)

// CacheService provides cache-aside helpers over Redis. A nil Redis client
// turns every call into a miss, so callers never branch on configuration.
type CacheService struct {
	redis  *redis.Client
	keys   *redis.KeyBuilder
	logger *zap.Logger
}

// NewCacheService creates a new cache service. redisClient may be nil.
func NewCacheService(redisClient *redis.Client, environment string, logger *zap.Logger) *CacheService {
	keys := redis.NewKeyBuilder(environment)
	if redisClient != nil {
		keys = redisClient.KeyBuilder
	}
	return &CacheService{
		redis:  redisClient,
		keys:   keys,
		logger: logger,
	}
}

// Enabled reports whether a Redis client is configured
func (c *CacheService) Enabled() bool {
	return c != nil && c.redis != nil
}

// Keys returns the environment-aware key builder
func (c *CacheService) Keys() *redis.KeyBuilder {
	return c.keys
}

// GetJSON loads key into out and reports whether it was a hit. Errors and
// corrupt entries are logged and treated as misses.
func (c *CacheService) GetJSON(ctx context.Context, key string, out interface{}) bool {
	if !c.Enabled() {
		return false
	}
	cached, err := c.redis.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, redis.ErrMiss) {
			c.logger.Warn("Cache read failed, falling back", zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal([]byte(cached), out); err != nil {
		c.logger.Warn("Cache entry corrupted, falling back", zap.Error(err))
		return false
	}
	return true
}

// SetJSON stores v under key
func (c *CacheService) SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	if !c.Enabled() {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := c.redis.Set(ctx, key, string(data), ttl); err != nil {
		c.logger.Warn("Cache write failed", zap.Error(err))
		return err
	}
	return nil
}

// Remember returns the cached value for key or computes it with fallback
// and caches the result
func (c *CacheService) Remember(ctx context.Context, key string, ttl time.Duration, out interface{}, fallback func(ctx context.Context) (interface{}, error)) error {
	if c.GetJSON(ctx, key, out) {
		return nil
	}

	v, err := fallback(ctx)
	if err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return err
	}
	_ = c.SetJSON(ctx, key, v, ttl)
	return nil
}

// Invalidate removes keys; failures are logged only
func (c *CacheService) Invalidate(ctx context.Context, keys ...string) {
	if !c.Enabled() || len(keys) == 0 {
		return
	}
	if err := c.redis.Delete(ctx, keys...); err != nil {
		c.logger.Warn("Failed to invalidate cache keys", zap.Int("keys", len(keys)), zap.Error(err))
	}
}

// HealthCheck performs a health check on the cache system
func (c *CacheService) HealthCheck(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	start := time.Now()
	err := c.redis.Health(ctx)
	duration := time.Since(start)

	if err != nil {
		c.logger.Error("Cache health check failed",
			zap.Duration("duration", duration),
			zap.Error(err))
		return err
	}

	c.logger.Debug("Cache health check passed", zap.Duration("duration", duration))
	return nil
}
