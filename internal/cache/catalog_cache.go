package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/prepstack/prepstack-api/internal/models"
)

const (
	catalogListKey = "catalog:active"
	catalogListTTL = 5 * time.Minute
)

// ErrCacheMiss is returned when the requested entry is not cached.
var ErrCacheMiss = errors.New("cache miss")

// CatalogCache caches the active test-series listing. The listing is the
// hottest read on the student-facing site; a short TTL plus explicit
// invalidation on price updates keeps it close to the catalog.
type CatalogCache struct {
	redis *RedisClient
}

// NewCatalogCache creates a new CatalogCache.
func NewCatalogCache(redis *RedisClient) *CatalogCache {
	return &CatalogCache{redis: redis}
}

// GetActiveList returns the cached active listing or ErrCacheMiss.
func (c *CatalogCache) GetActiveList(ctx context.Context) ([]models.TestSeries, error) {
	raw, err := c.redis.Get(ctx, catalogListKey)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	var list []models.TestSeries
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		// Corrupt entry: drop it and treat as a miss.
		_ = c.redis.Delete(ctx, catalogListKey)
		return nil, ErrCacheMiss
	}
	return list, nil
}

// SetActiveList stores the active listing.
func (c *CatalogCache) SetActiveList(ctx context.Context, list []models.TestSeries) error {
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog list: %w", err)
	}
	return c.redis.Set(ctx, catalogListKey, string(raw), catalogListTTL)
}

// Invalidate drops the cached listing. Called after every price update or
// activation change so readers never see a stale price past the write.
func (c *CatalogCache) Invalidate(ctx context.Context) error {
	return c.redis.Delete(ctx, catalogListKey)
}
