package maps

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"routesync/internal/types"
)

const (
	polylineKeyPrefix = "routesync:polyline:"
	polylineTTL       = 24 * time.Hour
)

// PolylineCache memoizes Directions results in Redis, keyed by the ordered
// waypoint coordinates. Polylines only depend on the coordinate sequence, so
// repeated edits that land on a previously seen order skip the API call.
type PolylineCache struct {
	redis *redis.Client
}

func NewPolylineCache(client *redis.Client) *PolylineCache {
	return &PolylineCache{redis: client}
}

func (c *PolylineCache) Get(ctx context.Context, waypoints []types.Waypoint) (string, bool) {
	v, err := c.redis.Get(ctx, cacheKey(waypoints)).Result()
	if err != nil {
		return "", false
	}
	return v, true
}

func (c *PolylineCache) Put(ctx context.Context, waypoints []types.Waypoint, polyline string) {
	if err := c.redis.Set(ctx, cacheKey(waypoints), polyline, polylineTTL).Err(); err != nil {
		log.Printf("maps: cache polyline: %v", err)
	}
}

func cacheKey(waypoints []types.Waypoint) string {
	h := sha256.New()
	for _, w := range waypoints {
		fmt.Fprintf(h, "%f,%f;", w.Latitude, w.Longitude)
	}
	return polylineKeyPrefix + hex.EncodeToString(h.Sum(nil))
}

// CachedOptimizer wraps an Optimizer with the polyline cache. Order
// optimization always goes to the API; only fixed-order polyline lookups are
// cached.
type CachedOptimizer struct {
	inner *Optimizer
	cache *PolylineCache
}

func NewCachedOptimizer(inner *Optimizer, cache *PolylineCache) *CachedOptimizer {
	return &CachedOptimizer{inner: inner, cache: cache}
}

func (c *CachedOptimizer) ComputeRoute(ctx context.Context, waypoints []types.Waypoint) (string, error) {
	if polyline, ok := c.cache.Get(ctx, waypoints); ok {
		return polyline, nil
	}
	polyline, err := c.inner.ComputeRoute(ctx, waypoints)
	if err != nil {
		return "", err
	}
	c.cache.Put(ctx, waypoints, polyline)
	return polyline, nil
}

func (c *CachedOptimizer) OptimizeOrder(ctx context.Context, waypoints []types.Waypoint) ([]types.Waypoint, string, error) {
	reordered, polyline, err := c.inner.OptimizeOrder(ctx, waypoints)
	if err != nil {
		return nil, "", err
	}
	if polyline != "" {
		c.cache.Put(ctx, reordered, polyline)
	}
	return reordered, polyline, nil
}
