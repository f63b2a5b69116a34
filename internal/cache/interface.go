package cache

import (
	"context"
	"time"
)

// Cache is a read-through cache for catalog entities. The catalog is
// read-mostly; admin writes go straight to the backing store and only
// delete keys here.
//
// Usage:
//
//	c, _ := NewRedisCache(cfg)
//	data, err := c.Get(ctx, "weapon:"+id)
//	err = c.Set(ctx, "weapon:"+id, data, 30*time.Second)
//	err = c.Delete(ctx, "weapon:"+id)
type Cache interface {
	// Get returns the value for key, or ErrCacheMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key with the given TTL. TTL = 0 means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the key locally and, when an invalidator is attached,
	// fans the deletion out to other instances.
	Delete(ctx context.Context, key string) error

	// Metrics returns a snapshot of cache performance counters.
	Metrics() *Metrics

	// Close closes the connection.
	Close() error
}

// Invalidator fans cache deletions out to other instances via Pub/Sub.
type Invalidator interface {
	// PublishInvalidation announces that key is stale.
	PublishInvalidation(ctx context.Context, key string) error

	// SubscribeInvalidations registers the handler called for announcements
	// from OTHER nodes (own messages are filtered out).
	SubscribeInvalidations(handler InvalidationHandler) error

	// Close closes the connection.
	Close() error
}

// InvalidationHandler processes a remote invalidation for key.
type InvalidationHandler func(key string) error

// Metrics holds cache performance counters.
type Metrics struct {
	TotalRequests int64     `json:"total_requests"`
	CacheHits     int64     `json:"cache_hits"`
	CacheMisses   int64     `json:"cache_misses"`
	HitRatio      float64   `json:"hit_ratio"`
	AvgLatencyMs  float64   `json:"avg_latency_ms"`
	MaxLatencyMs  float64   `json:"max_latency_ms"`
	LastUpdate    time.Time `json:"last_update"`
}

// Config contains Redis cache settings.
type Config struct {
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	DefaultTTL    time.Duration `yaml:"default_ttl"`
}

// CacheError represents a cache failure.
type CacheError struct {
	Message string
}

func (e *CacheError) Error() string { return e.Message }

var (
	ErrCacheMiss    = &CacheError{Message: "cache miss"}
	ErrCacheTimeout = &CacheError{Message: "cache timeout"}
)

// IsCacheMiss reports whether err is a cache miss.
func IsCacheMiss(err error) bool {
	return err == ErrCacheMiss
}
