package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/ghosttier/arsenal-server/internal/logging"
)

// RedisCache implements Cache on Redis. An optional Invalidator keeps
// multiple instances consistent: Delete publishes the key, and remote
// announcements delete the local copy.
type RedisCache struct {
	client      *redis.Client
	config      *Config
	invalidator Invalidator

	// Counters, updated with atomics.
	totalRequests int64
	cacheHits     int64
	cacheMisses   int64
	latencySum    int64 // nanoseconds
	latencyCount  int64
	maxLatency    int64
}

// NewRedisCache connects to Redis and returns a ready cache. The
// invalidator may be nil for single-instance deployments.
func NewRedisCache(config *Config, invalidator Invalidator) (*RedisCache, error) {
	if config.RedisAddr == "" {
		config.RedisAddr = "localhost:6379"
	}
	if config.DefaultTTL == 0 {
		config.DefaultTTL = 5 * time.Minute
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr,
		Password: config.RedisPassword,
		DB:       config.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	rc := &RedisCache{
		client:      client,
		config:      config,
		invalidator: invalidator,
	}

	if invalidator != nil {
		if err := invalidator.SubscribeInvalidations(rc.dropLocal); err != nil {
			return nil, err
		}
	}

	logging.Info("Redis cache connected (%s, ttl=%s)", config.RedisAddr, config.DefaultTTL)
	return rc, nil
}

// Get implements Cache.
func (rc *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	atomic.AddInt64(&rc.totalRequests, 1)

	val, err := rc.client.Get(ctx, key).Bytes()
	rc.recordLatency(time.Since(start))

	if err == redis.Nil {
		atomic.AddInt64(&rc.cacheMisses, 1)
		return nil, ErrCacheMiss
	}
	if err != nil {
		atomic.AddInt64(&rc.cacheMisses, 1)
		return nil, err
	}
	atomic.AddInt64(&rc.cacheHits, 1)
	return val, nil
}

// Set implements Cache.
func (rc *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = rc.config.DefaultTTL
	}
	return rc.client.Set(ctx, key, value, ttl).Err()
}

// Delete implements Cache.
func (rc *RedisCache) Delete(ctx context.Context, key string) error {
	if err := rc.client.Del(ctx, key).Err(); err != nil {
		return err
	}
	if rc.invalidator != nil {
		if err := rc.invalidator.PublishInvalidation(ctx, key); err != nil {
			// Local delete already happened; remote copies expire by TTL.
			logging.Warn("Failed to publish invalidation for %s: %v", key, err)
		}
	}
	return nil
}

// dropLocal handles invalidations announced by other nodes.
func (rc *RedisCache) dropLocal(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return rc.client.Del(ctx, key).Err()
}

// Metrics implements Cache.
func (rc *RedisCache) Metrics() *Metrics {
	total := atomic.LoadInt64(&rc.totalRequests)
	hits := atomic.LoadInt64(&rc.cacheHits)
	misses := atomic.LoadInt64(&rc.cacheMisses)

	var hitRatio float64
	if total > 0 {
		hitRatio = float64(hits) / float64(total)
	}

	var avgLatency float64
	if count := atomic.LoadInt64(&rc.latencyCount); count > 0 {
		avgLatency = float64(atomic.LoadInt64(&rc.latencySum)) / float64(count) / 1e6
	}

	return &Metrics{
		TotalRequests: total,
		CacheHits:     hits,
		CacheMisses:   misses,
		HitRatio:      hitRatio,
		AvgLatencyMs:  avgLatency,
		MaxLatencyMs:  float64(atomic.LoadInt64(&rc.maxLatency)) / 1e6,
		LastUpdate:    time.Now(),
	}
}

// Close implements Cache.
func (rc *RedisCache) Close() error {
	if rc.invalidator != nil {
		_ = rc.invalidator.Close()
	}
	return rc.client.Close()
}

func (rc *RedisCache) recordLatency(d time.Duration) {
	ns := d.Nanoseconds()
	atomic.AddInt64(&rc.latencySum, ns)
	atomic.AddInt64(&rc.latencyCount, 1)
	for {
		max := atomic.LoadInt64(&rc.maxLatency)
		if ns <= max || atomic.CompareAndSwapInt64(&rc.maxLatency, max, ns) {
			break
		}
	}
}
