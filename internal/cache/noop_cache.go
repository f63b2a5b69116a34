package cache

import (
	"context"
	"time"
)

// NoopCache implements Cache without storing anything. It lets callers
// take a Cache unconditionally: every Get is a miss, writes are
// discarded. Used when Redis is not configured.
type NoopCache struct{}

func NewNoopCache() *NoopCache { return &NoopCache{} }

// Get implements Cache. Always a miss.
func (n *NoopCache) Get(_ context.Context, _ string) ([]byte, error) {
	return nil, ErrCacheMiss
}

// Set implements Cache.
func (n *NoopCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error {
	return nil
}

// Delete implements Cache.
func (n *NoopCache) Delete(_ context.Context, _ string) error { return nil }

// Metrics implements Cache.
func (n *NoopCache) Metrics() *Metrics { return &Metrics{} }

// Close implements Cache.
func (n *NoopCache) Close() error { return nil }
