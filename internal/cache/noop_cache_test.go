package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopCache(t *testing.T) {
	ctx := context.Background()
	c := NewNoopCache()

	require.NoError(t, c.Set(ctx, "weapons:all", []byte(`[]`), time.Minute))

	// Writes are discarded, so every read is a miss.
	val, err := c.Get(ctx, "weapons:all")
	assert.Nil(t, val)
	assert.ErrorIs(t, err, ErrCacheMiss)

	assert.NoError(t, c.Delete(ctx, "weapons:all"))
	assert.NotNil(t, c.Metrics())
	assert.NoError(t, c.Close())
}
