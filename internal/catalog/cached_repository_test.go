package catalog

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghosttier/arsenal-server/internal/cache"
)

// stubCache is an in-process cache.Cache for exercising the read-through
// wrapper without Redis.
type stubCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	gets    int
	hits    int
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[string][]byte)}
}

func (s *stubCache) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	if data, ok := s.entries[key]; ok {
		s.hits++
		return data, nil
	}
	return nil, cache.ErrCacheMiss
}

func (s *stubCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = value
	return nil
}

func (s *stubCache) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *stubCache) Metrics() *cache.Metrics { return &cache.Metrics{} }
func (s *stubCache) Close() error            { return nil }

func TestCachedRepositoryReadThrough(t *testing.T) {
	inner := NewMemoryRepository()
	stub := newStubCache()
	repo := NewCachedRepository(inner, stub, time.Minute)

	created, err := inner.CreateWeapon(&Weapon{Name: "Locus", Category: CategorySniper, Tier: TierLegendary, IsActive: true})
	require.NoError(t, err)

	// First read misses and populates, second read hits.
	w, err := repo.FindWeapon(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Locus", w.Name)

	w, err = repo.FindWeapon(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Locus", w.Name)

	assert.Equal(t, 2, stub.gets)
	assert.Equal(t, 1, stub.hits)
}

func TestCachedRepositoryDropsOnWrite(t *testing.T) {
	inner := NewMemoryRepository()
	stub := newStubCache()
	repo := NewCachedRepository(inner, stub, time.Minute)

	created, err := repo.CreateWeapon(&Weapon{Name: "AK117", Category: CategoryAssault, Tier: TierEpic, IsActive: true})
	require.NoError(t, err)

	// Populate the cache.
	_, err = repo.FindWeapon(created.ID)
	require.NoError(t, err)

	created.Name = "AK117 — Dragonfyre"
	_, err = repo.UpdateWeapon(created.ID, created)
	require.NoError(t, err)

	// The stale entry must be gone; the next read sees the update.
	w, err := repo.FindWeapon(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "AK117 — Dragonfyre", w.Name)
}

func TestCachedRepositoryDeletePropagates(t *testing.T) {
	inner := NewMemoryRepository()
	stub := newStubCache()
	repo := NewCachedRepository(inner, stub, time.Minute)

	created, err := repo.CreateCharacter(&Character{Name: "Ghost", Faction: FactionGhost, IsActive: true})
	require.NoError(t, err)

	_, err = repo.FindCharacter(created.ID)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteCharacter(created.ID))
	_, err = repo.FindCharacter(created.ID)
	assert.ErrorIs(t, err, ErrCharacterNotFound)
}
