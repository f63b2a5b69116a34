package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ghosttier/arsenal-server/internal/cache"
	"github.com/ghosttier/arsenal-server/internal/logging"
)

// CachedRepository wraps a Repository with a read-through cache for by-id
// lookups. These lookups sit on the hot path: the loadout core re-resolves
// every weapon/character reference at mutation and read time. List queries
// and admin reads bypass the cache; admin writes drop the affected keys.
type CachedRepository struct {
	inner Repository
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedRepository wraps inner with c. TTL = 0 uses the cache default.
func NewCachedRepository(inner Repository, c cache.Cache, ttl time.Duration) *CachedRepository {
	return &CachedRepository{inner: inner, cache: c, ttl: ttl}
}

func weaponKey(id string) string    { return "weapon:" + id }
func characterKey(id string) string { return "character:" + id }

// FindWeapon implements Repository.
func (r *CachedRepository) FindWeapon(id string) (*Weapon, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if data, err := r.cache.Get(ctx, weaponKey(id)); err == nil {
		var w Weapon
		if err := json.Unmarshal(data, &w); err == nil {
			return &w, nil
		}
		// Corrupt entry: fall through to the store and overwrite.
	}

	w, err := r.inner.FindWeapon(id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, weaponKey(id), w)
	return w, nil
}

// FindCharacter implements Repository.
func (r *CachedRepository) FindCharacter(id string) (*Character, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if data, err := r.cache.Get(ctx, characterKey(id)); err == nil {
		var c Character
		if err := json.Unmarshal(data, &c); err == nil {
			return &c, nil
		}
	}

	c, err := r.inner.FindCharacter(id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, characterKey(id), c)
	return c, nil
}

func (r *CachedRepository) store(ctx context.Context, key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, key, data, r.ttl); err != nil {
		logging.Warn("Failed to cache %s: %v", key, err)
	}
}

func (r *CachedRepository) drop(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := r.cache.Delete(ctx, key); err != nil {
		logging.Warn("Failed to invalidate %s: %v", key, err)
	}
}

// ListWeapons implements Repository.
func (r *CachedRepository) ListWeapons(filter WeaponFilter) ([]*Weapon, int64, error) {
	return r.inner.ListWeapons(filter)
}

// ListCharacters implements Repository.
func (r *CachedRepository) ListCharacters(activeOnly bool) ([]*Character, error) {
	return r.inner.ListCharacters(activeOnly)
}

// CreateWeapon implements Repository.
func (r *CachedRepository) CreateWeapon(w *Weapon) (*Weapon, error) {
	return r.inner.CreateWeapon(w)
}

// UpdateWeapon implements Repository.
func (r *CachedRepository) UpdateWeapon(id string, w *Weapon) (*Weapon, error) {
	updated, err := r.inner.UpdateWeapon(id, w)
	if err != nil {
		return nil, err
	}
	r.drop(weaponKey(id))
	return updated, nil
}

// DeleteWeapon implements Repository.
func (r *CachedRepository) DeleteWeapon(id string) error {
	if err := r.inner.DeleteWeapon(id); err != nil {
		return err
	}
	r.drop(weaponKey(id))
	return nil
}

// CreateCharacter implements Repository.
func (r *CachedRepository) CreateCharacter(c *Character) (*Character, error) {
	return r.inner.CreateCharacter(c)
}

// UpdateCharacter implements Repository.
func (r *CachedRepository) UpdateCharacter(id string, c *Character) (*Character, error) {
	updated, err := r.inner.UpdateCharacter(id, c)
	if err != nil {
		return nil, err
	}
	r.drop(characterKey(id))
	return updated, nil
}

// DeleteCharacter implements Repository.
func (r *CachedRepository) DeleteCharacter(id string) error {
	if err := r.inner.DeleteCharacter(id); err != nil {
		return err
	}
	r.drop(characterKey(id))
	return nil
}

// Counts implements Repository.
func (r *CachedRepository) Counts() (int64, int64, error) {
	return r.inner.Counts()
}
