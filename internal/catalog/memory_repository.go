package catalog

import (
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepository is a threadsafe in-memory catalog for tests and seeds.
type MemoryRepository struct {
	mu         sync.RWMutex
	weapons    map[string]*Weapon
	characters map[string]*Character
}

// NewMemoryRepository returns an empty catalog.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		weapons:    make(map[string]*Weapon),
		characters: make(map[string]*Character),
	}
}

// FindWeapon implements Repository.
func (r *MemoryRepository) FindWeapon(id string) (*Weapon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.weapons[id]
	if !ok {
		return nil, ErrWeaponNotFound
	}
	clone := *w
	return &clone, nil
}

// ListWeapons implements Repository.
func (r *MemoryRepository) ListWeapons(filter WeaponFilter) ([]*Weapon, int64, error) {
	filter.Normalize()
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*Weapon
	for _, w := range r.weapons {
		if filter.ActiveOnly && !w.IsActive {
			continue
		}
		if filter.Category != "" && w.Category != filter.Category {
			continue
		}
		if filter.Tier != "" && w.Tier != filter.Tier {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(w.Name), needle) &&
				!strings.Contains(strings.ToLower(w.Description), needle) {
				continue
			}
		}
		clone := *w
		matched = append(matched, &clone)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := (filter.Page - 1) * filter.Limit
	if start >= len(matched) {
		return []*Weapon{}, total, nil
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

// CreateWeapon implements Repository.
func (r *MemoryRepository) CreateWeapon(w *Weapon) (*Weapon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *w
	if stored.ID == "" {
		stored.ID = primitive.NewObjectID().Hex()
	}
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.weapons[stored.ID] = &stored
	clone := stored
	return &clone, nil
}

// UpdateWeapon implements Repository.
func (r *MemoryRepository) UpdateWeapon(id string, w *Weapon) (*Weapon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.weapons[id]
	if !ok {
		return nil, ErrWeaponNotFound
	}
	updated := *w
	updated.ID = id
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now()
	r.weapons[id] = &updated
	clone := updated
	return &clone, nil
}

// DeleteWeapon implements Repository.
func (r *MemoryRepository) DeleteWeapon(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.weapons[id]; !ok {
		return ErrWeaponNotFound
	}
	delete(r.weapons, id)
	return nil
}

// FindCharacter implements Repository.
func (r *MemoryRepository) FindCharacter(id string) (*Character, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.characters[id]
	if !ok {
		return nil, ErrCharacterNotFound
	}
	clone := *c
	return &clone, nil
}

// ListCharacters implements Repository.
func (r *MemoryRepository) ListCharacters(activeOnly bool) ([]*Character, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Character
	for _, c := range r.characters {
		if activeOnly && !c.IsActive {
			continue
		}
		clone := *c
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// CreateCharacter implements Repository.
func (r *MemoryRepository) CreateCharacter(c *Character) (*Character, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *c
	if stored.ID == "" {
		stored.ID = primitive.NewObjectID().Hex()
	}
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.characters[stored.ID] = &stored
	clone := stored
	return &clone, nil
}

// UpdateCharacter implements Repository.
func (r *MemoryRepository) UpdateCharacter(id string, c *Character) (*Character, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.characters[id]
	if !ok {
		return nil, ErrCharacterNotFound
	}
	updated := *c
	updated.ID = id
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now()
	r.characters[id] = &updated
	clone := updated
	return &clone, nil
}

// DeleteCharacter implements Repository.
func (r *MemoryRepository) DeleteCharacter(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.characters[id]; !ok {
		return ErrCharacterNotFound
	}
	delete(r.characters, id)
	return nil
}

// Counts implements Repository.
func (r *MemoryRepository) Counts() (int64, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var weapons, characters int64
	for _, w := range r.weapons {
		if w.IsActive {
			weapons++
		}
	}
	for _, c := range r.characters {
		if c.IsActive {
			characters++
		}
	}
	return weapons, characters, nil
}
