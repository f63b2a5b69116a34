package auth

import (
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryUserRepo is a threadsafe in-memory store useful for tests and
// single-instance development servers. NOT suitable for production.
// All equipment mutations run under the write lock, so the same
// no-torn-update guarantee the Mongo repository gets from conditional
// writes holds here too.
type MemoryUserRepo struct {
	mu      sync.RWMutex
	byID    map[string]*User
	byName  map[string]string // lowercase(username) -> id
	byEmail map[string]string // lowercase(email) -> id
}

// NewMemoryUserRepo returns an empty repository.
func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{
		byID:    make(map[string]*User),
		byName:  make(map[string]string),
		byEmail: make(map[string]string),
	}
}

// GetUserByID implements UserRepository.
func (r *MemoryUserRepo) GetUserByID(id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return cloneUser(user), nil
}

// GetUserByUsername retrieves a user by case-insensitive username.
func (r *MemoryUserRepo) GetUserByUsername(username string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[strings.ToLower(username)]
	if !ok {
		return nil, ErrUserNotFound
	}
	return cloneUser(r.byID[id]), nil
}

// GetUserByEmail retrieves a user by case-insensitive email.
func (r *MemoryUserRepo) GetUserByEmail(email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	return cloneUser(r.byID[id]), nil
}

// CreateUser inserts a new account if username and email are free.
func (r *MemoryUserRepo) CreateUser(username, email, passwordHash string, role Role) (*User, error) {
	nameKey := strings.ToLower(username)
	emailKey := strings.ToLower(email)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[emailKey]; exists {
		return nil, ErrEmailExists
	}
	if _, exists := r.byName[nameKey]; exists {
		return nil, ErrUserExists
	}

	now := time.Now()
	user := &User{
		ID:           primitive.NewObjectID().Hex(),
		Username:     username,
		Email:        emailKey,
		PasswordHash: passwordHash,
		Role:         role,
		Loadout:      []string{},
		Loadouts:     []NamedLoadout{},
		Stats:        DefaultStats(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.byID[user.ID] = user
	r.byName[nameKey] = user.ID
	r.byEmail[emailKey] = user.ID
	return cloneUser(user), nil
}

// ValidateCredentials implements UserRepository.
func (r *MemoryUserRepo) ValidateCredentials(email, password string) (*User, error) {
	user, err := r.GetUserByEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// ListUsers returns all accounts, newest first.
func (r *MemoryUserRepo) ListUsers() ([]*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]*User, 0, len(r.byID))
	for _, u := range r.byID {
		users = append(users, cloneUser(u))
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

// CountUsers implements UserRepository.
func (r *MemoryUserRepo) CountUsers() (int64, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var admins int64
	for _, u := range r.byID {
		if u.Role == RoleAdmin {
			admins++
		}
	}
	return int64(len(r.byID)), admins, nil
}

// AddLoadoutWeapon implements UserRepository.
func (r *MemoryUserRepo) AddLoadoutWeapon(userID, weaponID string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	for _, id := range user.Loadout {
		if id == weaponID {
			return cloneUser(user), nil // idempotent re-add
		}
	}
	if len(user.Loadout) >= MaxLoadoutWeapons {
		return nil, ErrLoadoutFull
	}
	user.Loadout = append(user.Loadout, weaponID)
	user.UpdatedAt = time.Now()
	return cloneUser(user), nil
}

// RemoveLoadoutWeapon implements UserRepository.
func (r *MemoryUserRepo) RemoveLoadoutWeapon(userID, weaponID string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	kept := user.Loadout[:0]
	for _, id := range user.Loadout {
		if id != weaponID {
			kept = append(kept, id)
		}
	}
	user.Loadout = kept
	user.UpdatedAt = time.Now()
	return cloneUser(user), nil
}

// SetSelectedCharacter implements UserRepository.
func (r *MemoryUserRepo) SetSelectedCharacter(userID, characterID string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	user.SelectedCharacter = characterID
	user.UpdatedAt = time.Now()
	return cloneUser(user), nil
}

// AddNamedLoadout implements UserRepository.
func (r *MemoryUserRepo) AddNamedLoadout(userID, name string, weaponIDs []string) (*NamedLoadout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	if len(user.Loadouts) >= MaxNamedLoadouts {
		return nil, ErrLoadoutLimit
	}
	entry := NamedLoadout{
		ID:        primitive.NewObjectID().Hex(),
		Name:      name,
		Weapons:   append([]string{}, weaponIDs...),
		CreatedAt: time.Now(),
	}
	user.Loadouts = append(user.Loadouts, entry)
	user.UpdatedAt = time.Now()
	return &entry, nil
}

// RemoveNamedLoadout implements UserRepository.
func (r *MemoryUserRepo) RemoveNamedLoadout(userID, loadoutID string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	kept := user.Loadouts[:0]
	for _, l := range user.Loadouts {
		if l.ID != loadoutID {
			kept = append(kept, l)
		}
	}
	user.Loadouts = kept
	user.UpdatedAt = time.Now()
	return cloneUser(user), nil
}

func cloneUser(u *User) *User {
	c := *u
	c.Loadout = append([]string{}, u.Loadout...)
	c.Loadouts = make([]NamedLoadout, len(u.Loadouts))
	for i, l := range u.Loadouts {
		c.Loadouts[i] = l
		c.Loadouts[i].Weapons = append([]string{}, l.Weapons...)
	}
	return &c
}
