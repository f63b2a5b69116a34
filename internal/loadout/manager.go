// Package loadout implements per-user equipment state: the primary
// weapon loadout (up to 5 weapons), named loadout presets (up to 10)
// and the selected character. All operations are keyed by the
// authenticated caller's user ID and return typed errors.
package loadout

import (
	"errors"
	"strings"
	"time"

	"github.com/ghosttier/arsenal-server/internal/auth"
	"github.com/ghosttier/arsenal-server/internal/catalog"
	"github.com/ghosttier/arsenal-server/internal/logging"
)

// View is the caller's equipment state with catalog entries resolved.
// Weapons that no longer resolve (removed from the catalog after being
// equipped) are omitted rather than surfaced as nulls.
type View struct {
	Loadout           []*catalog.Weapon  `json:"loadout"`
	SelectedCharacter *catalog.Character `json:"selectedCharacter"`
}

// NamedLoadoutView is a stored preset with its weapon IDs resolved.
type NamedLoadoutView struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Weapons   []*catalog.Weapon `json:"weapons"`
	CreatedAt time.Time         `json:"createdAt"`
}

// Manager coordinates the user store and the catalog. Capacity limits
// are enforced by the store in a single conditional write, so two
// concurrent calls can never push a loadout past its limit; the manager
// only validates inputs and translates store errors.
type Manager struct {
	users   auth.UserRepository
	catalog catalog.Repository
}

// NewManager creates a loadout manager over the given stores.
func NewManager(users auth.UserRepository, cat catalog.Repository) *Manager {
	return &Manager{users: users, catalog: cat}
}

// GetView returns the caller's resolved loadout and selected character.
func (m *Manager) GetView(callerID string) (*View, error) {
	user, err := m.lookupCaller(callerID)
	if err != nil {
		return nil, err
	}
	view := &View{Loadout: m.resolveWeapons(user.Loadout)}
	if user.SelectedCharacter != "" {
		ch, err := m.catalog.FindCharacter(user.SelectedCharacter)
		if err == nil {
			view.SelectedCharacter = ch
		} else if !errors.Is(err, catalog.ErrCharacterNotFound) && !errors.Is(err, catalog.ErrInvalidID) {
			return nil, internal("failed to resolve selected character", err)
		}
	}
	return view, nil
}

// AddWeapon equips a weapon into the caller's primary loadout. Adding a
// weapon that is already equipped succeeds without change, even when the
// loadout is full.
func (m *Manager) AddWeapon(callerID, weaponID string) ([]string, error) {
	if weaponID == "" {
		return nil, validationFailed("Weapon ID is required")
	}
	if _, err := m.catalog.FindWeapon(weaponID); err != nil {
		switch {
		case errors.Is(err, catalog.ErrInvalidID):
			return nil, validationFailed("Invalid weapon ID")
		case errors.Is(err, catalog.ErrWeaponNotFound):
			return nil, notFound("Weapon not found")
		default:
			return nil, internal("failed to look up weapon", err)
		}
	}

	user, err := m.users.AddLoadoutWeapon(callerID, weaponID)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrLoadoutFull):
			return nil, capacityExceeded("Max 5 weapons in loadout")
		case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, auth.ErrInvalidID):
			return nil, unauthenticated("User not found")
		default:
			return nil, internal("failed to update loadout", err)
		}
	}
	logging.Debug("Loadout: user %s equipped weapon %s (%d/%d)", callerID, weaponID, len(user.Loadout), auth.MaxLoadoutWeapons)
	return user.Loadout, nil
}

// RemoveWeapon unequips a weapon from the caller's primary loadout.
// Removing a weapon that is not equipped succeeds without change.
func (m *Manager) RemoveWeapon(callerID, weaponID string) ([]string, error) {
	if weaponID == "" {
		return nil, validationFailed("Weapon ID is required")
	}
	user, err := m.users.RemoveLoadoutWeapon(callerID, weaponID)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			return nil, unauthenticated("User not found")
		case errors.Is(err, auth.ErrInvalidID):
			return nil, validationFailed("Invalid weapon ID")
		default:
			return nil, internal("failed to update loadout", err)
		}
	}
	return user.Loadout, nil
}

// SetActiveCharacter records the caller's selected character. The
// character must exist in the catalog.
func (m *Manager) SetActiveCharacter(callerID, characterID string) (*catalog.Character, error) {
	if characterID == "" {
		return nil, validationFailed("Character ID is required")
	}
	ch, err := m.catalog.FindCharacter(characterID)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrInvalidID):
			return nil, validationFailed("Invalid character ID")
		case errors.Is(err, catalog.ErrCharacterNotFound):
			return nil, notFound("Character not found")
		default:
			return nil, internal("failed to look up character", err)
		}
	}
	if _, err := m.users.SetSelectedCharacter(callerID, characterID); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) || errors.Is(err, auth.ErrInvalidID) {
			return nil, unauthenticated("User not found")
		}
		return nil, internal("failed to update selected character", err)
	}
	return ch, nil
}

// CreateNamedLoadout stores a named preset of up to 5 weapons. A user
// may hold at most 10 presets; the limit is enforced atomically by the
// store.
func (m *Manager) CreateNamedLoadout(callerID, name string, weaponIDs []string) (*auth.NamedLoadout, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationFailed("Loadout name is required")
	}
	if len(name) > 30 {
		return nil, validationFailed("Loadout name must be 30 characters or less")
	}
	if len(weaponIDs) > auth.MaxLoadoutWeapons {
		return nil, validationFailed("Max 5 weapons in loadout")
	}
	for _, wid := range weaponIDs {
		if _, err := m.catalog.FindWeapon(wid); err != nil {
			switch {
			case errors.Is(err, catalog.ErrInvalidID):
				return nil, validationFailed("Invalid weapon ID")
			case errors.Is(err, catalog.ErrWeaponNotFound):
				return nil, notFound("Weapon not found")
			default:
				return nil, internal("failed to look up weapon", err)
			}
		}
	}

	nl, err := m.users.AddNamedLoadout(callerID, name, weaponIDs)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrLoadoutLimit):
			return nil, capacityExceeded("Maximum 10 loadouts allowed")
		case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, auth.ErrInvalidID):
			return nil, unauthenticated("User not found")
		default:
			return nil, internal("failed to create loadout", err)
		}
	}
	logging.Info("Loadout: user %s created preset %q with %d weapons", callerID, name, len(weaponIDs))
	return nl, nil
}

// DeleteNamedLoadout removes a stored preset. Deleting a preset that
// does not exist succeeds without change.
func (m *Manager) DeleteNamedLoadout(callerID, loadoutID string) error {
	if loadoutID == "" {
		return validationFailed("Loadout ID is required")
	}
	if _, err := m.users.RemoveNamedLoadout(callerID, loadoutID); err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			return unauthenticated("User not found")
		case errors.Is(err, auth.ErrInvalidID):
			return validationFailed("Invalid loadout ID")
		default:
			return internal("failed to delete loadout", err)
		}
	}
	return nil
}

// ListNamedLoadouts returns the caller's presets with weapons resolved.
func (m *Manager) ListNamedLoadouts(callerID string) ([]NamedLoadoutView, error) {
	user, err := m.lookupCaller(callerID)
	if err != nil {
		return nil, err
	}
	views := make([]NamedLoadoutView, 0, len(user.Loadouts))
	for _, nl := range user.Loadouts {
		views = append(views, NamedLoadoutView{
			ID:        nl.ID,
			Name:      nl.Name,
			Weapons:   m.resolveWeapons(nl.Weapons),
			CreatedAt: nl.CreatedAt,
		})
	}
	return views, nil
}

// lookupCaller fetches the caller record. The caller ID comes from a
// verified token, so a missing record means the identity is stale.
func (m *Manager) lookupCaller(callerID string) (*auth.User, error) {
	user, err := m.users.GetUserByID(callerID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) || errors.Is(err, auth.ErrInvalidID) {
			return nil, unauthenticated("User not found")
		}
		return nil, internal("failed to load user", err)
	}
	return user, nil
}

func (m *Manager) resolveWeapons(ids []string) []*catalog.Weapon {
	weapons := make([]*catalog.Weapon, 0, len(ids))
	for _, wid := range ids {
		w, err := m.catalog.FindWeapon(wid)
		if err != nil {
			continue
		}
		weapons = append(weapons, w)
	}
	return weapons
}
