package catalog

import "errors"

// WeaponFilter narrows ListWeapons results. Zero values mean "no filter".
type WeaponFilter struct {
	Category   WeaponCategory
	Tier       Tier
	Search     string // text search over name/description
	ActiveOnly bool
	Page       int // 1-based
	Limit      int
}

// Normalize clamps pagination to sane values.
func (f *WeaponFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 12
	}
}

// Repository provides catalog reads for everyone and catalog mutations for
// the admin surface. Weapon/character existence checks performed by the
// loadout core go through FindWeapon/FindCharacter at mutation time; callers
// must not trust a previously resolved copy.
type Repository interface {
	FindWeapon(id string) (*Weapon, error)
	ListWeapons(filter WeaponFilter) (weapons []*Weapon, total int64, err error)
	CreateWeapon(w *Weapon) (*Weapon, error)
	UpdateWeapon(id string, w *Weapon) (*Weapon, error)
	DeleteWeapon(id string) error

	FindCharacter(id string) (*Character, error)
	ListCharacters(activeOnly bool) ([]*Character, error)
	CreateCharacter(c *Character) (*Character, error)
	UpdateCharacter(id string, c *Character) (*Character, error)
	DeleteCharacter(id string) error

	// Counts returns active weapon and character totals for the admin
	// dashboard.
	Counts() (weapons int64, characters int64, err error)
}

// Domain-level errors returned by the repository.
var (
	ErrWeaponNotFound    = errors.New("weapon not found")
	ErrCharacterNotFound = errors.New("character not found")
	ErrInvalidID         = errors.New("malformed id")
)
