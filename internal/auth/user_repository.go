package auth

import "errors"

// UserRepository defines operations for user persistence and retrieval.
// Implementations own their connection handling and timeouts; callers pass
// plain values. The equipment mutations (loadout, named loadouts, selected
// character) must each be applied as a SINGLE conditional write so that two
// racing requests can never push the bounded arrays past their caps — a
// read-modify-write across two round trips is not an acceptable
// implementation.
type UserRepository interface {
	// GetUserByID returns a user by id, or ErrUserNotFound.
	GetUserByID(id string) (*User, error)

	// GetUserByUsername returns a user by username (case-insensitive), or
	// ErrUserNotFound.
	GetUserByUsername(username string) (*User, error)

	// GetUserByEmail returns a user by email (case-insensitive), or
	// ErrUserNotFound.
	GetUserByEmail(email string) (*User, error)

	// CreateUser creates a new account with empty equipment state and default
	// stats. Caller passes a bcrypt-hashed password. Implementations must
	// enforce unique usernames/emails and return ErrUserExists/ErrEmailExists
	// on conflict.
	CreateUser(username, email, passwordHash string, role Role) (*User, error)

	// ValidateCredentials checks email+password and returns the user on
	// success, ErrInvalidCredentials otherwise.
	ValidateCredentials(email, password string) (*User, error)

	// ListUsers returns all accounts, newest first. Admin surface only.
	ListUsers() ([]*User, error)

	// CountUsers returns total and admin account counts.
	CountUsers() (total int64, admins int64, err error)

	// === Equipment mutations (each one atomic conditional write) ===

	// AddLoadoutWeapon appends weaponID to the primary loadout. Re-adding a
	// present weapon is a no-op returning current state. Returns
	// ErrLoadoutFull when the loadout already holds MaxLoadoutWeapons and the
	// weapon is new.
	AddLoadoutWeapon(userID, weaponID string) (*User, error)

	// RemoveLoadoutWeapon removes weaponID from the primary loadout. Absent
	// ids are a no-op, not an error.
	RemoveLoadoutWeapon(userID, weaponID string) (*User, error)

	// SetSelectedCharacter sets the active character reference. The caller is
	// responsible for validating that the character exists.
	SetSelectedCharacter(userID, characterID string) (*User, error)

	// AddNamedLoadout appends a named loadout with a generated id and
	// creation timestamp. Returns ErrLoadoutLimit when the collection already
	// holds MaxNamedLoadouts.
	AddNamedLoadout(userID, name string, weaponIDs []string) (*NamedLoadout, error)

	// RemoveNamedLoadout removes the named loadout by id. Absent ids are a
	// no-op, not an error.
	RemoveNamedLoadout(userID, loadoutID string) (*User, error)
}

// Domain-level errors returned by the repository.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("username already taken")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidID          = errors.New("malformed id")
	ErrLoadoutFull        = errors.New("loadout is full")
	ErrLoadoutLimit       = errors.New("named loadout limit reached")
)
