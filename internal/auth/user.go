package auth

import "time"

// Role defines the privilege level of an account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Equipment bounds enforced by every repository implementation.
const (
	MaxLoadoutWeapons = 5  // weapons in the primary loadout
	MaxNamedLoadouts  = 10 // saved named loadouts per user
)

// Stats is the progression block updated by match-result ingestion.
type Stats struct {
	Kills   int    `json:"kills" bson:"kills"`
	Deaths  int    `json:"deaths" bson:"deaths"`
	Wins    int    `json:"wins" bson:"wins"`
	Matches int    `json:"matches" bson:"matches"`
	Rank    string `json:"rank" bson:"rank"`
}

// NamedLoadout is a user-created snapshot of a weapon set. Owned exclusively
// by its parent user; it has no lifecycle of its own.
type NamedLoadout struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Weapons   []string  `json:"weapons" bson:"weapons"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

// User represents an account with its embedded equipment state.
// PasswordHash must never be serialized outward; the JSON tag enforces that.
type User struct {
	ID                string         `json:"id" bson:"_id"`
	Username          string         `json:"username" bson:"username"`
	Email             string         `json:"email" bson:"email"`
	PasswordHash      string         `json:"-" bson:"password_hash"`
	Role              Role           `json:"role" bson:"role"`
	Avatar            string         `json:"avatar" bson:"avatar"`
	SelectedCharacter string         `json:"selectedCharacter,omitempty" bson:"selected_character,omitempty"`
	Loadout           []string       `json:"loadout" bson:"loadout"`
	Loadouts          []NamedLoadout `json:"loadouts" bson:"loadouts"`
	Stats             Stats          `json:"stats" bson:"stats"`
	CreatedAt         time.Time      `json:"createdAt" bson:"created_at"`
	UpdatedAt         time.Time      `json:"updatedAt" bson:"updated_at"`
}

// IsAdmin reports whether the user holds administrative privileges.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// DefaultStats is the progression block assigned at registration.
func DefaultStats() Stats {
	return Stats{Rank: "Rookie"}
}
