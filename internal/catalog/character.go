package catalog

import "time"

// Faction is the character faction enum.
type Faction string

const (
	FactionGhost    Faction = "Ghost"
	FactionMakarov  Faction = "Makarov"
	FactionOperator Faction = "Operator"
	FactionShadow   Faction = "Shadow"
	FactionPhantom  Faction = "Phantom"
)

// ValidFaction reports whether f is a known faction.
func ValidFaction(f Faction) bool {
	switch f {
	case FactionGhost, FactionMakarov, FactionOperator, FactionShadow, FactionPhantom:
		return true
	}
	return false
}

// Ability is a character skill entry.
type Ability struct {
	Name        string `json:"name" bson:"name"`
	Description string `json:"description" bson:"description"`
	Icon        string `json:"icon" bson:"icon"`
}

// CharacterStats holds the four bounded stat fields (0-100 each).
type CharacterStats struct {
	Health   int `json:"health" bson:"health"`
	Speed    int `json:"speed" bson:"speed"`
	Stealth  int `json:"stealth" bson:"stealth"`
	Strength int `json:"strength" bson:"strength"`
}

// InBounds reports whether every stat is within 0..100.
func (s CharacterStats) InBounds() bool {
	for _, v := range []int{s.Health, s.Speed, s.Stealth, s.Strength} {
		if v < 0 || v > 100 {
			return false
		}
	}
	return true
}

// SkinVariant is an alternative character skin.
type SkinVariant struct {
	Name  string `json:"name" bson:"name"`
	Image string `json:"image" bson:"image"`
	Tier  string `json:"tier" bson:"tier"`
}

// Character is a catalog entity, read-only from the loadout core's view.
type Character struct {
	ID           string         `json:"id" bson:"_id"`
	Name         string         `json:"name" bson:"name"`
	Codename     string         `json:"codename" bson:"codename"`
	Role         string         `json:"role" bson:"role"`
	Faction      Faction        `json:"faction" bson:"faction"`
	Tier         Tier           `json:"tier" bson:"tier"`
	Description  string         `json:"description" bson:"description"`
	Lore         string         `json:"lore" bson:"lore"`
	Abilities    []Ability      `json:"abilities" bson:"abilities"`
	Stats        CharacterStats `json:"stats" bson:"stats"`
	Image        string         `json:"image" bson:"image"`
	ModelColor   string         `json:"modelColor" bson:"model_color"`
	AccentColor  string         `json:"accentColor" bson:"accent_color"`
	SkinVariants []SkinVariant  `json:"skinVariants" bson:"skin_variants"`
	UnlockLevel  int            `json:"unlockLevel" bson:"unlock_level"`
	IsActive     bool           `json:"isActive" bson:"is_active"`
	CreatedAt    time.Time      `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time      `json:"updatedAt" bson:"updated_at"`
}
