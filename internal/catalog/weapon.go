package catalog

import "time"

// WeaponCategory is the weapon class enum.
type WeaponCategory string

const (
	CategoryAssault  WeaponCategory = "assault"
	CategorySniper   WeaponCategory = "sniper"
	CategorySMG      WeaponCategory = "smg"
	CategoryShotgun  WeaponCategory = "shotgun"
	CategoryLMG      WeaponCategory = "lmg"
	CategoryMarksman WeaponCategory = "marksman"
	CategoryPistol   WeaponCategory = "pistol"
	CategoryLauncher WeaponCategory = "launcher"
)

// Tier is the rarity enum shared by weapons and characters.
type Tier string

const (
	TierStandard  Tier = "Standard"
	TierEpic      Tier = "Epic"
	TierLegendary Tier = "Legendary"
	TierMythic    Tier = "Mythic"
)

// ValidCategory reports whether c is a known weapon category.
func ValidCategory(c WeaponCategory) bool {
	switch c {
	case CategoryAssault, CategorySniper, CategorySMG, CategoryShotgun,
		CategoryLMG, CategoryMarksman, CategoryPistol, CategoryLauncher:
		return true
	}
	return false
}

// ValidTier reports whether t is a known tier.
func ValidTier(t Tier) bool {
	switch t {
	case TierStandard, TierEpic, TierLegendary, TierMythic:
		return true
	}
	return false
}

// WeaponStats holds the six bounded stat fields (0-100 each).
type WeaponStats struct {
	Damage   int `json:"damage" bson:"damage"`
	Range    int `json:"range" bson:"range"`
	Accuracy int `json:"accuracy" bson:"accuracy"`
	FireRate int `json:"fireRate" bson:"fire_rate"`
	Mobility int `json:"mobility" bson:"mobility"`
	Control  int `json:"control" bson:"control"`
}

// InBounds reports whether every stat is within 0..100.
func (s WeaponStats) InBounds() bool {
	for _, v := range []int{s.Damage, s.Range, s.Accuracy, s.FireRate, s.Mobility, s.Control} {
		if v < 0 || v > 100 {
			return false
		}
	}
	return true
}

// Weapon is a catalog entity. The loadout core treats it as read-only
// reference data; only the admin surface mutates it.
type Weapon struct {
	ID          string         `json:"id" bson:"_id"`
	Name        string         `json:"name" bson:"name"`
	Subtitle    string         `json:"subtitle" bson:"subtitle"`
	Category    WeaponCategory `json:"category" bson:"category"`
	Tier        Tier           `json:"tier" bson:"tier"`
	Stats       WeaponStats    `json:"stats" bson:"stats"`
	Description string         `json:"description" bson:"description"`
	Lore        string         `json:"lore" bson:"lore"`
	Image       string         `json:"image" bson:"image"`
	ModelColor  string         `json:"modelColor" bson:"model_color"`
	AccentColor string         `json:"accentColor" bson:"accent_color"`
	UnlockLevel int            `json:"unlockLevel" bson:"unlock_level"`
	Tags        []string       `json:"tags" bson:"tags"`
	IsActive    bool           `json:"isActive" bson:"is_active"`
	CreatedAt   time.Time      `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time      `json:"updatedAt" bson:"updated_at"`
}
