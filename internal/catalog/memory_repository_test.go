package catalog

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedWeapons(t *testing.T, repo *MemoryRepository) []*Weapon {
	t.Helper()
	specs := []struct {
		name     string
		category WeaponCategory
		tier     Tier
		active   bool
	}{
		{"Locus", CategorySniper, TierLegendary, true},
		{"Rytec AMR", CategorySniper, TierMythic, true},
		{"AK117", CategoryAssault, TierLegendary, true},
		{"MP5", CategorySMG, TierEpic, true},
		{"Prototype X", CategoryAssault, TierEpic, false},
	}
	out := make([]*Weapon, 0, len(specs))
	for _, s := range specs {
		w, err := repo.CreateWeapon(&Weapon{
			Name:        s.name,
			Category:    s.category,
			Tier:        s.tier,
			IsActive:    s.active,
			Description: "test entry",
		})
		require.NoError(t, err)
		out = append(out, w)
	}
	return out
}

func TestListWeaponsFilters(t *testing.T) {
	repo := NewMemoryRepository()
	seedWeapons(t, repo)

	weapons, total, err := repo.ListWeapons(WeaponFilter{Category: CategorySniper, ActiveOnly: true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, weapons, 2)

	weapons, total, err = repo.ListWeapons(WeaponFilter{Tier: TierEpic, ActiveOnly: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, weapons, 1)
	assert.Equal(t, "MP5", weapons[0].Name)

	// Inactive entries are visible without ActiveOnly.
	_, total, err = repo.ListWeapons(WeaponFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
}

func TestListWeaponsSearch(t *testing.T) {
	repo := NewMemoryRepository()
	seedWeapons(t, repo)

	weapons, total, err := repo.ListWeapons(WeaponFilter{Search: "rytec", ActiveOnly: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, weapons, 1)
	assert.Equal(t, "Rytec AMR", weapons[0].Name)
}

func TestListWeaponsPagination(t *testing.T) {
	repo := NewMemoryRepository()
	for i := 0; i < 30; i++ {
		_, err := repo.CreateWeapon(&Weapon{
			Name:     fmt.Sprintf("Weapon %02d", i),
			Category: CategoryAssault,
			Tier:     TierStandard,
			IsActive: true,
		})
		require.NoError(t, err)
	}

	page1, total, err := repo.ListWeapons(WeaponFilter{ActiveOnly: true, Page: 1, Limit: 12})
	require.NoError(t, err)
	assert.Equal(t, int64(30), total)
	assert.Len(t, page1, 12)

	page3, _, err := repo.ListWeapons(WeaponFilter{ActiveOnly: true, Page: 3, Limit: 12})
	require.NoError(t, err)
	assert.Len(t, page3, 6)

	empty, _, err := repo.ListWeapons(WeaponFilter{ActiveOnly: true, Page: 9, Limit: 12})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestWeaponCRUD(t *testing.T) {
	repo := NewMemoryRepository()

	created, err := repo.CreateWeapon(&Weapon{Name: "Striker", Category: CategoryShotgun, Tier: TierLegendary, IsActive: true})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	found, err := repo.FindWeapon(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Striker", found.Name)

	found.Name = "Striker — Terminus"
	updated, err := repo.UpdateWeapon(created.ID, found)
	require.NoError(t, err)
	assert.Equal(t, "Striker — Terminus", updated.Name)
	assert.Equal(t, created.ID, updated.ID)

	require.NoError(t, repo.DeleteWeapon(created.ID))
	_, err = repo.FindWeapon(created.ID)
	assert.ErrorIs(t, err, ErrWeaponNotFound)

	err = repo.DeleteWeapon(created.ID)
	assert.ErrorIs(t, err, ErrWeaponNotFound)
}

func TestCharacterCRUD(t *testing.T) {
	repo := NewMemoryRepository()

	created, err := repo.CreateCharacter(&Character{Name: "Ghost", Faction: FactionGhost, Tier: TierMythic, IsActive: true})
	require.NoError(t, err)

	_, err = repo.CreateCharacter(&Character{Name: "Benched", Faction: FactionShadow, IsActive: false})
	require.NoError(t, err)

	active, err := repo.ListCharacters(true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Ghost", active[0].Name)

	all, err := repo.ListCharacters(false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, repo.DeleteCharacter(created.ID))
	_, err = repo.FindCharacter(created.ID)
	assert.ErrorIs(t, err, ErrCharacterNotFound)
}

func TestCounts(t *testing.T) {
	repo := NewMemoryRepository()
	seedWeapons(t, repo)
	_, err := repo.CreateCharacter(&Character{Name: "Ghost", Faction: FactionGhost, IsActive: true})
	require.NoError(t, err)

	weapons, characters, err := repo.Counts()
	require.NoError(t, err)
	assert.Equal(t, int64(4), weapons, "counts cover active entries")
	assert.Equal(t, int64(1), characters)
}

func TestFilterNormalize(t *testing.T) {
	f := WeaponFilter{Page: 0, Limit: 0}
	f.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 12, f.Limit)

	f = WeaponFilter{Page: -3, Limit: 500}
	f.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 12, f.Limit, "oversized limits fall back to the default")
}
