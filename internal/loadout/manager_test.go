package loadout

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghosttier/arsenal-server/internal/auth"
	"github.com/ghosttier/arsenal-server/internal/catalog"
)

type fixture struct {
	mgr     *Manager
	users   *auth.MemoryUserRepo
	catalog *catalog.MemoryRepository
	userID  string
	weapons []string
	charID  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	users := auth.NewMemoryUserRepo()
	cat := catalog.NewMemoryRepository()

	user, err := users.CreateUser("ghost", "ghost@example.com", "hash", auth.RoleUser)
	require.NoError(t, err)

	var weaponIDs []string
	for i := 0; i < 7; i++ {
		w, err := cat.CreateWeapon(&catalog.Weapon{
			Name:     fmt.Sprintf("Weapon %d", i),
			Category: catalog.CategoryAssault,
			Tier:     catalog.TierLegendary,
			IsActive: true,
		})
		require.NoError(t, err)
		weaponIDs = append(weaponIDs, w.ID)
	}
	ch, err := cat.CreateCharacter(&catalog.Character{
		Name:     "Ghost",
		Codename: "GHOST-7",
		Faction:  catalog.FactionGhost,
		IsActive: true,
	})
	require.NoError(t, err)

	return &fixture{
		mgr:     NewManager(users, cat),
		users:   users,
		catalog: cat,
		userID:  user.ID,
		weapons: weaponIDs,
		charID:  ch.ID,
	}
}

func TestAddWeapon(t *testing.T) {
	f := newFixture(t)

	ids, err := f.mgr.AddWeapon(f.userID, f.weapons[0])
	require.NoError(t, err)
	assert.Equal(t, []string{f.weapons[0]}, ids)

	// Re-adding the same weapon is a no-op success.
	ids, err = f.mgr.AddWeapon(f.userID, f.weapons[0])
	require.NoError(t, err)
	assert.Equal(t, []string{f.weapons[0]}, ids)
}

func TestAddWeaponCapacity(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < auth.MaxLoadoutWeapons; i++ {
		_, err := f.mgr.AddWeapon(f.userID, f.weapons[i])
		require.NoError(t, err)
	}

	_, err := f.mgr.AddWeapon(f.userID, f.weapons[5])
	require.Error(t, err)
	assert.Equal(t, KindCapacityExceeded, KindOf(err))
	assert.Equal(t, "Max 5 weapons in loadout", err.Error())

	// A weapon already present still succeeds at capacity.
	ids, err := f.mgr.AddWeapon(f.userID, f.weapons[2])
	require.NoError(t, err)
	assert.Len(t, ids, auth.MaxLoadoutWeapons)
}

func TestAddWeaponErrors(t *testing.T) {
	f := newFixture(t)

	_, err := f.mgr.AddWeapon(f.userID, "")
	assert.Equal(t, KindValidationFailed, KindOf(err))

	_, err = f.mgr.AddWeapon(f.userID, "000000000000000000000000")
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = f.mgr.AddWeapon("000000000000000000000000", f.weapons[0])
	assert.Equal(t, KindUnauthenticated, KindOf(err))
}

func TestRemoveWeapon(t *testing.T) {
	f := newFixture(t)

	_, err := f.mgr.AddWeapon(f.userID, f.weapons[0])
	require.NoError(t, err)
	_, err = f.mgr.AddWeapon(f.userID, f.weapons[1])
	require.NoError(t, err)

	ids, err := f.mgr.RemoveWeapon(f.userID, f.weapons[0])
	require.NoError(t, err)
	assert.Equal(t, []string{f.weapons[1]}, ids)

	// Removing an absent weapon is a no-op success.
	ids, err = f.mgr.RemoveWeapon(f.userID, f.weapons[0])
	require.NoError(t, err)
	assert.Equal(t, []string{f.weapons[1]}, ids)
}

func TestConcurrentAddWeaponNeverExceedsCapacity(t *testing.T) {
	f := newFixture(t)

	// Fill to one below the limit.
	for i := 0; i < auth.MaxLoadoutWeapons-1; i++ {
		_, err := f.mgr.AddWeapon(f.userID, f.weapons[i])
		require.NoError(t, err)
	}

	// Race distinct weapons for the last slot. Exactly one must win.
	var wg sync.WaitGroup
	errs := make([]error, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.mgr.AddWeapon(f.userID, f.weapons[auth.MaxLoadoutWeapons-1+i])
		}(i)
	}
	wg.Wait()

	var ok, full int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case KindOf(err) == KindCapacityExceeded:
			full++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 2, full)

	user, err := f.users.GetUserByID(f.userID)
	require.NoError(t, err)
	assert.Len(t, user.Loadout, auth.MaxLoadoutWeapons)
}

func TestSetActiveCharacter(t *testing.T) {
	f := newFixture(t)

	ch, err := f.mgr.SetActiveCharacter(f.userID, f.charID)
	require.NoError(t, err)
	assert.Equal(t, "Ghost", ch.Name)

	user, err := f.users.GetUserByID(f.userID)
	require.NoError(t, err)
	assert.Equal(t, f.charID, user.SelectedCharacter)

	_, err = f.mgr.SetActiveCharacter(f.userID, "000000000000000000000000")
	assert.Equal(t, KindNotFound, KindOf(err))

	// The failed set must not touch the stored selection.
	user, err = f.users.GetUserByID(f.userID)
	require.NoError(t, err)
	assert.Equal(t, f.charID, user.SelectedCharacter)

	_, err = f.mgr.SetActiveCharacter(f.userID, "")
	assert.Equal(t, KindValidationFailed, KindOf(err))
}

func TestGetView(t *testing.T) {
	f := newFixture(t)

	_, err := f.mgr.AddWeapon(f.userID, f.weapons[0])
	require.NoError(t, err)
	_, err = f.mgr.SetActiveCharacter(f.userID, f.charID)
	require.NoError(t, err)

	view, err := f.mgr.GetView(f.userID)
	require.NoError(t, err)
	require.Len(t, view.Loadout, 1)
	assert.Equal(t, f.weapons[0], view.Loadout[0].ID)
	require.NotNil(t, view.SelectedCharacter)
	assert.Equal(t, f.charID, view.SelectedCharacter.ID)

	// A weapon deleted from the catalog disappears from the view.
	require.NoError(t, f.catalog.DeleteWeapon(f.weapons[0]))
	view, err = f.mgr.GetView(f.userID)
	require.NoError(t, err)
	assert.Empty(t, view.Loadout)
}

func TestCreateNamedLoadout(t *testing.T) {
	f := newFixture(t)

	nl, err := f.mgr.CreateNamedLoadout(f.userID, "Rush Setup", f.weapons[:3])
	require.NoError(t, err)
	assert.NotEmpty(t, nl.ID)
	assert.Equal(t, "Rush Setup", nl.Name)
	assert.Equal(t, f.weapons[:3], nl.Weapons)
}

func TestCreateNamedLoadoutValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.mgr.CreateNamedLoadout(f.userID, "", nil)
	assert.Equal(t, KindValidationFailed, KindOf(err))

	_, err = f.mgr.CreateNamedLoadout(f.userID, "   ", nil)
	assert.Equal(t, KindValidationFailed, KindOf(err))

	_, err = f.mgr.CreateNamedLoadout(f.userID, strings.Repeat("x", 31), nil)
	assert.Equal(t, KindValidationFailed, KindOf(err))

	_, err = f.mgr.CreateNamedLoadout(f.userID, "Too Many", f.weapons[:6])
	assert.Equal(t, KindValidationFailed, KindOf(err))

	_, err = f.mgr.CreateNamedLoadout(f.userID, "Ghost Gun", []string{"000000000000000000000000"})
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestNamedLoadoutLimit(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < auth.MaxNamedLoadouts; i++ {
		_, err := f.mgr.CreateNamedLoadout(f.userID, fmt.Sprintf("Preset %d", i), f.weapons[:1])
		require.NoError(t, err)
	}

	_, err := f.mgr.CreateNamedLoadout(f.userID, "One Too Many", nil)
	require.Error(t, err)
	assert.Equal(t, KindCapacityExceeded, KindOf(err))
	assert.Equal(t, "Maximum 10 loadouts allowed", err.Error())

	// Deleting one frees a slot for the next create.
	views, err := f.mgr.ListNamedLoadouts(f.userID)
	require.NoError(t, err)
	require.NotEmpty(t, views)
	require.NoError(t, f.mgr.DeleteNamedLoadout(f.userID, views[0].ID))

	nl, err := f.mgr.CreateNamedLoadout(f.userID, "Fits Again", nil)
	require.NoError(t, err)
	assert.Equal(t, "Fits Again", nl.Name)

	user, err := f.users.GetUserByID(f.userID)
	require.NoError(t, err)
	assert.Len(t, user.Loadouts, auth.MaxNamedLoadouts)
}

func TestConcurrentCreateNamedLoadoutNeverExceedsLimit(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < auth.MaxNamedLoadouts-1; i++ {
		_, err := f.mgr.CreateNamedLoadout(f.userID, fmt.Sprintf("Preset %d", i), nil)
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.mgr.CreateNamedLoadout(f.userID, fmt.Sprintf("Racer %d", i), nil)
		}(i)
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
		} else {
			assert.Equal(t, KindCapacityExceeded, KindOf(err))
		}
	}
	assert.Equal(t, 1, ok)

	user, err := f.users.GetUserByID(f.userID)
	require.NoError(t, err)
	assert.Len(t, user.Loadouts, auth.MaxNamedLoadouts)
}

func TestDeleteNamedLoadout(t *testing.T) {
	f := newFixture(t)

	nl, err := f.mgr.CreateNamedLoadout(f.userID, "Temp", nil)
	require.NoError(t, err)

	require.NoError(t, f.mgr.DeleteNamedLoadout(f.userID, nl.ID))

	views, err := f.mgr.ListNamedLoadouts(f.userID)
	require.NoError(t, err)
	assert.Empty(t, views)

	// Deleting again is a no-op success.
	require.NoError(t, f.mgr.DeleteNamedLoadout(f.userID, nl.ID))

	err = f.mgr.DeleteNamedLoadout(f.userID, "")
	assert.Equal(t, KindValidationFailed, KindOf(err))
}

func TestListNamedLoadoutsResolvesWeapons(t *testing.T) {
	f := newFixture(t)

	_, err := f.mgr.CreateNamedLoadout(f.userID, "Sniper Kit", f.weapons[:2])
	require.NoError(t, err)

	views, err := f.mgr.ListNamedLoadouts(f.userID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Sniper Kit", views[0].Name)
	require.Len(t, views[0].Weapons, 2)
	assert.Equal(t, f.weapons[0], views[0].Weapons[0].ID)
}
