package auth

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUser(t *testing.T, repo *MemoryUserRepo) *User {
	t.Helper()
	hash, err := HashPassword("Secret123")
	require.NoError(t, err)
	user, err := repo.CreateUser("ghost", "ghost@example.com", hash, RoleUser)
	require.NoError(t, err)
	return user
}

func TestCreateUserUniqueness(t *testing.T) {
	repo := NewMemoryUserRepo()
	newTestUser(t, repo)

	_, err := repo.CreateUser("ghost", "other@example.com", "h", RoleUser)
	assert.ErrorIs(t, err, ErrUserExists)

	_, err = repo.CreateUser("Ghost", "other@example.com", "h", RoleUser)
	assert.ErrorIs(t, err, ErrUserExists, "username match is case-insensitive")

	_, err = repo.CreateUser("other", "ghost@example.com", "h", RoleUser)
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestValidateCredentials(t *testing.T) {
	repo := NewMemoryUserRepo()
	created := newTestUser(t, repo)

	user, err := repo.ValidateCredentials("ghost@example.com", "Secret123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	_, err = repo.ValidateCredentials("ghost@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = repo.ValidateCredentials("nobody@example.com", "Secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAddLoadoutWeaponIdempotent(t *testing.T) {
	repo := NewMemoryUserRepo()
	user := newTestUser(t, repo)

	got, err := repo.AddLoadoutWeapon(user.ID, "w1")
	require.NoError(t, err)
	assert.Equal(t, []string{"w1"}, got.Loadout)

	got, err = repo.AddLoadoutWeapon(user.ID, "w1")
	require.NoError(t, err)
	assert.Equal(t, []string{"w1"}, got.Loadout)
}

func TestAddLoadoutWeaponCapacity(t *testing.T) {
	repo := NewMemoryUserRepo()
	user := newTestUser(t, repo)

	for i := 0; i < MaxLoadoutWeapons; i++ {
		_, err := repo.AddLoadoutWeapon(user.ID, fmt.Sprintf("w%d", i))
		require.NoError(t, err)
	}

	_, err := repo.AddLoadoutWeapon(user.ID, "overflow")
	assert.ErrorIs(t, err, ErrLoadoutFull)

	// Present weapon still succeeds at capacity.
	got, err := repo.AddLoadoutWeapon(user.ID, "w0")
	require.NoError(t, err)
	assert.Len(t, got.Loadout, MaxLoadoutWeapons)
}

func TestRemoveLoadoutWeaponAbsentIsNoop(t *testing.T) {
	repo := NewMemoryUserRepo()
	user := newTestUser(t, repo)

	got, err := repo.RemoveLoadoutWeapon(user.ID, "missing")
	require.NoError(t, err)
	assert.Empty(t, got.Loadout)
}

func TestConcurrentAddLoadoutWeapon(t *testing.T) {
	repo := NewMemoryUserRepo()
	user := newTestUser(t, repo)

	for i := 0; i < MaxLoadoutWeapons-1; i++ {
		_, err := repo.AddLoadoutWeapon(user.ID, fmt.Sprintf("w%d", i))
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	const racers = 8
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.AddLoadoutWeapon(user.ID, fmt.Sprintf("race%d", i))
		}(i)
	}
	wg.Wait()

	var wins int
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, ErrLoadoutFull)
		}
	}
	assert.Equal(t, 1, wins)

	got, err := repo.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Len(t, got.Loadout, MaxLoadoutWeapons)
}

func TestNamedLoadoutLimit(t *testing.T) {
	repo := NewMemoryUserRepo()
	user := newTestUser(t, repo)

	for i := 0; i < MaxNamedLoadouts; i++ {
		_, err := repo.AddNamedLoadout(user.ID, fmt.Sprintf("preset %d", i), []string{"w1"})
		require.NoError(t, err)
	}

	_, err := repo.AddNamedLoadout(user.ID, "overflow", nil)
	assert.ErrorIs(t, err, ErrLoadoutLimit)

	// Deleting one frees a slot.
	got, err := repo.GetUserByID(user.ID)
	require.NoError(t, err)
	_, err = repo.RemoveNamedLoadout(user.ID, got.Loadouts[0].ID)
	require.NoError(t, err)

	_, err = repo.AddNamedLoadout(user.ID, "fits again", nil)
	assert.NoError(t, err)
}

func TestSetSelectedCharacter(t *testing.T) {
	repo := NewMemoryUserRepo()
	user := newTestUser(t, repo)

	got, err := repo.SetSelectedCharacter(user.ID, "ch1")
	require.NoError(t, err)
	assert.Equal(t, "ch1", got.SelectedCharacter)

	_, err = repo.SetSelectedCharacter("000000000000000000000000", "ch1")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCountUsers(t *testing.T) {
	repo := NewMemoryUserRepo()
	newTestUser(t, repo)
	_, err := repo.CreateUser("boss", "boss@example.com", "h", RoleAdmin)
	require.NoError(t, err)

	total, admins, err := repo.CountUsers()
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, int64(1), admins)
}

func TestClonedUsersAreDetached(t *testing.T) {
	repo := NewMemoryUserRepo()
	user := newTestUser(t, repo)

	got, err := repo.GetUserByID(user.ID)
	require.NoError(t, err)
	got.Loadout = append(got.Loadout, "mutated")

	fresh, err := repo.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Empty(t, fresh.Loadout)
}
