package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghosttier/arsenal-server/internal/auth"
	"github.com/ghosttier/arsenal-server/internal/catalog"
	"github.com/ghosttier/arsenal-server/internal/loadout"
)

// The prometheus middleware registers collectors in the default registry,
// so the test server is built once and shared.
var (
	setupOnce   sync.Once
	testServer  *RestServer
	testUsers   *auth.MemoryUserRepo
	testCatalog *catalog.MemoryRepository
	userSeq     int
)

func setup(t *testing.T) {
	t.Helper()
	setupOnce.Do(func() {
		testUsers = auth.NewMemoryUserRepo()
		testCatalog = catalog.NewMemoryRepository()
		manager := loadout.NewManager(testUsers, testCatalog)
		testServer = NewRestServer(Config{
			Port:     ":0",
			UserRepo: testUsers,
			Catalog:  testCatalog,
			Loadouts: manager,
		})
	})
}

// newAccount creates a fresh user and returns its token.
func newAccount(t *testing.T, role auth.Role) (*auth.User, string) {
	t.Helper()
	userSeq++
	name := fmt.Sprintf("operator%d", userSeq)
	hash, err := auth.HashPassword("Secret123")
	require.NoError(t, err)
	user, err := testUsers.CreateUser(name, name+"@example.com", hash, role)
	require.NoError(t, err)
	token, err := auth.GenerateJWT(user)
	require.NoError(t, err)
	return user, token
}

func newWeapon(t *testing.T, active bool) *catalog.Weapon {
	t.Helper()
	w, err := testCatalog.CreateWeapon(&catalog.Weapon{
		Name:     fmt.Sprintf("Test Weapon %d", userSeq),
		Category: catalog.CategoryAssault,
		Tier:     catalog.TierEpic,
		IsActive: active,
	})
	require.NoError(t, err)
	return w
}

func doJSON(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	testServer.Router().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealth(t *testing.T) {
	setup(t)
	rec := doJSON(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterAndLogin(t *testing.T) {
	setup(t)

	rec := doJSON(t, http.MethodPost, "/api/auth/register", "", body{
		"username": "newplayer", "email": "newplayer@example.com", "password": "Secret123",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decode(t, rec)
	assert.True(t, resp.Success)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), sessionCookie+"=")

	// Duplicate username.
	rec = doJSON(t, http.MethodPost, "/api/auth/register", "", body{
		"username": "newplayer", "email": "other@example.com", "password": "Secret123",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Short password.
	rec = doJSON(t, http.MethodPost, "/api/auth/register", "", body{
		"username": "another", "email": "another@example.com", "password": "abc",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(t, http.MethodPost, "/api/auth/login", "", body{
		"email": "newplayer@example.com", "password": "Secret123",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, http.MethodPost, "/api/auth/login", "", body{
		"email": "newplayer@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	resp = decode(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid email or password", resp.Error)
}

func TestRegisterSchemaValidation(t *testing.T) {
	setup(t)

	cases := []struct {
		name    string
		payload body
		message string
	}{
		{
			"username too long",
			body{"username": "operator_with_a_long_name", "email": "long@example.com", "password": "Secret123"},
			"Username cannot exceed 20 characters",
		},
		{
			"username with invalid characters",
			body{"username": "bad name!", "email": "badname@example.com", "password": "Secret123"},
			"Only letters, numbers, and underscores allowed",
		},
		{
			"username too short",
			body{"username": "ab", "email": "ab@example.com", "password": "Secret123"},
			"Username must be at least 3 characters",
		},
		{
			"malformed email",
			body{"username": "validname", "email": "not-an-email", "password": "Secret123"},
			"Invalid email address",
		},
		{
			"password without uppercase",
			body{"username": "validname", "email": "valid@example.com", "password": "secret123"},
			"Password must contain at least one uppercase letter",
		},
		{
			"password without number",
			body{"username": "validname", "email": "valid@example.com", "password": "SecretPass"},
			"Password must contain at least one number",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, http.MethodPost, "/api/auth/register", "", tc.payload)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			resp := decode(t, rec)
			assert.False(t, resp.Success)
			assert.Equal(t, tc.message, resp.Error)
		})
	}
}

func TestMeRequiresToken(t *testing.T) {
	setup(t)

	rec := doJSON(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	_, token := newAccount(t, auth.RoleUser)
	rec = doJSON(t, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMeViaCookie(t *testing.T) {
	setup(t)
	_, token := newAccount(t, auth.RoleUser)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: token})
	rec := httptest.NewRecorder()
	testServer.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoadoutActionStatusMapping(t *testing.T) {
	setup(t)
	_, token := newAccount(t, auth.RoleUser)
	weapons := make([]*catalog.Weapon, 6)
	for i := range weapons {
		weapons[i] = newWeapon(t, true)
	}

	// No token.
	rec := doJSON(t, http.MethodPost, "/api/loadout", "", body{"action": "add-weapon", "weaponId": weapons[0].ID})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Unknown weapon.
	rec = doJSON(t, http.MethodPost, "/api/loadout", token, body{"action": "add-weapon", "weaponId": "000000000000000000000000"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Missing weaponId.
	rec = doJSON(t, http.MethodPost, "/api/loadout", token, body{"action": "add-weapon"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown action.
	rec = doJSON(t, http.MethodPost, "/api/loadout", token, body{"action": "equip-all"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Fill to capacity.
	for i := 0; i < auth.MaxLoadoutWeapons; i++ {
		rec = doJSON(t, http.MethodPost, "/api/loadout", token, body{"action": "add-weapon", "weaponId": weapons[i].ID})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec = doJSON(t, http.MethodPost, "/api/loadout", token, body{"action": "add-weapon", "weaponId": weapons[5].ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, "Max 5 weapons in loadout", resp.Error)

	// Remove one, view reflects it.
	rec = doJSON(t, http.MethodPost, "/api/loadout", token, body{"action": "remove-weapon", "weaponId": weapons[0].ID})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, http.MethodGet, "/api/loadout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestNamedLoadoutEndpoints(t *testing.T) {
	setup(t)
	_, token := newAccount(t, auth.RoleUser)
	w := newWeapon(t, true)

	rec := doJSON(t, http.MethodPost, "/api/loadouts", token, body{"name": "Rush", "weapons": []string{w.ID}})
	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decode(t, rec)
	created, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	loadoutID, _ := created["id"].(string)
	require.NotEmpty(t, loadoutID)

	// Empty name fails validation.
	rec = doJSON(t, http.MethodPost, "/api/loadouts", token, body{"name": "", "weapons": []string{}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(t, http.MethodGet, "/api/loadouts", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, http.MethodDelete, "/api/loadouts", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, http.MethodDelete, "/api/loadouts?id="+loadoutID, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminAccessControl(t *testing.T) {
	setup(t)
	_, userToken := newAccount(t, auth.RoleUser)
	_, adminToken := newAccount(t, auth.RoleAdmin)

	weapon := body{
		"name": "Admin Gun", "category": "assault", "tier": "Epic",
		"stats": body{"damage": 50}, "isActive": true,
	}

	rec := doJSON(t, http.MethodPost, "/api/admin/weapons", userToken, weapon)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, http.MethodPost, "/api/admin/weapons", adminToken, weapon)
	assert.Equal(t, http.StatusCreated, rec.Code)

	// Invalid category rejected.
	rec = doJSON(t, http.MethodPost, "/api/admin/weapons", adminToken, body{
		"name": "Bad Gun", "category": "railgun", "tier": "Epic",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, http.MethodGet, "/api/admin/stats", adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPublicCatalogHidesInactive(t *testing.T) {
	setup(t)
	inactive := newWeapon(t, false)

	rec := doJSON(t, http.MethodGet, "/api/weapons/"+inactive.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, http.MethodGet, "/api/weapons?category=railgun", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, http.MethodGet, "/api/weapons", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	list, _ := data["weapons"].([]interface{})
	for _, item := range list {
		w := item.(map[string]interface{})
		assert.NotEqual(t, inactive.ID, w["id"])
	}
}

// body is shorthand for a JSON request payload.
type body = map[string]interface{}
