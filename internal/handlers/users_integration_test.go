package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hazemkhaled/digimarket/internal/handlers/testutil"
	"github.com/hazemkhaled/digimarket/internal/models"
)

func TestUserAdminList(t *testing.T) {
	env := testutil.NewEnv(t)
	admin := adminLogin(t, env)
	user := env.CreateUser("secret-pass", false)

	w := env.Request(http.MethodGet, "/api/admin/users", nil, admin.Tokens.AccessToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := testutil.DecodeResponse(t, w)
	var users []models.User
	testutil.DecodeInto(t, resp.Data, &users)
	require.Len(t, users, 2) // seeded admin plus the new account
	require.Equal(t, 2, resp.Meta.Total)

	// Username search narrows the listing.
	w = env.Request(http.MethodGet, "/api/admin/users?q="+user.Username, nil, admin.Tokens.AccessToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &users)
	require.Len(t, users, 1)
	require.Equal(t, user.ID, users[0].ID)
}

func TestUserAdminPromote(t *testing.T) {
	env := testutil.NewEnv(t)
	admin := adminLogin(t, env)
	user := env.CreateUser("secret-pass", false)

	value := true
	w := env.Request(http.MethodPatch, "/api/admin/users/"+user.ID+"/admin", map[string]any{
		"value": &value,
	}, admin.Tokens.AccessToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.Request(http.MethodGet, "/api/admin/users/"+user.ID, nil, admin.Tokens.AccessToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var fetched models.User
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &fetched)
	require.True(t, fetched.IsAdmin)

	// Admin rights take effect on the next login.
	login := env.Login(user.Username, "secret-pass")
	w = env.Request(http.MethodGet, "/api/admin/users", nil, login.Tokens.AccessToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestUserAdminDeactivate(t *testing.T) {
	env := testutil.NewEnv(t)
	admin := adminLogin(t, env)
	user := env.CreateUser("secret-pass", false)

	value := false
	w := env.Request(http.MethodPatch, "/api/admin/users/"+user.ID+"/active", map[string]any{
		"value": &value,
	}, admin.Tokens.AccessToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Disabled accounts cannot sign in.
	w = env.Request(http.MethodPost, "/api/auth/login", map[string]string{
		"identifier": user.Username,
		"password":   "secret-pass",
	}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code, w.Body.String())
}

func TestUserAdminFlagValidation(t *testing.T) {
	env := testutil.NewEnv(t)
	admin := adminLogin(t, env)
	user := env.CreateUser("secret-pass", false)

	w := env.Request(http.MethodPatch, "/api/admin/users/"+user.ID+"/admin", map[string]any{}, admin.Tokens.AccessToken)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = env.Request(http.MethodGet, "/api/admin/users/does-not-exist", nil, admin.Tokens.AccessToken)
	require.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
}
