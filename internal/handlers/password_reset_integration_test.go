package handlers_test

import (
	"net/http"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hazemkhaled/digimarket/internal/handlers/testutil"
)

var resetCodePattern = regexp.MustCompile(`\b[0-9]{6}\b`)

func issuedResetCode(t *testing.T, env *testutil.Env) string {
	t.Helper()
	code := resetCodePattern.FindString(env.Mailer.Last(t).Body)
	require.NotEmpty(t, code, "reset email should contain a six digit code")
	return code
}

func TestPasswordResetFlow(t *testing.T) {
	env := testutil.NewEnv(t)
	user := env.CreateUser("old-password", false)

	w := env.Request(http.MethodPost, "/api/auth/password-reset/request", map[string]string{
		"email": user.Email,
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	msg := env.Mailer.Last(t)
	require.True(t, msg.HTML)
	require.Contains(t, msg.To, user.Email)
	require.Contains(t, msg.Subject, "إعادة تعيين")

	code := issuedResetCode(t, env)

	w = env.Request(http.MethodPost, "/api/auth/password-reset/confirm", map[string]string{
		"email":            user.Email,
		"code":             code,
		"new_password":     "brand-new-pass",
		"confirm_password": "brand-new-pass",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// The new credential is live; the old one is gone.
	env.Login(user.Username, "brand-new-pass")

	w = env.Request(http.MethodPost, "/api/auth/login", map[string]string{
		"identifier": user.Username,
		"password":   "old-password",
	}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code, w.Body.String())
}

func TestPasswordResetCodeSingleUse(t *testing.T) {
	env := testutil.NewEnv(t)
	user := env.CreateUser("old-password", false)

	w := env.Request(http.MethodPost, "/api/auth/password-reset/request", map[string]string{
		"email": user.Email,
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	code := issuedResetCode(t, env)

	confirm := map[string]string{
		"email":            user.Email,
		"code":             code,
		"new_password":     "brand-new-pass",
		"confirm_password": "brand-new-pass",
	}

	w = env.Request(http.MethodPost, "/api/auth/password-reset/confirm", confirm, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.Request(http.MethodPost, "/api/auth/password-reset/confirm", confirm, "")
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	resp := testutil.DecodeResponse(t, w)
	require.NotNil(t, resp.Error)
	require.Equal(t, "RESET_CODE_INVALID", resp.Error.Code)
}

func TestPasswordResetUnknownEmailIsIndistinguishable(t *testing.T) {
	env := testutil.NewEnv(t)
	user := env.CreateUser("old-password", false)

	known := env.Request(http.MethodPost, "/api/auth/password-reset/request", map[string]string{
		"email": user.Email,
	}, "")
	unknown := env.Request(http.MethodPost, "/api/auth/password-reset/request", map[string]string{
		"email": "nobody@example.com",
	}, "")

	require.Equal(t, http.StatusOK, known.Code)
	require.Equal(t, http.StatusOK, unknown.Code)
	require.JSONEq(t, known.Body.String(), unknown.Body.String())

	// Only the known address actually received mail.
	require.Len(t, env.Mailer.Messages, 1)
	require.Contains(t, env.Mailer.Messages[0].To, user.Email)
}

func TestPasswordResetConfirmMismatch(t *testing.T) {
	env := testutil.NewEnv(t)
	user := env.CreateUser("old-password", false)

	w := env.Request(http.MethodPost, "/api/auth/password-reset/request", map[string]string{
		"email": user.Email,
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	code := issuedResetCode(t, env)

	w = env.Request(http.MethodPost, "/api/auth/password-reset/confirm", map[string]string{
		"email":            user.Email,
		"code":             code,
		"new_password":     "brand-new-pass",
		"confirm_password": "different-pass",
	}, "")
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	// The mismatch must not consume the code.
	w = env.Request(http.MethodPost, "/api/auth/password-reset/confirm", map[string]string{
		"email":            user.Email,
		"code":             code,
		"new_password":     "brand-new-pass",
		"confirm_password": "brand-new-pass",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestPasswordResetRequestValidation(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodPost, "/api/auth/password-reset/request", map[string]string{
		"email": "not-an-email",
	}, "")
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
}
