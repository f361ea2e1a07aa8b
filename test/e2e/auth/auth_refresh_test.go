package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campusconnect/campusconnect/pkg/cryptox"
	"github.com/campusconnect/campusconnect/pkg/jwtx"
)

func (e *testEnv) signin(t *testing.T, username string) *http.Response {
	t.Helper()

	resp, _ := e.postJSON(t, "/auth/signin", map[string]any{
		"username": username,
		"password": testPassword,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, cookieByName(resp, "refresh_token"))
	return resp
}

func TestRefreshRotatesCookies(t *testing.T) {
	e := newTestEnv(t)
	e.verifiedUser(t, 1001, "asha.rawat")
	login := e.signin(t, "asha.rawat")

	old := cookieByName(login, "refresh_token")
	resp, env := e.get(t, "/auth/refresh-token", old)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "success", env.Status)

	fresh := cookieByName(resp, "refresh_token")
	require.NotNil(t, fresh)
	require.NotEmpty(t, fresh.Value)
	require.NotEqual(t, old.Value, fresh.Value)

	var data struct {
		Tokens struct {
			RefreshToken string `json:"refreshToken"`
		} `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Equal(t, fresh.Value, data.Tokens.RefreshToken)
}

func TestRefreshWithoutCookie(t *testing.T) {
	e := newTestEnv(t)

	resp, env := e.get(t, "/auth/refresh-token")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "failed", env.Status)
}

// A token the store no longer holds is replay: 403, and every session for
// that user is revoked.
func TestRefreshReuseForcesGlobalLogout(t *testing.T) {
	e := newTestEnv(t)
	userID := e.verifiedUser(t, 1001, "asha.rawat")

	first := e.signin(t, "asha.rawat")
	second := e.signin(t, "asha.rawat")

	spent := cookieByName(first, "refresh_token")
	resp, _ := e.get(t, "/auth/refresh-token", spent)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Replay of the consumed token.
	resp, env := e.get(t, "/auth/refresh-token", spent)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Equal(t, "Invalid refresh token: Token reuse detected", env.Message)

	// The refresh cookies are dropped on the reuse response too.
	cleared := cookieByName(resp, "refresh_token")
	require.NotNil(t, cleared)
	require.Empty(t, cleared.Value)

	// Every other session is dead: the untouched second login included.
	ctx := context.Background()
	hash := cryptox.FingerprintToken(cookieByName(second, "refresh_token").Value)
	_, err := e.store.RefreshTokens().GetRefreshTokenByHash(ctx, hash)
	require.Error(t, err)

	resp, _ = e.get(t, "/auth/refresh-token", cookieByName(second, "refresh_token"))
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	require.NoError(t, e.store.RefreshTokens().DeleteAllUserRefreshTokens(ctx, userID))
}

// A well-signed token that was never persisted behaves like replay for its
// claimed owner.
func TestRefreshUnknownSignedToken(t *testing.T) {
	e := newTestEnv(t)
	userID := e.verifiedUser(t, 1001, "asha.rawat")
	e.signin(t, "asha.rawat")

	forged, err := e.tokens.IssueRefreshToken(jwtx.Principal{
		UserID: userID, CampusID: 1001, Role: "student",
	})
	require.NoError(t, err)

	resp, _ := e.get(t, "/auth/refresh-token", &http.Cookie{Name: "refresh_token", Value: forged})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestLogoutClearsCookiesAndRevokes(t *testing.T) {
	e := newTestEnv(t)
	e.verifiedUser(t, 1001, "asha.rawat")
	login := e.signin(t, "asha.rawat")
	refresh := cookieByName(login, "refresh_token")

	resp, env := e.postJSON(t, "/auth/logout", map[string]any{}, refresh)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "success", env.Status)

	for _, name := range []string{
		"access_token", "access_token_expires_at",
		"refresh_token", "refresh_token_expires_at",
	} {
		c := cookieByName(resp, name)
		require.NotNil(t, c, "missing cleared cookie %s", name)
		require.Empty(t, c.Value)
	}

	hash := cryptox.FingerprintToken(refresh.Value)
	_, err := e.store.RefreshTokens().GetRefreshTokenByHash(context.Background(), hash)
	require.Error(t, err)
}
