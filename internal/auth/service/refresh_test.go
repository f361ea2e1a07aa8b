package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/campusconnect/campusconnect/internal/auth/store"
	"github.com/campusconnect/campusconnect/pkg/cryptox"
	"github.com/campusconnect/campusconnect/pkg/jwtx"
)

func (ts *testStack) login(t *testing.T, username string) *LoginResult {
	t.Helper()
	res, err := ts.auth.Login(context.Background(), username, testPassword)
	require.NoError(t, err)
	require.Equal(t, LoginOK, res.Outcome)
	return res
}

func TestRefreshRotates(t *testing.T) {
	ts := newTestStack(t)
	ctx := context.Background()
	ts.register(t, 1001, "asha.rawat")
	first := ts.login(t, "asha.rawat")

	res, err := ts.auth.Refresh(ctx, first.Tokens.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, LoginOK, res.Outcome)
	require.NotEqual(t, first.Tokens.RefreshToken, res.Tokens.RefreshToken)

	// The old grant is consumed; only the new one remains.
	oldHash := cryptox.FingerprintToken(first.Tokens.RefreshToken)
	_, err = ts.store.RefreshTokens().GetRefreshTokenByHash(ctx, oldHash)
	require.ErrorIs(t, err, store.ErrNotFound)

	newHash := cryptox.FingerprintToken(res.Tokens.RefreshToken)
	_, err = ts.store.RefreshTokens().GetRefreshTokenByHash(ctx, newHash)
	require.NoError(t, err)
}

// Redeeming the same token twice: the second redemption finds no record,
// which reads as replay and revokes every grant for the user.
func TestRefreshReuseRevokesAllSessions(t *testing.T) {
	ts := newTestStack(t)
	ctx := context.Background()
	u := ts.register(t, 1001, "asha.rawat")

	first := ts.login(t, "asha.rawat")
	second := ts.login(t, "asha.rawat")

	rotated, err := ts.auth.Refresh(ctx, first.Tokens.RefreshToken)
	require.NoError(t, err)

	_, err = ts.auth.Refresh(ctx, first.Tokens.RefreshToken)
	require.ErrorIs(t, err, ErrReuseDetected)

	// The invalidation is global: the untouched session and the freshly
	// rotated grant are gone too.
	for _, token := range []string{second.Tokens.RefreshToken, rotated.Tokens.RefreshToken} {
		_, err = ts.store.RefreshTokens().GetRefreshTokenByHash(ctx, cryptox.FingerprintToken(token))
		require.ErrorIs(t, err, store.ErrNotFound)
	}
	require.NoError(t, ts.store.RefreshTokens().DeleteAllUserRefreshTokens(ctx, u.ID))
}

func TestRefreshMissingToken(t *testing.T) {
	ts := newTestStack(t)

	_, err := ts.auth.Refresh(context.Background(), "")
	require.ErrorIs(t, err, ErrMissingRefreshToken)
}

func TestRefreshForgedToken(t *testing.T) {
	ts := newTestStack(t)
	ctx := context.Background()
	u := ts.register(t, 1001, "asha.rawat")
	ts.login(t, "asha.rawat")

	forged, err := jwtx.NewService("other-access", "other-refresh", time.Minute, time.Hour).
		IssueRefreshToken(jwtx.Principal{UserID: u.ID, CampusID: u.CampusID, Role: "student"})
	require.NoError(t, err)

	_, err = ts.auth.Refresh(ctx, forged)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)

	// A forgery proves nothing about the owner; live grants survive.
	tokens, err := ts.store.RefreshTokens().GetRefreshTokenByHash(ctx,
		cryptox.FingerprintToken(ts.login(t, "asha.rawat").Tokens.RefreshToken))
	require.NoError(t, err)
	require.Equal(t, u.ID, tokens.UserID)
}

// Two concurrent redemptions of one token: the record deletion arbitrates,
// exactly one wins and the loser trips reuse detection.
func TestRefreshConcurrentRotation(t *testing.T) {
	ts := newTestStack(t)
	ctx := context.Background()
	ts.register(t, 1001, "asha.rawat")
	first := ts.login(t, "asha.rawat")

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = ts.auth.Refresh(ctx, first.Tokens.RefreshToken)
		}(i)
	}
	wg.Wait()

	var ok, reuse int
	for _, err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrReuseDetected):
			reuse++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, ok)
	require.Equal(t, 1, reuse)
}

func TestLogout(t *testing.T) {
	ts := newTestStack(t)
	ctx := context.Background()
	ts.register(t, 1001, "asha.rawat")
	res := ts.login(t, "asha.rawat")

	require.NoError(t, ts.auth.Logout(ctx, res.Tokens.RefreshToken))

	_, err := ts.store.RefreshTokens().GetRefreshTokenByHash(ctx,
		cryptox.FingerprintToken(res.Tokens.RefreshToken))
	require.ErrorIs(t, err, store.ErrNotFound)

	require.ErrorIs(t, ts.auth.Logout(ctx, res.Tokens.RefreshToken), ErrInvalidRefreshToken)
}
