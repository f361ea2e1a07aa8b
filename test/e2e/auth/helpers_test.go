package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/campusconnect/campusconnect/internal/auth/cache"
	httpapi "github.com/campusconnect/campusconnect/internal/auth/http"
	"github.com/campusconnect/campusconnect/internal/auth/queue"
	"github.com/campusconnect/campusconnect/internal/auth/service"
	"github.com/campusconnect/campusconnect/internal/auth/store/drivers/sqlite"
	"github.com/campusconnect/campusconnect/pkg/cryptox"
	"github.com/campusconnect/campusconnect/pkg/jwtx"
)

/*
 * End-to-end tests exercising the auth service over HTTP: the full router,
 * middleware chain, cookie handling, and response envelopes, backed by an
 * in-memory database and redis.
 */

const (
	testDomain   = "campus.edu"
	testPassword = "correct horse battery"
)

// envelope mirrors the uniform response body.
type envelope struct {
	Status     string          `json:"status"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	StatusCode int             `json:"statusCode"`
}

type testEnv struct {
	srv    *httptest.Server
	store  *sqlite.Store
	mr     *miniredis.Miniredis
	rdb    *redis.Client
	tokens *jwtx.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	tokens := jwtx.NewService("e2e-access-secret", "e2e-refresh-secret", 15*time.Minute, 24*time.Hour)
	auth := service.NewAuth(
		st,
		cache.NewRedis(rdb),
		queue.NewRedisDispatcher(rdb),
		tokens,
		cryptox.NewHasher("e2e-password-pepper"),
		cryptox.NewOTPHasher("e2e-otp-pepper"),
		service.Config{EmailDomain: testDomain},
	)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := httpapi.NewRouter(auth, tokens, st, cache.NewRedis(rdb), "e2e-test", logger)
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, store: st, mr: mr, rdb: rdb, tokens: tokens}
}

func (e *testEnv) postJSON(t *testing.T, path string, body any, cookies ...*http.Cookie) (*http.Response, envelope) {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))

	req, err := http.NewRequest(http.MethodPost, e.srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return e.do(t, req)
}

func (e *testEnv) get(t *testing.T, path string, cookies ...*http.Cookie) (*http.Response, envelope) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, e.srv.URL+path, nil)
	require.NoError(t, err)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return e.do(t, req)
}

func (e *testEnv) do(t *testing.T, req *http.Request) (*http.Response, envelope) {
	t.Helper()

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func signupBody(campusID int64, username string) map[string]any {
	return map[string]any{
		"campusId":  campusID,
		"username":  username,
		"email":     username + "@" + testDomain,
		"password":  testPassword,
		"firstName": "Asha",
		"lastName":  "Rawat",
	}
}

// signup registers an account and returns its id from the response.
func (e *testEnv) signup(t *testing.T, campusID int64, username string) string {
	t.Helper()

	resp, env := e.postJSON(t, "/auth/signup", signupBody(campusID, username))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var data struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.User.ID
}

// latestOTP pulls the most recent verify_otp job from the notification queue.
func (e *testEnv) latestOTP(t *testing.T) int {
	t.Helper()

	entries, err := e.rdb.XRange(context.Background(), "queue:auth-notification", "-", "+").Result()
	require.NoError(t, err)

	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Values["event"] != queue.EventVerifyOTP {
			continue
		}
		var p queue.VerifyOTPPayload
		require.NoError(t, json.Unmarshal([]byte(entries[i].Values["payload"].(string)), &p))
		return p.OTP
	}
	t.Fatal("no verify_otp job queued")
	return 0
}

// verify registers and verifies an account, leaving it ready to sign in.
func (e *testEnv) verifiedUser(t *testing.T, campusID int64, username string) string {
	t.Helper()

	id := e.signup(t, campusID, username)
	resp, _ := e.postJSON(t, "/auth/verify-email", map[string]any{
		"email": username + "@" + testDomain,
		"otp":   e.latestOTP(t),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return id
}

func cookieByName(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
