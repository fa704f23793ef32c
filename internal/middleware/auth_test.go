package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ittullos/authgate/internal/auth"
	"github.com/ittullos/authgate/internal/config"
	"github.com/ittullos/authgate/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServerConfig() config.ServerConfig {
	return config.ServerConfig{
		CookieName:     "authgate-session",
		CookieHTTPOnly: true,
		CookieSameSite: "lax",
	}
}

func testSessionConfig() config.SessionConfig {
	return config.SessionConfig{
		MaxAge:      24 * time.Hour,
		LandingPath: "/",
		FailurePath: "/",
		LoginPath:   "/auth/login",
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAuthMiddleware(t *testing.T) (*AuthMiddleware, store.Store) {
	t.Helper()
	ms := store.NewMemoryStore(24 * time.Hour)
	t.Cleanup(func() { ms.Close() })
	return NewAuthMiddleware(testServerConfig(), testSessionConfig(), ms, testLogger()), ms
}

func putSessionAuthenticatedAt(t *testing.T, st store.Store, correlationID string, at time.Time) {
	t.Helper()
	session := auth.AuthSession{
		Claims:          auth.ClaimSet{Subject: "auth0|abc123", Email: "jane@example.com"},
		AuthenticatedAt: at.UTC().Format(time.RFC3339),
		CorrelationID:   correlationID,
	}
	require.NoError(t, st.PutSession(context.Background(), correlationID, session, auth.TokenPresence{}))
}

func TestRequireAuthFreshSessionPasses(t *testing.T) {
	am, st := newAuthMiddleware(t)
	putSessionAuthenticatedAt(t, st, "corr-1", time.Now())

	var gotClaims auth.ClaimSet
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := GetClaims(r.Context())
		require.True(t, ok)
		gotClaims = claims
		w.WriteHeader(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/reports", nil)
	r.AddCookie(&http.Cookie{Name: "authgate-session", Value: "corr-1"})
	am.RequireAuth(next).ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
	assert.Equal(t, "jane@example.com", gotClaims.Email)
}

func TestRequireAuthStaleSessionRemembersPath(t *testing.T) {
	am, st := newAuthMiddleware(t)
	putSessionAuthenticatedAt(t, st, "corr-1", time.Now().Add(-25*time.Hour))

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run for a stale session")
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/reports?page=2", nil)
	r.AddCookie(&http.Cookie{Name: "authgate-session", Value: "corr-1"})
	am.RequireAuth(next).ServeHTTP(w, r)

	resp := w.Result()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/auth/login", resp.Header.Get("Location"))

	path, err := st.TakePendingRedirect(context.Background(), "corr-1")
	require.NoError(t, err)
	assert.Equal(t, "/reports?page=2", path)
}

func TestRequireAuthNoCookieIssuesCorrelationID(t *testing.T) {
	am, st := newAuthMiddleware(t)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run without a session")
	})

	w := httptest.NewRecorder()
	am.RequireAuth(next).ServeHTTP(w, httptest.NewRequest("GET", "/dashboard", nil))

	resp := w.Result()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/auth/login", resp.Header.Get("Location"))

	var issued string
	for _, c := range resp.Cookies() {
		if c.Name == "authgate-session" {
			issued = c.Value
		}
	}
	require.NotEmpty(t, issued, "anonymous correlation cookie must be issued")

	path, err := st.TakePendingRedirect(context.Background(), issued)
	require.NoError(t, err)
	assert.Equal(t, "/dashboard", path)
}

func TestRequireAuthMalformedTimestampFailsClosed(t *testing.T) {
	am, st := newAuthMiddleware(t)

	session := auth.AuthSession{
		Claims:          auth.ClaimSet{Subject: "auth0|abc123"},
		AuthenticatedAt: "yesterday-ish",
		CorrelationID:   "corr-1",
	}
	require.NoError(t, st.PutSession(context.Background(), "corr-1", session, auth.TokenPresence{}))

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run for a corrupt session")
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/reports", nil)
	r.AddCookie(&http.Cookie{Name: "authgate-session", Value: "corr-1"})
	am.RequireAuth(next).ServeHTTP(w, r)

	assert.Equal(t, http.StatusFound, w.Result().StatusCode)
}

type unavailableStore struct {
	store.Store
}

var errStoreDown = errors.New("store down")

func (unavailableStore) GetSession(context.Context, string) (*auth.AuthSession, error) {
	return nil, errStoreDown
}

func TestRequireAuthStoreUnavailableIsNotSignedOut(t *testing.T) {
	am := NewAuthMiddleware(testServerConfig(), testSessionConfig(), unavailableStore{}, testLogger())

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run when the store is down")
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/reports", nil)
	r.AddCookie(&http.Cookie{Name: "authgate-session", Value: "corr-1"})
	am.RequireAuth(next).ServeHTTP(w, r)

	// Infrastructure failure surfaces as an error, not a login redirect.
	assert.Equal(t, http.StatusServiceUnavailable, w.Result().StatusCode)
}
