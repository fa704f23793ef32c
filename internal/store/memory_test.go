package store

import (
	"context"
	"testing"
	"time"

	"github.com/ittullos/authgate/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *MemoryStore {
	t.Helper()
	ms := NewMemoryStore(time.Hour)
	t.Cleanup(func() { ms.Close() })
	return ms
}

func testSession(id string) (auth.AuthSession, auth.TokenPresence) {
	session := auth.AuthSession{
		Claims:          auth.ClaimSet{Subject: "auth0|abc123", Email: "jane@example.com"},
		AuthenticatedAt: time.Now().UTC().Format(time.RFC3339),
		CorrelationID:   id,
	}
	tokens := auth.TokenPresence{IDTokenPresent: true, AccessTokenPresent: true, TokenType: "Bearer"}
	return session, tokens
}

func TestPutGetSession(t *testing.T) {
	ms := newTestStore(t)
	ctx := context.Background()

	session, tokens := testSession("corr-1")
	require.NoError(t, ms.PutSession(ctx, "corr-1", session, tokens))

	got, err := ms.GetSession(ctx, "corr-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, session, *got)

	gotTokens, err := ms.GetTokenPresence(ctx, "corr-1")
	require.NoError(t, err)
	require.NotNil(t, gotTokens)
	assert.Equal(t, tokens, *gotTokens)
}

func TestGetSessionAbsent(t *testing.T) {
	ms := newTestStore(t)

	got, err := ms.GetSession(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionExpiresWithTTL(t *testing.T) {
	ms := NewMemoryStore(10 * time.Millisecond)
	defer ms.Close()
	ctx := context.Background()

	session, tokens := testSession("corr-1")
	require.NoError(t, ms.PutSession(ctx, "corr-1", session, tokens))

	time.Sleep(20 * time.Millisecond)

	got, err := ms.GetSession(ctx, "corr-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPendingRedirectReadOnce(t *testing.T) {
	ms := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, ms.SetPendingRedirect(ctx, "corr-1", "/dashboard"))

	path, err := ms.TakePendingRedirect(ctx, "corr-1")
	require.NoError(t, err)
	assert.Equal(t, "/dashboard", path)

	path, err = ms.TakePendingRedirect(ctx, "corr-1")
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestLoginStateOneTimeUse(t *testing.T) {
	ms := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, ms.SetLoginState(ctx, "state-1", []byte(`{"code_verifier":"v"}`), time.Minute))

	data, err := ms.TakeLoginState(ctx, "state-1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"code_verifier":"v"}`), data)

	_, err = ms.TakeLoginState(ctx, "state-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCSRFTokenOneTimeUse(t *testing.T) {
	ms := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, ms.SetCSRFToken(ctx, "tok-1", time.Minute))

	ok, err := ms.TakeCSRFToken(ctx, "tok-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ms.TakeCSRFToken(ctx, "tok-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClearWipesAllSessionState(t *testing.T) {
	ms := newTestStore(t)
	ctx := context.Background()

	session, tokens := testSession("corr-1")
	require.NoError(t, ms.PutSession(ctx, "corr-1", session, tokens))
	require.NoError(t, ms.SetPendingRedirect(ctx, "corr-1", "/dashboard"))

	require.NoError(t, ms.Clear(ctx, "corr-1"))

	got, err := ms.GetSession(ctx, "corr-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	gotTokens, err := ms.GetTokenPresence(ctx, "corr-1")
	require.NoError(t, err)
	assert.Nil(t, gotTokens)

	path, err := ms.TakePendingRedirect(ctx, "corr-1")
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestClearIdempotent(t *testing.T) {
	ms := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, ms.Clear(ctx, "never-existed"))
	require.NoError(t, ms.Clear(ctx, "never-existed"))
}
