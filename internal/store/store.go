package store

import (
	"context"
	"errors"
	"time"

	"github.com/ittullos/authgate/internal/auth"
	"github.com/ittullos/authgate/internal/config"
)

var ErrNotFound = errors.New("key not found")

// How long a remembered redirect target survives before the login completes.
const redirectTTL = 30 * time.Minute

// Store is the server-side session store. Sessions, token presence records
// and pending redirects share a correlation id and are wiped together on
// Clear. Absent entries are reported as nil results, not errors; errors mean
// the store itself is unavailable and are propagated to the caller as-is.
type Store interface {
	PutSession(ctx context.Context, correlationID string, session auth.AuthSession, tokens auth.TokenPresence) error
	GetSession(ctx context.Context, correlationID string) (*auth.AuthSession, error)
	GetTokenPresence(ctx context.Context, correlationID string) (*auth.TokenPresence, error)

	SetPendingRedirect(ctx context.Context, correlationID, path string) error
	// TakePendingRedirect is read-once: it clears the entry and returns ""
	// when nothing was pending.
	TakePendingRedirect(ctx context.Context, correlationID string) (string, error)

	// SetLoginState and TakeLoginState hold the transient PKCE state between
	// the login redirect and the provider callback, keyed by the OAuth state
	// parameter. One-time use.
	SetLoginState(ctx context.Context, state string, data []byte, ttl time.Duration) error
	TakeLoginState(ctx context.Context, state string) ([]byte, error)

	// SetCSRFToken and TakeCSRFToken back one-time CSRF tokens for the
	// logout form. Take reports whether the token existed and consumes it.
	SetCSRFToken(ctx context.Context, token string, ttl time.Duration) error
	TakeCSRFToken(ctx context.Context, token string) (bool, error)

	// Clear wipes every entry for the correlation id. Clearing an absent
	// session is not an error.
	Clear(ctx context.Context, correlationID string) error

	Ping(ctx context.Context) error
	Close() error
}

func New(cfg config.StoreConfig, sessionTTL time.Duration) (Store, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(sessionTTL), nil
	case "redis":
		if cfg.Redis == nil {
			return nil, errors.New("redis config is required for redis store type")
		}
		return NewRedisStore(*cfg.Redis, sessionTTL)
	default:
		return nil, errors.New("unsupported store type: " + cfg.Type)
	}
}

func sessionKey(id string) string  { return "session:" + id }
func tokensKey(id string) string   { return "tokens:" + id }
func redirectKey(id string) string { return "redirect:" + id }
func loginKey(state string) string { return "login:" + state }
func csrfKey(token string) string  { return "csrf:" + token }
