package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/ittullos/authgate/internal/auth"
	"github.com/ittullos/authgate/internal/config"
	"github.com/ittullos/authgate/internal/store"
	"github.com/ittullos/authgate/pkg/security"
)

type contextKey string

const ClaimsContextKey contextKey = "claims"

type AuthMiddleware struct {
	server  config.ServerConfig
	session config.SessionConfig
	store   store.Store
	guard   auth.Guard
	logger  *slog.Logger
}

func NewAuthMiddleware(server config.ServerConfig, session config.SessionConfig, st store.Store, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		server:  server,
		session: session,
		store:   st,
		guard:   auth.NewGuard(session.MaxAge),
		logger:  logger,
	}
}

// RequireAuth gates protected resources. Anything short of a fresh session
// remembers the requested path and bounces to login; a store failure is an
// infrastructure error and is never treated as signed out.
func (am *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correlationID := ""
		if cookie, err := security.GetSessionCookie(r, am.server.CookieName); err == nil {
			correlationID = cookie.Value
		}

		if correlationID == "" {
			// First contact: issue an anonymous correlation id so the
			// pending redirect has somewhere to live.
			correlationID = uuid.New().String()
			http.SetCookie(w, security.CreateSessionCookie(am.server, correlationID, am.session.MaxAge))
			am.denyAndRemember(w, r, correlationID, auth.ReasonAbsent)
			return
		}

		session, err := am.store.GetSession(r.Context(), correlationID)
		if err != nil {
			am.logger.Error("session store unavailable", "error", err)
			http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
			return
		}

		decision := am.guard.Evaluate(session, time.Now())
		if !decision.SignedIn {
			am.denyAndRemember(w, r, correlationID, decision.Reason)
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsContextKey, decision.Claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (am *AuthMiddleware) denyAndRemember(w http.ResponseWriter, r *http.Request, correlationID string, reason auth.Reason) {
	// A session that fails to parse is worth a warning; plain expiry and
	// absence are routine.
	if reason == auth.ReasonMalformed {
		am.logger.Warn("session timestamp unparseable, failing closed", "path", r.URL.Path)
	} else {
		am.logger.Debug("access denied", "path", r.URL.Path, "reason", string(reason))
	}

	if err := am.store.SetPendingRedirect(r.Context(), correlationID, r.URL.RequestURI()); err != nil {
		am.logger.Error("failed to record pending redirect", "error", err)
	}

	http.Redirect(w, r, am.session.LoginPath, http.StatusFound)
}

// GetClaims returns the claims the guard attached for a signed-in request.
func GetClaims(ctx context.Context) (auth.ClaimSet, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(auth.ClaimSet)
	return claims, ok
}
