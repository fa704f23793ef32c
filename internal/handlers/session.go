package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/ittullos/authgate/internal/auth"
	"github.com/ittullos/authgate/internal/config"
	"github.com/ittullos/authgate/internal/middleware"
	"github.com/ittullos/authgate/internal/store"
	"github.com/ittullos/authgate/pkg/security"
)

// SessionHandler reports the caller's signed-in status as JSON so the
// backend app can render account state and a logout form without access to
// the store. Token presence flags are exposed; token material never is.
type SessionHandler struct {
	cfg    config.Config
	store  store.Store
	guard  auth.Guard
	csrf   *middleware.CSRFMiddleware
	logger *slog.Logger
}

func NewSessionHandler(cfg config.Config, st store.Store, csrf *middleware.CSRFMiddleware, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		cfg:    cfg,
		store:  st,
		guard:  auth.NewGuard(cfg.Session.MaxAge),
		csrf:   csrf,
		logger: logger,
	}
}

type SessionResponse struct {
	SignedIn  bool                `json:"signed_in"`
	Claims    *auth.ClaimSet      `json:"claims,omitempty"`
	Tokens    *auth.TokenPresence `json:"tokens,omitempty"`
	CSRFToken string              `json:"csrf_token,omitempty"`
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	response := SessionResponse{}

	cookie, err := security.GetSessionCookie(r, h.cfg.Server.CookieName)
	if err == nil && cookie.Value != "" {
		session, err := h.store.GetSession(r.Context(), cookie.Value)
		if err != nil {
			h.logger.Error("session store unavailable", "error", err)
			http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
			return
		}

		decision := h.guard.Evaluate(session, time.Now())
		if decision.SignedIn {
			response.SignedIn = true
			response.Claims = &decision.Claims

			tokens, err := h.store.GetTokenPresence(r.Context(), cookie.Value)
			if err != nil {
				h.logger.Error("session store unavailable", "error", err)
				http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
				return
			}
			response.Tokens = tokens

			csrfToken, err := h.csrf.GenerateCSRFToken(r.Context())
			if err != nil {
				h.logger.Error("failed to generate CSRF token", "error", err)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}
			response.CSRFToken = csrfToken
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	json.NewEncoder(w).Encode(response)
}
