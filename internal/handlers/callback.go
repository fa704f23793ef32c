package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/ittullos/authgate/internal/auth"
	"github.com/ittullos/authgate/internal/config"
	"github.com/ittullos/authgate/internal/store"
	"github.com/ittullos/authgate/pkg/security"
)

type CallbackHandler struct {
	cfg       config.Config
	store     store.Store
	exchanger auth.Exchanger
	logger    *slog.Logger
}

func NewCallbackHandler(cfg config.Config, st store.Store, exchanger auth.Exchanger, logger *slog.Logger) *CallbackHandler {
	return &CallbackHandler{
		cfg:       cfg,
		store:     st,
		exchanger: exchanger,
		logger:    logger,
	}
}

// ServeHTTP handles the provider callback: complete the exchange, normalize
// the assertion, materialize a session, persist it, then send the user where
// they were originally headed. Any assertion-level failure resolves to a
// redirect onto the public failure page, never a 5xx.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, err := h.exchanger.HandleCallback(r.Context(), r)
	if err != nil {
		h.logger.Warn("provider exchange failed", "error", err)
		h.redirectFailure(w, r)
		return
	}

	claims, err := auth.Normalize(raw)
	if err != nil {
		if errors.Is(err, auth.ErrMissingAssertion) {
			h.logger.Warn("callback reached without assertion")
		} else {
			h.logger.Error("failed to normalize assertion", "error", err)
		}
		h.redirectFailure(w, r)
		return
	}

	// The pending redirect was recorded under the pre-login correlation id;
	// pick it up before the id rotates.
	previousID := ""
	if cookie, err := security.GetSessionCookie(r, h.cfg.Server.CookieName); err == nil {
		previousID = cookie.Value
	}

	redirectPath := ""
	if previousID != "" {
		redirectPath, err = h.store.TakePendingRedirect(r.Context(), previousID)
		if err != nil {
			h.logger.Error("failed to read pending redirect", "error", err)
			http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	if redirectPath == "" {
		redirectPath = h.cfg.Session.LandingPath
	}

	correlationID := uuid.New().String()
	session, tokens := auth.Materialize(claims, raw.Credentials, correlationID, time.Now())

	if err := h.store.PutSession(r.Context(), correlationID, session, tokens); err != nil {
		h.logger.Error("failed to persist session", "error", err)
		http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
		return
	}

	// Rotating the correlation id orphans the old entries; drop them.
	if previousID != "" {
		if err := h.store.Clear(r.Context(), previousID); err != nil {
			h.logger.Warn("failed to clear previous session", "error", err)
		}
	}

	http.SetCookie(w, security.CreateSessionCookie(h.cfg.Server, correlationID, h.cfg.Session.MaxAge))

	h.logger.Info("user authenticated",
		"email", claims.Email,
		"provider", claims.Provider,
		"correlation_id", correlationID,
	)

	http.Redirect(w, r, redirectPath, http.StatusFound)
}

func (h *CallbackHandler) redirectFailure(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.cfg.Session.FailurePath+"?auth_error=1", http.StatusFound)
}
