package handlers

import (
	"log/slog"
	"net/http"

	"github.com/ittullos/authgate/internal/auth"
	"github.com/ittullos/authgate/internal/config"
	"github.com/ittullos/authgate/internal/store"
	"github.com/ittullos/authgate/pkg/security"
)

type LogoutHandler struct {
	cfg       config.Config
	store     store.Store
	exchanger auth.Exchanger
	logger    *slog.Logger
}

func NewLogoutHandler(cfg config.Config, st store.Store, exchanger auth.Exchanger, logger *slog.Logger) *LogoutHandler {
	return &LogoutHandler{
		cfg:       cfg,
		store:     st,
		exchanger: exchanger,
		logger:    logger,
	}
}

// ServeHTTP wipes all session-scoped state and forwards the browser to the
// provider's own logout endpoint. Logging out without a session is a no-op,
// not an error.
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if cookie, err := security.GetSessionCookie(r, h.cfg.Server.CookieName); err == nil && cookie.Value != "" {
		if err := h.store.Clear(r.Context(), cookie.Value); err != nil {
			h.logger.Warn("failed to clear session from store", "error", err)
		}
	}

	http.SetCookie(w, security.ClearSessionCookie(h.cfg.Server))

	h.logger.Info("user logged out")

	http.Redirect(w, r, h.exchanger.LogoutURL(h.cfg.Server.BaseURL), http.StatusFound)
}
