package handlers

import (
	"log/slog"
	"net/http"

	"github.com/ittullos/authgate/internal/config"
)

type FailureHandler struct {
	cfg    config.SessionConfig
	logger *slog.Logger
}

func NewFailureHandler(cfg config.SessionConfig, logger *slog.Logger) *FailureHandler {
	return &FailureHandler{
		cfg:    cfg,
		logger: logger,
	}
}

// ServeHTTP is where the provider sends the browser when it aborts the flow
// itself (user denied consent, tenant error). Same generic outcome as a
// missing assertion.
func (h *FailureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.logger.Warn("provider reported authentication failure",
		"message", r.URL.Query().Get("message"),
	)

	http.Redirect(w, r, h.cfg.FailurePath+"?auth_error=1", http.StatusFound)
}
