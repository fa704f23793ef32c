package handlers

import (
	"log/slog"
	"net/http"

	"github.com/ittullos/authgate/internal/auth"
)

type LoginHandler struct {
	exchanger auth.Exchanger
	logger    *slog.Logger
}

func NewLoginHandler(exchanger auth.Exchanger, logger *slog.Logger) *LoginHandler {
	return &LoginHandler{
		exchanger: exchanger,
		logger:    logger,
	}
}

// ServeHTTP starts the Authorization Code Flow with PKCE. The exchanger owns
// the verifier/challenge handshake; this handler only sends the browser on
// its way.
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	redirect, err := h.exchanger.InitiateAuth(r.Context())
	if err != nil {
		h.logger.Error("failed to initiate auth", "error", err)
		http.Error(w, "Failed to initiate authentication", http.StatusInternalServerError)
		return
	}

	h.logger.Debug("login initiated", "state", redirect.State)

	http.Redirect(w, r, redirect.URL, http.StatusFound)
}
