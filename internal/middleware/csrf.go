package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ittullos/authgate/internal/store"
	"github.com/ittullos/authgate/pkg/security"
)

type CSRFMiddleware struct {
	store  store.Store
	logger *slog.Logger
}

func NewCSRFMiddleware(st store.Store, logger *slog.Logger) *CSRFMiddleware {
	return &CSRFMiddleware{
		store:  st,
		logger: logger,
	}
}

func (cm *CSRFMiddleware) ValidateCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == "POST" || r.Method == "PUT" || r.Method == "DELETE" {
			token := r.FormValue("csrf_token")
			if token == "" {
				token = r.Header.Get("X-CSRF-Token")
			}

			if token == "" {
				cm.logger.Warn("missing CSRF token", "path", r.URL.Path)
				http.Error(w, "Missing CSRF token", http.StatusForbidden)
				return
			}

			ok, err := cm.store.TakeCSRFToken(r.Context(), token)
			if err != nil {
				cm.logger.Error("failed to check CSRF token", "error", err)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			if !ok {
				cm.logger.Warn("invalid CSRF token", "path", r.URL.Path)
				http.Error(w, "Invalid or expired CSRF token", http.StatusForbidden)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func (cm *CSRFMiddleware) GenerateCSRFToken(ctx context.Context) (string, error) {
	token, err := security.GenerateCSRFToken()
	if err != nil {
		return "", err
	}

	if err := cm.store.SetCSRFToken(ctx, token, 10*time.Minute); err != nil {
		return "", err
	}

	return token, nil
}
