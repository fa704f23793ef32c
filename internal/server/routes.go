package server

import (
	"net/http"

	"github.com/ittullos/authgate/internal/handlers"
	"github.com/ittullos/authgate/internal/middleware"
	"github.com/ittullos/authgate/internal/proxy"
)

func (s *Server) setupRoutes() (http.Handler, error) {
	mux := http.NewServeMux()

	csrfMiddleware := middleware.NewCSRFMiddleware(s.store, s.logger)
	authMiddleware := middleware.NewAuthMiddleware(s.cfg.Server, s.cfg.Session, s.store, s.logger)

	loginHandler := handlers.NewLoginHandler(s.exchanger, s.logger)
	callbackHandler := handlers.NewCallbackHandler(s.cfg, s.store, s.exchanger, s.logger)
	logoutHandler := handlers.NewLogoutHandler(s.cfg, s.store, s.exchanger, s.logger)
	failureHandler := handlers.NewFailureHandler(s.cfg.Session, s.logger)
	sessionHandler := handlers.NewSessionHandler(s.cfg, s.store, csrfMiddleware, s.logger)
	healthHandler := handlers.NewHealthHandler(s.cfg, s.store, s.logger)

	reverseProxy, err := proxy.NewReverseProxy(s.cfg.Backend, s.logger)
	if err != nil {
		return nil, err
	}

	mux.Handle("/auth/login", loginHandler)
	mux.Handle("/auth/callback", callbackHandler)
	mux.Handle("/auth/logout", csrfMiddleware.ValidateCSRF(logoutHandler))
	mux.Handle("/auth/failure", failureHandler)
	mux.Handle("/auth/session", sessionHandler)

	mux.Handle("/health", healthHandler)

	mux.Handle("/", authMiddleware.RequireAuth(reverseProxy))

	handler := middleware.Recovery(s.logger)(
		middleware.Logging(s.logger)(
			addSecurityHeaders(mux),
		),
	)

	return handler, nil
}

func addSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}
