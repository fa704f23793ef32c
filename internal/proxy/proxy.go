package proxy

import (
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/ittullos/authgate/internal/config"
	"github.com/ittullos/authgate/internal/middleware"
)

// ReverseProxy forwards signed-in requests to the protected backend app,
// carrying the caller's identity as headers. It only runs behind RequireAuth.
type ReverseProxy struct {
	proxy  *httputil.ReverseProxy
	cfg    config.BackendConfig
	logger *slog.Logger
}

func NewReverseProxy(cfg config.BackendConfig, logger *slog.Logger) (*ReverseProxy, error) {
	backendURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, err
	}

	proxy := httputil.NewSingleHostReverseProxy(backendURL)

	originalDirector := proxy.Director
	proxy.Director = func(req *http.Request) {
		originalDirector(req)
		req.Host = backendURL.Host
		req.URL.Scheme = backendURL.Scheme
		req.URL.Host = backendURL.Host
	}

	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Error("proxy error",
			"error", err,
			"backend", backendURL.String(),
			"path", r.URL.Path,
		)
		http.Error(w, "Bad Gateway", http.StatusBadGateway)
	}

	return &ReverseProxy{
		proxy:  proxy,
		cfg:    cfg,
		logger: logger,
	}, nil
}

func (rp *ReverseProxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		rp.logger.Error("no claims in context")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	InjectHeaders(r, claims)

	if rp.cfg.PreserveHost {
		r.Host = r.Header.Get("X-Forwarded-Host")
		if r.Host == "" {
			r.Host = r.Header.Get("Host")
		}
	}

	rp.logger.Debug("proxying request",
		"path", r.URL.Path,
		"backend", rp.cfg.URL,
		"subject", claims.Subject,
	)

	rp.proxy.ServeHTTP(w, r)
}
