package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/ittullos/authgate/internal/config"
	"github.com/ittullos/authgate/internal/store"
)

type HealthHandler struct {
	cfg       config.Config
	store     store.Store
	logger    *slog.Logger
	startTime time.Time
}

func NewHealthHandler(cfg config.Config, st store.Store, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		cfg:       cfg,
		store:     st,
		logger:    logger,
		startTime: time.Now(),
	}
}

type HealthResponse struct {
	Status   string      `json:"status"`
	Uptime   string      `json:"uptime"`
	Store    StoreHealth `json:"store"`
	Provider string      `json:"provider"`
}

type StoreHealth struct {
	Type   string `json:"type"`
	Status string `json:"status"`
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	response := HealthResponse{
		Status:   "healthy",
		Uptime:   time.Since(h.startTime).String(),
		Provider: h.cfg.Provider.Domain,
	}

	response.Store.Type = h.cfg.Store.Type
	if err := h.store.Ping(ctx); err != nil {
		response.Store.Status = "error: " + err.Error()
		response.Status = "degraded"
	} else {
		response.Store.Status = "connected"
	}

	w.Header().Set("Content-Type", "application/json")
	if response.Status != "healthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	json.NewEncoder(w).Encode(response)
}
