package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/spboyer/social-media-post-ge/internal/config"
	"github.com/spboyer/social-media-post-ge/internal/store"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	store store.Store
	cfg   *config.Config
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(st store.Store, cfg *config.Config) *HealthHandler {
	return &HealthHandler{store: st, cfg: cfg}
}

// RegisterHealth registers the health check route.
func (h *HealthHandler) RegisterHealth(r chi.Router) {
	r.Get("/api/health", h.Health)
}

// Health reports whether the required configuration is present and the store
// is reachable. Presence checks only; no upstream credentials are exercised.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	services := map[string]string{}
	healthy := true

	switch h.cfg.Generator.Mode {
	case config.GeneratorMock:
		services["generator"] = "mock"
	case config.GeneratorOpenAI:
		oa := h.cfg.Generator.OpenAI
		if oa.Endpoint != "" && oa.Deployment != "" && (oa.APIKey != "" || oa.TokenURL != "") {
			services["generator"] = "configured"
		} else {
			services["generator"] = "unconfigured"
			healthy = false
		}
	default:
		services["generator"] = "unconfigured"
		healthy = false
	}

	if err := h.store.Ping(ctx); err != nil {
		slog.Error("health check failed", "error", err)
		services["store"] = "unreachable"
		healthy = false
	} else {
		services["store"] = "ok"
	}

	status := "healthy"
	statusCode := http.StatusOK
	if !healthy {
		status = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	JSON(w, statusCode, map[string]interface{}{
		"status":   status,
		"services": services,
	})
}
