package handlers

import (
	"context"
	"net/http"

	"github.com/filmorate/backend/internal/logging"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler responds with service health information.
type HealthHandler struct {
	Storage Pinger
}

// Handle implements GET /healthz.
func (h HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.Storage != nil {
		if err := h.Storage.Ping(ctx); err != nil {
			logging.FromContext(ctx).Error("storage ping failed", "error", err)
			respondJSON(ctx, w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}
