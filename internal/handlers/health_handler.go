package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler answers liveness probes
type HealthHandler struct {
	*BaseHandler
	DB Pinger
}

// NewHealthHandler creates a new health handler. db may be nil.
func NewHealthHandler(baseHandler *BaseHandler, db Pinger) *HealthHandler {
	return &HealthHandler{
		BaseHandler: baseHandler,
		DB:          db,
	}
}

// RegisterRoutes registers the health route
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.handleHealth)
}

func (h *HealthHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	logger := h.handlerLogger("handleHealth", r)
	if h.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.DB.Ping(ctx); err != nil {
			logger.Warn().Err(err).Msg("Database ping failed")
			h.WriteError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "")
			return
		}
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
