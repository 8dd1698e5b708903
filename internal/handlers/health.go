package handlers

import (
	"net/http"
	"time"
)

// HealthHandler reports process liveness for load balancers and probes.
type HealthHandler struct {
	startedAt time.Time
}

// NewHealthHandler records the process start time for uptime reporting.
func NewHealthHandler() HealthHandler {
	return HealthHandler{startedAt: time.Now()}
}

// Handle implements GET /healthz.
func (h HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	respondData(r.Context(), w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(h.startedAt).Truncate(time.Second).String(),
	}, "service healthy")
}
