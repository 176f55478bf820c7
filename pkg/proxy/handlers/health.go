package handlers

import (
	"net/http"

	"hypedigitaly/claude-relay/pkg/proxy"
)

// HealthHandler handles liveness checks. It never contacts upstream.
type HealthHandler struct{}

// NewHealthHandler creates a new health check handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// ServeHTTP implements http.Handler.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_ = proxy.WriteJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
