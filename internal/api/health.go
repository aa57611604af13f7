package api

import (
	"net/http"
	"time"

	"github.com/curiohq/curio/server/internal/api/respond"
	"github.com/curiohq/curio/server/internal/health"
)

type HealthHandler struct {
	checker *health.ServiceHealthChecker
}

func NewHealthHandler(checker *health.ServiceHealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// CheckHealth handles GET /api/health. It serves the cached service-level
// flag; probes run in the background so this never blocks on a dependency.
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	if h.checker.IsHealthy() {
		respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"status":    "UP",
			"message":   "Service is healthy",
			"timestamp": time.Now().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSON(w, http.StatusInternalServerError, map[string]interface{}{
		"status":    "DOWN",
		"message":   "One or more dependencies unavailable",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
