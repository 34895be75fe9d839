package handlers

import (
	"net/http"

	"github.com/blendaura/api/internal/services"
)

// HealthHandlers answers liveness and readiness probes.
type HealthHandlers struct {
	system services.SystemService
}

// NewHealthHandlers constructs a HealthHandlers instance. A nil system service
// makes readiness always succeed.
func NewHealthHandlers(system services.SystemService) *HealthHandlers {
	return &HealthHandlers{system: system}
}

// Healthz reports process liveness.
func (h *HealthHandlers) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz reports dependency readiness.
func (h *HealthHandlers) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.system != nil {
		if err := h.system.Health(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
