package handlers

import (
	"net/http"
	"time"

	"github.com/arthamatics/arthamatics-be/internal/http/respond"
)

const serviceName = "arthamatics-be"

// HealthHandler answers liveness probes with the service name and uptime.
type HealthHandler struct {
	startedAt time.Time
}

// NewHealthHandler constructs the handler; startedAt anchors the uptime.
func NewHealthHandler(startedAt time.Time) *HealthHandler {
	return &HealthHandler{startedAt: startedAt}
}

// Register attaches the probe route to the mux.
func (h *HealthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.handle)
}

func (h *HealthHandler) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": serviceName,
		"uptime":  time.Since(h.startedAt).Round(time.Second).String(),
	})
}
