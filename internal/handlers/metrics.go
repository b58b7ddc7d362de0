package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Subcero232117/voice/internal/services"
)

// MetricsHandler serves a JSON snapshot of relay metrics.
type MetricsHandler struct {
	metrics *services.Metrics
}

// NewMetricsHandler creates the metrics endpoint handler.
func NewMetricsHandler(metrics *services.Metrics) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	snapshot := h.metrics.Snapshot()

	w.Header().Set("Content-Type", "application/json")
	if snapshot.HealthStatus == "critical" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(snapshot)
}

// HealthHandler reports liveness.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
