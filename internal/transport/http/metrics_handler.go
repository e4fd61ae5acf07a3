package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MetricsHandler exposes the Prometheus scrape endpoint
type MetricsHandler struct {
	prometheus http.Handler
}

// NewMetricsHandler creates a metrics handler around the Prometheus
// exporter. A nil handler means metrics are disabled.
func NewMetricsHandler(prometheus http.Handler) *MetricsHandler {
	return &MetricsHandler{prometheus: prometheus}
}

// Routes sets up the metrics routes
func (h *MetricsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetMetrics)
	return r
}

// GetMetrics serves the Prometheus metrics exposition
func (h *MetricsHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	if h.prometheus == nil {
		http.Error(w, "metrics disabled", http.StatusNotFound)
		return
	}
	h.prometheus.ServeHTTP(w, r)
}
