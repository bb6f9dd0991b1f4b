package http

import (
	"net/http"

	apierrors "solarcli/internal/errors"
)

// MetricsHandler serves the Prometheus exposition of the pipeline and HTTP metrics.
type MetricsHandler struct {
	exporter     http.Handler
	errorHandler *apierrors.ErrorHandler
}

// NewMetricsHandler wraps the registry handler; exporter is nil when metrics are disabled.
func NewMetricsHandler(exporter http.Handler, errorHandler *apierrors.ErrorHandler) *MetricsHandler {
	return &MetricsHandler{exporter: exporter, errorHandler: errorHandler}
}

// ServeHTTP handles GET /metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		h.errorHandler.HandleError(w, r, apierrors.NewNotFoundError("metrics exporter"))
		return
	}
	h.exporter.ServeHTTP(w, r)
}
