// Package metrics exposes Prometheus counters for the viewer server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geoviewer_requests_total",
		Help: "HTTP requests by route and status code",
	}, []string{"route", "status"})
	RequestDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "geoviewer_request_duration_ms",
		Help:    "Request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	})
	TransformsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geoviewer_transforms_total",
		Help: "GeoJSON transforms by outcome (valid, invalid)",
	}, []string{"outcome"})
	DroppedFilesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geoviewer_dropped_files_total",
		Help: "Files received through drops",
	})
	PreviewsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geoviewer_previews_total",
		Help: "Rendered previews by format",
	}, []string{"format"})
	SessionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "geoviewer_sessions_active",
		Help: "Live viewer sessions",
	})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(TransformsTotal)
	prometheus.MustRegister(DroppedFilesTotal)
	prometheus.MustRegister(PreviewsTotal)
	prometheus.MustRegister(SessionsActive)
}

// ObserveTransform counts one transform attempt by whether it produced a scene.
func ObserveTransform(ok bool) {
	outcome := "valid"
	if !ok {
		outcome = "invalid"
	}
	TransformsTotal.WithLabelValues(outcome).Inc()
}

// Handler serves the registered metrics.
func Handler() http.Handler { return promhttp.Handler() }
