package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lyj289/3d-geojson-viewer/internal/metrics"
)

// RequestLogger is a middleware to log HTTP requests.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(ww, r)
		elapsed := time.Since(start)

		metrics.RequestsTotal.WithLabelValues(routeLabel(r.URL.Path), strconv.Itoa(ww.statusCode)).Inc()
		metrics.RequestDurationMs.Observe(float64(elapsed.Microseconds()) / 1000)

		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.statusCode).
			Str("ip", r.RemoteAddr).
			Dur("duration", elapsed).
			Msg("Request processed")
	})
}

var knownRoutes = map[string]bool{
	"/":                 true,
	"/metrics":          true,
	"/api/state":        true,
	"/api/edit":         true,
	"/api/drop":         true,
	"/api/drag":         true,
	"/api/view":         true,
	"/api/download":     true,
	"/api/preview.png":  true,
	"/api/preview.webp": true,
	"/api/report":       true,
	"/api/transform":    true,
}

// routeLabel keeps metric cardinality bounded.
func routeLabel(path string) string {
	if knownRoutes[path] {
		return path
	}
	return "other"
}

type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code before writing to the underlying response writer.
func (w *responseWriterWrapper) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}
