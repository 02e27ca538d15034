package server

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/lyj289/3d-geojson-viewer/internal/config"
	"github.com/lyj289/3d-geojson-viewer/internal/metrics"
)

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	Config    *config.Config
	Sessions  *Sessions
	IndexHTML []byte
}

// NewServerContext initializes the context. example is the GeoJSON every new
// session starts with; it may be empty.
func NewServerContext(cfg *config.Config, indexHTML []byte, example string) *ServerContext {
	log.Info().
		Str("title", cfg.Title).
		Bool("example", example != "").
		Dur("session_ttl", cfg.SessionTTL).
		Int64("max_upload_bytes", cfg.MaxUploadBytes).
		Msg("Server context initialized")

	return &ServerContext{
		Config:    cfg,
		Sessions:  NewSessions(cfg.SessionTTL, cfg.MaxUploadBytes, example),
		IndexHTML: indexHTML,
	}
}

// Routes registers every handler on a new mux and wraps it in the request logger.
func (s *ServerContext) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/state", s.HandleState)
	mux.HandleFunc("/api/edit", s.HandleEdit)
	mux.HandleFunc("/api/drop", s.HandleDrop)
	mux.HandleFunc("/api/drag", s.HandleDrag)
	mux.HandleFunc("/api/view", s.HandleView)
	mux.HandleFunc("/api/download", s.HandleDownload)
	mux.HandleFunc("/api/preview.png", s.HandlePreview)
	mux.HandleFunc("/api/preview.webp", s.HandlePreview)
	mux.HandleFunc("/api/report", s.HandleReport)
	mux.HandleFunc("/api/transform", s.HandleTransform)
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/favicon.ico", s.HandleFavicon)
	mux.HandleFunc("/", s.HandleIndex)

	return RequestLogger(mux)
}
