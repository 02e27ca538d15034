// Package server handles HTTP requests and middleware.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/lyj289/3d-geojson-viewer/internal/config"
	"github.com/lyj289/3d-geojson-viewer/internal/metrics"
	"github.com/lyj289/3d-geojson-viewer/internal/preview"
	"github.com/lyj289/3d-geojson-viewer/internal/report"
	"github.com/lyj289/3d-geojson-viewer/internal/scene"
	"github.com/lyj289/3d-geojson-viewer/internal/viewer"
)

// multipart parts above this size spill to temporary files
const multipartMemory = 8 << 20

// HandleFavicon answers favicon requests without content.
func (s *ServerContext) HandleFavicon(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusNoContent)
}

// HandleIndex serves the main HTML application.
func (s *ServerContext) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	etag := fmt.Sprintf(`"%x"`, len(s.IndexHTML))

	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")
	_, _ = w.Write(s.IndexHTML)
}

// HandleState returns the current session state.
func (s *ServerContext) HandleState(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, s.Sessions.Get(w, r).State())
}

// HandleEdit replaces the session text with the request body.
func (s *ServerContext) HandleEdit(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	body, err := s.readBody(w, r)
	if err != nil {
		writeJSONError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}

	st := s.Sessions.Get(w, r).Edit(string(body))
	writeJSON(w, http.StatusOK, st)
}

// HandleDrop accepts dropped files as multipart "file" parts, or plain text
// as the raw body.
func (s *ServerContext) HandleDrop(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var payload viewer.Payload

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		r.Body = http.MaxBytesReader(w, r.Body, s.Config.MaxUploadBytes)
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("invalid multipart body: %v", err))
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		for _, fh := range r.MultipartForm.File["file"] {
			payload.Files = append(payload.Files, uploadedFile{fh})
		}
		payload.Text = r.FormValue("text")
		metrics.DroppedFilesTotal.Add(float64(len(payload.Files)))
	} else {
		body, err := s.readBody(w, r)
		if err != nil {
			writeJSONError(w, http.StatusRequestEntityTooLarge, err.Error())
			return
		}
		payload.Text = string(body)
	}

	sess := s.Sessions.Get(w, r)
	st := sess.Drop(r.Context(), payload)

	log.Debug().
		Int("files", len(payload.Files)).
		Bool("valid", st.Valid).
		Msg("Drop handled")

	writeJSON(w, http.StatusOK, st)
}

type dragRequest struct {
	Zone  viewer.Zone      `json:"zone"`
	Event viewer.DragEvent `json:"event"`
}

// HandleDrag forwards a drag event to the session's drop panel.
func (s *ServerContext) HandleDrag(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dragRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<10)).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid drag event")
		return
	}

	st, err := s.Sessions.Get(w, r).Drag(req.Zone, req.Event)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, st)
}

type viewRequest struct {
	View string `json:"view"`
}

// HandleView switches the camera preset.
func (s *ServerContext) HandleView(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req viewRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<10)).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid view request")
		return
	}

	v, err := scene.ParseView(req.View)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, s.Sessions.Get(w, r).SetView(v))
}

// HandleDownload serves the raw text of the session as a file.
func (s *ServerContext) HandleDownload(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	st := s.Sessions.Get(w, r).State()
	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("Content-Disposition", `attachment; filename="geojson.json"`)
	_, _ = io.WriteString(w, st.Text)
}

// HandlePreview renders the session scene as /api/preview.png or /api/preview.webp.
// Query params:
//   - view (optional; defaults to the session's camera preset)
//   - width, height (optional; default from config, capped at config.MaxPreviewSide)
func (s *ServerContext) HandlePreview(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	format, err := preview.ParseFormat(strings.TrimPrefix(path.Ext(r.URL.Path), "."))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	opt := s.Sessions.Get(w, r).Option()
	view := opt.View()
	if q := r.URL.Query().Get("view"); q != "" {
		if view, err = scene.ParseView(q); err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	o := preview.Options{
		Title:  s.Config.Title,
		View:   view,
		Format: format,
		Width:  querySize(r, "width", s.Config.Preview.Width),
		Height: querySize(r, "height", s.Config.Preview.Height),
	}

	var buf bytes.Buffer
	if err := preview.Render(&buf, opt.Series(), o); err != nil {
		log.Error().Err(err).Msg("Failed to render preview")
		writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render preview: %v", err))
		return
	}
	metrics.PreviewsTotal.WithLabelValues(string(format)).Inc()

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

// HandleReport renders the session scene as a standalone go-echarts page.
func (s *ServerContext) HandleReport(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	series := s.Sessions.Get(w, r).Option().Series()

	var buf bytes.Buffer
	if err := report.Write(&buf, series, report.Options{Title: s.Config.Title}); err != nil {
		writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("render error: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// HandleTransform is the stateless adapter: GeoJSON body in, scene option out.
// Query params:
//   - view (optional camera preset)
func (s *ServerContext) HandleTransform(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	view, err := scene.ParseView(r.URL.Query().Get("view"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	body, err := s.readBody(w, r)
	if err != nil {
		writeJSONError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}

	series, err := scene.TransformBytes(body)
	metrics.ObserveTransform(err == nil)
	if err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, scene.NewOption(series, view))
}

func (s *ServerContext) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.Config.MaxUploadBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("body exceeds %d bytes", maxErr.Limit)
		}
		return nil, err
	}
	return body, nil
}

type uploadedFile struct {
	header *multipart.FileHeader
}

func (f uploadedFile) Name() string { return f.header.Filename }

func (f uploadedFile) Open() (io.ReadCloser, error) { return f.header.Open() }

func querySize(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v <= 0 || v > config.MaxPreviewSide {
		return def
	}
	return v
}

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"failed to encode response"}` + "\n"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Ignoring error as we cannot handle client disconnects
	_, _ = w.Write(buf.Bytes())
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
