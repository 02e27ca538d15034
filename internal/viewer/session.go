// Package viewer holds the state behind one viewer page: the GeoJSON text,
// its validity, the current scene option, the drop panel and the download link.
package viewer

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/lyj289/3d-geojson-viewer/internal/metrics"
	"github.com/lyj289/3d-geojson-viewer/internal/scene"
)

// Class names the page puts on the text box.
const (
	ClassValid   = ""
	ClassInvalid = "invalid"
)

// State is a snapshot of a session, shaped for the page.
type State struct {
	Option   scene.Option `json:"option"`
	Text     string       `json:"text"`
	Download string       `json:"download"`
	Class    string       `json:"class"`
	View     scene.View   `json:"view"`
	Valid    bool         `json:"valid"`
	Panel    bool         `json:"panel"`
}

// Session is the state of one viewer page. It is safe for concurrent use.
type Session struct {
	option       scene.Option
	text         string
	panel        Panel
	maxFileBytes int64
	dropGen      uint64
	mu           sync.Mutex
	valid        bool
}

// NewSession returns an empty, valid session. Dropped files larger than
// maxFileBytes are rejected; zero means no limit.
func NewSession(maxFileBytes int64) *Session {
	return &Session{
		option:       scene.NewOption(nil, scene.ViewDefault),
		valid:        true,
		maxFileBytes: maxFileBytes,
	}
}

// State returns the current snapshot.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Option returns the current scene option.
func (s *Session) Option() scene.Option {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.option
}

// Edit replaces the text and re-renders it.
//
// A text that parses and transforms replaces the scene and is valid. A text
// that fails leaves the scene alone and is invalid, unless it is empty.
func (s *Session) Edit(text string) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	_ = s.apply(text)
	return s.snapshot()
}

// SetView switches the camera preset, keeping the current series.
func (s *Session) SetView(v scene.View) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.option = s.option.WithView(v)
	return s.snapshot()
}

// Drag feeds a drag event from one of the page zones into the drop panel.
func (s *Session) Drag(zone Zone, event DragEvent) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.panel.Handle(zone, event); err != nil {
		return State{}, err
	}
	return s.snapshot(), nil
}

// apply must be called with mu held.
func (s *Session) apply(text string) error {
	s.text = text

	series, err := scene.TransformBytes([]byte(text))
	metrics.ObserveTransform(err == nil)
	if err != nil {
		s.valid = text == ""
		log.Debug().Err(err).Int("bytes", len(text)).Msg("GeoJSON rejected")
		return err
	}

	s.option = scene.NewOption(series, s.option.View())
	s.valid = true

	log.Debug().
		Int("series", len(series)).
		Int("bytes", len(text)).
		Msg("Scene replaced")

	return nil
}

func (s *Session) snapshot() State {
	class := ClassValid
	if !s.valid {
		class = ClassInvalid
	}

	return State{
		Option:   s.option,
		Text:     s.text,
		Download: DownloadLink(s.text),
		Class:    class,
		View:     s.option.View(),
		Valid:    s.valid,
		Panel:    s.panel.Visible(),
	}
}
