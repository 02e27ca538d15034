package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lyj289/3d-geojson-viewer/internal/metrics"
	"github.com/lyj289/3d-geojson-viewer/internal/viewer"
)

// SessionCookie names the cookie carrying the session ID.
const SessionCookie = "geoviewer_session"

type sessionEntry struct {
	session  *viewer.Session
	lastSeen time.Time
}

// Sessions maps browser cookies to viewer sessions and expires idle ones.
type Sessions struct {
	entries      map[string]*sessionEntry
	now          func() time.Time
	example      string
	ttl          time.Duration
	maxFileBytes int64
	mu           sync.Mutex
}

// NewSessions creates a store. New sessions start with example loaded when it is set.
func NewSessions(ttl time.Duration, maxFileBytes int64, example string) *Sessions {
	return &Sessions{
		entries:      make(map[string]*sessionEntry),
		now:          time.Now,
		example:      example,
		ttl:          ttl,
		maxFileBytes: maxFileBytes,
	}
}

// Get returns the session of the request, creating one and setting the
// cookie when the request has none or its session expired.
func (s *Sessions) Get(w http.ResponseWriter, r *http.Request) *viewer.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, err := r.Cookie(SessionCookie); err == nil {
		if e, ok := s.entries[c.Value]; ok {
			e.lastSeen = s.now()
			return e.session
		}
	}

	id := uuid.New().String()
	sess := viewer.NewSession(s.maxFileBytes)
	if s.example != "" {
		sess.Edit(s.example)
	}
	s.entries[id] = &sessionEntry{session: sess, lastSeen: s.now()}
	metrics.SessionsActive.Set(float64(len(s.entries)))

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	log.Debug().Str("session", id).Msg("Session created")
	return sess
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep removes sessions idle for longer than the TTL and returns how many went.
func (s *Sessions) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for id, e := range s.entries {
		if e.lastSeen.Before(cutoff) {
			delete(s.entries, id)
			removed++
		}
	}
	metrics.SessionsActive.Set(float64(len(s.entries)))

	return removed
}

// Run sweeps expired sessions until ctx is done.
func (s *Sessions) Run(ctx context.Context) {
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				log.Debug().Int("removed", n).Msg("Expired sessions swept")
			}
		}
	}
}
