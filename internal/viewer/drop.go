package viewer

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog/log"
)

// File is a dropped file that can be opened for reading.
type File interface {
	Name() string
	Open() (io.ReadCloser, error)
}

// Payload is what a drop delivers: files, or plain text when there are none.
type Payload struct {
	Text  string
	Files []File
}

type dropMessage struct {
	name string
	text string
	gen  uint64
}

// Drop handles a drop on either zone. The panel is hidden first.
//
// Files are read concurrently. Each successful read posts its content to a
// single consumer, which feeds it through Edit. Reads belonging to an older
// drop are discarded, so the last read of the newest drop wins. Failed reads
// are logged and leave the session untouched. Without files, a non-empty text
// payload is used directly.
//
// Drop returns when every read has finished or ctx is done.
func (s *Session) Drop(ctx context.Context, p Payload) State {
	s.mu.Lock()
	s.panel.Hide()
	s.dropGen++
	gen := s.dropGen
	s.mu.Unlock()

	if len(p.Files) == 0 {
		if p.Text == "" {
			return s.State()
		}
		return s.Edit(p.Text)
	}

	// Buffered so readers never block once the consumer has gone away.
	messages := make(chan dropMessage, len(p.Files))

	var wg sync.WaitGroup
	for _, f := range p.Files {
		wg.Add(1)
		go func(f File) {
			defer wg.Done()

			text, err := readFile(f, s.maxFileBytes)
			if err != nil {
				log.Error().Err(err).Str("file", f.Name()).Msg("Reading failed")
				return
			}
			messages <- dropMessage{name: f.Name(), text: text, gen: gen}
		}(f)
	}

	go func() {
		wg.Wait()
		close(messages)
	}()

	for {
		select {
		case <-ctx.Done():
			log.Warn().Err(ctx.Err()).Msg("Drop abandoned before all files were read")
			return s.State()
		case msg, ok := <-messages:
			if !ok {
				return s.State()
			}
			s.applyDrop(msg)
		}
	}
}

func (s *Session) applyDrop(msg dropMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.gen != s.dropGen {
		log.Debug().
			Str("file", msg.name).
			Uint64("gen", msg.gen).
			Uint64("current", s.dropGen).
			Msg("Stale drop discarded")
		return
	}

	if err := s.apply(msg.text); err != nil {
		log.Warn().Err(err).Str("file", msg.name).Msg("Dropped file is not usable GeoJSON")
	}
}

func readFile(f File, limit int64) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer func() { _ = rc.Close() }()

	var r io.Reader = rc
	if limit > 0 {
		r = io.LimitReader(rc, limit+1)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if limit > 0 && int64(len(data)) > limit {
		return "", fmt.Errorf("file exceeds %d bytes", limit)
	}

	return string(data), nil
}
