package viewer

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memFile struct {
	name string
	body string
	err  error
	wait chan struct{}
}

func (f memFile) Name() string { return f.name }

func (f memFile) Open() (io.ReadCloser, error) {
	if f.wait != nil {
		<-f.wait
	}
	if f.err != nil {
		return nil, f.err
	}
	return io.NopCloser(strings.NewReader(f.body)), nil
}

func TestDropFileMatchesTyping(t *testing.T) {
	t.Parallel()

	typed := NewSession(0).Edit(trackDoc)

	s := NewSession(0)
	_, err := s.Drag(ZoneMap, DragOver)
	require.NoError(t, err)

	st := s.Drop(context.Background(), Payload{Files: []File{memFile{name: "track.geojson", body: trackDoc}}})
	assert.False(t, st.Panel)
	assert.True(t, st.Valid)
	assert.Equal(t, trackDoc, st.Text)
	assert.Empty(t, cmp.Diff(typed.Option.Series(), st.Option.Series()))
	assert.Equal(t, typed.Download, st.Download)
}

func TestDropText(t *testing.T) {
	t.Parallel()

	s := NewSession(0)
	st := s.Drop(context.Background(), Payload{Text: pointDoc})
	assert.True(t, st.Valid)
	assert.Equal(t, pointDoc, st.Text)
	assert.Len(t, st.Option.Series(), 1)

	// empty payload changes nothing
	st = s.Drop(context.Background(), Payload{})
	assert.Equal(t, pointDoc, st.Text)
}

func TestDropInvalidFileFlagsInvalid(t *testing.T) {
	t.Parallel()

	s := NewSession(0)
	s.Edit(pointDoc)
	st := s.Drop(context.Background(), Payload{Files: []File{memFile{name: "x.txt", body: "hello"}}})
	assert.False(t, st.Valid)
	assert.Equal(t, "hello", st.Text)
	assert.Len(t, st.Option.Series(), 1)
}

func TestDropReadFailureLeavesState(t *testing.T) {
	t.Parallel()

	s := NewSession(0)
	s.Edit(pointDoc)
	st := s.Drop(context.Background(), Payload{Files: []File{memFile{name: "gone", err: errors.New("permission denied")}}})
	assert.True(t, st.Valid)
	assert.Equal(t, pointDoc, st.Text)
}

func TestDropFileTooLarge(t *testing.T) {
	t.Parallel()

	s := NewSession(8)
	st := s.Drop(context.Background(), Payload{Files: []File{memFile{name: "big", body: trackDoc}}})
	assert.Empty(t, st.Text)
	assert.True(t, st.Valid)
}

func TestDropMultipleFilesLastReadWins(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	s := NewSession(0)
	st := make(chan State, 1)
	go func() {
		st <- s.Drop(context.Background(), Payload{Files: []File{
			memFile{name: "first", body: pointDoc},
			memFile{name: "second", body: trackDoc, wait: release},
		}})
	}()

	require.Eventually(t, func() bool { return s.State().Text == pointDoc }, timeout, tick)
	close(release)

	got := <-st
	assert.Equal(t, trackDoc, got.Text)
	assert.Len(t, got.Option.Series(), 2)
}

func TestDropNewerDropSupersedesPendingReads(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	s := NewSession(0)
	done := make(chan State, 1)
	go func() {
		done <- s.Drop(context.Background(), Payload{Files: []File{
			memFile{name: "slow", body: trackDoc, wait: release},
		}})
	}()

	// wait for the first drop to register before issuing the second
	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.dropGen == 1
	}, timeout, tick)

	st := s.Drop(context.Background(), Payload{Files: []File{memFile{name: "fast", body: pointDoc}}})
	assert.Equal(t, pointDoc, st.Text)

	close(release)
	<-done
	assert.Equal(t, pointDoc, s.State().Text)
}

func TestDropContextCancelled(t *testing.T) {
	t.Parallel()

	block := make(chan struct{})
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewSession(0)
	st := s.Drop(ctx, Payload{Files: []File{memFile{name: "never", body: trackDoc, wait: block}}})
	assert.Empty(t, st.Text)
}
