package audio

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/teslashibe/go-kiosk/pkg/audioio"
)

// Player plays one clip to completion.
type Player interface {
	Play(ctx context.Context, clip Clip) error
}

// PlayerFunc adapts a function to Player.
type PlayerFunc func(ctx context.Context, clip Clip) error

// Play calls f.
func (f PlayerFunc) Play(ctx context.Context, clip Clip) error { return f(ctx, clip) }

// Speaker plays clips through an audioio.Sink and blocks until the sink drains.
type Speaker struct {
	sink     audioio.Sink
	speaking atomic.Bool

	// Callbacks
	OnPlaybackStart func(Clip)
	OnPlaybackEnd   func(Clip)
}

// NewSpeaker wraps a started sink.
func NewSpeaker(sink audioio.Sink) *Speaker {
	return &Speaker{sink: sink}
}

// Play writes clip to the sink and waits for it to finish.
func (s *Speaker) Play(ctx context.Context, clip Clip) error {
	if clip.Empty() {
		return ErrEmptyClip
	}

	s.speaking.Store(true)
	defer s.speaking.Store(false)
	if s.OnPlaybackStart != nil {
		s.OnPlaybackStart(clip)
	}
	defer func() {
		if s.OnPlaybackEnd != nil {
			s.OnPlaybackEnd(clip)
		}
	}()

	chunk := audioio.NewChunk(clip.PCM, clip.SampleRate, 1)
	if err := s.sink.Write(ctx, chunk); err != nil {
		return err
	}
	return s.sink.Flush(ctx)
}

// IsSpeaking reports whether a clip is playing.
func (s *Speaker) IsSpeaking() bool {
	return s.speaking.Load()
}

// Stop discards any audio still buffered in the sink.
func (s *Speaker) Stop() error {
	return s.sink.Clear()
}

var _ Player = (*Speaker)(nil)

// MockPlayer records plays. PlayFunc, when set, replaces the default
// behaviour of sleeping for Delay.
type MockPlayer struct {
	PlayFunc func(ctx context.Context, clip Clip) error
	Delay    time.Duration

	mu    sync.Mutex
	clips []Clip
}

// NewMockPlayer returns a player that records clips and returns immediately.
func NewMockPlayer() *MockPlayer {
	return &MockPlayer{}
}

// Play records clip.
func (m *MockPlayer) Play(ctx context.Context, clip Clip) error {
	m.mu.Lock()
	m.clips = append(m.clips, clip)
	m.mu.Unlock()

	if m.PlayFunc != nil {
		return m.PlayFunc(ctx, clip)
	}
	if m.Delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.Delay):
		}
	}
	return nil
}

// Clips returns the clips played so far, in order.
func (m *MockPlayer) Clips() []Clip {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Clip, len(m.clips))
	copy(out, m.clips)
	return out
}

// Names returns the names of the clips played so far.
func (m *MockPlayer) Names() []string {
	clips := m.Clips()
	names := make([]string, len(clips))
	for i, c := range clips {
		names[i] = c.Name
	}
	return names
}

// Reset clears recorded clips.
func (m *MockPlayer) Reset() {
	m.mu.Lock()
	m.clips = nil
	m.mu.Unlock()
}

var _ Player = (*MockPlayer)(nil)
