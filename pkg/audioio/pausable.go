package audioio

import (
	"context"
	"sync/atomic"
)

// Pausable wraps a Source so capture can be muted without closing the
// device. While paused, Read returns silence of the same shape so the
// downstream stream keeps its cadence. Consumers must use Read; the
// embedded Stream channel is not muted.
type Pausable struct {
	Source
	paused atomic.Bool
}

// NewPausable wraps src. The wrapper starts unpaused.
func NewPausable(src Source) *Pausable {
	return &Pausable{Source: src}
}

// Pause mutes captured audio.
func (p *Pausable) Pause() { p.paused.Store(true) }

// Resume unmutes captured audio.
func (p *Pausable) Resume() { p.paused.Store(false) }

// Paused reports whether audio is muted.
func (p *Pausable) Paused() bool { return p.paused.Load() }

// Read returns the next chunk, zeroed while paused.
func (p *Pausable) Read(ctx context.Context) (AudioChunk, error) {
	chunk, err := p.Source.Read(ctx)
	if err != nil {
		return chunk, err
	}
	if p.paused.Load() {
		return chunk.Silence(), nil
	}
	return chunk, nil
}
