package audioio

import (
	"context"
	"io"
	"log/slog"
	"math"
	"sync"
	"time"
)

// MockSource emits one chunk per buffer duration: scripted chunks first,
// then a tone if configured, otherwise silence.
type MockSource struct {
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	running bool
	closed  bool
	out     chan AudioChunk
	stop    chan struct{}
	script  []AudioChunk
	stats   Stats

	toneHz    float64
	toneLevel float64
	phase     int
}

// MockSourceOption configures a MockSource.
type MockSourceOption func(*MockSource)

// WithTone makes the source emit a sine at hz with peak level 0..1 once
// the script is exhausted.
func WithTone(hz, level float64) MockSourceOption {
	return func(m *MockSource) {
		m.toneHz = hz
		m.toneLevel = level
	}
}

// WithScript queues chunks to emit before any generated audio.
func WithScript(chunks ...AudioChunk) MockSourceOption {
	return func(m *MockSource) {
		m.script = append(m.script, chunks...)
	}
}

// NewMockSource creates a stopped mock source.
func NewMockSource(cfg Config, logger *slog.Logger, opts ...MockSourceOption) *MockSource {
	if logger == nil {
		logger = slog.Default()
	}
	m := &MockSource{
		cfg:    cfg,
		logger: logger.With("component", "audioio.mock"),
		stats:  Stats{Backend: "mock"},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start begins emitting chunks until Stop or ctx ends.
func (m *MockSource) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case m.closed:
		return io.ErrClosedPipe
	case m.running:
		return nil
	}

	m.running = true
	m.out = make(chan AudioChunk, 16)
	m.stop = make(chan struct{})
	go m.emit(ctx, m.out, m.stop)
	return nil
}

func (m *MockSource) emit(ctx context.Context, out chan AudioChunk, stop chan struct{}) {
	every := m.cfg.BufferDuration
	if every <= 0 {
		every = DefaultConfig().BufferDuration
	}
	tick := time.NewTicker(every)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			m.Stop()
			return
		case <-stop:
			return
		case <-tick.C:
		}

		m.mu.Lock()
		if !m.running || m.out != out {
			m.mu.Unlock()
			return
		}
		chunk := m.nextLocked()
		select {
		case out <- chunk:
			m.stats.Chunks++
			m.stats.Samples += int64(len(chunk.Samples))
		default:
			m.stats.Dropped++
		}
		m.mu.Unlock()
	}
}

func (m *MockSource) nextLocked() AudioChunk {
	if len(m.script) > 0 {
		chunk := m.script[0]
		m.script = m.script[1:]
		return chunk
	}

	frames := m.cfg.BufferSize()
	ch := m.cfg.Channels
	if ch <= 0 {
		ch = 1
	}
	chunk := AudioChunk{
		Samples:    make([]int16, frames*ch),
		SampleRate: m.cfg.SampleRate,
		Channels:   ch,
	}
	if m.toneHz <= 0 {
		return chunk
	}

	w := 2 * math.Pi * m.toneHz / float64(m.cfg.SampleRate)
	for f := 0; f < frames; f++ {
		v := int16(m.toneLevel * 32767 * math.Sin(w*float64(m.phase)))
		for c := 0; c < ch; c++ {
			chunk.Samples[f*ch+c] = v
		}
		m.phase = (m.phase + 1) % m.cfg.SampleRate
	}
	return chunk
}

// Stop halts emission. Pending chunks can still be read.
func (m *MockSource) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return nil
	}
	m.running = false
	close(m.stop)
	close(m.out)
	return nil
}

// Read returns the next chunk, or io.EOF once stopped and drained.
func (m *MockSource) Read(ctx context.Context) (AudioChunk, error) {
	m.mu.Lock()
	out := m.out
	m.mu.Unlock()
	if out == nil {
		return AudioChunk{}, io.EOF
	}

	select {
	case <-ctx.Done():
		return AudioChunk{}, ctx.Err()
	case chunk, ok := <-out:
		if !ok {
			return AudioChunk{}, io.EOF
		}
		return chunk, nil
	}
}

// Config returns the source configuration.
func (m *MockSource) Config() Config { return m.cfg }

// Name returns "mock".
func (m *MockSource) Name() string { return "mock" }

// Close stops the source permanently.
func (m *MockSource) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return m.Stop()
}

// Stats returns emission counters.
func (m *MockSource) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.stats
	st.Running = m.running
	return st
}

// MockSink records every chunk written to it. Flush returns at once.
type MockSink struct {
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	running bool
	closed  bool
	written []AudioChunk
	stats   Stats
}

// NewMockSink creates a stopped mock sink.
func NewMockSink(cfg Config, logger *slog.Logger) *MockSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &MockSink{
		cfg:    cfg,
		logger: logger.With("component", "audioio.mock"),
		stats:  Stats{Backend: "mock"},
	}
}

// Start accepts writes.
func (m *MockSink) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return io.ErrClosedPipe
	}
	m.running = true
	return nil
}

// Stop rejects further writes until the next Start.
func (m *MockSink) Stop() error {
	m.mu.Lock()
	m.running = false
	m.mu.Unlock()
	return nil
}

// Write records chunk. It fails unless the sink is started.
func (m *MockSink) Write(ctx context.Context, chunk AudioChunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || !m.running {
		return io.ErrClosedPipe
	}
	m.written = append(m.written, chunk)
	m.stats.Chunks++
	m.stats.Samples += int64(len(chunk.Samples))
	return nil
}

// Flush honours ctx and otherwise returns immediately.
func (m *MockSink) Flush(ctx context.Context) error {
	return ctx.Err()
}

// Clear is a no-op; recorded chunks are kept.
func (m *MockSink) Clear() error { return nil }

// Written returns a copy of every chunk accepted so far.
func (m *MockSink) Written() []AudioChunk {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]AudioChunk(nil), m.written...)
}

// Config returns the sink configuration.
func (m *MockSink) Config() Config { return m.cfg }

// Name returns "mock".
func (m *MockSink) Name() string { return "mock" }

// Close stops the sink permanently.
func (m *MockSink) Close() error {
	m.mu.Lock()
	m.closed = true
	m.running = false
	m.mu.Unlock()
	return nil
}

// Stats returns write counters.
func (m *MockSink) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.stats
	st.Running = m.running
	return st
}

var (
	_ Source        = (*MockSource)(nil)
	_ Sink          = (*MockSink)(nil)
	_ StatsReporter = (*MockSource)(nil)
	_ StatsReporter = (*MockSink)(nil)
)
