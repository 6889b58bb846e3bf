package audioio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"
)

// oto allows a single context per process.
var (
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoErr  error
)

func sharedOtoContext(cfg Config) (*oto.Context, error) {
	otoOnce.Do(func() {
		var ready chan struct{}
		otoCtx, ready, otoErr = oto.NewContext(&oto.NewContextOptions{
			SampleRate:   cfg.SampleRate,
			ChannelCount: cfg.Channels,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   100 * time.Millisecond,
		})
		if otoErr == nil {
			<-ready
		}
	})
	return otoCtx, otoErr
}

// OtoSink plays chunks on the default output device. Each Write becomes
// one oto player and writes are played back to back.
type OtoSink struct {
	cfg    Config
	logger *slog.Logger
	ctx    *oto.Context

	mu      sync.Mutex
	running bool
	closed  bool
	queue   []*oto.Player
	current *oto.Player

	chunksWritten  atomic.Int64
	samplesWritten atomic.Int64
}

// NewOtoSink opens the output device at cfg's sample rate.
func NewOtoSink(cfg Config, logger *slog.Logger) (*OtoSink, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, err := sharedOtoContext(cfg)
	if err != nil {
		return nil, fmt.Errorf("audioio: init playback context: %w", err)
	}
	return &OtoSink{
		cfg:    cfg,
		logger: logger.With("component", "audioio.oto"),
		ctx:    ctx,
	}, nil
}

// Start enables playback.
func (s *OtoSink) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return io.ErrClosedPipe
	}
	s.running = true
	return nil
}

// Stop disables playback and drops queued audio.
func (s *OtoSink) Stop() error {
	s.Clear()
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
	return nil
}

// Write queues chunk for playback, resampling to the sink rate if needed.
func (s *OtoSink) Write(ctx context.Context, chunk AudioChunk) error {
	if chunk.SampleRate != 0 && chunk.SampleRate != s.cfg.SampleRate {
		chunk = AudioChunk{
			Samples:    Resample(chunk.Samples, chunk.SampleRate, s.cfg.SampleRate),
			SampleRate: s.cfg.SampleRate,
			Channels:   chunk.Channels,
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.running {
		return io.ErrClosedPipe
	}

	p := s.ctx.NewPlayer(bytes.NewReader(chunk.Bytes()))
	s.queue = append(s.queue, p)
	s.chunksWritten.Add(1)
	s.samplesWritten.Add(int64(len(chunk.Samples)))
	s.advanceLocked()
	return nil
}

// advanceLocked starts the next queued player once the current one is done.
func (s *OtoSink) advanceLocked() {
	if s.current != nil {
		if s.current.IsPlaying() {
			return
		}
		s.current.Close()
		s.current = nil
	}
	if len(s.queue) == 0 {
		return
	}
	s.current = s.queue[0]
	s.queue = s.queue[1:]
	s.current.Play()
}

// Flush blocks until every queued chunk has played.
func (s *OtoSink) Flush(ctx context.Context) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		s.mu.Lock()
		s.advanceLocked()
		done := s.current == nil && len(s.queue) == 0
		s.mu.Unlock()
		if done {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Clear stops the current player and drops the queue.
func (s *OtoSink) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		s.current.Pause()
		s.current.Close()
		s.current = nil
	}
	for _, p := range s.queue {
		p.Close()
	}
	s.queue = nil
	return nil
}

// Config returns the playback configuration.
func (s *OtoSink) Config() Config { return s.cfg }

// Name returns "oto".
func (s *OtoSink) Name() string { return "oto" }

// Close stops playback. The shared oto context stays alive.
func (s *OtoSink) Close() error {
	s.Stop()
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// Stats returns playback statistics.
func (s *OtoSink) Stats() Stats {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()

	return Stats{
		Backend: "oto",
		Running: running,
		Chunks:  s.chunksWritten.Load(),
		Samples: s.samplesWritten.Load(),
	}
}

var (
	_ Sink          = (*OtoSink)(nil)
	_ StatsReporter = (*OtoSink)(nil)
)
