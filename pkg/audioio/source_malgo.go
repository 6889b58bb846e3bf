package audioio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
)

// MalgoSource captures from the default input device via miniaudio.
type MalgoSource struct {
	cfg    Config
	logger *slog.Logger

	mu       sync.Mutex
	mctx     *malgo.AllocatedContext
	device   *malgo.Device
	running  bool
	closed   bool
	pending  []byte
	streamCh chan AudioChunk

	chunksRead  atomic.Int64
	samplesRead atomic.Int64
	overruns    atomic.Int64
}

// NewMalgoSource initializes the miniaudio context. Capture begins on Start.
func NewMalgoSource(cfg Config, logger *slog.Logger) (*MalgoSource, error) {
	if logger == nil {
		logger = slog.Default()
	}

	ctxCfg := malgo.ContextConfig{}
	ctxCfg.ThreadPriority = malgo.ThreadPriorityRealtime

	mctx, err := malgo.InitContext(nil, ctxCfg, nil)
	if err != nil {
		return nil, fmt.Errorf("audioio: init capture context: %w", err)
	}

	return &MalgoSource{
		cfg:    cfg,
		logger: logger.With("component", "audioio.malgo"),
		mctx:   mctx,
	}, nil
}

// Start opens the capture device and begins delivering chunks.
func (s *MalgoSource) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return io.ErrClosedPipe
	}
	if s.running {
		return nil
	}

	devCfg := malgo.DefaultDeviceConfig(malgo.Capture)
	devCfg.Capture.Format = malgo.FormatS16
	devCfg.Capture.Channels = uint32(s.cfg.Channels)
	devCfg.SampleRate = uint32(s.cfg.SampleRate)
	devCfg.PeriodSizeInMilliseconds = 20

	s.streamCh = make(chan AudioChunk, 32)
	s.pending = s.pending[:0]

	device, err := malgo.InitDevice(s.mctx.Context, devCfg, malgo.DeviceCallbacks{
		Data: func(_, input []byte, _ uint32) {
			s.onData(input)
		},
	})
	if err != nil {
		return fmt.Errorf("audioio: init capture device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("audioio: start capture: %w", err)
	}

	s.device = device
	s.running = true

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("capture started",
		"sample_rate", s.cfg.SampleRate,
		"channels", s.cfg.Channels,
	)
	return nil
}

// onData slices the callback stream into fixed-size chunks.
func (s *MalgoSource) onData(input []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.pending = append(s.pending, input...)
	size := s.cfg.BufferBytes()
	for len(s.pending) >= size {
		chunk := NewChunk(s.pending[:size], s.cfg.SampleRate, s.cfg.Channels)
		s.pending = s.pending[size:]

		select {
		case s.streamCh <- chunk:
			s.chunksRead.Add(1)
			s.samplesRead.Add(int64(len(chunk.Samples)))
		default:
			s.overruns.Add(1)
		}
	}
}

// Stop halts capture and closes the stream.
func (s *MalgoSource) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	device := s.device
	s.device = nil
	close(s.streamCh)
	s.mu.Unlock()

	if device != nil {
		device.Stop()
		device.Uninit()
	}
	s.logger.Info("capture stopped", "overruns", s.overruns.Load())
	return nil
}

// Read returns the next captured chunk.
func (s *MalgoSource) Read(ctx context.Context) (AudioChunk, error) {
	s.mu.Lock()
	ch := s.streamCh
	s.mu.Unlock()
	if ch == nil {
		return AudioChunk{}, io.EOF
	}

	select {
	case <-ctx.Done():
		return AudioChunk{}, ctx.Err()
	case chunk, ok := <-ch:
		if !ok {
			return AudioChunk{}, io.EOF
		}
		return chunk, nil
	}
}

// Config returns the capture configuration.
func (s *MalgoSource) Config() Config { return s.cfg }

// Name returns "malgo".
func (s *MalgoSource) Name() string { return "malgo" }

// Close stops capture and releases the miniaudio context.
func (s *MalgoSource) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.Stop()
	if s.mctx != nil {
		_ = s.mctx.Uninit()
		s.mctx.Free()
	}
	return nil
}

// Stats returns capture statistics.
func (s *MalgoSource) Stats() Stats {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()

	return Stats{
		Backend: "malgo",
		Running: running,
		Chunks:  s.chunksRead.Load(),
		Samples: s.samplesRead.Load(),
		Dropped: s.overruns.Load(),
	}
}

var (
	_ Source        = (*MalgoSource)(nil)
	_ StatsReporter = (*MalgoSource)(nil)
)
