package audioio

import (
	"fmt"
	"log/slog"
)

// NewSource opens a capture source for cfg.Backend.
func NewSource(cfg Config, logger *slog.Logger) (Source, error) {
	logger, err := prepare(cfg, logger, "source")
	if err != nil {
		return nil, err
	}
	if cfg.Backend == BackendMock {
		return NewMockSource(cfg, logger), nil
	}
	return NewMalgoSource(cfg, logger)
}

// NewSink opens a playback sink for cfg.Backend.
func NewSink(cfg Config, logger *slog.Logger) (Sink, error) {
	logger, err := prepare(cfg, logger, "sink")
	if err != nil {
		return nil, err
	}
	if cfg.Backend == BackendMock {
		return NewMockSink(cfg, logger), nil
	}
	return NewOtoSink(cfg, logger)
}

func prepare(cfg Config, logger *slog.Logger, kind string) (*slog.Logger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("audioio: %s config: %w", kind, err)
	}
	switch cfg.Backend {
	case BackendAuto, BackendDevice, BackendMock, "":
	default:
		return nil, fmt.Errorf("audioio: unsupported backend %q", cfg.Backend)
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("opening audio "+kind,
		"backend", cfg.Backend,
		"sample_rate", cfg.SampleRate,
		"channels", cfg.Channels,
		"chunk", cfg.BufferDuration,
	)
	return logger, nil
}
