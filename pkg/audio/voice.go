package audio

import (
	"context"
	"log/slog"
	"time"

	"github.com/teslashibe/go-kiosk/pkg/tts"
)

// DefaultFillerDelay is how long a filler waits before playing, so fast
// completions finish before the filler starts.
const DefaultFillerDelay = time.Second

// Voice speaks for the kiosk: synthesized replies plus canned phrases,
// all routed through one Coordinator.
type Voice struct {
	coord       *Coordinator
	library     *Library
	synth       tts.Provider
	fillerDelay time.Duration
	logger      *slog.Logger
}

// VoiceOption configures a Voice.
type VoiceOption func(*Voice)

// WithFillerDelay overrides DefaultFillerDelay.
func WithFillerDelay(d time.Duration) VoiceOption {
	return func(v *Voice) { v.fillerDelay = d }
}

// WithVoiceLogger sets the logger.
func WithVoiceLogger(l *slog.Logger) VoiceOption {
	return func(v *Voice) {
		if l != nil {
			v.logger = l
		}
	}
}

// NewVoice creates a Voice. library and synth may be nil, which disables
// canned phrases or synthesized replies respectively.
func NewVoice(coord *Coordinator, library *Library, synth tts.Provider, opts ...VoiceOption) *Voice {
	v := &Voice{
		coord:       coord,
		library:     library,
		synth:       synth,
		fillerDelay: DefaultFillerDelay,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.logger = v.logger.With("component", "audio.voice")
	return v
}

// Speak synthesizes text and queues it. A synthesis failure is logged and
// the reply is skipped; the error is returned for accounting only.
func (v *Voice) Speak(ctx context.Context, text string) error {
	if text == "" || v.synth == nil {
		return nil
	}

	result, err := v.synth.Synthesize(ctx, text)
	if err != nil {
		v.logger.Warn("speech synthesis failed, skipping reply", "error", err)
		return err
	}

	clip := Clip{Name: "reply", PCM: result.Audio, SampleRate: result.Format.SampleRate}
	if clip.Empty() {
		v.logger.Warn("speech synthesis returned no audio")
		return ErrEmptyClip
	}
	return v.coord.Enqueue(clip, 0)
}

// Filler queues the next filler after the filler delay. Its signature
// matches agent.FillerFunc.
func (v *Voice) Filler(ctx context.Context, iteration int) {
	if v.library == nil {
		return
	}
	clip, err := v.library.NextFiller(ctx)
	if err != nil {
		v.logger.Debug("no filler available", "error", err)
		return
	}
	v.enqueue(clip, v.fillerDelay)
}

// Greet queues a random greeting.
func (v *Voice) Greet(ctx context.Context) {
	if v.library == nil {
		return
	}
	clip, err := v.library.Greeting(ctx)
	if err != nil {
		v.logger.Warn("greeting unavailable", "error", err)
		return
	}
	v.enqueue(clip, 0)
}

// Intermediate queues a random phrase for a tool category. Unknown
// categories are ignored.
func (v *Voice) Intermediate(ctx context.Context, category string) {
	if v.library == nil || category == "" {
		return
	}
	clip, ok, err := v.library.Intermediate(ctx, category)
	if err != nil {
		v.logger.Warn("intermediate phrase unavailable", "category", category, "error", err)
		return
	}
	if ok {
		v.enqueue(clip, 0)
	}
}

// WaitUntilIdle blocks until everything queued has played.
func (v *Voice) WaitUntilIdle(ctx context.Context) bool {
	return v.coord.WaitUntilIdle(ctx)
}

func (v *Voice) enqueue(clip Clip, delay time.Duration) {
	if err := v.coord.Enqueue(clip, delay); err != nil {
		v.logger.Debug("clip dropped", "clip", clip.Name, "error", err)
	}
}
