// Package wake listens for the kiosk's wake phrase.
//
// A Detector records a fixed window from the microphone, transcribes it
// with a Recognizer, and matches the normalized text against the
// configured phrases.
package wake

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/teslashibe/go-kiosk/pkg/audioio"
)

// ErrNoRecognizer is returned when a Detector has no recognizer.
var ErrNoRecognizer = errors.New("wake: recognizer is required")

// Recognizer transcribes a short mono PCM16 recording.
type Recognizer interface {
	Transcribe(ctx context.Context, pcm []byte, sampleRate int) (string, error)
}

// Match is the outcome of one listening window.
type Match struct {
	Matched    bool
	Phrase     string
	Transcript string
}

// Config configures a Detector.
type Config struct {
	Phrases []string
	Window  time.Duration

	// MinRMS skips recognition of windows quieter than this level (0..1).
	MinRMS float64

	Logger *slog.Logger
}

// DefaultConfig returns the stock wake phrases and a 1.2 s window.
func DefaultConfig() Config {
	return Config{
		Phrases: []string{"hi kfc", "hello kfc", "ok kfc"},
		Window:  1200 * time.Millisecond,
		MinRMS:  0.005,
	}
}

// Detector matches wake phrases in fixed recording windows.
type Detector struct {
	source     audioio.Source
	recognizer Recognizer
	config     Config
	phrases    []string
	logger     *slog.Logger
}

// New creates a Detector reading from a started source.
func New(source audioio.Source, recognizer Recognizer, cfg Config) (*Detector, error) {
	if recognizer == nil {
		return nil, ErrNoRecognizer
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultConfig().Window
	}
	if len(cfg.Phrases) == 0 {
		cfg.Phrases = DefaultConfig().Phrases
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	phrases := make([]string, 0, len(cfg.Phrases))
	for _, p := range cfg.Phrases {
		if n := Normalize(p); n != "" {
			phrases = append(phrases, n)
		}
	}

	return &Detector{
		source:     source,
		recognizer: recognizer,
		config:     cfg,
		phrases:    phrases,
		logger:     cfg.Logger.With("component", "wake.detector"),
	}, nil
}

// Listen records one window and reports whether it contains a wake phrase.
func (d *Detector) Listen(ctx context.Context) (Match, error) {
	samples, rate, err := d.record(ctx)
	if err != nil {
		return Match{}, err
	}

	if rms := audioio.CalculateRMS(samples); rms < d.config.MinRMS {
		d.logger.Debug("window below speech level", "rms", rms)
		return Match{}, nil
	}

	text, err := d.recognizer.Transcribe(ctx, audioio.SamplesToBytes(samples), rate)
	if err != nil {
		return Match{}, err
	}

	m := d.Match(text)
	if m.Matched {
		d.logger.Info("wake phrase detected", "phrase", m.Phrase, "transcript", text)
	} else if text != "" {
		d.logger.Debug("no wake phrase", "transcript", text)
	}
	return m, nil
}

// Wait listens window after window until a phrase matches or ctx ends.
// Recognition errors are logged and listening continues.
func (d *Detector) Wait(ctx context.Context) (Match, error) {
	for {
		m, err := d.Listen(ctx)
		if ctx.Err() != nil {
			return Match{}, ctx.Err()
		}
		if err != nil {
			d.logger.Warn("wake recognition failed", "error", err)
			continue
		}
		if m.Matched {
			return m, nil
		}
	}
}

// Match checks transcript against the configured phrases.
func (d *Detector) Match(transcript string) Match {
	norm := Normalize(transcript)
	m := Match{Transcript: transcript}
	padded := " " + norm + " "
	for _, p := range d.phrases {
		if strings.Contains(padded, " "+p+" ") {
			m.Matched = true
			m.Phrase = p
			return m
		}
	}
	return m
}

// record reads mono samples until the window is filled.
func (d *Detector) record(ctx context.Context) ([]int16, int, error) {
	cfg := d.source.Config()
	rate := cfg.SampleRate
	want := int(d.config.Window.Seconds() * float64(rate))

	samples := make([]int16, 0, want)
	for len(samples) < want {
		chunk, err := d.source.Read(ctx)
		if err != nil {
			return nil, 0, err
		}
		s := chunk.Samples
		if chunk.Channels == 2 {
			s = audioio.StereoToMono(s)
		}
		if chunk.SampleRate != 0 {
			rate = chunk.SampleRate
		}
		samples = append(samples, s...)
	}
	return samples[:want], rate, nil
}

// Normalize lowercases text, drops punctuation and collapses spaces.
func Normalize(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r), r == '-':
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
