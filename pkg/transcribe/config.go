package transcribe

import (
	"log/slog"
	"time"
)

const (
	// DeepgramLiveURL is the Deepgram streaming endpoint.
	DeepgramLiveURL = "wss://api.deepgram.com/v1/listen"

	providerDeepgram = "deepgram"
)

// Config holds configuration for the Deepgram live client.
type Config struct {
	APIKey   string
	BaseURL  string
	Model    string
	Language string

	SampleRate  int
	Channels    int
	Endpointing time.Duration

	// UtteranceEnd asks the service for UtteranceEnd events after this
	// much silence. Zero disables them.
	UtteranceEnd time.Duration

	KeepAlive time.Duration
	Timeout   time.Duration

	Logger *slog.Logger
}

// DefaultConfig returns nova-2, 16 kHz mono, 300 ms endpointing.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:      DeepgramLiveURL,
		Model:        "nova-2",
		Language:     "en-US",
		SampleRate:   16000,
		Channels:     1,
		Endpointing:  300 * time.Millisecond,
		UtteranceEnd: time.Second,
		KeepAlive:    5 * time.Second,
		Timeout:      10 * time.Second,
	}
}

// Option configures a Config.
type Option func(*Config)

// Apply applies options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// WithAPIKey sets the Deepgram API key.
func WithAPIKey(key string) Option {
	return func(c *Config) { c.APIKey = key }
}

// WithBaseURL overrides the streaming endpoint.
func WithBaseURL(url string) Option {
	return func(c *Config) { c.BaseURL = url }
}

// WithModel sets the model and language.
func WithModel(model, language string) Option {
	return func(c *Config) {
		c.Model = model
		if language != "" {
			c.Language = language
		}
	}
}

// WithAudio sets the sample rate and channel count of the streamed audio.
func WithAudio(sampleRate, channels int) Option {
	return func(c *Config) {
		c.SampleRate = sampleRate
		c.Channels = channels
	}
}

// WithEndpointing sets the end-of-utterance silence threshold.
func WithEndpointing(d time.Duration) Option {
	return func(c *Config) { c.Endpointing = d }
}

// WithUtteranceEnd sets the UtteranceEnd silence window.
func WithUtteranceEnd(d time.Duration) Option {
	return func(c *Config) { c.UtteranceEnd = d }
}

// WithKeepAlive sets the KeepAlive interval.
func WithKeepAlive(d time.Duration) Option {
	return func(c *Config) { c.KeepAlive = d }
}

// WithTimeout sets the handshake timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}
