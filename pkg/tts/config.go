package tts

import (
	"log/slog"
	"time"
)

// Config is shared by every backend. Build it with DefaultConfig and Options.
type Config struct {
	APIKey  string
	BaseURL string // empty selects the provider's public endpoint

	VoiceID string
	ModelID string

	// SampleRate of the PCM the provider is asked for.
	SampleRate int
	Timeout    time.Duration

	// A failed request is retried MaxRetries times. The wait grows by
	// RetryDelay each attempt.
	MaxRetries int
	RetryDelay time.Duration

	Logger *slog.Logger
}

// Option mutates a Config.
type Option func(*Config)

func WithAPIKey(key string) Option { return func(c *Config) { c.APIKey = key } }
func WithBaseURL(url string) Option { return func(c *Config) { c.BaseURL = url } }
func WithVoice(id string) Option { return func(c *Config) { c.VoiceID = id } }
func WithModel(id string) Option { return func(c *Config) { c.ModelID = id } }
func WithSampleRate(hz int) Option { return func(c *Config) { c.SampleRate = hz } }
func WithTimeout(d time.Duration) Option { return func(c *Config) { c.Timeout = d } }

// WithRetry sets the retry budget for 429 and 5xx answers.
func WithRetry(maxRetries int, delay time.Duration) Option {
	return func(c *Config) {
		c.MaxRetries, c.RetryDelay = maxRetries, delay
	}
}

// WithLogger sets the provider logger.
func WithLogger(l *slog.Logger) Option { return func(c *Config) { c.Logger = l } }

// DefaultConfig asks for 24 kHz Aura Asteria and allows two retries.
func DefaultConfig() *Config {
	return &Config{
		ModelID:    "aura-asteria-en",
		SampleRate: 24000,
		Timeout:    30 * time.Second,
		MaxRetries: 2,
		RetryDelay: 100 * time.Millisecond,
		Logger:     slog.Default(),
	}
}

// Apply runs opts in order.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// Validate requires an API key and a positive sample rate.
func (c *Config) Validate() error {
	switch {
	case c.APIKey == "":
		return ErrNoAPIKey
	case c.SampleRate <= 0:
		return ErrBadSampleRate
	}
	return nil
}
