package agent

import (
	"context"
	"log/slog"
)

// FillerFunc is called before every completion request with the loop
// iteration. It must not block.
type FillerFunc func(ctx context.Context, iteration int)

// Observer receives completion outcomes.
type Observer interface {
	CompletionObserved(err error, seconds float64)
}

// Config holds agent settings.
type Config struct {
	// Model overrides the provider's default model when set.
	Model       string
	MaxTokens   int
	Temperature float64

	// RotateKeys selects a key per completion from Keys.
	RotateKeys bool
	Keys       []string

	// MaxIterations bounds completions per Invoke.
	MaxIterations int

	// SystemPrompt is a text/template with a {{.Menu}} slot.
	SystemPrompt string

	Filler   FillerFunc
	Observer Observer
	Logger   *slog.Logger
}

// Option configures an Agent.
type Option func(*Config)

// DefaultConfig returns default agent settings.
func DefaultConfig() *Config {
	return &Config{
		MaxTokens:     1500,
		Temperature:   0.1,
		MaxIterations: 8,
		SystemPrompt:  DefaultSystemPrompt,
	}
}

// Apply applies options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// WithModel sets the model name.
func WithModel(model string) Option {
	return func(c *Config) {
		c.Model = model
	}
}

// WithSampling sets max tokens and temperature.
func WithSampling(maxTokens int, temperature float64) Option {
	return func(c *Config) {
		c.MaxTokens = maxTokens
		c.Temperature = temperature
	}
}

// WithKeyRotation enables per-iteration key rotation over keys.
func WithKeyRotation(keys []string) Option {
	return func(c *Config) {
		c.RotateKeys = true
		c.Keys = keys
	}
}

// WithMaxIterations bounds the tool loop.
func WithMaxIterations(n int) Option {
	return func(c *Config) {
		c.MaxIterations = n
	}
}

// WithSystemPrompt replaces the prompt template.
func WithSystemPrompt(tmpl string) Option {
	return func(c *Config) {
		c.SystemPrompt = tmpl
	}
}

// WithFiller sets the pre-completion filler hook.
func WithFiller(f FillerFunc) Option {
	return func(c *Config) {
		c.Filler = f
	}
}

// WithObserver sets the completion observer.
func WithObserver(o Observer) Option {
	return func(c *Config) {
		c.Observer = o
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}
