package inference

import (
	"log/slog"
	"time"
)

const (
	OpenAIBaseURL = "https://api.openai.com/v1"
	GroqBaseURL   = "https://api.groq.com/openai/v1"
)

// Config is the client configuration. ChatRequest fields override the
// request defaults per call.
type Config struct {
	BaseURL string
	APIKey  string // optional for local servers
	Model   string

	MaxTokens   int
	Temperature float64

	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration

	Logger *slog.Logger
}

// Option mutates a Config.
type Option func(*Config)

// WithBaseURL points the client at another compatible host, e.g.
// "http://localhost:11434/v1" for Ollama.
func WithBaseURL(url string) Option { return func(c *Config) { c.BaseURL = url } }

func WithAPIKey(key string) Option { return func(c *Config) { c.APIKey = key } }
func WithModel(model string) Option { return func(c *Config) { c.Model = model } }
func WithMaxTokens(n int) Option { return func(c *Config) { c.MaxTokens = n } }
func WithTemperature(t float64) Option { return func(c *Config) { c.Temperature = t } }
func WithTimeout(d time.Duration) Option { return func(c *Config) { c.Timeout = d } }
func WithLogger(l *slog.Logger) Option { return func(c *Config) { c.Logger = l } }

// WithRetry sets how often 429 and 5xx answers are retried.
func WithRetry(maxRetries int, delay time.Duration) Option {
	return func(c *Config) { c.MaxRetries, c.RetryDelay = maxRetries, delay }
}

// DefaultConfig favours short, near-deterministic ordering turns.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:     OpenAIBaseURL,
		Model:       "gpt-4o-mini",
		MaxTokens:   1500,
		Temperature: 0.1,
		Timeout:     30 * time.Second,
		MaxRetries:  2,
		RetryDelay:  250 * time.Millisecond,
		Logger:      slog.Default(),
	}
}

func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// Validate requires a base URL and a model.
func (c *Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return ErrNoBaseURL
	case c.Model == "":
		return ErrNoModel
	}
	return nil
}
