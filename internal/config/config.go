// Package config loads kiosk settings from defaults, an optional YAML file,
// a .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LLM providers.
const (
	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"
)

// TTS providers.
const (
	TTSDeepgram = "deepgram"
	TTSOpenAI   = "openai"
)

// Config holds the complete kiosk configuration.
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	LLM     LLMConfig     `mapstructure:"llm"`
	TTS     TTSConfig     `mapstructure:"tts"`
	STT     STTConfig     `mapstructure:"stt"`
	Wake    WakeConfig    `mapstructure:"wake"`
	Audio   AudioConfig   `mapstructure:"audio"`
	Display DisplayConfig `mapstructure:"display"`
	Store   StoreConfig   `mapstructure:"store"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Menu    MenuConfig    `mapstructure:"menu"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text, json; empty follows GO_ENV
}

// LLMConfig selects the completion backend.
type LLMConfig struct {
	Provider      string  `mapstructure:"provider"` // groq, openai
	BaseURL       string  `mapstructure:"base_url"`
	Model         string  `mapstructure:"model"`
	Temperature   float64 `mapstructure:"temperature"`
	MaxTokens     int     `mapstructure:"max_tokens"`
	MaxIterations int     `mapstructure:"max_iterations"`
	RotateKeys    bool    `mapstructure:"rotate_keys"`

	GroqKey    string `mapstructure:"groq_api_key"`
	GroqKeys   string `mapstructure:"groq_api_keys"`
	OpenAIKey  string `mapstructure:"openai_api_key"`
	OpenAIKeys string `mapstructure:"openai_api_keys"`

	// Keys is resolved from the provider's key variables after loading.
	Keys []string `mapstructure:"-"`
}

// TTSConfig selects the speech synthesizer.
type TTSConfig struct {
	Provider   string `mapstructure:"provider"` // deepgram, openai
	Model      string `mapstructure:"model"`
	Voice      string `mapstructure:"voice"`
	SampleRate int    `mapstructure:"sample_rate"`
	APIKey     string `mapstructure:"api_key"`
}

// STTConfig configures live transcription.
type STTConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Language    string        `mapstructure:"language"`
	SampleRate  int           `mapstructure:"sample_rate"`
	Channels    int           `mapstructure:"channels"`
	Endpointing time.Duration `mapstructure:"endpointing"`
	Buffered    bool          `mapstructure:"buffered"`
}

// WakeConfig configures wake-phrase detection.
type WakeConfig struct {
	Phrases []string      `mapstructure:"phrases"`
	Window  time.Duration `mapstructure:"window"`
	Enabled bool          `mapstructure:"enabled"`
}

// AudioConfig configures playback and phrase clips.
type AudioConfig struct {
	PhraseDir   string        `mapstructure:"phrase_dir"`
	FillerDelay time.Duration `mapstructure:"filler_delay"`
	Backend     string        `mapstructure:"backend"` // auto, mock
}

// DisplayConfig configures the display server.
type DisplayConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
	Static  string `mapstructure:"static"`
}

// StoreConfig configures conversation dumps.
type StoreConfig struct {
	Dir string `mapstructure:"dir"`
}

// MetricsConfig toggles the /metrics endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// MenuConfig points at an optional menu file.
type MenuConfig struct {
	Path string `mapstructure:"path"`
}

// ConfigError reports an invalid setting.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// DefaultConfig returns the kiosk defaults.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
		LLM: LLMConfig{
			Provider:      ProviderGroq,
			Model:         "gemma2-9b-it",
			Temperature:   0.1,
			MaxTokens:     1500,
			MaxIterations: 8,
			RotateKeys:    true,
		},
		TTS: TTSConfig{
			Provider:   TTSDeepgram,
			Model:      "aura-asteria-en",
			Voice:      "alloy",
			SampleRate: 24000,
		},
		STT: STTConfig{
			Model:       "nova-2",
			Language:    "en-US",
			SampleRate:  16000,
			Channels:    1,
			Endpointing: 300 * time.Millisecond,
		},
		Wake: WakeConfig{
			Phrases: []string{"hi kfc", "hello kfc", "ok kfc"},
			Window:  1200 * time.Millisecond,
			Enabled: true,
		},
		Audio: AudioConfig{
			PhraseDir:   "phrases",
			FillerDelay: time.Second,
			Backend:     "auto",
		},
		Display: DisplayConfig{
			Enabled: true,
			Addr:    ":8000",
		},
		Store: StoreConfig{Dir: "conversations"},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// Load reads configuration. An empty path searches for kiosk.yaml in the
// working directory and $HOME/.config/kiosk; a missing file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("KIOSK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("llm.groq_api_key", "KIOSK_LLM_GROQ_API_KEY", "GROQ_API_KEY")
	_ = v.BindEnv("llm.groq_api_keys", "KIOSK_LLM_GROQ_API_KEYS", "GROQ_API_KEYS")
	_ = v.BindEnv("llm.openai_api_key", "KIOSK_LLM_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("llm.openai_api_keys", "KIOSK_LLM_OPENAI_API_KEYS", "OPENAI_API_KEYS")
	_ = v.BindEnv("stt.api_key", "KIOSK_STT_API_KEY", "DEEPGRAM_API_KEY")
	_ = v.BindEnv("tts.api_key", "KIOSK_TTS_API_KEY", "DEEPGRAM_API_KEY")
	_ = v.BindEnv("log.level", "KIOSK_LOG_LEVEL", "LOG_LEVEL")
	_ = v.BindEnv("log.format", "KIOSK_LOG_FORMAT")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("kiosk")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/kiosk")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.resolveKeys()

	return &cfg, nil
}

// resolveKeys fills LLM.Keys from the active provider's variables.
// A comma-separated list wins over the single key.
func (c *Config) resolveKeys() {
	single, list := c.LLM.GroqKey, c.LLM.GroqKeys
	if c.LLM.Provider == ProviderOpenAI {
		single, list = c.LLM.OpenAIKey, c.LLM.OpenAIKeys
	}
	c.LLM.Keys = SplitKeys(list)
	if len(c.LLM.Keys) == 0 && single != "" {
		c.LLM.Keys = []string{single}
	}
	if c.TTS.Provider == TTSOpenAI && c.LLM.OpenAIKey != "" {
		c.TTS.APIKey = c.LLM.OpenAIKey
	}
}

// SplitKeys splits a comma-separated key list, dropping blanks.
func SplitKeys(s string) []string {
	var keys []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// Validate checks settings needed by every mode.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderGroq, ProviderOpenAI:
	default:
		return &ConfigError{Field: "llm.provider", Message: fmt.Sprintf("unknown provider %q", c.LLM.Provider)}
	}
	if c.LLM.RotateKeys && len(c.LLM.Keys) == 0 {
		return &ConfigError{Field: "llm.keys", Message: "key rotation enabled but no API keys configured"}
	}
	if c.LLM.MaxIterations < 1 {
		return &ConfigError{Field: "llm.max_iterations", Message: "must be at least 1"}
	}
	if c.STT.SampleRate <= 0 {
		return &ConfigError{Field: "stt.sample_rate", Message: "must be positive"}
	}
	if c.TTS.SampleRate <= 0 {
		return &ConfigError{Field: "tts.sample_rate", Message: "must be positive"}
	}
	switch c.TTS.Provider {
	case TTSDeepgram, TTSOpenAI:
	default:
		return &ConfigError{Field: "tts.provider", Message: fmt.Sprintf("unknown provider %q", c.TTS.Provider)}
	}
	return nil
}

// ValidateVoice additionally checks what microphone mode needs.
func (c *Config) ValidateVoice() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.STT.APIKey == "" {
		return &ConfigError{Field: "stt.api_key", Message: "DEEPGRAM_API_KEY is required for voice mode"}
	}
	if c.TTS.APIKey == "" {
		return &ConfigError{Field: "tts.api_key", Message: "no speech synthesis key configured"}
	}
	return nil
}

// BaseURLOrDefault returns the configured completion endpoint or the provider default.
func (c *LLMConfig) BaseURLOrDefault() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	if c.Provider == ProviderOpenAI {
		return "https://api.openai.com/v1"
	}
	return "https://api.groq.com/openai/v1"
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.base_url", d.LLM.BaseURL)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.temperature", d.LLM.Temperature)
	v.SetDefault("llm.max_tokens", d.LLM.MaxTokens)
	v.SetDefault("llm.max_iterations", d.LLM.MaxIterations)
	v.SetDefault("llm.rotate_keys", d.LLM.RotateKeys)
	v.SetDefault("llm.groq_api_key", "")
	v.SetDefault("llm.groq_api_keys", "")
	v.SetDefault("llm.openai_api_key", "")
	v.SetDefault("llm.openai_api_keys", "")

	v.SetDefault("tts.provider", d.TTS.Provider)
	v.SetDefault("tts.model", d.TTS.Model)
	v.SetDefault("tts.voice", d.TTS.Voice)
	v.SetDefault("tts.sample_rate", d.TTS.SampleRate)
	v.SetDefault("tts.api_key", "")

	v.SetDefault("stt.api_key", "")
	v.SetDefault("stt.model", d.STT.Model)
	v.SetDefault("stt.language", d.STT.Language)
	v.SetDefault("stt.sample_rate", d.STT.SampleRate)
	v.SetDefault("stt.channels", d.STT.Channels)
	v.SetDefault("stt.endpointing", d.STT.Endpointing)
	v.SetDefault("stt.buffered", d.STT.Buffered)

	v.SetDefault("wake.phrases", d.Wake.Phrases)
	v.SetDefault("wake.window", d.Wake.Window)
	v.SetDefault("wake.enabled", d.Wake.Enabled)

	v.SetDefault("audio.phrase_dir", d.Audio.PhraseDir)
	v.SetDefault("audio.filler_delay", d.Audio.FillerDelay)
	v.SetDefault("audio.backend", d.Audio.Backend)

	v.SetDefault("display.enabled", d.Display.Enabled)
	v.SetDefault("display.addr", d.Display.Addr)
	v.SetDefault("display.static", d.Display.Static)

	v.SetDefault("store.dir", d.Store.Dir)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("menu.path", d.Menu.Path)
}
