// Package audioio moves PCM16 between the kiosk and its audio devices.
// malgo captures the microphone and oto drives the speaker. The mock
// backend replaces both under test.
package audioio

import (
	"fmt"
	"time"
)

// Backend names an audio implementation.
type Backend string

const (
	BackendAuto   Backend = "auto"
	BackendDevice Backend = "device"
	BackendMock   Backend = "mock"
)

// Config describes one audio stream. Samples are always PCM16.
type Config struct {
	Backend        Backend       `yaml:"backend" json:"backend"`
	SampleRate     int           `yaml:"sample_rate" json:"sample_rate"`
	Channels       int           `yaml:"channels" json:"channels"`
	BufferDuration time.Duration `yaml:"buffer_duration" json:"buffer_duration"` // one chunk
}

// DefaultConfig returns 16 kHz mono capture in 100 ms chunks.
func DefaultConfig() Config {
	return Config{
		Backend:        BackendAuto,
		SampleRate:     16000,
		Channels:       1,
		BufferDuration: 100 * time.Millisecond,
	}
}

// SpeakerConfig returns the playback defaults: 24 kHz mono.
func SpeakerConfig() Config {
	cfg := DefaultConfig()
	cfg.SampleRate = 24000
	cfg.BufferDuration = 20 * time.Millisecond
	return cfg
}

// Validate rejects non-positive rates, channel counts and chunk sizes.
func (c *Config) Validate() error {
	switch {
	case c.SampleRate <= 0:
		return fmt.Errorf("sample rate %d is not positive", c.SampleRate)
	case c.Channels <= 0:
		return fmt.Errorf("channel count %d is not positive", c.Channels)
	case c.BufferDuration <= 0:
		return fmt.Errorf("chunk duration %v is not positive", c.BufferDuration)
	}
	return nil
}

// BufferSize is the number of frames in one chunk.
func (c *Config) BufferSize() int {
	return int(int64(c.SampleRate) * int64(c.BufferDuration) / int64(time.Second))
}

// BufferBytes is the PCM16 byte length of one chunk.
func (c *Config) BufferBytes() int {
	return 2 * c.Channels * c.BufferSize()
}
