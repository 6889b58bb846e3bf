// Package tts turns reply text into PCM for the kiosk speaker.
//
// The hosted backends are Deepgram Aura and OpenAI speech. Both are asked
// for headerless 16-bit mono PCM, which the audio coordinator queues as-is.
//
//	provider, _ := tts.NewDeepgram(
//	    tts.WithAPIKey(os.Getenv("DEEPGRAM_API_KEY")),
//	    tts.WithModel("aura-asteria-en"),
//	)
//	defer provider.Close()
//
//	result, _ := provider.Synthesize(ctx, "What can I get for you today?")
package tts

import (
	"context"
	"time"
)

// Provider synthesizes complete utterances. The kiosk speaks short
// replies, so there is no streaming variant.
type Provider interface {
	Synthesize(ctx context.Context, text string) (*AudioResult, error)
	Health(ctx context.Context) error
	Close() error
}

// AudioResult is one synthesized utterance.
type AudioResult struct {
	Audio     []byte
	Format    AudioFormat
	Duration  time.Duration
	CharCount int
	LatencyMs int64
}

// Encoding names a sample encoding.
type Encoding string

// EncodingLinear16 is little-endian PCM16 without a header.
const EncodingLinear16 Encoding = "linear16"

// AudioFormat describes AudioResult.Audio.
type AudioFormat struct {
	Encoding   Encoding
	SampleRate int
	Channels   int
	BitDepth   int
}

// PCMFormat is mono PCM16 at rate.
func PCMFormat(rate int) AudioFormat {
	return AudioFormat{Encoding: EncodingLinear16, SampleRate: rate, Channels: 1, BitDepth: 16}
}

// PCMDuration is the playback length of n bytes of f. Channels and
// BitDepth default to mono and 16 bits when unset.
func PCMDuration(n int, f AudioFormat) time.Duration {
	if f.SampleRate <= 0 {
		return 0
	}
	width := f.BitDepth / 8
	if width <= 0 {
		width = 2
	}
	frame := max(f.Channels, 1) * width
	return time.Duration(n/frame) * time.Second / time.Duration(f.SampleRate)
}
