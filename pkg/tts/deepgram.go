package tts

import (
	"context"
	"net/url"
	"strconv"
)

const (
	deepgramBaseURL  = "https://api.deepgram.com/v1"
	providerDeepgram = "deepgram"
)

// Deepgram synthesizes with Deepgram Aura. The model doubles as the voice,
// e.g. "aura-asteria-en".
type Deepgram struct {
	hosted
}

// NewDeepgram requests headerless linear16 at the configured rate.
func NewDeepgram(opts ...Option) (*Deepgram, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Deepgram{newHosted(providerDeepgram, deepgramBaseURL, "Token ", cfg)}, nil
}

// Synthesize returns the spoken text as PCM at Config.SampleRate.
func (d *Deepgram) Synthesize(ctx context.Context, text string) (*AudioResult, error) {
	q := url.Values{
		"model":       {d.cfg.ModelID},
		"encoding":    {string(EncodingLinear16)},
		"sample_rate": {strconv.Itoa(d.cfg.SampleRate)},
		"container":   {"none"},
	}
	return d.synthesize(ctx, text, PCMFormat(d.cfg.SampleRate), func(text string) (string, any) {
		return "/speak?" + q.Encode(), map[string]string{"text": text}
	})
}

// Health lists projects, which fails on a bad key.
func (d *Deepgram) Health(ctx context.Context) error { return d.health(ctx, "/projects") }

var _ Provider = (*Deepgram)(nil)
