package tts

import (
	"context"
	"strings"
	"time"
)

// hosted is the part of a hosted provider that does not depend on the
// vendor: auth, endpoint, timing and the AudioResult.
type hosted struct {
	cfg     *Config
	http    *requester
	baseURL string
	auth    map[string]string
}

func newHosted(provider, defaultURL, scheme string, cfg *Config) hosted {
	base := cfg.BaseURL
	if base == "" {
		base = defaultURL
	}
	return hosted{
		cfg:     cfg,
		http:    newRequester(provider, cfg),
		baseURL: strings.TrimRight(base, "/"),
		auth:    map[string]string{"Authorization": scheme + cfg.APIKey},
	}
}

// synthesize trims text, posts the request built by req and wraps the
// returned PCM as format.
func (h *hosted) synthesize(ctx context.Context, text string, format AudioFormat, req func(text string) (path string, payload any)) (*AudioResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	start := time.Now()
	path, payload := req(text)
	audio, err := h.http.postAudio(ctx, h.baseURL+path, h.auth, payload)
	if err != nil {
		return nil, err
	}
	latency := time.Since(start)

	res := &AudioResult{
		Audio:     audio,
		Format:    format,
		Duration:  PCMDuration(len(audio), format),
		CharCount: len(text),
		LatencyMs: latency.Milliseconds(),
	}
	h.http.logger.Debug("synthesized",
		"chars", res.CharCount,
		"audio", res.Duration,
		"latency", latency,
		"model", h.cfg.ModelID,
	)
	return res, nil
}

func (h *hosted) health(ctx context.Context, path string) error {
	return h.http.get(ctx, h.baseURL+path, h.auth)
}

// Close drops idle connections.
func (h *hosted) Close() error {
	h.http.client.CloseIdleConnections()
	return nil
}
