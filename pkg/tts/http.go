package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/teslashibe/go-kiosk/internal/httpc"
)

// requester is the HTTP side shared by the hosted providers.
type requester struct {
	provider string
	client   *http.Client
	retry    *httpc.Retrier
	logger   *slog.Logger
}

func newRequester(provider string, cfg *Config) *requester {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "tts."+provider)
	client := httpc.New(cfg.Timeout)
	return &requester{
		provider: provider,
		client:   client,
		retry:    &httpc.Retrier{Client: client, Retries: cfg.MaxRetries, Delay: cfg.RetryDelay, Logger: logger},
		logger:   logger,
	}
}

// postAudio posts payload as JSON and returns the audio body of a 200.
func (r *requester) postAudio(ctx context.Context, url string, headers map[string]string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, WrapError(r.provider, fmt.Errorf("marshal payload: %w", err))
	}

	resp, err := r.retry.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		setHeaders(req, headers)
		return req, nil
	})
	if err != nil {
		return nil, WrapError(r.provider, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, r.decodeError(resp)
	}

	audio, err := io.ReadAll(resp.Body)
	switch {
	case err != nil:
		return nil, WrapError(r.provider, fmt.Errorf("read audio: %w", err))
	case len(audio) == 0:
		return nil, WrapError(r.provider, ErrEmptyAudio)
	}
	return audio, nil
}

// get issues one authenticated GET and expects a 200.
func (r *requester) get(ctx context.Context, url string, headers map[string]string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return WrapError(r.provider, err)
	}
	setHeaders(req, headers)

	resp, err := r.client.Do(req)
	if err != nil {
		return WrapError(r.provider, fmt.Errorf("health check: %w", err))
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return r.decodeError(resp)
	}
	return nil
}

func setHeaders(req *http.Request, headers map[string]string) {
	for k, v := range headers {
		req.Header.Set(k, v)
	}
}

// decodeError understands both error shapes: OpenAI nests an error
// object, Deepgram uses err_code and err_msg.
func (r *requester) decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	apiErr := &APIError{Provider: r.provider, StatusCode: resp.StatusCode, Message: string(body)}

	var shape struct {
		Error struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		} `json:"error"`
		ErrCode string `json:"err_code"`
		ErrMsg  string `json:"err_msg"`
	}
	if json.Unmarshal(body, &shape) != nil {
		return apiErr
	}
	switch {
	case shape.Error.Message != "":
		apiErr.Message, apiErr.Code = shape.Error.Message, shape.Error.Code
	case shape.ErrMsg != "":
		apiErr.Message, apiErr.Code = shape.ErrMsg, shape.ErrCode
	}
	return apiErr
}
