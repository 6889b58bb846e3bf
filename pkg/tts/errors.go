package tts

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNoAPIKey            = errors.New("tts: API key required")
	ErrBadSampleRate       = errors.New("tts: sample rate must be positive")
	ErrEmptyText           = errors.New("tts: empty text")
	ErrEmptyAudio          = errors.New("tts: provider returned no audio")
	ErrProviderUnavailable = errors.New("tts: no provider available")
)

// APIError is a non-200 answer from a speech endpoint.
type APIError struct {
	Provider   string
	StatusCode int
	Code       string // provider error code, often empty
	Message    string
}

func (e *APIError) Error() string {
	status := fmt.Sprintf("%d", e.StatusCode)
	if e.Code != "" {
		status += " " + e.Code
	}
	return fmt.Sprintf("tts [%s]: %s: %s", e.Provider, status, e.Message)
}

// IsRateLimited reports HTTP 429.
func (e *APIError) IsRateLimited() bool { return e.StatusCode == http.StatusTooManyRequests }

// IsUnauthorized reports HTTP 401.
func (e *APIError) IsUnauthorized() bool { return e.StatusCode == http.StatusUnauthorized }

// IsServerError reports any 5xx.
func (e *APIError) IsServerError() bool { return e.StatusCode/100 == 5 }

// IsRetryable is true for rate limiting and server errors. The request
// helper retries exactly these.
func (e *APIError) IsRetryable() bool { return e.IsRateLimited() || e.IsServerError() }

// ProviderError tags a transport or decoding failure with its backend.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string { return "tts [" + e.Provider + "]: " + e.Err.Error() }

func (e *ProviderError) Unwrap() error { return e.Err }

// WrapError tags err with provider. A nil err stays nil.
func WrapError(provider string, err error) error {
	if err == nil {
		return nil
	}
	return &ProviderError{Provider: provider, Err: err}
}
