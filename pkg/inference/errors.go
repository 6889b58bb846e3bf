package inference

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNoAPIKey            = errors.New("inference: API key required")
	ErrNoModel             = errors.New("inference: model required")
	ErrNoBaseURL           = errors.New("inference: base URL required")
	ErrProviderUnavailable = errors.New("inference: provider unavailable")
	ErrNoChoices           = errors.New("inference: no choices returned")
)

// APIError is a non-200 answer from the completions endpoint. The agent
// rotates to the next key when IsRateLimited or IsUnauthorized is true.
type APIError struct {
	Provider   string
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("inference [%s]: status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("inference [%s]: status %d (%s): %s", e.Provider, e.StatusCode, e.Code, e.Message)
}

func (e *APIError) IsRateLimited() bool { return e.StatusCode == http.StatusTooManyRequests }
func (e *APIError) IsUnauthorized() bool { return e.StatusCode == http.StatusUnauthorized }
func (e *APIError) IsServerError() bool { return e.StatusCode/100 == 5 }

// IsRetryable reports whether the same request may succeed later.
func (e *APIError) IsRetryable() bool { return e.IsRateLimited() || e.IsServerError() }

// ProviderError attaches the provider name to a transport failure.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string { return "inference [" + e.Provider + "]: " + e.Err.Error() }
func (e *ProviderError) Unwrap() error { return e.Err }

// WrapError returns nil for a nil err.
func WrapError(provider string, err error) error {
	if err == nil {
		return nil
	}
	return &ProviderError{Provider: provider, Err: err}
}
