package transcribe

import (
	"errors"
	"fmt"
)

// Sentinel errors for the transcribe package.
var (
	// ErrNoAPIKey indicates the API key was not provided.
	ErrNoAPIKey = errors.New("transcribe: API key is required")

	// ErrNotConnected indicates audio was sent without a live connection.
	ErrNotConnected = errors.New("transcribe: not connected")

	// ErrAlreadyConnected indicates Connect was called twice.
	ErrAlreadyConnected = errors.New("transcribe: already connected")

	// ErrConnectionClosed indicates the service closed the connection.
	ErrConnectionClosed = errors.New("transcribe: connection closed")

	// ErrSessionActive indicates Run or Interact was called while a session is open.
	ErrSessionActive = errors.New("transcribe: session already active")

	// ErrNoHandler indicates Run was called without an OnData handler.
	ErrNoHandler = errors.New("transcribe: OnData handler is required")
)

// APIError is a failed handshake with the transcription service.
type APIError struct {
	StatusCode int
	Message    string
	Provider   string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: HTTP %d", e.Provider, e.StatusCode)
}

// IsUnauthorized returns true if the API key was rejected.
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}

// IsRateLimited returns true if this is a rate limit error.
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == 429
}

// IsServerError returns true if this is a server-side error.
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500
}

// IsRetryable returns true if reconnecting may succeed.
func (e *APIError) IsRetryable() bool {
	return e.IsRateLimited() || e.IsServerError()
}

// ServiceError is an error reported by the transcription service during a
// session. It is delivered to OnError and does not end the session.
type ServiceError struct {
	Provider string
	Message  string
	Err      error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transcribe [%s]: %s: %v", e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("transcribe [%s]: %s", e.Provider, e.Message)
}

// Unwrap returns the underlying error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}
