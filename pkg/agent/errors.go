package agent

import (
	"errors"
	"fmt"
)

var (
	// ErrNoKeys indicates key rotation was enabled without any keys.
	ErrNoKeys = errors.New("agent: key rotation enabled but no API keys configured")

	// ErrTooManyIterations indicates the model kept requesting tools past the limit.
	ErrTooManyIterations = errors.New("agent: tool loop exceeded iteration limit")
)

// ConfigurationError reports an invalid construction parameter.
type ConfigurationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("agent: invalid %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying error.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
