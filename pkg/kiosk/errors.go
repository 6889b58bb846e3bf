package kiosk

import "errors"

var (
	// ErrNoProvider is returned when no completion provider is given.
	ErrNoProvider = errors.New("kiosk: completion provider is required")

	// ErrNoListener is returned by Run without a transcription listener.
	ErrNoListener = errors.New("kiosk: transcription listener is required")
)
