package audio

import "errors"

var (
	// ErrClosed is returned when enqueueing on a closed coordinator.
	ErrClosed = errors.New("audio: coordinator closed")

	// ErrEmptyClip is returned for clips with no samples.
	ErrEmptyClip = errors.New("audio: empty clip")

	// ErrUnknownFormat is returned for phrase files that are neither .opus nor .pcm.
	ErrUnknownFormat = errors.New("audio: unknown clip format")
)
