package audioio

import (
	"context"
	"io"
)

// Source captures PCM16 audio, typically from a microphone.
type Source interface {
	// Start opens the device. Starting a running source is a no-op.
	Start(ctx context.Context) error

	// Stop closes the device; Read then returns io.EOF. Stop is idempotent
	// and the source may be started again.
	Stop() error

	// Read blocks for the next chunk.
	Read(ctx context.Context) (AudioChunk, error)

	Config() Config

	// Name identifies the backend, e.g. "malgo" or "mock".
	Name() string

	// Close releases the device for good.
	io.Closer
}

// Sink plays PCM16 audio, typically on a speaker.
type Sink interface {
	Start(ctx context.Context) error
	Stop() error

	// Write queues a chunk. Chunks at another sample rate are converted.
	Write(ctx context.Context, chunk AudioChunk) error

	// Flush blocks until everything written has been heard.
	Flush(ctx context.Context) error

	// Clear drops queued audio at once.
	Clear() error

	Config() Config
	Name() string
	io.Closer
}

// Stats counts the traffic through a device.
type Stats struct {
	Backend string `json:"backend"`
	Running bool   `json:"running"`
	Chunks  int64  `json:"chunks"`
	Samples int64  `json:"samples"`

	// Dropped counts capture chunks lost to a full queue.
	Dropped int64 `json:"dropped"`
}

// StatsReporter is implemented by devices that keep Stats.
type StatsReporter interface {
	Stats() Stats
}
