// Package log configures the process-wide slog logger.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// Options selects the handler. An empty Format means JSON when
// GO_ENV=production and text otherwise. A nil Output means stderr.
type Options struct {
	Level  string
	Format string // "text" or "json"
	Output io.Writer
}

var current atomic.Pointer[slog.Logger]

// ParseLevel accepts debug, info, warn(ing) and error in any case.
// Unknown names mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// New builds a logger without installing it.
func New(o Options) *slog.Logger {
	out := o.Output
	if out == nil {
		out = os.Stderr
	}
	format := strings.ToLower(o.Format)
	if format == "" && os.Getenv("GO_ENV") == "production" {
		format = "json"
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(o.Level)}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(out, opts))
	}
	return slog.New(slog.NewTextHandler(out, opts))
}

// Init installs a logger as both L and slog.Default. Later calls replace
// it, so flags parsed after config can still change the level.
func Init(o Options) *slog.Logger {
	l := New(o)
	current.Store(l)
	slog.SetDefault(l)
	return l
}

// L returns the installed logger, installing an info-level text logger
// on first use.
func L() *slog.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	l := New(Options{})
	if current.CompareAndSwap(nil, l) {
		return l
	}
	return current.Load()
}

// Component is L tagged with the component attribute used across the
// kiosk packages.
func Component(name string) *slog.Logger {
	return L().With("component", name)
}
