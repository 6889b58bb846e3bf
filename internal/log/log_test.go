package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{" warn ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		opts     Options
		wantJSON bool
	}{
		{"text by default", "", Options{Level: "info"}, false},
		{"json in production", "production", Options{Level: "info"}, true},
		{"explicit json", "", Options{Level: "info", Format: "json"}, true},
		{"explicit text wins", "production", Options{Level: "info", Format: "text"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GO_ENV", tt.env)
			var buf bytes.Buffer
			tt.opts.Output = &buf
			New(tt.opts).Info("order placed", "total", "6.98")

			out := strings.TrimSpace(buf.String())
			if isJSON := strings.HasPrefix(out, "{"); isJSON != tt.wantJSON {
				t.Errorf("json = %v, want %v: %q", isJSON, tt.wantJSON, out)
			}
		})
	}
}

func TestNewRespectsLevel(t *testing.T) {
	t.Setenv("GO_ENV", "")

	var buf bytes.Buffer
	l := New(Options{Level: "warn", Output: &buf})
	l.Info("hidden")
	l.Warn("shown", "key", "value")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "key=value") {
		t.Errorf("expected text-formatted warn line, got %q", out)
	}
}

func TestInitReplacesDefault(t *testing.T) {
	t.Setenv("GO_ENV", "")
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	l := Init(Options{Level: "debug", Output: &buf})
	if L() != l || slog.Default() != l {
		t.Fatal("Init should install the logger globally")
	}

	Component("cart").Debug("line added")
	if !strings.Contains(buf.String(), "component=cart") {
		t.Errorf("expected component attribute, got %q", buf.String())
	}
}
