// Package metrics exposes the kiosk's Prometheus collectors and adapts them
// to the observer hooks of the agent, tool table, audio coordinator and
// transcription controller.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/teslashibe/go-kiosk/pkg/agent"
	"github.com/teslashibe/go-kiosk/pkg/audio"
	"github.com/teslashibe/go-kiosk/pkg/tools"
	"github.com/teslashibe/go-kiosk/pkg/transcribe"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "kiosk"

// Session outcomes.
const (
	OutcomeConfirmed = "confirmed"
	OutcomeAbandoned = "abandoned"
	OutcomeError     = "error"
)

// Metrics holds all Prometheus metrics for the kiosk.
type Metrics struct {
	registry *prometheus.Registry

	// Agent
	CompletionsTotal   *prometheus.CounterVec
	CompletionDuration prometheus.Histogram

	// Tools
	ToolCallsTotal *prometheus.CounterVec

	// Audio
	AudioQueueDepth prometheus.Gauge

	// Sessions
	SessionsTotal     *prometheus.CounterVec
	SessionsActive    prometheus.Gauge
	TranscriptsTotal  *prometheus.CounterVec
	OrderValueDollars prometheus.Histogram
}

// New creates a Metrics instance with every collector registered on a
// private registry. An empty namespace uses DefaultNamespace.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		CompletionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "completions_total",
				Help:      "Total chat completions requested by the agent",
			},
			[]string{"status"},
		),
		CompletionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "completion_duration_seconds",
				Help:      "Chat completion latency in seconds",
				Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16},
			},
		),
		ToolCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tool_calls_total",
				Help:      "Total tool calls dispatched",
			},
			[]string{"tool", "status"},
		),
		AudioQueueDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "audio_queue_depth",
				Help:      "Clips waiting in the playback queue",
			},
		),
		SessionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_total",
				Help:      "Total ordering sessions by outcome",
			},
			[]string{"outcome"},
		),
		SessionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "sessions_active",
				Help:      "Ordering sessions in progress",
			},
		),
		TranscriptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transcripts_total",
				Help:      "Transcription events by kind",
			},
			[]string{"kind"},
		),
		OrderValueDollars: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "order_value_dollars",
				Help:      "Value of confirmed orders in dollars",
				Buckets:   []float64{5, 10, 20, 40, 80},
			},
		),
	}

	registry.MustRegister(
		m.CompletionsTotal,
		m.CompletionDuration,
		m.ToolCallsTotal,
		m.AudioQueueDepth,
		m.SessionsTotal,
		m.SessionsActive,
		m.TranscriptsTotal,
		m.OrderValueDollars,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry returns the registry backing m.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Gatherer returns m as a prometheus.Gatherer for the HTTP exporter.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

var (
	_ agent.Observer      = (*Metrics)(nil)
	_ tools.Hook          = (*Metrics)(nil)
	_ audio.DepthObserver = (*Metrics)(nil)
	_ transcribe.Observer = (*Metrics)(nil)
)

// CompletionObserved records one chat completion.
func (m *Metrics) CompletionObserved(err error, seconds float64) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.CompletionsTotal.WithLabelValues(status).Inc()
	m.CompletionDuration.Observe(seconds)
}

// ToolInvoked records one dispatched tool call.
func (m *Metrics) ToolInvoked(_ context.Context, ev tools.Event) {
	m.ToolCallsTotal.WithLabelValues(ev.Kind.String(), ev.Status).Inc()
}

// QueueDepth records the playback queue depth.
func (m *Metrics) QueueDepth(depth int) {
	m.AudioQueueDepth.Set(float64(depth))
}

// TranscriptObserved records one transcription event.
func (m *Metrics) TranscriptObserved(kind string) {
	m.TranscriptsTotal.WithLabelValues(kind).Inc()
}

// SessionStarted marks a session as active.
func (m *Metrics) SessionStarted() {
	m.SessionsActive.Inc()
}

// SessionEnded records a finished session. total is the confirmed order
// value in dollars and is ignored unless outcome is OutcomeConfirmed.
func (m *Metrics) SessionEnded(outcome string, total float64) {
	m.SessionsActive.Dec()
	m.SessionsTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeConfirmed {
		m.OrderValueDollars.Observe(total)
	}
}
