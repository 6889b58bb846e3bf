package inference

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Mock is a scriptable Provider for tests. A nil ChatFunc makes Chat fail
// with ErrProviderUnavailable.
type Mock struct {
	ChatFunc   func(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
	HealthFunc func(ctx context.Context) error
	CloseFunc  func() error

	mu       sync.Mutex
	calls    []MockCall
	requests []ChatRequest
}

// MockCall is one recorded invocation.
type MockCall struct {
	Method string
	Time   time.Time
}

// NewMock answers every Chat with "Mock response".
func NewMock() *Mock {
	return &Mock{
		ChatFunc: func(context.Context, *ChatRequest) (*ChatResponse, error) {
			return &ChatResponse{
				Message:      NewAssistantMessage("Mock response"),
				FinishReason: "stop",
				Usage:        Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
			}, nil
		},
	}
}

// NewScripted replays messages one per Chat, then fails.
func NewScripted(messages ...Message) *Mock {
	m := &Mock{}
	pending := append([]Message(nil), messages...)
	m.ChatFunc = func(context.Context, *ChatRequest) (*ChatResponse, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		if len(pending) == 0 {
			return nil, WrapError("mock", fmt.Errorf("script exhausted after %d responses", len(messages)))
		}
		msg := pending[0]
		pending = pending[1:]

		resp := &ChatResponse{Message: msg, FinishReason: "stop"}
		if msg.HasToolCalls() {
			resp.FinishReason = "tool_calls"
		}
		return resp, nil
	}
	return m
}

// WithError fails every Chat and Health with err.
func WithError(err error) *Mock {
	return &Mock{
		ChatFunc:   func(context.Context, *ChatRequest) (*ChatResponse, error) { return nil, err },
		HealthFunc: func(context.Context) error { return err },
	}
}

func (m *Mock) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	m.record("Chat", req)
	if m.ChatFunc == nil {
		return nil, WrapError("mock", ErrProviderUnavailable)
	}
	return m.ChatFunc(ctx, req)
}

func (m *Mock) Health(ctx context.Context) error {
	m.record("Health", nil)
	if m.HealthFunc == nil {
		return nil
	}
	return m.HealthFunc(ctx)
}

func (m *Mock) Close() error {
	m.record("Close", nil)
	if m.CloseFunc == nil {
		return nil
	}
	return m.CloseFunc()
}

func (m *Mock) record(method string, req *ChatRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockCall{Method: method, Time: time.Now()})
	if req == nil {
		return
	}
	snapshot := *req
	snapshot.Messages = append([]Message(nil), req.Messages...)
	m.requests = append(m.requests, snapshot)
}

// Calls returns a copy of the call log.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.calls...)
}

// Requests returns every ChatRequest received, with the history as it
// was at call time.
func (m *Mock) Requests() []ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ChatRequest(nil), m.requests...)
}

// CallCount counts calls to method.
func (m *Mock) CallCount(method string) int {
	n := 0
	for _, c := range m.Calls() {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Reset forgets calls and requests. A scripted Mock keeps its position.
func (m *Mock) Reset() {
	m.mu.Lock()
	m.calls, m.requests = nil, nil
	m.mu.Unlock()
}

var _ Provider = (*Mock)(nil)
