// Package agent runs the tool-calling conversation loop for one customer.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/teslashibe/go-kiosk/pkg/inference"
	"github.com/teslashibe/go-kiosk/pkg/menu"
	"github.com/teslashibe/go-kiosk/pkg/tools"
)

// Dispatcher executes tool calls.
type Dispatcher interface {
	Definitions() []inference.Tool
	Dispatch(ctx context.Context, call inference.ToolCall) (tools.Result, error)
}

// Agent owns the conversation history and drives completions.
// At most one Invoke may run at a time.
type Agent struct {
	provider   inference.Provider
	dispatcher Dispatcher
	config     *Config
	keys       *KeyRing
	system     string
	logger     *slog.Logger

	turn sync.Mutex // serializes Invoke

	mu       sync.Mutex
	messages []inference.Message
}

// New builds an agent seeded with the rendered system prompt. Rotation
// without keys is rejected here rather than at Invoke.
func New(provider inference.Provider, dispatcher Dispatcher, catalog *menu.Catalog, opts ...Option) (*Agent, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if provider == nil {
		return nil, &ConfigurationError{Field: "provider", Message: "completion provider is required"}
	}
	if dispatcher == nil {
		return nil, &ConfigurationError{Field: "dispatcher", Message: "tool dispatcher is required"}
	}
	if cfg.MaxIterations < 1 {
		return nil, &ConfigurationError{Field: "max_iterations", Message: "must be at least 1"}
	}

	var ring *KeyRing
	if cfg.RotateKeys {
		r, err := NewKeyRing(cfg.Keys)
		if err != nil {
			return nil, err
		}
		ring = r
	}

	system, err := RenderPrompt(cfg.SystemPrompt, catalog)
	if err != nil {
		return nil, err
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	a := &Agent{
		provider:   provider,
		dispatcher: dispatcher,
		config:     cfg,
		keys:       ring,
		system:     system,
		logger:     cfg.Logger.With("component", "agent"),
	}
	a.Reset()
	return a, nil
}

// Invoke appends text as a user turn and runs completions until one
// carries no tool calls. confirmed is true if any call in this Invoke was
// confirm_order. Completion and unknown-tool errors are returned as is.
func (a *Agent) Invoke(ctx context.Context, text string) (reply string, confirmed bool, err error) {
	a.turn.Lock()
	defer a.turn.Unlock()

	a.append(inference.NewUserMessage(text))
	defs := a.dispatcher.Definitions()

	for iteration := 0; ; iteration++ {
		if iteration >= a.config.MaxIterations {
			return "", confirmed, fmt.Errorf("%w (%d)", ErrTooManyIterations, a.config.MaxIterations)
		}

		if a.config.Filler != nil {
			a.config.Filler(ctx, iteration)
		}

		req := &inference.ChatRequest{
			Messages:    a.Messages(),
			Model:       a.config.Model,
			MaxTokens:   a.config.MaxTokens,
			Temperature: a.config.Temperature,
			Tools:       defs,
		}
		if a.keys != nil {
			req.APIKey = a.keys.Key(iteration)
		}

		start := time.Now()
		resp, err := a.provider.Chat(ctx, req)
		if a.config.Observer != nil {
			a.config.Observer.CompletionObserved(err, time.Since(start).Seconds())
		}
		if err != nil {
			return "", confirmed, err
		}

		msg := resp.Message
		msg.Role = inference.RoleAssistant
		a.append(msg)

		a.logger.Debug("completion",
			"iteration", iteration,
			"tool_calls", len(msg.ToolCalls),
		)

		if !msg.HasToolCalls() {
			return msg.Content, confirmed, nil
		}

		for i, call := range msg.ToolCalls {
			res, err := a.dispatcher.Dispatch(ctx, call)
			if err != nil {
				a.abandonCalls(msg.ToolCalls[i:], err)
				return "", confirmed, err
			}
			if res.Confirmed {
				confirmed = true
			}
			a.append(inference.NewToolMessage(call.ID, call.Name, res.Content))
		}
	}
}

// abandonCalls answers calls that will not be dispatched so every
// tool_call_id in history keeps a matching tool message.
func (a *Agent) abandonCalls(calls []inference.ToolCall, cause error) {
	content := "error: " + cause.Error()
	for _, call := range calls {
		a.append(inference.NewToolMessage(call.ID, call.Name, content))
	}
}

func (a *Agent) append(msg inference.Message) {
	a.mu.Lock()
	a.messages = append(a.messages, msg)
	a.mu.Unlock()
}

// Messages returns a copy of the conversation history.
func (a *Agent) Messages() []inference.Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]inference.Message, len(a.messages))
	copy(out, a.messages)
	return out
}

// Reset clears the history back to the system prompt.
func (a *Agent) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.messages = []inference.Message{inference.NewSystemMessage(a.system)}
}

// SystemPrompt returns the rendered system prompt.
func (a *Agent) SystemPrompt() string {
	return a.system
}
