package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/teslashibe/go-kiosk/internal/httpc"
)

const providerClient = "client"

// Client talks to an OpenAI-compatible /chat/completions endpoint.
type Client struct {
	cfg     *Config
	baseURL string
	http    *http.Client
	retry   *httpc.Retrier
	logger  *slog.Logger
}

// NewClient validates the options. An API key is optional so local
// servers such as Ollama work.
func NewClient(opts ...Option) (*Client, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	logger := cfg.Logger.With("component", "inference.client")
	client := httpc.New(cfg.Timeout)
	return &Client{
		cfg:     cfg,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    client,
		retry:   &httpc.Retrier{Client: client, Retries: cfg.MaxRetries, Delay: cfg.RetryDelay, Logger: logger},
		logger:  logger,
	}, nil
}

// Chat runs one completion. Request fields left zero take the client
// defaults, and req.APIKey overrides the configured key for this call.
func (c *Client) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	start := time.Now()

	body, err := json.Marshal(c.wireRequest(req))
	if err != nil {
		return nil, WrapError(providerClient, fmt.Errorf("marshal request: %w", err))
	}

	key := req.APIKey
	if key == "" {
		key = c.cfg.APIKey
	}

	resp, err := c.retry.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		r, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		r.Header.Set("Content-Type", "application/json")
		authorize(r, key)
		return r, nil
	})
	if err != nil {
		return nil, WrapError(providerClient, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var out wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, WrapError(providerClient, fmt.Errorf("decode response: %w", err))
	}
	if len(out.Choices) == 0 {
		return nil, WrapError(providerClient, ErrNoChoices)
	}
	choice := out.Choices[0]
	latency := time.Since(start)

	c.logger.Debug("chat completion",
		"model", out.Model,
		"finish_reason", choice.FinishReason,
		"tool_calls", len(choice.Message.ToolCalls),
		"latency", latency,
	)

	return &ChatResponse{
		Message: Message{
			Role:      RoleAssistant,
			Content:   choice.Message.Content,
			ToolCalls: fromWireToolCalls(choice.Message.ToolCalls),
		},
		FinishReason: choice.FinishReason,
		Model:        out.Model,
		Usage: Usage{
			PromptTokens:     out.Usage.PromptTokens,
			CompletionTokens: out.Usage.CompletionTokens,
			TotalTokens:      out.Usage.TotalTokens,
		},
		LatencyMs: latency.Milliseconds(),
	}, nil
}

func (c *Client) wireRequest(req *ChatRequest) wireRequest {
	w := wireRequest{
		Model:       req.Model,
		Messages:    toWireMessages(req.Messages),
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
		Stop:        req.Stop,
		Tools:       toWireTools(req.Tools),
		ToolChoice:  req.ToolChoice,
	}
	if w.Model == "" {
		w.Model = c.cfg.Model
	}
	if w.MaxTokens == 0 {
		w.MaxTokens = c.cfg.MaxTokens
	}
	if w.Temperature == 0 {
		w.Temperature = c.cfg.Temperature
	}
	return w
}

// Health lists models, which checks reachability and the key.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return WrapError(providerClient, err)
	}
	authorize(req, c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return WrapError(providerClient, fmt.Errorf("health check: %w", err))
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	return nil
}

// Close drops idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func authorize(r *http.Request, key string) {
	if key != "" {
		r.Header.Set("Authorization", "Bearer "+key)
	}
}

func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	apiErr := &APIError{Provider: providerClient, StatusCode: resp.StatusCode, Message: string(body)}

	var w wireError
	if json.Unmarshal(body, &w) == nil && w.Error.Message != "" {
		apiErr.Message, apiErr.Code = w.Error.Message, w.Error.Code
	}
	return apiErr
}

var _ Provider = (*Client)(nil)
