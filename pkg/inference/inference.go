// Package inference is the chat-completions client behind the ordering
// agent. It speaks the OpenAI-compatible API with function tools, so any
// compatible host works by changing the base URL:
//
//	client, _ := inference.NewClient(
//	    inference.WithBaseURL("https://api.groq.com/openai/v1"),
//	    inference.WithModel("gemma2-9b-it"),
//	)
//	resp, _ := client.Chat(ctx, &inference.ChatRequest{Messages: history, Tools: tools, APIKey: key})
package inference

import "context"

// Provider completes a conversation, possibly with tool calls.
type Provider interface {
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// Health verifies the endpoint and the configured key.
	Health(ctx context.Context) error

	Close() error
}

// ChatRequest is one completion call. Zero values fall back to the
// client's configuration.
type ChatRequest struct {
	Messages []Message
	Tools    []Tool

	// ToolChoice is "auto", "none" or "required".
	ToolChoice string

	Model       string
	MaxTokens   int
	Temperature float64
	TopP        float64
	Stop        []string

	// APIKey authenticates this request only, which is how the agent
	// rotates keys without touching the client.
	APIKey string
}

// ChatResponse carries the first choice of a completion.
type ChatResponse struct {
	Message      Message
	FinishReason string // "stop", "tool_calls", "length"
	Model        string
	Usage        Usage
	LatencyMs    int64
}

// Usage is the token accounting of one completion.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
