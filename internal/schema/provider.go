package schema

import "context"

// ChatOptions configures a single completion request.
type ChatOptions struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

func NewChatOptions(model string, maxTokens int, temperature float64) ChatOptions {
	return ChatOptions{
		Model:       model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
}

// CompletionResponse is the normalised response from the completion provider.
type CompletionResponse struct {
	Content      string
	ToolCalls    []ToolCall
	FinishReason string
	Usage        map[string]int // "prompt_tokens", "completion_tokens", "total_tokens"
}

// HasToolCalls reports whether the response contains at least one tool call.
func (r CompletionResponse) HasToolCalls() bool { return len(r.ToolCalls) > 0 }

// LLMProvider is the capability contract the orchestrator depends on.
// Implementations wrap a concrete vendor protocol.
type LLMProvider interface {
	// Chat issues one completion request. tools, when non-empty, is the
	// function-calling schema list; the provider decides whether to call one.
	Chat(ctx context.Context, messages Messages, tools []map[string]any, opts ChatOptions) (CompletionResponse, error)

	// ChatStream issues one streaming completion request without tool
	// schema. onDelta is invoked once per text fragment in arrival order;
	// returning an error stops consumption. The accumulated text is
	// returned on success.
	ChatStream(ctx context.Context, messages Messages, opts ChatOptions, onDelta func(string) error) (string, error)

	// TestConnection verifies the provider endpoint is reachable with the
	// configured credentials.
	TestConnection(ctx context.Context) error

	DefaultModel() string
}
