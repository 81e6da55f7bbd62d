// Package orchestrator drives a single conversational turn: ask the model,
// run at most one requested tool, then ask again for the final answer.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/concierge/concierge/internal/schema"
	"github.com/concierge/concierge/internal/shared/llmutils"
	"github.com/concierge/concierge/internal/tools"
)

// Sink receives the incremental output of a streamed turn.
// Fragment is called once per delta; Done exactly once after the last
// fragment, also when the answer arrived without streaming.
type Sink interface {
	Fragment(text string) error
	Done() error
}

// Orchestrator runs turns against a provider and a tool registry.
type Orchestrator struct {
	provider schema.LLMProvider
	registry *tools.Registry
	opts     schema.ChatOptions

	now func() time.Time
}

func New(provider schema.LLMProvider, registry *tools.Registry, opts schema.ChatOptions) *Orchestrator {
	return &Orchestrator{
		provider: provider,
		registry: registry,
		opts:     opts,
		now:      time.Now,
	}
}

// RunTurn answers the conversation in history and returns the final
// assistant text. history must end with a user message; a system prompt is
// prepended when the history does not carry one.
func (o *Orchestrator) RunTurn(ctx context.Context, history schema.Messages) (string, error) {
	msgs, err := o.firstPass(ctx, &history)
	if err != nil {
		return "", err
	}
	if msgs == nil {
		// The first completion already answered without tools.
		return history.Messages[len(history.Messages)-1].Content, nil
	}

	resp, err := o.provider.Chat(ctx, *msgs, nil, o.opts)
	if err != nil {
		return "", fmt.Errorf("completion after tool call: %w", err)
	}
	return resp.Content, nil
}

// RunTurnStream behaves like RunTurn but delivers the final answer through
// sink. The first completion (and any tool execution) is never streamed;
// only the answer after it is.
func (o *Orchestrator) RunTurnStream(ctx context.Context, history schema.Messages, sink Sink) (string, error) {
	msgs, err := o.firstPass(ctx, &history)
	if err != nil {
		return "", err
	}
	if msgs == nil {
		// Direct answer: emit it as a single fragment.
		content := history.Messages[len(history.Messages)-1].Content
		if err := sink.Fragment(content); err != nil {
			return "", fmt.Errorf("deliver fragment: %w", err)
		}
		if err := sink.Done(); err != nil {
			return "", fmt.Errorf("close stream: %w", err)
		}
		return content, nil
	}

	content, err := o.provider.ChatStream(ctx, *msgs, o.opts, sink.Fragment)
	if err != nil {
		return "", fmt.Errorf("streamed completion after tool call: %w", err)
	}
	if err := sink.Done(); err != nil {
		return "", fmt.Errorf("close stream: %w", err)
	}
	return content, nil
}

// firstPass runs the tool-enabled completion. When the model answers
// directly it appends the answer to history and returns nil. Otherwise it
// executes the first requested tool and returns the messages for the
// follow-up completion.
func (o *Orchestrator) firstPass(ctx context.Context, history *schema.Messages) (*schema.Messages, error) {
	msgs := o.withSystemPrompt(*history)

	resp, err := o.provider.Chat(ctx, msgs, o.registry.Definitions(), o.opts)
	if err != nil {
		return nil, fmt.Errorf("completion: %w", err)
	}

	if !resp.HasToolCalls() {
		history.AddAssistant(resp.Content, nil)
		return nil, nil
	}

	// Only the first requested call is honored; extra calls are dropped.
	call := resp.ToolCalls[0]
	if len(resp.ToolCalls) > 1 {
		slog.Warn("ignoring extra tool calls", "count", len(resp.ToolCalls)-1, "kept", call.Name)
	}

	result := o.invoke(ctx, call)
	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}

	msgs.AddAssistant(resp.Content, []schema.ToolCall{call})
	msgs.AddToolResult(call.ID, string(payload))
	return &msgs, nil
}

// invoke runs a single tool call, mapping registry misses and malformed
// arguments onto failed results so the turn can continue.
func (o *Orchestrator) invoke(ctx context.Context, call schema.ToolCall) schema.ToolResult {
	tool := o.registry.Get(call.Name)
	if tool == nil {
		slog.Warn("model requested unknown tool", "tool", call.Name)
		return schema.Failf("Function %s not found", call.Name)
	}

	args := map[string]any{}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return schema.Failf("Invalid arguments: %v", err)
		}
	}

	slog.Info("executing tool", "call", llmutils.ToolHint(call))
	result := tool.Execute(ctx, args)
	if !result.Success {
		slog.Warn("tool reported failure", "tool", call.Name, "error", result.Error)
	}
	return result
}

func (o *Orchestrator) withSystemPrompt(history schema.Messages) schema.Messages {
	if history.HasRole(schema.RoleSystem) {
		return history.Clone()
	}
	return history.Prepend(schema.NewSystemMessage(systemPrompt(o.now())))
}
