package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/concierge/concierge/internal/schema"
	"github.com/concierge/concierge/internal/tools"
)

// fakeProvider scripts completions: each call pops the next response.
type fakeProvider struct {
	responses []schema.CompletionResponse
	streamed  string
	err       error

	calls []providerCall
}

type providerCall struct {
	messages schema.Messages
	tools    []map[string]any
	stream   bool
}

func (p *fakeProvider) Chat(_ context.Context, messages schema.Messages, toolDefs []map[string]any, _ schema.ChatOptions) (schema.CompletionResponse, error) {
	p.calls = append(p.calls, providerCall{messages: messages, tools: toolDefs})
	if p.err != nil {
		return schema.CompletionResponse{}, p.err
	}
	if len(p.responses) == 0 {
		return schema.CompletionResponse{}, errors.New("no scripted response left")
	}
	resp := p.responses[0]
	p.responses = p.responses[1:]
	return resp, nil
}

func (p *fakeProvider) ChatStream(_ context.Context, messages schema.Messages, _ schema.ChatOptions, onDelta func(string) error) (string, error) {
	p.calls = append(p.calls, providerCall{messages: messages, stream: true})
	for _, frag := range strings.SplitAfter(p.streamed, " ") {
		if frag == "" {
			continue
		}
		if err := onDelta(frag); err != nil {
			return "", err
		}
	}
	return p.streamed, nil
}

func (p *fakeProvider) TestConnection(context.Context) error { return nil }

func (p *fakeProvider) DefaultModel() string { return "test-model" }

// echoTool records its invocation and returns a fixed payload.
type echoTool struct {
	name     string
	calls    int
	lastArgs map[string]any
}

func (t *echoTool) Name() string        { return t.name }
func (t *echoTool) Description() string { return "echoes" }
func (t *echoTool) Parameters() json.RawMessage {
	return json.RawMessage(`{"type":"object","properties":{}}`)
}
func (t *echoTool) Execute(_ context.Context, args map[string]any) schema.ToolResult {
	t.calls++
	t.lastArgs = args
	return schema.OK(map[string]any{"echo": true})
}

// collectSink accumulates fragments for assertions.
type collectSink struct {
	fragments []string
	done      int
}

func (s *collectSink) Fragment(text string) error {
	s.fragments = append(s.fragments, text)
	return nil
}

func (s *collectSink) Done() error {
	s.done++
	return nil
}

func registryWith(ts ...schema.Tool) *tools.Registry {
	b := tools.NewRegistryBuilder()
	for _, t := range ts {
		b.WithTool(t)
	}
	return b.Build()
}

func userTurn(content string) schema.Messages {
	msgs := schema.NewMessages()
	msgs.AddUser(content)
	return msgs
}

func toolCallResponse(id, name, args string) schema.CompletionResponse {
	return schema.CompletionResponse{
		ToolCalls:    []schema.ToolCall{{ID: id, Name: name, Arguments: args}},
		FinishReason: "tool_calls",
	}
}

func TestRunTurn_DirectAnswer(t *testing.T) {
	provider := &fakeProvider{responses: []schema.CompletionResponse{
		{Content: "Hello! How can I help?", FinishReason: "stop"},
	}}
	o := New(provider, registryWith(), schema.NewChatOptions("m", 100, 0))

	answer, err := o.RunTurn(context.Background(), userTurn("hi"))
	if err != nil {
		t.Fatalf("RunTurn failed: %v", err)
	}
	if answer != "Hello! How can I help?" {
		t.Errorf("unexpected answer %q", answer)
	}
	if len(provider.calls) != 1 {
		t.Fatalf("expected a single completion, got %d", len(provider.calls))
	}
	first := provider.calls[0].messages.Messages[0]
	if first.Role != schema.RoleSystem {
		t.Errorf("expected system prompt first, got role %q", first.Role)
	}
}

func TestRunTurn_ToolCallThenAnswer(t *testing.T) {
	tool := &echoTool{name: "getWeather"}
	provider := &fakeProvider{responses: []schema.CompletionResponse{
		toolCallResponse("call_1", "getWeather", `{"location":"Berlin"}`),
		{Content: "It is 26.85°C in Berlin.", FinishReason: "stop"},
	}}
	o := New(provider, registryWith(tool), schema.NewChatOptions("m", 100, 0))

	answer, err := o.RunTurn(context.Background(), userTurn("weather in berlin?"))
	if err != nil {
		t.Fatalf("RunTurn failed: %v", err)
	}
	if answer != "It is 26.85°C in Berlin." {
		t.Errorf("unexpected answer %q", answer)
	}
	if tool.calls != 1 {
		t.Fatalf("expected one tool execution, got %d", tool.calls)
	}
	if tool.lastArgs["location"] != "Berlin" {
		t.Errorf("arguments not decoded: %+v", tool.lastArgs)
	}

	if len(provider.calls) != 2 {
		t.Fatalf("expected two completions, got %d", len(provider.calls))
	}
	if provider.calls[0].tools == nil {
		t.Error("first completion should carry tool definitions")
	}
	if provider.calls[1].tools != nil {
		t.Error("second completion must not carry tool definitions")
	}

	// The follow-up request carries the assistant tool call and its result.
	second := provider.calls[1].messages.Messages
	last := second[len(second)-1]
	if last.Role != schema.RoleTool || last.ToolCallID != "call_1" {
		t.Errorf("expected tool result message, got %+v", last)
	}
	var result schema.ToolResult
	if err := json.Unmarshal([]byte(last.Content), &result); err != nil || !result.Success {
		t.Errorf("expected successful encoded result, got %q", last.Content)
	}
	prev := second[len(second)-2]
	if prev.Role != schema.RoleAssistant || len(prev.ToolCalls) != 1 {
		t.Errorf("expected assistant tool-call message, got %+v", prev)
	}
}

func TestRunTurn_OnlyFirstToolCallExecutes(t *testing.T) {
	first := &echoTool{name: "getWeather"}
	second := &echoTool{name: "getLocation"}
	provider := &fakeProvider{responses: []schema.CompletionResponse{
		{
			ToolCalls: []schema.ToolCall{
				{ID: "call_1", Name: "getWeather", Arguments: `{}`},
				{ID: "call_2", Name: "getLocation", Arguments: `{}`},
			},
			FinishReason: "tool_calls",
		},
		{Content: "done", FinishReason: "stop"},
	}}
	o := New(provider, registryWith(first, second), schema.NewChatOptions("m", 100, 0))

	if _, err := o.RunTurn(context.Background(), userTurn("both please")); err != nil {
		t.Fatalf("RunTurn failed: %v", err)
	}
	if first.calls != 1 || second.calls != 0 {
		t.Errorf("expected only the first call to run, got %d/%d", first.calls, second.calls)
	}
}

func TestRunTurn_UnknownToolContinuesTurn(t *testing.T) {
	provider := &fakeProvider{responses: []schema.CompletionResponse{
		toolCallResponse("call_1", "timeTravel", `{}`),
		{Content: "I cannot do that.", FinishReason: "stop"},
	}}
	o := New(provider, registryWith(), schema.NewChatOptions("m", 100, 0))

	answer, err := o.RunTurn(context.Background(), userTurn("go back in time"))
	if err != nil {
		t.Fatalf("RunTurn failed: %v", err)
	}
	if answer != "I cannot do that." {
		t.Errorf("unexpected answer %q", answer)
	}

	second := provider.calls[1].messages.Messages
	last := second[len(second)-1]
	var result schema.ToolResult
	if err := json.Unmarshal([]byte(last.Content), &result); err != nil {
		t.Fatalf("decode tool result: %v", err)
	}
	if result.Success || result.Error != "Function timeTravel not found" {
		t.Errorf("unexpected tool result %+v", result)
	}
}

func TestRunTurn_InvalidArgumentsContinueTurn(t *testing.T) {
	tool := &echoTool{name: "getWeather"}
	provider := &fakeProvider{responses: []schema.CompletionResponse{
		toolCallResponse("call_1", "getWeather", `{not json`),
		{Content: "Sorry, something went wrong with that.", FinishReason: "stop"},
	}}
	o := New(provider, registryWith(tool), schema.NewChatOptions("m", 100, 0))

	if _, err := o.RunTurn(context.Background(), userTurn("weather")); err != nil {
		t.Fatalf("RunTurn failed: %v", err)
	}
	if tool.calls != 0 {
		t.Errorf("tool must not execute on malformed arguments")
	}
	second := provider.calls[1].messages.Messages
	var result schema.ToolResult
	if err := json.Unmarshal([]byte(second[len(second)-1].Content), &result); err != nil {
		t.Fatalf("decode tool result: %v", err)
	}
	if result.Success || !strings.HasPrefix(result.Error, "Invalid arguments") {
		t.Errorf("unexpected tool result %+v", result)
	}
}

func TestRunTurn_ProviderErrorIsFatal(t *testing.T) {
	provider := &fakeProvider{err: errors.New("upstream exploded")}
	o := New(provider, registryWith(), schema.NewChatOptions("m", 100, 0))

	if _, err := o.RunTurn(context.Background(), userTurn("hi")); err == nil {
		t.Fatal("expected error from provider failure")
	}
}

func TestRunTurnStream_AfterToolCall(t *testing.T) {
	tool := &echoTool{name: "getWeather"}
	provider := &fakeProvider{
		responses: []schema.CompletionResponse{
			toolCallResponse("call_1", "getWeather", `{"location":"Berlin"}`),
		},
		streamed: "Sunny and 26.85°C in Berlin.",
	}
	o := New(provider, registryWith(tool), schema.NewChatOptions("m", 100, 0))

	sink := &collectSink{}
	answer, err := o.RunTurnStream(context.Background(), userTurn("weather?"), sink)
	if err != nil {
		t.Fatalf("RunTurnStream failed: %v", err)
	}
	if answer != "Sunny and 26.85°C in Berlin." {
		t.Errorf("unexpected answer %q", answer)
	}
	if got := strings.Join(sink.fragments, ""); got != answer {
		t.Errorf("fragments %q do not concatenate to answer %q", got, answer)
	}
	if sink.done != 1 {
		t.Errorf("expected Done exactly once, got %d", sink.done)
	}
	// The follow-up request is the streamed one and carries no tools.
	if !provider.calls[1].stream {
		t.Error("expected second completion to stream")
	}
}

func TestRunTurnStream_DirectAnswerSingleFragment(t *testing.T) {
	provider := &fakeProvider{responses: []schema.CompletionResponse{
		{Content: "Hello!", FinishReason: "stop"},
	}}
	o := New(provider, registryWith(), schema.NewChatOptions("m", 100, 0))

	sink := &collectSink{}
	answer, err := o.RunTurnStream(context.Background(), userTurn("hi"), sink)
	if err != nil {
		t.Fatalf("RunTurnStream failed: %v", err)
	}
	if answer != "Hello!" || len(sink.fragments) != 1 || sink.fragments[0] != "Hello!" {
		t.Errorf("unexpected stream output %q %v", answer, sink.fragments)
	}
	if sink.done != 1 {
		t.Errorf("expected Done exactly once, got %d", sink.done)
	}
}

func TestRunTurn_ExistingSystemPromptKept(t *testing.T) {
	provider := &fakeProvider{responses: []schema.CompletionResponse{
		{Content: "ok", FinishReason: "stop"},
	}}
	o := New(provider, registryWith(), schema.NewChatOptions("m", 100, 0))

	msgs := schema.NewMessages()
	msgs.AddSystem("You are a pirate.")
	msgs.AddUser("hi")
	if _, err := o.RunTurn(context.Background(), msgs); err != nil {
		t.Fatalf("RunTurn failed: %v", err)
	}

	sent := provider.calls[0].messages.Messages
	if len(sent) != 2 || sent[0].Content != "You are a pirate." {
		t.Errorf("custom system prompt was replaced: %+v", sent)
	}
}
