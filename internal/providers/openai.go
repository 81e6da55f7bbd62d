// Package providers implements the completion-provider contract over the
// OpenAI-compatible chat-completions wire protocol.
package providers

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/concierge/concierge/internal/schema"
)

const defaultAPIBase = "https://api.openai.com/v1"

// OpenAIProvider makes direct HTTP calls to any OpenAI-compatible endpoint.
type OpenAIProvider struct {
	apiKey       string
	apiBase      string
	defaultModel string
	httpClient   *http.Client
}

// New constructs a provider. An empty apiBase falls back to the OpenAI API.
func New(apiKey, apiBase, defaultModel string) *OpenAIProvider {
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	return &OpenAIProvider{
		apiKey:       apiKey,
		apiBase:      strings.TrimRight(apiBase, "/"),
		defaultModel: defaultModel,
		httpClient:   &http.Client{Timeout: 120 * time.Second},
	}
}

func (p *OpenAIProvider) DefaultModel() string { return p.defaultModel }

// Chat implements schema.LLMProvider.
func (p *OpenAIProvider) Chat(
	ctx context.Context,
	messages schema.Messages,
	tools []map[string]any,
	opts schema.ChatOptions,
) (schema.CompletionResponse, error) {
	body := p.requestBody(messages, opts, false)
	if len(tools) > 0 {
		body["tools"] = tools
		body["tool_choice"] = "auto"
	}

	raw, err := p.post(ctx, "/chat/completions", body, "")
	if err != nil {
		return schema.CompletionResponse{}, err
	}
	defer raw.Close()

	data, err := io.ReadAll(raw)
	if err != nil {
		return schema.CompletionResponse{}, fmt.Errorf("read response: %w", err)
	}
	return parseChatResponse(data)
}

// ChatStream implements schema.LLMProvider. Tool schema is never attached to
// streaming requests; the stream is guaranteed to be text-only.
func (p *OpenAIProvider) ChatStream(
	ctx context.Context,
	messages schema.Messages,
	opts schema.ChatOptions,
	onDelta func(string) error,
) (string, error) {
	body := p.requestBody(messages, opts, true)

	raw, err := p.post(ctx, "/chat/completions", body, "text/event-stream")
	if err != nil {
		return "", err
	}
	defer raw.Close()

	return consumeStream(raw, onDelta)
}

// TestConnection verifies the endpoint and credentials with a models listing.
func (p *OpenAIProvider) TestConnection(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiBase+"/models", nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, friendlyHTTPError(resp.StatusCode, raw))
	}
	return nil
}

func (p *OpenAIProvider) requestBody(messages schema.Messages, opts schema.ChatOptions, stream bool) map[string]any {
	model := opts.Model
	if model == "" {
		model = p.defaultModel
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1000
	}

	body := map[string]any{
		"model":       model,
		"messages":    wireMessages(messages),
		"max_tokens":  maxTokens,
		"temperature": opts.Temperature,
	}
	if stream {
		body["stream"] = true
	}
	return body
}

// post issues the request and returns the response body on HTTP 200.
// Any other outcome is an error; callers treat it as a provider failure.
func (p *OpenAIProvider) post(ctx context.Context, path string, body map[string]any, accept string) (io.ReadCloser, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiBase+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, friendlyHTTPError(resp.StatusCode, raw))
	}
	return resp.Body, nil
}

// ---------------------------------------------------------------------------
// Wire conversion
// ---------------------------------------------------------------------------

func wireMessages(messages schema.Messages) []map[string]any {
	out := make([]map[string]any, 0, len(messages.Messages))
	for _, m := range messages.Messages {
		out = append(out, messageToWireMap(m))
	}
	return out
}

func messageToWireMap(m schema.Message) map[string]any {
	wire := map[string]any{
		"role":    m.Role,
		"content": m.Content,
	}
	if len(m.ToolCalls) > 0 {
		calls := make([]map[string]any, 0, len(m.ToolCalls))
		for _, tc := range m.ToolCalls {
			calls = append(calls, map[string]any{
				"id":   tc.ID,
				"type": "function",
				"function": map[string]any{
					"name":      tc.Name,
					"arguments": tc.Arguments,
				},
			})
		}
		wire["tool_calls"] = calls
	}
	if m.ToolCallID != "" {
		wire["tool_call_id"] = m.ToolCallID
	}
	return wire
}

// ---------------------------------------------------------------------------
// Response parsing
// ---------------------------------------------------------------------------

type chatRespBody struct {
	Choices []struct {
		Message struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				ID       string `json:"id"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func parseChatResponse(raw []byte) (schema.CompletionResponse, error) {
	var body chatRespBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return schema.CompletionResponse{}, fmt.Errorf("parse completion response: %w", err)
	}
	if len(body.Choices) == 0 {
		return schema.CompletionResponse{}, fmt.Errorf("empty choices in response")
	}

	choice := body.Choices[0]

	var toolCalls []schema.ToolCall
	for _, tc := range choice.Message.ToolCalls {
		toolCalls = append(toolCalls, schema.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}

	finish := choice.FinishReason
	if finish == "" {
		finish = "stop"
	}

	return schema.CompletionResponse{
		Content:      choice.Message.Content,
		ToolCalls:    toolCalls,
		FinishReason: finish,
		Usage: map[string]int{
			"prompt_tokens":     body.Usage.PromptTokens,
			"completion_tokens": body.Usage.CompletionTokens,
			"total_tokens":      body.Usage.TotalTokens,
		},
	}, nil
}

// ---------------------------------------------------------------------------
// SSE consumer
// ---------------------------------------------------------------------------

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// consumeStream reads SSE lines from body, invoking onDelta for each content
// fragment. Consumption stops on [DONE], on body end, or when onDelta
// returns an error (caller gone); the accumulated text is returned.
func consumeStream(body io.Reader, onDelta func(string) error) (string, error) {
	var content strings.Builder

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(line[5:])
		if data == "" {
			continue
		}
		if data == "[DONE]" {
			break
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}

		content.WriteString(delta)
		if onDelta != nil {
			if err := onDelta(delta); err != nil {
				return content.String(), fmt.Errorf("deliver fragment: %w", err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return content.String(), fmt.Errorf("read stream: %w", err)
	}

	return content.String(), nil
}

func friendlyHTTPError(code int, body []byte) string {
	if code == http.StatusTooManyRequests {
		return "rate limit exceeded"
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 300 {
		s = s[:300]
	}
	return s
}
