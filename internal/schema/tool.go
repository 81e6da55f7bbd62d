package schema

import (
	"context"
	"encoding/json"
	"fmt"
)

// Tool is the interface all model-callable capabilities must satisfy.
type Tool interface {
	Name() string
	Description() string
	// Parameters returns the JSON Schema (as raw JSON bytes) for this tool's parameters.
	Parameters() json.RawMessage
	// Execute runs the capability. Implementations catch every failure and
	// convert it into a failed ToolResult; they never panic or leak errors.
	Execute(ctx context.Context, args map[string]any) ToolResult
}

// ToolResult is the outcome of one capability invocation. It is always
// JSON-serialisable and becomes the content of the synthetic tool message
// fed back to the completion provider.
type ToolResult struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK returns a successful ToolResult carrying data.
func OK(data any) ToolResult {
	return ToolResult{Success: true, Data: data}
}

// Fail returns a failed ToolResult with the given error message.
func Fail(msg string) ToolResult {
	return ToolResult{Success: false, Error: msg}
}

// Failf returns a failed ToolResult with a formatted error message.
func Failf(format string, args ...any) ToolResult {
	return ToolResult{Success: false, Error: fmt.Sprintf(format, args...)}
}

// FailWith returns a failed ToolResult that also carries structured data,
// e.g. candidate lists for disambiguation.
func FailWith(msg string, data any) ToolResult {
	return ToolResult{Success: false, Error: msg, Data: data}
}
