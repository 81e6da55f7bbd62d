// Package llmutils holds small helpers shared by the orchestration and
// transport layers.
package llmutils

import (
	"fmt"

	"github.com/concierge/concierge/internal/schema"
)

// Truncate shortens a string to at most n characters, adding "..." if it was truncated.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// StringOrDefault returns s if it's not empty, or def if s is empty.
func StringOrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// ToolHint generates a short log hint for a tool call, e.g. `getWeather({"location":"Berlin"})`.
func ToolHint(tc schema.ToolCall) string {
	if tc.Arguments == "" {
		return tc.Name
	}
	return fmt.Sprintf("%s(%s)", tc.Name, Truncate(tc.Arguments, 80))
}
