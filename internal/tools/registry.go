// Package tools holds the built-in tools exposed to the model and the
// registry that serves them during a turn.
package tools

import (
	"encoding/json"

	"github.com/concierge/concierge/internal/appointment"
	"github.com/concierge/concierge/internal/geocode"
	"github.com/concierge/concierge/internal/schema"
	"github.com/concierge/concierge/internal/weather"
)

// ToolName is the canonical name of a built-in tool.
type ToolName string

const (
	ToolGetWeather         ToolName = "getWeather"
	ToolGetLocation        ToolName = "getLocation"
	ToolCreateAppointment  ToolName = "createAppointment"
	ToolGetAppointments    ToolName = "getAppointments"
	ToolUpdateAppointment  ToolName = "updateAppointment"
	ToolDeleteAppointment  ToolName = "deleteAppointment"
	ToolGetAppointmentByID ToolName = "getAppointmentById"
)

// AllToolNames lists every built-in tool in presentation order.
var AllToolNames = []ToolName{
	ToolGetWeather,
	ToolGetLocation,
	ToolCreateAppointment,
	ToolGetAppointments,
	ToolUpdateAppointment,
	ToolDeleteAppointment,
	ToolGetAppointmentByID,
}

// Registry holds a set of named tools and exposes them for execution.
// Definitions preserve registration order so requests are deterministic.
type Registry struct {
	order []string
	tools map[string]schema.Tool
}

// Get returns the tool with the given name, or nil if not found.
func (r *Registry) Get(name string) schema.Tool {
	return r.tools[name]
}

// Definitions returns all tool definitions in OpenAI function-calling format.
func (r *Registry) Definitions() []map[string]any {
	list := make([]map[string]any, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		var params any
		if err := json.Unmarshal(t.Parameters(), &params); err != nil {
			params = map[string]any{"type": "object", "properties": map[string]any{}}
		}
		list = append(list, map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        t.Name(),
				"description": t.Description(),
				"parameters":  params,
			},
		})
	}
	return list
}

// RegistryBuilder accumulates tools during the construction phase.
// Call Build() to produce an immutable Registry ready for use.
type RegistryBuilder struct {
	order []string
	tools map[string]schema.Tool
}

// NewRegistryBuilder returns a fresh RegistryBuilder.
func NewRegistryBuilder() *RegistryBuilder {
	return &RegistryBuilder{tools: make(map[string]schema.Tool)}
}

// WithTool adds a tool and returns the builder, enabling chaining.
func (b *RegistryBuilder) WithTool(tool schema.Tool) *RegistryBuilder {
	if _, seen := b.tools[tool.Name()]; !seen {
		b.order = append(b.order, tool.Name())
	}
	b.tools[tool.Name()] = tool

	return b
}

// Build produces an immutable Registry from the accumulated tools.
func (b *RegistryBuilder) Build() *Registry {
	order := append([]string(nil), b.order...)
	tools := make(map[string]schema.Tool, len(b.tools))
	for k, v := range b.tools {
		tools[k] = v
	}
	return &Registry{order: order, tools: tools}
}

// DefaultRegistry wires up every built-in tool against the given backends.
func DefaultRegistry(wc *weather.Client, gc *geocode.Client, appts *appointment.Service) *Registry {
	b := NewRegistryBuilder()
	for _, name := range AllToolNames {
		switch name {
		case ToolGetWeather:
			b.WithTool(NewWeatherTool(wc))
		case ToolGetLocation:
			b.WithTool(NewLocationTool(gc))
		case ToolCreateAppointment:
			b.WithTool(NewCreateAppointmentTool(appts))
		case ToolGetAppointments:
			b.WithTool(NewGetAppointmentsTool(appts))
		case ToolUpdateAppointment:
			b.WithTool(NewUpdateAppointmentTool(appts))
		case ToolDeleteAppointment:
			b.WithTool(NewDeleteAppointmentTool(appts))
		case ToolGetAppointmentByID:
			b.WithTool(NewGetAppointmentByIDTool(appts))
		}
	}
	return b.Build()
}
