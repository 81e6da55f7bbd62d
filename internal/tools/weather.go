package tools

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/concierge/concierge/internal/schema"
	"github.com/concierge/concierge/internal/weather"
)

// WeatherTool reports current conditions for a location.
type WeatherTool struct {
	client *weather.Client
}

func NewWeatherTool(client *weather.Client) *WeatherTool {
	return &WeatherTool{client: client}
}

func (t *WeatherTool) Name() string { return string(ToolGetWeather) }

func (t *WeatherTool) Description() string {
	return "Get the current weather for a given location. Temperatures are returned in celsius unless fahrenheit is requested."
}

func (t *WeatherTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"location": {
				"type": "string",
				"description": "City name, e.g. 'Berlin' or 'San Francisco'"
			},
			"unit": {
				"type": "string",
				"enum": ["celsius", "fahrenheit"],
				"description": "Temperature unit, defaults to celsius"
			}
		},
		"required": ["location"]
	}`)
}

func (t *WeatherTool) Execute(ctx context.Context, args map[string]any) schema.ToolResult {
	location, err := argString(args, "location")
	if err != nil {
		return schema.Failf("Invalid arguments: %v", err)
	}
	unit := weather.UnitCelsius
	if u, _ := argStringOpt(args, "unit"); u != nil && *u != "" {
		unit = *u
	}

	data, err := t.client.Current(ctx, location, unit)
	if err != nil {
		slog.Warn("weather lookup failed", "location", location, "error", err)
		return schema.Fail("Failed to fetch weather data")
	}
	return schema.OK(data)
}
