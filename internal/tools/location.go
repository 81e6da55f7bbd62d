package tools

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/concierge/concierge/internal/geocode"
	"github.com/concierge/concierge/internal/schema"
)

// LocationTool resolves an address or place name to coordinates.
type LocationTool struct {
	client *geocode.Client
}

func NewLocationTool(client *geocode.Client) *LocationTool {
	return &LocationTool{client: client}
}

func (t *LocationTool) Name() string { return string(ToolGetLocation) }

func (t *LocationTool) Description() string {
	return "Resolve an address or place name to geographic coordinates, country and full address."
}

func (t *LocationTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"address": {
				"type": "string",
				"description": "Address or place name to look up"
			}
		},
		"required": ["address"]
	}`)
}

func (t *LocationTool) Execute(ctx context.Context, args map[string]any) schema.ToolResult {
	address, err := argString(args, "address")
	if err != nil {
		return schema.Failf("Invalid arguments: %v", err)
	}

	place, err := t.client.Lookup(ctx, address)
	if errors.Is(err, geocode.ErrNotFound) {
		return schema.Fail("Location not found")
	}
	if err != nil {
		slog.Warn("geocode lookup failed", "address", address, "error", err)
		return schema.Fail("Failed to fetch location data")
	}
	return schema.OK(place)
}
