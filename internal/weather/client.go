// Package weather wraps the OpenWeatherMap current-weather endpoint.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultAPIBase = "https://api.openweathermap.org/data/2.5"

const (
	UnitCelsius    = "celsius"
	UnitFahrenheit = "fahrenheit"
)

// Data is the normalised weather lookup result.
type Data struct {
	Location    string  `json:"location"`
	Temperature float64 `json:"temperature"`
	Unit        string  `json:"unit"`
	Condition   string  `json:"condition"`
	Humidity    int     `json:"humidity"`
}

// Client looks up current weather conditions by location name.
type Client struct {
	apiKey     string
	apiBase    string
	httpClient *http.Client
}

// NewClient creates a Client. An empty apiBase falls back to the
// OpenWeatherMap API.
func NewClient(apiKey, apiBase string) *Client {
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	return &Client{
		apiKey:     apiKey,
		apiBase:    strings.TrimRight(apiBase, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type owmResponse struct {
	Main struct {
		Temp     float64 `json:"temp"` // Kelvin
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

// Current fetches the current weather for location. unit selects the output
// temperature unit; empty defaults to celsius. Source values are Kelvin.
func (c *Client) Current(ctx context.Context, location, unit string) (Data, error) {
	if unit == "" {
		unit = UnitCelsius
	}

	q := url.Values{}
	q.Set("q", location)
	q.Set("appid", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.apiBase+"/weather?"+q.Encode(), nil)
	if err != nil {
		return Data{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Data{}, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Data{}, fmt.Errorf("weather lookup failed: HTTP %d", resp.StatusCode)
	}

	var body owmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Data{}, fmt.Errorf("parse weather response: %w", err)
	}

	condition := ""
	if len(body.Weather) > 0 {
		condition = body.Weather[0].Description
	}

	return Data{
		Location:    location,
		Temperature: convertKelvin(body.Main.Temp, unit),
		Unit:        unit,
		Condition:   condition,
		Humidity:    body.Main.Humidity,
	}, nil
}

// convertKelvin converts a Kelvin reading to the requested unit, rounded to
// two decimal places. Celsius = K − 273.15; Fahrenheit = C × 9/5 + 32.
func convertKelvin(kelvin float64, unit string) float64 {
	celsius := kelvin - 273.15
	if unit == UnitFahrenheit {
		return round2(celsius*9/5 + 32)
	}
	return round2(celsius)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
