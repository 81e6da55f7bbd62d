// Package geocode wraps the Nominatim place-search endpoint.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAPIBase = "https://nominatim.openstreetmap.org"
	userAgent      = "concierge/0.1 (appointment assistant)"
)

// ErrNotFound is returned when the query matches no place.
var ErrNotFound = errors.New("location not found")

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Place is the normalised geocoding result.
type Place struct {
	Query       string      `json:"query"`
	Coordinates Coordinates `json:"coordinates"`
	Country     string      `json:"country"`
	Timezone    string      `json:"timezone"`
	FullAddress string      `json:"fullAddress"`
}

// Client resolves free-form place queries to coordinates.
type Client struct {
	apiBase    string
	httpClient *http.Client
}

// NewClient creates a Client. An empty apiBase falls back to the public
// Nominatim instance.
func NewClient(apiBase string) *Client {
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	return &Client{
		apiBase:    strings.TrimRight(apiBase, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type nominatimHit struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Lookup resolves query to its best-matching place.
func (c *Client) Lookup(ctx context.Context, query string) (Place, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("q", query)
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.apiBase+"/search?"+q.Encode(), nil)
	if err != nil {
		return Place{}, fmt.Errorf("build request: %w", err)
	}
	// Nominatim's usage policy requires an identifying User-Agent.
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Place{}, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Place{}, fmt.Errorf("place lookup failed: HTTP %d", resp.StatusCode)
	}

	var hits []nominatimHit
	if err := json.NewDecoder(resp.Body).Decode(&hits); err != nil {
		return Place{}, fmt.Errorf("parse place response: %w", err)
	}
	if len(hits) == 0 {
		return Place{}, ErrNotFound
	}

	hit := hits[0]
	lat, err := strconv.ParseFloat(hit.Lat, 64)
	if err != nil {
		return Place{}, fmt.Errorf("parse latitude %q: %w", hit.Lat, err)
	}
	lng, err := strconv.ParseFloat(hit.Lon, 64)
	if err != nil {
		return Place{}, fmt.Errorf("parse longitude %q: %w", hit.Lon, err)
	}

	return Place{
		Query:       query,
		Coordinates: Coordinates{Lat: lat, Lng: lng},
		Country:     countryOf(hit.DisplayName),
		Timezone:    "UTC",
		FullAddress: hit.DisplayName,
	}, nil
}

// countryOf extracts the country as the last comma-separated segment of a
// Nominatim display name.
func countryOf(displayName string) string {
	parts := strings.Split(displayName, ",")
	country := strings.TrimSpace(parts[len(parts)-1])
	if country == "" {
		return "Unknown"
	}
	return country
}
