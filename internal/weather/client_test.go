package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestConvertKelvin(t *testing.T) {
	cases := []struct {
		kelvin float64
		unit   string
		want   float64
	}{
		{300.00, UnitCelsius, 26.85},
		{300.00, UnitFahrenheit, 80.33},
		{273.15, UnitCelsius, 0},
		{273.15, UnitFahrenheit, 32},
		{310.93, UnitFahrenheit, 100},
	}
	for _, tc := range cases {
		if got := convertKelvin(tc.kelvin, tc.unit); got != tc.want {
			t.Errorf("convertKelvin(%v, %s) = %v, want %v", tc.kelvin, tc.unit, got, tc.want)
		}
	}
}

func TestCurrent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "Berlin" {
			t.Errorf("unexpected location %q", got)
		}
		if got := r.URL.Query().Get("appid"); got != "owm-key" {
			t.Errorf("unexpected api key %q", got)
		}
		w.Write([]byte(`{
			"main": {"temp": 300.0, "humidity": 55},
			"weather": [{"description": "clear sky"}]
		}`))
	}))
	defer srv.Close()

	c := NewClient("owm-key", srv.URL)
	data, err := c.Current(context.Background(), "Berlin", "")
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if data.Temperature != 26.85 {
		t.Errorf("expected 26.85, got %v", data.Temperature)
	}
	if data.Unit != UnitCelsius {
		t.Errorf("expected default unit celsius, got %q", data.Unit)
	}
	if data.Condition != "clear sky" {
		t.Errorf("unexpected condition %q", data.Condition)
	}
	if data.Humidity != 55 {
		t.Errorf("unexpected humidity %d", data.Humidity)
	}
	if data.Location != "Berlin" {
		t.Errorf("unexpected location %q", data.Location)
	}
}

func TestCurrent_Fahrenheit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"main": {"temp": 300.0, "humidity": 40}, "weather": []}`))
	}))
	defer srv.Close()

	c := NewClient("owm-key", srv.URL)
	data, err := c.Current(context.Background(), "Phoenix", UnitFahrenheit)
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if data.Temperature != 80.33 {
		t.Errorf("expected 80.33, got %v", data.Temperature)
	}
}

func TestCurrent_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"city not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient("owm-key", srv.URL)
	if _, err := c.Current(context.Background(), "Nowhere", ""); err == nil {
		t.Fatal("expected error for HTTP 404")
	}
}
