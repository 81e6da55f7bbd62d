package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/concierge/concierge/internal/appointment"
	"github.com/concierge/concierge/internal/geocode"
	"github.com/concierge/concierge/internal/schema"
	"github.com/concierge/concierge/internal/weather"
)

type memRepo struct {
	appts map[string]schema.Appointment
}

func newMemRepo() *memRepo {
	return &memRepo{appts: make(map[string]schema.Appointment)}
}

func (r *memRepo) Create(_ context.Context, a *schema.Appointment) error {
	r.appts[a.ID] = *a
	return nil
}

func (r *memRepo) ListActive(_ context.Context) ([]schema.Appointment, error) {
	var out []schema.Appointment
	for _, a := range r.appts {
		if a.Status.Active() {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memRepo) List(_ context.Context, f appointment.ListFilter) ([]schema.Appointment, error) {
	var out []schema.Appointment
	for _, a := range r.appts {
		if f.Status != nil && a.Status != *f.Status {
			continue
		}
		if f.ClientEmail != nil && a.ClientEmail != *f.ClientEmail {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *memRepo) FindByClient(_ context.Context, email string, date *time.Time) ([]schema.Appointment, error) {
	var out []schema.Appointment
	for _, a := range r.appts {
		if a.ClientEmail != email {
			continue
		}
		if date != nil && !a.Date.Equal(*date) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*schema.Appointment, error) {
	a, ok := r.appts[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *memRepo) Update(_ context.Context, a *schema.Appointment) error {
	r.appts[a.ID] = *a
	return nil
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	delete(r.appts, id)
	return nil
}

func apptService() *appointment.Service {
	return appointment.NewService(newMemRepo(), nil)
}

func TestRegistry_DefinitionsOrderAndShape(t *testing.T) {
	reg := DefaultRegistry(weather.NewClient("key", ""), geocode.NewClient(""), apptService())

	defs := reg.Definitions()
	if len(defs) != len(AllToolNames) {
		t.Fatalf("expected %d definitions, got %d", len(AllToolNames), len(defs))
	}
	for i, def := range defs {
		if def["type"] != "function" {
			t.Errorf("definition %d missing function type", i)
		}
		fn, ok := def["function"].(map[string]any)
		if !ok {
			t.Fatalf("definition %d missing function body", i)
		}
		if fn["name"] != string(AllToolNames[i]) {
			t.Errorf("definition %d: expected %q, got %v", i, AllToolNames[i], fn["name"])
		}
		if _, ok := fn["parameters"]; !ok {
			t.Errorf("definition %d missing parameters", i)
		}
	}

	if reg.Get("getWeather") == nil {
		t.Error("expected getWeather to be registered")
	}
	if reg.Get("unknown") != nil {
		t.Error("expected nil for unknown tool")
	}
}

func TestWeatherTool(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"Berlin","main":{"temp":300,"humidity":40},"weather":[{"main":"Clear","description":"clear sky"}]}`))
	}))
	defer srv.Close()

	tool := NewWeatherTool(weather.NewClient("key", srv.URL))
	res := tool.Execute(context.Background(), map[string]any{"location": "Berlin"})
	if !res.Success {
		t.Fatalf("expected success, got %q", res.Error)
	}
	data, ok := res.Data.(weather.Data)
	if !ok {
		t.Fatalf("unexpected data type %T", res.Data)
	}
	if data.Temperature != 26.85 || data.Unit != weather.UnitCelsius {
		t.Errorf("unexpected conversion %+v", data)
	}
}

func TestWeatherTool_BackendFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	tool := NewWeatherTool(weather.NewClient("key", srv.URL))
	res := tool.Execute(context.Background(), map[string]any{"location": "Berlin"})
	if res.Success || res.Error != "Failed to fetch weather data" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestWeatherTool_MissingLocation(t *testing.T) {
	tool := NewWeatherTool(weather.NewClient("key", ""))
	res := tool.Execute(context.Background(), map[string]any{})
	if res.Success || !strings.HasPrefix(res.Error, "Invalid arguments") {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestLocationTool_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	tool := NewLocationTool(geocode.NewClient(srv.URL))
	res := tool.Execute(context.Background(), map[string]any{"address": "Nowhere"})
	if res.Success || res.Error != "Location not found" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestCreateAppointmentTool_Defaults(t *testing.T) {
	tool := NewCreateAppointmentTool(apptService())

	res := tool.Execute(context.Background(), map[string]any{
		"title":       "Checkup",
		"date":        "2026-09-01T09:00:00Z",
		"clientName":  "Ada Lovelace",
		"clientEmail": "ada@example.com",
	})
	if !res.Success {
		t.Fatalf("expected success, got %q", res.Error)
	}
	appt, ok := res.Data.(*schema.Appointment)
	if !ok {
		t.Fatalf("unexpected data type %T", res.Data)
	}
	if appt.Duration != 60 || appt.Description != "Appointment with Ada Lovelace" {
		t.Errorf("defaults not applied: %+v", appt)
	}
}

func TestCreateAppointmentTool_Conflict(t *testing.T) {
	svc := apptService()
	tool := NewCreateAppointmentTool(svc)

	args := map[string]any{
		"title":       "First",
		"date":        "2026-09-01T09:00:00Z",
		"clientName":  "Ada",
		"clientEmail": "ada@example.com",
	}
	if res := tool.Execute(context.Background(), args); !res.Success {
		t.Fatalf("seed create failed: %q", res.Error)
	}

	args["title"] = "Second"
	args["date"] = "2026-09-01T09:30:00Z"
	res := tool.Execute(context.Background(), args)
	if res.Success {
		t.Fatal("expected conflict failure")
	}
	if res.Error != "Requested time slot conflicts with an existing appointment" {
		t.Errorf("unexpected error %q", res.Error)
	}
	payload, ok := res.Data.(map[string]any)
	if !ok || payload["conflict"] == nil {
		t.Errorf("expected conflict payload, got %+v", res.Data)
	}
}

func TestCreateAppointmentTool_BadDate(t *testing.T) {
	tool := NewCreateAppointmentTool(apptService())
	res := tool.Execute(context.Background(), map[string]any{
		"title":       "X",
		"date":        "tomorrow at nine",
		"clientName":  "Ada",
		"clientEmail": "ada@example.com",
	})
	if res.Success || !strings.HasPrefix(res.Error, "Invalid arguments") {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestUpdateAppointmentTool_Ambiguous(t *testing.T) {
	svc := apptService()
	create := NewCreateAppointmentTool(svc)
	for _, date := range []string{"2026-09-01T09:00:00Z", "2026-09-03T09:00:00Z"} {
		res := create.Execute(context.Background(), map[string]any{
			"title":       "Session",
			"date":        date,
			"clientName":  "Ada",
			"clientEmail": "ada@example.com",
		})
		if !res.Success {
			t.Fatalf("seed create failed: %q", res.Error)
		}
	}

	tool := NewUpdateAppointmentTool(svc)
	res := tool.Execute(context.Background(), map[string]any{
		"clientEmail": "ada@example.com",
		"title":       "Renamed",
	})
	if res.Success {
		t.Fatal("expected ambiguity failure")
	}
	if res.Error != "Multiple appointments found. Please specify the date." {
		t.Errorf("unexpected error %q", res.Error)
	}
	payload, ok := res.Data.(map[string]any)
	if !ok {
		t.Fatalf("expected candidates payload, got %+v", res.Data)
	}
	candidates, ok := payload["appointments"].([]schema.AppointmentSummary)
	if !ok || len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %+v", payload["appointments"])
	}
}

func TestDeleteAppointmentTool(t *testing.T) {
	svc := apptService()
	create := NewCreateAppointmentTool(svc)
	if res := create.Execute(context.Background(), map[string]any{
		"title":       "Doomed",
		"date":        "2026-09-01T09:00:00Z",
		"clientName":  "Ada",
		"clientEmail": "ada@example.com",
	}); !res.Success {
		t.Fatalf("seed create failed: %q", res.Error)
	}

	tool := NewDeleteAppointmentTool(svc)
	res := tool.Execute(context.Background(), map[string]any{"clientEmail": "ada@example.com"})
	if !res.Success {
		t.Fatalf("expected success, got %q", res.Error)
	}
	payload := res.Data.(map[string]any)
	if payload["deleted"] != true {
		t.Errorf("expected deleted flag, got %+v", payload)
	}

	res = tool.Execute(context.Background(), map[string]any{"clientEmail": "ada@example.com"})
	if res.Success || res.Error != "No appointment found with the given details" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestGetAppointmentsTool_Empty(t *testing.T) {
	tool := NewGetAppointmentsTool(apptService())
	res := tool.Execute(context.Background(), map[string]any{})
	if !res.Success {
		t.Fatalf("expected success, got %q", res.Error)
	}
	payload := res.Data.(map[string]any)
	if payload["count"] != 0 {
		t.Errorf("expected count 0, got %v", payload["count"])
	}
}

func TestGetAppointmentByIDTool_NotFound(t *testing.T) {
	tool := NewGetAppointmentByIDTool(apptService())
	res := tool.Execute(context.Background(), map[string]any{"id": "missing"})
	if res.Success || res.Error != "No appointment found with the given details" {
		t.Fatalf("unexpected result %+v", res)
	}
}
