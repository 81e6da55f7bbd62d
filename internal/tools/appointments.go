package tools

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/concierge/concierge/internal/appointment"
	"github.com/concierge/concierge/internal/schema"
)

// failFromAppointmentError maps domain errors onto the structured failure
// payloads the model can act on. Unexpected errors become a generic failure.
func failFromAppointmentError(op string, err error) schema.ToolResult {
	var conflict *appointment.ConflictError
	if errors.As(err, &conflict) {
		return schema.FailWith(
			"Requested time slot conflicts with an existing appointment",
			map[string]any{"conflict": conflict.Conflict},
		)
	}
	var ambiguous *appointment.AmbiguousError
	if errors.As(err, &ambiguous) {
		return schema.FailWith(
			"Multiple appointments found. Please specify the date.",
			map[string]any{"appointments": ambiguous.Candidates},
		)
	}
	if errors.Is(err, appointment.ErrNotFound) {
		return schema.Fail("No appointment found with the given details")
	}
	slog.Error("appointment operation failed", "op", op, "error", err)
	return schema.Failf("Failed to %s appointment", op)
}

// ---------------------------------------------------------------------------
// createAppointment
// ---------------------------------------------------------------------------

type CreateAppointmentTool struct {
	svc *appointment.Service
}

func NewCreateAppointmentTool(svc *appointment.Service) *CreateAppointmentTool {
	return &CreateAppointmentTool{svc: svc}
}

func (t *CreateAppointmentTool) Name() string { return string(ToolCreateAppointment) }

func (t *CreateAppointmentTool) Description() string {
	return "Book a new appointment. Fails with conflict details if the requested time slot overlaps an existing scheduled or confirmed appointment."
}

func (t *CreateAppointmentTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"title": {"type": "string", "description": "Short title of the appointment"},
			"description": {"type": "string", "description": "Optional longer description"},
			"date": {"type": "string", "description": "Start time as an RFC 3339 timestamp, e.g. 2026-09-01T09:00:00Z"},
			"duration": {"type": "integer", "description": "Duration in minutes, defaults to 60"},
			"clientName": {"type": "string", "description": "Full name of the client"},
			"clientEmail": {"type": "string", "description": "Email address of the client"},
			"clientPhone": {"type": "string", "description": "Optional phone number of the client"}
		},
		"required": ["title", "date", "clientName", "clientEmail"]
	}`)
}

func (t *CreateAppointmentTool) Execute(ctx context.Context, args map[string]any) schema.ToolResult {
	title, err := argString(args, "title")
	if err != nil {
		return schema.Failf("Invalid arguments: %v", err)
	}
	date, err := argTime(args, "date")
	if err != nil {
		return schema.Failf("Invalid arguments: %v", err)
	}
	clientName, err := argString(args, "clientName")
	if err != nil {
		return schema.Failf("Invalid arguments: %v", err)
	}
	clientEmail, err := argString(args, "clientEmail")
	if err != nil {
		return schema.Failf("Invalid arguments: %v", err)
	}
	description, err := argStringOpt(args, "description")
	if err != nil {
		return schema.Failf("Invalid arguments: %v", err)
	}
	duration, err := argIntOpt(args, "duration")
	if err != nil {
		return schema.Failf("Invalid arguments: %v", err)
	}
	clientPhone, err := argStringOpt(args, "clientPhone")
	if err != nil {
		return schema.Failf("Invalid arguments: %v", err)
	}

	appt, err := t.svc.Create(ctx, appointment.CreateParams{
		Title:       title,
		Description: description,
		Date:        date,
		Duration:    duration,
		ClientName:  clientName,
		ClientEmail: clientEmail,
		ClientPhone: clientPhone,
	})
	if err != nil {
		return failFromAppointmentError("create", err)
	}
	return schema.OK(appt)
}

// ---------------------------------------------------------------------------
// getAppointments
// ---------------------------------------------------------------------------

type GetAppointmentsTool struct {
	svc *appointment.Service
}

func NewGetAppointmentsTool(svc *appointment.Service) *GetAppointmentsTool {
	return &GetAppointmentsTool{svc: svc}
}

func (t *GetAppointmentsTool) Name() string { return string(ToolGetAppointments) }

func (t *GetAppointmentsTool) Description() string {
	return "List appointments, optionally filtered by status and/or client email, ordered by date."
}

func (t *GetAppointmentsTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"status": {
				"type": "string",
				"enum": ["scheduled", "confirmed", "cancelled", "completed"],
				"description": "Only return appointments with this status"
			},
			"clientEmail": {"type": "string", "description": "Only return appointments of this client"}
		}
	}`)
}

func (t *GetAppointmentsTool) Execute(ctx context.Context, args map[string]any) schema.ToolResult {
	var status *schema.AppointmentStatus
	if s, err := argStringOpt(args, "status"); err != nil {
		return schema.Failf("Invalid arguments: %v", err)
	} else if s != nil {
		st := schema.AppointmentStatus(*s)
		status = &st
	}
	clientEmail, err := argStringOpt(args, "clientEmail")
	if err != nil {
		return schema.Failf("Invalid arguments: %v", err)
	}

	appts, err := t.svc.List(ctx, status, clientEmail)
	if err != nil {
		return failFromAppointmentError("list", err)
	}
	if appts == nil {
		appts = []schema.Appointment{}
	}
	return schema.OK(map[string]any{"appointments": appts, "count": len(appts)})
}

// ---------------------------------------------------------------------------
// updateAppointment
// ---------------------------------------------------------------------------

type UpdateAppointmentTool struct {
	svc *appointment.Service
}

func NewUpdateAppointmentTool(svc *appointment.Service) *UpdateAppointmentTool {
	return &UpdateAppointmentTool{svc: svc}
}

func (t *UpdateAppointmentTool) Name() string { return string(ToolUpdateAppointment) }

func (t *UpdateAppointmentTool) Description() string {
	return "Update an existing appointment found by client email, and date when the client has several. Only the provided fields are changed."
}

func (t *UpdateAppointmentTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"clientEmail": {"type": "string", "description": "Email address identifying the client"},
			"date": {"type": "string", "description": "Current start time (RFC 3339) to disambiguate between several appointments"},
			"title": {"type": "string", "description": "New title"},
			"description": {"type": "string", "description": "New description"},
			"newDate": {"type": "string", "description": "New start time as an RFC 3339 timestamp"},
			"duration": {"type": "integer", "description": "New duration in minutes"},
			"clientName": {"type": "string", "description": "New client name"},
			"clientPhone": {"type": "string", "description": "New client phone number"},
			"status": {
				"type": "string",
				"enum": ["scheduled", "confirmed", "cancelled", "completed"],
				"description": "New status"
			}
		},
		"required": ["clientEmail"]
	}`)
}

func (t *UpdateAppointmentTool) Execute(ctx context.Context, args map[string]any) schema.ToolResult {
	clientEmail, err := argString(args, "clientEmail")
	if err != nil {
		return schema.Failf("Invalid arguments: %v", err)
	}
	p := appointment.UpdateParams{ClientEmail: clientEmail}

	if p.Date, err = argTimeOpt(args, "date"); err != nil {
		return schema.Failf("Invalid arguments: %v", err)
	}
	if p.Title, err = argStringOpt(args, "title"); err != nil {
		return schema.Failf("Invalid arguments: %v", err)
	}
	if p.Description, err = argStringOpt(args, "description"); err != nil {
		return schema.Failf("Invalid arguments: %v", err)
	}
	if p.NewDate, err = argTimeOpt(args, "newDate"); err != nil {
		return schema.Failf("Invalid arguments: %v", err)
	}
	if p.Duration, err = argIntOpt(args, "duration"); err != nil {
		return schema.Failf("Invalid arguments: %v", err)
	}
	if p.ClientName, err = argStringOpt(args, "clientName"); err != nil {
		return schema.Failf("Invalid arguments: %v", err)
	}
	if p.ClientPhone, err = argStringOpt(args, "clientPhone"); err != nil {
		return schema.Failf("Invalid arguments: %v", err)
	}
	if s, err := argStringOpt(args, "status"); err != nil {
		return schema.Failf("Invalid arguments: %v", err)
	} else if s != nil {
		st := schema.AppointmentStatus(*s)
		p.Status = &st
	}

	appt, err := t.svc.Update(ctx, p)
	if err != nil {
		return failFromAppointmentError("update", err)
	}
	return schema.OK(appt)
}

// ---------------------------------------------------------------------------
// deleteAppointment
// ---------------------------------------------------------------------------

type DeleteAppointmentTool struct {
	svc *appointment.Service
}

func NewDeleteAppointmentTool(svc *appointment.Service) *DeleteAppointmentTool {
	return &DeleteAppointmentTool{svc: svc}
}

func (t *DeleteAppointmentTool) Name() string { return string(ToolDeleteAppointment) }

func (t *DeleteAppointmentTool) Description() string {
	return "Delete an appointment found by client email, and date when the client has several."
}

func (t *DeleteAppointmentTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"clientEmail": {"type": "string", "description": "Email address identifying the client"},
			"date": {"type": "string", "description": "Start time (RFC 3339) to disambiguate between several appointments"}
		},
		"required": ["clientEmail"]
	}`)
}

func (t *DeleteAppointmentTool) Execute(ctx context.Context, args map[string]any) schema.ToolResult {
	clientEmail, err := argString(args, "clientEmail")
	if err != nil {
		return schema.Failf("Invalid arguments: %v", err)
	}
	date, err := argTimeOpt(args, "date")
	if err != nil {
		return schema.Failf("Invalid arguments: %v", err)
	}

	deleted, err := t.svc.Delete(ctx, clientEmail, date)
	if err != nil {
		return failFromAppointmentError("delete", err)
	}
	return schema.OK(map[string]any{"deleted": true, "appointment": deleted})
}

// ---------------------------------------------------------------------------
// getAppointmentById
// ---------------------------------------------------------------------------

type GetAppointmentByIDTool struct {
	svc *appointment.Service
}

func NewGetAppointmentByIDTool(svc *appointment.Service) *GetAppointmentByIDTool {
	return &GetAppointmentByIDTool{svc: svc}
}

func (t *GetAppointmentByIDTool) Name() string { return string(ToolGetAppointmentByID) }

func (t *GetAppointmentByIDTool) Description() string {
	return "Fetch a single appointment by its id."
}

func (t *GetAppointmentByIDTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"id": {"type": "string", "description": "Appointment id"}
		},
		"required": ["id"]
	}`)
}

func (t *GetAppointmentByIDTool) Execute(ctx context.Context, args map[string]any) schema.ToolResult {
	id, err := argString(args, "id")
	if err != nil {
		return schema.Failf("Invalid arguments: %v", err)
	}

	appt, err := t.svc.GetByID(ctx, id)
	if err != nil {
		return failFromAppointmentError("get", err)
	}
	return schema.OK(appt)
}
