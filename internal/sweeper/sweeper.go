// Package sweeper runs the periodic appointment maintenance job: marking
// elapsed appointments completed and firing reminder notifications.
package sweeper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	robfigcron "github.com/robfig/cron/v3"

	"github.com/concierge/concierge/internal/appointment"
	"github.com/concierge/concierge/internal/schema"
)

// Announcer is the reminder delivery target, usually notify.Manager.
type Announcer interface {
	Announce(ctx context.Context, event string, appt schema.Appointment)
}

// Sweeper schedules the maintenance job with a cron expression.
type Sweeper struct {
	appts    *appointment.Service
	announce Announcer

	schedule string
	lead     time.Duration

	robfig *robfigcron.Cron
}

// New creates a Sweeper. schedule accepts standard cron expressions and
// descriptors like "@every 1m". lead is how far ahead reminders fire.
func New(appts *appointment.Service, announce Announcer, schedule string, lead time.Duration) *Sweeper {
	return &Sweeper{
		appts:    appts,
		announce: announce,
		schedule: schedule,
		lead:     lead,
		robfig:   robfigcron.New(),
	}
}

// Start arms the schedule and blocks until ctx is cancelled, then waits
// for a running sweep to finish.
func (s *Sweeper) Start(ctx context.Context) error {
	if _, err := s.robfig.AddFunc(s.schedule, func() { s.Sweep(ctx) }); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.schedule, err)
	}
	s.robfig.Start()
	slog.Info("sweeper started", "schedule", s.schedule, "reminder_lead", s.lead)

	<-ctx.Done()
	<-s.robfig.Stop().Done()
	slog.Info("sweeper stopped")
	return ctx.Err()
}

// Sweep runs one maintenance pass. Exposed so the status command and tests
// can trigger it directly.
func (s *Sweeper) Sweep(ctx context.Context) {
	completed, err := s.appts.CompleteElapsed(ctx)
	if err != nil {
		slog.Error("completing elapsed appointments failed", "error", err)
	} else if completed > 0 {
		slog.Info("appointments completed", "count", completed)
	}

	due, err := s.appts.DueForReminder(ctx, s.lead)
	if err != nil {
		slog.Error("collecting due reminders failed", "error", err)
		return
	}
	for _, appt := range due {
		s.announce.Announce(ctx, "reminder", appt)
	}
	if len(due) > 0 {
		slog.Info("reminders sent", "count", len(due))
	}
}
