// Package appointment enforces scheduling invariants and resolves
// client-facing ambiguity, independent of the storage technology.
package appointment

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/concierge/concierge/internal/schema"
)

// DefaultDuration is applied when a creation request omits the duration.
const DefaultDuration = 60 // minutes

// ListFilter narrows a listing. Nil fields mean no filtering.
type ListFilter struct {
	Status      *schema.AppointmentStatus
	ClientEmail *string
}

// Repository is the abstract persistence layer the service delegates to.
type Repository interface {
	Create(ctx context.Context, appt *schema.Appointment) error
	// ListActive returns all appointments whose status occupies its slot
	// (scheduled or confirmed), in no particular order.
	ListActive(ctx context.Context) ([]schema.Appointment, error)
	// List returns appointments matching filter, ordered by date ascending.
	List(ctx context.Context, filter ListFilter) ([]schema.Appointment, error)
	// FindByClient returns appointments for email, optionally narrowed to an
	// exact date instant, ordered by date descending.
	FindByClient(ctx context.Context, email string, date *time.Time) ([]schema.Appointment, error)
	// GetByID returns the appointment or (nil, nil) when absent.
	GetByID(ctx context.Context, id string) (*schema.Appointment, error)
	Update(ctx context.Context, appt *schema.Appointment) error
	Delete(ctx context.Context, id string) error
}

// Announcer receives appointment lifecycle events ("created", "cancelled",
// "deleted", "reminder"). Implementations must not block the caller.
type Announcer interface {
	Announce(ctx context.Context, event string, appt schema.Appointment)
}

// CreateParams are the creation inputs. Nil optional fields take defaults.
type CreateParams struct {
	Title       string
	Description *string
	Date        time.Time
	Duration    *int // minutes
	ClientName  string
	ClientEmail string
	ClientPhone *string
}

// UpdateParams are the partial-update inputs. ClientEmail (plus Date, when
// known) selects the target; only non-nil fields are written.
type UpdateParams struct {
	ClientEmail string
	Date        *time.Time

	Title       *string
	Description *string
	NewDate     *time.Time
	Duration    *int
	ClientName  *string
	ClientPhone *string
	Status      *schema.AppointmentStatus
}

// Deleted summarises a removed appointment.
type Deleted struct {
	Title      string    `json:"title"`
	Date       time.Time `json:"date"`
	ClientName string    `json:"clientName"`
}

// Service owns the conflict and disambiguation rules over a Repository.
type Service struct {
	repo      Repository
	announcer Announcer // optional

	// mu serialises the read-then-write window of Create. The conflict
	// check is application-level, so two concurrent creates for
	// overlapping slots would otherwise race past each other.
	mu sync.Mutex

	now func() time.Time
}

// NewService creates a Service. announcer may be nil.
func NewService(repo Repository, announcer Announcer) *Service {
	return &Service{repo: repo, announcer: announcer, now: time.Now}
}

// NewServiceAt creates a Service with an explicit clock.
func NewServiceAt(repo Repository, announcer Announcer, now func() time.Time) *Service {
	return &Service{repo: repo, announcer: announcer, now: now}
}

// Create books a new appointment after checking its [date, date+duration)
// interval against every active appointment. Intervals are half-open:
// back-to-back bookings do not conflict.
func (s *Service) Create(ctx context.Context, p CreateParams) (*schema.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := p.Date.UTC()
	duration := DefaultDuration
	if p.Duration != nil {
		duration = *p.Duration
	}
	end := start.Add(time.Duration(duration) * time.Minute)

	active, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active appointments: %w", err)
	}
	for _, existing := range active {
		if existing.Overlaps(start, end) {
			return nil, &ConflictError{Conflict: existing.Summary()}
		}
	}

	description := fmt.Sprintf("Appointment with %s", p.ClientName)
	if p.Description != nil {
		description = *p.Description
	}

	appt := &schema.Appointment{
		ID:          uuid.NewString(),
		Title:       p.Title,
		Description: description,
		Date:        start,
		Duration:    duration,
		ClientName:  p.ClientName,
		ClientEmail: p.ClientEmail,
		ClientPhone: p.ClientPhone,
		Status:      schema.StatusScheduled,
	}
	if err := s.repo.Create(ctx, appt); err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	s.announce(ctx, "created", *appt)
	return appt, nil
}

// List returns appointments matching the optional predicates, date ascending.
func (s *Service) List(ctx context.Context, status *schema.AppointmentStatus, clientEmail *string) ([]schema.Appointment, error) {
	appts, err := s.repo.List(ctx, ListFilter{Status: status, ClientEmail: clientEmail})
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appts, nil
}

// Update applies the explicitly supplied fields to the appointment selected
// by clientEmail (and date, when given). Unsupplied fields keep their
// current values.
func (s *Service) Update(ctx context.Context, p UpdateParams) (*schema.Appointment, error) {
	target, err := s.resolveTarget(ctx, p.ClientEmail, p.Date)
	if err != nil {
		return nil, err
	}

	if p.Title != nil {
		target.Title = *p.Title
	}
	if p.Description != nil {
		target.Description = *p.Description
	}
	if p.NewDate != nil {
		target.Date = p.NewDate.UTC()
	}
	if p.Duration != nil {
		target.Duration = *p.Duration
	}
	if p.ClientName != nil {
		target.ClientName = *p.ClientName
	}
	if p.ClientPhone != nil {
		target.ClientPhone = p.ClientPhone
	}
	if p.Status != nil {
		target.Status = *p.Status
	}

	if err := s.repo.Update(ctx, target); err != nil {
		return nil, fmt.Errorf("update appointment: %w", err)
	}

	if p.Status != nil && *p.Status == schema.StatusCancelled {
		s.announce(ctx, "cancelled", *target)
	}
	return target, nil
}

// Delete removes the appointment selected by clientEmail (and date, when
// given) and returns a summary of what was removed.
func (s *Service) Delete(ctx context.Context, clientEmail string, date *time.Time) (*Deleted, error) {
	target, err := s.resolveTarget(ctx, clientEmail, date)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, target.ID); err != nil {
		return nil, fmt.Errorf("delete appointment: %w", err)
	}

	s.announce(ctx, "deleted", *target)
	return &Deleted{
		Title:      target.Title,
		Date:       target.Date,
		ClientName: target.ClientName,
	}, nil
}

// GetByID is a direct point lookup.
func (s *Service) GetByID(ctx context.Context, id string) (*schema.Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	if appt == nil {
		return nil, ErrNotFound
	}
	return appt, nil
}

// CompleteElapsed marks every active appointment whose interval has fully
// elapsed as completed. It returns the number of appointments updated.
func (s *Service) CompleteElapsed(ctx context.Context) (int, error) {
	now := s.now().UTC()

	active, err := s.repo.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("list active appointments: %w", err)
	}

	completed := 0
	for i := range active {
		appt := active[i]
		if !appt.End().After(now) {
			appt.Status = schema.StatusCompleted
			if err := s.repo.Update(ctx, &appt); err != nil {
				return completed, fmt.Errorf("complete appointment %s: %w", appt.ID, err)
			}
			completed++
		}
	}
	return completed, nil
}

// DueForReminder returns active appointments starting within lead from now
// whose reminder has not been sent yet, marking them as reminded.
func (s *Service) DueForReminder(ctx context.Context, lead time.Duration) ([]schema.Appointment, error) {
	now := s.now().UTC()
	horizon := now.Add(lead)

	active, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active appointments: %w", err)
	}

	var due []schema.Appointment
	for i := range active {
		appt := active[i]
		if appt.ReminderSent || appt.Date.Before(now) || appt.Date.After(horizon) {
			continue
		}
		appt.ReminderSent = true
		if err := s.repo.Update(ctx, &appt); err != nil {
			return due, fmt.Errorf("mark reminder for %s: %w", appt.ID, err)
		}
		due = append(due, appt)
	}
	return due, nil
}

// resolveTarget finds the single appointment identified by email and an
// optional exact date. Candidates come back most recent first; more than one
// match without a narrowing date is ambiguous.
func (s *Service) resolveTarget(ctx context.Context, email string, date *time.Time) (*schema.Appointment, error) {
	var utc *time.Time
	if date != nil {
		d := date.UTC()
		utc = &d
	}

	candidates, err := s.repo.FindByClient(ctx, email, utc)
	if err != nil {
		return nil, fmt.Errorf("find appointments for %s: %w", email, err)
	}
	if len(candidates) == 0 {
		return nil, ErrNotFound
	}
	if len(candidates) > 1 && date == nil {
		summaries := make([]schema.AppointmentSummary, 0, len(candidates))
		for _, c := range candidates {
			summaries = append(summaries, c.Summary())
		}
		return nil, &AmbiguousError{Candidates: summaries}
	}

	target := candidates[0]
	return &target, nil
}

func (s *Service) announce(ctx context.Context, event string, appt schema.Appointment) {
	if s.announcer == nil {
		return
	}
	slog.Debug("Appointment event", "event", event, "id", appt.ID)
	s.announcer.Announce(ctx, event, appt)
}
