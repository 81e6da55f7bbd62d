// Package notify fans appointment lifecycle events out to the configured
// notification channels.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/concierge/concierge/internal/schema"
)

// Notifier delivers one formatted event to a single destination.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, text string) error
}

const deliveryTimeout = 10 * time.Second

// Manager fans events out to all registered notifiers. It satisfies
// appointment.Announcer and never blocks the caller: deliveries run in
// background goroutines with their own timeout.
type Manager struct {
	notifiers []Notifier
}

func NewManager(notifiers ...Notifier) *Manager {
	return &Manager{notifiers: notifiers}
}

// Announce formats the event and delivers it to every notifier.
func (m *Manager) Announce(_ context.Context, event string, appt schema.Appointment) {
	if len(m.notifiers) == 0 {
		return
	}
	text := formatEvent(event, appt)
	for _, n := range m.notifiers {
		go func(n Notifier) {
			ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
			defer cancel()
			if err := n.Notify(ctx, text); err != nil {
				slog.Warn("notification delivery failed", "notifier", n.Name(), "event", event, "error", err)
			}
		}(n)
	}
}

func formatEvent(event string, appt schema.Appointment) string {
	when := appt.Date.UTC().Format("Mon, 02 Jan 2006 15:04 MST")
	switch event {
	case "created":
		return fmt.Sprintf("📅 New appointment: %s with %s on %s", appt.Title, appt.ClientName, when)
	case "cancelled":
		return fmt.Sprintf("❌ Appointment cancelled: %s with %s on %s", appt.Title, appt.ClientName, when)
	case "deleted":
		return fmt.Sprintf("🗑 Appointment deleted: %s with %s on %s", appt.Title, appt.ClientName, when)
	case "reminder":
		return fmt.Sprintf("⏰ Upcoming appointment: %s with %s on %s", appt.Title, appt.ClientName, when)
	default:
		return fmt.Sprintf("Appointment %s: %s with %s on %s", event, appt.Title, appt.ClientName, when)
	}
}
