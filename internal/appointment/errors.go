package appointment

import (
	"errors"
	"fmt"
	"time"

	"github.com/concierge/concierge/internal/schema"
)

// ErrNotFound is returned when no appointment matches the given details.
var ErrNotFound = errors.New("no appointment found with the given details")

// ConflictError is returned when a requested slot overlaps an active
// appointment. Conflict identifies the blocking booking.
type ConflictError struct {
	Conflict schema.AppointmentSummary
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("time slot conflicts with appointment %s at %s",
		e.Conflict.ID, e.Conflict.Date.Format(time.RFC3339))
}

// AmbiguousError is returned when an update or delete matches several
// appointments and no date was supplied to narrow them down. Candidates
// holds the summaries, most recent first, so the caller can re-issue with a
// disambiguating date.
type AmbiguousError struct {
	Candidates []schema.AppointmentSummary
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("multiple appointments found (%d); specify the date", len(e.Candidates))
}
