package schema

import "time"

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
)

// Active reports whether the status occupies its time slot.
// Only active appointments participate in conflict detection.
func (s AppointmentStatus) Active() bool {
	return s == StatusScheduled || s == StatusConfirmed
}

// Appointment is a booked time slot for a client.
// Identity is ID; clientEmail plus date is the human-facing lookup key used
// by update and delete when the ID is not known.
type Appointment struct {
	ID           string            `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Title        string            `gorm:"not null" json:"title"`
	Description  string            `json:"description"`
	Date         time.Time         `gorm:"index;not null" json:"date"`
	Duration     int               `gorm:"not null;default:60" json:"duration"` // minutes
	ClientName   string            `gorm:"not null" json:"clientName"`
	ClientEmail  string            `gorm:"index;not null" json:"clientEmail"`
	ClientPhone  *string           `json:"clientPhone"`
	Status       AppointmentStatus `gorm:"type:varchar(16);index;not null" json:"status"`
	ReminderSent bool              `gorm:"not null;default:false" json:"-"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

func (Appointment) TableName() string { return "appointments" }

// End returns the exclusive end of the appointment's [Date, Date+Duration) interval.
func (a Appointment) End() time.Time {
	return a.Date.Add(time.Duration(a.Duration) * time.Minute)
}

// Overlaps reports whether [start, end) intersects the appointment's
// interval. Half-open on both sides: back-to-back slots do not overlap.
func (a Appointment) Overlaps(start, end time.Time) bool {
	return start.Before(a.End()) && end.After(a.Date)
}

// AppointmentSummary is the short form returned when an update or delete
// target is ambiguous, so the caller can re-issue with a disambiguating date.
type AppointmentSummary struct {
	ID     string            `json:"id"`
	Title  string            `json:"title"`
	Date   time.Time         `json:"date"`
	Status AppointmentStatus `json:"status"`
}

// Summary returns the disambiguation view of the appointment.
func (a Appointment) Summary() AppointmentSummary {
	return AppointmentSummary{ID: a.ID, Title: a.Title, Date: a.Date, Status: a.Status}
}
