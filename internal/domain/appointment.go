package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/calendar"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// ParseAppointmentStatus validates a status string
func ParseAppointmentStatus(s string) (AppointmentStatus, error) {
	switch status := AppointmentStatus(s); status {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return status, nil
	default:
		return "", ErrInvalidStatus
	}
}

// Appointment represents a client's claim on a slot
type Appointment struct {
	ID       uuid.UUID
	ClientID uuid.UUID

	// Snapshot of the service at booking time
	ServiceName     string
	DurationMinutes int

	Date      time.Time // calendar date, midnight UTC
	StartTime types.TimeString
	Status    AppointmentStatus
	Notes     *string

	CancelledAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsActive returns true if the appointment occupies its slot
func (a *Appointment) IsActive() bool {
	return slices.Contains(ActiveStatuses, a.Status)
}

// IsCancelled returns true if the appointment has been cancelled
func (a *Appointment) IsCancelled() bool {
	return a.Status == StatusCancelled
}

// CanBeConfirmed returns true for pending appointments
func (a *Appointment) CanBeConfirmed() bool {
	return a.Status == StatusPending
}

// CanBeRescheduled returns true if the appointment can be moved to another slot
func (a *Appointment) CanBeRescheduled() bool {
	return a.IsActive()
}

// EndTime returns StartTime + DurationMinutes
func (a *Appointment) EndTime() (types.TimeString, error) {
	return a.StartTime.AddMinutes(a.DurationMinutes)
}

// Overlaps reports whether the appointment's half-open interval [start, end)
// intersects [start, start+durationMinutes) on the same date.
// Adjacent intervals (one ends where the other starts) do not overlap.
func (a *Appointment) Overlaps(date time.Time, start types.TimeString, durationMinutes int) bool {
	if !calendar.SameDay(a.Date, date) {
		return false
	}
	aStart := a.StartTime.Minutes()
	aEnd := aStart + a.DurationMinutes
	bStart := start.Minutes()
	bEnd := bStart + durationMinutes
	return aStart < bEnd && bStart < aEnd
}

// OwnedBy checks the appointment owner
func (a *Appointment) OwnedBy(clientID uuid.UUID) bool {
	return a.ClientID == clientID
}

// Clone returns a deep copy safe to hand to another goroutine
func (a *Appointment) Clone() *Appointment {
	if a == nil {
		return nil
	}
	c := *a
	if a.Notes != nil {
		notes := *a.Notes
		c.Notes = &notes
	}
	if a.CancelledAt != nil {
		cancelledAt := *a.CancelledAt
		c.CancelledAt = &cancelledAt
	}
	return &c
}

// AppointmentPatch partial update of an appointment; nil fields stay unchanged
type AppointmentPatch struct {
	Date            *time.Time
	StartTime       *types.TimeString
	ServiceName     *string
	DurationMinutes *int
	Status          *AppointmentStatus
	Notes           *string
}

// IsEmpty returns true if nothing would change
func (p AppointmentPatch) IsEmpty() bool {
	return p.Date == nil && p.StartTime == nil && p.ServiceName == nil &&
		p.DurationMinutes == nil && p.Status == nil && p.Notes == nil
}

// Apply returns a copy of a with the patch applied
func (p AppointmentPatch) Apply(a *Appointment) *Appointment {
	c := a.Clone()
	if p.Date != nil {
		c.Date = *p.Date
	}
	if p.StartTime != nil {
		c.StartTime = *p.StartTime
	}
	if p.ServiceName != nil {
		c.ServiceName = *p.ServiceName
	}
	if p.DurationMinutes != nil {
		c.DurationMinutes = *p.DurationMinutes
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.Notes != nil {
		notes := *p.Notes
		c.Notes = &notes
	}
	return c
}

// Actor is the caller of an engine operation. The role flag is trusted as supplied
// by the identity layer.
type Actor struct {
	UserID  uuid.UUID
	IsAdmin bool
}

// CanManage reports whether the actor may modify the appointment
func (a Actor) CanManage(appt *Appointment) bool {
	return a.IsAdmin || appt.OwnedBy(a.UserID)
}
