package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/calendar"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// DaySchedule regular working hours of one weekday
type DaySchedule struct {
	Weekday   time.Weekday
	IsOpen    bool
	OpenTime  types.TimeString
	CloseTime types.TimeString
}

// StoredHours returns the times to persist for the day. A closed day without times
// gets the default hours as placeholders.
func (d DaySchedule) StoredHours() (types.TimeString, types.TimeString) {
	open, closeAt := d.OpenTime, d.CloseTime
	if open.IsZero() {
		open = calendar.DefaultOpenTime
	}
	if closeAt.IsZero() {
		closeAt = calendar.DefaultCloseTime
	}
	return open, closeAt
}

// WeeklySchedule regular working hours of the salon, indexed by time.Weekday
type WeeklySchedule struct {
	Days        [7]DaySchedule
	SlotMinutes int
	UpdatedAt   time.Time
}

// SpecialDate overrides the weekly schedule for one date (holiday, event)
type SpecialDate struct {
	Date      time.Time
	IsOpen    bool
	OpenTime  *types.TimeString // nil = regular hours of that weekday
	CloseTime *types.TimeString
	Note      string
}

// DefaultWeeklySchedule Monday to Saturday 09:00-18:00, Sunday closed, 30 minute slots
func DefaultWeeklySchedule() WeeklySchedule {
	var w WeeklySchedule
	for d := time.Sunday; d <= time.Saturday; d++ {
		w.Days[d] = DaySchedule{
			Weekday:   d,
			IsOpen:    d != time.Sunday,
			OpenTime:  calendar.DefaultOpenTime,
			CloseTime: calendar.DefaultCloseTime,
		}
	}
	w.SlotMinutes = calendar.DefaultGranularityMinutes
	return w
}

// Validate checks every open day for a positive range
func (w WeeklySchedule) Validate() error {
	if w.SlotMinutes <= 0 {
		return fmt.Errorf("%w: slot minutes must be positive", ErrInvalidSchedule)
	}
	for _, day := range w.Days {
		if !day.IsOpen {
			continue
		}
		hours := calendar.BusinessHours{Open: day.OpenTime, Close: day.CloseTime, GranularityMinutes: w.SlotMinutes}
		if err := hours.Validate(); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidSchedule, day.Weekday, err)
		}
	}
	return nil
}

// HoursFor resolves the business hours of date, applying a special date override if given.
// An open special date without its own times inherits the weekday hours, or the default
// hours when the weekday has none.
func (w WeeklySchedule) HoursFor(date time.Time, special *SpecialDate) calendar.BusinessHours {
	day := w.Days[date.Weekday()]
	hours := calendar.BusinessHours{
		Closed:             !day.IsOpen,
		Open:               day.OpenTime,
		Close:              day.CloseTime,
		GranularityMinutes: w.SlotMinutes,
	}

	if special == nil {
		return hours
	}

	if !special.IsOpen {
		hours.Closed = true
		return hours
	}

	hours.Closed = false
	hours.Open, hours.Close = day.StoredHours()
	if special.OpenTime != nil {
		hours.Open = *special.OpenTime
	}
	if special.CloseTime != nil {
		hours.Close = *special.CloseTime
	}
	return hours
}
