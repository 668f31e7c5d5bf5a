// Package calendar contains pure date and time-of-day helpers: slot generation and
// day/week/month bucketing. Dates are civil dates represented as midnight UTC.
package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Defaults for a salon business day
const (
	DefaultOpenTime           = types.TimeString("09:00")
	DefaultCloseTime          = types.TimeString("18:00")
	DefaultGranularityMinutes = 30
	DefaultWeekStart          = time.Monday
)

// ErrInvalidRange is returned for business hours where close <= open or the granularity is not positive
var ErrInvalidRange = errors.New("calendar: invalid business hours range")

// Slot is a generated (never stored) interval start of a business day
type Slot struct {
	Date      time.Time
	StartTime types.TimeString
}

// BusinessHours describes a single day of operation
type BusinessHours struct {
	Closed             bool
	Open               types.TimeString
	Close              types.TimeString
	GranularityMinutes int
}

// DefaultBusinessHours 09:00-18:00 in 30 minute steps
func DefaultBusinessHours() BusinessHours {
	return BusinessHours{
		Open:               DefaultOpenTime,
		Close:              DefaultCloseTime,
		GranularityMinutes: DefaultGranularityMinutes,
	}
}

// ClosedDay business hours for a day without slots
func ClosedDay() BusinessHours {
	return BusinessHours{Closed: true, GranularityMinutes: DefaultGranularityMinutes}
}

// Validate checks that an open day has a positive range and granularity
func (h BusinessHours) Validate() error {
	if h.GranularityMinutes <= 0 {
		return fmt.Errorf("%w: granularity %d", ErrInvalidRange, h.GranularityMinutes)
	}
	if h.Closed {
		return nil
	}
	if err := h.Open.Validate(); err != nil {
		return fmt.Errorf("%w: open time: %v", ErrInvalidRange, err)
	}
	if err := h.Close.Validate(); err != nil {
		return fmt.Errorf("%w: close time: %v", ErrInvalidRange, err)
	}
	if !h.Close.IsAfter(h.Open) {
		return fmt.Errorf("%w: close %s is not after open %s", ErrInvalidRange, h.Close, h.Open)
	}
	return nil
}

// GenerateDaySlots returns the ordered slots of a day. A slot is emitted only when it ends
// at or before closing time. A closed day yields an empty slice.
func GenerateDaySlots(date time.Time, hours BusinessHours) ([]Slot, error) {
	if err := hours.Validate(); err != nil {
		return nil, err
	}
	if hours.Closed {
		return []Slot{}, nil
	}

	day := DateOnly(date)
	open := hours.Open.Minutes()
	closeAt := hours.Close.Minutes()

	slots := make([]Slot, 0, (closeAt-open)/hours.GranularityMinutes)
	for start := open; start+hours.GranularityMinutes <= closeAt; start += hours.GranularityMinutes {
		startTime, err := types.NewTimeStringFromMinutes(start)
		if err != nil {
			return nil, err
		}
		slots = append(slots, Slot{Date: day, StartTime: startTime})
	}

	return slots, nil
}

// DateOnly drops the time-of-day and location, keeping the calendar date as midnight UTC
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today is the civil date of now as observed in loc
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return DateOnly(now.In(loc))
}

// SameDay reports whether both values fall on the same calendar date
func SameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// DayOf returns the single-day range of date
func DayOf(date time.Time) (time.Time, time.Time) {
	day := DateOnly(date)
	return day, day
}

// WeekOf returns the first and last date of the week containing date
func WeekOf(date time.Time, weekStart time.Weekday) (time.Time, time.Time) {
	day := DateOnly(date)
	offset := (int(day.Weekday()) - int(weekStart) + 7) % 7
	start := day.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 6)
}

// MonthOf returns the first and last date of the month containing date
func MonthOf(date time.Time) (time.Time, time.Time) {
	day := DateOnly(date)
	start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, -1)
}

// ParseWeekday parses an English weekday name ("monday", "Sun")
func ParseWeekday(s string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if name == full || name == full[:3] {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("calendar: unknown weekday %q", s)
}
