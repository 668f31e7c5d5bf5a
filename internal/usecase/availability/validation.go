package availability

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/m04kA/SMC-AppointmentService/internal/calendar"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

func validateDuration(durationMinutes int) error {
	if durationMinutes < domain.MinDurationMinutes || durationMinutes > domain.MaxDurationMinutes {
		return fmt.Errorf("%w: duration must be between %d and %d minutes, got %d",
			ErrInvalidInput, domain.MinDurationMinutes, domain.MaxDurationMinutes, durationMinutes)
	}
	return nil
}

func validateServiceName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: service name is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > domain.MaxServiceNameLength {
		return fmt.Errorf("%w: service name is longer than %d characters", ErrInvalidInput, domain.MaxServiceNameLength)
	}
	return nil
}

func validateNotes(notes *string) error {
	if notes != nil && utf8.RuneCountInString(*notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes are longer than %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}
	return nil
}

func validateStartTime(start types.TimeString) error {
	if err := start.Validate(); err != nil {
		return fmt.Errorf("%w: start time: %v", ErrInvalidInput, err)
	}
	return nil
}

// validateReserveRequest проверка полей запроса на запись
func validateReserveRequest(req ReserveRequest) error {
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if err := validateStartTime(req.StartTime); err != nil {
		return err
	}
	if err := validateServiceName(req.ServiceName); err != nil {
		return err
	}
	if err := validateDuration(req.DurationMinutes); err != nil {
		return err
	}
	if err := validateNotes(req.Notes); err != nil {
		return err
	}
	if req.Status != nil && !slices.Contains(domain.ActiveStatuses, *req.Status) {
		return fmt.Errorf("%w: new appointment status must be pending or confirmed, got %q", ErrInvalidInput, *req.Status)
	}
	return nil
}

// checkSlot время начала лежит на сетке открытого дня и услуга заканчивается до закрытия
func (e *Engine) checkSlot(ctx context.Context, date time.Time, start types.TimeString, durationMinutes int) error {
	slots, hours, err := e.daySlots(ctx, date)
	if err != nil {
		return err
	}

	if hours.Closed || len(slots) == 0 {
		return fmt.Errorf("%w: salon is closed on %s", ErrInvalidSlot, date.Format(domain.DateFormat))
	}
	if !isGridSlot(slots, start) {
		return fmt.Errorf("%w: %s is not a slot start on %s", ErrInvalidSlot, start, date.Format(domain.DateFormat))
	}
	if !fitsBeforeClose(start, durationMinutes, hours) {
		return fmt.Errorf("%w: %d minutes from %s do not fit before closing at %s",
			ErrInvalidSlot, durationMinutes, start, hours.Close)
	}
	return nil
}

// checkTiming прошедшее время и окно бронирования
func (e *Engine) checkTiming(actor domain.Actor, date time.Time, start types.TimeString, allowPast bool) error {
	earliest, bookable := e.earliestStart(date)
	past := !bookable || start.IsBefore(earliest)
	if past && !(actor.IsAdmin && allowPast) {
		return fmt.Errorf("%w: %s %s", ErrPastSlot, date.Format(domain.DateFormat), start)
	}

	if !actor.IsAdmin && e.beyondWindow(date) {
		return fmt.Errorf("%w: %s is more than %d days ahead",
			ErrInvalidSlot, date.Format(domain.DateFormat), e.policy.MaxAdvanceDays)
	}
	return nil
}

// resolveStatus статус новой записи
func (e *Engine) resolveStatus(req ReserveRequest) domain.AppointmentStatus {
	if req.Status != nil {
		return *req.Status
	}
	if req.Actor.IsAdmin && e.policy.AdminAutoConfirm {
		return domain.StatusConfirmed
	}
	return e.policy.DefaultStatus
}

// dateOf дата записи без времени
func dateOf(t time.Time) time.Time {
	return calendar.DateOnly(t)
}
