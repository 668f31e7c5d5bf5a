package availability

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/calendar"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// GetAvailableSlots возвращает свободные слоты даты для услуги длительностью durationMinutes
// Слот свободен, если интервал [start, start+duration) помещается до закрытия
// и не пересекается ни с одной активной записью
// Закрытый, полностью занятый или прошедший день - пустой список, а не ошибка
// Список публичный и не знает вызывающего, поэтому окно бронирования применяется всегда;
// администратор записывает за пределами окна напрямую через Reserve
func (e *Engine) GetAvailableSlots(ctx context.Context, date time.Time, durationMinutes int) ([]calendar.Slot, error) {
	day := calendar.DateOnly(date)
	e.logger.Info("GetAvailableSlots: date=%s, duration=%d", day.Format(domain.DateFormat), durationMinutes)

	// 1. Валидация входных данных
	if err := validateDuration(durationMinutes); err != nil {
		e.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Прошедшие даты и даты за пределами окна бронирования
	earliest, bookable := e.earliestStart(day)
	if !bookable || e.beyondWindow(day) {
		e.logger.Info("GetAvailableSlots: date=%s is outside of booking window", day.Format(domain.DateFormat))
		return []calendar.Slot{}, nil
	}

	// 3. Генерируем слоты по рабочим часам
	slots, hours, err := e.daySlots(ctx, day)
	if err != nil {
		e.logger.Error("GetAvailableSlots: failed to generate slots: %v", err)
		return nil, err
	}
	if len(slots) == 0 {
		return []calendar.Slot{}, nil
	}

	// 4. Активные записи на дату
	active, err := e.activeOnDate(ctx, day)
	if err != nil {
		e.logger.Error("GetAvailableSlots: %v", err)
		return nil, err
	}

	// 5. Фильтруем
	free := freeSlots(slots, hours, durationMinutes, active, earliest)

	e.logger.Info("GetAvailableSlots: date=%s, %d/%d slots free", day.Format(domain.DateFormat), len(free), len(slots))
	return free, nil
}

// freeSlots оставляет слоты, на которые можно записаться
func freeSlots(
	slots []calendar.Slot,
	hours calendar.BusinessHours,
	durationMinutes int,
	active []*domain.Appointment,
	earliest types.TimeString,
) []calendar.Slot {
	free := make([]calendar.Slot, 0, len(slots))
	for _, slot := range slots {
		if slot.StartTime.IsBefore(earliest) {
			continue
		}
		if !fitsBeforeClose(slot.StartTime, durationMinutes, hours) {
			continue
		}
		if findConflict(active, slot.Date, slot.StartTime, durationMinutes, uuid.Nil) != nil {
			continue
		}
		free = append(free, slot)
	}
	return free
}

// fitsBeforeClose услуга заканчивается не позже закрытия
func fitsBeforeClose(start types.TimeString, durationMinutes int, hours calendar.BusinessHours) bool {
	end, err := start.AddMinutes(durationMinutes)
	if err != nil {
		return false
	}
	return !end.IsAfter(hours.Close)
}

// isGridSlot время начала совпадает с одним из слотов дня
func isGridSlot(slots []calendar.Slot, start types.TimeString) bool {
	for _, slot := range slots {
		if slot.StartTime.Equal(start) {
			return true
		}
	}
	return false
}

// findConflict первая активная запись, пересекающаяся с интервалом
// Запись с ID exclude не учитывается (перенос самой себя)
func findConflict(
	active []*domain.Appointment,
	date time.Time,
	start types.TimeString,
	durationMinutes int,
	exclude uuid.UUID,
) *domain.Appointment {
	for _, appt := range active {
		if appt.ID == exclude && exclude != uuid.Nil {
			continue
		}
		if appt.Overlaps(date, start, durationMinutes) {
			return appt
		}
	}
	return nil
}

// activeOnly отбрасывает отменённые записи
func activeOnly(appointments []*domain.Appointment) []*domain.Appointment {
	active := make([]*domain.Appointment, 0, len(appointments))
	for _, appt := range appointments {
		if appt.IsActive() {
			active = append(active, appt)
		}
	}
	return active
}
