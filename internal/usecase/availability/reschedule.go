package availability

import (
	"context"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

const operationReschedule = "reschedule"

// Reschedule переносит активную запись на другой слот (и, опционально, меняет услугу)
func (e *Engine) Reschedule(ctx context.Context, req RescheduleRequest) (appt *domain.Appointment, err error) {
	defer func() { e.observe(operationReschedule, err) }()

	req.Date = dateOf(req.Date)
	e.logger.Info("Reschedule: actor=%s, id=%s, date=%s, time=%s",
		req.Actor.UserID, req.ID, req.Date.Format(domain.DateFormat), req.StartTime)

	// 1. Валидация входных данных
	if err := validateRescheduleRequest(req); err != nil {
		e.logger.Warn("Reschedule: validation failed: %v", err)
		return nil, err
	}

	var updated *domain.Appointment
	err = e.txManager.Do(ctx, func(ctx context.Context) error {
		// 2. Перечитываем запись под блокировкой
		current, err := e.findForUpdate(ctx, req.ID)
		if err != nil {
			return err
		}

		// 3. Права и состояние
		if !req.Actor.CanManage(current) {
			return fmt.Errorf("%w: appointment %s belongs to another client", ErrAccessDenied, req.ID)
		}
		if !current.CanBeRescheduled() {
			return fmt.Errorf("%w: appointment %s is %s", ErrInvalidTransition, req.ID, current.Status)
		}

		patch := domain.AppointmentPatch{
			Date:      &req.Date,
			StartTime: &req.StartTime,
		}
		if req.ServiceName != nil {
			name := strings.TrimSpace(*req.ServiceName)
			patch.ServiceName = &name
		}
		if req.DurationMinutes != nil {
			patch.DurationMinutes = req.DurationMinutes
		}
		target := patch.Apply(current)

		// 4. Те же проверки слота, что и при записи
		if err := e.checkSlot(ctx, target.Date, target.StartTime, target.DurationMinutes); err != nil {
			return err
		}
		if err := e.checkTiming(req.Actor, target.Date, target.StartTime, req.AllowPast); err != nil {
			return err
		}

		// 5. Конфликт с другими записями, сама запись не мешает себе
		active, err := e.activeOnDate(ctx, target.Date)
		if err != nil {
			return err
		}
		if conflict := findConflict(active, target.Date, target.StartTime, target.DurationMinutes, current.ID); conflict != nil {
			return fmt.Errorf("%w: %s %s overlaps appointment %s",
				ErrSlotConflict, target.Date.Format(domain.DateFormat), target.StartTime, conflict.ID)
		}

		// 6. Обновляем
		updated, err = e.store.Update(ctx, current.ID, patch)
		if err != nil {
			return mapStoreError(err)
		}
		return nil
	})
	if err != nil {
		e.logger.Warn("Reschedule: appointment %s: %v", req.ID, err)
		return nil, err
	}

	// 7. Уведомление после фиксации
	e.notify(updated, domain.ActionUpdated)

	e.logger.Info("Reschedule: appointment %s moved to %s %s",
		updated.ID, updated.Date.Format(domain.DateFormat), updated.StartTime)
	return updated, nil
}

func validateRescheduleRequest(req RescheduleRequest) error {
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if err := validateStartTime(req.StartTime); err != nil {
		return err
	}
	if req.ServiceName != nil {
		if err := validateServiceName(*req.ServiceName); err != nil {
			return err
		}
	}
	if req.DurationMinutes != nil {
		if err := validateDuration(*req.DurationMinutes); err != nil {
			return err
		}
	}
	return nil
}
