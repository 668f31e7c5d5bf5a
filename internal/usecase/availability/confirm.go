package availability

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

const operationConfirm = "confirm"

// Confirm подтверждает запись (pending -> confirmed), только для администратора
func (e *Engine) Confirm(ctx context.Context, actor domain.Actor, id uuid.UUID) (appt *domain.Appointment, err error) {
	defer func() { e.observe(operationConfirm, err) }()

	e.logger.Info("Confirm: actor=%s, id=%s", actor.UserID, id)

	// 1. Проверка прав
	if !actor.IsAdmin {
		e.logger.Warn("Confirm: user %s is not an admin", actor.UserID)
		return nil, fmt.Errorf("%w: only admins can confirm appointments", ErrAccessDenied)
	}

	var (
		result  *domain.Appointment
		changed bool
	)
	err = e.txManager.Do(ctx, func(ctx context.Context) error {
		// 2. Перечитываем запись под блокировкой
		current, err := e.findForUpdate(ctx, id)
		if err != nil {
			return err
		}

		// 3. Переход статуса, повторное подтверждение ничего не меняет
		if current.Status == domain.StatusConfirmed {
			result = current
			return nil
		}
		if !current.CanBeConfirmed() {
			return fmt.Errorf("%w: appointment %s is %s", ErrInvalidTransition, id, current.Status)
		}

		status := domain.StatusConfirmed
		result, err = e.store.Update(ctx, id, domain.AppointmentPatch{Status: &status})
		if err != nil {
			return mapStoreError(err)
		}
		changed = true
		return nil
	})
	if err != nil {
		e.logger.Warn("Confirm: appointment %s: %v", id, err)
		return nil, err
	}

	if changed {
		e.notify(result, domain.ActionUpdated)
		e.logger.Info("Confirm: appointment %s confirmed", id)
	}
	return result, nil
}
