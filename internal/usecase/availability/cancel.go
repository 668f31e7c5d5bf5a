package availability

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

const operationCancel = "cancel"

// Cancel мягко отменяет запись, слот снова становится свободным
// Повторная отмена возвращает запись без изменений и без повторного уведомления
func (e *Engine) Cancel(ctx context.Context, actor domain.Actor, id uuid.UUID) (appt *domain.Appointment, err error) {
	defer func() { e.observe(operationCancel, err) }()

	e.logger.Info("Cancel: actor=%s, id=%s", actor.UserID, id)

	var (
		result  *domain.Appointment
		changed bool
	)
	err = e.txManager.Do(ctx, func(ctx context.Context) error {
		// 1. Перечитываем запись под блокировкой
		current, err := e.findForUpdate(ctx, id)
		if err != nil {
			return err
		}

		// 2. Отменить может владелец или администратор
		if !actor.CanManage(current) {
			return fmt.Errorf("%w: appointment %s belongs to another client", ErrAccessDenied, id)
		}

		// 3. Уже отменена
		if current.IsCancelled() {
			result = current
			return nil
		}

		// 4. Отменяем
		result, err = e.store.SoftCancel(ctx, id)
		if err != nil {
			return mapStoreError(err)
		}
		changed = true
		return nil
	})
	if err != nil {
		e.logger.Warn("Cancel: appointment %s: %v", id, err)
		return nil, err
	}

	if !changed {
		e.logger.Info("Cancel: appointment %s is already cancelled", id)
		return result, nil
	}

	// 5. Уведомление после фиксации
	e.notify(result, domain.ActionCancelled)

	e.logger.Info("Cancel: appointment %s cancelled", id)
	return result, nil
}
