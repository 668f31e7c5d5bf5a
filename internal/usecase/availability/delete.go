package availability

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

const operationDelete = "delete"

// Delete удаляет запись физически, только для администратора
// Если запись была активной, клиент получает уведомление об отмене
func (e *Engine) Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) (err error) {
	defer func() { e.observe(operationDelete, err) }()

	e.logger.Info("Delete: actor=%s, id=%s", actor.UserID, id)

	if !actor.IsAdmin {
		e.logger.Warn("Delete: user %s is not an admin", actor.UserID)
		return fmt.Errorf("%w: only admins can delete appointments", ErrAccessDenied)
	}

	var deleted *domain.Appointment
	err = e.txManager.Do(ctx, func(ctx context.Context) error {
		current, err := e.findForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := e.store.Delete(ctx, id); err != nil {
			return mapStoreError(err)
		}
		deleted = current
		return nil
	})
	if err != nil {
		e.logger.Warn("Delete: appointment %s: %v", id, err)
		return err
	}

	if deleted.IsActive() {
		e.notify(deleted, domain.ActionCancelled)
	}

	e.logger.Info("Delete: appointment %s deleted", id)
	return nil
}
