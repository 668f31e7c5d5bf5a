package availability

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

const operationReserve = "reserve"

// Reserve записывает клиента на слот
// Проверка конфликта перед вставкой нужна только для понятной ошибки,
// окончательное решение принимает хранилище (ErrSlotTaken)
func (e *Engine) Reserve(ctx context.Context, req ReserveRequest) (appt *domain.Appointment, err error) {
	defer func() { e.observe(operationReserve, err) }()

	req.Date = dateOf(req.Date)
	e.logger.Info("Reserve: actor=%s, date=%s, time=%s, duration=%d",
		req.Actor.UserID, req.Date.Format(domain.DateFormat), req.StartTime, req.DurationMinutes)

	// 1. Валидация входных данных
	if err := validateReserveRequest(req); err != nil {
		e.logger.Warn("Reserve: validation failed: %v", err)
		return nil, err
	}

	// 2. Клиент записывает только себя, статус задает только администратор
	if req.ClientID == uuid.Nil {
		req.ClientID = req.Actor.UserID
	}
	if !req.Actor.IsAdmin {
		if req.ClientID != req.Actor.UserID {
			e.logger.Warn("Reserve: user %s tried to book for client %s", req.Actor.UserID, req.ClientID)
			return nil, fmt.Errorf("%w: clients can only book for themselves", ErrAccessDenied)
		}
		if req.Status != nil {
			return nil, fmt.Errorf("%w: only admins can set appointment status", ErrAccessDenied)
		}
	}

	// 3. Слот должен существовать в расписании дня
	if err := e.checkSlot(ctx, req.Date, req.StartTime, req.DurationMinutes); err != nil {
		e.logger.Warn("Reserve: %v", err)
		return nil, err
	}

	// 4. Прошедшее время и окно бронирования
	if err := e.checkTiming(req.Actor, req.Date, req.StartTime, req.AllowPast); err != nil {
		e.logger.Warn("Reserve: %v", err)
		return nil, err
	}

	// 5. Свежая выборка активных записей, чужую запись не перезаписываем
	active, err := e.activeOnDate(ctx, req.Date)
	if err != nil {
		e.logger.Error("Reserve: %v", err)
		return nil, err
	}
	if conflict := findConflict(active, req.Date, req.StartTime, req.DurationMinutes, uuid.Nil); conflict != nil {
		e.logger.Warn("Reserve: slot %s %s overlaps appointment %s",
			req.Date.Format(domain.DateFormat), req.StartTime, conflict.ID)
		return nil, fmt.Errorf("%w: %s %s", ErrSlotConflict, req.Date.Format(domain.DateFormat), req.StartTime)
	}

	// 6. Создаём запись
	newAppt := &domain.Appointment{
		ClientID:        req.ClientID,
		ServiceName:     strings.TrimSpace(req.ServiceName),
		DurationMinutes: req.DurationMinutes,
		Date:            req.Date,
		StartTime:       req.StartTime,
		Status:          e.resolveStatus(req),
		Notes:           req.Notes,
	}

	created, err := e.store.Insert(ctx, newAppt)
	if err != nil {
		mapped := mapStoreError(err)
		e.logger.Error("Reserve: failed to insert appointment: %v", mapped)
		return nil, mapped
	}

	// 7. Уведомление после фиксации
	e.notify(created, domain.ActionNew)

	e.logger.Info("Reserve: created appointment %s for client %s, status=%s", created.ID, created.ClientID, created.Status)
	return created, nil
}
