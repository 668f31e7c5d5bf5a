package book_appointment

import (
	"context"
	"errors"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/calendar"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/availability"
)

// UseCase сценарий записи в два шага: просмотр свободных слотов и запись на выбранный
// Состояние между шагами не хранится, слот за пользователя не выбирается
type UseCase struct {
	engine AvailabilityEngine
	logger Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(engine AvailabilityEngine, logger Logger) *UseCase {
	return &UseCase{
		engine: engine,
		logger: logger,
	}
}

// Browse первый шаг: свободные слоты даты
func (uc *UseCase) Browse(ctx context.Context, date time.Time, durationMinutes int) ([]calendar.Slot, error) {
	return uc.engine.GetAvailableSlots(ctx, date, durationMinutes)
}

// Execute второй шаг: запись на выбранный слот
// Если слот успели занять, один раз перезапрашивает свободные слоты и возвращает их
// вместе с ErrSlotConflict. Прочие ошибки возвращаются как есть, без повторов
func (uc *UseCase) Execute(ctx context.Context, req Request) (*Result, error) {
	uc.logger.Info("BookAppointment: actor=%s, date=%s, time=%s",
		req.Actor.UserID, req.Date.Format(domain.DateFormat), req.StartTime)

	// 1. Пытаемся записаться
	appt, err := uc.engine.Reserve(ctx, availability.ReserveRequest{
		Actor:           req.Actor,
		ClientID:        req.ClientID,
		Date:            req.Date,
		StartTime:       req.StartTime,
		ServiceName:     req.ServiceName,
		DurationMinutes: req.DurationMinutes,
		Notes:           req.Notes,
		Status:          req.Status,
		AllowPast:       req.AllowPast,
	})
	if err == nil {
		uc.logger.Info("BookAppointment: appointment %s created", appt.ID)
		return &Result{Appointment: appt}, nil
	}

	if !errors.Is(err, availability.ErrSlotConflict) {
		return nil, err
	}

	// 2. Слот заняли, предлагаем свежий список
	uc.logger.Warn("BookAppointment: slot %s %s is taken, re-querying availability",
		req.Date.Format(domain.DateFormat), req.StartTime)

	alternatives, qErr := uc.engine.GetAvailableSlots(ctx, req.Date, req.DurationMinutes)
	if qErr != nil {
		uc.logger.Error("BookAppointment: failed to re-query availability: %v", qErr)
		alternatives = []calendar.Slot{}
	}

	return &Result{Alternatives: alternatives}, err
}
