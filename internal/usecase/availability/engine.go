package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/calendar"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Метки результата операции для метрик
const (
	resultOK       = "ok"
	resultConflict = "conflict"
	resultNotFound = "not_found"
	resultRejected = "rejected"
	resultError    = "error"
)

// Engine движок доступности и бронирования слотов
// Единственный компонент, который изменяет записи; следит, чтобы на слот
// приходилось не больше одной активной записи
type Engine struct {
	store        AppointmentStore
	txManager    TransactionManager
	schedule     ScheduleProvider
	notifier     Notifier
	policy       Policy
	metrics      MetricsRecorder
	timeProvider TimeProvider
	logger       Logger
}

// Option настройка движка
type Option func(*Engine)

// WithMetrics включает счётчики операций
func WithMetrics(m MetricsRecorder) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithTimeProvider подменяет источник текущего времени
func WithTimeProvider(tp TimeProvider) Option {
	return func(e *Engine) { e.timeProvider = tp }
}

// NewEngine создает новый экземпляр движка
// notifier может быть nil, тогда уведомления не отправляются
func NewEngine(
	store AppointmentStore,
	txManager TransactionManager,
	schedule ScheduleProvider,
	notifier Notifier,
	policy Policy,
	logger Logger,
	opts ...Option,
) *Engine {
	if policy.Location == nil {
		policy.Location = time.UTC
	}
	if policy.DefaultStatus == "" {
		policy.DefaultStatus = domain.DefaultStatus
	}

	e := &Engine{
		store:        store,
		txManager:    txManager,
		schedule:     schedule,
		notifier:     notifier,
		policy:       policy,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// hoursFor рабочие часы на дату
func (e *Engine) hoursFor(ctx context.Context, date time.Time) (calendar.BusinessHours, error) {
	hours, err := e.schedule.HoursFor(ctx, date)
	if err != nil {
		return calendar.BusinessHours{}, fmt.Errorf("%w: business hours for %s: %v",
			ErrStoreUnavailable, date.Format(domain.DateFormat), err)
	}
	return hours, nil
}

// daySlots генерирует слоты дня
func (e *Engine) daySlots(ctx context.Context, date time.Time) ([]calendar.Slot, calendar.BusinessHours, error) {
	hours, err := e.hoursFor(ctx, date)
	if err != nil {
		return nil, hours, err
	}

	slots, err := calendar.GenerateDaySlots(date, hours)
	if err != nil {
		return nil, hours, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	return slots, hours, nil
}

// activeOnDate свежий список активных записей на дату
func (e *Engine) activeOnDate(ctx context.Context, date time.Time) ([]*domain.Appointment, error) {
	appointments, err := e.store.FindByDateRange(ctx, date, date)
	if err != nil {
		return nil, fmt.Errorf("%w: appointments for %s: %v", ErrStoreUnavailable, date.Format(domain.DateFormat), err)
	}
	return activeOnly(appointments), nil
}

// findForUpdate перечитывает запись перед изменением (внутри транзакции - с блокировкой строки)
func (e *Engine) findForUpdate(ctx context.Context, id uuid.UUID) (*domain.Appointment, error) {
	appt, err := e.store.FindByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return appt, nil
}

// earliestStart минимальное время начала слота на дату
// Для прошедших дат возвращает false, для будущих - ноль
func (e *Engine) earliestStart(date time.Time) (types.TimeString, bool) {
	now := e.timeProvider.Now().In(e.policy.Location)
	today := calendar.Today(now, e.policy.Location)
	day := calendar.DateOnly(date)

	if day.Before(today) {
		return "", false
	}
	if day.After(today) {
		return types.TimeString("00:00"), true
	}

	minutes := now.Hour()*60 + now.Minute() + e.policy.MinNoticeMinutes
	if now.Second() > 0 || now.Nanosecond() > 0 {
		// слот, начавшийся в эту минуту, уже прошёл
		minutes++
	}
	earliest, err := types.NewTimeStringFromMinutes(minutes)
	if err != nil {
		// до конца дня ничего не успеть
		return "", false
	}
	return earliest, true
}

// beyondWindow дата дальше, чем разрешает MaxAdvanceDays
func (e *Engine) beyondWindow(date time.Time) bool {
	if e.policy.MaxAdvanceDays <= 0 {
		return false
	}
	today := calendar.Today(e.timeProvider.Now(), e.policy.Location)
	return calendar.DateOnly(date).After(today.AddDate(0, 0, e.policy.MaxAdvanceDays))
}

// notify отправляет уведомление после успешной фиксации, ошибки доставки сюда не доходят
func (e *Engine) notify(appt *domain.Appointment, action domain.NotificationAction) {
	if e.notifier == nil || appt == nil {
		return
	}
	e.notifier.Notify(appt.Clone(), action)
}

func (e *Engine) observe(operation string, err error) {
	if e.metrics == nil {
		return
	}
	e.metrics.ObserveAppointmentOperation(operation, resultLabel(err))
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return resultOK
	case errors.Is(err, ErrSlotConflict):
		return resultConflict
	case errors.Is(err, ErrNotFound):
		return resultNotFound
	case errors.Is(err, ErrStoreUnavailable):
		return resultError
	default:
		return resultRejected
	}
}

// mapStoreError переводит ошибки хранилища в ошибки движка
func mapStoreError(err error) error {
	switch {
	case errors.Is(err, appointmentRepo.ErrAppointmentNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, appointmentRepo.ErrSlotTaken):
		return fmt.Errorf("%w: %v", ErrSlotConflict, err)
	default:
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
}
