package availability

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/calendar"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// AppointmentStore интерфейс хранилища записей
// Хранилище обязано атомарно отклонять вставку и перенос на занятый слот (ErrSlotTaken)
type AppointmentStore interface {
	FindByDateRange(ctx context.Context, startDate, endDate time.Time) ([]*domain.Appointment, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Appointment, error)
	Insert(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error)
	Update(ctx context.Context, id uuid.UUID, patch domain.AppointmentPatch) (*domain.Appointment, error)
	SoftCancel(ctx context.Context, id uuid.UUID) (*domain.Appointment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ScheduleProvider источник рабочих часов на дату
type ScheduleProvider interface {
	HoursFor(ctx context.Context, date time.Time) (calendar.BusinessHours, error)
}

// Notifier получает уведомления об изменении записей
// Вызов не должен блокироваться и не возвращает ошибок
type Notifier interface {
	Notify(appt *domain.Appointment, action domain.NotificationAction)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// MetricsRecorder счётчик операций с записями
type MetricsRecorder interface {
	ObserveAppointmentOperation(operation, result string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
