package appointments

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// AppointmentRepository интерфейс чтения записей
type AppointmentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Appointment, error)
	FindByDateRange(ctx context.Context, startDate, endDate time.Time) ([]*domain.Appointment, error)
	FindByDateRangeForClient(ctx context.Context, clientID uuid.UUID, startDate, endDate time.Time) ([]*domain.Appointment, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
