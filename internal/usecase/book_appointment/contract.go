package book_appointment

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/calendar"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/availability"
)

// AvailabilityEngine интерфейс движка доступности
type AvailabilityEngine interface {
	GetAvailableSlots(ctx context.Context, date time.Time, durationMinutes int) ([]calendar.Slot, error)
	Reserve(ctx context.Context, req availability.ReserveRequest) (*domain.Appointment, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
