package schedule

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Repository интерфейс хранилища рабочих часов
type Repository interface {
	GetWeekly(ctx context.Context) (*domain.WeeklySchedule, error)
	SaveWeekly(ctx context.Context, weekly domain.WeeklySchedule) (*domain.WeeklySchedule, error)
	GetSpecialDate(ctx context.Context, date time.Time) (*domain.SpecialDate, error)
	ListSpecialDates(ctx context.Context, from, to time.Time) ([]*domain.SpecialDate, error)
	UpsertSpecialDate(ctx context.Context, special domain.SpecialDate) (*domain.SpecialDate, error)
	DeleteSpecialDate(ctx context.Context, date time.Time) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
