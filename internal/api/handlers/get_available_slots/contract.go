package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/calendar"
)

type BrowseUseCase interface {
	Browse(ctx context.Context, date time.Time, durationMinutes int) ([]calendar.Slot, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
