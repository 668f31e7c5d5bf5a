package reschedule_appointment

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/availability"
)

var (
	errInvalidDate = errors.New("invalid date")
	errInvalidTime = errors.New("invalid start time")
)

// RescheduleRequest HTTP request model
type RescheduleRequest struct {
	Date            string  `json:"date"`      // YYYY-MM-DD
	StartTime       string  `json:"startTime"` // HH:MM
	ServiceName     *string `json:"serviceName,omitempty"`
	DurationMinutes *int    `json:"durationMinutes,omitempty"`
	AllowPast       bool    `json:"allowPast,omitempty"` // только для администратора
}

// ToEngineRequest конвертирует HTTP запрос в запрос движка
func (r *RescheduleRequest) ToEngineRequest(actor domain.Actor, id uuid.UUID) (availability.RescheduleRequest, error) {
	date, err := handlers.ParseDate(r.Date)
	if err != nil {
		return availability.RescheduleRequest{}, fmt.Errorf("%w: %v", errInvalidDate, err)
	}

	startTime, err := handlers.ParseTime(r.StartTime)
	if err != nil {
		return availability.RescheduleRequest{}, fmt.Errorf("%w: %v", errInvalidTime, err)
	}

	return availability.RescheduleRequest{
		Actor:           actor,
		ID:              id,
		Date:            date,
		StartTime:       startTime,
		ServiceName:     r.ServiceName,
		DurationMinutes: r.DurationMinutes,
		AllowPast:       r.AllowPast,
	}, nil
}
