package create_appointment

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/calendar"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	bookAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/book_appointment"
)

var (
	errInvalidDate   = errors.New("invalid date")
	errInvalidTime   = errors.New("invalid start time")
	errInvalidClient = errors.New("invalid client id")
	errInvalidStatus = errors.New("invalid status")
)

// CreateAppointmentRequest HTTP request model
type CreateAppointmentRequest struct {
	ClientID        *string `json:"clientId,omitempty"` // только для администратора
	Date            string  `json:"date"`               // YYYY-MM-DD
	StartTime       string  `json:"startTime"`          // HH:MM
	ServiceName     string  `json:"serviceName"`
	DurationMinutes int     `json:"durationMinutes"`
	Notes           *string `json:"notes,omitempty"`
	Status          *string `json:"status,omitempty"`    // только для администратора
	AllowPast       bool    `json:"allowPast,omitempty"` // только для администратора
}

// ToUseCaseRequest конвертирует HTTP запрос в запрос use case
func (r *CreateAppointmentRequest) ToUseCaseRequest(actor domain.Actor) (bookAppointment.Request, error) {
	date, err := handlers.ParseDate(r.Date)
	if err != nil {
		return bookAppointment.Request{}, fmt.Errorf("%w: %v", errInvalidDate, err)
	}

	startTime, err := handlers.ParseTime(r.StartTime)
	if err != nil {
		return bookAppointment.Request{}, fmt.Errorf("%w: %v", errInvalidTime, err)
	}

	req := bookAppointment.Request{
		Actor:           actor,
		Date:            date,
		StartTime:       startTime,
		ServiceName:     r.ServiceName,
		DurationMinutes: r.DurationMinutes,
		Notes:           r.Notes,
		AllowPast:       r.AllowPast,
	}

	if r.ClientID != nil {
		clientID, err := uuid.Parse(*r.ClientID)
		if err != nil {
			return bookAppointment.Request{}, fmt.Errorf("%w: %v", errInvalidClient, err)
		}
		req.ClientID = clientID
	}

	if r.Status != nil {
		status, err := domain.ParseAppointmentStatus(*r.Status)
		if err != nil {
			return bookAppointment.Request{}, fmt.Errorf("%w: %v", errInvalidStatus, err)
		}
		req.Status = &status
	}

	return req, nil
}

// SlotResponse свободный слот
type SlotResponse struct {
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
}

// ConflictResponse ответ 409: слот занят, предлагаются свободные слоты той же даты
type ConflictResponse struct {
	Code         int            `json:"code"`
	Message      string         `json:"message"`
	Alternatives []SlotResponse `json:"alternatives"`
}

// FromSlots конвертирует альтернативные слоты
func FromSlots(slots []calendar.Slot) []SlotResponse {
	out := make([]SlotResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, SlotResponse{
			Date:      s.Date.Format(domain.DateFormat),
			StartTime: s.StartTime.String(),
		})
	}
	return out
}
