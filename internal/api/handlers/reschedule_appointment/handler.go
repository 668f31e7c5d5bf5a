package reschedule_appointment

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/availability"
)

const (
	msgInvalidAppointmentID = "некорректный ID записи"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidDate          = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidTime          = "некорректный формат времени начала, ожидается HH:MM"
	msgMissingUserID        = "не указан пользователь"
	msgNotFound             = "запись не найдена"
	msgForbidden            = "нет доступа к записи"
	msgCancelled            = "отменённую запись нельзя перенести"
	msgInvalidInput         = "некорректные данные записи"
	msgInvalidSlot          = "выбранное время не совпадает с сеткой слотов или услуга не помещается до закрытия"
	msgInvalidHours         = "некорректные часы работы на выбранную дату"
	msgPastSlot             = "нельзя перенести запись на прошедшее время"
	msgSlotTaken            = "время уже занято, выберите другое"
	msgStoreUnavailable     = "хранилище записей временно недоступно"
)

type Handler struct {
	engine RescheduleEngine
	logger Logger
}

func NewHandler(engine RescheduleEngine, logger Logger) *Handler {
	return &Handler{
		engine: engine,
		logger: logger,
	}
}

// Handle PATCH /api/v1/appointments/{appointmentId}/reschedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	appointmentID, err := handlers.ParseUUID(mux.Vars(r)["appointmentId"])
	if err != nil {
		h.logger.Warn("PATCH /appointments/{id}/reschedule - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("PATCH /appointments/{id}/reschedule - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req RescheduleRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /appointments/{id}/reschedule - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	engineReq, err := req.ToEngineRequest(actor, appointmentID)
	if err != nil {
		h.logger.Warn("PATCH /appointments/{id}/reschedule - Failed to parse request: %v", err)
		if errors.Is(err, errInvalidTime) {
			handlers.RespondBadRequest(w, msgInvalidTime)
		} else {
			handlers.RespondBadRequest(w, msgInvalidDate)
		}
		return
	}

	appointment, err := h.engine.Reschedule(r.Context(), engineReq)
	if err != nil {
		switch {
		case errors.Is(err, availability.ErrNotFound):
			h.logger.Warn("PATCH /appointments/{id}/reschedule - Appointment not found: appointment_id=%s", appointmentID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, availability.ErrAccessDenied):
			h.logger.Warn("PATCH /appointments/{id}/reschedule - Access denied: appointment_id=%s, user_id=%s", appointmentID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, availability.ErrInvalidTransition):
			h.logger.Warn("PATCH /appointments/{id}/reschedule - Appointment cancelled: appointment_id=%s", appointmentID)
			handlers.RespondConflict(w, msgCancelled)

		case errors.Is(err, availability.ErrSlotConflict):
			h.logger.Warn("PATCH /appointments/{id}/reschedule - Slot taken: appointment_id=%s, date=%s, time=%s",
				appointmentID, req.Date, req.StartTime)
			handlers.RespondConflict(w, msgSlotTaken)

		case errors.Is(err, availability.ErrInvalidSlot):
			h.logger.Warn("PATCH /appointments/{id}/reschedule - Invalid slot: appointment_id=%s, date=%s, time=%s",
				appointmentID, req.Date, req.StartTime)
			handlers.RespondBadRequest(w, msgInvalidSlot)

		case errors.Is(err, availability.ErrPastSlot):
			h.logger.Warn("PATCH /appointments/{id}/reschedule - Past slot: appointment_id=%s, date=%s, time=%s",
				appointmentID, req.Date, req.StartTime)
			handlers.RespondBadRequest(w, msgPastSlot)

		case errors.Is(err, availability.ErrInvalidRange):
			h.logger.Warn("PATCH /appointments/{id}/reschedule - Invalid business hours: date=%s, error=%v", req.Date, err)
			handlers.RespondBadRequest(w, msgInvalidHours)

		case errors.Is(err, availability.ErrInvalidInput):
			h.logger.Warn("PATCH /appointments/{id}/reschedule - Invalid input: appointment_id=%s, error=%v", appointmentID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, availability.ErrStoreUnavailable):
			h.logger.Error("PATCH /appointments/{id}/reschedule - Store unavailable: appointment_id=%s, error=%v", appointmentID, err)
			handlers.RespondServiceUnavailable(w, msgStoreUnavailable)

		default:
			h.logger.Error("PATCH /appointments/{id}/reschedule - Failed to reschedule: appointment_id=%s, error=%v", appointmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /appointments/{id}/reschedule - Appointment rescheduled successfully: appointment_id=%s, date=%s, time=%s",
		appointmentID, req.Date, appointment.StartTime)
	handlers.RespondJSON(w, http.StatusOK, models.FromDomainAppointment(appointment))
}
