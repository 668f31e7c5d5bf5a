package confirm_appointment

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
	msgMissingUserID        = "не указан пользователь"
	msgNotFound             = "запись не найдена"
	msgForbidden            = "подтверждать записи может только администратор"
	msgCancelled            = "отменённую запись нельзя подтвердить"
	msgStoreUnavailable     = "хранилище записей временно недоступно"
)

type Handler struct {
	engine ConfirmEngine
	logger Logger
}

func NewHandler(engine ConfirmEngine, logger Logger) *Handler {
	return &Handler{
		engine: engine,
		logger: logger,
	}
}

// Handle PATCH /api/v1/appointments/{appointmentId}/confirm
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	appointmentID, err := handlers.ParseUUID(mux.Vars(r)["appointmentId"])
	if err != nil {
		h.logger.Warn("PATCH /appointments/{id}/confirm - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("PATCH /appointments/{id}/confirm - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	appointment, err := h.engine.Confirm(r.Context(), actor, appointmentID)
	if err != nil {
		switch {
		case errors.Is(err, availability.ErrNotFound):
			h.logger.Warn("PATCH /appointments/{id}/confirm - Appointment not found: appointment_id=%s", appointmentID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, availability.ErrAccessDenied):
			h.logger.Warn("PATCH /appointments/{id}/confirm - Access denied: user_id=%s", actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, availability.ErrInvalidTransition):
			h.logger.Warn("PATCH /appointments/{id}/confirm - Appointment cancelled: appointment_id=%s", appointmentID)
			handlers.RespondConflict(w, msgCancelled)

		case errors.Is(err, availability.ErrStoreUnavailable):
			h.logger.Error("PATCH /appointments/{id}/confirm - Store unavailable: appointment_id=%s, error=%v", appointmentID, err)
			handlers.RespondServiceUnavailable(w, msgStoreUnavailable)

		default:
			h.logger.Error("PATCH /appointments/{id}/confirm - Failed to confirm: appointment_id=%s, error=%v", appointmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /appointments/{id}/confirm - Appointment confirmed: appointment_id=%s", appointmentID)
	handlers.RespondJSON(w, http.StatusOK, models.FromDomainAppointment(appointment))
}
