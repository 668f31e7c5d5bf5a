package create_appointment

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/availability"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты записи, ожидается YYYY-MM-DD"
	msgInvalidTime        = "некорректный формат времени начала, ожидается HH:MM"
	msgInvalidClientID    = "некорректный ID клиента"
	msgInvalidStatus      = "некорректный статус записи"
	msgMissingUserID      = "не указан пользователь"
	msgInvalidInput       = "некорректные данные записи"
	msgInvalidSlot        = "выбранное время не совпадает с сеткой слотов или услуга не помещается до закрытия"
	msgInvalidHours       = "некорректные часы работы на выбранную дату"
	msgPastSlot           = "нельзя записаться на прошедшее время"
	msgSlotTaken          = "время уже занято, выберите другое"
	msgForbidden          = "недостаточно прав"
	msgStoreUnavailable   = "хранилище записей временно недоступно"
)

type Handler struct {
	useCase BookAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase BookAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("POST /appointments - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(actor)
	if err != nil {
		h.logger.Warn("POST /appointments - Failed to parse request: %v", err)
		switch {
		case errors.Is(err, errInvalidTime):
			handlers.RespondBadRequest(w, msgInvalidTime)
		case errors.Is(err, errInvalidClient):
			handlers.RespondBadRequest(w, msgInvalidClientID)
		case errors.Is(err, errInvalidStatus):
			handlers.RespondBadRequest(w, msgInvalidStatus)
		default:
			handlers.RespondBadRequest(w, msgInvalidDate)
		}
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, availability.ErrSlotConflict):
			alternatives := FromSlots(nil)
			if result != nil {
				alternatives = FromSlots(result.Alternatives)
			}
			h.logger.Warn("POST /appointments - Slot taken: user_id=%s, date=%s, time=%s, alternatives=%d",
				actor.UserID, req.Date, req.StartTime, len(alternatives))
			handlers.RespondJSON(w, http.StatusConflict, ConflictResponse{
				Code:         http.StatusConflict,
				Message:      msgSlotTaken,
				Alternatives: alternatives,
			})

		case errors.Is(err, availability.ErrInvalidSlot):
			h.logger.Warn("POST /appointments - Invalid slot: user_id=%s, date=%s, time=%s", actor.UserID, req.Date, req.StartTime)
			handlers.RespondBadRequest(w, msgInvalidSlot)

		case errors.Is(err, availability.ErrPastSlot):
			h.logger.Warn("POST /appointments - Past slot: user_id=%s, date=%s, time=%s", actor.UserID, req.Date, req.StartTime)
			handlers.RespondBadRequest(w, msgPastSlot)

		case errors.Is(err, availability.ErrInvalidRange):
			h.logger.Warn("POST /appointments - Invalid business hours: date=%s, error=%v", req.Date, err)
			handlers.RespondBadRequest(w, msgInvalidHours)

		case errors.Is(err, availability.ErrInvalidInput):
			h.logger.Warn("POST /appointments - Invalid input: user_id=%s, error=%v", actor.UserID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, availability.ErrAccessDenied):
			h.logger.Warn("POST /appointments - Access denied: user_id=%s", actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, availability.ErrStoreUnavailable):
			h.logger.Error("POST /appointments - Store unavailable: user_id=%s, error=%v", actor.UserID, err)
			handlers.RespondServiceUnavailable(w, msgStoreUnavailable)

		default:
			h.logger.Error("POST /appointments - Failed to create appointment: user_id=%s, error=%v", actor.UserID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /appointments - Appointment created successfully: appointment_id=%s, client_id=%s",
		result.Appointment.ID, result.Appointment.ClientID)
	handlers.RespondJSON(w, http.StatusCreated, models.FromDomainAppointment(result.Appointment))
}
