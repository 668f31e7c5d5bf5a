package list_appointments

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/calendar"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
)

const (
	msgMissingUserID    = "не указан пользователь"
	msgInvalidView      = "некорректный вид календаря, ожидается day, week или month"
	msgInvalidDate      = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidClientID  = "некорректный ID клиента"
	msgInvalidStatus    = "некорректный статус записи"
	msgInvalidFlag      = "некорректное значение includeCancelled"
	msgInvalidQuery     = "некорректные параметры запроса"
	msgForbidden        = "нет доступа к записям другого клиента"
	msgStoreUnavailable = "хранилище записей временно недоступно"
)

type Handler struct {
	service  AppointmentService
	location *time.Location
	logger   Logger
}

// NewHandler location задаёт "сегодня", если дата не передана
func NewHandler(service AppointmentService, location *time.Location, logger Logger) *Handler {
	if location == nil {
		location = time.UTC
	}
	return &Handler{
		service:  service,
		location: location,
		logger:   logger,
	}
}

// Handle GET /api/v1/appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("GET /appointments - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	req, err := ToListRequest(actor, r.URL.Query(), calendar.Today(time.Now(), h.location))
	if err != nil {
		h.logger.Warn("GET /appointments - Invalid query: %v", err)
		switch {
		case errors.Is(err, errInvalidView):
			handlers.RespondBadRequest(w, msgInvalidView)
		case errors.Is(err, errInvalidDate):
			handlers.RespondBadRequest(w, msgInvalidDate)
		case errors.Is(err, errInvalidClientID):
			handlers.RespondBadRequest(w, msgInvalidClientID)
		case errors.Is(err, errInvalidStatus):
			handlers.RespondBadRequest(w, msgInvalidStatus)
		default:
			handlers.RespondBadRequest(w, msgInvalidFlag)
		}
		return
	}

	resp, err := h.service.List(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrAccessDenied):
			h.logger.Warn("GET /appointments - Access denied: user_id=%s", actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, appointments.ErrInvalidInput):
			h.logger.Warn("GET /appointments - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidQuery)

		case errors.Is(err, appointments.ErrInternal):
			h.logger.Error("GET /appointments - Store unavailable: user_id=%s, error=%v", actor.UserID, err)
			handlers.RespondServiceUnavailable(w, msgStoreUnavailable)

		default:
			h.logger.Error("GET /appointments - Failed to list appointments: user_id=%s, error=%v", actor.UserID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /appointments - Appointments retrieved successfully: user_id=%s, view=%s, from=%s, to=%s, total=%d",
		actor.UserID, resp.View, resp.From, resp.To, resp.Total)
	handlers.RespondJSON(w, http.StatusOK, resp)
}
