package get_available_slots

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/availability"
)

const (
	msgMissingDate      = "дата обязательна"
	msgInvalidDate      = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidDuration  = "некорректная длительность услуги"
	msgInvalidHours     = "некорректные часы работы на выбранную дату"
	msgStoreUnavailable = "хранилище записей временно недоступно"
)

type Handler struct {
	useCase         BrowseUseCase
	defaultDuration int
	logger          Logger
}

// NewHandler defaultDuration используется, если длительность не передана
func NewHandler(useCase BrowseUseCase, defaultDuration int, logger Logger) *Handler {
	return &Handler{
		useCase:         useCase,
		defaultDuration: defaultDuration,
		logger:          logger,
	}
}

// Handle GET /api/v1/available-slots
// Query params: date (required, YYYY-MM-DD), duration (optional, минуты)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	dateStr := query.Get("date")
	if dateStr == "" {
		h.logger.Warn("GET /available-slots - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	date, err := handlers.ParseDate(dateStr)
	if err != nil {
		h.logger.Warn("GET /available-slots - Invalid date format: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	duration := h.defaultDuration
	if raw := query.Get("duration"); raw != "" {
		duration, err = strconv.Atoi(raw)
		if err != nil {
			h.logger.Warn("GET /available-slots - Invalid duration: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDuration)
			return
		}
	}

	slots, err := h.useCase.Browse(r.Context(), date, duration)
	if err != nil {
		switch {
		case errors.Is(err, availability.ErrInvalidInput):
			h.logger.Warn("GET /available-slots - Invalid duration: duration=%d", duration)
			handlers.RespondBadRequest(w, msgInvalidDuration)

		case errors.Is(err, availability.ErrInvalidRange):
			h.logger.Warn("GET /available-slots - Invalid business hours: date=%s, error=%v", dateStr, err)
			handlers.RespondBadRequest(w, msgInvalidHours)

		case errors.Is(err, availability.ErrStoreUnavailable):
			h.logger.Error("GET /available-slots - Store unavailable: date=%s, error=%v", dateStr, err)
			handlers.RespondServiceUnavailable(w, msgStoreUnavailable)

		default:
			h.logger.Error("GET /available-slots - Failed to get slots: date=%s, error=%v", dateStr, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /available-slots - Slots retrieved successfully: date=%s, duration=%d, slots_count=%d",
		dateStr, duration, len(slots))
	handlers.RespondJSON(w, http.StatusOK, FromSlots(date, duration, slots))
}
