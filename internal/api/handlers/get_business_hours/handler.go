package get_business_hours

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/calendar"
	"github.com/m04kA/SMC-AppointmentService/internal/service/schedule"
)

// defaultPeriodDays особые даты по умолчанию показываются на месяц вперёд
const defaultPeriodDays = 30

const (
	msgInvalidFrom   = "некорректный формат from, ожидается YYYY-MM-DD"
	msgInvalidTo     = "некорректный формат to, ожидается YYYY-MM-DD"
	msgInvalidPeriod = "конец периода раньше начала"
)

type Handler struct {
	service  ScheduleService
	location *time.Location
	logger   Logger
}

func NewHandler(service ScheduleService, location *time.Location, logger Logger) *Handler {
	if location == nil {
		location = time.UTC
	}
	return &Handler{
		service:  service,
		location: location,
		logger:   logger,
	}
}

// Handle GET /api/v1/business-hours
// Query params: from, to (optional, YYYY-MM-DD) - период особых дат
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	from := calendar.Today(time.Now(), h.location)
	if raw := query.Get("from"); raw != "" {
		parsed, err := handlers.ParseDate(raw)
		if err != nil {
			h.logger.Warn("GET /business-hours - Invalid from: %v", err)
			handlers.RespondBadRequest(w, msgInvalidFrom)
			return
		}
		from = parsed
	}

	to := from.AddDate(0, 0, defaultPeriodDays)
	if raw := query.Get("to"); raw != "" {
		parsed, err := handlers.ParseDate(raw)
		if err != nil {
			h.logger.Warn("GET /business-hours - Invalid to: %v", err)
			handlers.RespondBadRequest(w, msgInvalidTo)
			return
		}
		to = parsed
	}

	resp, err := h.service.Get(r.Context(), from, to)
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrInvalidInput):
			h.logger.Warn("GET /business-hours - Invalid period: %v", err)
			handlers.RespondBadRequest(w, msgInvalidPeriod)

		default:
			h.logger.Error("GET /business-hours - Failed to get business hours: error=%v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /business-hours - Business hours retrieved successfully: special_dates=%d", len(resp.SpecialDates))
	handlers.RespondJSON(w, http.StatusOK, resp)
}
