package list_appointments

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

var (
	errInvalidView     = errors.New("invalid view")
	errInvalidDate     = errors.New("invalid date")
	errInvalidClientID = errors.New("invalid client id")
	errInvalidStatus   = errors.New("invalid status")
	errInvalidFlag     = errors.New("invalid includeCancelled")
)

// ToListRequest собирает запрос из query параметров
// Query params: view (day|week|month), date (YYYY-MM-DD), clientId, status, includeCancelled
func ToListRequest(actor domain.Actor, query url.Values, today time.Time) (models.ListRequest, error) {
	view, err := models.ParseView(query.Get("view"))
	if err != nil {
		return models.ListRequest{}, fmt.Errorf("%w: %v", errInvalidView, err)
	}

	req := models.ListRequest{Actor: actor, View: view, Date: today}

	if raw := query.Get("date"); raw != "" {
		if req.Date, err = handlers.ParseDate(raw); err != nil {
			return models.ListRequest{}, fmt.Errorf("%w: %v", errInvalidDate, err)
		}
	}

	if raw := query.Get("clientId"); raw != "" {
		clientID, err := uuid.Parse(raw)
		if err != nil {
			return models.ListRequest{}, fmt.Errorf("%w: %v", errInvalidClientID, err)
		}
		req.ClientID = &clientID
	}

	if raw := query.Get("status"); raw != "" {
		status, err := domain.ParseAppointmentStatus(raw)
		if err != nil {
			return models.ListRequest{}, fmt.Errorf("%w: %v", errInvalidStatus, err)
		}
		req.Status = &status
	}

	if raw := query.Get("includeCancelled"); raw != "" {
		if req.IncludeInactive, err = strconv.ParseBool(raw); err != nil {
			return models.ListRequest{}, fmt.Errorf("%w: %v", errInvalidFlag, err)
		}
	}

	return req, nil
}
