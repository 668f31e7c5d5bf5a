package list_appointments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

var (
	anna  = domain.Actor{UserID: uuid.New()}
	admin = domain.Actor{UserID: uuid.New(), IsAdmin: true}
)

func newHandler(t *testing.T) *Handler {
	t.Helper()
	repo := appointmentRepo.NewMemoryRepository()
	ctx := context.Background()

	for _, a := range []*domain.Appointment{
		{ClientID: anna.UserID, Date: time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC), StartTime: "10:00", Status: domain.StatusPending},
		{ClientID: anna.UserID, Date: time.Date(2024, 7, 17, 0, 0, 0, 0, time.UTC), StartTime: "09:00", Status: domain.StatusConfirmed},
		{ClientID: uuid.New(), Date: time.Date(2024, 7, 16, 0, 0, 0, 0, time.UTC), StartTime: "11:00", Status: domain.StatusPending},
		{ClientID: anna.UserID, Date: time.Date(2024, 7, 16, 0, 0, 0, 0, time.UTC), StartTime: "15:00", Status: domain.StatusCancelled},
	} {
		a.ServiceName = "Haircut"
		a.DurationMinutes = 30
		_, err := repo.Insert(ctx, a)
		require.NoError(t, err)
	}

	service := appointments.NewService(repo, time.Monday, logger.Nop())
	return NewHandler(service, time.UTC, logger.Nop())
}

func list(h *Handler, actor domain.Actor, query string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments?"+query, nil)
	req = req.WithContext(middleware.WithActor(req.Context(), actor))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) models.ListResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp models.ListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHandle_WeekView(t *testing.T) {
	h := newHandler(t)

	resp := decode(t, list(h, admin, "view=week&date=2024-07-17"))
	assert.Equal(t, models.ViewWeek, resp.View)
	assert.Equal(t, "2024-07-15", resp.From)
	assert.Equal(t, "2024-07-21", resp.To)
	assert.Equal(t, 3, resp.Total)

	resp = decode(t, list(h, admin, "view=week&date=2024-07-17&includeCancelled=true"))
	assert.Equal(t, 4, resp.Total)

	resp = decode(t, list(h, admin, "view=week&date=2024-07-17&status=cancelled"))
	assert.Equal(t, 1, resp.Total)
}

func TestHandle_ClientSeesOwnAppointments(t *testing.T) {
	h := newHandler(t)

	resp := decode(t, list(h, anna, "view=month&date=2024-07-01"))
	assert.Equal(t, 2, resp.Total)
	for _, a := range resp.Appointments {
		assert.Equal(t, anna.UserID, a.ClientID)
	}

	rec := list(h, anna, "view=month&date=2024-07-01&clientId="+admin.UserID.String())
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandle_InvalidQuery(t *testing.T) {
	h := newHandler(t)

	for _, query := range []string{
		"view=year",
		"date=17-07-2024",
		"clientId=anna",
		"status=done",
		"includeCancelled=maybe",
	} {
		t.Run(query, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, list(h, admin, query).Code)
		})
	}
}

func TestHandle_Unauthorized(t *testing.T) {
	rec := httptest.NewRecorder()
	newHandler(t).Handle(rec, httptest.NewRequest(http.MethodGet, "/api/v1/appointments", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
