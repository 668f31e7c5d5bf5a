package reschedule_appointment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/availability"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

type fakeEngine struct {
	got  availability.RescheduleRequest
	appt *domain.Appointment
	err  error
}

func (f *fakeEngine) Reschedule(_ context.Context, req availability.RescheduleRequest) (*domain.Appointment, error) {
	f.got = req
	return f.appt, f.err
}

var (
	client        = domain.Actor{UserID: uuid.New()}
	appointmentID = uuid.New()
)

func serve(engine *fakeEngine, id, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/appointments/"+id+"/reschedule", strings.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"appointmentId": id})
	req = req.WithContext(middleware.WithActor(req.Context(), client))
	rec := httptest.NewRecorder()
	NewHandler(engine, logger.Nop()).Handle(rec, req)
	return rec
}

func TestHandle_Rescheduled(t *testing.T) {
	engine := &fakeEngine{appt: &domain.Appointment{
		ID:              appointmentID,
		ClientID:        client.UserID,
		DurationMinutes: 60,
		Date:            time.Date(2024, 7, 16, 0, 0, 0, 0, time.UTC),
		StartTime:       "14:00",
		Status:          domain.StatusPending,
	}}

	rec := serve(engine, appointmentID.String(), `{"date":"2024-07-16","startTime":"14:00","durationMinutes":60}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.AppointmentResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "15:00", resp.EndTime)

	assert.Equal(t, appointmentID, engine.got.ID)
	assert.Equal(t, client, engine.got.Actor)
	assert.Equal(t, types.TimeString("14:00"), engine.got.StartTime)
	require.NotNil(t, engine.got.DurationMinutes)
	assert.Equal(t, 60, *engine.got.DurationMinutes)
	assert.Nil(t, engine.got.ServiceName)
}

func TestHandle_Errors(t *testing.T) {
	const body = `{"date":"2024-07-16","startTime":"14:00"}`

	tests := []struct {
		name       string
		id         string
		body       string
		err        error
		wantStatus int
	}{
		{name: "bad id", id: "abc", body: body, wantStatus: http.StatusBadRequest},
		{name: "bad body", body: `[]`, wantStatus: http.StatusBadRequest},
		{name: "bad date", body: `{"date":"tomorrow","startTime":"14:00"}`, wantStatus: http.StatusBadRequest},
		{name: "bad time", body: `{"date":"2024-07-16","startTime":"2pm"}`, wantStatus: http.StatusBadRequest},
		{name: "not found", body: body, err: availability.ErrNotFound, wantStatus: http.StatusNotFound},
		{name: "access denied", body: body, err: availability.ErrAccessDenied, wantStatus: http.StatusForbidden},
		{name: "cancelled", body: body, err: availability.ErrInvalidTransition, wantStatus: http.StatusConflict},
		{name: "slot taken", body: body, err: availability.ErrSlotConflict, wantStatus: http.StatusConflict},
		{name: "invalid slot", body: body, err: availability.ErrInvalidSlot, wantStatus: http.StatusBadRequest},
		{name: "past slot", body: body, err: availability.ErrPastSlot, wantStatus: http.StatusBadRequest},
		{name: "invalid range", body: body, err: availability.ErrInvalidRange, wantStatus: http.StatusBadRequest},
		{name: "invalid input", body: body, err: availability.ErrInvalidInput, wantStatus: http.StatusBadRequest},
		{name: "store down", body: body, err: availability.ErrStoreUnavailable, wantStatus: http.StatusServiceUnavailable},
		{name: "unexpected", body: body, err: assert.AnError, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := tt.id
			if id == "" {
				id = appointmentID.String()
			}
			rec := serve(&fakeEngine{err: tt.err}, id, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
