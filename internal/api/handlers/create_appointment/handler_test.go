package create_appointment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/calendar"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/availability"
	bookAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/book_appointment"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

type fakeUseCase struct {
	got    bookAppointment.Request
	result *bookAppointment.Result
	err    error
}

func (f *fakeUseCase) Execute(_ context.Context, req bookAppointment.Request) (*bookAppointment.Result, error) {
	f.got = req
	return f.result, f.err
}

var (
	client = domain.Actor{UserID: uuid.MustParse("11111111-1111-1111-1111-111111111111")}
	july15 = time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)
)

const validBody = `{"date":"2024-07-15","startTime":"10:00","serviceName":"Haircut","durationMinutes":30}`

func serve(t *testing.T, uc *fakeUseCase, body string, withActor bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", strings.NewReader(body))
	if withActor {
		req = req.WithContext(middleware.WithActor(req.Context(), client))
	}
	rec := httptest.NewRecorder()
	NewHandler(uc, logger.Nop()).Handle(rec, req)
	return rec
}

func TestHandle_Created(t *testing.T) {
	uc := &fakeUseCase{result: &bookAppointment.Result{Appointment: &domain.Appointment{
		ID:              uuid.New(),
		ClientID:        client.UserID,
		ServiceName:     "Haircut",
		DurationMinutes: 30,
		Date:            july15,
		StartTime:       "10:00",
		Status:          domain.StatusPending,
	}}}

	rec := serve(t, uc, validBody, true)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp models.AppointmentResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "2024-07-15", resp.Date)
	assert.Equal(t, "10:00", resp.StartTime)
	assert.Equal(t, "10:30", resp.EndTime)
	assert.Equal(t, "pending", resp.Status)

	assert.Equal(t, client, uc.got.Actor)
	assert.Equal(t, uuid.Nil, uc.got.ClientID)
	assert.Equal(t, july15, uc.got.Date)
	assert.Nil(t, uc.got.Status)
}

func TestHandle_ConflictReturnsAlternatives(t *testing.T) {
	uc := &fakeUseCase{
		result: &bookAppointment.Result{Alternatives: []calendar.Slot{
			{Date: july15, StartTime: "10:30"},
			{Date: july15, StartTime: "11:00"},
		}},
		err: availability.ErrSlotConflict,
	}

	rec := serve(t, uc, validBody, true)
	require.Equal(t, http.StatusConflict, rec.Code)

	var resp ConflictResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, msgSlotTaken, resp.Message)
	assert.Equal(t, []SlotResponse{
		{Date: "2024-07-15", StartTime: "10:30"},
		{Date: "2024-07-15", StartTime: "11:00"},
	}, resp.Alternatives)
}

func TestHandle_AdminFields(t *testing.T) {
	other := uuid.New()
	uc := &fakeUseCase{result: &bookAppointment.Result{Appointment: &domain.Appointment{ID: uuid.New(), Date: july15, StartTime: "10:00"}}}

	body := `{"clientId":"` + other.String() + `","date":"2024-07-15","startTime":"10:00","serviceName":"Haircut","durationMinutes":30,"status":"confirmed","allowPast":true}`
	rec := serve(t, uc, body, true)
	require.Equal(t, http.StatusCreated, rec.Code)

	assert.Equal(t, other, uc.got.ClientID)
	require.NotNil(t, uc.got.Status)
	assert.Equal(t, domain.StatusConfirmed, *uc.got.Status)
	assert.True(t, uc.got.AllowPast)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		noActor    bool
		wantStatus int
		wantMsg    string
	}{
		{name: "no actor", body: validBody, noActor: true, wantStatus: http.StatusUnauthorized, wantMsg: msgMissingUserID},
		{name: "broken json", body: `{`, wantStatus: http.StatusBadRequest, wantMsg: msgInvalidRequestBody},
		{name: "bad date", body: `{"date":"15/07/2024","startTime":"10:00"}`, wantStatus: http.StatusBadRequest, wantMsg: msgInvalidDate},
		{name: "bad time", body: `{"date":"2024-07-15","startTime":"10am"}`, wantStatus: http.StatusBadRequest, wantMsg: msgInvalidTime},
		{name: "bad client", body: `{"clientId":"x","date":"2024-07-15","startTime":"10:00"}`, wantStatus: http.StatusBadRequest, wantMsg: msgInvalidClientID},
		{name: "bad status", body: `{"date":"2024-07-15","startTime":"10:00","status":"done"}`, wantStatus: http.StatusBadRequest, wantMsg: msgInvalidStatus},
		{name: "invalid slot", body: validBody, err: availability.ErrInvalidSlot, wantStatus: http.StatusBadRequest, wantMsg: msgInvalidSlot},
		{name: "past slot", body: validBody, err: availability.ErrPastSlot, wantStatus: http.StatusBadRequest, wantMsg: msgPastSlot},
		{name: "invalid range", body: validBody, err: availability.ErrInvalidRange, wantStatus: http.StatusBadRequest, wantMsg: msgInvalidHours},
		{name: "invalid input", body: validBody, err: availability.ErrInvalidInput, wantStatus: http.StatusBadRequest, wantMsg: msgInvalidInput},
		{name: "access denied", body: validBody, err: availability.ErrAccessDenied, wantStatus: http.StatusForbidden, wantMsg: msgForbidden},
		{name: "store unavailable", body: validBody, err: availability.ErrStoreUnavailable, wantStatus: http.StatusServiceUnavailable, wantMsg: msgStoreUnavailable},
		{name: "unexpected", body: validBody, err: assert.AnError, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, &fakeUseCase{err: tt.err}, tt.body, !tt.noActor)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantMsg != "" {
				assert.Contains(t, rec.Body.String(), tt.wantMsg)
			}
		})
	}
}
