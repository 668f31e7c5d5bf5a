package cancel_appointment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/availability"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

type fakeEngine struct {
	actor domain.Actor
	id    uuid.UUID
	err   error
}

func (f *fakeEngine) Cancel(_ context.Context, actor domain.Actor, id uuid.UUID) (*domain.Appointment, error) {
	f.actor = actor
	f.id = id
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Appointment{
		ID:              id,
		ClientID:        actor.UserID,
		DurationMinutes: 30,
		Date:            time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC),
		StartTime:       "10:00",
		Status:          domain.StatusCancelled,
	}, nil
}

func serve(engine *fakeEngine, id string, actor *domain.Actor) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/appointments/"+id+"/cancel", nil)
	req = mux.SetURLVars(req, map[string]string{"appointmentId": id})
	if actor != nil {
		req = req.WithContext(middleware.WithActor(req.Context(), *actor))
	}
	rec := httptest.NewRecorder()
	NewHandler(engine, logger.Nop()).Handle(rec, req)
	return rec
}

func TestHandle_OK(t *testing.T) {
	actor := domain.Actor{UserID: uuid.New(), IsAdmin: true}
	id := uuid.New()
	engine := &fakeEngine{}

	rec := serve(engine, id.String(), &actor)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"cancelled"`)
	assert.Equal(t, id, engine.id)
	assert.Equal(t, actor, engine.actor)
}

func TestHandle_Errors(t *testing.T) {
	actor := domain.Actor{UserID: uuid.New()}

	tests := []struct {
		name       string
		id         string
		noActor    bool
		err        error
		wantStatus int
	}{
		{name: "bad id", id: "1", wantStatus: http.StatusBadRequest},
		{name: "no actor", noActor: true, wantStatus: http.StatusUnauthorized},
		{name: "not found", err: availability.ErrNotFound, wantStatus: http.StatusNotFound},
		{name: "access denied", err: availability.ErrAccessDenied, wantStatus: http.StatusForbidden},
		{name: "store down", err: availability.ErrStoreUnavailable, wantStatus: http.StatusServiceUnavailable},
		{name: "unexpected", err: assert.AnError, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := tt.id
			if id == "" {
				id = uuid.NewString()
			}
			a := &actor
			if tt.noActor {
				a = nil
			}
			rec := serve(&fakeEngine{err: tt.err}, id, a)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
