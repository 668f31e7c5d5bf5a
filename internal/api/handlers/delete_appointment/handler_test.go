package delete_appointment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/availability"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

type fakeEngine struct {
	deleted uuid.UUID
	err     error
}

func (f *fakeEngine) Delete(_ context.Context, _ domain.Actor, id uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = id
	return nil
}

func serve(engine *fakeEngine, id string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/appointments/"+id, nil)
	req = mux.SetURLVars(req, map[string]string{"appointmentId": id})
	req = req.WithContext(middleware.WithActor(req.Context(), domain.Actor{UserID: uuid.New(), IsAdmin: true}))
	rec := httptest.NewRecorder()
	NewHandler(engine, logger.Nop()).Handle(rec, req)
	return rec
}

func TestHandle_NoContent(t *testing.T) {
	id := uuid.New()
	engine := &fakeEngine{}

	rec := serve(engine, id.String())

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, id, engine.deleted)
}

func TestHandle_Errors(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, serve(&fakeEngine{}, "nope").Code)
	assert.Equal(t, http.StatusNotFound, serve(&fakeEngine{err: availability.ErrNotFound}, uuid.NewString()).Code)
	assert.Equal(t, http.StatusForbidden, serve(&fakeEngine{err: availability.ErrAccessDenied}, uuid.NewString()).Code)
	assert.Equal(t, http.StatusServiceUnavailable, serve(&fakeEngine{err: availability.ErrStoreUnavailable}, uuid.NewString()).Code)
	assert.Equal(t, http.StatusInternalServerError, serve(&fakeEngine{err: assert.AnError}, uuid.NewString()).Code)
}
