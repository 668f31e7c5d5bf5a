package update_business_hours

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	scheduleRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-AppointmentService/internal/service/schedule"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

const weekdaysOnly = `{"slotMinutes":60,"days":[
	{"weekday":"monday","isOpen":true,"openTime":"10:00","closeTime":"19:00"},
	{"weekday":"tuesday","isOpen":true,"openTime":"10:00","closeTime":"19:00"}
]}`

func put(actor domain.Actor, body string) *httptest.ResponseRecorder {
	service := schedule.NewService(scheduleRepo.NewMemoryRepository(), domain.DefaultWeeklySchedule(), logger.Nop())
	req := httptest.NewRequest(http.MethodPut, "/api/v1/business-hours", strings.NewReader(body))
	req = req.WithContext(middleware.WithActor(req.Context(), actor))
	rec := httptest.NewRecorder()
	NewHandler(service, logger.Nop()).Handle(rec, req)
	return rec
}

func TestHandle_AdminUpdatesHours(t *testing.T) {
	rec := put(domain.Actor{UserID: uuid.New(), IsAdmin: true}, weekdaysOnly)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"slotMinutes":60`)
	assert.Contains(t, rec.Body.String(), `{"weekday":"monday","isOpen":true,"openTime":"10:00","closeTime":"19:00"}`)
	assert.Contains(t, rec.Body.String(), `{"weekday":"wednesday","isOpen":false}`)
}

func TestHandle_Rejected(t *testing.T) {
	admin := domain.Actor{UserID: uuid.New(), IsAdmin: true}

	assert.Equal(t, http.StatusForbidden, put(domain.Actor{UserID: uuid.New()}, weekdaysOnly).Code)
	assert.Equal(t, http.StatusBadRequest, put(admin, `{"slotMinutes":`).Code)
	assert.Equal(t, http.StatusBadRequest, put(admin, `{"slotMinutes":30,"days":[{"weekday":"monday","isOpen":true,"openTime":"18:00","closeTime":"09:00"}]}`).Code)
	assert.Equal(t, http.StatusBadRequest, put(admin, `{"slotMinutes":30,"days":[{"weekday":"funday","isOpen":false}]}`).Code)
}
