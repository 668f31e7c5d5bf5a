package get_business_hours

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	scheduleRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-AppointmentService/internal/service/schedule"
	"github.com/m04kA/SMC-AppointmentService/internal/service/schedule/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

func newHandler(t *testing.T) *Handler {
	t.Helper()
	repo := scheduleRepo.NewMemoryRepository()
	_, err := repo.UpsertSpecialDate(context.Background(), domain.SpecialDate{
		Date: time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC),
		Note: "Christmas",
	})
	require.NoError(t, err)

	service := schedule.NewService(repo, domain.DefaultWeeklySchedule(), logger.Nop())
	return NewHandler(service, time.UTC, logger.Nop())
}

func get(h *Handler, query string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodGet, "/api/v1/business-hours?"+query, nil))
	return rec
}

func TestHandle_WeeklyAndSpecialDates(t *testing.T) {
	rec := get(newHandler(t), "from=2024-12-01&to=2024-12-31")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.BusinessHoursResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 30, resp.SlotMinutes)
	require.Len(t, resp.Days, 7)
	assert.Equal(t, "monday", resp.Days[0].Weekday)
	assert.Equal(t, "09:00", resp.Days[0].OpenTime)
	assert.False(t, resp.Days[6].IsOpen)

	require.Len(t, resp.SpecialDates, 1)
	assert.Equal(t, "2024-12-25", resp.SpecialDates[0].Date)
	assert.False(t, resp.SpecialDates[0].IsOpen)
}

func TestHandle_PeriodOutsideSpecialDates(t *testing.T) {
	rec := get(newHandler(t), "from=2024-07-01&to=2024-07-31")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"specialDates":[]`)
}

func TestHandle_InvalidPeriod(t *testing.T) {
	h := newHandler(t)
	assert.Equal(t, http.StatusBadRequest, get(h, "from=2024/07/01").Code)
	assert.Equal(t, http.StatusBadRequest, get(h, "to=soon").Code)
	assert.Equal(t, http.StatusBadRequest, get(h, "from=2024-07-31&to=2024-07-01").Code)
}
