package schedule

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

var testDate = time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC)

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return NewRepository(db), mock, func() { _ = db.Close() }
}

func TestRepository_GetWeekly(t *testing.T) {
	repo, mock, closeDB := newMockRepository(t)
	defer closeDB()

	updated := time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"weekday", "is_open", "open_time", "close_time", "slot_minutes", "updated_at"}).
		AddRow(1, true, "09:00:00", "18:00:00", 30, updated).
		AddRow(6, true, "10:00:00", "16:00:00", 30, updated)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT weekday, is_open, open_time, close_time, slot_minutes, updated_at FROM business_hours ORDER BY weekday ASC")).
		WillReturnRows(rows)

	weekly, err := repo.GetWeekly(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 30, weekly.SlotMinutes)
	assert.True(t, weekly.Days[time.Monday].IsOpen)
	assert.Equal(t, types.TimeString("16:00"), weekly.Days[time.Saturday].CloseTime)
	// отсутствующие дни закрыты
	assert.False(t, weekly.Days[time.Sunday].IsOpen)
	assert.False(t, weekly.Days[time.Tuesday].IsOpen)
	assert.Equal(t, updated, weekly.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetWeekly_Empty(t *testing.T) {
	repo, mock, closeDB := newMockRepository(t)
	defer closeDB()

	mock.ExpectQuery(regexp.QuoteMeta("FROM business_hours")).
		WillReturnRows(sqlmock.NewRows([]string{"weekday", "is_open", "open_time", "close_time", "slot_minutes", "updated_at"}))

	_, err := repo.GetWeekly(context.Background())
	assert.ErrorIs(t, err, ErrScheduleNotFound)
}

func TestRepository_SaveWeekly(t *testing.T) {
	repo, mock, closeDB := newMockRepository(t)
	defer closeDB()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO business_hours (weekday,is_open,open_time,close_time,slot_minutes) VALUES ($1,$2,$3,$4,$5),")).
		WillReturnResult(sqlmock.NewResult(0, 7))

	saved, err := repo.SaveWeekly(context.Background(), domain.DefaultWeeklySchedule())
	require.NoError(t, err)
	assert.Equal(t, time.Friday, saved.Days[time.Friday].Weekday)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// timeArg matches a non-NULL "HH:MM" argument
type timeArg struct{}

func (timeArg) Match(v driver.Value) bool {
	s, ok := v.(string)
	return ok && types.TimeString(s).Validate() == nil
}

func TestRepository_SaveWeekly_ClosedDayWithoutHours(t *testing.T) {
	repo, mock, closeDB := newMockRepository(t)
	defer closeDB()

	// воскресенье выходной и пришло без часов, как из PUT /business-hours
	weekly := domain.DefaultWeeklySchedule()
	weekly.Days[time.Sunday] = domain.DaySchedule{Weekday: time.Sunday}
	require.NoError(t, weekly.Validate())

	args := make([]driver.Value, 0, 35)
	for d := time.Sunday; d <= time.Saturday; d++ {
		args = append(args, sqlmock.AnyArg(), sqlmock.AnyArg(), timeArg{}, timeArg{}, sqlmock.AnyArg())
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO business_hours")).
		WithArgs(args...).
		WillReturnResult(sqlmock.NewResult(0, 7))

	saved, err := repo.SaveWeekly(context.Background(), weekly)
	require.NoError(t, err)
	assert.False(t, saved.Days[time.Sunday].IsOpen)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetSpecialDate(t *testing.T) {
	repo, mock, closeDB := newMockRepository(t)
	defer closeDB()

	mock.ExpectQuery(regexp.QuoteMeta("FROM special_dates WHERE special_date = $1")).
		WithArgs(testDate).
		WillReturnRows(sqlmock.NewRows([]string{"special_date", "is_open", "open_time", "close_time", "note"}).
			AddRow(testDate, false, nil, nil, "Christmas"))

	special, err := repo.GetSpecialDate(context.Background(), testDate)
	require.NoError(t, err)

	assert.False(t, special.IsOpen)
	assert.Nil(t, special.OpenTime)
	assert.Equal(t, "Christmas", special.Note)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetSpecialDate_NotFound(t *testing.T) {
	repo, mock, closeDB := newMockRepository(t)
	defer closeDB()

	mock.ExpectQuery(regexp.QuoteMeta("FROM special_dates")).
		WillReturnRows(sqlmock.NewRows([]string{"special_date", "is_open", "open_time", "close_time", "note"}))

	_, err := repo.GetSpecialDate(context.Background(), testDate)
	assert.ErrorIs(t, err, ErrSpecialDateNotFound)
}

func TestRepository_UpsertSpecialDate(t *testing.T) {
	repo, mock, closeDB := newMockRepository(t)
	defer closeDB()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO special_dates")).
		WithArgs(testDate, true, "10:00", "14:00", "short day").
		WillReturnResult(sqlmock.NewResult(0, 1))

	special, err := repo.UpsertSpecialDate(context.Background(), domain.SpecialDate{
		Date:      testDate.Add(15 * time.Hour),
		IsOpen:    true,
		OpenTime:  ptr.Ptr(types.TimeString("10:00")),
		CloseTime: ptr.Ptr(types.TimeString("14:00")),
		Note:      "short day",
	})

	require.NoError(t, err)
	assert.Equal(t, testDate, special.Date)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_DeleteSpecialDate(t *testing.T) {
	repo, mock, closeDB := newMockRepository(t)
	defer closeDB()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM special_dates WHERE special_date = $1")).
		WithArgs(testDate).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteSpecialDate(context.Background(), testDate)
	assert.ErrorIs(t, err, ErrSpecialDateNotFound)
}

func TestMemoryRepository(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	_, err := repo.GetWeekly(ctx)
	assert.ErrorIs(t, err, ErrScheduleNotFound)

	_, err = repo.SaveWeekly(ctx, domain.DefaultWeeklySchedule())
	require.NoError(t, err)

	weekly, err := repo.GetWeekly(ctx)
	require.NoError(t, err)
	assert.True(t, weekly.Days[time.Monday].IsOpen)

	_, err = repo.UpsertSpecialDate(ctx, domain.SpecialDate{Date: testDate, Note: "Christmas"})
	require.NoError(t, err)
	_, err = repo.UpsertSpecialDate(ctx, domain.SpecialDate{Date: testDate.AddDate(0, 0, -10), IsOpen: true})
	require.NoError(t, err)

	special, err := repo.GetSpecialDate(ctx, testDate.Add(10*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "Christmas", special.Note)

	list, err := repo.ListSpecialDates(ctx, testDate.AddDate(0, 0, -30), testDate)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[0].Date.Before(list[1].Date))

	require.NoError(t, repo.DeleteSpecialDate(ctx, testDate))
	assert.ErrorIs(t, repo.DeleteSpecialDate(ctx, testDate), ErrSpecialDateNotFound)
}
