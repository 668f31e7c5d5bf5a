package appointment

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

var testDate = time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return NewRepository(db), mock, func() { _ = db.Close() }
}

func appointmentRows() *sqlmock.Rows {
	return sqlmock.NewRows(columns)
}

func TestRepository_Insert(t *testing.T) {
	repo, mock, closeDB := newMockRepository(t)
	defer closeDB()

	clientID := uuid.New()
	now := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO appointments")).
		WithArgs(sqlmock.AnyArg(), clientID, "Haircut", 30, sqlmock.AnyArg(), "11:00", "pending", nil).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	created, err := repo.Insert(context.Background(), &domain.Appointment{
		ClientID:        clientID,
		ServiceName:     "Haircut",
		DurationMinutes: 30,
		Date:            testDate,
		StartTime:       "11:00",
		Status:          domain.StatusPending,
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, now, created.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Insert_ConstraintViolations(t *testing.T) {
	codes := []pq.ErrorCode{pqUniqueViolation, pqExclusionViolation}

	for _, code := range codes {
		t.Run(string(code), func(t *testing.T) {
			repo, mock, closeDB := newMockRepository(t)
			defer closeDB()

			mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO appointments")).
				WillReturnError(&pq.Error{Code: code})

			_, err := repo.Insert(context.Background(), &domain.Appointment{
				ClientID:        uuid.New(),
				ServiceName:     "Haircut",
				DurationMinutes: 30,
				Date:            testDate,
				StartTime:       "11:00",
				Status:          domain.StatusPending,
			})

			assert.ErrorIs(t, err, ErrSlotTaken)
		})
	}
}

func TestRepository_Insert_OtherErrorIsExecQuery(t *testing.T) {
	repo, mock, closeDB := newMockRepository(t)
	defer closeDB()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO appointments")).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.Insert(context.Background(), &domain.Appointment{
		ClientID: uuid.New(), DurationMinutes: 30, Date: testDate, StartTime: "11:00", Status: domain.StatusPending,
	})

	assert.ErrorIs(t, err, ErrExecQuery)
	assert.NotErrorIs(t, err, ErrSlotTaken)
}

func TestRepository_FindByID(t *testing.T) {
	repo, mock, closeDB := newMockRepository(t)
	defer closeDB()

	id := uuid.New()
	clientID := uuid.New()
	created := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)
	pgDate := time.Date(2024, 7, 15, 0, 0, 0, 0, time.FixedZone("", 0))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, client_id")).
		WithArgs(id).
		WillReturnRows(appointmentRows().AddRow(
			id.String(), clientID.String(), "Coloring", 90, pgDate, "11:00:00", "confirmed", "bring photo", nil, created, created,
		))

	appt, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, id, appt.ID)
	assert.Equal(t, clientID, appt.ClientID)
	assert.Equal(t, 90, appt.DurationMinutes)
	assert.Equal(t, testDate, appt.Date)
	assert.Equal(t, types.TimeString("11:00"), appt.StartTime)
	assert.Equal(t, domain.StatusConfirmed, appt.Status)
	require.NotNil(t, appt.Notes)
	assert.Equal(t, "bring photo", *appt.Notes)
	assert.Nil(t, appt.CancelledAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindByID_NotFound(t *testing.T) {
	repo, mock, closeDB := newMockRepository(t)
	defer closeDB()

	mock.ExpectQuery(regexp.QuoteMeta("FROM appointments")).WillReturnRows(appointmentRows())

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestRepository_FindByID_LocksRowInTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	wrapped := dbmetrics.Wrap(db, nil)
	repo := NewRepository(wrapped)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM appointments WHERE id = \$1 FOR UPDATE`).WillReturnRows(appointmentRows())
	mock.ExpectRollback()

	tx, err := wrapped.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	_, err = repo.FindByID(dbmetrics.WithTx(context.Background(), tx), uuid.New())
	assert.ErrorIs(t, err, ErrAppointmentNotFound)

	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindByDateRange(t *testing.T) {
	repo, mock, closeDB := newMockRepository(t)
	defer closeDB()

	now := time.Now().UTC()
	cancelledAt := now.Add(-time.Hour)

	mock.ExpectQuery(`FROM appointments WHERE \(appointment_date >= \$1 AND appointment_date <= \$2\) ORDER BY appointment_date ASC, start_time ASC`).
		WithArgs(testDate, testDate.AddDate(0, 0, 6)).
		WillReturnRows(appointmentRows().
			AddRow(uuid.NewString(), uuid.NewString(), "Haircut", 30, testDate, "09:00:00", "pending", nil, nil, now, now).
			AddRow(uuid.NewString(), uuid.NewString(), "Haircut", 30, testDate, "10:00:00", "cancelled", nil, cancelledAt, now, now))

	list, err := repo.FindByDateRange(context.Background(), testDate, testDate.AddDate(0, 0, 6))
	require.NoError(t, err)

	require.Len(t, list, 2)
	assert.True(t, list[0].IsActive())
	assert.True(t, list[1].IsCancelled())
	require.NotNil(t, list[1].CancelledAt)
	assert.Equal(t, cancelledAt, *list[1].CancelledAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindByDateRangeForClient(t *testing.T) {
	repo, mock, closeDB := newMockRepository(t)
	defer closeDB()

	clientID := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE (client_id = $1 AND appointment_date >= $2 AND appointment_date <= $3)")).
		WithArgs(clientID, testDate, testDate).
		WillReturnRows(appointmentRows())

	list, err := repo.FindByDateRangeForClient(context.Background(), clientID, testDate, testDate)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Update(t *testing.T) {
	repo, mock, closeDB := newMockRepository(t)
	defer closeDB()

	id := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE appointments SET updated_at = NOW(), appointment_date = $1, start_time = $2 WHERE id = $3 RETURNING id")).
		WithArgs(testDate.AddDate(0, 0, 1), "14:00", id).
		WillReturnRows(appointmentRows().
			AddRow(id.String(), uuid.NewString(), "Haircut", 30, testDate.AddDate(0, 0, 1), "14:00:00", "pending", nil, nil, now, now))

	updated, err := repo.Update(context.Background(), id, domain.AppointmentPatch{
		Date:      ptr.Ptr(testDate.AddDate(0, 0, 1)),
		StartTime: ptr.Ptr(types.TimeString("14:00")),
	})

	require.NoError(t, err)
	assert.Equal(t, types.TimeString("14:00"), updated.StartTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Update_Errors(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		repo, mock, closeDB := newMockRepository(t)
		defer closeDB()

		mock.ExpectQuery(regexp.QuoteMeta("UPDATE appointments")).WillReturnRows(appointmentRows())

		_, err := repo.Update(context.Background(), uuid.New(), domain.AppointmentPatch{Notes: ptr.Ptr("x")})
		assert.ErrorIs(t, err, ErrAppointmentNotFound)
	})

	t.Run("overlap", func(t *testing.T) {
		repo, mock, closeDB := newMockRepository(t)
		defer closeDB()

		mock.ExpectQuery(regexp.QuoteMeta("UPDATE appointments")).
			WillReturnError(&pq.Error{Code: pqExclusionViolation})

		_, err := repo.Update(context.Background(), uuid.New(), domain.AppointmentPatch{StartTime: ptr.Ptr(types.TimeString("10:00"))})
		assert.ErrorIs(t, err, ErrSlotTaken)
	})
}

func TestRepository_SoftCancel(t *testing.T) {
	repo, mock, closeDB := newMockRepository(t)
	defer closeDB()

	id := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE appointments SET status = $1, cancelled_at = COALESCE(cancelled_at, NOW()), updated_at = NOW() WHERE id = $2")).
		WithArgs("cancelled", id).
		WillReturnRows(appointmentRows().
			AddRow(id.String(), uuid.NewString(), "Haircut", 30, testDate, "11:00:00", "cancelled", nil, now, now, now))

	appt, err := repo.SoftCancel(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, appt.IsCancelled())
	assert.NotNil(t, appt.CancelledAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Delete(t *testing.T) {
	repo, mock, closeDB := newMockRepository(t)
	defer closeDB()

	id := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM appointments WHERE id = $1")).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM appointments WHERE id = $1")).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), id))
	assert.ErrorIs(t, repo.Delete(context.Background(), id), ErrAppointmentNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
