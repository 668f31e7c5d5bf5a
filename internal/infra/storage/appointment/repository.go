package appointment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-AppointmentService/internal/calendar"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

const tableName = "appointments"

// Коды ошибок PostgreSQL, которыми хранилище сигнализирует о занятом слоте
const (
	pqUniqueViolation    = "23505"
	pqExclusionViolation = "23P01"
)

var columns = []string{
	"id",
	"client_id",
	"service_name",
	"duration_minutes",
	"appointment_date",
	"start_time",
	"status",
	"notes",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий записей в PostgreSQL
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Insert создает запись
// Уникальный индекс по (appointment_date, start_time) и exclusion-ограничение по интервалу
// для активных записей - окончательная проверка на двойное бронирование
func (r *Repository) Insert(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	created := appt.Clone()
	if created.ID == uuid.Nil {
		created.ID = uuid.New()
	}
	created.Date = calendar.DateOnly(created.Date)

	query, args, err := psqlbuilder.Insert(tableName).
		Columns(
			"id",
			"client_id",
			"service_name",
			"duration_minutes",
			"appointment_date",
			"start_time",
			"status",
			"notes",
		).
		Values(
			created.ID,
			created.ClientID,
			created.ServiceName,
			created.DurationMinutes,
			created.Date,
			created.StartTime,
			created.Status,
			created.Notes,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Insert - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		if isSlotTaken(err) {
			return nil, fmt.Errorf("%w: %s %s", ErrSlotTaken, created.Date.Format(domain.DateFormat), created.StartTime)
		}
		return nil, fmt.Errorf("%w: Insert - execute insert: %v", ErrExecQuery, err)
	}

	return created, nil
}

// FindByID получает запись по ID
// Внутри транзакции строка блокируется (FOR UPDATE) до её завершения
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(tableName).
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FindByID - build select query: %v", ErrBuildQuery, err)
	}

	appt, err := scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: FindByID - scan appointment: %v", ErrScanRow, err)
	}

	return appt, nil
}

// FindByDateRange получает записи всех статусов за период [startDate, endDate] включительно
// Сортировка по дате и времени начала
func (r *Repository) FindByDateRange(ctx context.Context, startDate, endDate time.Time) ([]*domain.Appointment, error) {
	return r.findByFilter(ctx, "FindByDateRange", squirrel.And{
		squirrel.GtOrEq{"appointment_date": calendar.DateOnly(startDate)},
		squirrel.LtOrEq{"appointment_date": calendar.DateOnly(endDate)},
	})
}

// FindByDateRangeForClient то же, что FindByDateRange, но только записи клиента
func (r *Repository) FindByDateRangeForClient(ctx context.Context, clientID uuid.UUID, startDate, endDate time.Time) ([]*domain.Appointment, error) {
	return r.findByFilter(ctx, "FindByDateRangeForClient", squirrel.And{
		squirrel.Eq{"client_id": clientID},
		squirrel.GtOrEq{"appointment_date": calendar.DateOnly(startDate)},
		squirrel.LtOrEq{"appointment_date": calendar.DateOnly(endDate)},
	})
}

func (r *Repository) findByFilter(ctx context.Context, op string, where squirrel.Sqlizer) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(tableName).
		Where(where).
		OrderBy("appointment_date ASC", "start_time ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %v", ErrExecQuery, op, err)
	}
	defer rows.Close()

	appointments := make([]*domain.Appointment, 0)
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %v", ErrScanRow, op, err)
		}
		appointments = append(appointments, appt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %v", ErrScanRow, op, err)
	}

	return appointments, nil
}

// Update частично обновляет запись, nil-поля патча не меняются
func (r *Repository) Update(ctx context.Context, id uuid.UUID, patch domain.AppointmentPatch) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update(tableName).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})

	if patch.Date != nil {
		updateBuilder = updateBuilder.Set("appointment_date", calendar.DateOnly(*patch.Date))
	}
	if patch.StartTime != nil {
		updateBuilder = updateBuilder.Set("start_time", *patch.StartTime)
	}
	if patch.ServiceName != nil {
		updateBuilder = updateBuilder.Set("service_name", *patch.ServiceName)
	}
	if patch.DurationMinutes != nil {
		updateBuilder = updateBuilder.Set("duration_minutes", *patch.DurationMinutes)
	}
	if patch.Status != nil {
		updateBuilder = updateBuilder.Set("status", *patch.Status)
		if *patch.Status == domain.StatusCancelled {
			updateBuilder = updateBuilder.Set("cancelled_at", squirrel.Expr("COALESCE(cancelled_at, NOW())"))
		}
	}
	if patch.Notes != nil {
		updateBuilder = updateBuilder.Set("notes", *patch.Notes)
	}

	query, args, err := updateBuilder.Suffix(returningColumns()).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	appt, err := scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		if isSlotTaken(err) {
			return nil, fmt.Errorf("%w: Update - appointment %s", ErrSlotTaken, id)
		}
		return nil, fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	return appt, nil
}

// SoftCancel переводит запись в cancelled, слот освобождается
// Время первой отмены сохраняется при повторном вызове
func (r *Repository) SoftCancel(ctx context.Context, id uuid.UUID) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableName).
		Set("status", domain.StatusCancelled).
		Set("cancelled_at", squirrel.Expr("COALESCE(cancelled_at, NOW())")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix(returningColumns()).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: SoftCancel - build update query: %v", ErrBuildQuery, err)
	}

	appt, err := scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: SoftCancel - execute update: %v", ErrExecQuery, err)
	}

	return appt, nil
}

// Delete физически удаляет запись
// Для обычной отмены используется SoftCancel, чтобы сохранить историю
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(tableName).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrAppointmentNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanAppointment сканирует строку в запись, порядок полей как в columns
func scanAppointment(row rowScanner) (*domain.Appointment, error) {
	var (
		appt        domain.Appointment
		notes       sql.NullString
		cancelledAt sql.NullTime
	)

	err := row.Scan(
		&appt.ID,
		&appt.ClientID,
		&appt.ServiceName,
		&appt.DurationMinutes,
		&appt.Date,
		&appt.StartTime,
		&appt.Status,
		&notes,
		&cancelledAt,
		&appt.CreatedAt,
		&appt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	appt.Date = calendar.DateOnly(appt.Date)
	if notes.Valid {
		appt.Notes = &notes.String
	}
	if cancelledAt.Valid {
		appt.CancelledAt = &cancelledAt.Time
	}

	return &appt, nil
}

func returningColumns() string {
	return "RETURNING " + strings.Join(columns, ", ")
}

func isSlotTaken(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == pqUniqueViolation || pqErr.Code == pqExclusionViolation
}
