package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-AppointmentService/internal/calendar"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

const (
	businessHoursTable = "business_hours"
	specialDatesTable  = "special_dates"
)

// Repository репозиторий рабочих часов салона в PostgreSQL
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписания
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetWeekly получает недельное расписание
// Возвращает ErrScheduleNotFound, если таблица пуста
func (r *Repository) GetWeekly(ctx context.Context) (*domain.WeeklySchedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"weekday",
		"is_open",
		"open_time",
		"close_time",
		"slot_minutes",
		"updated_at",
	).
		From(businessHoursTable).
		OrderBy("weekday ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetWeekly - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetWeekly - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	// Дни без строки в таблице считаются выходными
	var weekly domain.WeeklySchedule
	for d := time.Sunday; d <= time.Saturday; d++ {
		weekly.Days[d] = domain.DaySchedule{Weekday: d}
	}

	found := 0
	for rows.Next() {
		var (
			weekday     int
			day         domain.DaySchedule
			slotMinutes int
			updatedAt   time.Time
		)

		if err := rows.Scan(&weekday, &day.IsOpen, &day.OpenTime, &day.CloseTime, &slotMinutes, &updatedAt); err != nil {
			return nil, fmt.Errorf("%w: GetWeekly - scan row: %v", ErrScanRow, err)
		}
		if weekday < int(time.Sunday) || weekday > int(time.Saturday) {
			return nil, fmt.Errorf("%w: GetWeekly - weekday %d out of range", ErrScanRow, weekday)
		}

		day.Weekday = time.Weekday(weekday)
		weekly.Days[weekday] = day
		weekly.SlotMinutes = slotMinutes
		if updatedAt.After(weekly.UpdatedAt) {
			weekly.UpdatedAt = updatedAt
		}
		found++
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetWeekly - rows error: %v", ErrScanRow, err)
	}

	if found == 0 {
		return nil, ErrScheduleNotFound
	}

	return &weekly, nil
}

// SaveWeekly сохраняет все семь дней одним запросом (upsert по weekday)
func (r *Repository) SaveWeekly(ctx context.Context, weekly domain.WeeklySchedule) (*domain.WeeklySchedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	insertBuilder := psqlbuilder.Insert(businessHoursTable).
		Columns("weekday", "is_open", "open_time", "close_time", "slot_minutes")

	// open_time и close_time NOT NULL, выходной без часов сохраняется с часами по умолчанию
	for d := time.Sunday; d <= time.Saturday; d++ {
		day := weekly.Days[d]
		openTime, closeTime := day.StoredHours()
		insertBuilder = insertBuilder.Values(int(d), day.IsOpen, openTime, closeTime, weekly.SlotMinutes)
	}

	query, args, err := insertBuilder.
		Suffix(`ON CONFLICT (weekday) DO UPDATE SET
			is_open = EXCLUDED.is_open,
			open_time = EXCLUDED.open_time,
			close_time = EXCLUDED.close_time,
			slot_minutes = EXCLUDED.slot_minutes,
			updated_at = NOW()`).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: SaveWeekly - build upsert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("%w: SaveWeekly - execute upsert: %v", ErrExecQuery, err)
	}

	saved := weekly
	for d := time.Sunday; d <= time.Saturday; d++ {
		saved.Days[d].Weekday = d
	}
	saved.UpdatedAt = time.Now().UTC()

	return &saved, nil
}

// GetSpecialDate получает особое расписание на дату
func (r *Repository) GetSpecialDate(ctx context.Context, date time.Time) (*domain.SpecialDate, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := selectSpecialDates().
		Where(squirrel.Eq{"special_date": calendar.DateOnly(date)}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetSpecialDate - build select query: %v", ErrBuildQuery, err)
	}

	special, err := scanSpecialDate(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSpecialDateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetSpecialDate - scan row: %v", ErrScanRow, err)
	}

	return special, nil
}

// ListSpecialDates получает особые даты за период [from, to] включительно
func (r *Repository) ListSpecialDates(ctx context.Context, from, to time.Time) ([]*domain.SpecialDate, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := selectSpecialDates().
		Where(squirrel.GtOrEq{"special_date": calendar.DateOnly(from)}).
		Where(squirrel.LtOrEq{"special_date": calendar.DateOnly(to)}).
		OrderBy("special_date ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListSpecialDates - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListSpecialDates - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]*domain.SpecialDate, 0)
	for rows.Next() {
		special, err := scanSpecialDate(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListSpecialDates - scan row: %v", ErrScanRow, err)
		}
		result = append(result, special)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListSpecialDates - rows error: %v", ErrScanRow, err)
	}

	return result, nil
}

// UpsertSpecialDate создает или заменяет особое расписание на дату
func (r *Repository) UpsertSpecialDate(ctx context.Context, special domain.SpecialDate) (*domain.SpecialDate, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	special.Date = calendar.DateOnly(special.Date)

	var note interface{}
	if special.Note != "" {
		note = special.Note
	}

	query, args, err := psqlbuilder.Insert(specialDatesTable).
		Columns("special_date", "is_open", "open_time", "close_time", "note").
		Values(special.Date, special.IsOpen, special.OpenTime, special.CloseTime, note).
		Suffix(`ON CONFLICT (special_date) DO UPDATE SET
			is_open = EXCLUDED.is_open,
			open_time = EXCLUDED.open_time,
			close_time = EXCLUDED.close_time,
			note = EXCLUDED.note,
			updated_at = NOW()`).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: UpsertSpecialDate - build upsert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("%w: UpsertSpecialDate - execute upsert: %v", ErrExecQuery, err)
	}

	return &special, nil
}

// DeleteSpecialDate удаляет особое расписание, дата возвращается к недельному
func (r *Repository) DeleteSpecialDate(ctx context.Context, date time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(specialDatesTable).
		Where(squirrel.Eq{"special_date": calendar.DateOnly(date)}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: DeleteSpecialDate - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: DeleteSpecialDate - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: DeleteSpecialDate - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrSpecialDateNotFound
	}

	return nil
}

func selectSpecialDates() squirrel.SelectBuilder {
	return psqlbuilder.Select("special_date", "is_open", "open_time", "close_time", "note").
		From(specialDatesTable)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSpecialDate(row rowScanner) (*domain.SpecialDate, error) {
	var (
		special   domain.SpecialDate
		openTime  types.TimeString
		closeTime types.TimeString
		note      sql.NullString
	)

	if err := row.Scan(&special.Date, &special.IsOpen, &openTime, &closeTime, &note); err != nil {
		return nil, err
	}

	special.Date = calendar.DateOnly(special.Date)
	if !openTime.IsZero() {
		special.OpenTime = &openTime
	}
	if !closeTime.IsZero() {
		special.CloseTime = &closeTime
	}
	special.Note = note.String

	return &special, nil
}
