package schedule

import "errors"

var (
	// ErrScheduleNotFound возвращается, когда недельное расписание ещё не сохранено
	ErrScheduleNotFound = errors.New("schedule.repository: weekly schedule not found")

	// ErrSpecialDateNotFound возвращается, когда для даты нет особого расписания
	ErrSpecialDateNotFound = errors.New("schedule.repository: special date not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("schedule.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("schedule.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("schedule.repository: failed to scan row")
)
