package schedule

import "errors"

var (
	// ErrSpecialDateNotFound возвращается, когда особое расписание на дату не задано
	ErrSpecialDateNotFound = errors.New("special date not found")

	// ErrAccessDenied возвращается, когда изменять расписание пытается не администратор
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("schedule.service: internal error")
)
