package availability

import "errors"

var (
	// ErrInvalidRange возвращается при некорректных рабочих часах (закрытие не позже открытия)
	ErrInvalidRange = errors.New("availability: invalid business hours range")

	// ErrInvalidSlot возвращается, когда время не совпадает с сеткой слотов дня
	// или услуга не помещается до закрытия
	ErrInvalidSlot = errors.New("availability: invalid slot")

	// ErrPastSlot возвращается при попытке записи на прошедшее время
	ErrPastSlot = errors.New("availability: slot is in the past")

	// ErrSlotConflict возвращается, когда слот занят активной записью
	ErrSlotConflict = errors.New("availability: slot is already taken")

	// ErrNotFound возвращается, когда запись не найдена
	ErrNotFound = errors.New("availability: appointment not found")

	// ErrStoreUnavailable возвращается, когда хранилище не смогло выполнить операцию
	ErrStoreUnavailable = errors.New("availability: store unavailable")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("availability: invalid input data")

	// ErrAccessDenied возвращается, когда клиент пытается управлять чужой записью
	// или выполнить действие администратора
	ErrAccessDenied = errors.New("availability: access denied")

	// ErrInvalidTransition возвращается при недопустимой смене статуса (из cancelled)
	ErrInvalidTransition = errors.New("availability: invalid status transition")
)
