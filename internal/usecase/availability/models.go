package availability

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Policy политика бронирования салона
type Policy struct {
	Location         *time.Location           // часовой пояс салона, "сегодня" считается в нём
	DefaultStatus    domain.AppointmentStatus // статус новой записи клиента
	AdminAutoConfirm bool                     // запись, созданная администратором, сразу confirmed
	MinNoticeMinutes int                      // минимальное время до начала слота
	MaxAdvanceDays   int                      // 0 = без ограничений
}

// DefaultPolicy UTC, новые записи pending, администратор подтверждает сразу
func DefaultPolicy() Policy {
	return Policy{
		Location:         time.UTC,
		DefaultStatus:    domain.DefaultStatus,
		AdminAutoConfirm: true,
		MinNoticeMinutes: domain.DefaultMinBookingNoticeMinutes,
		MaxAdvanceDays:   domain.DefaultAdvanceBookingDays,
	}
}

// ReserveRequest запрос на запись
type ReserveRequest struct {
	Actor           domain.Actor
	ClientID        uuid.UUID // uuid.Nil = запись для самого Actor
	Date            time.Time
	StartTime       types.TimeString
	ServiceName     string
	DurationMinutes int
	Notes           *string
	Status          *domain.AppointmentStatus // только для администратора
	AllowPast       bool                      // только для администратора (внесение прошедших визитов)
}

// RescheduleRequest запрос на перенос записи
type RescheduleRequest struct {
	Actor     domain.Actor
	ID        uuid.UUID
	Date      time.Time
	StartTime types.TimeString

	// Необязательная смена услуги вместе с переносом
	ServiceName     *string
	DurationMinutes *int

	AllowPast bool // только для администратора
}
