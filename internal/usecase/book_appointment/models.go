package book_appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/calendar"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Request модель запроса на запись (второй шаг, слот уже выбран пользователем)
type Request struct {
	Actor           domain.Actor
	ClientID        uuid.UUID                 // uuid.Nil = запись для себя
	Date            time.Time                 // Дата записи (без времени)
	StartTime       types.TimeString          // Выбранный слот, например "10:00"
	ServiceName     string                    // Название услуги
	DurationMinutes int                       // Длительность услуги
	Notes           *string                   // Заметки (опционально)
	Status          *domain.AppointmentStatus // Только для администратора
	AllowPast       bool                      // Только для администратора
}

// Result результат записи
// При конфликте Appointment == nil, а Alternatives содержит свежий список свободных слотов той же даты
type Result struct {
	Appointment  *domain.Appointment
	Alternatives []calendar.Slot
}
