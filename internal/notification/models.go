package notification

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Event снимок записи на момент изменения
// Сериализуется в JSON для очереди Redis и для шины событий
type Event struct {
	ID          uuid.UUID                 `json:"id"`
	Action      domain.NotificationAction `json:"action"`
	OccurredAt  time.Time                 `json:"occurredAt"`
	Appointment AppointmentSnapshot       `json:"appointment"`
}

// AppointmentSnapshot поля записи, нужные получателям
type AppointmentSnapshot struct {
	ID              uuid.UUID  `json:"id"`
	ClientID        uuid.UUID  `json:"clientId"`
	ServiceName     string     `json:"serviceName"`
	DurationMinutes int        `json:"durationMinutes"`
	Date            string     `json:"date"`
	StartTime       string     `json:"startTime"`
	Status          string     `json:"status"`
	Notes           *string    `json:"notes,omitempty"`
	CancelledAt     *time.Time `json:"cancelledAt,omitempty"`
}

// NewEvent создает событие из записи
func NewEvent(appt *domain.Appointment, action domain.NotificationAction, now time.Time) Event {
	return Event{
		ID:         uuid.New(),
		Action:     action,
		OccurredAt: now.UTC(),
		Appointment: AppointmentSnapshot{
			ID:              appt.ID,
			ClientID:        appt.ClientID,
			ServiceName:     appt.ServiceName,
			DurationMinutes: appt.DurationMinutes,
			Date:            appt.Date.Format(domain.DateFormat),
			StartTime:       appt.StartTime.String(),
			Status:          string(appt.Status),
			Notes:           appt.Notes,
			CancelledAt:     appt.CancelledAt,
		},
	}
}
