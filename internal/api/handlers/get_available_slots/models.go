package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/calendar"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	Date            string          `json:"date"`
	DurationMinutes int             `json:"durationMinutes"`
	Slots           []AvailableSlot `json:"slots"`
}

// AvailableSlot свободный слот, в который помещается услуга
type AvailableSlot struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// FromSlots конвертирует слоты движка в HTTP response
func FromSlots(date time.Time, durationMinutes int, slots []calendar.Slot) *AvailableSlotsResponse {
	resp := &AvailableSlotsResponse{
		Date:            date.Format(domain.DateFormat),
		DurationMinutes: durationMinutes,
		Slots:           make([]AvailableSlot, 0, len(slots)),
	}
	for _, slot := range slots {
		item := AvailableSlot{StartTime: slot.StartTime.String()}
		if end, err := slot.StartTime.AddMinutes(durationMinutes); err == nil {
			item.EndTime = end.String()
		}
		resp.Slots = append(resp.Slots, item)
	}
	return resp
}
