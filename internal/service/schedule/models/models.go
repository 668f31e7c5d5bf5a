package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/calendar"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Request модели

// DayHours часы работы одного дня недели
type DayHours struct {
	Weekday   string `json:"weekday"` // monday, tuesday, ...
	IsOpen    bool   `json:"isOpen"`
	OpenTime  string `json:"openTime,omitempty"`  // HH:MM
	CloseTime string `json:"closeTime,omitempty"` // HH:MM
}

// UpdateWeeklyRequest полная замена недельного расписания
// Дни, не перечисленные в запросе, считаются выходными
type UpdateWeeklyRequest struct {
	SlotMinutes int        `json:"slotMinutes"`
	Days        []DayHours `json:"days"`
}

// SpecialDateRequest особое расписание на дату
type SpecialDateRequest struct {
	IsOpen    bool    `json:"isOpen"`
	OpenTime  *string `json:"openTime,omitempty"`
	CloseTime *string `json:"closeTime,omitempty"`
	Note      string  `json:"note,omitempty"`
}

// Response модели

// SpecialDate особое расписание
type SpecialDate struct {
	Date      string  `json:"date"`
	IsOpen    bool    `json:"isOpen"`
	OpenTime  *string `json:"openTime,omitempty"`
	CloseTime *string `json:"closeTime,omitempty"`
	Note      string  `json:"note,omitempty"`
}

// BusinessHoursResponse недельное расписание и особые даты периода
type BusinessHoursResponse struct {
	SlotMinutes  int           `json:"slotMinutes"`
	Days         []DayHours    `json:"days"`
	SpecialDates []SpecialDate `json:"specialDates"`
	UpdatedAt    *time.Time    `json:"updatedAt,omitempty"`
}

// Методы конвертации

// ToDomainWeekly собирает недельное расписание из запроса
func (r *UpdateWeeklyRequest) ToDomainWeekly() (domain.WeeklySchedule, error) {
	var weekly domain.WeeklySchedule
	weekly.SlotMinutes = r.SlotMinutes
	for d := time.Sunday; d <= time.Saturday; d++ {
		weekly.Days[d] = domain.DaySchedule{Weekday: d}
	}

	seen := make(map[time.Weekday]bool, len(r.Days))
	for _, dh := range r.Days {
		weekday, err := calendar.ParseWeekday(dh.Weekday)
		if err != nil {
			return domain.WeeklySchedule{}, err
		}
		if seen[weekday] {
			return domain.WeeklySchedule{}, fmt.Errorf("duplicate weekday %s", strings.ToLower(weekday.String()))
		}
		seen[weekday] = true

		day := domain.DaySchedule{Weekday: weekday, IsOpen: dh.IsOpen}
		if dh.IsOpen {
			if day.OpenTime, err = types.NewTimeStringFromString(dh.OpenTime); err != nil {
				return domain.WeeklySchedule{}, fmt.Errorf("%s openTime: %w", dh.Weekday, err)
			}
			if day.CloseTime, err = types.NewTimeStringFromString(dh.CloseTime); err != nil {
				return domain.WeeklySchedule{}, fmt.Errorf("%s closeTime: %w", dh.Weekday, err)
			}
		}
		weekly.Days[weekday] = day
	}

	return weekly, nil
}

// ToDomainSpecialDate собирает особое расписание на дату из запроса
func (r *SpecialDateRequest) ToDomainSpecialDate(date time.Time) (domain.SpecialDate, error) {
	special := domain.SpecialDate{
		Date:   calendar.DateOnly(date),
		IsOpen: r.IsOpen,
		Note:   strings.TrimSpace(r.Note),
	}

	if r.OpenTime != nil {
		t, err := types.NewTimeStringFromString(*r.OpenTime)
		if err != nil {
			return domain.SpecialDate{}, fmt.Errorf("openTime: %w", err)
		}
		special.OpenTime = &t
	}
	if r.CloseTime != nil {
		t, err := types.NewTimeStringFromString(*r.CloseTime)
		if err != nil {
			return domain.SpecialDate{}, fmt.Errorf("closeTime: %w", err)
		}
		special.CloseTime = &t
	}

	return special, nil
}

// FromDomain конвертирует расписание в DTO
func FromDomain(weekly *domain.WeeklySchedule, specials []*domain.SpecialDate) *BusinessHoursResponse {
	resp := &BusinessHoursResponse{
		SlotMinutes:  weekly.SlotMinutes,
		Days:         make([]DayHours, 0, 7),
		SpecialDates: make([]SpecialDate, 0, len(specials)),
	}
	if !weekly.UpdatedAt.IsZero() {
		updatedAt := weekly.UpdatedAt
		resp.UpdatedAt = &updatedAt
	}

	// Неделя в ответе начинается с понедельника
	for i := 0; i < 7; i++ {
		d := time.Weekday((int(time.Monday) + i) % 7)
		day := weekly.Days[d]
		dto := DayHours{Weekday: strings.ToLower(d.String()), IsOpen: day.IsOpen}
		if day.IsOpen {
			dto.OpenTime = day.OpenTime.String()
			dto.CloseTime = day.CloseTime.String()
		}
		resp.Days = append(resp.Days, dto)
	}

	for _, s := range specials {
		resp.SpecialDates = append(resp.SpecialDates, FromDomainSpecialDate(s))
	}

	return resp
}

// FromDomainSpecialDate конвертирует особую дату в DTO
func FromDomainSpecialDate(s *domain.SpecialDate) SpecialDate {
	dto := SpecialDate{
		Date:   s.Date.Format(domain.DateFormat),
		IsOpen: s.IsOpen,
		Note:   s.Note,
	}
	if s.OpenTime != nil {
		v := s.OpenTime.String()
		dto.OpenTime = &v
	}
	if s.CloseTime != nil {
		v := s.CloseTime.String()
		dto.CloseTime = &v
	}
	return dto
}
