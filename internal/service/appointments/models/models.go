package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

var (
	// ErrInvalidView возвращается при неизвестном виде календаря
	ErrInvalidView = errors.New("invalid calendar view")
)

// View вид календаря
type View string

const (
	ViewDay   View = "day"
	ViewWeek  View = "week"
	ViewMonth View = "month"
)

// ParseView пустая строка - день
func ParseView(s string) (View, error) {
	switch v := View(strings.ToLower(strings.TrimSpace(s))); v {
	case "":
		return ViewDay, nil
	case ViewDay, ViewWeek, ViewMonth:
		return v, nil
	default:
		return "", ErrInvalidView
	}
}

// Request модели

// ListRequest запрос календаря записей
type ListRequest struct {
	Actor           domain.Actor
	View            View
	Date            time.Time                 // любая дата внутри периода
	ClientID        *uuid.UUID                // фильтр по клиенту, только для администратора
	Status          *domain.AppointmentStatus // фильтр по статусу
	IncludeInactive bool                      // включить отменённые
}

// Response модели

// AppointmentResponse ответ с данными записи
type AppointmentResponse struct {
	ID              uuid.UUID  `json:"id"`
	ClientID        uuid.UUID  `json:"clientId"`
	ServiceName     string     `json:"serviceName"`
	DurationMinutes int        `json:"durationMinutes"`
	Date            string     `json:"date"`      // "2024-07-15"
	StartTime       string     `json:"startTime"` // "10:00"
	EndTime         string     `json:"endTime"`   // "10:30"
	Status          string     `json:"status"`
	Notes           *string    `json:"notes,omitempty"`
	CancelledAt     *time.Time `json:"cancelledAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// ListResponse записи за период, отсортированные по дате и времени
type ListResponse struct {
	View         View                  `json:"view"`
	From         string                `json:"from"`
	To           string                `json:"to"`
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}

// FromDomainAppointment конвертирует domain.Appointment в AppointmentResponse
func FromDomainAppointment(a *domain.Appointment) *AppointmentResponse {
	if a == nil {
		return nil
	}

	resp := &AppointmentResponse{
		ID:              a.ID,
		ClientID:        a.ClientID,
		ServiceName:     a.ServiceName,
		DurationMinutes: a.DurationMinutes,
		Date:            a.Date.Format(domain.DateFormat),
		StartTime:       a.StartTime.String(),
		Status:          string(a.Status),
		Notes:           a.Notes,
		CancelledAt:     a.CancelledAt,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
	if end, err := a.EndTime(); err == nil {
		resp.EndTime = end.String()
	}
	return resp
}

// FromDomainList конвертирует список записей
func FromDomainList(view View, from, to time.Time, list []*domain.Appointment) *ListResponse {
	resp := &ListResponse{
		View:         view,
		From:         from.Format(domain.DateFormat),
		To:           to.Format(domain.DateFormat),
		Appointments: make([]AppointmentResponse, 0, len(list)),
	}
	for _, a := range list {
		resp.Appointments = append(resp.Appointments, *FromDomainAppointment(a))
	}
	resp.Total = len(resp.Appointments)
	return resp
}
