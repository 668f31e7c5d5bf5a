package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/calendar"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

// Service сервис чтения записей (карточка записи и календарь)
// Все изменения записей выполняет движок доступности
type Service struct {
	repo      AppointmentRepository
	weekStart time.Weekday
	logger    Logger
}

// NewService создает новый экземпляр сервиса записей
func NewService(repo AppointmentRepository, weekStart time.Weekday, logger Logger) *Service {
	return &Service{
		repo:      repo,
		weekStart: weekStart,
		logger:    logger,
	}
}

// GetByID получает запись по ID
// Клиент видит только свои записи, администратор - любые
func (s *Service) GetByID(ctx context.Context, actor domain.Actor, id uuid.UUID) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%s for user=%s", id, actor.UserID)

	appt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("GetByID: appointment id=%s not found", id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("GetByID: repository error for appointment id=%s: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	// Проверяем права доступа
	if !actor.CanManage(appt) {
		s.logger.Warn("GetByID: access denied for user=%s to appointment id=%s", actor.UserID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainAppointment(appt), nil
}

// List календарь записей за день, неделю или месяц, содержащие req.Date
// Клиент видит только свои записи; отменённые скрыты, если не запрошены явно
func (s *Service) List(ctx context.Context, req models.ListRequest) (*models.ListResponse, error) {
	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if req.View == "" {
		req.View = models.ViewDay
	}

	from, to, err := s.period(req.View, req.Date)
	if err != nil {
		return nil, err
	}

	s.logger.Info("List: user=%s, view=%s, period=%s..%s",
		req.Actor.UserID, req.View, from.Format(domain.DateFormat), to.Format(domain.DateFormat))

	// 1. Кого показываем
	var clientID *uuid.UUID
	switch {
	case !req.Actor.IsAdmin:
		if req.ClientID != nil && *req.ClientID != req.Actor.UserID {
			s.logger.Warn("List: user=%s requested appointments of client=%s", req.Actor.UserID, *req.ClientID)
			return nil, ErrAccessDenied
		}
		clientID = &req.Actor.UserID
	case req.ClientID != nil:
		clientID = req.ClientID
	}

	// 2. Выборка
	var list []*domain.Appointment
	if clientID != nil {
		list, err = s.repo.FindByDateRangeForClient(ctx, *clientID, from, to)
	} else {
		list, err = s.repo.FindByDateRange(ctx, from, to)
	}
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	// 3. Фильтры
	filtered := make([]*domain.Appointment, 0, len(list))
	for _, a := range list {
		if req.Status != nil {
			if a.Status != *req.Status {
				continue
			}
		} else if !req.IncludeInactive && !a.IsActive() {
			continue
		}
		filtered = append(filtered, a)
	}

	s.logger.Info("List: found %d appointments", len(filtered))
	return models.FromDomainList(req.View, from, to, filtered), nil
}

func (s *Service) period(view models.View, date time.Time) (time.Time, time.Time, error) {
	switch view {
	case models.ViewDay:
		from, to := calendar.DayOf(date)
		return from, to, nil
	case models.ViewWeek:
		from, to := calendar.WeekOf(date, s.weekStart)
		return from, to, nil
	case models.ViewMonth:
		from, to := calendar.MonthOf(date)
		return from, to, nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %v", ErrInvalidInput, models.ErrInvalidView)
	}
}
