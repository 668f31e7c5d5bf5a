package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/calendar"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	scheduleRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-AppointmentService/internal/service/schedule/models"
)

// Service сервис рабочих часов салона
type Service struct {
	repo     Repository
	defaults domain.WeeklySchedule
	logger   Logger
}

// NewService создает новый экземпляр сервиса расписания
// defaults используется, пока недельное расписание не сохранено в хранилище
func NewService(repo Repository, defaults domain.WeeklySchedule, logger Logger) *Service {
	return &Service{
		repo:     repo,
		defaults: defaults,
		logger:   logger,
	}
}

// EnsureWeekly записывает расписание по умолчанию, если хранилище пустое
func (s *Service) EnsureWeekly(ctx context.Context) error {
	_, err := s.repo.GetWeekly(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
		return fmt.Errorf("%w: EnsureWeekly - repository error: %v", ErrInternal, err)
	}

	if _, err := s.repo.SaveWeekly(ctx, s.defaults); err != nil {
		return fmt.Errorf("%w: EnsureWeekly - save defaults: %v", ErrInternal, err)
	}

	s.logger.Info("EnsureWeekly: default weekly schedule saved (slot=%d min)", s.defaults.SlotMinutes)
	return nil
}

// HoursFor возвращает часы работы на дату с учётом особых дат
func (s *Service) HoursFor(ctx context.Context, date time.Time) (calendar.BusinessHours, error) {
	weekly, err := s.weekly(ctx)
	if err != nil {
		return calendar.BusinessHours{}, err
	}

	special, err := s.repo.GetSpecialDate(ctx, date)
	if err != nil && !errors.Is(err, scheduleRepo.ErrSpecialDateNotFound) {
		return calendar.BusinessHours{}, fmt.Errorf("%w: HoursFor - special date: %v", ErrInternal, err)
	}

	return weekly.HoursFor(date, special), nil
}

// Get возвращает недельное расписание и особые даты за период [from, to]
// Публичный метод
func (s *Service) Get(ctx context.Context, from, to time.Time) (*models.BusinessHoursResponse, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: period end is before start", ErrInvalidInput)
	}

	weekly, err := s.weekly(ctx)
	if err != nil {
		s.logger.Error("Get: failed to load weekly schedule: %v", err)
		return nil, err
	}

	specials, err := s.repo.ListSpecialDates(ctx, from, to)
	if err != nil {
		s.logger.Error("Get: failed to list special dates: %v", err)
		return nil, fmt.Errorf("%w: Get - repository error: %v", ErrInternal, err)
	}

	return models.FromDomain(weekly, specials), nil
}

// UpdateWeekly заменяет недельное расписание
// Доступно только администраторам
func (s *Service) UpdateWeekly(ctx context.Context, actor domain.Actor, req *models.UpdateWeeklyRequest) (*models.BusinessHoursResponse, error) {
	s.logger.Info("UpdateWeekly: updating weekly schedule by user=%s", actor.UserID)

	// 1. Проверяем права доступа
	if !actor.IsAdmin {
		s.logger.Warn("UpdateWeekly: user=%s is not an admin", actor.UserID)
		return nil, ErrAccessDenied
	}

	// 2. Валидируем входные данные
	if req.SlotMinutes < domain.MinSlotMinutes || req.SlotMinutes > domain.MaxSlotMinutes {
		return nil, fmt.Errorf("%w: slotMinutes must be between %d and %d",
			ErrInvalidInput, domain.MinSlotMinutes, domain.MaxSlotMinutes)
	}

	weekly, err := req.ToDomainWeekly()
	if err != nil {
		s.logger.Warn("UpdateWeekly: invalid request: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := weekly.Validate(); err != nil {
		s.logger.Warn("UpdateWeekly: invalid schedule: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// 3. Сохраняем
	saved, err := s.repo.SaveWeekly(ctx, weekly)
	if err != nil {
		s.logger.Error("UpdateWeekly: repository error: %v", err)
		return nil, fmt.Errorf("%w: UpdateWeekly - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("UpdateWeekly: weekly schedule updated (slot=%d min)", saved.SlotMinutes)
	return models.FromDomain(saved, nil), nil
}

// UpsertSpecialDate задаёт особое расписание на дату (праздник, короткий день)
// Доступно только администраторам
func (s *Service) UpsertSpecialDate(ctx context.Context, actor domain.Actor, date time.Time, req *models.SpecialDateRequest) (*models.SpecialDate, error) {
	day := calendar.DateOnly(date)
	s.logger.Info("UpsertSpecialDate: date=%s by user=%s", day.Format(domain.DateFormat), actor.UserID)

	// 1. Проверяем права доступа
	if !actor.IsAdmin {
		s.logger.Warn("UpsertSpecialDate: user=%s is not an admin", actor.UserID)
		return nil, ErrAccessDenied
	}

	// 2. Валидируем входные данные
	special, err := req.ToDomainSpecialDate(day)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if len(special.Note) > domain.MaxSpecialDateNote {
		return nil, fmt.Errorf("%w: note exceeds %d characters", ErrInvalidInput, domain.MaxSpecialDateNote)
	}

	// 3. Итоговые часы дня должны быть корректны
	weekly, err := s.weekly(ctx)
	if err != nil {
		return nil, err
	}
	if err := weekly.HoursFor(day, &special).Validate(); err != nil {
		s.logger.Warn("UpsertSpecialDate: invalid hours for %s: %v", day.Format(domain.DateFormat), err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// 4. Сохраняем
	saved, err := s.repo.UpsertSpecialDate(ctx, special)
	if err != nil {
		s.logger.Error("UpsertSpecialDate: repository error: %v", err)
		return nil, fmt.Errorf("%w: UpsertSpecialDate - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("UpsertSpecialDate: date=%s saved (open=%t)", day.Format(domain.DateFormat), saved.IsOpen)
	dto := models.FromDomainSpecialDate(saved)
	return &dto, nil
}

// DeleteSpecialDate возвращает дату к обычному недельному расписанию
// Доступно только администраторам
func (s *Service) DeleteSpecialDate(ctx context.Context, actor domain.Actor, date time.Time) error {
	day := calendar.DateOnly(date)
	s.logger.Info("DeleteSpecialDate: date=%s by user=%s", day.Format(domain.DateFormat), actor.UserID)

	if !actor.IsAdmin {
		s.logger.Warn("DeleteSpecialDate: user=%s is not an admin", actor.UserID)
		return ErrAccessDenied
	}

	if err := s.repo.DeleteSpecialDate(ctx, day); err != nil {
		if errors.Is(err, scheduleRepo.ErrSpecialDateNotFound) {
			return ErrSpecialDateNotFound
		}
		s.logger.Error("DeleteSpecialDate: repository error: %v", err)
		return fmt.Errorf("%w: DeleteSpecialDate - repository error: %v", ErrInternal, err)
	}

	return nil
}

// weekly читает недельное расписание, при его отсутствии - расписание по умолчанию
func (s *Service) weekly(ctx context.Context) (*domain.WeeklySchedule, error) {
	weekly, err := s.repo.GetWeekly(ctx)
	if errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
		defaults := s.defaults
		return &defaults, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: weekly schedule: %v", ErrInternal, err)
	}
	return weekly, nil
}
