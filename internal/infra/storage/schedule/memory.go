package schedule

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/calendar"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// MemoryRepository расписание в памяти процесса
type MemoryRepository struct {
	mu      sync.RWMutex
	weekly  *domain.WeeklySchedule
	special map[time.Time]domain.SpecialDate
}

// NewMemoryRepository создает пустое хранилище расписания
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{special: make(map[time.Time]domain.SpecialDate)}
}

func (r *MemoryRepository) GetWeekly(_ context.Context) (*domain.WeeklySchedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.weekly == nil {
		return nil, ErrScheduleNotFound
	}
	weekly := *r.weekly
	return &weekly, nil
}

func (r *MemoryRepository) SaveWeekly(_ context.Context, weekly domain.WeeklySchedule) (*domain.WeeklySchedule, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		weekly.Days[d].Weekday = d
	}
	weekly.UpdatedAt = time.Now().UTC()

	r.mu.Lock()
	r.weekly = &weekly
	r.mu.Unlock()

	saved := weekly
	return &saved, nil
}

func (r *MemoryRepository) GetSpecialDate(_ context.Context, date time.Time) (*domain.SpecialDate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	special, ok := r.special[calendar.DateOnly(date)]
	if !ok {
		return nil, ErrSpecialDateNotFound
	}
	return &special, nil
}

func (r *MemoryRepository) ListSpecialDates(_ context.Context, from, to time.Time) ([]*domain.SpecialDate, error) {
	start := calendar.DateOnly(from)
	end := calendar.DateOnly(to)

	r.mu.RLock()
	result := make([]*domain.SpecialDate, 0)
	for date, special := range r.special {
		if date.Before(start) || date.After(end) {
			continue
		}
		s := special
		result = append(result, &s)
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

func (r *MemoryRepository) UpsertSpecialDate(_ context.Context, special domain.SpecialDate) (*domain.SpecialDate, error) {
	special.Date = calendar.DateOnly(special.Date)

	r.mu.Lock()
	r.special[special.Date] = special
	r.mu.Unlock()

	return &special, nil
}

func (r *MemoryRepository) DeleteSpecialDate(_ context.Context, date time.Time) error {
	day := calendar.DateOnly(date)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.special[day]; !ok {
		return ErrSpecialDateNotFound
	}
	delete(r.special, day)
	return nil
}
