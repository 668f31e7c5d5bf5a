package appointment

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/calendar"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// MemoryRepository хранилище записей в памяти процесса
// Проверка занятости слота и запись выполняются под одним мьютексом,
// поэтому гарантия та же, что у ограничений в PostgreSQL
type MemoryRepository struct {
	mu           sync.RWMutex
	appointments map[uuid.UUID]*domain.Appointment
	now          func() time.Time
}

// NewMemoryRepository создает пустое хранилище в памяти
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		appointments: make(map[uuid.UUID]*domain.Appointment),
		now:          time.Now,
	}
}

func (r *MemoryRepository) Insert(_ context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	created := appt.Clone()
	if created.ID == uuid.Nil {
		created.ID = uuid.New()
	}
	created.Date = calendar.DateOnly(created.Date)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.appointments[created.ID]; exists {
		return nil, fmt.Errorf("%w: duplicate id %s", ErrSlotTaken, created.ID)
	}
	if created.IsActive() {
		if other := r.findOverlapLocked(created); other != nil {
			return nil, fmt.Errorf("%w: %s %s overlaps appointment %s",
				ErrSlotTaken, created.Date.Format(domain.DateFormat), created.StartTime, other.ID)
		}
	}

	now := r.now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now
	r.appointments[created.ID] = created

	return created.Clone(), nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id uuid.UUID) (*domain.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	appt, ok := r.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	return appt.Clone(), nil
}

func (r *MemoryRepository) FindByDateRange(_ context.Context, startDate, endDate time.Time) ([]*domain.Appointment, error) {
	return r.find(startDate, endDate, func(*domain.Appointment) bool { return true }), nil
}

func (r *MemoryRepository) FindByDateRangeForClient(_ context.Context, clientID uuid.UUID, startDate, endDate time.Time) ([]*domain.Appointment, error) {
	return r.find(startDate, endDate, func(a *domain.Appointment) bool { return a.ClientID == clientID }), nil
}

func (r *MemoryRepository) Update(_ context.Context, id uuid.UUID, patch domain.AppointmentPatch) (*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}

	updated := patch.Apply(current)
	updated.Date = calendar.DateOnly(updated.Date)
	if updated.IsActive() {
		if other := r.findOverlapLocked(updated); other != nil {
			return nil, fmt.Errorf("%w: Update - appointment %s overlaps %s", ErrSlotTaken, id, other.ID)
		}
	}

	now := r.now().UTC()
	if updated.IsCancelled() && updated.CancelledAt == nil {
		updated.CancelledAt = &now
	}
	updated.UpdatedAt = now
	r.appointments[id] = updated

	return updated.Clone(), nil
}

func (r *MemoryRepository) SoftCancel(ctx context.Context, id uuid.UUID) (*domain.Appointment, error) {
	status := domain.StatusCancelled
	return r.Update(ctx, id, domain.AppointmentPatch{Status: &status})
}

func (r *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.appointments[id]; !ok {
		return ErrAppointmentNotFound
	}
	delete(r.appointments, id)
	return nil
}

// findOverlapLocked ищет другую активную запись, пересекающуюся с appt. Вызывать под r.mu
func (r *MemoryRepository) findOverlapLocked(appt *domain.Appointment) *domain.Appointment {
	for _, other := range r.appointments {
		if other.ID == appt.ID || !other.IsActive() {
			continue
		}
		if other.Overlaps(appt.Date, appt.StartTime, appt.DurationMinutes) {
			return other
		}
	}
	return nil
}

func (r *MemoryRepository) find(startDate, endDate time.Time, match func(*domain.Appointment) bool) []*domain.Appointment {
	from := calendar.DateOnly(startDate)
	to := calendar.DateOnly(endDate)

	r.mu.RLock()
	result := make([]*domain.Appointment, 0)
	for _, appt := range r.appointments {
		if appt.Date.Before(from) || appt.Date.After(to) || !match(appt) {
			continue
		}
		result = append(result, appt.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		if result[i].StartTime != result[j].StartTime {
			return result[i].StartTime.IsBefore(result[j].StartTime)
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result
}
