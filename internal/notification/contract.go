package notification

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/integrations/profileservice"
)

// Queue очередь событий между Notify и воркерами
type Queue interface {
	// TryPush кладёт событие, не дожидаясь места в очереди (ErrQueueFull)
	TryPush(ev Event) error
	// Pop ждёт следующее событие; ErrQueueEmpty означает, что стоит спросить ещё раз
	Pop(ctx context.Context) (Event, error)
	Len(ctx context.Context) (int, error)
	// Close прекращает приём событий, Pop отдаёт оставшиеся и затем ErrQueueClosed
	Close() error
}

// Channel способ доставки уведомления (email, шина событий)
type Channel interface {
	Name() string
	Deliver(ctx context.Context, ev Event) error
}

// ProfileLookup источник контактов клиента
type ProfileLookup interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*profileservice.Profile, error)
}

// EventPublisher публикация событий в шину
type EventPublisher interface {
	Publish(ctx context.Context, key string, value []byte, headers map[string]string) error
}

// Metrics метрики доставки
type Metrics interface {
	ObserveNotification(channel, action, result string)
	NotificationDropped()
	SetNotificationQueue(n int)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
