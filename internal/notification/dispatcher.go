package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

const (
	resultOK      = "ok"
	resultError   = "error"
	popRetryDelay = 500 * time.Millisecond

	defaultInboxSize = 256
)

// Config настройки диспетчера
type Config struct {
	Workers         int
	DeliveryTimeout time.Duration
	// InboxSize буфер между Notify и очередью; Notify не ходит в очередь сам
	InboxSize int
}

// Dispatcher доставляет уведомления об изменении записей в фоне
// Notify никогда не блокирует вызывающего и не возвращает ошибок:
// событие попадает во внутренний буфер, откуда отдельная горутина перекладывает его в очередь.
// При переполнении буфера или очереди событие отбрасывается, ошибки каналов только логируются
type Dispatcher struct {
	queue    Queue
	channels []Channel
	cfg      Config
	metrics  Metrics
	logger   Logger
	now      func() time.Time

	inboxMu sync.RWMutex
	inbox   chan Event

	runCtx     context.Context
	stop       context.CancelFunc
	forwarders sync.WaitGroup
	workers    sync.WaitGroup
	closed     atomic.Bool
}

// NewDispatcher создает диспетчер и запускает воркеры
// metrics может быть nil
func NewDispatcher(queue Queue, channels []Channel, cfg Config, metrics Metrics, logger Logger) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.DeliveryTimeout <= 0 {
		cfg.DeliveryTimeout = 10 * time.Second
	}
	if cfg.InboxSize <= 0 {
		cfg.InboxSize = defaultInboxSize
	}

	runCtx, stop := context.WithCancel(context.Background())
	d := &Dispatcher{
		queue:    queue,
		channels: channels,
		cfg:      cfg,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
		inbox:    make(chan Event, cfg.InboxSize),
		runCtx:   runCtx,
		stop:     stop,
	}

	d.forwarders.Add(1)
	go d.forward()

	for i := 0; i < cfg.Workers; i++ {
		d.workers.Add(1)
		go d.worker(i)
	}
	return d
}

// Notify кладёт снимок записи во внутренний буфер, не обращаясь к очереди
func (d *Dispatcher) Notify(appt *domain.Appointment, action domain.NotificationAction) {
	if appt == nil {
		return
	}

	d.inboxMu.RLock()
	defer d.inboxMu.RUnlock()

	if d.closed.Load() {
		d.logger.Warn("Notify: dispatcher is closed, dropping %s event for appointment %s", action, appt.ID)
		d.dropped()
		return
	}

	select {
	case d.inbox <- NewEvent(appt, action, d.now()):
	default:
		d.logger.Warn("Notify: inbox is full, dropping %s event for appointment %s", action, appt.ID)
		d.dropped()
	}
}

// Close перестаёт принимать события и ждёт, пока буфер и очередь будут разобраны
// Если ctx истекает раньше, фоновые горутины останавливаются, а ctx.Err() возвращается
func (d *Dispatcher) Close(ctx context.Context) error {
	if !d.closed.CompareAndSwap(false, true) {
		return nil
	}

	d.inboxMu.Lock()
	close(d.inbox)
	d.inboxMu.Unlock()

	if err := waitGroup(ctx, &d.forwarders); err != nil {
		d.stop()
		d.forwarders.Wait()
		d.closeQueue()
		d.workers.Wait()
		return fmt.Errorf("notification: drain interrupted: %w", err)
	}

	d.closeQueue()
	if err := waitGroup(ctx, &d.workers); err != nil {
		d.stop()
		d.workers.Wait()
		return fmt.Errorf("notification: drain interrupted: %w", err)
	}

	d.stop()
	return nil
}

func (d *Dispatcher) closeQueue() {
	if err := d.queue.Close(); err != nil {
		d.logger.Error("Dispatcher: failed to close queue: %v", err)
	}
}

func waitGroup(ctx context.Context, wg *sync.WaitGroup) error {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// forward перекладывает события из буфера в очередь
// После остановки оставшиеся события только считаются отброшенными
func (d *Dispatcher) forward() {
	defer d.forwarders.Done()

	for ev := range d.inbox {
		if d.runCtx.Err() != nil {
			d.dropped()
			continue
		}
		if err := d.queue.TryPush(ev); err != nil {
			d.logger.Warn("Dispatcher: dropping %s event for appointment %s: %v", ev.Action, ev.Appointment.ID, err)
			d.dropped()
			continue
		}
		d.reportQueueLen()
	}
}

func (d *Dispatcher) worker(n int) {
	defer d.workers.Done()

	for {
		ev, err := d.queue.Pop(d.runCtx)
		switch {
		case err == nil:
			d.reportQueueLen()
			d.deliver(ev)
		case errors.Is(err, ErrQueueClosed), d.runCtx.Err() != nil:
			return
		case errors.Is(err, ErrQueueEmpty):
		case errors.Is(err, ErrDecodeEvent):
			d.logger.Error("Dispatcher: worker %d skipped broken event: %v", n, err)
		default:
			d.logger.Error("Dispatcher: worker %d failed to pop event: %v", n, err)
			select {
			case <-d.runCtx.Done():
				return
			case <-time.After(popRetryDelay):
			}
		}
	}
}

// deliver отправляет событие во все каналы, ошибка одного канала не мешает остальным
func (d *Dispatcher) deliver(ev Event) {
	for _, ch := range d.channels {
		err := d.deliverOne(ch, ev)
		result := resultOK
		if err != nil {
			result = resultError
			d.logger.Error("Dispatcher: %s delivery of %s event for appointment %s failed: %v",
				ch.Name(), ev.Action, ev.Appointment.ID, err)
		}
		if d.metrics != nil {
			d.metrics.ObserveNotification(ch.Name(), string(ev.Action), result)
		}
	}
}

func (d *Dispatcher) deliverOne(ch Channel, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in channel %s: %v", ch.Name(), r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.DeliveryTimeout)
	defer cancel()
	return ch.Deliver(ctx, ev)
}

func (d *Dispatcher) dropped() {
	if d.metrics != nil {
		d.metrics.NotificationDropped()
	}
}

func (d *Dispatcher) reportQueueLen() {
	if d.metrics == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisPushTimeout)
	defer cancel()
	if n, err := d.queue.Len(ctx); err == nil {
		d.metrics.SetNotificationQueue(n)
	}
}
