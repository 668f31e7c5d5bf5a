package notification

import "errors"

var (
	// ErrQueueFull возвращается, когда в очереди нет места
	ErrQueueFull = errors.New("notification: queue is full")

	// ErrQueueEmpty возвращается Pop, если за время ожидания событий не появилось
	ErrQueueEmpty = errors.New("notification: queue is empty")

	// ErrQueueClosed возвращается после Close
	ErrQueueClosed = errors.New("notification: queue is closed")

	// ErrDecodeEvent возвращается при повреждённом событии в очереди
	ErrDecodeEvent = errors.New("notification: failed to decode event")
)
