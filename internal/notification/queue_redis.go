package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisPushTimeout = 500 * time.Millisecond
	redisPopTimeout  = time.Second
)

// RedisQueue очередь на списке Redis: LPUSH в голову, BRPOP с хвоста
// После Close события остаются в списке и будут доставлены после перезапуска
type RedisQueue struct {
	client     redis.UniversalClient
	key        string
	maxLen     int64
	popTimeout time.Duration
	closed     atomic.Bool
}

// NewRedisQueue maxLen <= 0 - без ограничения длины
func NewRedisQueue(client redis.UniversalClient, key string, maxLen int) *RedisQueue {
	return &RedisQueue{
		client:     client,
		key:        key,
		maxLen:     int64(maxLen),
		popTimeout: redisPopTimeout,
	}
}

func (q *RedisQueue) TryPush(ev Event) error {
	if q.closed.Load() {
		return ErrQueueClosed
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("notification: encode event: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisPushTimeout)
	defer cancel()

	if q.maxLen > 0 {
		n, err := q.client.LLen(ctx, q.key).Result()
		if err != nil {
			return fmt.Errorf("notification: redis llen: %w", err)
		}
		if n >= q.maxLen {
			return ErrQueueFull
		}
	}

	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("notification: redis lpush: %w", err)
	}
	return nil
}

func (q *RedisQueue) Pop(ctx context.Context) (Event, error) {
	if q.closed.Load() {
		return Event{}, ErrQueueClosed
	}

	res, err := q.client.BRPop(ctx, q.popTimeout, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return Event{}, ErrQueueEmpty
	}
	if err != nil {
		if ctx.Err() != nil {
			return Event{}, ctx.Err()
		}
		return Event{}, fmt.Errorf("notification: redis brpop: %w", err)
	}

	// res = [key, value]
	if len(res) != 2 {
		return Event{}, fmt.Errorf("%w: unexpected brpop reply %v", ErrDecodeEvent, res)
	}
	var ev Event
	if err := json.Unmarshal([]byte(res[1]), &ev); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrDecodeEvent, err)
	}
	return ev, nil
}

func (q *RedisQueue) Len(ctx context.Context) (int, error) {
	n, err := q.client.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, fmt.Errorf("notification: redis llen: %w", err)
	}
	return int(n), nil
}

// Close клиент Redis закрывает владелец
func (q *RedisQueue) Close() error {
	q.closed.Store(true)
	return nil
}
