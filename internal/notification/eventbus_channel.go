package notification

import (
	"context"
	"encoding/json"
	"fmt"
)

const eventBusChannelName = "eventbus"

// EventBusChannel публикует событие в шину, ключ - ID записи
type EventBusChannel struct {
	publisher EventPublisher
}

func NewEventBusChannel(publisher EventPublisher) *EventBusChannel {
	return &EventBusChannel{publisher: publisher}
}

func (c *EventBusChannel) Name() string {
	return eventBusChannelName
}

func (c *EventBusChannel) Deliver(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	headers := map[string]string{
		"event_id": ev.ID.String(),
		"action":   string(ev.Action),
	}
	return c.publisher.Publish(ctx, ev.Appointment.ID.String(), payload, headers)
}
