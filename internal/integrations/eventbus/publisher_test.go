package eventbus

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublisher_Publish(t *testing.T) {
	writer := &fakeWriter{}
	p := NewPublisherWithWriter(writer, "appointments.events")

	err := p.Publish(context.Background(), "appt-1", []byte(`{"action":"new"}`), map[string]string{"action": "new"})
	require.NoError(t, err)

	require.Len(t, writer.messages, 1)
	msg := writer.messages[0]
	assert.Equal(t, "appt-1", string(msg.Key))
	assert.JSONEq(t, `{"action":"new"}`, string(msg.Value))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "action", msg.Headers[0].Key)
	assert.Equal(t, "new", string(msg.Headers[0].Value))

	require.NoError(t, p.Close())
	assert.True(t, writer.closed)
}

func TestPublisher_WriteError(t *testing.T) {
	p := NewPublisherWithWriter(&fakeWriter{err: errors.New("leader not available")}, "appointments.events")
	err := p.Publish(context.Background(), "appt-1", []byte(`{}`), nil)
	assert.ErrorIs(t, err, ErrPublish)
}

func TestNewPublisher_Disabled(t *testing.T) {
	assert.Nil(t, NewPublisher(Config{Topic: "appointments.events"}))
	assert.Nil(t, NewPublisher(Config{Brokers: []string{"localhost:9092"}}))

	p := NewPublisher(Config{Brokers: []string{"localhost:9092"}, Topic: "appointments.events"})
	require.NotNil(t, p)
	assert.Equal(t, "appointments.events", p.Topic())
}
