package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/email"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/profileservice"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

type fakeProfiles struct {
	profile *profileservice.Profile
	err     error
}

func (f *fakeProfiles) GetProfile(_ context.Context, userID uuid.UUID) (*profileservice.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

type fakeSender struct {
	sent []email.Message
	err  error
}

func (s *fakeSender) Send(_ context.Context, msg email.Message) error {
	s.sent = append(s.sent, msg)
	return s.err
}

func anna() *profileservice.Profile {
	return &profileservice.Profile{FirstName: "Anna", LastName: "Ivanova", Email: "anna@example.com"}
}

func TestEmailChannel_Deliver(t *testing.T) {
	tests := []struct {
		action      domain.NotificationAction
		wantSubject string
		wantText    string
	}{
		{action: domain.ActionNew, wantSubject: "Your appointment is booked", wantText: "is booked for Monday, 15 July 2024 at 11:00"},
		{action: domain.ActionUpdated, wantSubject: "Your appointment has been updated", wantText: "has been moved to Monday, 15 July 2024 at 11:00"},
		{action: domain.ActionCancelled, wantSubject: "Your appointment has been cancelled", wantText: "on Monday, 15 July 2024 at 11:00 has been cancelled"},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			sender := &fakeSender{}
			ch := NewEmailChannel(&fakeProfiles{profile: anna()}, sender, "Salon Achi", logger.Nop())

			err := ch.Deliver(context.Background(), NewEvent(testAppointment(), tt.action, time.Now()))
			require.NoError(t, err)

			require.Len(t, sender.sent, 1)
			msg := sender.sent[0]
			assert.Equal(t, "anna@example.com", msg.To)
			assert.Equal(t, "Anna Ivanova", msg.ToName)
			assert.Equal(t, tt.wantSubject, msg.Subject)
			assert.Contains(t, msg.Text, "Dear Anna Ivanova")
			assert.Contains(t, msg.Text, "Haircut")
			assert.Contains(t, msg.Text, tt.wantText)
			assert.Contains(t, msg.Text, "Salon Achi")
			assert.Contains(t, msg.HTML, "<h1")
		})
	}
}

func TestEmailChannel_EscapesHTML(t *testing.T) {
	sender := &fakeSender{}
	ch := NewEmailChannel(&fakeProfiles{profile: anna()}, sender, "Salon", logger.Nop())

	appt := testAppointment()
	appt.ServiceName = "<script>alert(1)</script>"
	require.NoError(t, ch.Deliver(context.Background(), NewEvent(appt, domain.ActionNew, time.Now())))

	require.Len(t, sender.sent, 1)
	assert.NotContains(t, sender.sent[0].HTML, "<script>")
	assert.Contains(t, sender.sent[0].Text, "<script>")
}

func TestEmailChannel_SkipsWithoutAddress(t *testing.T) {
	sender := &fakeSender{}

	ch := NewEmailChannel(&fakeProfiles{err: profileservice.ErrProfileNotFound}, sender, "Salon", logger.Nop())
	require.NoError(t, ch.Deliver(context.Background(), NewEvent(testAppointment(), domain.ActionNew, time.Now())))

	noEmail := anna()
	noEmail.Email = ""
	ch = NewEmailChannel(&fakeProfiles{profile: noEmail}, sender, "Salon", logger.Nop())
	require.NoError(t, ch.Deliver(context.Background(), NewEvent(testAppointment(), domain.ActionNew, time.Now())))

	assert.Empty(t, sender.sent)
}

func TestEmailChannel_Errors(t *testing.T) {
	ch := NewEmailChannel(&fakeProfiles{err: profileservice.ErrInternal}, &fakeSender{}, "Salon", logger.Nop())
	err := ch.Deliver(context.Background(), NewEvent(testAppointment(), domain.ActionNew, time.Now()))
	assert.ErrorIs(t, err, profileservice.ErrInternal)

	ch = NewEmailChannel(&fakeProfiles{profile: anna()}, &fakeSender{err: email.ErrSendFailed}, "Salon", logger.Nop())
	err = ch.Deliver(context.Background(), NewEvent(testAppointment(), domain.ActionNew, time.Now()))
	assert.ErrorIs(t, err, email.ErrSendFailed)

	ch = NewEmailChannel(&fakeProfiles{profile: anna()}, &fakeSender{}, "Salon", logger.Nop())
	err = ch.Deliver(context.Background(), NewEvent(testAppointment(), "rescheduled", time.Now()))
	assert.Error(t, err)
}

type fakePublisher struct {
	key     string
	value   []byte
	headers map[string]string
	err     error
}

func (p *fakePublisher) Publish(_ context.Context, key string, value []byte, headers map[string]string) error {
	p.key, p.value, p.headers = key, value, headers
	return p.err
}

func TestEventBusChannel_Deliver(t *testing.T) {
	pub := &fakePublisher{}
	ch := NewEventBusChannel(pub)
	appt := testAppointment()
	ev := NewEvent(appt, domain.ActionCancelled, time.Date(2024, 7, 10, 9, 0, 0, 0, time.UTC))

	require.NoError(t, ch.Deliver(context.Background(), ev))

	assert.Equal(t, appt.ID.String(), pub.key)
	assert.Equal(t, "cancelled", pub.headers["action"])
	assert.Equal(t, ev.ID.String(), pub.headers["event_id"])

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(pub.value, &decoded))
	assert.Equal(t, "cancelled", decoded["action"])
	assert.Equal(t, "2024-07-10T09:00:00Z", decoded["occurredAt"])
	body := decoded["appointment"].(map[string]interface{})
	assert.Equal(t, "2024-07-15", body["date"])
	assert.Equal(t, "11:00", body["startTime"])

	pub.err = errors.New("broker down")
	assert.Error(t, ch.Deliver(context.Background(), ev))
}
