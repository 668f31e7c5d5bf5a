package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

var day = time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)

func newAppointment(start string, duration int, status AppointmentStatus) *Appointment {
	return &Appointment{
		ID:              uuid.New(),
		ClientID:        uuid.New(),
		ServiceName:     "Haircut",
		DurationMinutes: duration,
		Date:            day,
		StartTime:       types.TimeString(start),
		Status:          status,
	}
}

func TestParseAppointmentStatus(t *testing.T) {
	status, err := ParseAppointmentStatus("confirmed")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, status)

	_, err = ParseAppointmentStatus("completed")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestAppointment_StatusChecks(t *testing.T) {
	tests := []struct {
		status      AppointmentStatus
		active      bool
		confirmable bool
	}{
		{status: StatusPending, active: true, confirmable: true},
		{status: StatusConfirmed, active: true, confirmable: false},
		{status: StatusCancelled, active: false, confirmable: false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			a := newAppointment("11:00", 30, tt.status)
			assert.Equal(t, tt.active, a.IsActive())
			assert.Equal(t, tt.active, a.CanBeRescheduled())
			assert.Equal(t, tt.confirmable, a.CanBeConfirmed())
			assert.Equal(t, !tt.active, a.IsCancelled())
		})
	}
}

func TestAppointment_Overlaps(t *testing.T) {
	a := newAppointment("11:00", 60, StatusConfirmed)

	tests := []struct {
		name     string
		date     time.Time
		start    string
		duration int
		want     bool
	}{
		{name: "same start", date: day, start: "11:00", duration: 30, want: true},
		{name: "inside", date: day, start: "11:30", duration: 30, want: true},
		{name: "covers from before", date: day, start: "10:30", duration: 60, want: true},
		{name: "ends at start", date: day, start: "10:30", duration: 30, want: false},
		{name: "starts at end", date: day, start: "12:00", duration: 30, want: false},
		{name: "other date", date: day.AddDate(0, 0, 1), start: "11:00", duration: 30, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.Overlaps(tt.date, types.TimeString(tt.start), tt.duration))
		})
	}
}

func TestAppointment_EndTime(t *testing.T) {
	end, err := newAppointment("17:30", 30, StatusPending).EndTime()
	require.NoError(t, err)
	assert.Equal(t, types.TimeString("18:00"), end)
}

func TestAppointment_CloneIsDeep(t *testing.T) {
	a := newAppointment("11:00", 30, StatusPending)
	a.Notes = ptr.Ptr("first visit")

	c := a.Clone()
	*c.Notes = "changed"

	assert.Equal(t, "first visit", *a.Notes)
	assert.Nil(t, (*Appointment)(nil).Clone())
}

func TestAppointmentPatch_Apply(t *testing.T) {
	a := newAppointment("11:00", 30, StatusPending)

	assert.True(t, AppointmentPatch{}.IsEmpty())

	patch := AppointmentPatch{
		StartTime: ptr.Ptr(types.TimeString("14:00")),
		Status:    ptr.Ptr(StatusConfirmed),
	}
	assert.False(t, patch.IsEmpty())

	updated := patch.Apply(a)
	assert.Equal(t, types.TimeString("14:00"), updated.StartTime)
	assert.Equal(t, StatusConfirmed, updated.Status)
	assert.Equal(t, a.Date, updated.Date)

	// оригинал не меняется
	assert.Equal(t, types.TimeString("11:00"), a.StartTime)
	assert.Equal(t, StatusPending, a.Status)
}

func TestActor_CanManage(t *testing.T) {
	a := newAppointment("11:00", 30, StatusPending)

	assert.True(t, Actor{UserID: a.ClientID}.CanManage(a))
	assert.True(t, Actor{UserID: uuid.New(), IsAdmin: true}.CanManage(a))
	assert.False(t, Actor{UserID: uuid.New()}.CanManage(a))
}
