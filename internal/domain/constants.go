package domain

// Default policy values
const (
	DefaultDurationMinutes         = 30
	DefaultMinBookingNoticeMinutes = 0
	DefaultAdvanceBookingDays      = 0 // 0 = unlimited
	DefaultStatus                  = StatusPending
)

// Business validation constants
const (
	MinDurationMinutes      = 5
	MaxDurationMinutes      = 480 // 8 hours
	MinSlotMinutes          = 5
	MaxSlotMinutes          = 240
	MaxAdvanceBookingDays   = 365
	MaxBookingNoticeMinutes = 10080 // 1 week
	MaxNotesLength          = 500
	MaxServiceNameLength    = 100
	MaxSpecialDateNote      = 200
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// ActiveStatuses statuses that occupy a slot
var ActiveStatuses = []AppointmentStatus{
	StatusPending,
	StatusConfirmed,
}
