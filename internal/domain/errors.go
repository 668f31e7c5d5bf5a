package domain

import "errors"

var (
	// ErrInvalidStatus returned for an unknown appointment status
	ErrInvalidStatus = errors.New("domain: invalid appointment status")

	// ErrInvalidSchedule returned for inconsistent working hours
	ErrInvalidSchedule = errors.New("domain: invalid schedule")
)
