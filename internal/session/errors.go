package session

import "errors"

var (
	// ErrDayAlreadyStarted is returned when a start-day call finds an active
	// session for the same officer and calendar day.
	ErrDayAlreadyStarted = errors.New("day already started")

	// ErrNoActiveDay is returned when an end-day call finds nothing to close.
	ErrNoActiveDay = errors.New("no active day to end")

	// ErrNotFound is the store-level missing-record sentinel.
	ErrNotFound = errors.New("work session not found")
)
