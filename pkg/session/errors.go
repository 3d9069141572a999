package session

import "errors"

var (
	// ErrBusy is returned while a transition or submission is in flight.
	ErrBusy = errors.New("session: transition in progress")
	// ErrSubmitted is returned once the form has been submitted.
	ErrSubmitted = errors.New("session: form already submitted")
	// ErrInvalidStep is returned by Continue when step validation fails.
	ErrInvalidStep = errors.New("session: step has validation errors")
	// ErrNoSteps is returned when the form has no steps.
	ErrNoSteps = errors.New("session: form has no steps")
	// ErrUnknownField is returned for answer keys no question resolves to.
	ErrUnknownField = errors.New("session: unknown field")
)
