package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrSubmitFailed is returned when the user declines to retry a failed
	// submission.
	ErrSubmitFailed = errors.New("tui: submission failed")
)
