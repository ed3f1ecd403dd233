package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrTooManyAttempts is returned when a field keeps failing validation
	// and the attempt budget runs out.
	ErrTooManyAttempts = errors.New("tui: too many failed attempts")
)
