package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrQuit is returned when the user leaves the wizard from the action menu.
	ErrQuit = errors.New("tui: quit")
	// ErrInvalidSelection reports a driver answer outside the offered options.
	ErrInvalidSelection = errors.New("tui: invalid selection")
)
