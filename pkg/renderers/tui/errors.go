package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (Ctrl+C or declining to submit).
	ErrAborted = errors.New("tui: aborted")
	// errNoDriver is returned when the renderer has no prompt driver.
	errNoDriver = errors.New("tui: prompt driver is nil")
)
