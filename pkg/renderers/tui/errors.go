package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C) or declined to
	// continue.
	ErrAborted = errors.New("tui: aborted")
	// ErrNoSubmitter is returned when a session reaches the execution step
	// without a way to submit.
	ErrNoSubmitter = errors.New("tui: submitter is required")
)
