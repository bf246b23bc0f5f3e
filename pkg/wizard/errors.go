package wizard

import "errors"

var (
	// ErrFinalStep is returned when advancing past the execution step.
	ErrFinalStep = errors.New("wizard: already at the final step")
	// ErrStepIncomplete is returned when the current step's gate fails.
	ErrStepIncomplete = errors.New("wizard: current step is incomplete")
	// ErrNotReady is returned when submitting before the execution step.
	ErrNotReady = errors.New("wizard: submission is only possible on the execution step")
	// ErrSubmissionInFlight is returned while a previous submission runs.
	ErrSubmissionInFlight = errors.New("wizard: a submission is already in flight")
	// ErrUnknownDataField is returned for data keys outside the data config.
	ErrUnknownDataField = errors.New("wizard: unknown data field")
	// ErrUnknownSection is returned for strategy slices other than
	// parameters, logics and common.
	ErrUnknownSection = errors.New("wizard: unknown strategy section")
)
