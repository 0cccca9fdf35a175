package core

import "errors"

var (
	// ErrEmptyDescription rejects a run before any stage or supervisor
	// invocation; no trace is produced for invalid input.
	ErrEmptyDescription = errors.New("incident description must not be empty")

	// ErrUnknownStage indicates the supervisor selected a stage id missing
	// from the registry. This is a stage-registration bug and aborts the run.
	ErrUnknownStage = errors.New("next stage is not registered")
)
