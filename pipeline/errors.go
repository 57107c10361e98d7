package pipeline

import "errors"

var (
	// ErrNoInput is returned when Params name no input table.
	ErrNoInput = errors.New("pipeline: input path required")

	// ErrNoOutputs is returned when both output kinds are disabled.
	ErrNoOutputs = errors.New("pipeline: no output kind enabled")

	// ErrBadWorkerCount is returned for a negative worker count.
	ErrBadWorkerCount = errors.New("pipeline: worker count must not be negative")

	// ErrBadChunkSize is returned for a negative chunk size.
	ErrBadChunkSize = errors.New("pipeline: chunk size must not be negative")

	// ErrBadMaxEvents is returned for a negative event cap.
	ErrBadMaxEvents = errors.New("pipeline: event cap must not be negative")

	// ErrMasterkeyConflict is returned when a masterkey is given for a
	// table that already embeds truth labels.
	ErrMasterkeyConflict = errors.New("pipeline: masterkey given but the table embeds truth labels")

	// ErrTruthIntegrity is returned when the truth source cannot label
	// every requested event: the masterkey is shorter than the input, or
	// an embedded label is neither 0 nor 1.
	ErrTruthIntegrity = errors.New("pipeline: truth labels do not cover the input")

	// ErrUnlabeled is returned when no truth source exists and the run is
	// configured to reject unlabeled input.
	ErrUnlabeled = errors.New("pipeline: no truth source for the input")

	// ErrStalePartial is returned when the temporary directory holds a
	// partial file stamped by a different run.
	ErrStalePartial = errors.New("pipeline: partial file from a different run")

	// ErrPartialMismatch is returned when partial files of one kind
	// disagree on columns or image shape.
	ErrPartialMismatch = errors.New("pipeline: partial files disagree on shape")

	// ErrIncompleteRun is returned after merging when an output kind
	// covers fewer events than were scheduled.
	ErrIncompleteRun = errors.New("pipeline: merged output is incomplete")

	// ErrRunCancelled is returned when the context ends the run before
	// every chunk is processed.
	ErrRunCancelled = errors.New("pipeline: run cancelled")
)
