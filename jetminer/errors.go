package jetminer

import "errors"

var (
	// ErrRaggedRow indicates an event row whose length is not a multiple of
	// three after any truth column has been stripped.
	ErrRaggedRow = errors.New("jetminer: event row length is not a multiple of three")
	// ErrSlotCount indicates a slot slice that does not match the
	// extractor's configured jet count.
	ErrSlotCount = errors.New("jetminer: slot count does not match extractor")
	// ErrBadJetCount indicates a non-positive configured jet count.
	ErrBadJetCount = errors.New("jetminer: jet count must be at least 1")
	// ErrNegativePtMin indicates a negative jet pT threshold.
	ErrNegativePtMin = errors.New("jetminer: jet pT threshold must be non-negative")
)
