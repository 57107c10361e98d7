package pseudojet

import "errors"

var (
	// ErrNoParticles indicates Cluster was called with an empty particle list.
	ErrNoParticles = errors.New("pseudojet: no particles to cluster")
	// ErrBadRadius indicates a non-positive cone radius.
	ErrBadRadius = errors.New("pseudojet: cone radius must be positive")
	// ErrUnknownAlgorithm indicates an Algorithm value outside the kt family.
	ErrUnknownAlgorithm = errors.New("pseudojet: unknown clustering algorithm")
	// ErrBadJetCount indicates an exclusive jet request outside [0, n particles].
	ErrBadJetCount = errors.New("pseudojet: requested exclusive jet count out of range")
)
