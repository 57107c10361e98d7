package substructure

import (
	"errors"

	"github.com/imdinu/clustering-lhco/pseudojet"
)

// ErrNegativeThreshold indicates a negative subjet pT cut or exclusive
// resolution.
var ErrNegativeThreshold = errors.New("substructure: thresholds must be non-negative")

// Options configure the secondary clusterings behind the substructure
// features.
//
// Fields:
//   - R      — radius of the kt reclustering that provides the τ axes
//     (conventionally the same radius the jets were found with).
//   - R2     — subjet radius for the inclusive and exclusive subjet counts.
//   - PtMin2 — pT threshold on inclusive subjets.
//   - DCut   — resolution at which the exclusive subjet count is taken.
type Options struct {
	R      float64
	R2     float64
	PtMin2 float64
	DCut   float64
}

// DefaultOptions returns the standard boosted-object setup: axes at R = 1.0,
// subjets at R2 = 0.2 with no pT cut, exclusive resolution dcut = 0.1.
func DefaultOptions() Options {
	return Options{R: 1.0, R2: 0.2, PtMin2: 0, DCut: 0.1}
}

// Validate reports the first configuration problem: a non-positive radius
// or a negative threshold.
func (o Options) Validate() error {
	if o.R <= 0 || o.R2 <= 0 {
		return pseudojet.ErrBadRadius
	}
	if o.PtMin2 < 0 || o.DCut < 0 {
		return ErrNegativeThreshold
	}
	return nil
}

// Features is the substructure summary of one jet.
//
// Tau32 and Tau21 are +Inf when their denominator vanishes, which happens
// for jets with too few constituents to resolve the softer axis.
type Features struct {
	NInclusive int     // subjets above PtMin2 from inclusive kt at R2
	NExclusive int     // subjets at resolution DCut from exclusive kt at R2
	Tau1       float64 // 1-subjettiness
	Tau2       float64
	Tau3       float64
	Tau32      float64 // Tau3 / Tau2
	Tau21      float64 // Tau2 / Tau1
	Rings      [NumRings]float64
}

// names lists the features in canonical column order; slot suffixes are
// appended by the caller.
var names = []string{
	"nisj", "nesj",
	"tau1", "tau2", "tau3", "tau32", "tau21",
	"eRing0", "eRing1", "eRing2", "eRing3", "eRing4",
	"eRing5", "eRing6", "eRing7", "eRing8", "eRing9",
}

// Names returns the substructure feature names in canonical column order.
// The returned slice is a copy.
func Names() []string {
	return append([]string(nil), names...)
}

// Values returns the feature values in the order reported by Names.
func (f Features) Values() []float64 {
	out := make([]float64, 0, len(names))
	out = append(out, float64(f.NInclusive), float64(f.NExclusive),
		f.Tau1, f.Tau2, f.Tau3, f.Tau32, f.Tau21)
	out = append(out, f.Rings[:]...)
	return out
}
