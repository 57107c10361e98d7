package jetminer

import (
	"github.com/imdinu/clustering-lhco/pseudojet"
	"github.com/imdinu/clustering-lhco/substructure"
)

// kinematicNames are the per-jet kinematic columns, in order.
var kinematicNames = []string{"pt", "eta", "phi", "mass", "e"}

// subWidth is the per-slot substructure column block width.
var subWidth = len(substructure.Names())

// A Slot is one padded jet position of an event: either a present jet or
// the explicit absent sentinel. An absent slot is distinct from a present
// jet with zero momentum; every feature of an absent slot is 0 by
// definition rather than by computation.
type Slot struct {
	Jet     pseudojet.Jet
	Present bool
}

// PadJets places jets into exactly njets slots, truncating the excess and
// filling missing positions with absent slots.
func PadJets(jets []pseudojet.Jet, njets int) []Slot {
	slots := make([]Slot, njets)
	for i := 0; i < njets && i < len(jets); i++ {
		slots[i] = Slot{Jet: jets[i], Present: true}
	}
	return slots
}

// Options configure feature extraction for one run.
//
// Fields:
//   - Clustering   — algorithm and radius of the primary event clustering.
//   - PtMin        — pT threshold on the jets entering the slots.
//   - NJets        — number of jet slots per event (1 to 9).
//   - Substructure — secondary clustering settings for the per-jet
//     substructure features.
type Options struct {
	Clustering   pseudojet.Options
	PtMin        float64
	NJets        int
	Substructure substructure.Options
}

// DefaultOptions mirrors the conventional dijet setup: anti-kt at R = 1.0,
// two jet slots, no pT cuts, subjets at R2 = 0.2 with dcut = 0.1.
func DefaultOptions() Options {
	return Options{
		Clustering:   pseudojet.DefaultOptions(),
		PtMin:        0,
		NJets:        2,
		Substructure: substructure.DefaultOptions(),
	}
}

// Validate reports the first configuration problem.
func (o Options) Validate() error {
	if err := o.Clustering.Validate(); err != nil {
		return err
	}
	if err := o.Substructure.Validate(); err != nil {
		return err
	}
	if o.NJets < 1 {
		return ErrBadJetCount
	}
	if o.PtMin < 0 {
		return ErrNegativePtMin
	}
	return nil
}
