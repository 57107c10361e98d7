// Package eventlevel computes whole-event observables from the padded jet
// slots of one event: the presence-agnostic jet count and the combined
// invariant masses of every slot subset of size two or more.
//
// Absent slots are passed as nil FourMomentum values. They contribute
// nothing to any four-momentum sum, which is different from a present jet
// with zero momentum.
package eventlevel

import "math"

// FourMomentum is the minimal jet view needed for invariant mass sums.
// pseudojet.Jet satisfies it; a nil value marks an absent slot.
type FourMomentum interface {
	Px() float64
	Py() float64
	Pz() float64
	E() float64
}

// JetCount is the event jet count under the presence-agnostic convention:
// the padded slot count, regardless of how many slots are filled.
func JetCount(slots []FourMomentum) float64 {
	return float64(len(slots))
}

// CombinedMass returns the invariant mass √(E² − px² − py² − pz²) of the
// four-momentum sum over jets, skipping nil entries. With no jets left
// after skipping, the mass is 0. Round-off below zero clamps to 0.
func CombinedMass(jets []FourMomentum) float64 {
	var e, px, py, pz float64
	seen := false
	for _, j := range jets {
		if j == nil {
			continue
		}
		seen = true
		e += j.E()
		px += j.Px()
		py += j.Py()
		pz += j.Pz()
	}
	if !seen {
		return 0
	}
	m2 := e*e - px*px - py*py - pz*pz
	if m2 <= 0 {
		return 0
	}
	return math.Sqrt(m2)
}
