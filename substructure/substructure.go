// Package substructure derives the internal structure of a single jet:
// subjet counts, N-subjettiness ratios and radial energy rings.
//
// All features are built from two kt reclusterings of the jet's own
// constituents, one at the subjet radius R2 (counting) and one at the
// primary radius R (τ axes). Compute shares those sequences across the
// whole feature set, so each jet is reclustered at most twice.
//
// Angular distances here are the plain Euclidean distance in the (η, φ)
// plane without azimuthal wrapping; jets are narrow enough that their
// constituents never straddle the ±π seam in practice.
package substructure

import (
	"math"

	"github.com/imdinu/clustering-lhco/pseudojet"
)

// Compute returns the full substructure feature set of jet.
//
// Contracts:
//   - jet must come from a clustering sequence (at least one constituent).
//   - opts radii must be positive; the τ of order N is defined as 0 when
//     the jet has no more than N constituents.
//
// Complexity: O(c²) in the constituent count c for the reclusterings,
// O(c·NumRings) for the rings.
func Compute(jet pseudojet.Jet, opts Options) (Features, error) {
	cnsts := jet.Constituents()

	secondary, err := pseudojet.Cluster(cnsts, pseudojet.Options{Algorithm: pseudojet.Kt, R: opts.R2})
	if err != nil {
		return Features{}, err
	}
	primary, err := pseudojet.Cluster(cnsts, pseudojet.Options{Algorithm: pseudojet.Kt, R: opts.R})
	if err != nil {
		return Features{}, err
	}

	var f Features
	f.NInclusive = len(secondary.InclusiveJets(opts.PtMin2))
	f.NExclusive = secondary.ExclusiveCount(opts.DCut)

	f.Tau1, err = tau(primary, cnsts, 1)
	if err != nil {
		return Features{}, err
	}
	f.Tau2, err = tau(primary, cnsts, 2)
	if err != nil {
		return Features{}, err
	}
	f.Tau3, err = tau(primary, cnsts, 3)
	if err != nil {
		return Features{}, err
	}
	f.Tau32 = ratioOrInf(f.Tau3, f.Tau2)
	f.Tau21 = ratioOrInf(f.Tau2, f.Tau1)

	f.Rings = energyRings(jet, cnsts)
	return f, nil
}

// tau computes the N-subjettiness of order n: the pT-weighted sum of each
// constituent's distance to its nearest exclusive subjet axis, normalised
// by the scalar pT sum of the constituents. Jets with n or fewer
// constituents resolve one axis per constituent, so τ is exactly 0.
func tau(primary *pseudojet.Sequence, cnsts []pseudojet.Particle, n int) (float64, error) {
	if len(cnsts) <= n {
		return 0, nil
	}
	axes, err := primary.ExclusiveJets(n)
	if err != nil {
		return 0, err
	}

	var d0, sum float64
	for _, c := range cnsts {
		d0 += c.Pt
		nearest := math.Inf(1)
		for _, ax := range axes {
			if d := deltaR(c.Eta, c.Phi, ax.Eta(), ax.Phi()); d < nearest {
				nearest = d
			}
		}
		sum += c.Pt * nearest
	}
	return sum / d0, nil
}

// ratioOrInf returns num/den, or +Inf when den is not positive.
func ratioOrInf(num, den float64) float64 {
	if den > 0 {
		return num / den
	}
	return math.Inf(1)
}

// deltaR is the unwrapped distance in the (η, φ) plane.
func deltaR(eta1, phi1, eta2, phi2 float64) float64 {
	de := eta1 - eta2
	dp := phi1 - phi2
	return math.Sqrt(de*de + dp*dp)
}
