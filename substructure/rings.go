package substructure

import (
	"math"

	"github.com/imdinu/clustering-lhco/pseudojet"
)

// NumRings is the number of radial energy rings.
const NumRings = 10

// RingBands are the ΔR intervals of the energy rings, log-spaced between
// 0.01 and 1 with a linear innermost band. Both edges are inclusive, so a
// constituent sitting exactly on a boundary contributes to the rings on
// either side of it.
var RingBands = [NumRings][2]float64{
	{0, 0.01},
	{0.01, 0.01668101},
	{0.01668101, 0.02782559},
	{0.02782559, 0.04641589},
	{0.04641589, 0.07742637},
	{0.07742637, 0.12915497},
	{0.12915497, 0.21544347},
	{0.21544347, 0.35938137},
	{0.35938137, 0.59948425},
	{0.59948425, 1},
}

// energyRings returns, per band, the energy of the constituents whose ΔR to
// the jet axis falls inside the band, as a fraction of the jet energy.
func energyRings(jet pseudojet.Jet, cnsts []pseudojet.Particle) [NumRings]float64 {
	var rings [NumRings]float64
	eta, phi := jet.Eta(), jet.Phi()
	for _, c := range cnsts {
		dr := deltaR(eta, phi, c.Eta, c.Phi)
		e := c.Pt * math.Cosh(c.Eta)
		for b, band := range RingBands {
			if dr >= band[0] && dr <= band[1] {
				rings[b] += e
			}
		}
	}
	jetE := jet.E()
	for b := range rings {
		rings[b] /= jetE
	}
	return rings
}
