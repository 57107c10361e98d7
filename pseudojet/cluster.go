// Package pseudojet implements sequential recombination jet clustering in
// the kt family (kt, anti-kt, Cambridge/Aachen and generalised kt) with
// E-scheme recombination.
//
// Cluster records the complete recombination history, so a single Sequence
// answers inclusive, exclusive-by-count and exclusive-by-dcut queries
// without reclustering. Distances follow the hadron-collider convention
//
//	d_ij = min(pT_i^2p, pT_j^2p) · ΔR²_ij / R²
//	d_iB = pT_i^2p
//
// with ΔR² measured in the rapidity–azimuth plane (Δφ wrapped into [0, π])
// and p = −1, +1, 0 for anti-kt, kt and Cambridge/Aachen respectively.
package pseudojet

import "math"

// briefJet is the working view of one active cluster during recombination:
// cached coordinates, the beam distance, and the geometric nearest
// neighbour among the other active clusters.
type briefJet struct {
	rap, phi float64
	diB      float64 // pT^2p
	nnDist   float64 // min(ΔR² to any other active jet, R²)
	nn       int     // active index of the nearest neighbour, -1 if none within R
	hist     int     // history entry of this cluster
	jet      int     // index into Sequence.jets
}

// Cluster runs sequential recombination over particles and returns the
// completed Sequence.
//
// Contracts:
//   - len(particles) ≥ 1; opts.R > 0; opts.Algorithm a declared constant.
//   - Particles are treated as massless; the input values are preserved and
//     returned verbatim by Jet.Constituents.
//
// Complexity: O(n²) time through nearest-neighbour bookkeeping (the pair
// realising the minimum d_ij is always a geometric nearest-neighbour pair),
// O(n) working space beyond the recorded history.
func Cluster(particles []Particle, opts Options) (*Sequence, error) {
	if len(particles) == 0 {
		return nil, ErrNoParticles
	}
	if opts.R <= 0 {
		return nil, ErrBadRadius
	}
	p, ok := opts.Algorithm.exponent(opts.P)
	if !ok {
		return nil, ErrUnknownAlgorithm
	}

	n := len(particles)
	s := &Sequence{
		particles: append([]Particle(nil), particles...),
		jets:      make([]Jet, 0, 2*n),
		history:   make([]step, 0, 2*n),
		n:         n,
	}
	r2 := opts.R * opts.R
	invR2 := 1 / r2

	// Seed one active cluster per input particle. Input η equals rapidity
	// for massless momenta, so the given coordinates are used directly.
	active := make([]briefJet, n)
	for i, part := range s.particles {
		px, py, pz, e := fourVec(part)
		s.jets = append(s.jets, Jet{px: px, py: py, pz: pz, e: e, seq: s, hist: i})
		s.history = append(s.history, step{parent1: initialEntry, parent2: initialEntry, child: noChild, jet: i})
		active[i] = briefJet{
			rap:    part.Eta,
			phi:    part.Phi,
			diB:    ktPow(part.Pt*part.Pt, p),
			nnDist: r2,
			nn:     -1,
			hist:   i,
			jet:    i,
		}
	}
	for i := range active {
		setNearest(active, i, r2)
	}

	for len(active) > 0 {
		// Pick the winner. Capping nnDist at R² folds the beam distance in:
		// with no neighbour inside R the scaled distance reduces to d_iB.
		best := math.Inf(1)
		bi := 0
		for i := range active {
			a := &active[i]
			d := a.diB
			if a.nn >= 0 {
				if nb := active[a.nn].diB; nb < d {
					d = nb
				}
				d *= a.nnDist * invR2
			}
			if d < best {
				best, bi = d, i
			}
		}

		if active[bi].nn < 0 {
			s.recordBeam(active[bi].hist, active[bi].jet, active[bi].diB)
			moved := len(active) - 1
			active[bi] = active[moved]
			active = active[:moved]
			for k := range active {
				switch active[k].nn {
				case bi: // pointed at the removed cluster
					setNearest(active, k, r2)
				case moved: // pointed at the entry that slid into slot bi
					active[k].nn = bi
				}
			}
			continue
		}

		// Pairwise merge under the E scheme.
		bj := active[bi].nn
		a, b := s.jets[active[bi].jet], s.jets[active[bj].jet]
		sum := Jet{px: a.px + b.px, py: a.py + b.py, pz: a.pz + b.pz, e: a.e + b.e}
		hist, jet := s.recordMerge(active[bi].hist, active[bj].hist, sum, best)

		lo, hi := bi, bj
		if lo > hi {
			lo, hi = hi, lo
		}
		active[lo] = briefJet{
			rap:    s.jets[jet].Rapidity(),
			phi:    s.jets[jet].Phi(),
			diB:    ktPow(sum.px*sum.px+sum.py*sum.py, p),
			nnDist: r2,
			nn:     -1,
			hist:   hist,
			jet:    jet,
		}
		moved := len(active) - 1
		if hi != moved {
			active[hi] = active[moved]
		}
		active = active[:moved]
		for k := range active {
			if k == lo {
				continue
			}
			switch active[k].nn {
			case lo, hi: // pointed at a merged-away cluster
				setNearest(active, k, r2)
			case moved:
				active[k].nn = hi
			}
			// The merged cluster may have become the closer neighbour.
			if d := geomDist2(&active[k], &active[lo]); d < active[k].nnDist {
				active[k].nnDist, active[k].nn = d, lo
			}
		}
		setNearest(active, lo, r2)
	}

	return s, nil
}

// setNearest rescans all active clusters for the geometric nearest
// neighbour of entry i, with the search radius capped at r2.
func setNearest(active []briefJet, i int, r2 float64) {
	best, bestJ := r2, -1
	for j := range active {
		if j == i {
			continue
		}
		if d := geomDist2(&active[i], &active[j]); d < best {
			best, bestJ = d, j
		}
	}
	active[i].nnDist, active[i].nn = best, bestJ
}

// geomDist2 returns the squared rapidity–azimuth distance between two
// active clusters, wrapping Δφ into [0, π].
func geomDist2(a, b *briefJet) float64 {
	drap := a.rap - b.rap
	dphi := math.Abs(a.phi - b.phi)
	if dphi > math.Pi {
		dphi = 2*math.Pi - dphi
	}
	return drap*drap + dphi*dphi
}

// ktPow returns (pT²)^p. The fast paths cover the named algorithms; zero pT
// under anti-kt yields +Inf, pushing such clusters to the very end of the
// sequence.
func ktPow(kt2, p float64) float64 {
	switch p {
	case 1:
		return kt2
	case -1:
		return 1 / kt2
	case 0:
		return 1
	default:
		return math.Pow(kt2, p)
	}
}
