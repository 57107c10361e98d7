package pseudojet

import "sort"

// History entry markers. Initial particles have no parents; a beam
// recombination has no second parent.
const (
	noChild      = -1
	initialEntry = -2
	beamMerge    = -3
)

// step is one entry of the recombination history. The first n entries are
// the input particles; each later entry is a pairwise merge or a beam
// recombination, appended in clustering order, so a full history always has
// exactly 2n entries.
type step struct {
	parent1 int     // history index, or initialEntry
	parent2 int     // history index, initialEntry, or beamMerge
	child   int     // history index of the step consuming this entry, or noChild
	jet     int     // index into Sequence.jets of the momentum at this entry
	dij     float64 // distance at which this step happened (0 for inputs)
	maxDij  float64 // running maximum of dij up to and including this step
}

// Sequence is the recorded recombination history of one clustering run.
// It is immutable once Cluster returns and safe for concurrent readers.
type Sequence struct {
	particles []Particle
	jets      []Jet // every four-momentum ever formed, inputs first
	history   []step
	inclusive []int // jets finalised by beam recombination, in clustering order
	n         int
}

// NumParticles reports the number of input particles.
func (s *Sequence) NumParticles() int { return s.n }

// recordBeam appends a beam recombination of the cluster at history entry h.
func (s *Sequence) recordBeam(h, jet int, d float64) {
	idx := len(s.history)
	s.history[h].child = idx
	s.history = append(s.history, step{
		parent1: h,
		parent2: beamMerge,
		child:   noChild,
		jet:     jet,
		dij:     d,
		maxDij:  maxf(d, s.history[idx-1].maxDij),
	})
	s.inclusive = append(s.inclusive, jet)
}

// recordMerge appends the merged momentum and its history entry, wiring
// both parents to the new step.
func (s *Sequence) recordMerge(h1, h2 int, sum Jet, d float64) (hist, jet int) {
	jet = len(s.jets)
	hist = len(s.history)
	sum.seq, sum.hist = s, hist
	s.jets = append(s.jets, sum)
	s.history[h1].child = hist
	s.history[h2].child = hist
	s.history = append(s.history, step{
		parent1: h1,
		parent2: h2,
		child:   noChild,
		jet:     jet,
		dij:     d,
		maxDij:  maxf(d, s.history[hist-1].maxDij),
	})
	return hist, jet
}

// InclusiveJets returns every jet finalised by a beam recombination with
// pT ≥ ptMin, ordered by descending pT.
func (s *Sequence) InclusiveJets(ptMin float64) []Jet {
	out := make([]Jet, 0, len(s.inclusive))
	for _, idx := range s.inclusive {
		if j := s.jets[idx]; j.Pt() >= ptMin {
			out = append(out, j)
		}
	}
	sortByPt(out)
	return out
}

// Leading returns at most n of the inclusive jets with pT ≥ ptMin, ordered
// by descending pT. Short events simply yield fewer jets; n ≤ 0 yields none.
func (s *Sequence) Leading(n int, ptMin float64) []Jet {
	if n <= 0 {
		return nil
	}
	jets := s.InclusiveJets(ptMin)
	if n < len(jets) {
		jets = jets[:n]
	}
	return jets
}

// ExclusiveJets returns the k clusters remaining when recombination is
// stopped once k are left, ordered by descending pT. Clusters recombined
// with the beam before that point belong to the beam and are not returned.
//
// Contracts: 0 ≤ k ≤ NumParticles, else ErrBadJetCount.
func (s *Sequence) ExclusiveJets(k int) ([]Jet, error) {
	if k < 0 || k > s.n {
		return nil, ErrBadJetCount
	}
	// With 2n history entries, stopping at k remaining clusters means
	// cutting the history at entry 2n−k: every entry from there on consumes
	// parents, and the parents formed before the cut are the survivors.
	stop := 2*s.n - k
	out := make([]Jet, 0, k)
	for i := stop; i < len(s.history); i++ {
		st := s.history[i]
		if st.parent1 >= 0 && st.parent1 < stop {
			out = append(out, s.jets[s.history[st.parent1].jet])
		}
		if st.parent2 >= 0 && st.parent2 < stop {
			out = append(out, s.jets[s.history[st.parent2].jet])
		}
	}
	sortByPt(out)
	return out, nil
}

// ExclusiveCount reports how many clusters remain when recombination stops
// just before the first step whose distance exceeds dcut. maxDij makes the
// answer well defined even under anti-kt, whose step distances are not
// monotonic. A dcut below every distance leaves all NumParticles clusters.
func (s *Sequence) ExclusiveCount(dcut float64) int {
	i := len(s.history) - 1
	for i >= s.n && s.history[i].maxDij > dcut {
		i--
	}
	return 2*s.n - (i + 1)
}

// Constituents returns the input particles contained in j, in input order.
func (j Jet) Constituents() []Particle {
	if j.seq == nil {
		return nil
	}
	idx := j.seq.leafEntries(j.hist, nil)
	sort.Ints(idx)
	out := make([]Particle, len(idx))
	for i, k := range idx {
		out[i] = j.seq.particles[k]
	}
	return out
}

// NumConstituents reports how many input particles ended up in j, without
// materialising the constituent slice.
func (j Jet) NumConstituents() int {
	if j.seq == nil {
		return 0
	}
	return j.seq.countLeaves(j.hist)
}

// leafEntries appends the initial-particle history indices reachable from
// entry h. For inputs the history index equals the particle index.
func (s *Sequence) leafEntries(h int, out []int) []int {
	st := s.history[h]
	if st.parent1 == initialEntry {
		return append(out, h)
	}
	out = s.leafEntries(st.parent1, out)
	if st.parent2 >= 0 {
		out = s.leafEntries(st.parent2, out)
	}
	return out
}

func (s *Sequence) countLeaves(h int) int {
	st := s.history[h]
	if st.parent1 == initialEntry {
		return 1
	}
	n := s.countLeaves(st.parent1)
	if st.parent2 >= 0 {
		n += s.countLeaves(st.parent2)
	}
	return n
}

// sortByPt orders jets by descending transverse momentum, stably so that
// equal-pT jets keep their clustering order.
func sortByPt(jets []Jet) {
	sort.SliceStable(jets, func(i, k int) bool {
		return jets[i].Pt() > jets[k].Pt()
	})
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
