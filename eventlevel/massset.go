package eventlevel

import "strconv"

// MassSet enumerates the combined-mass features of a fixed slot count: one
// feature per subset of slot indices with at least two members, named after
// the sorted 1-based indices ("mjj12", "mjj13", "mjj123", …). For n slots
// there are exactly 2^n − n − 1 such subsets.
//
// The set is rebuilt whenever the slot count changes; it is never fixed at
// two slots.
type MassSet struct {
	njets   int
	subsets [][]int // 0-based slot indices, size-major then lexicographic
	names   []string
}

// NewMassSet derives the subset catalogue for njets slots.
//
// Contracts: 1 ≤ njets ≤ 9. The upper bound keeps the concatenated-digit
// names pairwise distinct. njets = 1 yields a valid empty set.
func NewMassSet(njets int) (*MassSet, error) {
	if njets < 1 {
		return nil, ErrBadSlotCount
	}
	if njets > 9 {
		return nil, ErrTooManySlots
	}

	s := &MassSet{njets: njets}
	for size := 2; size <= njets; size++ {
		combinations(njets, size, func(subset []int) {
			owned := append([]int(nil), subset...)
			s.subsets = append(s.subsets, owned)

			name := []byte("mjj")
			for _, idx := range owned {
				name = strconv.AppendInt(name, int64(idx+1), 10)
			}
			s.names = append(s.names, string(name))
		})
	}
	return s, nil
}

// Len reports the number of mass features, 2^njets − njets − 1.
func (s *MassSet) Len() int { return len(s.subsets) }

// Names returns the feature names in catalogue order. The slice is a copy.
func (s *MassSet) Names() []string {
	return append([]string(nil), s.names...)
}

// Values computes every subset mass for one event. slots must hold exactly
// the catalogue's slot count, with nil marking absent jets; absent jets are
// excluded from each subset sum and a fully absent subset scores 0.
func (s *MassSet) Values(slots []FourMomentum) ([]float64, error) {
	if len(slots) != s.njets {
		return nil, ErrSlotCountMismatch
	}
	out := make([]float64, len(s.subsets))
	members := make([]FourMomentum, 0, s.njets)
	for i, subset := range s.subsets {
		members = members[:0]
		for _, idx := range subset {
			members = append(members, slots[idx])
		}
		out[i] = CombinedMass(members)
	}
	return out, nil
}

// combinations calls visit with every size-k subset of {0, …, n−1} in
// lexicographic order. The visited slice is reused between calls.
func combinations(n, k int, visit func([]int)) {
	idx := make([]int, k)
	var rec func(start, depth int)
	rec = func(start, depth int) {
		if depth == k {
			visit(idx)
			return
		}
		for i := start; i <= n-(k-depth); i++ {
			idx[depth] = i
			rec(i+1, depth+1)
		}
	}
	rec(0, 0)
}
