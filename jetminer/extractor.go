// Package jetminer turns raw collision events into flat feature rows: it
// clusters each event into a fixed number of jet slots and derives per-jet
// kinematics, per-jet substructure and event-level combinatorial masses.
//
// The column catalogue is fixed at construction time. Per-jet features are
// suffixed with the 1-based slot index ("pt_1", "tau21_2", …); event-level
// features are unsuffixed ("nj", "mjj12", …). Absent slots contribute 0 to
// every per-jet column.
package jetminer

import (
	"fmt"

	"github.com/imdinu/clustering-lhco/eventlevel"
	"github.com/imdinu/clustering-lhco/pseudojet"
	"github.com/imdinu/clustering-lhco/substructure"
)

// An Extractor assembles the feature row of one event at a time. It is
// immutable after construction and safe for concurrent use.
type Extractor struct {
	opts    Options
	masses  *eventlevel.MassSet
	columns []string
}

// NewExtractor validates opts and derives the column catalogue, including
// the combinatorial mass set for opts.NJets.
func NewExtractor(opts Options) (*Extractor, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	masses, err := eventlevel.NewMassSet(opts.NJets)
	if err != nil {
		return nil, err
	}

	e := &Extractor{opts: opts, masses: masses}
	for slot := 1; slot <= opts.NJets; slot++ {
		for _, name := range kinematicNames {
			e.columns = append(e.columns, fmt.Sprintf("%s_%d", name, slot))
		}
	}
	for slot := 1; slot <= opts.NJets; slot++ {
		for _, name := range substructure.Names() {
			e.columns = append(e.columns, fmt.Sprintf("%s_%d", name, slot))
		}
	}
	e.columns = append(e.columns, "nj")
	e.columns = append(e.columns, masses.Names()...)
	return e, nil
}

// Columns returns the full column catalogue in row order. The slice is a
// copy.
func (e *Extractor) Columns() []string {
	return append([]string(nil), e.columns...)
}

// NumColumns reports the row width.
func (e *Extractor) NumColumns() int { return len(e.columns) }

// Particles converts one flat event row of (pT, η, φ) triples into the
// particle list, dropping all-zero padding triples. A triple with any
// non-zero coordinate is a real particle even if its pT is 0.
func Particles(row []float64) ([]pseudojet.Particle, error) {
	if len(row)%3 != 0 {
		return nil, ErrRaggedRow
	}
	particles := make([]pseudojet.Particle, 0, len(row)/3)
	for i := 0; i+2 < len(row); i += 3 {
		pt, eta, phi := row[i], row[i+1], row[i+2]
		if pt == 0 && eta == 0 && phi == 0 {
			continue
		}
		particles = append(particles, pseudojet.Particle{Pt: pt, Eta: eta, Phi: phi})
	}
	return particles, nil
}

// ClusterSlots clusters the particles of one event and pads the leading
// jets into the extractor's slots. An event with no particles yields all
// absent slots.
func (e *Extractor) ClusterSlots(particles []pseudojet.Particle) ([]Slot, error) {
	if len(particles) == 0 {
		return PadJets(nil, e.opts.NJets), nil
	}
	seq, err := pseudojet.Cluster(particles, e.opts.Clustering)
	if err != nil {
		return nil, err
	}
	return PadJets(seq.Leading(e.opts.NJets, e.opts.PtMin), e.opts.NJets), nil
}

// EventRow runs the full extraction for one raw event row: parse, cluster,
// pad, and featurise. The result is aligned with Columns.
func (e *Extractor) EventRow(raw []float64) ([]float64, error) {
	particles, err := Particles(raw)
	if err != nil {
		return nil, err
	}
	slots, err := e.ClusterSlots(particles)
	if err != nil {
		return nil, err
	}
	return e.Row(slots)
}

// Row featurises already-clustered slots. len(slots) must equal the
// configured jet count.
func (e *Extractor) Row(slots []Slot) ([]float64, error) {
	if len(slots) != e.opts.NJets {
		return nil, ErrSlotCount
	}
	out := make([]float64, 0, len(e.columns))

	for _, s := range slots {
		if s.Present {
			out = append(out, s.Jet.Pt(), s.Jet.Eta(), s.Jet.Phi(), s.Jet.Mass(), s.Jet.E())
		} else {
			out = append(out, 0, 0, 0, 0, 0)
		}
	}

	for _, s := range slots {
		if !s.Present {
			for i := 0; i < subWidth; i++ {
				out = append(out, 0)
			}
			continue
		}
		f, err := substructure.Compute(s.Jet, e.opts.Substructure)
		if err != nil {
			return nil, err
		}
		out = append(out, f.Values()...)
	}

	moms := make([]eventlevel.FourMomentum, len(slots))
	for i, s := range slots {
		if s.Present {
			moms[i] = s.Jet
		}
	}
	out = append(out, eventlevel.JetCount(moms))
	masses, err := e.masses.Values(moms)
	if err != nil {
		return nil, err
	}
	out = append(out, masses...)
	return out, nil
}
