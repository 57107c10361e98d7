package pseudojet

import "math"

// maxRap stands in for an infinite rapidity when a momentum points exactly
// along the beam axis.
const maxRap = 1e5

// Algorithm selects the recombination measure of the kt family.
//
//   - AntiKt    — p = −1; hard jets absorb soft radiation first (cone-like jets).
//   - Kt        — p = +1; soft pairs recombine first (substructure-friendly).
//   - Cambridge — p = 0; purely geometric ordering (Cambridge/Aachen).
//   - GenKt     — user-chosen exponent; set Options.P.
type Algorithm int

const (
	// AntiKt clusters with p = −1, the usual hadron-collider jet finder.
	AntiKt Algorithm = iota
	// Kt clusters with p = +1.
	Kt
	// Cambridge clusters with p = 0 (Cambridge/Aachen).
	Cambridge
	// GenKt clusters with the exponent given in Options.P.
	GenKt
)

// exponent maps a onto the kt-family exponent p, consulting userP only for
// GenKt. ok is false for values outside the declared constants.
func (a Algorithm) exponent(userP float64) (p float64, ok bool) {
	switch a {
	case AntiKt:
		return -1, true
	case Kt:
		return 1, true
	case Cambridge:
		return 0, true
	case GenKt:
		return userP, true
	default:
		return 0, false
	}
}

// String returns the lower-case conventional name of the algorithm.
func (a Algorithm) String() string {
	switch a {
	case AntiKt:
		return "antikt"
	case Kt:
		return "kt"
	case Cambridge:
		return "cambridge"
	case GenKt:
		return "genkt"
	default:
		return "unknown"
	}
}

// ParseAlgorithm resolves the conventional names accepted by String back to
// an Algorithm. It returns ErrUnknownAlgorithm for anything else.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch name {
	case "antikt", "anti-kt":
		return AntiKt, nil
	case "kt":
		return Kt, nil
	case "cambridge", "cambridge-aachen", "ca":
		return Cambridge, nil
	case "genkt":
		return GenKt, nil
	default:
		return 0, ErrUnknownAlgorithm
	}
}

// Options configure a clustering run.
//
// Fields:
//   - Algorithm — recombination measure (AntiKt, Kt, Cambridge, GenKt).
//   - R         — cone radius in the rapidity–azimuth plane; must be > 0.
//   - P         — kt exponent, consulted only when Algorithm == GenKt.
type Options struct {
	Algorithm Algorithm
	R         float64
	P         float64
}

// DefaultOptions returns the conventional setup: anti-kt at R = 1.0.
func DefaultOptions() Options {
	return Options{Algorithm: AntiKt, R: 1.0}
}

// Validate reports the first configuration problem: an undeclared algorithm
// or a non-positive radius.
func (o Options) Validate() error {
	if _, ok := o.Algorithm.exponent(o.P); !ok {
		return ErrUnknownAlgorithm
	}
	if o.R <= 0 {
		return ErrBadRadius
	}
	return nil
}

// Particle is one detector-level input to clustering, given as transverse
// momentum, pseudorapidity and azimuth. Particles are treated as massless,
// so E = pT·cosh η and pz = pT·sinh η.
type Particle struct {
	Pt  float64
	Eta float64
	Phi float64
}

// fourVec returns the massless four-momentum of p.
func fourVec(p Particle) (px, py, pz, e float64) {
	sin, cos := math.Sincos(p.Phi)
	px = p.Pt * cos
	py = p.Pt * sin
	pz = p.Pt * math.Sinh(p.Eta)
	e = p.Pt * math.Cosh(p.Eta)
	return px, py, pz, e
}

// A Jet is one cluster produced by a Sequence, carrying the four-momentum
// accumulated under E-scheme recombination. Jets remember the Sequence that
// made them, so constituents are recovered from the history rather than by
// reclustering. The zero Jet is not valid.
type Jet struct {
	px, py, pz, e float64

	seq  *Sequence
	hist int
}

// Px returns the x momentum component.
func (j Jet) Px() float64 { return j.px }

// Py returns the y momentum component.
func (j Jet) Py() float64 { return j.py }

// Pz returns the longitudinal momentum component.
func (j Jet) Pz() float64 { return j.pz }

// E returns the energy.
func (j Jet) E() float64 { return j.e }

// Pt returns the transverse momentum.
func (j Jet) Pt() float64 { return math.Hypot(j.px, j.py) }

// Phi returns the azimuth in (−π, π], or 0 when the transverse momentum
// vanishes.
func (j Jet) Phi() float64 {
	if j.px == 0 && j.py == 0 {
		return 0
	}
	return math.Atan2(j.py, j.px)
}

// Eta returns the pseudorapidity, saturating at ±maxRap for momenta along
// the beam axis.
func (j Jet) Eta() float64 {
	pt := math.Hypot(j.px, j.py)
	if pt == 0 {
		if j.pz == 0 {
			return 0
		}
		return math.Copysign(maxRap, j.pz)
	}
	return math.Asinh(j.pz / pt)
}

// Rapidity returns the true rapidity y. The computation uses the
// numerically stable form y = −½·ln((pT² + m²)/(E + |pz|)²) with the sign
// restored from pz, which survives E ≈ |pz| where the naive ratio does not.
func (j Jet) Rapidity() float64 {
	pt2 := j.px*j.px + j.py*j.py
	apz := math.Abs(j.pz)
	if pt2 == 0 && j.e == apz {
		return math.Copysign(maxRap+apz, j.pz)
	}
	m2 := j.e*j.e - pt2 - j.pz*j.pz
	if m2 < 0 {
		m2 = 0
	}
	ePlus := j.e + apz
	rap := 0.5 * math.Log((pt2+m2)/(ePlus*ePlus)) // −|y|
	if j.pz > 0 {
		rap = -rap
	}
	return rap
}

// Mass returns the invariant mass √max(0, E² − |p|²). Round-off below zero
// clamps to 0.
func (j Jet) Mass() float64 {
	m2 := j.e*j.e - j.px*j.px - j.py*j.py - j.pz*j.pz
	if m2 <= 0 {
		return 0
	}
	return math.Sqrt(m2)
}
