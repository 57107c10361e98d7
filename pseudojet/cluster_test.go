package pseudojet_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imdinu/clustering-lhco/pseudojet"
)

// TestCluster_InputValidation verifies the sentinel errors for an empty
// particle list, a non-positive radius and an undeclared algorithm.
func TestCluster_InputValidation(t *testing.T) {
	one := []pseudojet.Particle{{Pt: 10, Eta: 0, Phi: 0}}

	_, err := pseudojet.Cluster(nil, pseudojet.DefaultOptions())
	assert.ErrorIs(t, err, pseudojet.ErrNoParticles, "empty input must error")

	_, err = pseudojet.Cluster(one, pseudojet.Options{Algorithm: pseudojet.AntiKt, R: 0})
	assert.ErrorIs(t, err, pseudojet.ErrBadRadius, "R = 0 must error")

	_, err = pseudojet.Cluster(one, pseudojet.Options{Algorithm: pseudojet.Algorithm(99), R: 1})
	assert.ErrorIs(t, err, pseudojet.ErrUnknownAlgorithm, "undeclared algorithm must error")
}

// TestCluster_SingleParticle checks that a lone particle becomes a single
// massless inclusive jet carrying the input kinematics.
func TestCluster_SingleParticle(t *testing.T) {
	p := pseudojet.Particle{Pt: 42.5, Eta: 1.3, Phi: -0.7}
	seq, err := pseudojet.Cluster([]pseudojet.Particle{p}, pseudojet.DefaultOptions())
	require.NoError(t, err)

	jets := seq.InclusiveJets(0)
	require.Len(t, jets, 1, "one particle clusters into one jet")

	j := jets[0]
	assert.InDelta(t, p.Pt, j.Pt(), 1e-12, "pT preserved")
	assert.InDelta(t, p.Eta, j.Eta(), 1e-12, "η preserved")
	assert.InDelta(t, p.Phi, j.Phi(), 1e-12, "φ preserved")
	// Mass comes from √(E²−p²); the cancellation leaves ~1e-6 at this scale.
	assert.InDelta(t, 0, j.Mass(), 1e-5, "massless input stays massless")
	assert.Equal(t, 1, j.NumConstituents())
	assert.Equal(t, []pseudojet.Particle{p}, j.Constituents())
}

// TestCluster_MergesClosePair verifies that two particles within the cone
// radius recombine into one jet whose momentum is the E-scheme sum.
func TestCluster_MergesClosePair(t *testing.T) {
	a := pseudojet.Particle{Pt: 100, Eta: 0.2, Phi: 0.3}
	b := pseudojet.Particle{Pt: 30, Eta: 0.25, Phi: 0.35}
	seq, err := pseudojet.Cluster([]pseudojet.Particle{a, b}, pseudojet.DefaultOptions())
	require.NoError(t, err)

	jets := seq.InclusiveJets(0)
	require.Len(t, jets, 1, "ΔR ≈ 0.07 < R = 1 must merge")

	wantPx := a.Pt*math.Cos(a.Phi) + b.Pt*math.Cos(b.Phi)
	wantPy := a.Pt*math.Sin(a.Phi) + b.Pt*math.Sin(b.Phi)
	wantPz := a.Pt*math.Sinh(a.Eta) + b.Pt*math.Sinh(b.Eta)
	wantE := a.Pt*math.Cosh(a.Eta) + b.Pt*math.Cosh(b.Eta)
	assert.InDelta(t, wantPx, jets[0].Px(), 1e-9)
	assert.InDelta(t, wantPy, jets[0].Py(), 1e-9)
	assert.InDelta(t, wantPz, jets[0].Pz(), 1e-9)
	assert.InDelta(t, wantE, jets[0].E(), 1e-9)

	assert.Equal(t, []pseudojet.Particle{a, b}, jets[0].Constituents(), "constituents in input order")
}

// TestCluster_KeepsSeparatedPair verifies that two particles far apart in
// azimuth stay distinct and come back ordered by descending pT.
func TestCluster_KeepsSeparatedPair(t *testing.T) {
	soft := pseudojet.Particle{Pt: 25, Eta: 0, Phi: 0}
	hard := pseudojet.Particle{Pt: 75, Eta: 0, Phi: 3.0}
	seq, err := pseudojet.Cluster([]pseudojet.Particle{soft, hard}, pseudojet.DefaultOptions())
	require.NoError(t, err)

	jets := seq.InclusiveJets(0)
	require.Len(t, jets, 2, "Δφ = 3.0 > R = 1 must not merge")
	assert.InDelta(t, hard.Pt, jets[0].Pt(), 1e-12, "leading jet first")
	assert.InDelta(t, soft.Pt, jets[1].Pt(), 1e-12)
}

// TestInclusiveJets_PtMinFilter checks the pT threshold on inclusive jets.
func TestInclusiveJets_PtMinFilter(t *testing.T) {
	particles := []pseudojet.Particle{
		{Pt: 80, Eta: 0, Phi: 0},
		{Pt: 20, Eta: 0, Phi: 3.0},
		{Pt: 5, Eta: 2.5, Phi: -2.0},
	}
	seq, err := pseudojet.Cluster(particles, pseudojet.DefaultOptions())
	require.NoError(t, err)

	assert.Len(t, seq.InclusiveJets(0), 3)
	assert.Len(t, seq.InclusiveJets(10), 2, "ptMin = 10 drops the 5 GeV jet")
	assert.Len(t, seq.InclusiveJets(100), 0)
}

// TestLeading_Truncates verifies that Leading caps the jet list without
// erroring on short events.
func TestLeading_Truncates(t *testing.T) {
	particles := []pseudojet.Particle{
		{Pt: 80, Eta: 0, Phi: 0},
		{Pt: 20, Eta: 0, Phi: 3.0},
	}
	seq, err := pseudojet.Cluster(particles, pseudojet.DefaultOptions())
	require.NoError(t, err)

	assert.Len(t, seq.Leading(1, 0), 1)
	assert.Len(t, seq.Leading(2, 0), 2)
	assert.Len(t, seq.Leading(5, 0), 2, "asking for more jets than exist returns what exists")
	assert.Nil(t, seq.Leading(0, 0))
}

// TestExclusiveJets_CountAndOrder walks a three-particle kt sequence whose
// merge order is known: the soft close pair recombines first, so stopping
// at two clusters yields the merged pair plus the far particle.
func TestExclusiveJets_CountAndOrder(t *testing.T) {
	a := pseudojet.Particle{Pt: 100, Eta: 0, Phi: 0}
	b := pseudojet.Particle{Pt: 10, Eta: 0, Phi: 0.1}
	c := pseudojet.Particle{Pt: 50, Eta: 0, Phi: 2.0}
	seq, err := pseudojet.Cluster([]pseudojet.Particle{a, b, c}, pseudojet.Options{Algorithm: pseudojet.Kt, R: 1})
	require.NoError(t, err)

	two, err := seq.ExclusiveJets(2)
	require.NoError(t, err)
	require.Len(t, two, 2)
	mergedPt := math.Hypot(a.Pt*math.Cos(a.Phi)+b.Pt*math.Cos(b.Phi), a.Pt*math.Sin(a.Phi)+b.Pt*math.Sin(b.Phi))
	assert.InDelta(t, mergedPt, two[0].Pt(), 1e-9, "merged a+b leads")
	assert.InDelta(t, c.Pt, two[1].Pt(), 1e-12)
	assert.Equal(t, 2, two[0].NumConstituents())

	three, err := seq.ExclusiveJets(3)
	require.NoError(t, err)
	require.Len(t, three, 3, "stopping before any merge returns the inputs")
	assert.InDelta(t, a.Pt, three[0].Pt(), 1e-12)
	assert.InDelta(t, c.Pt, three[1].Pt(), 1e-12)
	assert.InDelta(t, b.Pt, three[2].Pt(), 1e-12)

	_, err = seq.ExclusiveJets(4)
	assert.ErrorIs(t, err, pseudojet.ErrBadJetCount, "more jets than particles")
	_, err = seq.ExclusiveJets(-1)
	assert.ErrorIs(t, err, pseudojet.ErrBadJetCount)

	zero, err := seq.ExclusiveJets(0)
	require.NoError(t, err)
	assert.Empty(t, zero)
}

// TestExclusiveCount_MatchesKnownSequence pins the dcut thresholds of the
// same three-particle kt sequence: d(a,b) = 100·0.01 = 1, then beam
// distances 2500 and ≈12090.
func TestExclusiveCount_MatchesKnownSequence(t *testing.T) {
	particles := []pseudojet.Particle{
		{Pt: 100, Eta: 0, Phi: 0},
		{Pt: 10, Eta: 0, Phi: 0.1},
		{Pt: 50, Eta: 0, Phi: 2.0},
	}
	seq, err := pseudojet.Cluster(particles, pseudojet.Options{Algorithm: pseudojet.Kt, R: 1})
	require.NoError(t, err)

	assert.Equal(t, 3, seq.ExclusiveCount(0.5), "below the first merge distance nothing recombines")
	assert.Equal(t, 2, seq.ExclusiveCount(2), "above d(a,b) the pair merges")
	assert.Equal(t, 1, seq.ExclusiveCount(3000), "the 50 GeV cluster joins the beam")
	assert.Equal(t, 0, seq.ExclusiveCount(20000), "everything below dcut")
}

// TestExclusiveCount_MonotoneInDcut checks that growing dcut never
// increases the exclusive jet count.
func TestExclusiveCount_MonotoneInDcut(t *testing.T) {
	particles := []pseudojet.Particle{
		{Pt: 90, Eta: -0.4, Phi: 0.2},
		{Pt: 35, Eta: -0.3, Phi: 0.4},
		{Pt: 60, Eta: 1.1, Phi: -2.4},
		{Pt: 12, Eta: 1.0, Phi: -2.2},
		{Pt: 4, Eta: 2.2, Phi: 1.5},
	}
	seq, err := pseudojet.Cluster(particles, pseudojet.Options{Algorithm: pseudojet.Kt, R: 0.8})
	require.NoError(t, err)

	prev := seq.ExclusiveCount(0)
	for _, dcut := range []float64{0.1, 1, 10, 100, 1e4, 1e6} {
		n := seq.ExclusiveCount(dcut)
		assert.LessOrEqual(t, n, prev, "count must not grow with dcut")
		prev = n
	}
}

// TestJet_BackToBackPairMass verifies the textbook invariant mass of two
// back-to-back massless particles, m = 2·pT at η = 0.
func TestJet_BackToBackPairMass(t *testing.T) {
	pt := 123.4
	particles := []pseudojet.Particle{
		{Pt: pt, Eta: 0, Phi: 0},
		{Pt: pt, Eta: 0, Phi: math.Pi},
	}
	// R = 4 exceeds Δφ = π, so anti-kt recombines the pair.
	seq, err := pseudojet.Cluster(particles, pseudojet.Options{Algorithm: pseudojet.AntiKt, R: 4})
	require.NoError(t, err)

	jets := seq.InclusiveJets(0)
	require.Len(t, jets, 1)
	assert.InDelta(t, 2*pt, jets[0].Mass(), 1e-9)
	assert.InDelta(t, 2*pt, jets[0].E(), 1e-9)
}

// TestJet_RapidityMatchesEtaForMassless confirms y = η on massless jets.
func TestJet_RapidityMatchesEtaForMassless(t *testing.T) {
	p := pseudojet.Particle{Pt: 17, Eta: -2.1, Phi: 1.2}
	seq, err := pseudojet.Cluster([]pseudojet.Particle{p}, pseudojet.DefaultOptions())
	require.NoError(t, err)

	j := seq.InclusiveJets(0)[0]
	assert.InDelta(t, j.Eta(), j.Rapidity(), 1e-9)
}

// TestCluster_CopiesInput ensures later mutation of the caller's slice does
// not leak into recorded constituents.
func TestCluster_CopiesInput(t *testing.T) {
	particles := []pseudojet.Particle{{Pt: 10, Eta: 0.5, Phi: 0.5}}
	seq, err := pseudojet.Cluster(particles, pseudojet.DefaultOptions())
	require.NoError(t, err)

	particles[0].Pt = -1
	got := seq.InclusiveJets(0)[0].Constituents()
	assert.Equal(t, 10.0, got[0].Pt, "sequence must hold its own copy")
}

// TestParseAlgorithm_RoundTrip checks name parsing against String.
func TestParseAlgorithm_RoundTrip(t *testing.T) {
	for _, algo := range []pseudojet.Algorithm{
		pseudojet.AntiKt, pseudojet.Kt, pseudojet.Cambridge, pseudojet.GenKt,
	} {
		parsed, err := pseudojet.ParseAlgorithm(algo.String())
		require.NoError(t, err, algo.String())
		assert.Equal(t, algo, parsed)
	}

	_, err := pseudojet.ParseAlgorithm("cone")
	assert.ErrorIs(t, err, pseudojet.ErrUnknownAlgorithm)
}

// TestCluster_GenKtExponent smoke-tests a fractional exponent run.
func TestCluster_GenKtExponent(t *testing.T) {
	particles := []pseudojet.Particle{
		{Pt: 40, Eta: 0, Phi: 0},
		{Pt: 35, Eta: 0.05, Phi: 0.02},
		{Pt: 22, Eta: -1.4, Phi: 2.8},
	}
	seq, err := pseudojet.Cluster(particles, pseudojet.Options{Algorithm: pseudojet.GenKt, R: 0.9, P: 0.5})
	require.NoError(t, err)
	assert.Len(t, seq.InclusiveJets(0), 2, "the close pair merges regardless of exponent sign")
}
