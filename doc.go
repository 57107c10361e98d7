// Package lhco is a feature-extraction toolkit for LHC Olympics event
// samples: it clusters raw particle events into jets and turns them into
// flat feature tables and calorimeter-style jet images, at scale.
//
// What is clustering-lhco?
//
//	A self-contained pipeline that brings together:
//		• Sequential recombination clustering: anti-kt, kt, Cambridge/Aachen, gen-kt
//		• Jet substructure: subjet counts, n-subjettiness ratios and energy rings
//		• Event-level observables: combinatorial invariant masses over jet slots
//		• Jet images: pivoted, rotated, trimmed and normalised pixel grids
//		• Compact binary event, feature and image formats with zstd framing
//		• A chunked, concurrent run scheduler with partial-file merging
//
// Under the hood, everything is organized under focused subpackages:
//
//	pseudojet/    — clustering sequences, jets and their constituents
//	substructure/ — per-jet secondary-clustering observables
//	eventlevel/   — combinatorial mass sets over padded jet slots
//	jetminer/     — the per-event feature row: parse, cluster, featurise
//	jetimage/     — the jet-image rasterizer
//	lhcodata/     — event tables, masterkeys, feature tables, image sets
//	pipeline/     — chunk scheduling, workers, merging, reconciliation
//	cmd/lhco/     — the command-line front end
//
// Quick example:
//
//	p := pipeline.DefaultParams()
//	p.InputPath = "events.bin"
//	report, err := pipeline.Run(context.Background(), p)
//
// processes every event of events.bin into results_scalars_bkg.zst and
// results_scalars_sig.zst, background and signal split by the event truth
// labels.
package lhco
