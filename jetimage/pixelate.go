// Package jetimage rasterises jet constituents into square pT-weighted
// images of the rapidity–azimuth plane.
//
// Pixelate frames one jet: constituents are translated so that the leading
// subjet of a kt reclustering at R1 sits at a fixed pivot pixel, optionally
// rotated so the two leading subjets align on the vertical axis, optionally
// trimmed against the leading cluster pT, and deposited additively into an
// NPix×NPix grid whose rows scan azimuth and whose columns scan
// pseudorapidity. The alternative average-centroid mode recenters on the
// pT-weighted centroid pixel instead of translating coordinates.
// EventImages assembles the per-event view: one channel per jet slot, or a
// single stitched frame of every jet together.
package jetimage

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/imdinu/clustering-lhco/jetminer"
	"github.com/imdinu/clustering-lhco/pseudojet"
)

// Rasterizer turns jet constituents into pixel images under a fixed
// configuration. It is immutable after construction and safe for
// concurrent use.
type Rasterizer struct {
	opts     Options
	pixWidth float64
}

// NewRasterizer validates opts and returns a ready Rasterizer.
func NewRasterizer(opts Options) (*Rasterizer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Rasterizer{
		opts:     opts,
		pixWidth: opts.ImgWidth / float64(opts.NPix),
	}, nil
}

// Options returns the configuration the Rasterizer was built with.
func (r *Rasterizer) Options() Options { return r.opts }

// Pixelate rasterises one jet's constituents into an NPix×NPix grid.
//
// Constituents with non-positive pT are dropped before any geometry is
// computed. The returned grid always has shape NPix×NPix; an input that
// leaves no particle inside the frame yields an all-zero grid, unless Norm
// is set, in which case normalising the empty grid fails with
// ErrEmptyImage.
func (r *Rasterizer) Pixelate(constituents []pseudojet.Particle) (*mat.Dense, error) {
	working := make([]pseudojet.Particle, 0, len(constituents))
	for _, c := range constituents {
		if c.Pt > 0 {
			working = append(working, c)
		}
	}

	// The centroid mode needs subjets only when trimming; the pivot mode
	// always does.
	var subjets []pseudojet.Jet
	if len(working) > 0 && (!r.opts.AvgCentroid || r.opts.Trim) {
		seq, err := pseudojet.Cluster(working, pseudojet.Options{Algorithm: pseudojet.Kt, R: r.opts.R1})
		if err != nil {
			return nil, err
		}
		subjets = seq.InclusiveJets(0)
	}
	if r.opts.Trim && len(working) > 0 {
		trimmed, err := r.trim(working, subjets)
		if err != nil {
			return nil, err
		}
		working = trimmed
	}

	grid := mat.NewDense(r.opts.NPix, r.opts.NPix, nil)
	if r.opts.AvgCentroid {
		r.paintCentroid(grid, working)
	} else {
		r.paintPivot(grid, working, subjets)
	}

	if r.opts.Norm {
		total := mat.Sum(grid)
		if total == 0 {
			return nil, ErrEmptyImage
		}
		grid.Scale(1/total, grid)
	}
	return grid, nil
}

// trim keeps the subjets carrying more than Fcut of the pT of the leading
// anti-kt cluster at the same radius and returns their merged
// constituents. Subjets at or below the threshold are discarded whole.
func (r *Rasterizer) trim(working []pseudojet.Particle, subjets []pseudojet.Jet) ([]pseudojet.Particle, error) {
	ref, err := pseudojet.Cluster(working, pseudojet.Options{Algorithm: pseudojet.AntiKt, R: r.opts.R1})
	if err != nil {
		return nil, err
	}
	cut := r.opts.Fcut * ref.Leading(1, 0)[0].Pt()

	var kept []pseudojet.Particle
	for _, sj := range subjets {
		if sj.Pt() > cut {
			kept = append(kept, sj.Constituents()...)
		}
	}
	return kept, nil
}

// paintPivot deposits working constituents relative to the leading-subjet
// pivot, optionally rotating the second subjet onto the vertical axis
// first. Rotation needs two subjets and is skipped otherwise.
func (r *Rasterizer) paintPivot(grid *mat.Dense, working []pseudojet.Particle, subjets []pseudojet.Jet) {
	if len(working) == 0 || len(subjets) == 0 {
		return
	}
	pivotEta := subjets[0].Eta()
	pivotPhi := subjets[0].Phi()

	sinT, cosT := 0.0, 1.0
	if r.opts.Rotate && len(subjets) >= 2 {
		dEta := pivotEta - subjets[1].Eta()
		dPhi := pivotPhi - subjets[1].Phi()
		if norm := math.Hypot(dEta, dPhi); norm > 0 {
			// Round-off can push the ratio a hair outside Acos's domain.
			dot := dPhi / norm
			if dot > 1 {
				dot = 1
			} else if dot < -1 {
				dot = -1
			}
			sinT, cosT = math.Sincos(math.Acos(dot) * sign(dEta))
		}
	}

	halfW := 0.5 * r.opts.ImgWidth
	offPhi := r.opts.ImgWidth * r.opts.Offset
	for _, c := range working {
		eta := c.Eta - pivotEta
		phi := c.Phi - pivotPhi
		eta, phi = eta*cosT-phi*sinT, eta*sinT+phi*cosT
		row := r.pixelIndex(phi + offPhi)
		col := r.pixelIndex(eta + halfW)
		r.deposit(grid, row, col, c.Pt)
	}
}

// paintCentroid deposits working constituents with the pixel holding the
// pT-weighted centroid moved to the central index. Coordinates are
// quantised first and recentred as indices, so this mode is not a pure
// translation of paintPivot.
func (r *Rasterizer) paintCentroid(grid *mat.Dense, working []pseudojet.Particle) {
	if len(working) == 0 {
		return
	}
	pts := make([]float64, len(working))
	etas := make([]float64, len(working))
	phis := make([]float64, len(working))
	for i, c := range working {
		pts[i], etas[i], phis[i] = c.Pt, c.Eta, c.Phi
	}

	centerEta := r.pixelIndex(stat.Mean(etas, pts)) - r.opts.NPix/2
	centerPhi := r.pixelIndex(stat.Mean(phis, pts)) - r.opts.NPix/2
	for i := range working {
		row := r.pixelIndex(phis[i]) - centerPhi
		col := r.pixelIndex(etas[i]) - centerEta
		r.deposit(grid, row, col, pts[i])
	}
}

// EventImages rasterises the jets of one event. In the default mode each
// present slot contributes one channel and absent slots are compensated
// with all-zero grids at the end, so the result always holds exactly
// len(slots) images. With StitchJets every present jet's constituents are
// merged into one combined frame and the result is a single image.
func (r *Rasterizer) EventImages(slots []jetminer.Slot) ([]*mat.Dense, error) {
	if r.opts.StitchJets {
		var all []pseudojet.Particle
		for _, s := range slots {
			if s.Present {
				all = append(all, s.Jet.Constituents()...)
			}
		}
		img, err := r.Pixelate(all)
		if err != nil {
			return nil, err
		}
		return []*mat.Dense{img}, nil
	}

	imgs := make([]*mat.Dense, 0, len(slots))
	for _, s := range slots {
		if !s.Present {
			continue
		}
		img, err := r.Pixelate(s.Jet.Constituents())
		if err != nil {
			return nil, err
		}
		imgs = append(imgs, img)
	}
	for len(imgs) < len(slots) {
		imgs = append(imgs, mat.NewDense(r.opts.NPix, r.opts.NPix, nil))
	}
	return imgs, nil
}

// pixelIndex maps a frame coordinate to its pixel index; the cell around
// k spans (k−0.5, k+0.5] pixel widths.
func (r *Rasterizer) pixelIndex(x float64) int {
	return int(math.Ceil(x/r.pixWidth - 0.5))
}

// deposit adds pt at (row, col), dropping positions outside the grid.
func (r *Rasterizer) deposit(grid *mat.Dense, row, col int, pt float64) {
	if row < 0 || row >= r.opts.NPix || col < 0 || col >= r.opts.NPix {
		return
	}
	grid.Set(row, col, grid.At(row, col)+pt)
}

// sign is the three-valued sign: −1, 0 or +1. A zero horizontal component
// zeroes the rotation angle rather than picking a direction.
func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
