package jetimage

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/imdinu/clustering-lhco/pseudojet"
)

// Options configure jet image generation. The JSON tags give the key names
// accepted by LoadOptions.
//
// Fields:
//   - NPix        — pixels per image edge; images are square.
//   - ImgWidth    — image edge length in rapidity–azimuth units.
//   - Trim        — drop subjets below Fcut times the leading cluster pT.
//   - Norm        — L1-normalise the pixel grid to unit total pT.
//   - AvgCentroid — center on the pT-weighted centroid instead of the
//     leading subjet; incompatible with Rotate.
//   - Rotate      — align the two leading subjets on the vertical axis.
//   - StitchJets  — paint all jets of an event into one image instead of
//     one channel per jet.
//   - Fcut        — trimming threshold as a fraction of the leading pT.
//   - R1          — radius of the subjet clustering used for the pivot,
//     rotation and trimming.
//   - Offset      — relative azimuth position of the pivot; 0.5 centers it.
type Options struct {
	NPix        int     `json:"npix"`
	ImgWidth    float64 `json:"img_width"`
	Trim        bool    `json:"trim"`
	Norm        bool    `json:"norm"`
	AvgCentroid bool    `json:"avg_centroid"`
	Rotate      bool    `json:"rotate"`
	StitchJets  bool    `json:"stitch_jets"`
	Fcut        float64 `json:"fcut"`
	R1          float64 `json:"R1"`
	Offset      float64 `json:"offset"`
}

// DefaultOptions returns the conventional setup: rotated 32×32 images of
// width 0.8 with the pivot centered, trimming threshold at 5% of the
// leading pT.
func DefaultOptions() Options {
	return Options{
		NPix:     32,
		ImgWidth: 0.8,
		Rotate:   true,
		Fcut:     0.05,
		R1:       1.0,
		Offset:   0.5,
	}
}

// Validate reports the first configuration problem.
func (o Options) Validate() error {
	if o.NPix < 1 {
		return ErrBadPixelCount
	}
	if o.ImgWidth <= 0 {
		return ErrBadImageWidth
	}
	if o.R1 <= 0 {
		return pseudojet.ErrBadRadius
	}
	if o.Fcut < 0 {
		return ErrBadTrimFraction
	}
	if o.Offset < 0 || o.Offset > 1 {
		return ErrBadOffset
	}
	if o.Rotate && o.AvgCentroid {
		return ErrRotateWithCentroid
	}
	return nil
}

// LoadOptions reads a JSON options file and merges it over DefaultOptions,
// so a file only needs the keys it wants to change. The result is
// validated before being returned.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	raw, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("jetimage: read options: %w", err)
	}
	if err := json.Unmarshal(raw, &opts); err != nil {
		return opts, fmt.Errorf("jetimage: parse options: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}
