package jetimage

import "errors"

var (
	// ErrBadPixelCount indicates a non-positive pixel count.
	ErrBadPixelCount = errors.New("jetimage: pixel count must be at least 1")
	// ErrBadImageWidth indicates a non-positive image width.
	ErrBadImageWidth = errors.New("jetimage: image width must be positive")
	// ErrBadTrimFraction indicates a negative trimming fraction.
	ErrBadTrimFraction = errors.New("jetimage: trim fraction must not be negative")
	// ErrBadOffset indicates a pivot offset outside [0, 1].
	ErrBadOffset = errors.New("jetimage: pivot offset must lie in [0, 1]")
	// ErrRotateWithCentroid indicates rotation requested together with
	// average-centroid centering, which have no common axis to align.
	ErrRotateWithCentroid = errors.New("jetimage: rotation is not available with average-centroid centering")
	// ErrEmptyImage indicates a normalisation request on an image with no
	// particles inside the pixel grid.
	ErrEmptyImage = errors.New("jetimage: image has no particles")
)
