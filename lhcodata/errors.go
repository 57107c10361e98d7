package lhcodata

import "errors"

var (
	// ErrBadMagic indicates a file that does not start with the expected
	// format tag.
	ErrBadMagic = errors.New("lhcodata: unrecognised file magic")
	// ErrBadVersion indicates a format version this build cannot read.
	ErrBadVersion = errors.New("lhcodata: unsupported format version")
	// ErrBadHeader indicates header fields describing an impossible table.
	ErrBadHeader = errors.New("lhcodata: malformed file header")
	// ErrRowRange indicates a requested row range outside the stored rows.
	ErrRowRange = errors.New("lhcodata: row range out of bounds")
	// ErrColumnMismatch indicates a row whose width differs from the
	// table's column count.
	ErrColumnMismatch = errors.New("lhcodata: row width does not match column count")
	// ErrMasterkeyDigit indicates a masterkey entry other than 0 or 1.
	ErrMasterkeyDigit = errors.New("lhcodata: masterkey entries must be 0 or 1")
	// ErrBadEncoding indicates an unknown image payload encoding.
	ErrBadEncoding = errors.New("lhcodata: unknown image encoding")
	// ErrImageShape indicates image data that does not match the set's
	// declared pixel and channel counts.
	ErrImageShape = errors.New("lhcodata: image does not match the declared shape")
)
