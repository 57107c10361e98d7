package eventlevel

import "errors"

var (
	// ErrBadSlotCount indicates a mass set over fewer than one jet slot.
	ErrBadSlotCount = errors.New("eventlevel: slot count must be at least 1")
	// ErrTooManySlots indicates a slot count whose subset names would no
	// longer be distinct single-digit concatenations.
	ErrTooManySlots = errors.New("eventlevel: slot count above 9 is not supported")
	// ErrSlotCountMismatch indicates Values was called with a slot slice of
	// the wrong length.
	ErrSlotCountMismatch = errors.New("eventlevel: slot slice does not match the mass set size")
)
