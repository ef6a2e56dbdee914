package tonemap

import "errors"

// Error kinds returned by the tone and frame operations. Returned errors wrap
// one of these with the violated precondition, so callers should compare with
// errors.Is rather than ==.
var (
	// ErrInvalidInput reports a nil or zero-sized image, a malformed pixel
	// buffer, a non-positive sample count or a non-positive window size.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidRange reports malformed source/target ranges for a stretch.
	ErrInvalidRange = errors.New("invalid range")

	// ErrDimensionMismatch reports frames that do not share width, height
	// and channel count.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrEmptyInput reports an empty frame sequence where at least one
	// frame is required.
	ErrEmptyInput = errors.New("empty input")
)
