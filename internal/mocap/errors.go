package mocap

import "errors"

var (
	// ErrShapeMismatch reports tensors whose marker or frame axis disagrees
	// with the recording's marker list or frame count.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrInvalidLength reports an out-of-range resampling target.
	ErrInvalidLength = errors.New("invalid length")

	// ErrUndefinedMode reports a marker selector that names unknown markers.
	ErrUndefinedMode = errors.New("undefined marker mode")

	// ErrWeightTableCorrupt reports a stored weight vector that cannot be
	// reconciled with the recording's markers.
	ErrWeightTableCorrupt = errors.New("weight table entry corrupt")

	// ErrInvalidFrameRate reports a non-positive frame rate.
	ErrInvalidFrameRate = errors.New("invalid frame rate")

	// ErrInvalidBeta reports a negative or non-finite saturation parameter.
	ErrInvalidBeta = errors.New("invalid beta")
)
