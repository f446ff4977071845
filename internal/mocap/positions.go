package mocap

import (
	"fmt"
	"math"
)

// Positions is a marker-major position tensor indexed [marker][frame][dim].
// A NaN coordinate marks a missing observation.
type Positions [][][]float64

// NewPositions allocates a zero-filled tensor of the given shape.
func NewPositions(markers, frames, dims int) Positions {
	p := make(Positions, markers)
	for m := range p {
		p[m] = make([][]float64, frames)
		for f := range p[m] {
			p[m][f] = make([]float64, dims)
		}
	}
	return p
}

// Shape returns (markers, frames, dims). Dims is taken from the first frame
// of the first marker; use validate to check the tensor is rectangular.
func (p Positions) Shape() (markers, frames, dims int) {
	markers = len(p)
	if markers == 0 {
		return 0, 0, 0
	}
	frames = len(p[0])
	if frames > 0 {
		dims = len(p[0][0])
	}
	return markers, frames, dims
}

// Clone returns a deep copy.
func (p Positions) Clone() Positions {
	if p == nil {
		return nil
	}
	out := make(Positions, len(p))
	for m := range p {
		out[m] = make([][]float64, len(p[m]))
		for f := range p[m] {
			out[m][f] = append([]float64(nil), p[m][f]...)
		}
	}
	return out
}

// selectFrames returns a copy holding only the listed frame indices, in order.
func (p Positions) selectFrames(keep []int) Positions {
	out := make(Positions, len(p))
	for m := range p {
		out[m] = make([][]float64, len(keep))
		for i, f := range keep {
			out[m][i] = append([]float64(nil), p[m][f]...)
		}
	}
	return out
}

// validate checks the tensor is rectangular with the expected marker and
// frame counts. It returns the spatial dimension.
func (p Positions) validate(markers, frames int) (int, error) {
	if len(p) != markers {
		return 0, fmt.Errorf("%w: tensor has %d markers, want %d", ErrShapeMismatch, len(p), markers)
	}
	dims := -1
	for m := range p {
		if len(p[m]) != frames {
			return 0, fmt.Errorf("%w: marker %d has %d frames, want %d", ErrShapeMismatch, m, len(p[m]), frames)
		}
		for f := range p[m] {
			if dims < 0 {
				dims = len(p[m][f])
			}
			if len(p[m][f]) != dims {
				return 0, fmt.Errorf("%w: marker %d frame %d has %d dims, want %d", ErrShapeMismatch, m, f, len(p[m][f]), dims)
			}
		}
	}
	if dims < 0 {
		return 0, nil
	}
	if dims != 2 && dims != 3 {
		return 0, fmt.Errorf("%w: spatial dimension must be 2 or 3, got %d", ErrShapeMismatch, dims)
	}
	return dims, nil
}

// missing reports whether a coordinate vector holds a non-finite value.
func missing(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return true
		}
	}
	return false
}
