package sweep

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Concentration summarises how a weight vector is spread over markers.
type Concentration struct {
	// Entropy is the Shannon entropy in nats; zero weights contribute nothing.
	Entropy float64
	// EffectiveMarkers is 1/Σw², the inverse Simpson index.
	EffectiveMarkers float64
	MaxWeight        float64
	// TopIndex is the index of the heaviest marker, -1 for an empty vector.
	TopIndex int
}

// Concentrate computes concentration metrics for a normalised weight vector.
// An all-zero vector has zero entropy and zero effective markers.
func Concentrate(w []float64) Concentration {
	if len(w) == 0 {
		return Concentration{TopIndex: -1}
	}
	c := Concentration{
		Entropy:  stat.Entropy(w),
		TopIndex: floats.MaxIdx(w),
	}
	c.MaxWeight = w[c.TopIndex]
	if sq := floats.Dot(w, w); sq > 0 {
		c.EffectiveMarkers = 1 / sq
	}
	if c.Entropy == 0 {
		// Normalise -0 from a single full weight.
		c.Entropy = math.Abs(c.Entropy)
	}
	return c
}

// MeanStddev calculates the mean and sample standard deviation of a slice.
// Returns (0, 0) for empty slices and a zero stddev for a single value.
func MeanStddev(xs []float64) (mean float64, stddev float64) {
	switch len(xs) {
	case 0:
		return 0, 0
	case 1:
		return xs[0], 0
	}
	return stat.MeanStdDev(xs, nil)
}
