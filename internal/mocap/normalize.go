package mocap

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Normalizer maps a raw tensor onto the normalized tensor used for
// displacement analysis. It returns the tensor and the scale it divided by.
type Normalizer interface {
	Normalize(raw Positions) (Positions, float64, error)
}

// StdNormalizer centres every spatial axis on its mean over all finite
// samples and divides by the population std of the centred coordinates.
// Missing samples stay NaN.
type StdNormalizer struct{}

// Normalize implements Normalizer. Returned tensor aliases nothing in raw.
func (StdNormalizer) Normalize(raw Positions) (Positions, float64, error) {
	_, _, dims := raw.Shape()
	out := raw.Clone()
	if dims == 0 {
		return out, 0, nil
	}

	axes := make([][]float64, dims)
	for m := range raw {
		for f := range raw[m] {
			if missing(raw[m][f]) {
				continue
			}
			for d, v := range raw[m][f] {
				axes[d] = append(axes[d], v)
			}
		}
	}
	if len(axes[0]) == 0 {
		return out, 0, nil
	}

	means := make([]float64, dims)
	for d := range axes {
		means[d] = stat.Mean(axes[d], nil)
	}
	centred := make([]float64, 0, len(axes[0])*dims)
	for d := range axes {
		for _, v := range axes[d] {
			centred = append(centred, v-means[d])
		}
	}
	_, std := stat.PopMeanStdDev(centred, nil)

	scale := std
	if scale == 0 || math.IsNaN(scale) {
		scale = 1
	}
	for m := range out {
		for f := range out[m] {
			if missing(out[m][f]) {
				for d := range out[m][f] {
					out[m][f][d] = math.NaN()
				}
				continue
			}
			for d := range out[m][f] {
				out[m][f][d] = (out[m][f][d] - means[d]) / scale
			}
		}
	}
	return out, std, nil
}
