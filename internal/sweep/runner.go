package sweep

import (
	"fmt"

	"github.com/banshee-data/gesture.report/internal/mocap"
	"github.com/banshee-data/gesture.report/internal/monitoring"
)

// Result is the outcome of deriving weights for one recording at one beta.
type Result struct {
	Recording string
	Beta      float64
	// Mode is the variant that actually produced the weights, which differs
	// from the requested one after a uniform fallback.
	Mode      mocap.WeightMode
	Markers   []string
	Weights   []float64
	TopMarker string
	Concentration
}

// Run derives weights for every recording at every beta over the selected
// markers. A beta of zero selects proportional weighting. Each recording is
// left holding the weights of the last beta.
func Run(recs []*mocap.Recording, sel mocap.MarkerSelector, betas []float64) ([]Result, error) {
	results := make([]Result, 0, len(recs)*len(betas))
	for _, rec := range recs {
		for _, beta := range betas {
			mode, err := mocap.ModeForBeta(&beta)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", rec.Name(), err)
			}
			w, err := rec.DeriveWeights(sel, mode)
			if err != nil {
				return nil, fmt.Errorf("%s at beta=%g: %w", rec.Name(), beta, err)
			}
			results = append(results, newResult(rec.Name(), beta, w))
		}
		monitoring.Debugf("[sweep] %s: %d betas", rec.Name(), len(betas))
	}
	return results, nil
}

func newResult(name string, beta float64, w mocap.Weights) Result {
	markers := w.Markers()
	vector := w.Vector()
	c := Concentrate(vector)
	r := Result{
		Recording:     name,
		Beta:          beta,
		Mode:          w.Mode,
		Markers:       markers,
		Weights:       vector,
		Concentration: c,
	}
	if c.TopIndex >= 0 && c.MaxWeight > 0 {
		r.TopMarker = markers[c.TopIndex]
	}
	return r
}

// Summary aggregates one beta across recordings.
type Summary struct {
	Beta                   float64
	Recordings             int
	EntropyMean            float64
	EntropyStddev          float64
	EffectiveMarkersMean   float64
	EffectiveMarkersStddev float64
}

// Summarise groups results by beta, preserving first-seen beta order.
func Summarise(results []Result) []Summary {
	var order []float64
	entropies := make(map[float64][]float64)
	effective := make(map[float64][]float64)
	for _, r := range results {
		if _, seen := entropies[r.Beta]; !seen {
			order = append(order, r.Beta)
		}
		entropies[r.Beta] = append(entropies[r.Beta], r.Entropy)
		effective[r.Beta] = append(effective[r.Beta], r.EffectiveMarkers)
	}

	out := make([]Summary, 0, len(order))
	for _, beta := range order {
		s := Summary{Beta: beta, Recordings: len(entropies[beta])}
		s.EntropyMean, s.EntropyStddev = MeanStddev(entropies[beta])
		s.EffectiveMarkersMean, s.EffectiveMarkersStddev = MeanStddev(effective[beta])
		out = append(out, s)
	}
	return out
}
