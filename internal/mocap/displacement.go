package mocap

import (
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DisplacementStats summarises one marker's movement over a recording.
type DisplacementStats struct {
	// Activity is the summed Euclidean norm of the per-frame steps.
	Activity float64 `json:"activity"`
	// StepStd is the population standard deviation of the step norms.
	StepStd float64 `json:"step_std"`
}

// Displacement holds per-marker statistics in marker order.
type Displacement struct {
	Markers []string
	Active  []bool
	Stats   []DisplacementStats
}

// Of returns the statistics for a marker, or zero stats for an unknown name.
func (d *Displacement) Of(name string) DisplacementStats {
	for i, m := range d.Markers {
		if m == name {
			return d.Stats[i]
		}
	}
	return DisplacementStats{}
}

// Activities returns the activity of every marker in marker order.
func (d *Displacement) Activities() []float64 {
	out := make([]float64, len(d.Stats))
	for i, s := range d.Stats {
		out[i] = s.Activity
	}
	return out
}

// ActiveMarkers returns the active marker names in marker order.
func (d *Displacement) ActiveMarkers() []string {
	var out []string
	for i, m := range d.Markers {
		if d.Active[i] {
			out = append(out, m)
		}
	}
	return out
}

// TotalActivity returns the grand sum of activity over all markers.
func (d *Displacement) TotalActivity() float64 {
	return floats.Sum(d.Activities())
}

// ComputeDisplacement resolves the selector and computes per-marker
// statistics from consecutive normalized positions. Steps touching a missing
// sample are discarded. Inactive markers, and markers with no usable step,
// get zero activity and zero step std.
func (r *Recording) ComputeDisplacement(sel MarkerSelector) (*Displacement, error) {
	_, mask, err := sel.resolve(r.markers)
	if err != nil {
		return nil, err
	}

	d := &Displacement{
		Markers: append([]string(nil), r.markers...),
		Active:  mask,
		Stats:   make([]DisplacementStats, len(r.markers)),
	}

	// Markers are independent; each goroutine owns one slot of d.Stats.
	var wg sync.WaitGroup
	for m := range r.markers {
		if !mask[m] {
			continue
		}
		wg.Add(1)
		go func(m int) {
			defer wg.Done()
			d.Stats[m] = markerDisplacement(r.norm[m], r.dims)
		}(m)
	}
	wg.Wait()

	r.displacement = d
	return d, nil
}

// LastDisplacement returns the statistics from the most recent
// ComputeDisplacement call, or nil.
func (r *Recording) LastDisplacement() *Displacement {
	return r.displacement
}

func markerDisplacement(track [][]float64, dims int) DisplacementStats {
	if len(track) < 2 {
		return DisplacementStats{}
	}
	step := make([]float64, dims)
	norms := make([]float64, 0, len(track)-1)
	for f := 1; f < len(track); f++ {
		floats.SubTo(step, track[f], track[f-1])
		if missing(step) {
			continue
		}
		norms = append(norms, floats.Norm(step, 2))
	}
	if len(norms) == 0 {
		return DisplacementStats{}
	}
	_, std := stat.PopMeanStdDev(norms, nil)
	return DisplacementStats{
		Activity: floats.Sum(norms),
		StepStd:  std,
	}
}
