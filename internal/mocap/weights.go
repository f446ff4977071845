package mocap

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/banshee-data/gesture.report/internal/monitoring"
)

// WeightKind tags a weight-derivation mode.
type WeightKind int

const (
	// WeightUniform gives every active marker the same weight.
	WeightUniform WeightKind = iota
	// WeightProportional weights markers by their share of total activity.
	WeightProportional
	// WeightExponential weights markers by 1-exp(-beta*activity).
	WeightExponential
	// WeightStored marks weights read from a weight table.
	WeightStored
)

// DefaultLazyBeta is the saturation parameter used when weights are read
// before any were derived or loaded.
const DefaultLazyBeta = 1e-6

// WeightMode is the resolved weight-derivation variant.
type WeightMode struct {
	Kind WeightKind
	// Beta is only meaningful for WeightExponential.
	Beta float64
}

// UniformMode returns the uniform variant.
func UniformMode() WeightMode { return WeightMode{Kind: WeightUniform} }

// ProportionalMode returns the proportional variant.
func ProportionalMode() WeightMode { return WeightMode{Kind: WeightProportional} }

// ExponentialMode returns the exponential-saturation variant.
func ExponentialMode(beta float64) (WeightMode, error) {
	if math.IsNaN(beta) || math.IsInf(beta, 0) || beta <= 0 {
		return WeightMode{}, fmt.Errorf("%w: exponential saturation needs beta > 0, got %g", ErrInvalidBeta, beta)
	}
	return WeightMode{Kind: WeightExponential, Beta: beta}, nil
}

// ModeForBeta resolves the historical beta convention once at the call
// boundary: nil or zero selects proportional weighting, a positive value
// selects exponential saturation.
func ModeForBeta(beta *float64) (WeightMode, error) {
	if beta == nil || *beta == 0 {
		return ProportionalMode(), nil
	}
	return ExponentialMode(*beta)
}

// ParseWeightMode parses "uniform", "proportional", "exponential:<beta>" or
// "exp:<beta>".
func ParseWeightMode(s string) (WeightMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "uniform", "constant":
		return UniformMode(), nil
	case "", "proportional":
		return ProportionalMode(), nil
	}
	name, arg, ok := strings.Cut(s, ":")
	if !ok || (name != "exponential" && name != "exp") {
		return WeightMode{}, fmt.Errorf("unknown weighting mode %q", s)
	}
	beta, err := strconv.ParseFloat(strings.TrimSpace(arg), 64)
	if err != nil {
		return WeightMode{}, fmt.Errorf("%w: %q: %v", ErrInvalidBeta, arg, err)
	}
	return ExponentialMode(beta)
}

// String renders the mode in the form ParseWeightMode accepts.
func (m WeightMode) String() string {
	switch m.Kind {
	case WeightUniform:
		return "uniform"
	case WeightProportional:
		return "proportional"
	case WeightExponential:
		return "exponential:" + strconv.FormatFloat(m.Beta, 'g', -1, 64)
	case WeightStored:
		return "stored"
	default:
		return fmt.Sprintf("WeightKind(%d)", int(m.Kind))
	}
}

// Weights is a per-marker weight assignment keyed by marker name.
type Weights struct {
	markers []string
	values  map[string]float64

	// Mode is the variant that produced the values. A zero-denominator
	// fallback reports WeightUniform here.
	// Table entries report WeightStored.
	Mode WeightMode
}

func newWeights(markers []string, vector []float64) Weights {
	w := Weights{
		markers: append([]string(nil), markers...),
		values:  make(map[string]float64, len(markers)),
	}
	for i, m := range markers {
		w.values[m] = vector[i]
	}
	return w
}

// IsZero reports whether no weights have been assigned.
func (w Weights) IsZero() bool { return w.values == nil }

// Markers returns the marker order used by Vector.
func (w Weights) Markers() []string { return append([]string(nil), w.markers...) }

// Of returns the weight of a marker; unknown markers weigh 0.
func (w Weights) Of(name string) float64 { return w.values[name] }

// Vector serialises the weights in marker order.
func (w Weights) Vector() []float64 {
	out := make([]float64, len(w.markers))
	for i, m := range w.markers {
		out[i] = w.values[m]
	}
	return out
}

// Map returns a copy of the name-keyed weights.
func (w Weights) Map() map[string]float64 {
	out := make(map[string]float64, len(w.values))
	for k, v := range w.values {
		out[k] = v
	}
	return out
}

// FromTable reports whether the values were read from a weight table.
func (w Weights) FromTable() bool { return w.Mode.Kind == WeightStored }

// Sum returns the total weight.
func (w Weights) Sum() float64 { return floats.Sum(w.Vector()) }

// DeriveWeights computes displacement over the selected markers and turns
// activity into weights. Proportional and exponential weights normalise over
// all markers, inactive ones contributing zero. A zero denominator falls back
// to uniform weights, which normalise over the active markers only. The
// result is also stored as the recording's current weights.
func (r *Recording) DeriveWeights(sel MarkerSelector, mode WeightMode) (Weights, error) {
	d, err := r.ComputeDisplacement(sel)
	if err != nil {
		return Weights{}, err
	}

	var vector []float64
	effective := mode
	switch mode.Kind {
	case WeightUniform:
		vector = uniformVector(d.Active)
	case WeightProportional:
		vector = d.Activities()
		if !normalizeInPlace(vector) {
			monitoring.Logf("[mocap] %s: total activity is zero, using uniform weights", r.name)
			vector, effective = uniformVector(d.Active), UniformMode()
		}
	case WeightExponential:
		if mode.Beta <= 0 || math.IsNaN(mode.Beta) || math.IsInf(mode.Beta, 0) {
			return Weights{}, fmt.Errorf("%w: %g", ErrInvalidBeta, mode.Beta)
		}
		vector = d.Activities()
		for i, a := range vector {
			vector[i] = -math.Expm1(-mode.Beta * a)
		}
		if !normalizeInPlace(vector) {
			monitoring.Logf("[mocap] %s: saturation denominator is zero at beta=%g, using uniform weights", r.name, mode.Beta)
			vector, effective = uniformVector(d.Active), UniformMode()
		}
	default:
		return Weights{}, fmt.Errorf("%w: weight kind %d", ErrUndefinedMode, int(mode.Kind))
	}

	w := newWeights(r.markers, vector)
	w.Mode = effective
	r.weights = w
	return w, nil
}

// SetWeights installs weights obtained elsewhere, such as a weight table.
func (r *Recording) SetWeights(w Weights) error {
	if len(w.markers) != len(r.markers) {
		return fmt.Errorf("%w: %d weights for %d markers", ErrShapeMismatch, len(w.markers), len(r.markers))
	}
	for i, m := range r.markers {
		if w.markers[i] != m {
			return fmt.Errorf("%w: weight marker %d is %q, want %q", ErrShapeMismatch, i, w.markers[i], m)
		}
	}
	r.weights = w
	return nil
}

// Weights returns the current weights, deriving them over the active
// markers with exponential saturation at DefaultLazyBeta if none were set.
// Resampling, truncation, normalization and a new active selection all
// clear the current weights.
func (r *Recording) Weights() (Weights, error) {
	if !r.weights.IsZero() {
		return r.weights, nil
	}
	mode, err := ExponentialMode(DefaultLazyBeta)
	if err != nil {
		return Weights{}, err
	}
	return r.DeriveWeights(r.active, mode)
}

// WeightVector returns the current weights in marker order.
func (r *Recording) WeightVector() ([]float64, error) {
	w, err := r.Weights()
	if err != nil {
		return nil, err
	}
	return w.Vector(), nil
}

// AverageWeights averages weights of several recordings of one gesture and
// renormalises the result to sum to 1. All inputs must share marker order.
func AverageWeights(ws ...Weights) (Weights, error) {
	if len(ws) == 0 {
		return Weights{}, fmt.Errorf("%w: no weights to average", ErrShapeMismatch)
	}
	markers := ws[0].markers
	sum := make([]float64, len(markers))
	for i, w := range ws {
		if len(w.markers) != len(markers) {
			return Weights{}, fmt.Errorf("%w: weights %d have %d markers, want %d", ErrShapeMismatch, i, len(w.markers), len(markers))
		}
		for j, m := range w.markers {
			if m != markers[j] {
				return Weights{}, fmt.Errorf("%w: weights %d marker %d is %q, want %q", ErrShapeMismatch, i, j, m, markers[j])
			}
		}
		floats.Add(sum, w.Vector())
	}
	if !normalizeInPlace(sum) {
		monitoring.Logf("[mocap] averaged weights are all zero")
	}
	out := newWeights(markers, sum)
	out.Mode = ws[0].Mode
	return out, nil
}

func uniformVector(active []bool) []float64 {
	out := make([]float64, len(active))
	n := 0
	for _, a := range active {
		if a {
			n++
		}
	}
	if n == 0 {
		return out
	}
	for i, a := range active {
		if a {
			out[i] = 1 / float64(n)
		}
	}
	return out
}

// normalizeInPlace divides v by its sum, reporting false and leaving v
// untouched when the sum is zero or not finite.
func normalizeInPlace(v []float64) bool {
	total := floats.Sum(v)
	if total == 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return false
	}
	floats.Scale(1/total, v)
	return true
}
