// Package sweep runs weight derivation across a range of saturation
// parameters and summarises how concentrated the resulting weights are.
package sweep

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// maxValues bounds the number of betas a single sweep may expand to.
const maxValues = 10000

// RangeSpec defines a floating-point parameter range for sweeping.
type RangeSpec struct {
	Min  float64
	Max  float64
	Step float64
}

// ParseRangeSpec parses a "min:max:step" string into a RangeSpec.
func ParseRangeSpec(s string) (RangeSpec, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return RangeSpec{}, fmt.Errorf("invalid range format %q: expected min:max:step", s)
	}

	min, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return RangeSpec{}, fmt.Errorf("invalid min value %q: %w", parts[0], err)
	}
	max, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return RangeSpec{}, fmt.Errorf("invalid max value %q: %w", parts[1], err)
	}
	step, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil {
		return RangeSpec{}, fmt.Errorf("invalid step value %q: %w", parts[2], err)
	}

	if step <= 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		return RangeSpec{}, fmt.Errorf("step must be positive, got %g", step)
	}
	return RangeSpec{Min: min, Max: max, Step: step}, nil
}

// Values expands the range, min and max inclusive. Each value is computed
// as min+k*step so small betas do not drift. Returns nil if min > max or
// the range would exceed maxValues entries.
func (r RangeSpec) Values() []float64 {
	if r.Step <= 0 || r.Min > r.Max {
		return nil
	}
	// Tolerate the last step landing a hair past max.
	count := int(math.Floor((r.Max-r.Min)/r.Step+1e-9)) + 1
	if count > maxValues || count < 0 {
		return nil
	}
	out := make([]float64, count)
	for k := range out {
		out[k] = r.Min + float64(k)*r.Step
	}
	return out
}

// ParseCSVFloat64s parses a comma-separated list of float64 values.
// Returns nil, nil for empty input strings.
func ParseCSVFloat64s(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float '%s': %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// ParseBetaList parses a comma-separated list of betas or a "min:max:step"
// range. Betas must be finite and non-negative; zero selects proportional
// weighting.
func ParseBetaList(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty beta list")
	}

	var betas []float64
	if strings.Contains(s, ":") {
		spec, err := ParseRangeSpec(s)
		if err != nil {
			return nil, err
		}
		betas = spec.Values()
		if betas == nil {
			return nil, fmt.Errorf("range %q is empty or exceeds %d values", s, maxValues)
		}
	} else {
		var err error
		if betas, err = ParseCSVFloat64s(s); err != nil {
			return nil, err
		}
	}

	for _, b := range betas {
		if b < 0 || math.IsNaN(b) || math.IsInf(b, 0) {
			return nil, fmt.Errorf("beta must be finite and non-negative, got %g", b)
		}
	}
	if len(betas) == 0 {
		return nil, fmt.Errorf("no betas in %q", s)
	}
	return betas, nil
}
