package mocap

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/banshee-data/gesture.report/internal/monitoring"
)

// WeightEntry is a stored weight vector. Markers, when present, names each
// value and enables reconciliation by name; otherwise values are positional.
type WeightEntry struct {
	Markers []string
	Values  []float64
}

// WeightTable looks up precomputed weights by project and recording name.
// A missing entry is reported as ok == false with a nil error.
type WeightTable interface {
	Lookup(ctx context.Context, project, name string) (entry WeightEntry, ok bool, err error)
}

// WeightStore loads calibrated weights for recordings, falling back to
// proportional weights derived on the fly. It never writes to the table.
type WeightStore struct {
	table WeightTable
}

// NewWeightStore returns a store reading from table. A nil table always
// falls back to derived weights.
func NewWeightStore(table WeightTable) *WeightStore {
	return &WeightStore{table: table}
}

// LoadOrCompute returns the stored weights for the recording's name when the
// table has them, and otherwise derives proportional weights over all
// markers. Lookup I/O errors are treated as a missing entry. A present entry
// that the table cannot decode, or that cannot be reconciled with the
// recording's markers, fails with ErrWeightTableCorrupt.
func (s *WeightStore) LoadOrCompute(ctx context.Context, r *Recording) (Weights, error) {
	if s.table != nil {
		entry, ok, err := s.table.Lookup(ctx, r.Project, r.name)
		switch {
		case err != nil && (ok || errors.Is(err, ErrWeightTableCorrupt)):
			if !errors.Is(err, ErrWeightTableCorrupt) {
				err = fmt.Errorf("%w: %v", ErrWeightTableCorrupt, err)
			}
			return Weights{}, fmt.Errorf("%s/%s: %w", r.Project, r.name, err)
		case err != nil:
			monitoring.Logf("[mocap] weight table lookup for %s/%s failed, deriving weights: %v", r.Project, r.name, err)
		case ok:
			w, err := reconcile(r.markers, entry)
			if err != nil {
				return Weights{}, fmt.Errorf("%s/%s: %w", r.Project, r.name, err)
			}
			r.weights = w
			return w, nil
		default:
			monitoring.Debugf("[mocap] no stored weights for %s/%s", r.Project, r.name)
		}
	}
	return r.DeriveWeights(AllMarkers(), ProportionalMode())
}

// reconcile maps a stored entry onto the recording's marker order.
func reconcile(markers []string, entry WeightEntry) (Weights, error) {
	if len(entry.Values) != len(markers) {
		return Weights{}, fmt.Errorf("%w: %d stored weights for %d markers", ErrWeightTableCorrupt, len(entry.Values), len(markers))
	}
	for i, v := range entry.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return Weights{}, fmt.Errorf("%w: weight %d is %g", ErrWeightTableCorrupt, i, v)
		}
	}

	vector := entry.Values
	if entry.Markers != nil {
		if len(entry.Markers) != len(markers) {
			return Weights{}, fmt.Errorf("%w: %d stored marker names for %d markers", ErrWeightTableCorrupt, len(entry.Markers), len(markers))
		}
		byName := make(map[string]float64, len(entry.Markers))
		for i, name := range entry.Markers {
			if _, dup := byName[name]; dup {
				return Weights{}, fmt.Errorf("%w: stored marker %q repeated", ErrWeightTableCorrupt, name)
			}
			byName[name] = entry.Values[i]
		}
		vector = make([]float64, len(markers))
		for i, m := range markers {
			v, ok := byName[m]
			if !ok {
				return Weights{}, fmt.Errorf("%w: stored weights lack marker %q", ErrWeightTableCorrupt, m)
			}
			vector[i] = v
		}
	}

	w := newWeights(markers, vector)
	w.Mode = WeightMode{Kind: WeightStored}
	return w, nil
}
