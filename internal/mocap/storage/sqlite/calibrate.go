package sqlite

import (
	"context"
	"fmt"

	"github.com/banshee-data/gesture.report/internal/mocap"
	"github.com/banshee-data/gesture.report/internal/monitoring"
)

// Calibrate derives weights for each recording of one gesture, averages
// them and stores the average under every recording's name. The run is
// recorded in calibration_runs and returned.
func (s *WeightTableStore) Calibrate(ctx context.Context, project, gesture string, recs []*mocap.Recording, sel mocap.MarkerSelector, mode mocap.WeightMode) (*CalibrationRun, error) {
	if len(recs) == 0 {
		return nil, fmt.Errorf("calibrate %s: no recordings", gesture)
	}

	ws := make([]mocap.Weights, 0, len(recs))
	names := make([]string, 0, len(recs))
	for _, rec := range recs {
		w, err := rec.DeriveWeights(sel, mode)
		if err != nil {
			return nil, fmt.Errorf("calibrate %s: %s: %w", gesture, rec.Name(), err)
		}
		ws = append(ws, w)
		names = append(names, rec.Name())
	}
	avg, err := mocap.AverageWeights(ws...)
	if err != nil {
		return nil, fmt.Errorf("calibrate %s: %w", gesture, err)
	}

	for _, name := range names {
		if err := s.Save(ctx, project, name, avg); err != nil {
			return nil, fmt.Errorf("calibrate %s: %w", gesture, err)
		}
	}
	run := &CalibrationRun{
		Project:    project,
		Gesture:    gesture,
		Mode:       mode.String(),
		Recordings: names,
		Markers:    avg.Markers(),
		Weights:    avg.Vector(),
	}
	if err := s.InsertRun(ctx, run); err != nil {
		return nil, fmt.Errorf("calibrate %s: %w", gesture, err)
	}
	monitoring.Logf("[calibrate] %s/%s: %d recordings, run %s", project, gesture, len(names), run.RunID)
	return run, nil
}
