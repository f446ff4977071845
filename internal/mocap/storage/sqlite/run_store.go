package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrRunNotFound is returned by GetRun for an unknown run ID.
var ErrRunNotFound = errors.New("calibration run not found")

// CalibrationRun records one averaging of weights over several recordings
// of a gesture.
type CalibrationRun struct {
	RunID      string    `json:"run_id"`
	Project    string    `json:"project"`
	Gesture    string    `json:"gesture"`
	Mode       string    `json:"mode"`
	Recordings []string  `json:"recordings"`
	Markers    []string  `json:"markers"`
	Weights    []float64 `json:"weights"`
	CreatedAt  time.Time `json:"created_at"`
}

// InsertRun persists a calibration run. If RunID is empty, a UUID is
// generated; a zero CreatedAt is set from the store clock.
func (s *WeightTableStore) InsertRun(ctx context.Context, run *CalibrationRun) error {
	if len(run.Markers) != len(run.Weights) {
		return fmt.Errorf("run %s: %d markers for %d weights", run.Gesture, len(run.Markers), len(run.Weights))
	}
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.clock.Now()
	}

	recordingsJSON, err := json.Marshal(run.Recordings)
	if err != nil {
		return fmt.Errorf("marshal recordings: %w", err)
	}
	markersJSON, err := json.Marshal(run.Markers)
	if err != nil {
		return fmt.Errorf("marshal markers: %w", err)
	}
	weightsJSON, err := json.Marshal(run.Weights)
	if err != nil {
		return fmt.Errorf("marshal weights: %w", err)
	}

	return retryOnBusy(func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO calibration_runs (
				run_id, project, gesture, mode, recordings_json,
				markers_json, weights_json, created_unix_nanos
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.RunID, run.Project, run.Gesture, run.Mode, string(recordingsJSON),
			string(markersJSON), string(weightsJSON), run.CreatedAt.UnixNano(),
		)
		return err
	})
}

// ListRuns returns the calibration runs of a project, newest first.
func (s *WeightTableStore) ListRuns(ctx context.Context, project string) ([]*CalibrationRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, project, gesture, mode, recordings_json,
		       markers_json, weights_json, created_unix_nanos
		FROM calibration_runs
		WHERE project = ?
		ORDER BY created_unix_nanos DESC, run_id`, project)
	if err != nil {
		return nil, fmt.Errorf("query calibration runs: %w", err)
	}
	defer rows.Close()

	var runs []*CalibrationRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun returns a single calibration run by ID.
func (s *WeightTableStore) GetRun(ctx context.Context, runID string) (*CalibrationRun, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, project, gesture, mode, recordings_json,
		       markers_json, weights_json, created_unix_nanos
		FROM calibration_runs
		WHERE run_id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return run, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*CalibrationRun, error) {
	var run CalibrationRun
	var recordingsJSON, markersJSON, weightsJSON string
	var created int64
	if err := row.Scan(
		&run.RunID, &run.Project, &run.Gesture, &run.Mode, &recordingsJSON,
		&markersJSON, &weightsJSON, &created,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan calibration run: %w", err)
	}
	if err := json.Unmarshal([]byte(recordingsJSON), &run.Recordings); err != nil {
		return nil, fmt.Errorf("run %s recordings: %w", run.RunID, err)
	}
	if err := json.Unmarshal([]byte(markersJSON), &run.Markers); err != nil {
		return nil, fmt.Errorf("run %s markers: %w", run.RunID, err)
	}
	if err := json.Unmarshal([]byte(weightsJSON), &run.Weights); err != nil {
		return nil, fmt.Errorf("run %s weights: %w", run.RunID, err)
	}
	run.CreatedAt = time.Unix(0, created).UTC()
	return &run, nil
}
