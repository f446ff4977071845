package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/banshee-data/gesture.report/internal/mocap"
	"github.com/banshee-data/gesture.report/internal/timeutil"
)

// WeightTableStore persists calibrated weights keyed by project and
// recording name.
type WeightTableStore struct {
	db    *sql.DB
	clock timeutil.Clock
}

var _ mocap.WeightTable = (*WeightTableStore)(nil)

// NewWeightTableStore creates a store. A nil clock uses the wall clock.
func NewWeightTableStore(db *sql.DB, clock timeutil.Clock) *WeightTableStore {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &WeightTableStore{db: db, clock: clock}
}

// Lookup returns the stored entry for a recording. A missing row is
// reported as ok == false with a nil error; an undecodable row is
// mocap.ErrWeightTableCorrupt.
func (s *WeightTableStore) Lookup(ctx context.Context, project, name string) (mocap.WeightEntry, bool, error) {
	var markersJSON, weightsJSON string
	err := s.db.QueryRowContext(ctx, `
		SELECT markers_json, weights_json
		FROM weight_entries
		WHERE project = ? AND recording = ?`, project, name).Scan(&markersJSON, &weightsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return mocap.WeightEntry{}, false, nil
	}
	if err != nil {
		return mocap.WeightEntry{}, false, fmt.Errorf("query weights %s/%s: %w", project, name, err)
	}

	var entry mocap.WeightEntry
	if err := json.Unmarshal([]byte(markersJSON), &entry.Markers); err != nil {
		return mocap.WeightEntry{}, true, fmt.Errorf("%w: %s/%s markers: %v", mocap.ErrWeightTableCorrupt, project, name, err)
	}
	if err := json.Unmarshal([]byte(weightsJSON), &entry.Values); err != nil {
		return mocap.WeightEntry{}, true, fmt.Errorf("%w: %s/%s weights: %v", mocap.ErrWeightTableCorrupt, project, name, err)
	}
	return entry, true, nil
}

// Save inserts or replaces the weights of a recording.
func (s *WeightTableStore) Save(ctx context.Context, project, name string, w mocap.Weights) error {
	if w.IsZero() {
		return fmt.Errorf("save %s/%s: no weights", project, name)
	}
	return s.SaveEntry(ctx, project, name, mocap.WeightEntry{Markers: w.Markers(), Values: w.Vector()}, w.Mode.String())
}

// SaveEntry inserts or replaces a raw entry, as read from an info file.
// Entries without marker names are stored positionally.
func (s *WeightTableStore) SaveEntry(ctx context.Context, project, name string, entry mocap.WeightEntry, mode string) error {
	if entry.Markers != nil && len(entry.Markers) != len(entry.Values) {
		return fmt.Errorf("save %s/%s: %d markers for %d weights", project, name, len(entry.Markers), len(entry.Values))
	}
	markersJSON, err := json.Marshal(entry.Markers)
	if err != nil {
		return fmt.Errorf("marshal markers: %w", err)
	}
	weightsJSON, err := json.Marshal(entry.Values)
	if err != nil {
		return fmt.Errorf("marshal weights: %w", err)
	}

	return retryOnBusy(func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO weight_entries (project, recording, markers_json, weights_json, mode, updated_unix_nanos)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (project, recording) DO UPDATE SET
				markers_json = excluded.markers_json,
				weights_json = excluded.weights_json,
				mode = excluded.mode,
				updated_unix_nanos = excluded.updated_unix_nanos`,
			project, name, string(markersJSON), string(weightsJSON), mode, s.clock.Now().UnixNano(),
		)
		return err
	})
}

// ListRecordings returns the recording names with stored weights for a
// project, sorted by name.
func (s *WeightTableStore) ListRecordings(ctx context.Context, project string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT recording FROM weight_entries
		WHERE project = ?
		ORDER BY recording`, project)
	if err != nil {
		return nil, fmt.Errorf("query recordings: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan recording: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Delete removes the stored weights of a recording.
func (s *WeightTableStore) Delete(ctx context.Context, project, name string) error {
	return retryOnBusy(func() error {
		result, err := s.db.ExecContext(ctx, `DELETE FROM weight_entries WHERE project = ? AND recording = ?`, project, name)
		if err != nil {
			return err
		}
		n, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("weights %s/%s not found", project, name)
		}
		return nil
	})
}
