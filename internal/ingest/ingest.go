package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/banshee-data/gesture.report/internal/fsutil"
	"github.com/banshee-data/gesture.report/internal/mocap"
	"github.com/banshee-data/gesture.report/internal/monitoring"
)

// ErrNoMarkers is returned for a directory without marker files.
var ErrNoMarkers = errors.New("no marker csv files")

// Options controls how a recording directory is loaded.
type Options struct {
	// Name overrides the recording name; defaults to the directory base name.
	Name    string
	Project string
	// FrameRate is the capture rate in frames per second.
	FrameRate int
	// Boundary is an optional "begin from N stop on M" comment.
	Boundary string
	// ValidLabels, when set, restricts the markers loaded and requires
	// every label to be present.
	ValidLabels []string
}

// LoadDir reads every <marker>.csv in dir into a recording.
func LoadDir(fsys fsutil.FileSystem, dir string, opts Options) (*mocap.Recording, error) {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	valid := make(map[string]bool, len(opts.ValidLabels))
	for _, l := range opts.ValidLabels {
		valid[l] = true
	}

	var markers []string
	var raw mocap.Positions
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		label := strings.TrimSuffix(e.Name(), ".csv")
		if len(valid) > 0 && !valid[label] {
			monitoring.Debugf("[ingest] %s: skipping %s, not a valid label", dir, e.Name())
			continue
		}
		data, err := fsys.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", e.Name(), err)
		}
		track, err := ParseTrack(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%s/%s: %w", dir, e.Name(), err)
		}
		markers = append(markers, label)
		raw = append(raw, track)
	}
	if len(markers) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoMarkers)
	}
	for _, l := range opts.ValidLabels {
		if !contains(markers, l) {
			return nil, fmt.Errorf("%s: %w: marker %q missing", dir, mocap.ErrShapeMismatch, l)
		}
	}

	if opts.Boundary != "" {
		b, err := ParseBoundary(opts.Boundary)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", dir, err)
		}
		if raw, err = b.Cut(raw); err != nil {
			return nil, fmt.Errorf("%s: %w", dir, err)
		}
		monitoring.Logf("[ingest] cut %s: %s", dir, opts.Boundary)
	}

	name := opts.Name
	if name == "" {
		name = filepath.Base(filepath.Clean(dir))
	}
	rec, err := mocap.NewRecording(name, markers, raw, nil, opts.FrameRate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", dir, err)
	}
	rec.Project = opts.Project
	return rec, nil
}

// ParseTrack reads one marker's frames. Every row must have the same
// number of coordinates.
func ParseTrack(r io.Reader) ([][]float64, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 0
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	var track [][]float64
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", mocap.ErrShapeMismatch, err)
		}
		frame := make([]float64, len(rec))
		for i, cell := range rec {
			if frame[i], err = parseCell(cell); err != nil {
				return nil, fmt.Errorf("line %d column %d: %w", line, i+1, err)
			}
		}
		track = append(track, frame)
	}
	return track, nil
}

func parseCell(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" || strings.EqualFold(cell, "nan") {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(cell, 64)
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
