// Package infojson reads and writes project info files: JSON documents
// holding the marker labels of a project and precomputed weights per
// recording.
//
//	{"labels": ["head", "lhand"], "weights": {"wave-01": [0.4, 0.6]}}
package infojson

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/banshee-data/gesture.report/internal/fsutil"
	"github.com/banshee-data/gesture.report/internal/mocap"
)

// maxInfoFileSize caps the size of an info file.
const maxInfoFileSize = 16 * 1024 * 1024

// ErrUnreadable wraps failures to read an info file, as opposed to a file
// that was read but does not parse or validate.
var ErrUnreadable = errors.New("info file unreadable")

// Info is the on-disk document.
type Info struct {
	Labels  []string             `json:"labels,omitempty"`
	Weights map[string][]float64 `json:"weights"`
}

// Table serves the weights of one project's info file. It implements
// mocap.WeightTable.
type Table struct {
	Project string
	info    Info
}

var _ mocap.WeightTable = (*Table)(nil)

// FileName returns the conventional info file name for a project.
func FileName(project string) string {
	return strings.ToUpper(project) + "_INFO.json"
}

// LoadInfoFile reads and validates an info file for project.
func LoadInfoFile(fsys fsutil.FileSystem, path, project string) (*Table, error) {
	if filepath.Ext(path) != ".json" {
		return nil, fmt.Errorf("info file must have .json extension, got %s", path)
	}
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	if len(data) > maxInfoFileSize {
		return nil, fmt.Errorf("info file too large: %d bytes (max %d)", len(data), maxInfoFileSize)
	}

	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse info file %s: %w", path, err)
	}
	if err := info.Validate(); err != nil {
		return nil, fmt.Errorf("invalid info file %s: %w", path, err)
	}
	return &Table{Project: project, info: info}, nil
}

// Validate checks label uniqueness and that every weight vector matches the
// label count when labels are present.
func (i *Info) Validate() error {
	seen := make(map[string]bool, len(i.Labels))
	for _, l := range i.Labels {
		if l == "" {
			return fmt.Errorf("empty label")
		}
		if seen[l] {
			return fmt.Errorf("label %q listed twice", l)
		}
		seen[l] = true
	}
	if len(i.Labels) == 0 {
		return nil
	}
	for name, w := range i.Weights {
		if len(w) != len(i.Labels) {
			return fmt.Errorf("%w: %s has %d weights for %d labels", mocap.ErrWeightTableCorrupt, name, len(w), len(i.Labels))
		}
	}
	return nil
}

// Lookup returns the weights stored for a recording. Entries of other
// projects are never present.
func (t *Table) Lookup(_ context.Context, project, name string) (mocap.WeightEntry, bool, error) {
	if project != t.Project {
		return mocap.WeightEntry{}, false, nil
	}
	w, ok := t.info.Weights[name]
	if !ok {
		return mocap.WeightEntry{}, false, nil
	}
	entry := mocap.WeightEntry{Values: append([]float64(nil), w...)}
	if len(t.info.Labels) > 0 {
		entry.Markers = append([]string(nil), t.info.Labels...)
	}
	return entry, true, nil
}

// Recordings returns the recording names in the file, sorted.
func (t *Table) Recordings() []string {
	names := make([]string, 0, len(t.info.Weights))
	for name := range t.info.Weights {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Labels returns the marker labels, or nil for a positional file.
func (t *Table) Labels() []string {
	return append([]string(nil), t.info.Labels...)
}

// WriteInfoFile writes info as indented JSON.
func WriteInfoFile(fsys fsutil.FileSystem, path string, info Info) error {
	if err := info.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal info: %w", err)
	}
	if err := fsys.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write info file: %w", err)
	}
	return nil
}
