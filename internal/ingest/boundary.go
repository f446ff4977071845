package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/banshee-data/gesture.report/internal/fsutil"
	"github.com/banshee-data/gesture.report/internal/mocap"
)

// Boundary trims a recording to frames [Begin, End). End < 0 means the end
// of the recording.
type Boundary struct {
	Begin int
	End   int
}

// ParseBoundary parses comments such as "begin from 40 stop on 310",
// "begin from 12" or "stop on 200".
func ParseBoundary(comment string) (Boundary, error) {
	b := Boundary{End: -1}
	c := strings.TrimSpace(comment)

	if rest, ok := strings.CutPrefix(c, "begin from "); ok {
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			return Boundary{}, fmt.Errorf("boundary %q: missing begin frame", comment)
		}
		n, err := strconv.Atoi(fields[0])
		if err != nil {
			return Boundary{}, fmt.Errorf("boundary %q: %w", comment, err)
		}
		b.Begin = n
	}
	if _, after, ok := strings.Cut(c, "stop on "); ok {
		n, err := strconv.Atoi(strings.TrimSpace(after))
		if err != nil {
			return Boundary{}, fmt.Errorf("boundary %q: %w", comment, err)
		}
		b.End = n
	}
	if b.Begin < 0 || (b.End >= 0 && b.End <= b.Begin) {
		return Boundary{}, fmt.Errorf("%w: boundary %q selects no frames", mocap.ErrInvalidLength, comment)
	}
	return b, nil
}

// Cut returns the tensor restricted to the boundary's frames.
func (b Boundary) Cut(p mocap.Positions) (mocap.Positions, error) {
	out := make(mocap.Positions, len(p))
	for m, track := range p {
		end := b.End
		if end < 0 || end > len(track) {
			end = len(track)
		}
		if b.Begin >= end {
			return nil, fmt.Errorf("%w: begin %d beyond %d frames", mocap.ErrInvalidLength, b.Begin, len(track))
		}
		out[m] = track[b.Begin:end]
	}
	return out, nil
}

// LoadBoundaries reads a two-column CSV of recording name and boundary
// comment. Rows with an empty comment are skipped.
func LoadBoundaries(fsys fsutil.FileSystem, path string) (map[string]string, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read boundaries: %w", err)
	}
	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = 2
	cr.TrimLeadingSpace = true

	out := make(map[string]string)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse boundaries %s: %w", path, err)
		}
		if comment := strings.TrimSpace(rec[1]); comment != "" {
			out[strings.TrimSpace(rec[0])] = comment
		}
	}
}
