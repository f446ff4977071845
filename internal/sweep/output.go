package sweep

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// CSVWriter wraps csv.Writer with methods for sweep output.
type CSVWriter struct {
	Results *csv.Writer
	Summary *csv.Writer
	markers []string
}

// NewCSVWriter creates a CSVWriter. summary may be nil to skip the
// per-beta summary file.
func NewCSVWriter(results, summary io.Writer) *CSVWriter {
	c := &CSVWriter{Results: csv.NewWriter(results)}
	if summary != nil {
		c.Summary = csv.NewWriter(summary)
	}
	return c
}

// FormatResultHeaders returns the result column names for given markers.
func FormatResultHeaders(markers []string) []string {
	header := []string{"recording", "beta", "mode", "entropy", "effective_markers", "max_weight", "top_marker"}
	for _, m := range markers {
		header = append(header, "w_"+m)
	}
	return header
}

// FormatSummaryHeaders returns the summary column names.
func FormatSummaryHeaders() []string {
	return []string{"beta", "recordings", "entropy_mean", "entropy_stddev", "effective_markers_mean", "effective_markers_stddev"}
}

// WriteHeaders writes the headers of both files. Every result written
// afterwards must share this marker order.
func (c *CSVWriter) WriteHeaders(markers []string) error {
	c.markers = append([]string(nil), markers...)
	if err := c.Results.Write(FormatResultHeaders(markers)); err != nil {
		return err
	}
	if c.Summary != nil {
		return c.Summary.Write(FormatSummaryHeaders())
	}
	return nil
}

// WriteResult writes one result row.
func (c *CSVWriter) WriteResult(r Result) error {
	if len(r.Weights) != len(c.markers) {
		return fmt.Errorf("%s: %d weights for %d header markers", r.Recording, len(r.Weights), len(c.markers))
	}
	for i, m := range r.Markers {
		if m != c.markers[i] {
			return fmt.Errorf("%s: marker %d is %q, header has %q", r.Recording, i, m, c.markers[i])
		}
	}
	row := []string{
		r.Recording,
		formatFloat(r.Beta),
		r.Mode.String(),
		fmt.Sprintf("%.6f", r.Entropy),
		fmt.Sprintf("%.6f", r.EffectiveMarkers),
		fmt.Sprintf("%.6f", r.MaxWeight),
		r.TopMarker,
	}
	for _, v := range r.Weights {
		row = append(row, fmt.Sprintf("%.6f", v))
	}
	return c.Results.Write(row)
}

// WriteSummary writes one summary row. It is a no-op without a summary file.
func (c *CSVWriter) WriteSummary(s Summary) error {
	if c.Summary == nil {
		return nil
	}
	return c.Summary.Write([]string{
		formatFloat(s.Beta),
		strconv.Itoa(s.Recordings),
		fmt.Sprintf("%.6f", s.EntropyMean),
		fmt.Sprintf("%.6f", s.EntropyStddev),
		fmt.Sprintf("%.6f", s.EffectiveMarkersMean),
		fmt.Sprintf("%.6f", s.EffectiveMarkersStddev),
	})
}

// Flush flushes both writers and reports the first write error.
func (c *CSVWriter) Flush() error {
	c.Results.Flush()
	if err := c.Results.Error(); err != nil {
		return err
	}
	if c.Summary != nil {
		c.Summary.Flush()
		return c.Summary.Error()
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
