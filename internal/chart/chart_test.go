package chart

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/gesture.report/internal/mocap"
	"github.com/banshee-data/gesture.report/internal/testutil"
)

func fixtureActivity(t *testing.T, highlight ...string) Activity {
	t.Helper()
	rec := testutil.ThreeMarkerRecording(t, "wave")
	d, err := rec.ComputeDisplacement(mocap.OnlyMarkers("lhand", "rhand"))
	require.NoError(t, err)
	w, err := rec.DeriveWeights(mocap.OnlyMarkers("lhand", "rhand"), mocap.ProportionalMode())
	require.NoError(t, err)
	a, err := FromDisplacement("wave", d, w, highlight...)
	require.NoError(t, err)
	return a
}

func TestFromDisplacement(t *testing.T) {
	t.Parallel()

	a := fixtureActivity(t, "rhand")
	want := Activity{
		Title:     "wave",
		Markers:   []string{"lhand", "rhand"},
		Values:    []float64{10, 21},
		Weights:   []float64{10.0 / 31.0, 21.0 / 31.0},
		Highlight: []string{"rhand"},
	}
	if diff := cmp.Diff(want, a, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("activity mismatch (-want +got):\n%s", diff)
	}
}

func TestFromDisplacementWithoutWeights(t *testing.T) {
	t.Parallel()

	rec := testutil.ThreeMarkerRecording(t, "wave")
	d, err := rec.ComputeDisplacement(mocap.AllMarkers())
	require.NoError(t, err)

	a, err := FromDisplacement("wave", d, mocap.Weights{})
	require.NoError(t, err)
	assert.Equal(t, testutil.FixtureMarkers, a.Markers)
	assert.Nil(t, a.Weights)
}

func TestFromDisplacementErrors(t *testing.T) {
	t.Parallel()

	rec := testutil.ThreeMarkerRecording(t, "wave")
	d, err := rec.ComputeDisplacement(mocap.OnlyMarkers("lhand"))
	require.NoError(t, err)

	_, err = FromDisplacement("wave", d, mocap.Weights{}, "head")
	assert.ErrorIs(t, err, ErrUnknownHighlight)

	empty := &mocap.Displacement{
		Markers: []string{"head"},
		Active:  []bool{false},
		Stats:   []mocap.DisplacementStats{{}},
	}
	_, err = FromDisplacement("wave", empty, mocap.Weights{})
	assert.ErrorIs(t, err, ErrNoActiveMarkers)
}

func TestWritePNG(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		highlight []string
	}{
		{"plain", nil},
		{"highlighted", []string{"lhand"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WritePNG(&buf, fixtureActivity(t, tc.highlight...)))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG\r\n\x1a\n")), "output is not a PNG")
		})
	}
}

func TestWritePNGRejectsMismatch(t *testing.T) {
	t.Parallel()

	a := Activity{Title: "bad", Markers: []string{"a", "b"}, Values: []float64{1}}
	var buf bytes.Buffer
	assert.Error(t, WritePNG(&buf, a))
	assert.Zero(t, buf.Len())
}

func TestWriteHTML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, fixtureActivity(t, "rhand"), HTMLOptions{Subtitle: "proportional"}))

	html := buf.String()
	for _, want := range []string{"lhand", "rhand", HighlightColor, "wave joint displacements", "wave marker weights", DefaultAssetsHost} {
		assert.Contains(t, html, want)
	}
}

func TestWriteHTMLWithoutWeights(t *testing.T) {
	t.Parallel()

	a := fixtureActivity(t)
	a.Weights = nil

	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, a, HTMLOptions{AssetsHost: "/assets/"}))

	html := buf.String()
	assert.Contains(t, html, "/assets/")
	assert.NotContains(t, html, "marker weights")
	assert.NotContains(t, html, HighlightColor)
}
