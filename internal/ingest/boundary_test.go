package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/gesture.report/internal/fsutil"
	"github.com/banshee-data/gesture.report/internal/mocap"
)

func TestParseBoundary(t *testing.T) {
	testCases := []struct {
		name      string
		comment   string
		expected  Boundary
		expectErr bool
	}{
		{"both", "begin from 40 stop on 310", Boundary{40, 310}, false},
		{"begin_only", "begin from 12", Boundary{12, -1}, false},
		{"stop_only", "stop on 200", Boundary{0, 200}, false},
		{"padded", "  begin from 3   stop on 9 ", Boundary{3, 9}, false},
		{"no_keywords", "looks fine", Boundary{0, -1}, false},
		{"bad_begin", "begin from x", Boundary{}, true},
		{"bad_stop", "stop on soon", Boundary{}, true},
		{"empty_range", "begin from 5 stop on 5", Boundary{}, true},
		{"inverted", "begin from 9 stop on 3", Boundary{}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := ParseBoundary(tc.comment)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, b)
		})
	}
}

func TestBoundaryCut(t *testing.T) {
	p := mocap.Positions{
		{{0}, {1}, {2}, {3}},
		{{10}, {11}, {12}, {13}},
	}

	got, err := Boundary{Begin: 1, End: 3}.Cut(p)
	require.NoError(t, err)
	assert.Equal(t, mocap.Positions{{{1}, {2}}, {{11}, {12}}}, got)

	got, err = Boundary{Begin: 2, End: 100}.Cut(p)
	require.NoError(t, err)
	assert.Equal(t, mocap.Positions{{{2}, {3}}, {{12}, {13}}}, got)

	_, err = Boundary{Begin: 4, End: -1}.Cut(p)
	assert.ErrorIs(t, err, mocap.ErrInvalidLength)
}

func TestLoadBoundaries(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	require.NoError(t, fs.WriteFile("/b.csv", []byte("01-1-1,begin from 4\n01-1-2,\n01-1-3, stop on 90\n"), 0o644))

	got, err := LoadBoundaries(fs, "/b.csv")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"01-1-1": "begin from 4", "01-1-3": "stop on 90"}, got)

	require.NoError(t, fs.WriteFile("/bad.csv", []byte("a,b,c\n"), 0o644))
	_, err = LoadBoundaries(fs, "/bad.csv")
	assert.Error(t, err)

	_, err = LoadBoundaries(fs, "/missing.csv")
	assert.Error(t, err)
}
