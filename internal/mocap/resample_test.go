package mocap

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDropIndices(t *testing.T) {
	testCases := []struct {
		name          string
		frames, fps   int
		target        int
		expectedDrops []int
	}{
		{"unset_target", 10, 10, 0, nil},
		{"no_upsampling", 10, 10, 12, nil},
		{"same_rate", 10, 10, 10, nil},
		{"half_rate", 10, 10, 5, []int{0, 2, 4, 6, 8}},
		{"drop_every_fifth", 10, 10, 8, []int{0, 5}},
		{"integer_stride", 12, 120, 100, []int{0, 6}},
		{"fractional_stride", 10, 10, 6, []int{0, 2, 5, 7}},
		{"stride_just_above_one", 6, 10, 1, []int{0, 1, 2, 3, 4, 5}},
		{"empty_recording", 0, 10, 5, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := DropIndices(tc.frames, tc.fps, tc.target)
			if diff := cmp.Diff(tc.expectedDrops, got); diff != "" {
				t.Errorf("DropIndices(%d, %d, %d) mismatch (-want +got):\n%s", tc.frames, tc.fps, tc.target, diff)
			}
		})
	}
}

func TestDropIndicesDeterministic(t *testing.T) {
	first := DropIndices(997, 120, 37)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, DropIndices(997, 120, 37))
	}
	for i := 1; i < len(first); i++ {
		assert.Greater(t, first[i], first[i-1], "indices must be strictly increasing")
	}
}

func TestResample(t *testing.T) {
	t.Parallel()

	rec := newTestRecording(t, []string{"a", "b"}, rampPositions(2, 10, 2), 10)

	require.NoError(t, rec.Resample(5))
	assert.Equal(t, 5, rec.FrameRate())
	assert.Equal(t, 5, rec.FrameCount())

	// Frames 1, 3, 5, 7, 9 survive in order in both tensors.
	for _, tensor := range []Positions{rec.RawPositions(), rec.NormalizedPositions()} {
		var xs []float64
		for _, frame := range tensor[0] {
			xs = append(xs, frame[0])
		}
		assert.Equal(t, []float64{1, 3, 5, 7, 9}, xs)
		assert.Len(t, tensor[1], 5)
	}
}

func TestResampleIdempotent(t *testing.T) {
	t.Parallel()

	rec := newTestRecording(t, []string{"a"}, rampPositions(1, 120, 3), 120)
	require.NoError(t, rec.Resample(100))
	frames := rec.FrameCount()
	positions := rec.RawPositions()

	require.NoError(t, rec.Resample(100))
	assert.Equal(t, 100, rec.FrameRate())
	assert.Equal(t, frames, rec.FrameCount())
	if diff := cmp.Diff(positions, rec.RawPositions()); diff != "" {
		t.Errorf("second resample changed data (-want +got):\n%s", diff)
	}
}

func TestResampleNoOp(t *testing.T) {
	t.Parallel()

	rec := newTestRecording(t, []string{"a"}, rampPositions(1, 8, 2), 30)
	for _, target := range []int{0, 30, 60} {
		require.NoError(t, rec.Resample(target))
		assert.Equal(t, 30, rec.FrameRate())
		assert.Equal(t, 8, rec.FrameCount())
	}

	err := rec.Resample(-5)
	assert.ErrorIs(t, err, ErrInvalidFrameRate)
}

func TestResampleRefusesToEmpty(t *testing.T) {
	t.Parallel()

	rec := newTestRecording(t, []string{"a"}, rampPositions(1, 2, 2), 10)
	err := rec.Resample(1)
	assert.ErrorIs(t, err, ErrInvalidLength)
	assert.Equal(t, 10, rec.FrameRate())
	assert.Equal(t, 2, rec.FrameCount())
}
