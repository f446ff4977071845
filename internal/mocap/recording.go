package mocap

import (
	"fmt"
	"strings"
)

// Recording is one gesture sample: raw and normalized marker positions at a
// fixed frame rate. Both tensors always share the marker and frame axes.
type Recording struct {
	// Project namespaces the recording in a weight table.
	Project string

	name    string
	markers []string
	raw     Positions
	norm    Positions
	fps     int
	frames  int
	dims    int
	std     float64

	active MarkerSelector

	weights      Weights
	displacement *Displacement
}

// NewRecording validates the tensors against the marker list and returns a
// recording that owns private copies of them. A nil normalized tensor means
// the raw positions are used until Normalize is called.
func NewRecording(name string, markers []string, raw, normalized Positions, fps int) (*Recording, error) {
	if fps <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFrameRate, fps)
	}
	seen := make(map[string]bool, len(markers))
	for _, m := range markers {
		if m == "" {
			return nil, fmt.Errorf("%w: empty marker name", ErrShapeMismatch)
		}
		if seen[m] {
			return nil, fmt.Errorf("%w: duplicate marker %q", ErrShapeMismatch, m)
		}
		seen[m] = true
	}

	frames := 0
	if len(raw) > 0 {
		frames = len(raw[0])
	}
	dims, err := raw.validate(len(markers), frames)
	if err != nil {
		return nil, fmt.Errorf("raw positions: %w", err)
	}
	if normalized == nil {
		normalized = raw
	}
	normDims, err := normalized.validate(len(markers), frames)
	if err != nil {
		return nil, fmt.Errorf("normalized positions: %w", err)
	}
	if normDims != dims {
		return nil, fmt.Errorf("%w: raw dims %d, normalized dims %d", ErrShapeMismatch, dims, normDims)
	}

	return &Recording{
		name:    name,
		markers: append([]string(nil), markers...),
		raw:     raw.Clone(),
		norm:    normalized.Clone(),
		fps:     fps,
		frames:  frames,
		dims:    dims,
	}, nil
}

// Name returns the recording name used as the weight-table key.
func (r *Recording) Name() string { return r.name }

// Markers returns a copy of the ordered marker list.
func (r *Recording) Markers() []string { return append([]string(nil), r.markers...) }

// RawPositions returns a copy of the raw tensor.
func (r *Recording) RawPositions() Positions { return r.raw.Clone() }

// NormalizedPositions returns a copy of the normalized tensor.
func (r *Recording) NormalizedPositions() Positions { return r.norm.Clone() }

// FrameRate returns frames per second.
func (r *Recording) FrameRate() int { return r.fps }

// FrameCount returns the number of frames in both tensors.
func (r *Recording) FrameCount() int { return r.frames }

// Dims returns the spatial dimension, 2 or 3 (0 for an empty recording).
func (r *Recording) Dims() int { return r.dims }

// Std returns the scale reported by the last Normalize call.
func (r *Recording) Std() float64 { return r.std }

// SetFrameRate updates the frame-rate metadata without touching the tensors.
// Use Resample to thin frames.
func (r *Recording) SetFrameRate(fps int) error {
	if fps <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidFrameRate, fps)
	}
	r.fps = fps
	return nil
}

// SetActiveMarkers stores the default active-marker selection after checking
// it against the marker list. Weights derived lazily use this selection, so
// any cached weights are dropped.
func (r *Recording) SetActiveMarkers(sel MarkerSelector) error {
	if _, _, err := sel.resolve(r.markers); err != nil {
		return err
	}
	r.active = sel
	r.invalidate()
	return nil
}

// ActiveSelector returns the stored active-marker selection.
func (r *Recording) ActiveSelector() MarkerSelector { return r.active }

// ActiveMarkers returns the names of the stored active-marker selection.
func (r *Recording) ActiveMarkers() []string {
	// SetActiveMarkers validated the selection and the marker list never changes.
	active, _, _ := r.active.resolve(r.markers)
	return active
}

// MarkerIDs returns the tensor axis index of every named marker.
func (r *Recording) MarkerIDs(names ...string) ([]int, error) {
	index := markerIndex(r.markers)
	ids := make([]int, 0, len(names))
	for _, name := range names {
		i, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown marker %q", ErrUndefinedMode, name)
		}
		ids = append(ids, i)
	}
	return ids, nil
}

// TruncateToLength resamples both tensors to exactly n frames, keeping the
// source frame floor(i*F/n) for each target index i. The recording is left
// unmodified on error.
func (r *Recording) TruncateToLength(n int) error {
	if n <= 0 || n > r.frames {
		return fmt.Errorf("%w: target %d frames, recording has %d", ErrInvalidLength, n, r.frames)
	}
	keep := make([]int, n)
	for i := range keep {
		keep[i] = i * r.frames / n
	}
	r.replaceFrames(keep)
	return nil
}

// Normalize replaces the normalized tensor with the normalizer's output for
// the raw tensor.
func (r *Recording) Normalize(n Normalizer) error {
	norm, std, err := n.Normalize(r.raw.Clone())
	if err != nil {
		return fmt.Errorf("normalize %s: %w", r.name, err)
	}
	dims, err := norm.validate(len(r.markers), r.frames)
	if err != nil {
		return fmt.Errorf("normalized positions: %w", err)
	}
	if r.frames > 0 && dims != r.dims {
		return fmt.Errorf("%w: normalizer changed dims from %d to %d", ErrShapeMismatch, r.dims, dims)
	}
	r.norm = norm
	r.std = std
	r.invalidate()
	return nil
}

func (r *Recording) replaceFrames(keep []int) {
	r.raw = r.raw.selectFrames(keep)
	r.norm = r.norm.selectFrames(keep)
	r.frames = len(keep)
	r.invalidate()
}

// invalidate drops the displacement and weights computed from the previous
// tensors or selection.
func (r *Recording) invalidate() {
	r.displacement = nil
	r.weights = Weights{}
}

// String summarises the recording.
func (r *Recording) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Motion name: %s\n", r.name)
	fmt.Fprintf(&b, "\t data.shape:\t(%d, %d, %d)\n", len(r.markers), r.frames, r.dims)
	fmt.Fprintf(&b, "\t FPS: \t\t\t %d\n", r.fps)
	fmt.Fprintf(&b, "\t data std: \t\t %.5f m ", r.std)
	return b.String()
}
