package mocap

import (
	"fmt"
	"math"

	"github.com/banshee-data/gesture.report/internal/monitoring"
)

// DropIndices returns the frame indices thinned when reducing fps to
// targetFPS over a recording of the given length: floor(k*stride) for
// k = 0, 1, 2, ... while below frames, with stride = fps/(fps-targetFPS).
// It returns nil when no thinning applies.
func DropIndices(frames, fps, targetFPS int) []int {
	if targetFPS <= 0 || targetFPS >= fps || frames <= 0 {
		return nil
	}
	stride := float64(fps) / float64(fps-targetFPS)
	drop := make([]int, 0, frames)
	last := -1
	for k := 0; ; k++ {
		idx := int(math.Floor(float64(k) * stride))
		if idx >= frames {
			break
		}
		if idx != last {
			drop = append(drop, idx)
			last = idx
		}
	}
	return drop
}

// Resample lowers the frame rate to targetFPS by deleting the frames listed
// by DropIndices from both tensors in one pass. A zero target, or a target
// at or above the current rate, is a no-op since upsampling is not
// supported. The recording is left unmodified when thinning would remove
// every frame.
func (r *Recording) Resample(targetFPS int) error {
	if targetFPS < 0 {
		return fmt.Errorf("%w: target %d", ErrInvalidFrameRate, targetFPS)
	}
	drop := DropIndices(r.frames, r.fps, targetFPS)
	if drop == nil {
		return nil
	}

	dropped := make([]bool, r.frames)
	for _, idx := range drop {
		dropped[idx] = true
	}
	keep := make([]int, 0, r.frames-len(drop))
	for f := 0; f < r.frames; f++ {
		if !dropped[f] {
			keep = append(keep, f)
		}
	}
	if len(keep) == 0 {
		return fmt.Errorf("%w: resampling %d frames from %d to %d fps leaves none", ErrInvalidLength, r.frames, r.fps, targetFPS)
	}

	monitoring.Debugf("[mocap] %s: resample %d->%d fps drops %d of %d frames", r.name, r.fps, targetFPS, len(drop), r.frames)
	r.replaceFrames(keep)
	r.fps = targetFPS
	return nil
}
