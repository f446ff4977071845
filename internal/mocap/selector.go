package mocap

import (
	"fmt"
	"strings"
)

// MarkerSelector chooses the active marker subset for displacement and
// weight computation. The zero value selects all markers.
type MarkerSelector struct {
	explicit bool
	names    []string
}

// AllMarkers selects every marker of the recording.
func AllMarkers() MarkerSelector {
	return MarkerSelector{}
}

// OnlyMarkers selects an explicit ordered subset. An empty list is a valid
// selection with no active markers.
func OnlyMarkers(names ...string) MarkerSelector {
	return MarkerSelector{explicit: true, names: append([]string{}, names...)}
}

// IsAll reports whether the selector means "all markers".
func (s MarkerSelector) IsAll() bool {
	return !s.explicit
}

// String renders the selector for logs and CLI output.
func (s MarkerSelector) String() string {
	if !s.explicit {
		return "all"
	}
	return "[" + strings.Join(s.names, ",") + "]"
}

// resolve maps the selector onto a marker list, returning the active subset
// in selector order and a per-marker membership mask in marker order.
func (s MarkerSelector) resolve(markers []string) ([]string, []bool, error) {
	mask := make([]bool, len(markers))
	if !s.explicit {
		for i := range mask {
			mask[i] = true
		}
		return append([]string(nil), markers...), mask, nil
	}

	index := markerIndex(markers)
	active := make([]string, 0, len(s.names))
	for _, name := range s.names {
		i, ok := index[name]
		if !ok {
			return nil, nil, fmt.Errorf("%w: unknown marker %q", ErrUndefinedMode, name)
		}
		if mask[i] {
			return nil, nil, fmt.Errorf("%w: marker %q selected twice", ErrUndefinedMode, name)
		}
		mask[i] = true
		active = append(active, name)
	}
	return active, mask, nil
}

func markerIndex(markers []string) map[string]int {
	index := make(map[string]int, len(markers))
	for i, m := range markers {
		index[m] = i
	}
	return index
}
