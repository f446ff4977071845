package main

import (
	"context"
	"fmt"
	"log"

	"github.com/banshee-data/gesture.report/internal/mocap"
	"github.com/banshee-data/gesture.report/internal/mocap/storage/infojson"
)

// importMode is recorded as the mode of every imported entry.
const importMode = "imported"

type entrySaver interface {
	SaveEntry(ctx context.Context, project, name string, entry mocap.WeightEntry, mode string) error
}

// RunImport saves every recording of the info table into dst and returns
// how many entries were written, or would be in a dry run.
func RunImport(ctx context.Context, src *infojson.Table, dst entrySaver, dryRun bool) (int, error) {
	n := 0
	for _, name := range src.Recordings() {
		entry, ok, err := src.Lookup(ctx, src.Project, name)
		if err != nil {
			return n, err
		}
		if !ok {
			return n, fmt.Errorf("recording %s listed but not found", name)
		}
		if dryRun {
			log.Printf("would import %s/%s (%d weights)", src.Project, name, len(entry.Values))
			n++
			continue
		}
		if err := dst.SaveEntry(ctx, src.Project, name, entry, importMode); err != nil {
			return n, fmt.Errorf("import %s: %w", name, err)
		}
		n++
	}
	return n, nil
}
