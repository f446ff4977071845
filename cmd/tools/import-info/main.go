// Command import-info copies the stored weights of a project info file into
// the SQLite weight database.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/banshee-data/gesture.report/internal/db"
	"github.com/banshee-data/gesture.report/internal/fsutil"
	"github.com/banshee-data/gesture.report/internal/mocap/storage/infojson"
	"github.com/banshee-data/gesture.report/internal/mocap/storage/sqlite"
	"github.com/banshee-data/gesture.report/internal/timeutil"
)

func main() {
	dbPath := flag.String("db", "gesture_weights.db", "path to sqlite weight DB file")
	infoPath := flag.String("info", "", "path to <PROJECT>_INFO.json (required)")
	project := flag.String("project", "mocap", "project the weights belong to")
	dry := flag.Bool("dry-run", false, "don't write changes; just report")
	flag.Parse()

	if *infoPath == "" {
		log.Fatalf("-info is required (e.g. -info %s)", infojson.FileName(*project))
	}

	table, err := infojson.LoadInfoFile(fsutil.OSFileSystem{}, *infoPath, *project)
	if err != nil {
		log.Fatalf("load info file: %v", err)
	}

	database, err := db.NewDB(*dbPath)
	if err != nil {
		log.Fatalf("open weight DB: %v", err)
	}
	defer database.Close()

	store := sqlite.NewWeightTableStore(database.DB, timeutil.RealClock{})
	imported, err := RunImport(context.Background(), table, store, *dry)
	if err != nil {
		log.Fatalf("import failed: %v", err)
	}
	log.Printf("done: project=%s imported=%d dry-run=%v", *project, imported, *dry)
}
