package main

import (
	"errors"
	"flag"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/banshee-data/gesture.report/internal/config"
	"github.com/banshee-data/gesture.report/internal/db"
	"github.com/banshee-data/gesture.report/internal/fsutil"
	"github.com/banshee-data/gesture.report/internal/ingest"
	"github.com/banshee-data/gesture.report/internal/mocap"
	"github.com/banshee-data/gesture.report/internal/mocap/storage/infojson"
	"github.com/banshee-data/gesture.report/internal/mocap/storage/sqlite"
	"github.com/banshee-data/gesture.report/internal/monitoring"
	"github.com/banshee-data/gesture.report/internal/timeutil"
)

// engineFlags are the recording and weighting flags shared by the
// subcommands that load recordings. Flags override the config file only
// when given on the command line.
type engineFlags struct {
	configPath    *string
	project       *string
	frameRate     *int
	targetFPS     *int
	gestureLength *int
	normalize     *bool
	weighting     *string
	beta          *float64
	active        *string
	weightDB      *string
	infoFile      *string
	boundaries    *string
	verbose       *bool
}

func addEngineFlags(fs *flag.FlagSet) *engineFlags {
	return &engineFlags{
		configPath:    fs.String("config", "", "Path to engine config JSON (defaults apply when empty)"),
		project:       fs.String("project", "", "Project namespace for weight tables"),
		frameRate:     fs.Int("fps", 0, "Capture frame rate of the recordings"),
		targetFPS:     fs.Int("target-fps", 0, "Resample recordings to this frame rate (0 keeps the rate)"),
		gestureLength: fs.Int("length", 0, "Truncate recordings to this many frames (0 keeps the length)"),
		normalize:     fs.Bool("normalize", true, "Std-normalize positions before computing activity"),
		weighting:     fs.String("weighting", "", "Weighting mode: uniform, proportional or exponential"),
		beta:          fs.Float64("beta", 0, "Saturation parameter for exponential weighting"),
		active:        fs.String("active", "", "Comma-separated active markers (default: all)"),
		weightDB:      fs.String("weight-db", "", "SQLite weight database path"),
		infoFile:      fs.String("info", "", "Project info JSON file with stored weights"),
		boundaries:    fs.String("boundaries", "", "CSV of recording,comment frame boundaries"),
		verbose:       fs.Bool("verbose", false, "Enable debug logging"),
	}
}

// resolve loads the config file and overlays the flags that were set.
func (f *engineFlags) resolve(fs *flag.FlagSet) (*config.EngineConfig, error) {
	cfg := config.EmptyEngineConfig()
	if *f.configPath != "" {
		loaded, err := config.LoadEngineConfig(*f.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	set := make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	o := config.EmptyEngineConfig()
	if set["project"] {
		o.Project = f.project
	}
	if set["fps"] {
		o.FrameRate = f.frameRate
	}
	if set["target-fps"] {
		o.TargetFPS = f.targetFPS
	}
	if set["length"] {
		o.GestureLength = f.gestureLength
	}
	if set["normalize"] {
		o.Normalize = f.normalize
	}
	if set["weighting"] {
		o.Weighting = f.weighting
	}
	if set["beta"] {
		o.Beta = f.beta
	}
	if set["active"] {
		o.ActiveMarkers = splitList(*f.active)
	}
	if set["weight-db"] {
		o.WeightDB = f.weightDB
	}
	if set["info"] {
		o.InfoFile = f.infoFile
	}
	cfg.Merge(o)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	monitoring.SetVerbose(*f.verbose)
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// selector returns the configured active marker subset.
func selector(cfg *config.EngineConfig) mocap.MarkerSelector {
	if m := cfg.GetActiveMarkers(); m != nil {
		return mocap.OnlyMarkers(m...)
	}
	return mocap.AllMarkers()
}

// loadRecordings loads each directory and prepares it the way cfg asks:
// resample, truncate, normalize, then select active markers.
func loadRecordings(fsys fsutil.FileSystem, cfg *config.EngineConfig, boundariesPath string, dirs []string) ([]*mocap.Recording, error) {
	if len(dirs) == 0 {
		return nil, fmt.Errorf("no recording directories given")
	}
	var bounds map[string]string
	if boundariesPath != "" {
		var err error
		if bounds, err = ingest.LoadBoundaries(fsys, boundariesPath); err != nil {
			return nil, err
		}
	}

	recs := make([]*mocap.Recording, 0, len(dirs))
	for _, dir := range dirs {
		name := filepath.Base(filepath.Clean(dir))
		rec, err := ingest.LoadDir(fsys, dir, ingest.Options{
			Project:   cfg.GetProject(),
			FrameRate: cfg.GetFrameRate(),
			Boundary:  bounds[name],
		})
		if err != nil {
			return nil, err
		}
		if err := prepare(rec, cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		monitoring.Debugf("[engine] loaded %s", rec)
		recs = append(recs, rec)
	}
	return recs, nil
}

func prepare(rec *mocap.Recording, cfg *config.EngineConfig) error {
	if fps := cfg.GetTargetFPS(); fps > 0 {
		if err := rec.Resample(fps); err != nil {
			return err
		}
	}
	if n := cfg.GetGestureLength(); n > 0 {
		if err := rec.TruncateToLength(n); err != nil {
			return err
		}
	}
	if cfg.GetNormalize() {
		if err := rec.Normalize(mocap.StdNormalizer{}); err != nil {
			return err
		}
	}
	return rec.SetActiveMarkers(selector(cfg))
}

// weightTable opens the configured weight table. The SQLite database wins
// over the info file when both are set. An info file that cannot be read
// counts as an absent table, so weights are derived; one that does not
// parse is an error. closeFn is never nil.
func weightTable(fsys fsutil.FileSystem, cfg *config.EngineConfig) (table mocap.WeightTable, closeFn func() error, err error) {
	noop := func() error { return nil }
	if path := cfg.GetWeightDB(); path != "" {
		database, err := db.NewDB(path)
		if err != nil {
			return nil, noop, err
		}
		return sqlite.NewWeightTableStore(database.DB, timeutil.RealClock{}), database.Close, nil
	}
	if path := cfg.GetInfoFile(); path != "" {
		t, err := infojson.LoadInfoFile(fsys, path, cfg.GetProject())
		if errors.Is(err, infojson.ErrUnreadable) {
			monitoring.Logf("[engine] %v, deriving weights", err)
			return nil, noop, nil
		}
		if err != nil {
			return nil, noop, err
		}
		return t, noop, nil
	}
	return nil, noop, nil
}
