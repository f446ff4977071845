package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/banshee-data/gesture.report/internal/chart"
	"github.com/banshee-data/gesture.report/internal/db"
	"github.com/banshee-data/gesture.report/internal/mocap"
	"github.com/banshee-data/gesture.report/internal/mocap/storage/sqlite"
	"github.com/banshee-data/gesture.report/internal/monitoring"
	"github.com/banshee-data/gesture.report/internal/security"
	"github.com/banshee-data/gesture.report/internal/sweep"
	"github.com/banshee-data/gesture.report/internal/timeutil"
)

// defaultDBPath is used by migrate and serve when -db is not given.
const defaultDBPath = "gesture_weights.db"

type weightsReport struct {
	Recording string             `json:"recording"`
	Mode      string             `json:"mode"`
	Markers   []string           `json:"markers"`
	Weights   map[string]float64 `json:"weights"`
}

func (a *app) handleWeights(args []string) error {
	fs := a.newFlagSet("weights")
	ef := addEngineFlags(fs)
	asJSON := fs.Bool("json", false, "Print weights as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := ef.resolve(fs)
	if err != nil {
		return err
	}
	mode, err := mocap.ParseWeightMode(cfg.GetWeighting())
	if err != nil {
		return err
	}
	recs, err := loadRecordings(a.fsys, cfg, *ef.boundaries, fs.Args())
	if err != nil {
		return err
	}
	table, closeTable, err := weightTable(a.fsys, cfg)
	if err != nil {
		return err
	}
	defer closeTable()

	ctx := context.Background()
	reports := make([]weightsReport, 0, len(recs))
	for _, rec := range recs {
		var w mocap.Weights
		if table != nil {
			w, err = mocap.NewWeightStore(table).LoadOrCompute(ctx, rec)
		} else {
			w, err = rec.DeriveWeights(rec.ActiveSelector(), mode)
		}
		if err != nil {
			return err
		}
		reports = append(reports, weightsReport{
			Recording: rec.Name(),
			Mode:      w.Mode.String(),
			Markers:   w.Markers(),
			Weights:   w.Map(),
		})
	}

	if *asJSON {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	for _, r := range reports {
		fmt.Fprintf(tw, "%s\t(%s)\n", r.Recording, r.Mode)
		for _, m := range r.Markers {
			fmt.Fprintf(tw, "  %s\t%.6f\n", m, r.Weights[m])
		}
	}
	return tw.Flush()
}

func (a *app) handleSweep(args []string) error {
	fs := a.newFlagSet("sweep")
	ef := addEngineFlags(fs)
	betaList := fs.String("betas", "0,0.001,0.01,0.1,1", "Comma-separated betas or min:max:step range; 0 means proportional")
	out := fs.String("out", "", "Per-recording results CSV (default: stdout)")
	summaryOut := fs.String("summary", "", "Per-beta summary CSV (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := ef.resolve(fs)
	if err != nil {
		return err
	}
	betas, err := sweep.ParseBetaList(*betaList)
	if err != nil {
		return err
	}
	recs, err := loadRecordings(a.fsys, cfg, *ef.boundaries, fs.Args())
	if err != nil {
		return err
	}

	results, err := sweep.Run(recs, selector(cfg), betas)
	if err != nil {
		return err
	}

	resultsW := a.stdout
	if *out != "" {
		f, err := a.fsys.Create(*out)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", *out, err)
		}
		defer f.Close()
		resultsW = f
	}
	var summaryW io.Writer
	if *summaryOut != "" {
		f, err := a.fsys.Create(*summaryOut)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", *summaryOut, err)
		}
		defer f.Close()
		summaryW = f
	}

	w := sweep.NewCSVWriter(resultsW, summaryW)
	if err := w.WriteHeaders(recs[0].Markers()); err != nil {
		return err
	}
	for _, r := range results {
		if err := w.WriteResult(r); err != nil {
			return err
		}
	}
	for _, s := range sweep.Summarise(results) {
		if err := w.WriteSummary(s); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	monitoring.Logf("[sweep] %d recordings x %d betas", len(recs), len(betas))
	return nil
}

func (a *app) handlePlot(args []string) error {
	fs := a.newFlagSet("plot")
	ef := addEngineFlags(fs)
	format := fs.String("format", "png", "Output format: png or html")
	out := fs.String("out", "", "Output file (default: <recording>.<format> in -out-dir)")
	outDir := fs.String("out-dir", ".", "Directory for the default output file")
	highlight := fs.String("highlight", "", "Comma-separated markers to highlight")
	title := fs.String("title", "", "Chart title (default: recording name)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("plot takes exactly one recording directory, got %d", fs.NArg())
	}
	cfg, err := ef.resolve(fs)
	if err != nil {
		return err
	}
	mode, err := mocap.ParseWeightMode(cfg.GetWeighting())
	if err != nil {
		return err
	}
	recs, err := loadRecordings(a.fsys, cfg, *ef.boundaries, fs.Args())
	if err != nil {
		return err
	}
	rec := recs[0]

	w, err := rec.DeriveWeights(rec.ActiveSelector(), mode)
	if err != nil {
		return err
	}
	name := *title
	if name == "" {
		name = rec.Name()
	}
	activity, err := chart.FromDisplacement(name, rec.LastDisplacement(), w, splitList(*highlight)...)
	if err != nil {
		return err
	}

	path := *out
	if path == "" {
		if path, err = security.OutputPath(*outDir, rec.Name(), "."+strings.ToLower(*format)); err != nil {
			return err
		}
	}
	f, err := a.fsys.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(*format) {
	case "png":
		err = chart.WritePNG(f, activity)
	case "html":
		err = chart.WriteHTML(f, activity, chart.HTMLOptions{Subtitle: w.Mode.String()})
	default:
		err = fmt.Errorf("unknown format %q: want png or html", *format)
	}
	if err != nil {
		return err
	}
	monitoring.Logf("[plot] wrote %s", path)
	return nil
}

func (a *app) handleCalibrate(args []string) error {
	fs := a.newFlagSet("calibrate")
	ef := addEngineFlags(fs)
	gesture := fs.String("gesture", "", "Gesture name recorded with the run (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *gesture == "" {
		fs.Usage()
		return fmt.Errorf("-gesture is required")
	}
	cfg, err := ef.resolve(fs)
	if err != nil {
		return err
	}
	if cfg.GetWeightDB() == "" {
		return fmt.Errorf("calibrate needs a weight database: set -weight-db or weight_db")
	}
	mode, err := mocap.ParseWeightMode(cfg.GetWeighting())
	if err != nil {
		return err
	}
	recs, err := loadRecordings(a.fsys, cfg, *ef.boundaries, fs.Args())
	if err != nil {
		return err
	}

	database, err := db.NewDB(cfg.GetWeightDB())
	if err != nil {
		return err
	}
	defer database.Close()

	store := sqlite.NewWeightTableStore(database.DB, timeutil.RealClock{})
	run, err := store.Calibrate(context.Background(), cfg.GetProject(), *gesture, recs, selector(cfg), mode)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(run)
}

func (a *app) handleMigrate(args []string) error {
	fs := a.newFlagSet("migrate")
	dbPath := fs.String("db", defaultDBPath, "Path to the SQLite weight database")
	fs.Usage = func() {
		fmt.Fprintln(a.stderr, "Usage: gesture-report migrate [-db path] <action>")
		db.PrintMigrateHelp(a.stderr)
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	return db.RunMigrateCommand(fs.Args(), *dbPath, a.stdout)
}
