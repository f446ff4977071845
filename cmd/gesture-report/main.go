// Command gesture-report derives per-marker weights for motion-capture
// recordings, sweeps saturation parameters, charts marker activity and
// manages the calibrated weight database.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/banshee-data/gesture.report/internal/fsutil"
	"github.com/banshee-data/gesture.report/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// app carries the process environment of one invocation.
type app struct {
	fsys   fsutil.FileSystem
	stdout io.Writer
	stderr io.Writer
}

func run(args []string, stdout, stderr io.Writer) int {
	a := &app{fsys: fsutil.OSFileSystem{}, stdout: stdout, stderr: stderr}
	return a.run(args)
}

func (a *app) run(args []string) int {
	if len(args) < 1 {
		a.printUsage()
		return 2
	}

	command, rest := args[0], args[1:]
	var err error
	switch command {
	case "weights":
		err = a.handleWeights(rest)
	case "sweep":
		err = a.handleSweep(rest)
	case "plot":
		err = a.handlePlot(rest)
	case "calibrate":
		err = a.handleCalibrate(rest)
	case "migrate":
		err = a.handleMigrate(rest)
	case "serve":
		err = a.handleServe(rest)
	case "version":
		fmt.Fprintf(a.stdout, "gesture-report %s\n", version.String())
	case "help", "-h", "--help":
		a.printUsage()
	default:
		fmt.Fprintf(a.stderr, "Unknown command: %s\n\n", command)
		a.printUsage()
		return 2
	}

	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(a.stderr, "gesture-report %s: %v\n", command, err)
		return 1
	}
	return 0
}

func (a *app) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func (a *app) printUsage() {
	fmt.Fprintln(a.stderr, `gesture-report - per-marker weighting for motion-capture recordings

Usage: gesture-report <command> [options] [recording-dir ...]

Commands:
  weights    Print marker weights for each recording
  sweep      Derive weights over a range of betas and write CSV metrics
  plot       Chart marker activity as PNG or HTML
  calibrate  Average weights over recordings of a gesture into the weight DB
  migrate    Manage weight database schema migrations
  serve      Serve the weight database API and debug UI
  version    Show version information
  help       Show this help message

A recording directory holds one <marker>.csv file per marker, each row a
frame of comma-separated coordinates.

Examples:
  gesture-report weights -fps 120 -active lhand,rhand data/wave-01
  gesture-report sweep -betas 0:1:0.1 -out sweep.csv data/wave-*
  gesture-report plot -format html -highlight rhand -out wave.html data/wave-01
  gesture-report calibrate -weight-db weights.db -gesture wave data/wave-*
  gesture-report migrate -db weights.db status`)
}
