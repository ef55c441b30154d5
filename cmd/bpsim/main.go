// Command bpsim runs a branch-direction predictor over a branch trace and
// reports its misprediction rate.
//
// Usage:
//
//	bpsim [flags] [trace]
//
// The trace holds one "<pc> <outcome>" pair per line (pc in hex, outcome 0
// or 1) and may be gzip or bzip2 compressed. Without a trace argument, or
// with "-", the trace is read from standard input.
//
// Flags:
//
//	-bp <scheme[:ghist[:lhist[:pcindex]]]>  predictor, e.g. gshare:13 or tournament:9:10:10
//	-config <file>  predictor JSON config (overridden by -bp)
//	-n <N>          stop after N branches
//	-v              log every prediction and training step to stderr
//	-json           print the result as JSON
//	-csv            print the result as CSV (not with -json)
//	-db <file>      append the result to a SQLite result store
//	-history        list the results stored in -db and exit
//
// Example:
//
//	bunzip2 -kc traces/fp_1.bz2 | bpsim -bp gshare:13
//	bpsim -bp custom -db runs.db traces/int_2.bz2
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sarchlab/bpsim/predictor"
	"github.com/sarchlab/bpsim/results"
	"github.com/sarchlab/bpsim/trace"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	bp         string
	configPath string
	maxBranch  uint64
	verbose    bool
	jsonOutput bool
	csvOutput  bool
	dbPath     string
	history    bool
	tracePath  string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("bpsim", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.bp, "bp", "", "Predictor: static, gshare:<g>, tournament:<g>:<l>:<pc>, custom")
	fs.StringVar(&opts.configPath, "config", "", "Path to predictor configuration JSON file")
	fs.Uint64Var(&opts.maxBranch, "n", 0, "Stop after this many branches (0 = whole trace)")
	fs.BoolVar(&opts.verbose, "v", false, "Log every prediction and training step to stderr")
	fs.BoolVar(&opts.jsonOutput, "json", false, "Output the result as JSON")
	fs.BoolVar(&opts.csvOutput, "csv", false, "Output the result, or stored results with -history, as CSV")
	fs.StringVar(&opts.dbPath, "db", "", "Path to the SQLite result store")
	fs.BoolVar(&opts.history, "history", false, "List stored results from -db and exit")
	fs.Usage = func() {
		_, _ = fmt.Fprintf(stderr, "Usage: bpsim [options] [trace]\n")
		_, _ = fmt.Fprintf(stderr, "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	switch fs.NArg() {
	case 0:
		opts.tracePath = "-"
	case 1:
		opts.tracePath = fs.Arg(0)
	default:
		fs.Usage()
		return opts, fmt.Errorf("expected at most one trace, got %d", fs.NArg())
	}

	if opts.history && opts.dbPath == "" {
		return opts, fmt.Errorf("-history requires -db")
	}

	if opts.jsonOutput && opts.csvOutput {
		return opts, fmt.Errorf("-json and -csv cannot be combined")
	}

	return opts, nil
}

func loadConfig(opts options) (predictor.Config, error) {
	cfg := predictor.DefaultConfig()
	if opts.configPath != "" {
		var err error
		cfg, err = predictor.LoadConfig(opts.configPath)
		if err != nil {
			return cfg, err
		}
	}

	if opts.bp != "" {
		return predictor.ParseConfigOver(cfg, opts.bp)
	}

	return cfg, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if opts.history {
		return listHistory(opts, stdout, stderr)
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error loading predictor config: %v\n", err)
		return 1
	}

	bp, err := predictor.New(cfg)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error configuring predictor: %v\n", err)
		return 1
	}
	defer bp.Teardown()

	if opts.verbose {
		bp.AcceptHook(trace.NewEventLogger(stderr))
	}

	tr, err := trace.Open(opts.tracePath)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer func() { _ = tr.Close() }()

	runner := trace.NewRunner(bp)
	runner.MaxBranches = opts.maxBranch

	start := time.Now()
	stats, err := runner.Run(tr)
	wall := time.Since(start)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error reading trace: %v\n", err)
		return 1
	}

	if stats.Ignored > 0 {
		_, _ = fmt.Fprintf(stderr, "Warning: ignored %d records with unknown outcomes\n", stats.Ignored)
	}

	result := results.NewResult(traceName(opts.tracePath), bp.Config(), stats, wall)

	switch {
	case opts.jsonOutput:
		if err := results.PrintJSON(stdout, []results.Result{result}); err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	case opts.csvOutput:
		results.PrintCSV(stdout, []results.Result{result})
	default:
		_, _ = fmt.Fprintf(stdout, "Predictor: %s\n", bp.Config())
		results.Print(stdout, result)
	}

	if opts.dbPath != "" {
		if err := saveResult(opts.dbPath, result); err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}

	return 0
}

func traceName(path string) string {
	if path == "-" {
		return "stdin"
	}
	return filepath.Base(path)
}

func saveResult(dbPath string, r results.Result) error {
	store, err := results.OpenStore(dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	return store.Save(r)
}

func listHistory(opts options, stdout, stderr io.Writer) int {
	store, err := results.OpenStore(opts.dbPath)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer func() { _ = store.Close() }()

	rs, err := store.List()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	switch {
	case opts.jsonOutput:
		if err := results.PrintJSON(stdout, rs); err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	case opts.csvOutput:
		results.PrintCSV(stdout, rs)
	default:
		for _, r := range rs {
			_, _ = fmt.Fprintf(stdout, "%s  %-12s %-22s %10d branches  %7.3f%%\n",
				r.CreatedAt.Local().Format(time.DateTime), r.Trace, schemeLabel(r),
				r.Branches, r.MispredictionRate)
		}
	}

	return 0
}

func schemeLabel(r results.Result) string {
	switch r.Scheme {
	case predictor.Gshare.String():
		return fmt.Sprintf("%s:%d", r.Scheme, r.GHistoryBits)
	case predictor.Static.String():
		return r.Scheme
	default:
		return fmt.Sprintf("%s:%d:%d:%d", r.Scheme, r.GHistoryBits, r.LHistoryBits, r.PCIndexBits)
	}
}
