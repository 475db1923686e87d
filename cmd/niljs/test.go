package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/rmja/niljs/internal/conformance"
)

func runTestCommand(args []string, stdout, stderr io.Writer) int {
	var o cliOptions
	var dbPath string
	var quiet bool
	fs := flag.NewFlagSet("niljs test", flag.ContinueOnError)
	fs.SetOutput(stderr)
	o.register(fs)
	fs.StringVar(&dbPath, "db", "", "results `database` (overrides conformance.database, \"-\" disables it)")
	fs.BoolVar(&quiet, "q", false, "only print the summary")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "Usage: niljs test [flags] <dir> [dir...]")
		return 2
	}
	opts, err := loadOptions(&o)
	if err != nil {
		printError(stderr, err)
		return 1
	}
	if dbPath == "" {
		dbPath = opts.Conformance.Database
	}

	var store *conformance.Store
	if dbPath != "-" {
		if store, err = conformance.OpenStore(dbPath); err != nil {
			printError(stderr, err)
			return 1
		}
		defer store.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runner := conformance.NewRunner(opts, store)
	failed := false
	for _, dir := range fs.Args() {
		run, err := runner.RunDir(ctx, dir)
		if err != nil {
			printError(stderr, err)
			return 1
		}
		report(stdout, run, quiet)
		if run.Failed > 0 {
			failed = true
		}
	}
	if failed {
		return 1
	}
	return 0
}

func report(w io.Writer, run *conformance.Run, quiet bool) {
	if !quiet {
		for _, res := range run.Results {
			if !res.Passed {
				fmt.Fprintf(w, "FAIL %s\n     %s\n", res.Path, res.Message)
			}
		}
	}
	fmt.Fprintf(w, "%s: %d/%d passed (run %s)\n", run.Dir, run.Passed, run.Total(), run.ID)
	for _, path := range run.Regressions {
		fmt.Fprintf(w, "REGRESSION %s\n", path)
	}
}
