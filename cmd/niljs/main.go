package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/rmja/niljs/internal/backend"
	"github.com/rmja/niljs/internal/builtins"
	"github.com/rmja/niljs/internal/config"
	"github.com/rmja/niljs/internal/evaluator"
	"github.com/rmja/niljs/internal/parser"
	"github.com/rmja/niljs/internal/pipeline"
)

var log = commonlog.GetLogger("niljs.cli")

const usage = `Usage:
  niljs [flags] [file]        run a script (stdin when no file is given)
  niljs test [flags] <dir>    run a conformance suite

Flags:
`

// cliOptions are the command-line settings shared by every mode.
type cliOptions struct {
	expr       string
	print      bool
	dump       bool
	configPath string
	verbosity  int
}

func (o *cliOptions) register(fs *flag.FlagSet) {
	fs.StringVar(&o.configPath, "config", "", "YAML configuration `file`")
	fs.IntVar(&o.verbosity, "v", -1, "log verbosity (overrides log.verbosity)")
}

func main() {
	if len(os.Args) >= 2 && os.Args[1] == "test" {
		os.Exit(runTestCommand(os.Args[2:], os.Stdout, os.Stderr))
	}
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// loadOptions reads the config file if one is given and configures logging.
func loadOptions(o *cliOptions) (config.Options, error) {
	opts := config.Default()
	if o.configPath != "" {
		var err error
		if opts, err = config.Load(o.configPath); err != nil {
			return opts, err
		}
	}
	if o.verbosity >= 0 {
		opts.Log.Verbosity = o.verbosity
	}
	var logFile *string
	if opts.Log.File != "" {
		logFile = &opts.Log.File
	}
	commonlog.Configure(opts.Log.Verbosity, logFile)
	return opts, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	var o cliOptions
	fs := flag.NewFlagSet("niljs", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}
	o.register(fs)
	fs.StringVar(&o.expr, "e", "", "evaluate `code` instead of a file")
	fs.BoolVar(&o.print, "p", false, "print the completion value")
	fs.BoolVar(&o.dump, "dump", false, "print the simplified program instead of running it")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	opts, err := loadOptions(&o)
	if err != nil {
		printError(stderr, err)
		return 1
	}

	var path, source string
	switch {
	case o.expr != "":
		path, source = "<eval>", o.expr
	case fs.NArg() > 0:
		path = fs.Arg(0)
		data, err := os.ReadFile(path)
		if err != nil {
			printError(stderr, err)
			return 1
		}
		source = string(data)
	case isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()):
		return runRepl(opts, stdout, stderr)
	default:
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			printError(stderr, err)
			return 1
		}
		path, source = "<stdin>", string(data)
	}

	host, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pctx := pipeline.NewContext(path, source, opts)
	pctx.IsEvalMode = o.expr != ""
	pctx.Host = host
	pctx.Realm = builtins.NewRealm(opts.Engine)
	pctx.Realm.Out = stdout
	var exec backend.Backend = backend.NewTreeWalk()
	if o.dump {
		exec = backend.NewDump(stdout)
	}
	log.Debugf("running %s with the %s backend", path, exec.Name())
	pctx = newPipeline(exec).Run(pctx)

	if pctx.Failed() {
		for _, err := range pctx.Errors {
			printError(stderr, err)
		}
		return 1
	}
	if (o.print || pctx.IsEvalMode) && !o.dump {
		fmt.Fprintln(stdout, display(pctx.Realm, pctx.Result))
	}
	return 0
}

func newPipeline(exec backend.Backend) *pipeline.Pipeline {
	return pipeline.New(
		&parser.ParserProcessor{},
		&pipeline.PrepareProcessor{},
		&pipeline.SimplifyProcessor{},
		backend.NewExecutionProcessor(exec),
	)
}

// display renders a completion value the way console.log would.
func display(realm *evaluator.Realm, v evaluator.Value) string {
	switch {
	case v.Kind() == evaluator.KindString:
		return v.Str()
	case realm == nil || v.IsPrimitive():
		return v.Inspect()
	}
	s, err := evaluator.ToString(realm.NewContext(context.Background()), v)
	if err != nil {
		return v.Inspect()
	}
	return s
}

// printError writes err to w, in red when w is a terminal.
func printError(w io.Writer, err error) {
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		fmt.Fprintf(w, "\x1b[31m%s\x1b[0m\n", err)
		return
	}
	fmt.Fprintln(w, err)
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".niljs_history")
}
