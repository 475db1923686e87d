package conformance

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	"github.com/rmja/niljs/internal/backend"
	"github.com/rmja/niljs/internal/builtins"
	"github.com/rmja/niljs/internal/config"
	"github.com/rmja/niljs/internal/evaluator"
	"github.com/rmja/niljs/internal/parser"
	"github.com/rmja/niljs/internal/pipeline"
)

var log = commonlog.GetLogger("niljs.conformance")

// Result is the outcome of one test file.
type Result struct {
	Path     string
	Passed   bool
	Message  string
	Duration time.Duration
}

// Run is one pass over a test directory.
type Run struct {
	ID         string
	Dir        string
	StartedAt  time.Time
	FinishedAt time.Time
	Passed     int
	Failed     int
	Results    []Result
	// Regressions are tests that passed in the previous stored run over
	// the same directory and fail in this one.
	Regressions []string
}

func (r *Run) Total() int { return r.Passed + r.Failed }

// Runner executes conformance tests, each in a fresh realm.
type Runner struct {
	opts  config.Options
	store *Store
}

// NewRunner creates a runner. store may be nil to skip recording.
func NewRunner(opts config.Options, store *Store) *Runner {
	return &Runner{opts: opts, store: store}
}

// Collect lists the test files under dir in a stable order.
func Collect(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && slices.Contains(config.SourceFileExtensions, filepath.Ext(path)) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(files)
	return files, nil
}

// RunDir runs every test under dir and records the run if the runner has
// a store.
func (r *Runner) RunDir(ctx context.Context, dir string) (*Run, error) {
	files, err := Collect(dir)
	if err != nil {
		return nil, fmt.Errorf("collect tests: %w", err)
	}
	run := &Run{ID: uuid.NewString(), Dir: dir, StartedAt: time.Now()}
	log.Infof("run %s: %d tests in %s", run.ID, len(files), dir)

	if r.store != nil {
		if err := r.store.BeginRun(ctx, run); err != nil {
			return nil, err
		}
	}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res := r.RunFile(ctx, path)
		if res.Passed {
			run.Passed++
		} else {
			run.Failed++
			log.Debugf("FAIL %s: %s", res.Path, res.Message)
		}
		run.Results = append(run.Results, res)
		if r.store != nil {
			if err := r.store.Record(ctx, run.ID, res); err != nil {
				return nil, err
			}
		}
	}
	run.FinishedAt = time.Now()
	log.Infof("run %s: %d passed, %d failed", run.ID, run.Passed, run.Failed)

	if r.store == nil {
		return run, nil
	}
	if err := r.store.FinishRun(ctx, run); err != nil {
		return nil, err
	}
	prev, ok, err := r.store.PreviousRun(ctx, dir, run.ID)
	if err != nil {
		return nil, err
	}
	if ok {
		if run.Regressions, err = r.store.Regressions(ctx, prev, run.ID); err != nil {
			return nil, err
		}
	}
	return run, nil
}

// RunFile runs a single test file.
func (r *Runner) RunFile(ctx context.Context, path string) Result {
	start := time.Now()
	res := Result{Path: path}
	src, err := os.ReadFile(path)
	if err != nil {
		res.Message = err.Error()
		return res
	}
	tf, err := ParseTestFile(path, string(src))
	if err != nil {
		res.Message = err.Error()
		return res
	}
	res.Passed, res.Message = r.Check(ctx, tf)
	res.Duration = time.Since(start)
	return res
}

// Check runs tf and compares the outcome with its expectation.
func (r *Runner) Check(ctx context.Context, tf *TestFile) (bool, string) {
	if r.opts.Conformance.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Conformance.Timeout)
		defer cancel()
	}

	realm := builtins.NewRealm(r.opts.Engine)
	var out bytes.Buffer
	realm.Out = &out

	if !tf.HasFlag("raw") {
		if errs := r.execute(ctx, realm, "harness.js", harness); len(errs) > 0 {
			return false, "harness: " + errs[0].Error()
		}
	}
	errs := r.execute(ctx, realm, tf.Path, tf.Program())

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return false, "timed out"
	}
	if !tf.IsNegative() {
		if len(errs) > 0 {
			return false, errs[0].Error()
		}
		return true, ""
	}
	if len(errs) == 0 {
		return false, "expected an error"
	}
	phase, name := classify(errs[0])
	if want := tf.Negative.Phase; want != "" && !phaseMatches(want, phase) {
		return false, fmt.Sprintf("expected a %s error, got %s error: %v", want, phase, errs[0])
	}
	if want := tf.Negative.Type; want != "" && want != name {
		return false, fmt.Sprintf("expected %s, got %v", want, errs[0])
	}
	return true, ""
}

func (r *Runner) execute(ctx context.Context, realm *evaluator.Realm, file, source string) []error {
	pctx := pipeline.NewContext(file, source, r.opts)
	pctx.Host = ctx
	pctx.Realm = realm
	pctx = pipeline.New(
		&parser.ParserProcessor{},
		&pipeline.PrepareProcessor{},
		&pipeline.SimplifyProcessor{},
		backend.NewExecutionProcessor(backend.NewTreeWalk()),
	).Run(pctx)
	return pctx.Errors
}

// classify returns the phase that raised err and the name of the error.
// Thrown objects report their own name, so harness errors such as
// Test262Error are told apart from builtin kinds.
func classify(err error) (phase, name string) {
	var rt *backend.RuntimeError
	if !errors.As(err, &rt) {
		return "parse", evaluator.ErrSyntax.String()
	}
	var exc *evaluator.Exception
	if !errors.As(err, &exc) {
		return "runtime", ""
	}
	if n := exc.Name(); n != "" {
		return "runtime", n
	}
	return "runtime", exc.Kind().String()
}

// phaseMatches treats early errors as parse errors since both are raised
// before the script runs.
func phaseMatches(want, got string) bool {
	switch want {
	case "parse", "early":
		return got == "parse"
	case "runtime", "resolution":
		return got == "runtime"
	}
	return false
}
