package pipeline

import (
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/rmja/niljs/internal/evaluator"
)

var log = commonlog.GetLogger("niljs.pipeline")

// DiagnosticError is an error-severity diagnostic reported by Prepare.
type DiagnosticError struct {
	File       string
	Diagnostic evaluator.Diagnostic
}

func (e *DiagnosticError) Error() string {
	if e.File == "" {
		return "SyntaxError: " + e.Diagnostic.Message
	}
	return fmt.Sprintf("%s: SyntaxError: %s", e.File, e.Diagnostic.Message)
}

// PrepareProcessor runs binding resolution. Warnings are logged; errors
// stop the pipeline before execution.
type PrepareProcessor struct{}

func (pp *PrepareProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Script == nil || ctx.Failed() {
		return ctx
	}
	for _, d := range ctx.Script.Prepare() {
		if d.Severity == evaluator.SeverityError {
			ctx.Errors = append(ctx.Errors, &DiagnosticError{File: ctx.FilePath, Diagnostic: d})
			continue
		}
		log.Warningf("%s: %s", ctx.FilePath, d)
	}
	return ctx
}

// SimplifyProcessor runs the simplification pass unless engine.simplify
// is off.
type SimplifyProcessor struct{}

func (sp *SimplifyProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Script == nil || ctx.Failed() {
		return ctx
	}
	if !ctx.Options.Engine.Simplify {
		log.Debugf("%s: simplification disabled", ctx.FilePath)
		return ctx
	}
	ctx.Script.Simplify()
	return ctx
}
