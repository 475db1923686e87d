package backend

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rmja/niljs/internal/evaluator"
	"github.com/rmja/niljs/internal/pipeline"
)

// RuntimeError is an uncaught exception or host failure raised while a
// backend ran the script of File.
type RuntimeError struct {
	File string
	Err  error
}

func (e *RuntimeError) Error() string {
	msg := e.Err.Error()
	var exc *evaluator.Exception
	if errors.As(e.Err, &exc) && !strings.HasPrefix(msg, "Uncaught ") {
		msg = "Uncaught " + msg
	}
	if e.File == "" {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.File, msg)
}

func (e *RuntimeError) Unwrap() error { return e.Err }

// ExecutionProcessor implements pipeline.Processor to run a Backend
type ExecutionProcessor struct {
	Backend Backend
}

// NewExecutionProcessor creates a new pipeline step for the given backend
func NewExecutionProcessor(b Backend) *ExecutionProcessor {
	return &ExecutionProcessor{Backend: b}
}

func (p *ExecutionProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	// If previous steps failed, don't run execution
	if ctx.Script == nil || ctx.Failed() {
		return ctx
	}
	result, err := p.Backend.Run(ctx)
	if err != nil {
		ctx.Errors = append(ctx.Errors, &RuntimeError{File: ctx.FilePath, Err: err})
		return ctx
	}
	ctx.Result = result
	return ctx
}
