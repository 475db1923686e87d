package pipeline

import (
	"context"

	"github.com/rmja/niljs/internal/config"
	"github.com/rmja/niljs/internal/evaluator"
)

// PipelineContext carries one program through the stages.
type PipelineContext struct {
	FilePath   string
	SourceCode string
	// IsEvalMode is set for code given on the command line with -e.
	IsEvalMode bool
	Options    config.Options

	// Host bounds execution; cancelling it interrupts the running script.
	Host context.Context
	// Realm is reused when set, as the REPL does between inputs.
	Realm *evaluator.Realm

	Script *evaluator.Script
	Result evaluator.Value
	Errors []error
}

// NewContext prepares a context for the source of one file.
func NewContext(path, source string, opts config.Options) *PipelineContext {
	return &PipelineContext{
		FilePath:   path,
		SourceCode: source,
		Options:    opts,
		Host:       context.Background(),
	}
}

// Failed reports whether a stage recorded an error.
func (c *PipelineContext) Failed() bool { return len(c.Errors) > 0 }
