// Package backend provides an interface for different execution backends.
// This allows switching between running a program and dumping its tree.
package backend

import (
	"github.com/rmja/niljs/internal/evaluator"
	"github.com/rmja/niljs/internal/pipeline"
)

// Backend is the interface for execution backends
type Backend interface {
	// Run executes the program from pipeline context and returns the result
	Run(ctx *pipeline.PipelineContext) (evaluator.Value, error)

	// Name returns the backend name for display
	Name() string
}
