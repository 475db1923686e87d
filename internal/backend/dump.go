package backend

import (
	"errors"
	"io"

	"github.com/rmja/niljs/internal/evaluator"
	"github.com/rmja/niljs/internal/pipeline"
	"github.com/rmja/niljs/internal/prettyprinter"
)

// DumpBackend prints the prepared tree as source instead of running it.
type DumpBackend struct {
	Out io.Writer
}

// NewDump creates a backend writing to out
func NewDump(out io.Writer) *DumpBackend {
	return &DumpBackend{Out: out}
}

func (b *DumpBackend) Run(ctx *pipeline.PipelineContext) (evaluator.Value, error) {
	if ctx.Script == nil {
		return evaluator.Undefined, errors.New("no script to dump")
	}
	_, err := io.WriteString(b.Out, prettyprinter.PrintScript(ctx.Script))
	return evaluator.Undefined, err
}

func (b *DumpBackend) Name() string {
	return "dump"
}
