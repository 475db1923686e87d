package backend

import (
	"errors"

	"github.com/rmja/niljs/internal/builtins"
	"github.com/rmja/niljs/internal/evaluator"
	"github.com/rmja/niljs/internal/pipeline"
)

// TreeWalkBackend runs the prepared tree directly.
type TreeWalkBackend struct{}

// NewTreeWalk creates a new tree-walk backend
func NewTreeWalk() *TreeWalkBackend {
	return &TreeWalkBackend{}
}

// Run executes the script in ctx.Realm, creating a realm with the builtin
// library first if the context has none. The realm is left on the context
// so later inputs see the same globals.
func (b *TreeWalkBackend) Run(ctx *pipeline.PipelineContext) (evaluator.Value, error) {
	if ctx.Script == nil {
		return evaluator.Undefined, errors.New("no script to execute")
	}
	if ctx.Failed() {
		return evaluator.Undefined, ctx.Errors[0]
	}
	if ctx.Realm == nil {
		ctx.Realm = builtins.NewRealm(ctx.Options.Engine)
	}
	return ctx.Realm.Run(ctx.Host, ctx.Script)
}

// Name returns the backend name
func (b *TreeWalkBackend) Name() string {
	return "tree-walk"
}
