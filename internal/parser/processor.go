package parser

import (
	"github.com/rmja/niljs/internal/pipeline"
)

// ParserProcessor lowers ctx.SourceCode into ctx.Script.
type ParserProcessor struct{}

func (pp *ParserProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	name := ctx.FilePath
	if name == "" {
		name = "<stdin>"
	}
	script, err := Parse(name, ctx.SourceCode)
	if err != nil {
		if list, ok := err.(ErrorList); ok {
			for _, e := range list {
				ctx.Errors = append(ctx.Errors, e)
			}
			return ctx
		}
		ctx.Errors = append(ctx.Errors, err)
		return ctx
	}
	ctx.Script = script
	return ctx
}
