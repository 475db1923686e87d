package pipeline

// Processor is one stage of the pipeline.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// Pipeline runs a program through parse, Prepare, Simplify and execution.
type Pipeline struct {
	stages []Processor
}

func New(stages ...Processor) *Pipeline {
	return &Pipeline{stages: stages}
}

// Run passes ctx through every stage. Stages after a failed one see
// ctx.Errors and skip their work, so all diagnostics that can be produced
// are collected. A cancelled host context stops the run between stages.
func (p *Pipeline) Run(ctx *PipelineContext) *PipelineContext {
	for _, stage := range p.stages {
		if ctx.Host != nil {
			if err := ctx.Host.Err(); err != nil {
				ctx.Errors = append(ctx.Errors, err)
				return ctx
			}
		}
		ctx = stage.Process(ctx)
	}
	return ctx
}
