package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rmja/niljs/internal/config"
	"github.com/rmja/niljs/internal/evaluator"
	"github.com/rmja/niljs/internal/parser"
	"github.com/rmja/niljs/internal/pipeline"
)

type recorder struct {
	name  string
	trail *[]string
	fail  bool
}

func (r *recorder) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	*r.trail = append(*r.trail, r.name)
	if r.fail {
		ctx.Errors = append(ctx.Errors, errors.New(r.name+" failed"))
	}
	return ctx
}

func TestRunVisitsEveryStage(t *testing.T) {
	var trail []string
	p := pipeline.New(
		&recorder{name: "a", trail: &trail},
		&recorder{name: "b", trail: &trail, fail: true},
		&recorder{name: "c", trail: &trail},
	)
	ctx := p.Run(pipeline.NewContext("x.js", "", config.Default()))
	if len(trail) != 3 || trail[0] != "a" || trail[2] != "c" {
		t.Errorf("trail = %v", trail)
	}
	if !ctx.Failed() || len(ctx.Errors) != 1 {
		t.Errorf("errors = %v", ctx.Errors)
	}
}

func TestParsePrepareSimplify(t *testing.T) {
	for _, simplify := range []bool{true, false} {
		opts := config.Default()
		opts.Engine.Simplify = simplify
		p := pipeline.New(&parser.ParserProcessor{}, &pipeline.PrepareProcessor{}, &pipeline.SimplifyProcessor{})
		ctx := p.Run(pipeline.NewContext("ok.js", "var a = 1 + 2; function f() { return a; }", opts))
		if ctx.Failed() {
			t.Fatalf("simplify=%v: %v", simplify, ctx.Errors)
		}
		if ctx.Script == nil {
			t.Fatalf("simplify=%v: no script", simplify)
		}
	}
}

func TestStagesSkipAfterParseError(t *testing.T) {
	p := pipeline.New(&parser.ParserProcessor{}, &pipeline.PrepareProcessor{}, &pipeline.SimplifyProcessor{})
	ctx := p.Run(pipeline.NewContext("bad.js", "var = ;", config.Default()))
	if !ctx.Failed() {
		t.Fatal("parse error not reported")
	}
	if ctx.Script != nil {
		t.Error("script set after a parse error")
	}
}

func TestDiagnosticError(t *testing.T) {
	d := evaluator.Diagnostic{Severity: evaluator.SeverityError, Message: "spread must be the last argument"}
	tests := []struct {
		file string
		want string
	}{
		{"", "SyntaxError: spread must be the last argument"},
		{"a.js", "a.js: SyntaxError: spread must be the last argument"},
	}
	for _, tt := range tests {
		if got := (&pipeline.DiagnosticError{File: tt.file, Diagnostic: d}).Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestRunStopsWhenHostCancelled(t *testing.T) {
	var trail []string
	host, cancel := context.WithCancel(context.Background())
	cancel()
	ctx := pipeline.NewContext("x.js", "", config.Default())
	ctx.Host = host
	ctx = pipeline.New(&recorder{name: "a", trail: &trail}).Run(ctx)
	if len(trail) != 0 {
		t.Errorf("stages ran: %v", trail)
	}
	if len(ctx.Errors) != 1 || !errors.Is(ctx.Errors[0], context.Canceled) {
		t.Errorf("errors = %v", ctx.Errors)
	}
}
