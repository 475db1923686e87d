package evaluator

import (
	"context"

	"github.com/rmja/niljs/internal/config"
)

// Script is a parsed program. Its top level is held as a parameterless
// FunctionDefinition whose declarations live on the global object, or in
// the calling scope for eval code.
type Script struct {
	Name   string
	Source string
	Root   *FunctionDefinition

	eval        bool
	prepared    bool
	simplified  bool
	diagnostics []Diagnostic
}

// NewScript wraps top-level statements. strict is set when the program
// opens with the use strict directive.
func NewScript(name, source string, body []Statement, strict bool) *Script {
	root := &FunctionDefinition{Body: &Block{Statements: body}, Source: source}
	root.Statistics.Strict = strict
	return &Script{Name: name, Source: source, Root: root}
}

// NewEvalScript is NewScript for code passed to eval. Free names of eval
// code are resolved at run time through the caller's scope chain.
func NewEvalScript(source string, body []Statement, strict bool) *Script {
	s := NewScript(config.EvalFuncName, source, body, strict)
	s.eval = true
	return s
}

// IsEval reports a script created by NewEvalScript.
func (s *Script) IsEval() bool { return s.eval }

// Prepare runs the binding-resolution pass once.
func (s *Script) Prepare() []Diagnostic {
	if s.prepared {
		return s.diagnostics
	}
	s.prepared = true
	p := &Preparer{evalCode: s.eval}
	p.enterFunction(s.Root, true)
	s.Root.Body.prepareInPlace(p)
	p.exitFunction()
	s.diagnostics = p.Diagnostics()
	return s.diagnostics
}

// Simplify runs the simplification pass once, after Prepare.
func (s *Script) Simplify() {
	if s.simplified {
		return
	}
	s.Prepare()
	s.simplified = true
	s.Root.Body.simplifyInPlace()
}

// Diagnostics returns what Prepare reported.
func (s *Script) Diagnostics() []Diagnostic { return s.diagnostics }

// HasErrors reports an error-severity diagnostic.
func (s *Script) HasErrors() bool {
	for _, d := range s.diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Run executes a script at top level and returns the value of its last
// value-producing statement.
func (r *Realm) Run(host context.Context, s *Script) (Value, error) {
	ctx := r.NewContext(host)
	return r.RunIn(ctx, s)
}

// RunIn executes a script in an existing top-level context, as the REPL
// does for consecutive inputs.
func (r *Realm) RunIn(ctx *Context, s *Script) (Value, error) {
	s.Prepare()
	root := s.Root
	ctx.scope = newScope(nil, root.layout)
	ctx.strict = r.strict || root.Statistics.Strict
	for _, d := range root.globals {
		if !r.Global.HasOwnProperty(d.Name) {
			r.Global.DefineOwn(d.Name, Undefined, AttrEnumerable|AttrWritable)
		}
	}
	for _, d := range root.globalFunctions {
		fn := r.newClosure(d.Initializer, ctx.scope)
		if err := r.Global.Put(ctx, ObjectValue(r.Global), d.Name, FunctionValue(fn)); err != nil {
			return Undefined, err
		}
	}
	return completionValue(root.Body.Execute(ctx))
}

// EvalScript runs eval code. Direct eval runs in the caller's scope with
// the caller's this, and its declarations land in the caller's variable
// scope unless the code is strict. Indirect eval runs at global level.
func EvalScript(caller *Context, s *Script, direct bool) (Value, error) {
	s.Prepare()
	r := caller.realm
	root := s.Root
	ctx := &Context{
		realm:  r,
		caller: caller,
		this:   ObjectValue(r.Global),
		depth:  caller.depth,
		strict: r.strict || root.Statistics.Strict,
		host:   caller.host,
		ticks:  caller.ticks,
	}
	var parent *Scope
	if direct {
		parent = caller.scope
		ctx.this = caller.this
		ctx.args = caller.args
		ctx.argsObject = caller.argsObject
		ctx.strict = ctx.strict || caller.strict
	}
	ctx.scope = newScope(parent, root.layout)

	declare := func(name string, v Value, init bool) error {
		switch {
		case ctx.strict:
			cell := ctx.scope.declare(name)
			if init {
				*cell = v
			}
		case direct && caller.owner != nil:
			cell := caller.scope.declare(name)
			if init {
				*cell = v
			}
		default:
			g := r.Global
			if init {
				return g.Put(ctx, ObjectValue(g), name, v)
			}
			if !g.HasProperty(name) {
				g.DefineOwn(name, Undefined, AttrDefault)
			}
		}
		return nil
	}
	for _, d := range root.globals {
		if err := declare(d.Name, Undefined, false); err != nil {
			return Undefined, err
		}
	}
	for _, d := range root.globalFunctions {
		fn := r.newClosure(d.Initializer, ctx.scope)
		if err := declare(d.Name, FunctionValue(fn), true); err != nil {
			return Undefined, err
		}
	}
	return completionValue(root.Body.Execute(ctx))
}

func completionValue(c Completion, err error) (Value, error) {
	if err != nil {
		return Undefined, err
	}
	if c.valued || c.Kind == CompletionReturn {
		return c.Value, nil
	}
	return Undefined, nil
}
