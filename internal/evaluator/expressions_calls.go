package evaluator

import (
	"strings"

	"github.com/rmja/niljs/internal/config"
)

// Call is a call or construct (new) expression. Prepare decides whether
// the call sits in tail position and whether it is a direct eval.
type Call struct {
	Callee    Expression
	Arguments []Expression
	Construct bool
	// Spread expands the last argument as an array-like.
	Spread bool

	allowTail  bool
	directEval bool
}

func (n *Call) Accept(v Visitor) { v.VisitCall(n) }
func (n *Call) expressionNode()  {}

// AllowTailCall reports a call that may reuse the caller's frame.
func (n *Call) AllowTailCall() bool { return n.allowTail && !n.Construct }

// IsDirectEval reports a call of the global eval by name.
func (n *Call) IsDirectEval() bool { return n.directEval }

func (n *Call) String() string {
	args := make([]string, len(n.Arguments))
	for i, a := range n.Arguments {
		args[i] = a.String()
	}
	s := n.Callee.String() + "(" + strings.Join(args, ", ") + ")"
	if n.Construct {
		return "new " + s
	}
	return s
}

func (n *Call) Evaluate(ctx *Context) (Value, error) {
	ctx.objectSource = Undefined
	callee, err := n.Callee.Evaluate(ctx)
	if err != nil {
		return Undefined, err
	}
	this := ctx.takeObjectSource()
	if _, ok := n.Callee.(*GetMember); !ok {
		this = Undefined
	}

	fn := callee.Function()
	if fn == nil {
		var discard Arguments
		if err := packArguments(ctx, &discard, n.Arguments, n.Spread); err != nil {
			return Undefined, err
		}
		return Undefined, ctx.typeError("%s is not callable", n.Callee.String())
	}

	if n.allowTail && !n.Construct && fn == ctx.owner && fn.kind != FunctionGenerator && !ctx.construct {
		args := ctx.tailArguments()
		if err := packArguments(ctx, args, n.Arguments, n.Spread); err != nil {
			return Undefined, err
		}
		ctx.requestTailRecursion(this, args)
		return Undefined, nil
	}

	var flags CallFlags
	if n.directEval {
		flags |= CallDirectEval
	}
	if err := ctx.checkStack(); err != nil {
		return Undefined, err
	}
	args := &Arguments{callee: fn, values: make([]Value, 0, len(n.Arguments))}
	if err := packArguments(ctx, args, n.Arguments, n.Spread); err != nil {
		return Undefined, err
	}
	if n.Construct {
		return fn.invoke(ctx, MissingInstance, args, true, flags)
	}
	return fn.invoke(ctx, this, args, false, flags)
}

func (n *Call) Prepare(p *Preparer) Expression {
	p.Statistics().UseCall = true
	n.rewriteSuper(p)

	if id, ok := n.Callee.(*Identifier); ok && id.Name == config.EvalFuncName && !n.Construct {
		n.Callee = id.Prepare(p)
		if id.mode == resolveGlobal || id.mode == resolveDynamic {
			n.directEval = true
			p.Statistics().ContainsEval = true
		}
	} else {
		n.Callee = n.Callee.Prepare(p)
	}

	for i, a := range n.Arguments {
		if _, ok := a.(*Spread); ok {
			if i != len(n.Arguments)-1 {
				p.report(SeverityError, "spread must be the last argument", n)
			} else {
				n.Spread = true
			}
		}
	}
	prepareExpressions(p, n.Arguments)
	n.predictParameters()
	return n
}

// rewriteSuper turns super(args) into
// this.__proto__.__proto__.constructor.call(this, args) and super.m(args)
// into this.__proto__.__proto__.m.call(this, args).
func (n *Call) rewriteSuper(p *Preparer) {
	var method Expression
	computed := false
	switch c := n.Callee.(type) {
	case *Super:
		method = &Constant{Value: String(config.ConstructorPropName)}
	case *GetMember:
		if _, ok := c.Object.(*Super); !ok {
			return
		}
		method, computed = c.Property, c.Computed
	default:
		return
	}
	if !p.inFunction() {
		p.report(SeverityError, "'super' keyword unexpected here", n)
		return
	}
	n.Callee = &GetMember{
		Object:   &GetMember{Object: superBase(), Property: method, Computed: computed},
		Property: &Constant{Value: String(config.CallMethodName)},
	}
	n.Arguments = append([]Expression{&This{}}, n.Arguments...)
}

// predictParameters merges argument predictions into the parameters of a
// statically known callee.
func (n *Call) predictParameters() {
	id, ok := n.Callee.(*Identifier)
	if !ok || id.desc == nil || id.desc.Initializer == nil || n.Spread {
		return
	}
	params := id.desc.Initializer.Parameters
	for i, a := range n.Arguments {
		if i >= len(params) {
			break
		}
		params[i].PredictedType = MergePrediction(params[i].PredictedType, a.ResultType())
	}
}

func (n *Call) Simplify() Expression {
	_, method := n.Callee.(*GetMember)
	n.Callee = n.Callee.Simplify()
	if m, ok := n.Callee.(*GetMember); ok && !method {
		n.Callee = &Sequence{Expressions: []Expression{m}}
	}
	for i, a := range n.Arguments {
		n.Arguments[i] = a.Simplify()
	}
	return n
}

func (n *Call) ResultType() PredictedType {
	if n.Construct {
		return PredictObject
	}
	if id, ok := n.Callee.(*Identifier); ok && id.desc != nil && id.desc.Initializer != nil {
		return id.desc.Initializer.Statistics.ResultType
	}
	return PredictUnknown
}

// Spread marks the last call argument for expansion.
type Spread struct {
	Argument Expression
}

func (n *Spread) Accept(v Visitor)          { v.VisitSpread(n) }
func (n *Spread) expressionNode()           {}
func (n *Spread) String() string            { return "..." + n.Argument.String() }
func (n *Spread) ResultType() PredictedType { return PredictUnknown }

func (n *Spread) Evaluate(ctx *Context) (Value, error) {
	return n.Argument.Evaluate(ctx)
}

func (n *Spread) Prepare(p *Preparer) Expression {
	n.Argument = n.Argument.Prepare(p)
	return n
}

func (n *Spread) Simplify() Expression {
	n.Argument = n.Argument.Simplify()
	return n
}
