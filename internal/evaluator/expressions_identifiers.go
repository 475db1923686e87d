package evaluator

type resolveMode uint8

const (
	resolveUnprepared resolveMode = iota
	resolveSlot
	resolveGlobal
	resolveDynamic
	resolveArguments
)

// Identifier is a variable reference. Prepare binds it to a slot (with the
// number of scopes to walk out), to the global object or to dynamic lookup.
type Identifier struct {
	Name string

	mode       resolveMode
	hops       int
	index      int
	depth      int
	catchBound bool
	desc       *VariableDescriptor
}

func NewIdentifier(name string) *Identifier { return &Identifier{Name: name} }

func (n *Identifier) Accept(v Visitor) { v.VisitIdentifier(n) }
func (n *Identifier) expressionNode()  {}
func (n *Identifier) String() string   { return n.Name }

// Descriptor is the declaration the identifier was bound to, or nil for
// globals and dynamic names.
func (n *Identifier) Descriptor() *VariableDescriptor { return n.desc }

// Hops is the number of scopes between the use and the declaration.
func (n *Identifier) Hops() int { return n.hops }

// IsDynamic reports identifiers looked up by name at run time.
func (n *Identifier) IsDynamic() bool {
	return n.mode == resolveDynamic || n.mode == resolveUnprepared
}

func (n *Identifier) IsGlobal() bool { return n.mode == resolveGlobal }

func (n *Identifier) Evaluate(ctx *Context) (Value, error) {
	switch n.mode {
	case resolveSlot:
		return ctx.scope.up(n.hops).slots[n.index], nil
	case resolveArguments:
		return ctx.argumentsValue(), nil
	case resolveGlobal:
		g := ctx.realm.Global
		if !g.HasProperty(n.Name) {
			return Undefined, ctx.referenceError("%s is not defined", n.Name)
		}
		return g.Get(ctx, ObjectValue(g), n.Name)
	}
	ref, err := ctx.Resolve(n.Name)
	if err != nil {
		return Undefined, err
	}
	return ref.Get(ctx)
}

// evaluateForTypeof is Evaluate without the ReferenceError for
// undeclared names.
func (n *Identifier) evaluateForTypeof(ctx *Context) (Value, error) {
	if n.mode == resolveSlot || n.mode == resolveArguments {
		return n.Evaluate(ctx)
	}
	if n.mode == resolveGlobal {
		g := ctx.realm.Global
		return g.Get(ctx, ObjectValue(g), n.Name)
	}
	ref, err := ctx.Resolve(n.Name)
	if err != nil {
		return Undefined, nil
	}
	return ref.Get(ctx)
}

func (n *Identifier) assign(ctx *Context, v Value) error {
	switch n.mode {
	case resolveSlot:
		ctx.scope.up(n.hops).slots[n.index] = v
		return nil
	case resolveGlobal:
		g := ctx.realm.Global
		if ctx.strict && !g.HasProperty(n.Name) {
			return ctx.referenceError("%s is not defined", n.Name)
		}
		return g.Put(ctx, ObjectValue(g), n.Name, v)
	}
	ref, err := ctx.resolveForWrite(n.Name)
	if err != nil {
		return err
	}
	return ref.Set(ctx, v)
}

func (n *Identifier) Prepare(p *Preparer) Expression {
	p.resolve(n)
	return n
}

// Simplify folds the read-only globals undefined, NaN and Infinity.
func (n *Identifier) Simplify() Expression {
	if n.mode != resolveGlobal {
		return n
	}
	switch n.Name {
	case "undefined":
		return &Constant{Value: Undefined}
	case "NaN":
		return &Constant{Value: Number(nan)}
	case "Infinity":
		return &Constant{Value: Number(posInf)}
	}
	return n
}

func (n *Identifier) ResultType() PredictedType {
	if n.desc != nil && n.desc.Initializer != nil {
		return PredictFunction
	}
	return PredictUnknown
}

// This evaluates to the receiver of the current call.
type This struct{}

func (n *This) Accept(v Visitor)                     { v.VisitThis(n) }
func (n *This) expressionNode()                      {}
func (n *This) String() string                       { return "this" }
func (n *This) Evaluate(ctx *Context) (Value, error) { return ctx.this, nil }
func (n *This) Simplify() Expression                 { return n }
func (n *This) ResultType() PredictedType            { return PredictUnknown }

func (n *This) Prepare(p *Preparer) Expression {
	p.Statistics().ContainsThis = true
	return n
}

// Super only survives Prepare when it is misplaced; the supported forms
// are rewritten by Call and GetMember.
type Super struct{}

func (n *Super) Accept(v Visitor)          { v.VisitSuper(n) }
func (n *Super) expressionNode()           {}
func (n *Super) String() string            { return "super" }
func (n *Super) Simplify() Expression      { return n }
func (n *Super) ResultType() PredictedType { return PredictUnknown }

func (n *Super) Evaluate(ctx *Context) (Value, error) {
	return Undefined, ctx.syntaxError("'super' keyword unexpected here")
}

func (n *Super) Prepare(p *Preparer) Expression {
	p.report(SeverityError, "'super' keyword unexpected here", n)
	return n
}

// superBase builds this.__proto__.__proto__, the object super refers to.
func superBase() Expression {
	return &GetMember{
		Object:   &GetMember{Object: &This{}, Property: &Constant{Value: String("__proto__")}},
		Property: &Constant{Value: String("__proto__")},
	}
}
