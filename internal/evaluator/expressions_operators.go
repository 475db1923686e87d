package evaluator

import (
	"strings"
)

// Binary is a non-short-circuit binary operator expression.
type Binary struct {
	Operator BinaryOperator
	Left     Expression
	Right    Expression
}

func (n *Binary) Accept(v Visitor) { v.VisitBinary(n) }
func (n *Binary) expressionNode()  {}

func (n *Binary) String() string {
	return "(" + n.Left.String() + " " + n.Operator.String() + " " + n.Right.String() + ")"
}

func (n *Binary) Evaluate(ctx *Context) (Value, error) {
	l, err := n.Left.Evaluate(ctx)
	if err != nil {
		return Undefined, err
	}
	r, err := n.Right.Evaluate(ctx)
	if err != nil {
		return Undefined, err
	}
	return ApplyBinary(ctx, n.Operator, l, r)
}

func (n *Binary) Prepare(p *Preparer) Expression {
	n.Left = n.Left.Prepare(p)
	n.Right = n.Right.Prepare(p)
	return n
}

func (n *Binary) Simplify() Expression {
	n.Left = n.Left.Simplify()
	n.Right = n.Right.Simplify()
	l, lok := n.Left.(*Constant)
	r, rok := n.Right.(*Constant)
	if !lok || !rok || !n.Operator.pure() || !l.Value.IsPrimitive() || !r.Value.IsPrimitive() {
		return n
	}
	v, err := ApplyBinary(nil, n.Operator, l.Value, r.Value)
	if err != nil {
		return n
	}
	return &Constant{Value: v}
}

func (n *Binary) ResultType() PredictedType {
	if n.Operator == OpAdd {
		l, r := n.Left.ResultType(), n.Right.ResultType()
		switch {
		case l == PredictString || r == PredictString:
			return PredictString
		case l == PredictNumber && r == PredictNumber:
			return PredictNumber
		}
		return PredictUnknown
	}
	return n.Operator.resultType()
}

// LogicalOperator is && or ||.
type LogicalOperator uint8

const (
	OpAnd LogicalOperator = iota
	OpOr
)

func (op LogicalOperator) String() string {
	if op == OpAnd {
		return "&&"
	}
	return "||"
}

type Logical struct {
	Operator LogicalOperator
	Left     Expression
	Right    Expression
}

func (n *Logical) Accept(v Visitor) { v.VisitLogical(n) }
func (n *Logical) expressionNode()  {}

func (n *Logical) String() string {
	return "(" + n.Left.String() + " " + n.Operator.String() + " " + n.Right.String() + ")"
}

func (n *Logical) Evaluate(ctx *Context) (Value, error) {
	l, err := n.Left.Evaluate(ctx)
	if err != nil {
		return Undefined, err
	}
	if ToBoolean(l) == (n.Operator == OpOr) {
		return l, nil
	}
	return n.Right.Evaluate(ctx)
}

func (n *Logical) Prepare(p *Preparer) Expression {
	n.Left = n.Left.Prepare(p)
	n.Right = n.Right.Prepare(p)
	return n
}

func (n *Logical) Simplify() Expression {
	n.Left = n.Left.Simplify()
	n.Right = n.Right.Simplify()
	if c, ok := n.Left.(*Constant); ok {
		if ToBoolean(c.Value) == (n.Operator == OpOr) {
			return c
		}
		return n.Right
	}
	return n
}

func (n *Logical) ResultType() PredictedType {
	return MergePrediction(n.Left.ResultType(), n.Right.ResultType())
}

// Unary is a prefix operator other than ++ and --.
type Unary struct {
	Operator UnaryOperator
	Operand  Expression
}

func (n *Unary) Accept(v Visitor) { v.VisitUnary(n) }
func (n *Unary) expressionNode()  {}
func (n *Unary) String() string   { return n.Operator.String() + n.Operand.String() }

func (n *Unary) Evaluate(ctx *Context) (Value, error) {
	switch n.Operator {
	case OpDelete:
		return n.delete(ctx)
	case OpTypeOf:
		if id, ok := n.Operand.(*Identifier); ok {
			v, err := id.evaluateForTypeof(ctx)
			if err != nil {
				return Undefined, err
			}
			return String(v.TypeOf()), nil
		}
	}
	v, err := n.Operand.Evaluate(ctx)
	if err != nil {
		return Undefined, err
	}
	return ApplyUnary(ctx, n.Operator, v)
}

func (n *Unary) delete(ctx *Context) (Value, error) {
	switch target := n.Operand.(type) {
	case *GetMember:
		base, key, err := target.reference(ctx)
		if err != nil {
			return Undefined, err
		}
		obj := base.Object()
		if obj == nil {
			if base.IsNullish() {
				return Undefined, ctx.typeError("Cannot convert %s to object", base.kindName())
			}
			return True, nil
		}
		ok := obj.Delete(key)
		if !ok && ctx.strict {
			return Undefined, ctx.typeError("Cannot delete property '%s'", key)
		}
		return Bool(ok), nil
	case *Identifier:
		if target.mode == resolveGlobal || target.mode == resolveDynamic {
			g := ctx.realm.Global
			if _, err := ctx.Resolve(target.Name); err != nil {
				return True, nil
			}
			if g.HasOwnProperty(target.Name) {
				return Bool(g.Delete(target.Name)), nil
			}
		}
		return False, nil
	}
	if _, err := n.Operand.Evaluate(ctx); err != nil {
		return Undefined, err
	}
	return True, nil
}

func (n *Unary) Prepare(p *Preparer) Expression {
	n.Operand = n.Operand.Prepare(p)
	return n
}

func (n *Unary) Simplify() Expression {
	if n.Operator == OpDelete {
		n.Operand = simplifyTarget(n.Operand)
		return n
	}
	n.Operand = n.Operand.Simplify()
	c, ok := n.Operand.(*Constant)
	if !ok || !c.Value.IsPrimitive() {
		if _, fn := n.Operand.(*FunctionDefinition); fn && n.Operator == OpTypeOf {
			return &Constant{Value: String("function")}
		}
		return n
	}
	v, err := ApplyUnary(nil, n.Operator, c.Value)
	if err != nil {
		return n
	}
	return &Constant{Value: v}
}

func (n *Unary) ResultType() PredictedType {
	switch n.Operator {
	case OpNot, OpDelete:
		return PredictBoolean
	case OpTypeOf:
		return PredictString
	case OpVoid:
		return PredictUndefined
	}
	return PredictNumber
}

// Update is ++ or -- in prefix or postfix form.
type Update struct {
	Increment bool
	Prefix    bool
	Target    Expression
}

func (n *Update) Accept(v Visitor)          { v.VisitUpdate(n) }
func (n *Update) expressionNode()           {}
func (n *Update) ResultType() PredictedType { return PredictNumber }

func (n *Update) String() string {
	op := "--"
	if n.Increment {
		op = "++"
	}
	if n.Prefix {
		return op + n.Target.String()
	}
	return n.Target.String() + op
}

func (n *Update) Evaluate(ctx *Context) (Value, error) {
	delta := -1.0
	if n.Increment {
		delta = 1
	}
	var old float64
	store, err := modify(ctx, n.Target, func(v Value) (Value, error) {
		num, err := ToNumber(ctx, v)
		if err != nil {
			return Undefined, err
		}
		old = num
		return Number(num + delta), nil
	})
	if err != nil {
		return Undefined, err
	}
	if n.Prefix {
		return store, nil
	}
	return Number(old), nil
}

func (n *Update) Prepare(p *Preparer) Expression {
	n.Target = n.Target.Prepare(p)
	if !isReference(n.Target) {
		p.report(SeverityError, "Invalid left-hand side expression in update operation", n)
	}
	return n
}

func (n *Update) Simplify() Expression {
	n.Target = simplifyTarget(n.Target)
	return n
}

// Assign stores Value into Target. Operator is OpNone for plain
// assignment, otherwise the compound operator.
type Assign struct {
	Target   Expression
	Operator BinaryOperator
	Value    Expression
}

func (n *Assign) Accept(v Visitor) { v.VisitAssign(n) }
func (n *Assign) expressionNode()  {}

func (n *Assign) String() string {
	op := "="
	if n.Operator != OpNone {
		op = n.Operator.String() + "="
	}
	return n.Target.String() + " " + op + " " + n.Value.String()
}

func (n *Assign) Evaluate(ctx *Context) (Value, error) {
	if n.Operator == OpNone {
		switch target := n.Target.(type) {
		case *Identifier:
			v, err := n.Value.Evaluate(ctx)
			if err != nil {
				return Undefined, err
			}
			return v, target.assign(ctx, v)
		case *GetMember:
			base, key, err := target.reference(ctx)
			if err != nil {
				return Undefined, err
			}
			v, err := n.Value.Evaluate(ctx)
			if err != nil {
				return Undefined, err
			}
			return v, PutValue(ctx, base, key, v)
		}
		return Undefined, ctx.referenceError("Invalid left-hand side in assignment")
	}
	return modify(ctx, n.Target, func(old Value) (Value, error) {
		r, err := n.Value.Evaluate(ctx)
		if err != nil {
			return Undefined, err
		}
		return ApplyBinary(ctx, n.Operator, old, r)
	})
}

// modify reads target, computes the new value and stores it, evaluating
// the target reference only once.
func modify(ctx *Context, target Expression, compute func(Value) (Value, error)) (Value, error) {
	switch t := target.(type) {
	case *Identifier:
		old, err := t.Evaluate(ctx)
		if err != nil {
			return Undefined, err
		}
		v, err := compute(old)
		if err != nil {
			return Undefined, err
		}
		return v, t.assign(ctx, v)
	case *GetMember:
		base, key, err := t.reference(ctx)
		if err != nil {
			return Undefined, err
		}
		old, err := GetValue(ctx, base, key)
		if err != nil {
			return Undefined, err
		}
		v, err := compute(old)
		if err != nil {
			return Undefined, err
		}
		return v, PutValue(ctx, base, key, v)
	}
	return Undefined, ctx.referenceError("Invalid left-hand side in assignment")
}

// simplifyTarget simplifies inside an assignment target without folding
// the target itself.
func simplifyTarget(e Expression) Expression {
	if m, ok := e.(*GetMember); ok {
		return m.Simplify()
	}
	return e
}

func isReference(e Expression) bool {
	switch e.(type) {
	case *Identifier, *GetMember:
		return true
	}
	return false
}

func (n *Assign) Prepare(p *Preparer) Expression {
	n.Target = n.Target.Prepare(p)
	n.Value = n.Value.Prepare(p)
	if !isReference(n.Target) {
		p.report(SeverityError, "Invalid left-hand side in assignment", n)
	}
	return n
}

func (n *Assign) Simplify() Expression {
	n.Target = simplifyTarget(n.Target)
	n.Value = n.Value.Simplify()
	return n
}

func (n *Assign) ResultType() PredictedType {
	if n.Operator == OpNone {
		return n.Value.ResultType()
	}
	return (&Binary{Operator: n.Operator, Left: n.Target, Right: n.Value}).ResultType()
}

type Conditional struct {
	Test       Expression
	Consequent Expression
	Alternate  Expression
}

func (n *Conditional) Accept(v Visitor) { v.VisitConditional(n) }
func (n *Conditional) expressionNode()  {}

func (n *Conditional) String() string {
	return "(" + n.Test.String() + " ? " + n.Consequent.String() + " : " + n.Alternate.String() + ")"
}

func (n *Conditional) Evaluate(ctx *Context) (Value, error) {
	t, err := n.Test.Evaluate(ctx)
	if err != nil {
		return Undefined, err
	}
	if ToBoolean(t) {
		return n.Consequent.Evaluate(ctx)
	}
	return n.Alternate.Evaluate(ctx)
}

func (n *Conditional) Prepare(p *Preparer) Expression {
	n.Test = n.Test.Prepare(p)
	n.Consequent = n.Consequent.Prepare(p)
	n.Alternate = n.Alternate.Prepare(p)
	return n
}

func (n *Conditional) Simplify() Expression {
	n.Test = n.Test.Simplify()
	n.Consequent = n.Consequent.Simplify()
	n.Alternate = n.Alternate.Simplify()
	if c, ok := n.Test.(*Constant); ok {
		if ToBoolean(c.Value) {
			return n.Consequent
		}
		return n.Alternate
	}
	return n
}

func (n *Conditional) ResultType() PredictedType {
	return MergePrediction(n.Consequent.ResultType(), n.Alternate.ResultType())
}

// Sequence is the comma operator.
type Sequence struct {
	Expressions []Expression
}

func (n *Sequence) Accept(v Visitor) { v.VisitSequence(n) }
func (n *Sequence) expressionNode()  {}

func (n *Sequence) String() string {
	parts := make([]string, 0, len(n.Expressions)+1)
	if len(n.Expressions) == 1 {
		parts = append(parts, "0")
	}
	for _, e := range n.Expressions {
		parts = append(parts, e.String())
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (n *Sequence) Evaluate(ctx *Context) (Value, error) {
	v := Undefined
	for _, e := range n.Expressions {
		var err error
		if v, err = e.Evaluate(ctx); err != nil {
			return Undefined, err
		}
	}
	return v, nil
}

func (n *Sequence) Prepare(p *Preparer) Expression {
	prepareExpressions(p, n.Expressions)
	return n
}

// Simplify drops side-effect-free elements except the last. A lone member
// read left over stays wrapped so (0, o.f)() keeps calling without o.
func (n *Sequence) Simplify() Expression {
	kept := n.Expressions[:0]
	for i, e := range n.Expressions {
		e = e.Simplify()
		if i < len(n.Expressions)-1 && isPure(e) {
			continue
		}
		kept = append(kept, e)
	}
	n.Expressions = kept
	if len(kept) == 1 {
		if _, ok := kept[0].(*GetMember); !ok {
			return kept[0]
		}
	}
	return n
}

func (n *Sequence) ResultType() PredictedType {
	if len(n.Expressions) == 0 {
		return PredictUndefined
	}
	return n.Expressions[len(n.Expressions)-1].ResultType()
}

// isPure reports expressions whose evaluation cannot have effects or fail.
func isPure(e Expression) bool {
	switch n := e.(type) {
	case *Constant, *This, *FunctionDefinition:
		return true
	case *Identifier:
		return n.mode == resolveSlot
	}
	return false
}
