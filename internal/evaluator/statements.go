package evaluator

import (
	"strings"
)

type Block struct {
	Statements []Statement
}

func (n *Block) Accept(v Visitor) { v.VisitBlock(n) }
func (n *Block) statementNode()   {}

func (n *Block) String() string {
	parts := make([]string, len(n.Statements))
	for i, s := range n.Statements {
		parts[i] = s.String()
	}
	return "{ " + strings.Join(parts, " ") + " }"
}

func (n *Block) Execute(ctx *Context) (Completion, error) {
	var last Completion
	for _, s := range n.Statements {
		c, err := s.Execute(ctx)
		if err != nil {
			return c, err
		}
		if c.Kind != CompletionNormal {
			if (c.Kind == CompletionBreak || c.Kind == CompletionContinue) && !c.valued && last.valued {
				c.Value, c.valued = last.Value, true
			}
			return c, nil
		}
		if c.valued {
			last = c
		}
	}
	return last, nil
}

func (n *Block) prepareInPlace(p *Preparer) {
	prepareStatements(p, n.Statements)
}

func (n *Block) Prepare(p *Preparer) Statement {
	n.prepareInPlace(p)
	return n
}

func (n *Block) simplifyInPlace() {
	kept := n.Statements[:0]
	for _, s := range n.Statements {
		s = s.Simplify()
		if _, empty := s.(*Empty); empty {
			continue
		}
		kept = append(kept, s)
	}
	clear(n.Statements[len(kept):])
	n.Statements = kept
}

func (n *Block) Simplify() Statement {
	n.simplifyInPlace()
	return n
}

type ExpressionStatement struct {
	Expression Expression
}

func (n *ExpressionStatement) Accept(v Visitor) { v.VisitExpressionStatement(n) }
func (n *ExpressionStatement) statementNode()   {}
func (n *ExpressionStatement) String() string   { return n.Expression.String() + ";" }

func (n *ExpressionStatement) Execute(ctx *Context) (Completion, error) {
	v, err := n.Expression.Evaluate(ctx)
	if err != nil {
		return normal, err
	}
	return Completion{Value: v, valued: true}, nil
}

func (n *ExpressionStatement) Prepare(p *Preparer) Statement {
	n.Expression = n.Expression.Prepare(p)
	return n
}

func (n *ExpressionStatement) Simplify() Statement {
	n.Expression = n.Expression.Simplify()
	return n
}

// VarDeclarator is one name of a var statement. Init is nil when the
// declaration has no initializer.
type VarDeclarator struct {
	Name *Identifier
	Init Expression
}

// VarDeclaration only performs the initializations; the names themselves
// are hoisted by Prepare.
type VarDeclaration struct {
	Declarations []*VarDeclarator
}

func (n *VarDeclaration) Accept(v Visitor) { v.VisitVarDeclaration(n) }
func (n *VarDeclaration) statementNode()   {}

func (n *VarDeclaration) String() string {
	parts := make([]string, len(n.Declarations))
	for i, d := range n.Declarations {
		parts[i] = d.Name.Name
		if d.Init != nil {
			parts[i] += " = " + d.Init.String()
		}
	}
	return "var " + strings.Join(parts, ", ") + ";"
}

func (n *VarDeclaration) Execute(ctx *Context) (Completion, error) {
	for _, d := range n.Declarations {
		if d.Init == nil {
			continue
		}
		v, err := d.Init.Evaluate(ctx)
		if err != nil {
			return normal, err
		}
		if err := d.Name.assign(ctx, v); err != nil {
			return normal, err
		}
	}
	return normal, nil
}

func (n *VarDeclaration) Prepare(p *Preparer) Statement {
	for _, d := range n.Declarations {
		p.resolve(d.Name)
		if d.Init != nil {
			d.Init = d.Init.Prepare(p)
			if d.Name.desc != nil && d.Name.desc.Initializer == nil {
				if fn, ok := d.Init.(*FunctionDefinition); ok && fn.Name == "" {
					fn.Name = d.Name.Name
				}
			}
		}
	}
	return n
}

func (n *VarDeclaration) Simplify() Statement {
	for _, d := range n.Declarations {
		if d.Init != nil {
			d.Init = d.Init.Simplify()
		}
	}
	return n
}

type Return struct {
	Argument Expression
}

func (n *Return) Accept(v Visitor) { v.VisitReturn(n) }
func (n *Return) statementNode()   {}

func (n *Return) String() string {
	if n.Argument == nil {
		return "return;"
	}
	return "return " + n.Argument.String() + ";"
}

// Execute turns a pending tail-recursion request raised while evaluating
// the argument into a CompletionTailRecursion.
func (n *Return) Execute(ctx *Context) (Completion, error) {
	v := Undefined
	if n.Argument != nil {
		var err error
		if v, err = n.Argument.Evaluate(ctx); err != nil {
			return normal, err
		}
	}
	if next, ok := ctx.takeTailRecursion(); ok {
		return next, nil
	}
	return Completion{Kind: CompletionReturn, Value: v}, nil
}

func (n *Return) Prepare(p *Preparer) Statement {
	if !p.inFunction() {
		p.report(SeverityError, "Illegal return statement", n)
	}
	st := p.Statistics()
	st.HasReturn = true
	if n.Argument == nil {
		st.ResultType = MergePrediction(st.ResultType, PredictUndefined)
		return n
	}
	n.Argument = n.Argument.Prepare(p)
	if p.inFunction() && p.tailAllowed() {
		markTail(n.Argument)
	}
	st.ResultType = MergePrediction(st.ResultType, n.Argument.ResultType())
	return n
}

func (n *Return) Simplify() Statement {
	if n.Argument != nil {
		n.Argument = n.Argument.Simplify()
	}
	return n
}

type Throw struct {
	Argument Expression
}

func (n *Throw) Accept(v Visitor) { v.VisitThrow(n) }
func (n *Throw) statementNode()   {}
func (n *Throw) String() string   { return "throw " + n.Argument.String() + ";" }

func (n *Throw) Execute(ctx *Context) (Completion, error) {
	v, err := n.Argument.Evaluate(ctx)
	if err != nil {
		return normal, err
	}
	return normal, &Exception{Value: v}
}

func (n *Throw) Prepare(p *Preparer) Statement {
	n.Argument = n.Argument.Prepare(p)
	return n
}

func (n *Throw) Simplify() Statement {
	n.Argument = n.Argument.Simplify()
	return n
}

type If struct {
	Test       Expression
	Consequent Statement
	Alternate  Statement
}

func (n *If) Accept(v Visitor) { v.VisitIf(n) }
func (n *If) statementNode()   {}

func (n *If) String() string {
	s := "if (" + n.Test.String() + ") " + n.Consequent.String()
	if n.Alternate != nil {
		s += " else " + n.Alternate.String()
	}
	return s
}

func (n *If) Execute(ctx *Context) (Completion, error) {
	t, err := n.Test.Evaluate(ctx)
	if err != nil {
		return normal, err
	}
	if ToBoolean(t) {
		return n.Consequent.Execute(ctx)
	}
	if n.Alternate != nil {
		return n.Alternate.Execute(ctx)
	}
	return normal, nil
}

func (n *If) Prepare(p *Preparer) Statement {
	n.Test = n.Test.Prepare(p)
	n.Consequent = n.Consequent.Prepare(p)
	if n.Alternate != nil {
		n.Alternate = n.Alternate.Prepare(p)
	}
	return n
}

func (n *If) Simplify() Statement {
	n.Test = n.Test.Simplify()
	n.Consequent = n.Consequent.Simplify()
	if n.Alternate != nil {
		n.Alternate = n.Alternate.Simplify()
	}
	if c, ok := n.Test.(*Constant); ok {
		if ToBoolean(c.Value) {
			return n.Consequent
		}
		if n.Alternate != nil {
			return n.Alternate
		}
		return &Empty{}
	}
	return n
}

type Empty struct{}

func (n *Empty) Accept(v Visitor)                         { v.VisitEmpty(n) }
func (n *Empty) statementNode()                           {}
func (n *Empty) String() string                           { return ";" }
func (n *Empty) Execute(ctx *Context) (Completion, error) { return normal, nil }
func (n *Empty) Prepare(p *Preparer) Statement            { return n }
func (n *Empty) Simplify() Statement                      { return n }
