package evaluator

import (
	"strings"
)

// Parameter is a declared formal parameter. PredictedType accumulates the
// kinds of arguments seen at statically known call sites.
type Parameter struct {
	Name          string
	Descriptor    *VariableDescriptor
	PredictedType PredictedType
}

// FunctionDefinition is a function literal. As an expression it evaluates
// to a new closure over the current scope; the same node is the body of
// FunctionDeclaration and of scripts.
type FunctionDefinition struct {
	Name        string
	Parameters  []*Parameter
	Body        *Block
	Declaration bool
	Generator   bool
	// Source is the original text, used by Function.prototype.toString.
	Source     string
	Statistics FunctionStatistics

	layout          *Layout
	depth           int
	selfSlot        int
	functions       []*VariableDescriptor
	globals         []*VariableDescriptor
	globalFunctions []*VariableDescriptor
}

func (n *FunctionDefinition) Accept(v Visitor)          { v.VisitFunctionDefinition(n) }
func (n *FunctionDefinition) expressionNode()           {}
func (n *FunctionDefinition) ResultType() PredictedType { return PredictFunction }

// Layout is the slot layout computed by Prepare.
func (n *FunctionDefinition) Layout() *Layout { return n.layout }

func (n *FunctionDefinition) Evaluate(ctx *Context) (Value, error) {
	return FunctionValue(ctx.realm.newClosure(n, ctx.scope)), nil
}

func (n *FunctionDefinition) Prepare(p *Preparer) Expression {
	if p.frame != nil {
		p.Statistics().ContainsInnerFunctions = true
	}
	p.enterFunction(n, false)
	n.Body.prepareInPlace(p)
	p.exitFunction()
	return n
}

func (n *FunctionDefinition) Simplify() Expression {
	n.Body.simplifyInPlace()
	return n
}

func (n *FunctionDefinition) String() string {
	params := make([]string, len(n.Parameters))
	for i, p := range n.Parameters {
		params[i] = p.Name
	}
	head := "function"
	if n.Name != "" {
		head += " " + n.Name
	}
	return head + "(" + strings.Join(params, ", ") + ") {...}"
}

// FunctionDeclaration is a hoisted function statement. The binding is
// created on entry to the enclosing body, so executing it does nothing.
type FunctionDeclaration struct {
	Function *FunctionDefinition
}

func (n *FunctionDeclaration) Accept(v Visitor)                         { v.VisitFunctionDeclaration(n) }
func (n *FunctionDeclaration) statementNode()                           {}
func (n *FunctionDeclaration) Execute(ctx *Context) (Completion, error) { return normal, nil }
func (n *FunctionDeclaration) String() string                           { return n.Function.String() }

func (n *FunctionDeclaration) Prepare(p *Preparer) Statement {
	n.Function.Declaration = true
	n.Function.Prepare(p)
	return n
}

func (n *FunctionDeclaration) Simplify() Statement {
	n.Function.Simplify()
	return n
}
