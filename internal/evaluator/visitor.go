package evaluator

// Visitor has one method per node kind. Nodes dispatch to it through
// Accept; traversal of children is up to the visitor.
type Visitor interface {
	// Expressions
	VisitConstant(n *Constant)
	VisitIdentifier(n *Identifier)
	VisitThis(n *This)
	VisitSuper(n *Super)
	VisitFunctionDefinition(n *FunctionDefinition)
	VisitCall(n *Call)
	VisitSpread(n *Spread)
	VisitGetMember(n *GetMember)
	VisitAssign(n *Assign)
	VisitBinary(n *Binary)
	VisitLogical(n *Logical)
	VisitUnary(n *Unary)
	VisitUpdate(n *Update)
	VisitConditional(n *Conditional)
	VisitSequence(n *Sequence)
	VisitObjectLiteral(n *ObjectLiteral)
	VisitArrayLiteral(n *ArrayLiteral)

	// Statements
	VisitBlock(n *Block)
	VisitExpressionStatement(n *ExpressionStatement)
	VisitVarDeclaration(n *VarDeclaration)
	VisitFunctionDeclaration(n *FunctionDeclaration)
	VisitReturn(n *Return)
	VisitIf(n *If)
	VisitFor(n *For)
	VisitForIn(n *ForIn)
	VisitWhile(n *While)
	VisitDoWhile(n *DoWhile)
	VisitBreak(n *Break)
	VisitContinue(n *Continue)
	VisitLabeled(n *Labeled)
	VisitThrow(n *Throw)
	VisitTry(n *Try)
	VisitSwitch(n *Switch)
	VisitEmpty(n *Empty)
}
