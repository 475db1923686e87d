package parser

import (
	"github.com/robertkrimen/otto/ast"
	"github.com/robertkrimen/otto/token"

	"github.com/rmja/niljs/internal/evaluator"
)

var binaryOperators = map[token.Token]evaluator.BinaryOperator{
	token.PLUS:                 evaluator.OpAdd,
	token.MINUS:                evaluator.OpSub,
	token.MULTIPLY:             evaluator.OpMul,
	token.SLASH:                evaluator.OpDiv,
	token.REMAINDER:            evaluator.OpMod,
	token.SHIFT_LEFT:           evaluator.OpShl,
	token.SHIFT_RIGHT:          evaluator.OpShr,
	token.UNSIGNED_SHIFT_RIGHT: evaluator.OpUShr,
	token.AND:                  evaluator.OpBitAnd,
	token.OR:                   evaluator.OpBitOr,
	token.EXCLUSIVE_OR:         evaluator.OpBitXor,
	token.EQUAL:                evaluator.OpEq,
	token.NOT_EQUAL:            evaluator.OpNotEq,
	token.STRICT_EQUAL:         evaluator.OpStrictEq,
	token.STRICT_NOT_EQUAL:     evaluator.OpStrictNotEq,
	token.LESS:                 evaluator.OpLess,
	token.LESS_OR_EQUAL:        evaluator.OpLessEq,
	token.GREATER:              evaluator.OpGreater,
	token.GREATER_OR_EQUAL:     evaluator.OpGreaterEq,
	token.IN:                   evaluator.OpIn,
	token.INSTANCEOF:           evaluator.OpInstanceOf,
}

var unaryOperators = map[token.Token]evaluator.UnaryOperator{
	token.NOT:         evaluator.OpNot,
	token.MINUS:       evaluator.OpNegate,
	token.PLUS:        evaluator.OpPlus,
	token.BITWISE_NOT: evaluator.OpBitNot,
	token.TYPEOF:      evaluator.OpTypeOf,
	token.VOID:        evaluator.OpVoid,
	token.DELETE:      evaluator.OpDelete,
}

func (l *lowerer) optionalExpression(e ast.Expression) evaluator.Expression {
	if e == nil {
		return nil
	}
	return l.expression(e)
}

func (l *lowerer) expressions(list []ast.Expression) []evaluator.Expression {
	out := make([]evaluator.Expression, 0, len(list))
	for _, e := range list {
		out = append(out, l.expression(e))
	}
	return out
}

func constant(v evaluator.Value) *evaluator.Constant { return evaluator.NewConstant(v) }

func (l *lowerer) expression(e ast.Expression) evaluator.Expression {
	switch e := e.(type) {
	case *ast.Identifier:
		return evaluator.NewIdentifier(e.Name)

	case *ast.ThisExpression:
		return &evaluator.This{}

	case *ast.NullLiteral:
		return constant(evaluator.Null)

	case *ast.BooleanLiteral:
		return constant(evaluator.Bool(e.Value))

	case *ast.NumberLiteral:
		switch n := e.Value.(type) {
		case int64:
			return constant(evaluator.Number(float64(n)))
		case float64:
			return constant(evaluator.Number(n))
		}
		l.errorf(e, "invalid number literal %s", e.Literal)
		return constant(evaluator.Undefined)

	case *ast.StringLiteral:
		return constant(evaluator.String(e.Value))

	case *ast.ArrayLiteral:
		arr := &evaluator.ArrayLiteral{Elements: make([]evaluator.Expression, len(e.Value))}
		for i, item := range e.Value {
			if _, hole := item.(*ast.EmptyExpression); item != nil && !hole {
				arr.Elements[i] = l.expression(item)
			}
		}
		return arr

	case *ast.ObjectLiteral:
		return l.objectLiteral(e)

	case *ast.FunctionLiteral:
		return l.function(e)

	case *ast.DotExpression:
		return &evaluator.GetMember{
			Object:   l.expression(e.Left),
			Property: constant(evaluator.String(e.Identifier.Name)),
		}

	case *ast.BracketExpression:
		return &evaluator.GetMember{
			Object:   l.expression(e.Left),
			Property: l.expression(e.Member),
			Computed: true,
		}

	case *ast.CallExpression:
		return &evaluator.Call{Callee: l.expression(e.Callee), Arguments: l.expressions(e.ArgumentList)}

	case *ast.NewExpression:
		return &evaluator.Call{
			Callee:    l.expression(e.Callee),
			Arguments: l.expressions(e.ArgumentList),
			Construct: true,
		}

	case *ast.AssignExpression:
		a := &evaluator.Assign{Target: l.expression(e.Left), Value: l.expression(e.Right)}
		if e.Operator != token.ASSIGN {
			op, ok := binaryOperators[e.Operator]
			if !ok {
				l.errorf(e, "unsupported assignment operator %s", e.Operator)
			}
			a.Operator = op
		}
		return a

	case *ast.BinaryExpression:
		left, right := l.expression(e.Left), l.expression(e.Right)
		switch e.Operator {
		case token.LOGICAL_AND:
			return &evaluator.Logical{Operator: evaluator.OpAnd, Left: left, Right: right}
		case token.LOGICAL_OR:
			return &evaluator.Logical{Operator: evaluator.OpOr, Left: left, Right: right}
		}
		op, ok := binaryOperators[e.Operator]
		if !ok {
			l.errorf(e, "unsupported operator %s", e.Operator)
		}
		return &evaluator.Binary{Operator: op, Left: left, Right: right}

	case *ast.UnaryExpression:
		operand := l.expression(e.Operand)
		switch e.Operator {
		case token.INCREMENT, token.DECREMENT:
			return &evaluator.Update{
				Increment: e.Operator == token.INCREMENT,
				Prefix:    !e.Postfix,
				Target:    operand,
			}
		}
		op, ok := unaryOperators[e.Operator]
		if !ok {
			l.errorf(e, "unsupported operator %s", e.Operator)
		}
		return &evaluator.Unary{Operator: op, Operand: operand}

	case *ast.ConditionalExpression:
		return &evaluator.Conditional{
			Test:       l.expression(e.Test),
			Consequent: l.expression(e.Consequent),
			Alternate:  l.expression(e.Alternate),
		}

	case *ast.SequenceExpression:
		return &evaluator.Sequence{Expressions: l.expressions(e.Sequence)}

	case *ast.VariableExpression:
		var init evaluator.Expression = constant(evaluator.Undefined)
		if e.Initializer != nil {
			init = l.expression(e.Initializer)
		}
		return &evaluator.Assign{Target: evaluator.NewIdentifier(e.Name), Value: init}

	case *ast.EmptyExpression:
		return constant(evaluator.Undefined)

	case *ast.RegExpLiteral:
		l.errorf(e, "regular expression literals are not supported")
		return constant(evaluator.Undefined)
	}
	l.errorf(e, "unexpected expression %T", e)
	return constant(evaluator.Undefined)
}

func (l *lowerer) objectLiteral(e *ast.ObjectLiteral) *evaluator.ObjectLiteral {
	obj := &evaluator.ObjectLiteral{}
	for _, p := range e.Value {
		def := evaluator.PropertyDefinition{Key: p.Key, Value: l.expression(p.Value)}
		switch p.Kind {
		case "get":
			def.Kind = evaluator.PropertyGet
		case "set":
			def.Kind = evaluator.PropertySet
		}
		obj.Properties = append(obj.Properties, def)
	}
	return obj
}

func (l *lowerer) function(lit *ast.FunctionLiteral) *evaluator.FunctionDefinition {
	def := &evaluator.FunctionDefinition{Source: lit.Source}
	if lit.Name != nil {
		def.Name = lit.Name.Name
	}
	if lit.ParameterList != nil {
		for _, p := range lit.ParameterList.List {
			def.Parameters = append(def.Parameters, &evaluator.Parameter{Name: p.Name})
		}
	}
	def.Body = l.block(lit.Body)
	if b, ok := lit.Body.(*ast.BlockStatement); ok && hasUseStrict(b.List) {
		def.Statistics.Strict = true
	}
	return def
}
