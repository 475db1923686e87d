package parser

import (
	"github.com/robertkrimen/otto/ast"
	"github.com/robertkrimen/otto/token"

	"github.com/rmja/niljs/internal/evaluator"
)

func (l *lowerer) statements(list []ast.Statement) []evaluator.Statement {
	out := make([]evaluator.Statement, 0, len(list))
	for _, s := range list {
		out = append(out, l.statement(s))
	}
	return out
}

func (l *lowerer) block(s ast.Statement) *evaluator.Block {
	if b, ok := s.(*ast.BlockStatement); ok {
		return &evaluator.Block{Statements: l.statements(b.List)}
	}
	return &evaluator.Block{Statements: []evaluator.Statement{l.statement(s)}}
}

func (l *lowerer) optionalStatement(s ast.Statement) evaluator.Statement {
	if s == nil {
		return nil
	}
	return l.statement(s)
}

func (l *lowerer) statement(s ast.Statement) evaluator.Statement {
	switch s := s.(type) {
	case *ast.BlockStatement:
		return &evaluator.Block{Statements: l.statements(s.List)}

	case *ast.EmptyStatement, *ast.DebuggerStatement:
		return &evaluator.Empty{}

	case *ast.ExpressionStatement:
		return &evaluator.ExpressionStatement{Expression: l.expression(s.Expression)}

	case *ast.VariableStatement:
		return l.varDeclaration(s.List)

	case *ast.FunctionStatement:
		def := l.function(s.Function)
		def.Declaration = true
		return &evaluator.FunctionDeclaration{Function: def}

	case *ast.ReturnStatement:
		return &evaluator.Return{Argument: l.optionalExpression(s.Argument)}

	case *ast.IfStatement:
		return &evaluator.If{
			Test:       l.expression(s.Test),
			Consequent: l.statement(s.Consequent),
			Alternate:  l.optionalStatement(s.Alternate),
		}

	case *ast.ForStatement:
		return &evaluator.For{
			Init:   l.forInitializer(s.Initializer),
			Test:   l.optionalExpression(s.Test),
			Update: l.optionalExpression(s.Update),
			Body:   l.statement(s.Body),
		}

	case *ast.ForInStatement:
		return l.forIn(s)

	case *ast.WhileStatement:
		return &evaluator.While{Test: l.expression(s.Test), Body: l.statement(s.Body)}

	case *ast.DoWhileStatement:
		return &evaluator.DoWhile{Body: l.statement(s.Body), Test: l.expression(s.Test)}

	case *ast.BranchStatement:
		label := ""
		if s.Label != nil {
			label = s.Label.Name
		}
		if s.Token == token.CONTINUE {
			return &evaluator.Continue{Label: label}
		}
		return &evaluator.Break{Label: label}

	case *ast.LabelledStatement:
		return &evaluator.Labeled{Label: s.Label.Name, Body: l.statement(s.Statement)}

	case *ast.SwitchStatement:
		sw := &evaluator.Switch{Discriminant: l.expression(s.Discriminant)}
		for _, c := range s.Body {
			sw.Cases = append(sw.Cases, &evaluator.SwitchCase{
				Test: l.optionalExpression(c.Test),
				Body: l.statements(c.Consequent),
			})
		}
		return sw

	case *ast.ThrowStatement:
		return &evaluator.Throw{Argument: l.expression(s.Argument)}

	case *ast.TryStatement:
		t := &evaluator.Try{Block: l.block(s.Body)}
		if s.Catch != nil {
			t.CatchParam = evaluator.NewIdentifier(s.Catch.Parameter.Name)
			t.Catch = l.block(s.Catch.Body)
		}
		if s.Finally != nil {
			t.Finally = l.block(s.Finally)
		}
		return t

	case *ast.WithStatement:
		l.errorf(s, "with statement is not supported")
		return &evaluator.Empty{}
	}
	l.errorf(s, "unexpected statement %T", s)
	return &evaluator.Empty{}
}

func (l *lowerer) varDeclaration(list []ast.Expression) *evaluator.VarDeclaration {
	decl := &evaluator.VarDeclaration{}
	for _, e := range list {
		v, ok := e.(*ast.VariableExpression)
		if !ok {
			l.errorf(e, "unexpected %T in variable declaration", e)
			continue
		}
		decl.Declarations = append(decl.Declarations, &evaluator.VarDeclarator{
			Name: evaluator.NewIdentifier(v.Name),
			Init: l.optionalExpression(v.Initializer),
		})
	}
	return decl
}

// forInitializer lowers the first clause of a for statement; a var list
// arrives as a sequence of variable expressions.
func (l *lowerer) forInitializer(e ast.Expression) evaluator.Statement {
	switch e := e.(type) {
	case nil:
		return nil
	case *ast.VariableExpression:
		return l.varDeclaration([]ast.Expression{e})
	case *ast.SequenceExpression:
		if len(e.Sequence) > 0 {
			if _, ok := e.Sequence[0].(*ast.VariableExpression); ok {
				return l.varDeclaration(e.Sequence)
			}
		}
	}
	return &evaluator.ExpressionStatement{Expression: l.expression(e)}
}

func (l *lowerer) forIn(s *ast.ForInStatement) evaluator.Statement {
	loop := &evaluator.ForIn{Object: l.expression(s.Source), Body: l.statement(s.Body)}
	v, ok := s.Into.(*ast.VariableExpression)
	if !ok {
		loop.Target = l.expression(s.Into)
		return loop
	}
	loop.Target = evaluator.NewIdentifier(v.Name)
	loop.Declare = true
	if v.Initializer == nil {
		return loop
	}
	// for (var k = init in o) assigns init before enumeration starts.
	return &evaluator.Block{Statements: []evaluator.Statement{
		l.varDeclaration([]ast.Expression{v}),
		loop,
	}}
}
