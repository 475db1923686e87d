package evaluator

import (
	"context"
	"testing"

	"github.com/rmja/niljs/internal/config"
)

// Tree builders for tests that run without the parser.

func num(f float64) *Constant       { return &Constant{Value: Number(f)} }
func str(s string) *Constant        { return &Constant{Value: String(s)} }
func ident(name string) *Identifier { return &Identifier{Name: name} }

func member(obj Expression, name string) *GetMember {
	return &GetMember{Object: obj, Property: str(name)}
}

func call(callee Expression, args ...Expression) *Call {
	return &Call{Callee: callee, Arguments: args}
}

func bin(op BinaryOperator, l, r Expression) *Binary {
	return &Binary{Operator: op, Left: l, Right: r}
}

func assign(target, value Expression) *ExpressionStatement {
	return &ExpressionStatement{Expression: &Assign{Target: target, Value: value}}
}

func expr(e Expression) *ExpressionStatement { return &ExpressionStatement{Expression: e} }

func ret(e Expression) *Return { return &Return{Argument: e} }

func varDecl(name string, init Expression) *VarDeclaration {
	return &VarDeclaration{Declarations: []*VarDeclarator{{Name: ident(name), Init: init}}}
}

func function(name string, params []string, body ...Statement) *FunctionDefinition {
	def := &FunctionDefinition{Name: name, Body: &Block{Statements: body}}
	for _, p := range params {
		def.Parameters = append(def.Parameters, &Parameter{Name: p})
	}
	return def
}

func declare(name string, params []string, body ...Statement) *FunctionDeclaration {
	return &FunctionDeclaration{Function: function(name, params, body...)}
}

func testRealm(t *testing.T) *Realm {
	t.Helper()
	return NewRealm(config.Default().Engine)
}

func runScript(t *testing.T, r *Realm, stmts ...Statement) (Value, error) {
	t.Helper()
	s := NewScript("test", "", stmts, false)
	if s.Prepare(); s.HasErrors() {
		t.Fatalf("prepare: %v", s.Diagnostics())
	}
	s.Simplify()
	return r.Run(context.Background(), s)
}

func globalValue(t *testing.T, r *Realm, name string) Value {
	t.Helper()
	v, err := r.Global.Get(nil, ObjectValue(r.Global), name)
	if err != nil {
		t.Fatalf("reading %s: %v", name, err)
	}
	return v
}
