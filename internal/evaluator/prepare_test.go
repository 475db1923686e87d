package evaluator

import (
	"testing"
)

func prepareScript(t *testing.T, stmts ...Statement) *Script {
	t.Helper()
	s := NewScript("test", "", stmts, false)
	s.Prepare()
	return s
}

func TestResolveSlotsAndHops(t *testing.T) {
	// function outer(a) { var b; function inner() { return a + b + g; } }
	a, b, g := ident("a"), ident("b"), ident("g")
	inner := declare("inner", nil, ret(bin(OpAdd, bin(OpAdd, a, b), g)))
	outer := declare("outer", []string{"a"}, varDecl("b", nil), inner)
	prepareScript(t, outer)

	if a.mode != resolveSlot || a.Hops() != 1 {
		t.Errorf("a: mode %d hops %d", a.mode, a.Hops())
	}
	if b.mode != resolveSlot || b.Hops() != 1 {
		t.Errorf("b: mode %d hops %d", b.mode, b.Hops())
	}
	if !g.IsGlobal() {
		t.Errorf("g should resolve to the global object")
	}
	if !a.Descriptor().Captured {
		t.Error("a should be marked captured")
	}
	if outer.Function.Layout().Size() != 3 {
		t.Errorf("outer layout size = %d, want 3 (a, b, inner)", outer.Function.Layout().Size())
	}
}

func TestEvalDemotesEscapingNames(t *testing.T) {
	// function f() { var local; eval(""); function g() { return free + local; } return free; }
	free1, free2, local := ident("free"), ident("free"), ident("local")
	g := declare("g", nil, ret(bin(OpAdd, free1, local)))
	f := declare("f", nil,
		varDecl("local", nil),
		expr(call(ident("eval"), str(""))),
		g,
		ret(free2),
	)
	// function h() { return other; }
	other := ident("other")
	h := declare("h", nil, ret(other))
	prepareScript(t, f, h)

	if !f.Function.Statistics.ContainsEval {
		t.Fatal("ContainsEval not set")
	}
	if !free1.IsDynamic() || !free2.IsDynamic() {
		t.Error("free names of an eval-containing function must be dynamic")
	}
	if local.IsDynamic() {
		t.Error("a name declared in the eval-containing function stays slot-resolved")
	}
	if !other.IsGlobal() {
		t.Error("functions without eval keep global resolution")
	}
}

func TestCatchParameterBinding(t *testing.T) {
	// function f() { try { throw 1; } catch (e) { return e; } }
	e := ident("e")
	try := &Try{
		Block:      &Block{Statements: []Statement{&Throw{Argument: num(1)}}},
		CatchParam: ident("e"),
		Catch:      &Block{Statements: []Statement{ret(e)}},
	}
	f := declare("f", nil, try)
	prepareScript(t, f)
	if e.mode != resolveSlot || !e.catchBound {
		t.Errorf("catch parameter use: mode %d catchBound %v", e.mode, e.catchBound)
	}
	if !f.Function.Statistics.ContainsTry {
		t.Error("ContainsTry not set")
	}
}

func TestPrepareDiagnostics(t *testing.T) {
	tests := []struct {
		name string
		stmt Statement
	}{
		{"return at top level", ret(num(1))},
		{"break outside loop", &Break{}},
		{"continue outside loop", &Continue{}},
		{"undefined label", &While{Test: num(1), Body: &Break{Label: "nope"}}},
		{"invalid assignment", expr(&Assign{Target: num(1), Value: num(2)})},
		{"spread not last", expr(call(ident("f"), &Spread{Argument: ident("a")}, num(1)))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := prepareScript(t, tt.stmt)
			if !s.HasErrors() {
				t.Errorf("no diagnostic for %s", tt.stmt.String())
			}
		})
	}
}

func TestFunctionStatistics(t *testing.T) {
	// function f() { return this.x + arguments[0] + (function () {})(); }
	body := ret(bin(OpAdd,
		bin(OpAdd, member(&This{}, "x"), &GetMember{Object: ident("arguments"), Property: num(0), Computed: true}),
		call(function("", nil)),
	))
	f := declare("f", nil, body)
	prepareScript(t, f)
	st := f.Function.Statistics
	if !st.ContainsThis || !st.ContainsArguments || !st.ContainsInnerFunctions || !st.UseCall || !st.HasReturn {
		t.Errorf("statistics = %+v", st)
	}
}
