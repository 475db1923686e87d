package evaluator

import (
	"strings"
	"testing"

	"github.com/rmja/niljs/internal/config"
)

func TestNonCallableEvaluatesArgumentsFirst(t *testing.T) {
	r := testRealm(t)
	// var log = 0; function g() { return 1; } function sideEffect() { log = 1; }
	// g()(sideEffect());
	_, err := runScript(t, r,
		varDecl("log", num(0)),
		declare("g", nil, ret(num(1))),
		declare("sideEffect", nil, assign(ident("log"), num(1))),
		expr(call(call(ident("g")), call(ident("sideEffect")))),
	)
	kind, ok := KindOf(err)
	if !ok || kind != ErrType {
		t.Fatalf("expected TypeError, got %v", err)
	}
	if !strings.Contains(err.Error(), "g() is not callable") {
		t.Errorf("unexpected message %q", err.Error())
	}
	if got := globalValue(t, r, "log"); got.Number() != 1 {
		t.Errorf("argument was not evaluated before the error, log = %v", got)
	}
}

// countdown(n) { return n === 0 ? 0 : countdown(n - 1); }
func countdown(name string) *FunctionDeclaration {
	n := func() Expression { return ident("n") }
	return declare(name, []string{"n"},
		ret(&Conditional{
			Test:       bin(OpStrictEq, n(), num(0)),
			Consequent: num(0),
			Alternate:  call(ident(name), bin(OpSub, n(), num(1))),
		}),
	)
}

// depth(n) { return n === 0 ? 0 : 1 + depth(n - 1); }
func depth(name string) *FunctionDeclaration {
	n := func() Expression { return ident("n") }
	return declare(name, []string{"n"},
		ret(&Conditional{
			Test:       bin(OpStrictEq, n(), num(0)),
			Consequent: num(0),
			Alternate:  bin(OpAdd, num(1), call(ident(name), bin(OpSub, n(), num(1)))),
		}),
	)
}

func TestSelfTailRecursionRunsInConstantStack(t *testing.T) {
	r := testRealm(t)
	v, err := runScript(t, r,
		countdown("f"),
		expr(call(ident("f"), num(1000000))),
	)
	if err != nil {
		t.Fatalf("f(1000000) failed: %v", err)
	}
	if v.Kind() != KindNumber || v.Number() != 0 {
		t.Errorf("f(1000000) = %v, want 0", v)
	}
}

func TestNonTailRecursionOverflows(t *testing.T) {
	r := testRealm(t)
	_, err := runScript(t, r,
		depth("h"),
		expr(call(ident("h"), num(1000000))),
	)
	kind, ok := KindOf(err)
	if !ok || kind != ErrRange {
		t.Fatalf("expected RangeError, got %v", err)
	}
	if !strings.Contains(err.Error(), "Stack overflow.") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestNonTailRecursionWithinLimit(t *testing.T) {
	r := testRealm(t)
	v, err := runScript(t, r,
		depth("h"),
		expr(call(ident("h"), num(100))),
	)
	if err != nil {
		t.Fatal(err)
	}
	if v.Number() != 100 {
		t.Errorf("h(100) = %v", v)
	}
}

func TestStackGuardWithoutHeadroom(t *testing.T) {
	opts := config.Default().Engine
	opts.MaxCallDepth = 0
	r := NewRealm(opts)
	_, err := runScript(t, r,
		declare("f", nil, ret(num(1))),
		expr(call(ident("f"))),
	)
	if kind, ok := KindOf(err); !ok || kind != ErrRange {
		t.Fatalf("expected RangeError, got %v", err)
	}
}

func TestTailPositionNotMarkedInsideTry(t *testing.T) {
	inner := call(ident("f"), bin(OpSub, ident("n"), num(1)))
	fn := declare("f", []string{"n"},
		&Try{
			Block:   &Block{Statements: []Statement{ret(inner)}},
			Finally: &Block{},
		},
	)
	plain := call(ident("g"), ident("n"))
	gn := declare("g", []string{"n"}, ret(plain))

	s := NewScript("test", "", []Statement{fn, gn}, false)
	s.Prepare()
	if inner.AllowTailCall() {
		t.Error("call inside try must not be a tail call")
	}
	if !plain.AllowTailCall() {
		t.Error("returned self call should be a tail call")
	}
}

func TestConstructNeverTakesTailPath(t *testing.T) {
	c := &Call{Callee: ident("F"), Construct: true}
	fn := declare("F", nil, ret(c))
	s := NewScript("test", "", []Statement{fn}, false)
	s.Prepare()
	if c.AllowTailCall() {
		t.Error("construct call marked as tail call")
	}
}

func TestConstructAllocatesInstance(t *testing.T) {
	r := testRealm(t)
	// function P(x) { this.x = x; } var p = new P(7); p.x
	v, err := runScript(t, r,
		declare("P", []string{"x"}, assign(member(&This{}, "x"), ident("x"))),
		varDecl("p", &Call{Callee: ident("P"), Arguments: []Expression{num(7)}, Construct: true}),
		expr(bin(OpInstanceOf, ident("p"), ident("P"))),
	)
	if err != nil {
		t.Fatal(err)
	}
	if !v.Bool() {
		t.Error("instance is not instanceof its constructor")
	}
	p := globalValue(t, r, "p").Object()
	if p == nil {
		t.Fatal("p is not an object")
	}
	x, _ := p.Get(nil, ObjectValue(p), "x")
	if x.Number() != 7 {
		t.Errorf("p.x = %v", x)
	}
}

func TestMethodCallBindsReceiver(t *testing.T) {
	r := testRealm(t)
	// var o = { k: 3, get: function () { return this.k; } }; o.get()
	v, err := runScript(t, r,
		varDecl("o", &ObjectLiteral{Properties: []PropertyDefinition{
			{Key: "k", Value: num(3)},
			{Key: "get", Value: function("", nil, ret(member(&This{}, "k")))},
		}}),
		expr(call(member(ident("o"), "get"))),
	)
	if err != nil {
		t.Fatal(err)
	}
	if v.Number() != 3 {
		t.Errorf("o.get() = %v", v)
	}
}

func TestSpreadArguments(t *testing.T) {
	r := testRealm(t)
	// function sum(a, b, c) { return a + b + c; } sum(1, ...[2, 3])
	v, err := runScript(t, r,
		declare("sum", []string{"a", "b", "c"},
			ret(bin(OpAdd, bin(OpAdd, ident("a"), ident("b")), ident("c")))),
		expr(call(ident("sum"), num(1), &Spread{Argument: &ArrayLiteral{Elements: []Expression{num(2), num(3)}}})),
	)
	if err != nil {
		t.Fatal(err)
	}
	if v.Number() != 6 {
		t.Errorf("sum = %v", v)
	}
}

func TestArgumentsObject(t *testing.T) {
	r := testRealm(t)
	// function f() { return arguments.length; } f(1, 2, 3)
	v, err := runScript(t, r,
		declare("f", nil, ret(member(ident("arguments"), "length"))),
		expr(call(ident("f"), num(1), num(2), num(3))),
	)
	if err != nil {
		t.Fatal(err)
	}
	if v.Number() != 3 {
		t.Errorf("arguments.length = %v", v)
	}
}

func TestSuperMethodRewrite(t *testing.T) {
	target := call(&GetMember{Object: &Super{}, Property: str("m")}, ident("x"))
	method := function("", []string{"x"}, ret(target))

	r := testRealm(t)
	// var base = { m: function (x) { return x + this.k; } };
	// var mid = { __proto__: base };
	// var obj = { k: 10, f: function (x) { return super.m(x); } };
	// obj.__proto__ = mid; obj.f(5)
	v, err := runScript(t, r,
		varDecl("base", &ObjectLiteral{Properties: []PropertyDefinition{
			{Key: "m", Value: function("", []string{"x"}, ret(bin(OpAdd, ident("x"), member(&This{}, "k"))))},
		}}),
		varDecl("mid", &ObjectLiteral{Properties: []PropertyDefinition{
			{Key: "__proto__", Value: ident("base")},
		}}),
		varDecl("obj", &ObjectLiteral{Properties: []PropertyDefinition{
			{Key: "k", Value: num(10)},
			{Key: "f", Value: method},
		}}),
		assign(member(ident("obj"), "__proto__"), ident("mid")),
		expr(call(member(ident("obj"), "f"), num(5))),
	)
	if err != nil {
		t.Fatal(err)
	}
	if want := "this.__proto__.__proto__.m.call(this, x)"; target.String() != want {
		t.Errorf("rewritten call = %s, want %s", target.String(), want)
	}
	if v.Number() != 15 {
		t.Errorf("obj.f(5) = %v, want 15", v)
	}
}

func TestSuperOutsideFunctionIsDiagnosed(t *testing.T) {
	s := NewScript("test", "", []Statement{expr(call(&Super{}))}, false)
	s.Prepare()
	if !s.HasErrors() {
		t.Error("expected a diagnostic for super at script level")
	}
}

func TestDirectEvalFlag(t *testing.T) {
	r := testRealm(t)
	var direct []bool
	r.Define("eval", FunctionValue(r.NewNativeFunction("eval", 1, func(inv *Invocation) (Value, error) {
		direct = append(direct, inv.Flags&CallDirectEval != 0)
		return Undefined, nil
	})))
	// eval("1"); var e = eval; e("1");
	_, err := runScript(t, r,
		expr(call(ident("eval"), str("1"))),
		varDecl("e", ident("eval")),
		expr(call(ident("e"), str("1"))),
	)
	if err != nil {
		t.Fatal(err)
	}
	if len(direct) != 2 || !direct[0] || direct[1] {
		t.Errorf("direct flags = %v, want [true false]", direct)
	}
}

func TestTailCallRebindsReceiver(t *testing.T) {
	r := testRealm(t)
	// function f(n) { return n === 0 ? this.tag : o2.f(n - 1); }
	// var o1 = { tag: 1, f: f }, o2 = { tag: 2, f: f }; o1.f(1)
	tail := call(member(ident("o2"), "f"), bin(OpSub, ident("n"), num(1)))
	v, err := runScript(t, r,
		declare("f", []string{"n"}, ret(&Conditional{
			Test:       bin(OpStrictEq, ident("n"), num(0)),
			Consequent: member(&This{}, "tag"),
			Alternate:  tail,
		})),
		varDecl("o1", &ObjectLiteral{Properties: []PropertyDefinition{
			{Key: "tag", Value: num(1)},
			{Key: "f", Value: ident("f")},
		}}),
		varDecl("o2", &ObjectLiteral{Properties: []PropertyDefinition{
			{Key: "tag", Value: num(2)},
			{Key: "f", Value: ident("f")},
		}}),
		expr(call(member(ident("o1"), "f"), num(1))),
	)
	if err != nil {
		t.Fatal(err)
	}
	if !tail.AllowTailCall() {
		t.Error("o2.f(n - 1) should be a tail call")
	}
	if v.Number() != 2 {
		t.Errorf("o1.f(1) = %v, want 2", v)
	}
}

func TestOnlyMemberCalleeBindsReceiver(t *testing.T) {
	isO := func() *FunctionDeclaration {
		return declare("h", nil, ret(bin(OpStrictEq, &This{}, ident("o"))))
	}
	obj := func() *VarDeclaration {
		return varDecl("o", &ObjectLiteral{Properties: []PropertyDefinition{
			{Key: "a", Value: num(1)},
			{Key: "h", Value: ident("h")},
		}})
	}
	tests := []struct {
		name   string
		callee Expression
		want   bool
	}{
		{"member", member(ident("o"), "h"), true},
		{"sequence ending in identifier", &Sequence{Expressions: []Expression{member(ident("o"), "a"), ident("h")}}, false},
		{"indirect member", &Sequence{Expressions: []Expression{num(0), member(ident("o"), "h")}}, false},
		{"conditional", &Conditional{Test: ident("o"), Consequent: member(ident("o"), "h"), Alternate: ident("h")}, false},
		{"folded conditional", &Conditional{Test: num(1), Consequent: member(ident("o"), "h"), Alternate: ident("h")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := testRealm(t)
			v, err := runScript(t, r, isO(), obj(), expr(call(tt.callee)))
			if err != nil {
				t.Fatal(err)
			}
			if v.Bool() != tt.want {
				t.Errorf("this === o is %v, want %v", v.Bool(), tt.want)
			}
		})
	}
}
