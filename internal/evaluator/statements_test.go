package evaluator

import (
	"testing"
)

func TestLoopsAndLabels(t *testing.T) {
	r := testRealm(t)
	// var n = 0;
	// outer: for (var i = 0; i < 5; i++) {
	//   for (var j = 0; j < 5; j++) {
	//     if (j == 2) continue outer;
	//     if (i == 3) break outer;
	//     n++;
	//   }
	// }
	// n
	incr := func(name string) Expression { return &Update{Increment: true, Target: ident(name)} }
	innerLoop := &For{
		Init:   varDecl("j", num(0)),
		Test:   bin(OpLess, ident("j"), num(5)),
		Update: incr("j"),
		Body: &Block{Statements: []Statement{
			&If{Test: bin(OpEq, ident("j"), num(2)), Consequent: &Continue{Label: "outer"}},
			&If{Test: bin(OpEq, ident("i"), num(3)), Consequent: &Break{Label: "outer"}},
			expr(incr("n")),
		}},
	}
	v, err := runScript(t, r,
		varDecl("n", num(0)),
		&Labeled{Label: "outer", Body: &For{
			Init:   varDecl("i", num(0)),
			Test:   bin(OpLess, ident("i"), num(5)),
			Update: incr("i"),
			Body:   &Block{Statements: []Statement{innerLoop}},
		}},
		expr(ident("n")),
	)
	if err != nil {
		t.Fatal(err)
	}
	if v.Number() != 6 {
		t.Errorf("n = %v, want 6", v)
	}
}

func TestSwitchFallsThrough(t *testing.T) {
	r := testRealm(t)
	// var s = ""; switch (2) { case 1: s += "a"; case 2: s += "b"; case 3: s += "c"; break; default: s += "d"; } s
	appendS := func(x string) Statement {
		return expr(&Assign{Target: ident("s"), Operator: OpAdd, Value: str(x)})
	}
	v, err := runScript(t, r,
		varDecl("s", str("")),
		&Switch{Discriminant: num(2), Cases: []*SwitchCase{
			{Test: num(1), Body: []Statement{appendS("a")}},
			{Test: num(2), Body: []Statement{appendS("b")}},
			{Test: num(3), Body: []Statement{appendS("c"), &Break{}}},
			{Body: []Statement{appendS("d")}},
		}},
		expr(ident("s")),
	)
	if err != nil {
		t.Fatal(err)
	}
	if v.Str() != "bc" {
		t.Errorf("s = %q, want %q", v.Str(), "bc")
	}
}

func TestSwitchUsesStrictEquality(t *testing.T) {
	r := testRealm(t)
	v, err := runScript(t, r,
		varDecl("s", str("none")),
		&Switch{Discriminant: str("1"), Cases: []*SwitchCase{
			{Test: num(1), Body: []Statement{assign(ident("s"), str("number")), &Break{}}},
			{Body: []Statement{assign(ident("s"), str("default"))}},
		}},
		expr(ident("s")),
	)
	if err != nil {
		t.Fatal(err)
	}
	if v.Str() != "default" {
		t.Errorf("s = %q", v.Str())
	}
}

func TestForInSkipsDeletedKeys(t *testing.T) {
	r := testRealm(t)
	// var o = { a: 1, b: 2, c: 3 }; var keys = "";
	// for (var k in o) { delete o.c; keys += k; } keys
	v, err := runScript(t, r,
		varDecl("o", &ObjectLiteral{Properties: []PropertyDefinition{
			{Key: "a", Value: num(1)}, {Key: "b", Value: num(2)}, {Key: "c", Value: num(3)},
		}}),
		varDecl("keys", str("")),
		&ForIn{Target: ident("k"), Declare: true, Object: ident("o"), Body: &Block{Statements: []Statement{
			expr(&Unary{Operator: OpDelete, Operand: member(ident("o"), "c")}),
			expr(&Assign{Target: ident("keys"), Operator: OpAdd, Value: ident("k")}),
		}}},
		expr(ident("keys")),
	)
	if err != nil {
		t.Fatal(err)
	}
	if v.Str() != "ab" {
		t.Errorf("keys = %q, want %q", v.Str(), "ab")
	}
}

func TestTryCatchFinally(t *testing.T) {
	r := testRealm(t)
	// var log = "";
	// function f() { try { undefinedName; } catch (e) { log += e.name; return 1; } finally { log += "!"; } }
	// f()
	f := declare("f", nil, &Try{
		Block:      &Block{Statements: []Statement{expr(ident("undefinedName"))}},
		CatchParam: ident("e"),
		Catch: &Block{Statements: []Statement{
			expr(&Assign{Target: ident("log"), Operator: OpAdd, Value: member(ident("e"), "name")}),
			ret(num(1)),
		}},
		Finally: &Block{Statements: []Statement{
			expr(&Assign{Target: ident("log"), Operator: OpAdd, Value: str("!")}),
		}},
	})
	v, err := runScript(t, r, varDecl("log", str("")), f, expr(call(ident("f"))))
	if err != nil {
		t.Fatal(err)
	}
	if v.Number() != 1 {
		t.Errorf("f() = %v", v)
	}
	if got := globalValue(t, r, "log").Str(); got != "ReferenceError!" {
		t.Errorf("log = %q", got)
	}
}

func TestFinallyOverridesReturn(t *testing.T) {
	r := testRealm(t)
	f := declare("f", nil, &Try{
		Block:   &Block{Statements: []Statement{ret(num(1))}},
		Finally: &Block{Statements: []Statement{ret(num(2))}},
	})
	v, err := runScript(t, r, f, expr(call(ident("f"))))
	if err != nil {
		t.Fatal(err)
	}
	if v.Number() != 2 {
		t.Errorf("f() = %v, want 2", v)
	}
}

func TestUncaughtThrowCarriesValue(t *testing.T) {
	r := testRealm(t)
	_, err := runScript(t, r, &Throw{Argument: str("boom")})
	exc, ok := err.(*Exception)
	if !ok {
		t.Fatalf("expected *Exception, got %T", err)
	}
	if exc.Value.Str() != "boom" {
		t.Errorf("thrown value = %s", exc.Value.Inspect())
	}
}

func TestCompletionValue(t *testing.T) {
	r := testRealm(t)
	_, err := runScript(t, r,
		expr(num(1)),
		&If{Test: ident("x"), Consequent: expr(num(2))},
		varDecl("y", num(3)),
	)
	if kind, ok := KindOf(err); !ok || kind != ErrReference {
		t.Fatalf("expected ReferenceError for x, got %v", err)
	}
	v, err := runScript(t, r, expr(num(1)), varDecl("y", num(3)))
	if err != nil {
		t.Fatal(err)
	}
	if v.Number() != 1 {
		t.Errorf("completion value = %v, want 1", v)
	}
}

func TestCatchParameterSharesOneSlot(t *testing.T) {
	r := testRealm(t)
	// function f() {
	//   var fs = [];
	//   for (var i = 0; i < 2; i += 1) {
	//     try { throw i; } catch (e) { fs[i] = function () { return e; }; }
	//   }
	//   return fs[0]();
	// }
	// f()
	loop := &For{
		Init:   varDecl("i", num(0)),
		Test:   bin(OpLess, ident("i"), num(2)),
		Update: &Assign{Target: ident("i"), Operator: OpAdd, Value: num(1)},
		Body: &Block{Statements: []Statement{&Try{
			Block:      &Block{Statements: []Statement{&Throw{Argument: ident("i")}}},
			CatchParam: ident("e"),
			Catch: &Block{Statements: []Statement{
				assign(&GetMember{Object: ident("fs"), Property: ident("i"), Computed: true},
					function("", nil, ret(ident("e")))),
			}},
		}}},
	}
	f := declare("f", nil,
		varDecl("fs", &ArrayLiteral{}),
		loop,
		ret(call(&GetMember{Object: ident("fs"), Property: num(0), Computed: true})),
	)
	v, err := runScript(t, r, f, expr(call(ident("f"))))
	if err != nil {
		t.Fatal(err)
	}
	// Closures made in different runs of the catch block see the last
	// exception.
	if v.Number() != 1 {
		t.Errorf("fs[0]() = %v, want 1", v)
	}
}

func TestReturnValueIsNotReplacedByPriorStatement(t *testing.T) {
	tests := []struct {
		name string
		body []Statement
		want float64
	}{
		// function f() { var x; x = 5; return 1; }
		{"top level", []Statement{varDecl("x", nil), assign(ident("x"), num(5)), ret(num(1))}, 1},
		// function f() { var x; { x = 5; return 2; } }
		{"nested block", []Statement{varDecl("x", nil), &Block{Statements: []Statement{assign(ident("x"), num(5)), ret(num(2))}}}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := testRealm(t)
			v, err := runScript(t, r, declare("f", nil, tt.body...), expr(call(ident("f"))))
			if err != nil {
				t.Fatal(err)
			}
			if v.Number() != tt.want {
				t.Errorf("f() = %v, want %v", v, tt.want)
			}
		})
	}
}
