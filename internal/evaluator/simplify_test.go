package evaluator

import (
	"context"
	"math/rand/v2"
	"testing"
)

var foldableBinary = []BinaryOperator{
	OpAdd, OpSub, OpMul, OpDiv, OpMod, OpShl, OpShr, OpUShr,
	OpBitAnd, OpBitOr, OpBitXor, OpEq, OpNotEq, OpStrictEq, OpStrictNotEq,
	OpLess, OpLessEq, OpGreater, OpGreaterEq,
}

var foldableUnary = []UnaryOperator{OpNot, OpNegate, OpPlus, OpBitNot, OpTypeOf, OpVoid}

var leafValues = []Value{
	Undefined, Null, True, False,
	Number(0), Number(-1), Number(2.5), Number(nan), Number(posInf), Number(1 << 31),
	String(""), String("3"), String("abc"), String(" 7 "),
}

// randomTree builds an expression tree over constants and the global x.
// The same seed always yields the same tree.
func randomTree(rng *rand.Rand, depth int) Expression {
	if depth == 0 || rng.IntN(4) == 0 {
		if rng.IntN(5) == 0 {
			x := ident("x")
			x.mode = resolveGlobal
			return x
		}
		return &Constant{Value: leafValues[rng.IntN(len(leafValues))]}
	}
	switch rng.IntN(5) {
	case 0:
		return &Unary{Operator: foldableUnary[rng.IntN(len(foldableUnary))], Operand: randomTree(rng, depth-1)}
	case 1:
		return &Conditional{Test: randomTree(rng, depth-1), Consequent: randomTree(rng, depth-1), Alternate: randomTree(rng, depth-1)}
	case 2:
		op := OpAnd
		if rng.IntN(2) == 0 {
			op = OpOr
		}
		return &Logical{Operator: op, Left: randomTree(rng, depth-1), Right: randomTree(rng, depth-1)}
	case 3:
		return &Sequence{Expressions: []Expression{randomTree(rng, depth-1), randomTree(rng, depth-1)}}
	}
	op := foldableBinary[rng.IntN(len(foldableBinary))]
	return &Binary{Operator: op, Left: randomTree(rng, depth-1), Right: randomTree(rng, depth-1)}
}

func TestSimplifyPreservesSemantics(t *testing.T) {
	r := testRealm(t)
	r.Define("x", String("12"))
	for seed := uint64(1); seed <= 500; seed++ {
		original := randomTree(rand.New(rand.NewPCG(seed, seed)), 4)
		simplified := randomTree(rand.New(rand.NewPCG(seed, seed)), 4).Simplify()

		want, werr := original.Evaluate(r.NewContext(context.Background()))
		got, gerr := simplified.Evaluate(r.NewContext(context.Background()))
		if (werr != nil) != (gerr != nil) {
			t.Fatalf("seed %d: error mismatch: %v vs %v", seed, werr, gerr)
		}
		if !SameValue(want, got) {
			t.Fatalf("seed %d: %s = %v, simplified %s = %v", seed, original, want, simplified, got)
		}
	}
}

func TestSimplifyIsIdempotent(t *testing.T) {
	for seed := uint64(1); seed <= 500; seed++ {
		once := randomTree(rand.New(rand.NewPCG(seed, seed)), 5).Simplify()
		first := once.String()
		twice := once.Simplify()
		if twice.String() != first {
			t.Fatalf("seed %d: %s simplified again to %s", seed, first, twice.String())
		}
	}
}

func TestSimplifyFolds(t *testing.T) {
	tests := []struct {
		name string
		expr Expression
		want string
	}{
		{"arithmetic", bin(OpMul, bin(OpAdd, num(1), num(2)), num(4)), "12"},
		{"concat", bin(OpAdd, str("a"), num(1)), `"a1"`},
		{"xor", bin(OpBitXor, num(5), num(3)), "6"},
		{"conditional", &Conditional{Test: num(0), Consequent: str("yes"), Alternate: str("no")}, `"no"`},
		{"typeof function", &Unary{Operator: OpTypeOf, Operand: function("", nil)}, `"function"`},
		{"sequence keeps last", &Sequence{Expressions: []Expression{num(1), str("x")}}, `"x"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.expr.Simplify().String(); got != tt.want {
				t.Errorf("Simplify() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestSimplifyKeepsEffects(t *testing.T) {
	// (f(), 1) must keep the call; x = 1 + 2 must keep the target.
	seq := &Sequence{Expressions: []Expression{call(ident("f")), num(1)}}
	if _, ok := seq.Simplify().(*Sequence); !ok {
		t.Error("sequence with a call was collapsed")
	}
	target := ident("x")
	target.mode = resolveGlobal
	a := &Assign{Target: target, Value: bin(OpAdd, num(1), num(2))}
	a.Simplify()
	if a.Target != Expression(target) {
		t.Error("assignment target was rewritten")
	}
	if a.Value.String() != "3" {
		t.Errorf("assignment value = %s", a.Value.String())
	}
}

func TestSimplifyDropsDeadStatements(t *testing.T) {
	b := &Block{Statements: []Statement{
		&Empty{},
		&If{Test: num(0), Consequent: expr(call(ident("f")))},
		&While{Test: &Constant{Value: False}, Body: expr(call(ident("g")))},
		expr(num(1)),
	}}
	b.simplifyInPlace()
	if len(b.Statements) != 1 {
		t.Errorf("expected one statement, got %d: %s", len(b.Statements), b.String())
	}
}

func TestMergePrediction(t *testing.T) {
	all := []PredictedType{
		PredictUnknown, PredictAmbiguous, PredictUndefined, PredictNull, PredictBoolean,
		PredictNumber, PredictString, PredictObject, PredictFunction,
	}
	for _, a := range all {
		if got := MergePrediction(PredictUnknown, a); got != a {
			t.Errorf("Unknown is not the identity for %s: %s", a, got)
		}
		if got := MergePrediction(a, a); got != a {
			t.Errorf("merge(%s, %s) = %s", a, a, got)
		}
		if a != PredictUnknown {
			if got := MergePrediction(a, PredictAmbiguous); got != PredictAmbiguous {
				t.Errorf("Ambiguous does not absorb %s: %s", a, got)
			}
		}
		for _, b := range all {
			if MergePrediction(a, b) != MergePrediction(b, a) {
				t.Errorf("merge(%s, %s) is not commutative", a, b)
			}
			for _, c := range all {
				left := MergePrediction(MergePrediction(a, b), c)
				right := MergePrediction(a, MergePrediction(b, c))
				if left != right {
					t.Errorf("merge(%s, %s, %s) is not associative", a, b, c)
				}
			}
		}
	}
	if got := MergePrediction(PredictNumber, PredictString); got != PredictAmbiguous {
		t.Errorf("merge(Number, String) = %s", got)
	}
}

func TestParameterPrediction(t *testing.T) {
	// function f(a, b) {} f(1, 1); f(2, 2); f("x", 3) leaves a Ambiguous and b Number.
	fn := declare("f", []string{"a", "b"})
	s := NewScript("test", "", []Statement{
		fn,
		expr(call(ident("f"), num(1), num(1))),
		expr(call(ident("f"), num(2), num(2))),
		expr(call(ident("f"), str("x"), num(3))),
	}, false)
	s.Prepare()
	params := fn.Function.Parameters
	if params[0].PredictedType != PredictAmbiguous {
		t.Errorf("a predicted %s", params[0].PredictedType)
	}
	if params[1].PredictedType != PredictNumber {
		t.Errorf("b predicted %s", params[1].PredictedType)
	}
}

func TestSimplifyKeepsIndirectCallee(t *testing.T) {
	// (0, o.f)() and (1 ? o.f : g)() must not become method calls.
	tests := []Expression{
		&Sequence{Expressions: []Expression{num(0), member(ident("o"), "f")}},
		&Conditional{Test: num(1), Consequent: member(ident("o"), "f"), Alternate: ident("g")},
	}
	for _, callee := range tests {
		c := call(callee)
		once := c.Simplify().String()
		if once != "(0, o.f)()" {
			t.Errorf("Simplify() = %s, want an indirect call", once)
		}
		if twice := c.Simplify().String(); twice != once {
			t.Errorf("second Simplify() = %s, want %s", twice, once)
		}
	}
}
