package evaluator

import (
	"context"
	"math"
	"testing"
)

func TestToBoolean(t *testing.T) {
	tests := []struct {
		in   Value
		want bool
	}{
		{Undefined, false},
		{Null, false},
		{MissingInstance, false},
		{True, true},
		{Number(0), false},
		{Number(math.NaN()), false},
		{Number(-3), true},
		{String(""), false},
		{String("0"), true},
	}
	for _, tt := range tests {
		if got := ToBoolean(tt.in); got != tt.want {
			t.Errorf("ToBoolean(%s) = %v, want %v", tt.in.Inspect(), got, tt.want)
		}
	}
}

func TestToNumber(t *testing.T) {
	tests := []struct {
		in   Value
		want float64
	}{
		{Undefined, math.NaN()},
		{Null, 0},
		{True, 1},
		{False, 0},
		{String(""), 0},
		{String("  12  "), 12},
		{String("0x1A"), 26},
		{String("1e3"), 1000},
		{String("-Infinity"), math.Inf(-1)},
		{String("abc"), math.NaN()},
		{String("12px"), math.NaN()},
		{Number(2.5), 2.5},
	}
	for _, tt := range tests {
		got, err := ToNumber(nil, tt.in)
		if err != nil {
			t.Fatalf("ToNumber(%s): %v", tt.in.Inspect(), err)
		}
		if !SameValue(Number(got), Number(tt.want)) {
			t.Errorf("ToNumber(%s) = %v, want %v", tt.in.Inspect(), got, tt.want)
		}
	}
}

func TestToInt32AndUint32(t *testing.T) {
	tests := []struct {
		in     float64
		int32  int32
		uint32 uint32
	}{
		{0, 0, 0},
		{-1, -1, 4294967295},
		{4294967296 + 5, 5, 5},
		{2147483648, -2147483648, 2147483648},
		{3.9, 3, 3},
		{-3.9, -3, 4294967293},
		{math.NaN(), 0, 0},
		{math.Inf(1), 0, 0},
	}
	for _, tt := range tests {
		i, _ := ToInt32(nil, Number(tt.in))
		u, _ := ToUint32(nil, Number(tt.in))
		if i != tt.int32 || u != tt.uint32 {
			t.Errorf("ToInt32/ToUint32(%v) = %d/%d, want %d/%d", tt.in, i, u, tt.int32, tt.uint32)
		}
	}
}

func TestToString(t *testing.T) {
	tests := []struct {
		in   Value
		want string
	}{
		{Undefined, "undefined"},
		{Null, "null"},
		{True, "true"},
		{Number(0), "0"},
		{Number(math.Copysign(0, -1)), "0"},
		{Number(-1.5), "-1.5"},
		{Number(1e21), "1e+21"},
		{Number(123456789012), "123456789012"},
		{Number(0.000001), "0.000001"},
		{Number(1e-7), "1e-7"},
		{Number(math.NaN()), "NaN"},
		{Number(math.Inf(-1)), "-Infinity"},
	}
	for _, tt := range tests {
		got, err := ToString(nil, tt.in)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("ToString(%v) = %q, want %q", tt.in.Number(), got, tt.want)
		}
	}
}

func TestToObject(t *testing.T) {
	r := testRealm(t)
	ctx := r.NewContext(context.Background())

	for _, v := range []Value{Undefined, Null} {
		_, err := ToObject(ctx, v)
		if kind, ok := KindOf(err); !ok || kind != ErrType {
			t.Errorf("ToObject(%s) error = %v, want TypeError", v.Inspect(), err)
		}
	}

	obj := ObjectValue(r.NewObject())
	fn := FunctionValue(r.NewNativeFunction("f", 0, func(*Invocation) (Value, error) { return Undefined, nil }))
	for _, v := range []Value{obj, fn, MissingInstance} {
		got, err := ToObject(ctx, v)
		if err != nil {
			t.Fatalf("ToObject(%s): %v", v.Inspect(), err)
		}
		if !StrictEquals(got, v) || got.Kind() != v.Kind() || got.IsMissing() != v.IsMissing() {
			t.Errorf("ToObject(%s) is not the identity", v.Inspect())
		}
	}

	wrappers := []struct {
		in    Value
		class string
		proto *Object
	}{
		{Number(4), "Number", r.NumberPrototype},
		{String("ab"), "String", r.StringPrototype},
		{True, "Boolean", r.BooleanPrototype},
	}
	for _, w := range wrappers {
		got, err := ToObject(ctx, w.in)
		if err != nil {
			t.Fatal(err)
		}
		o := got.Object()
		if o.Class() != w.class || o.Prototype() != w.proto || !StrictEquals(o.PrimitiveValue(), w.in) {
			t.Errorf("ToObject(%s) = %s", w.in.Inspect(), o.Inspect())
		}
	}
}

func TestToPrimitiveUsesValueOf(t *testing.T) {
	r := testRealm(t)
	ctx := r.NewContext(context.Background())
	o := r.NewObject()
	r.DefineMethod(o, "valueOf", 0, func(*Invocation) (Value, error) { return Number(41), nil })
	r.DefineMethod(o, "toString", 0, func(*Invocation) (Value, error) { return String("str"), nil })

	v, err := ApplyBinary(ctx, OpAdd, ObjectValue(o), Number(1))
	if err != nil {
		t.Fatal(err)
	}
	if v.Number() != 42 {
		t.Errorf("o + 1 = %v", v)
	}
	s, err := ToString(ctx, ObjectValue(o))
	if err != nil {
		t.Fatal(err)
	}
	if s != "str" {
		t.Errorf("String(o) = %q", s)
	}
}

func TestEquality(t *testing.T) {
	r := testRealm(t)
	ctx := r.NewContext(context.Background())
	tests := []struct {
		a, b          Value
		loose, strict bool
	}{
		{Null, Undefined, true, false},
		{Null, MissingInstance, true, true},
		{Number(1), String("1"), true, false},
		{True, Number(1), true, false},
		{Number(math.NaN()), Number(math.NaN()), false, false},
		{String("a"), String("a"), true, true},
		{Null, Number(0), false, false},
	}
	for _, tt := range tests {
		loose, err := LooseEquals(ctx, tt.a, tt.b)
		if err != nil {
			t.Fatal(err)
		}
		if loose != tt.loose || StrictEquals(tt.a, tt.b) != tt.strict {
			t.Errorf("%s vs %s: loose %v strict %v", tt.a.Inspect(), tt.b.Inspect(), loose, StrictEquals(tt.a, tt.b))
		}
	}
}

func TestBinaryOperators(t *testing.T) {
	tests := []struct {
		op   BinaryOperator
		l, r Value
		want Value
	}{
		{OpBitXor, Number(5), Number(3), Number(6)},
		{OpBitXor, String("12"), True, Number(13)},
		{OpUShr, Number(-1), Number(28), Number(15)},
		{OpShl, Number(1), Number(33), Number(2)},
		{OpMod, Number(-7), Number(3), Number(-1)},
		{OpLess, String("a"), String("b"), True},
		{OpGreaterEq, Number(math.NaN()), Number(1), False},
		{OpAdd, Number(1), String("2"), String("12")},
	}
	for _, tt := range tests {
		got, err := ApplyBinary(nil, tt.op, tt.l, tt.r)
		if err != nil {
			t.Fatal(err)
		}
		if !SameValue(got, tt.want) {
			t.Errorf("%s %s %s = %s, want %s", tt.l.Inspect(), tt.op, tt.r.Inspect(), got.Inspect(), tt.want.Inspect())
		}
	}
}
