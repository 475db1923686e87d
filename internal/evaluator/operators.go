package evaluator

import (
	"math"
)

var (
	nan    = math.NaN()
	posInf = math.Inf(1)
)

// BinaryOperator enumerates the non-short-circuit binary operators.
type BinaryOperator uint8

const (
	OpNone BinaryOperator = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpShl
	OpShr
	OpUShr
	OpBitAnd
	OpBitOr
	OpBitXor
	OpEq
	OpNotEq
	OpStrictEq
	OpStrictNotEq
	OpLess
	OpLessEq
	OpGreater
	OpGreaterEq
	OpIn
	OpInstanceOf
)

var binaryOperatorText = [...]string{
	OpNone:        "=",
	OpAdd:         "+",
	OpSub:         "-",
	OpMul:         "*",
	OpDiv:         "/",
	OpMod:         "%",
	OpShl:         "<<",
	OpShr:         ">>",
	OpUShr:        ">>>",
	OpBitAnd:      "&",
	OpBitOr:       "|",
	OpBitXor:      "^",
	OpEq:          "==",
	OpNotEq:       "!=",
	OpStrictEq:    "===",
	OpStrictNotEq: "!==",
	OpLess:        "<",
	OpLessEq:      "<=",
	OpGreater:     ">",
	OpGreaterEq:   ">=",
	OpIn:          "in",
	OpInstanceOf:  "instanceof",
}

func (op BinaryOperator) String() string {
	if int(op) < len(binaryOperatorText) {
		return binaryOperatorText[op]
	}
	return "?"
}

// pure operators never run user code when both operands are primitives.
func (op BinaryOperator) pure() bool { return op != OpIn && op != OpInstanceOf }

func (op BinaryOperator) resultType() PredictedType {
	switch op {
	case OpAdd:
		return PredictUnknown
	case OpEq, OpNotEq, OpStrictEq, OpStrictNotEq, OpLess, OpLessEq, OpGreater, OpGreaterEq, OpIn, OpInstanceOf:
		return PredictBoolean
	}
	return PredictNumber
}

// ApplyBinary evaluates op over two values. ctx may be nil when both
// values are primitives and op is pure.
func ApplyBinary(ctx *Context, op BinaryOperator, l, r Value) (Value, error) {
	switch op {
	case OpAdd:
		return add(ctx, l, r)
	case OpSub, OpMul, OpDiv, OpMod:
		a, err := ToNumber(ctx, l)
		if err != nil {
			return Undefined, err
		}
		b, err := ToNumber(ctx, r)
		if err != nil {
			return Undefined, err
		}
		switch op {
		case OpSub:
			return Number(a - b), nil
		case OpMul:
			return Number(a * b), nil
		case OpDiv:
			return Number(a / b), nil
		}
		return Number(math.Mod(a, b)), nil
	case OpShl, OpShr, OpUShr, OpBitAnd, OpBitOr, OpBitXor:
		return bitwise(ctx, op, l, r)
	case OpEq, OpNotEq:
		eq, err := LooseEquals(ctx, l, r)
		if err != nil {
			return Undefined, err
		}
		return Bool(eq == (op == OpEq)), nil
	case OpStrictEq:
		return Bool(StrictEquals(l, r)), nil
	case OpStrictNotEq:
		return Bool(!StrictEquals(l, r)), nil
	case OpLess:
		return compare(ctx, l, r, false, false)
	case OpGreater:
		return compare(ctx, r, l, false, true)
	case OpLessEq:
		return compare(ctx, r, l, true, true)
	case OpGreaterEq:
		return compare(ctx, l, r, true, false)
	case OpIn:
		if !r.IsObject() {
			return Undefined, ctx.typeError("Cannot use 'in' operator to search for a key in %s", r.kindName())
		}
		key, err := ToPropertyKey(ctx, l)
		if err != nil {
			return Undefined, err
		}
		return Bool(r.Object().HasProperty(key)), nil
	case OpInstanceOf:
		return instanceOf(ctx, l, r)
	}
	return Undefined, ctx.syntaxError("unknown operator %s", op)
}

func add(ctx *Context, l, r Value) (Value, error) {
	if l.kind == KindNumber && r.kind == KindNumber {
		return Number(l.n + r.n), nil
	}
	lp, err := ToPrimitive(ctx, l, HintDefault)
	if err != nil {
		return Undefined, err
	}
	rp, err := ToPrimitive(ctx, r, HintDefault)
	if err != nil {
		return Undefined, err
	}
	if lp.kind == KindString || rp.kind == KindString {
		ls, err := ToString(ctx, lp)
		if err != nil {
			return Undefined, err
		}
		rs, err := ToString(ctx, rp)
		if err != nil {
			return Undefined, err
		}
		return String(ls + rs), nil
	}
	a, err := ToNumber(ctx, lp)
	if err != nil {
		return Undefined, err
	}
	b, err := ToNumber(ctx, rp)
	if err != nil {
		return Undefined, err
	}
	return Number(a + b), nil
}

// bitwise implements the shift and bitwise operators over ToInt32 and
// ToUint32 operands.
func bitwise(ctx *Context, op BinaryOperator, l, r Value) (Value, error) {
	a, err := ToInt32(ctx, l)
	if err != nil {
		return Undefined, err
	}
	if op == OpUShr {
		ua := uint32(a)
		b, err := ToUint32(ctx, r)
		if err != nil {
			return Undefined, err
		}
		return Number(float64(ua >> (b & 31))), nil
	}
	b, err := ToInt32(ctx, r)
	if err != nil {
		return Undefined, err
	}
	switch op {
	case OpShl:
		return Number(float64(a << (uint32(b) & 31))), nil
	case OpShr:
		return Number(float64(a >> (uint32(b) & 31))), nil
	case OpBitAnd:
		return Number(float64(a & b)), nil
	case OpBitOr:
		return Number(float64(a | b)), nil
	}
	return Number(float64(a ^ b)), nil
}

// compare implements the abstract relational comparison a < b. With
// orEqual the result is negated (a >= b is !(a < b)); undefined results
// from NaN always give false. With swapped set the operands arrive in
// reverse source order and b is converted first.
func compare(ctx *Context, a, b Value, orEqual, swapped bool) (Value, error) {
	var ap, bp Value
	var err error
	if swapped {
		if bp, err = ToPrimitive(ctx, b, HintNumber); err != nil {
			return Undefined, err
		}
		if ap, err = ToPrimitive(ctx, a, HintNumber); err != nil {
			return Undefined, err
		}
	} else {
		if ap, err = ToPrimitive(ctx, a, HintNumber); err != nil {
			return Undefined, err
		}
		if bp, err = ToPrimitive(ctx, b, HintNumber); err != nil {
			return Undefined, err
		}
	}
	if ap.kind == KindString && bp.kind == KindString {
		less := ap.s < bp.s
		return Bool(less != orEqual), nil
	}
	x, err := ToNumber(ctx, ap)
	if err != nil {
		return Undefined, err
	}
	y, err := ToNumber(ctx, bp)
	if err != nil {
		return Undefined, err
	}
	if math.IsNaN(x) || math.IsNaN(y) {
		return False, nil
	}
	return Bool((x < y) != orEqual), nil
}

func instanceOf(ctx *Context, l, r Value) (Value, error) {
	fn := r.Function()
	if fn == nil {
		return Undefined, ctx.typeError("Right-hand side of 'instanceof' is not callable")
	}
	if !l.IsObject() {
		return False, nil
	}
	proto, err := fn.Get(ctx, r, "prototype")
	if err != nil {
		return Undefined, err
	}
	if !proto.IsObject() {
		return Undefined, ctx.typeError("Function has non-object prototype in instanceof check")
	}
	target := proto.Object()
	for p := l.Object().Prototype(); p != nil; p = p.Prototype() {
		if p == target {
			return True, nil
		}
	}
	return False, nil
}

// UnaryOperator enumerates prefix operators other than ++ and --.
type UnaryOperator uint8

const (
	OpNot UnaryOperator = iota
	OpNegate
	OpPlus
	OpBitNot
	OpTypeOf
	OpVoid
	OpDelete
)

var unaryOperatorText = [...]string{
	OpNot:    "!",
	OpNegate: "-",
	OpPlus:   "+",
	OpBitNot: "~",
	OpTypeOf: "typeof ",
	OpVoid:   "void ",
	OpDelete: "delete ",
}

func (op UnaryOperator) String() string {
	if int(op) < len(unaryOperatorText) {
		return unaryOperatorText[op]
	}
	return "?"
}

// ApplyUnary evaluates the operators that only look at the operand value.
func ApplyUnary(ctx *Context, op UnaryOperator, v Value) (Value, error) {
	switch op {
	case OpNot:
		return Bool(!ToBoolean(v)), nil
	case OpNegate:
		n, err := ToNumber(ctx, v)
		return Number(-n), err
	case OpPlus:
		n, err := ToNumber(ctx, v)
		return Number(n), err
	case OpBitNot:
		n, err := ToInt32(ctx, v)
		return Number(float64(^n)), err
	case OpTypeOf:
		return String(v.TypeOf()), nil
	case OpVoid:
		return Undefined, nil
	}
	return True, nil
}
