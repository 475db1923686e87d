package evaluator

import (
	"math"
	"strconv"
	"strings"

	"github.com/rmja/niljs/internal/config"
)

// PrimitiveHint steers ToPrimitive's method order.
type PrimitiveHint uint8

const (
	HintDefault PrimitiveHint = iota
	HintNumber
	HintString
)

// ToBoolean never fails and never runs user code.
func ToBoolean(v Value) bool {
	switch v.kind {
	case KindBoolean:
		return v.b
	case KindNumber:
		return v.n != 0 && !math.IsNaN(v.n)
	case KindString:
		return v.s != ""
	case KindObject:
		return v.obj != nil
	case KindFunction:
		return true
	}
	return false
}

// ToPrimitive converts objects through valueOf/toString. Primitives are
// returned unchanged, so ctx may be nil for them.
func ToPrimitive(ctx *Context, v Value, hint PrimitiveHint) (Value, error) {
	if !v.IsObject() {
		if v.IsMissing() {
			return Null, nil
		}
		return v, nil
	}
	obj := v.Object()
	order := [2]string{config.ValueOfMethodName, config.ToStringMethodName}
	if hint == HintString {
		order = [2]string{config.ToStringMethodName, config.ValueOfMethodName}
	}
	for _, name := range order {
		m, err := obj.Get(ctx, v, name)
		if err != nil {
			return Undefined, err
		}
		if fn := m.Function(); fn != nil {
			res, err := fn.Call(ctx, v)
			if err != nil {
				return Undefined, err
			}
			if res.IsPrimitive() {
				return res, nil
			}
		}
	}
	return Undefined, ctx.typeError("Cannot convert object to primitive value")
}

func ToNumber(ctx *Context, v Value) (float64, error) {
	switch v.kind {
	case KindUndefined:
		return math.NaN(), nil
	case KindNull:
		return 0, nil
	case KindBoolean:
		if v.b {
			return 1, nil
		}
		return 0, nil
	case KindNumber:
		return v.n, nil
	case KindString:
		return StringToNumber(v.s), nil
	}
	if v.IsMissing() {
		return 0, nil
	}
	p, err := ToPrimitive(ctx, v, HintNumber)
	if err != nil {
		return math.NaN(), err
	}
	return ToNumber(ctx, p)
}

// StringToNumber implements the numeric string grammar: surrounding white
// space is ignored, the empty string is 0 and anything malformed is NaN.
func StringToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		n, err := strconv.ParseUint(s[2:], 16, 64)
		if err != nil {
			return math.NaN()
		}
		return float64(n)
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	for _, c := range s {
		if !(c >= '0' && c <= '9' || c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-') {
			return math.NaN()
		}
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return n
		}
		return math.NaN()
	}
	return n
}

func ToInteger(ctx *Context, v Value) (float64, error) {
	n, err := ToNumber(ctx, v)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(n) {
		return 0, nil
	}
	if math.IsInf(n, 0) {
		return n, nil
	}
	return math.Trunc(n), nil
}

func ToInt32(ctx *Context, v Value) (int32, error) {
	n, err := ToNumber(ctx, v)
	if err != nil {
		return 0, err
	}
	return int32(numberToUint32(n)), nil
}

func ToUint32(ctx *Context, v Value) (uint32, error) {
	n, err := ToNumber(ctx, v)
	if err != nil {
		return 0, err
	}
	return numberToUint32(n), nil
}

func numberToUint32(n float64) uint32 {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	n = math.Mod(math.Trunc(n), 1<<32)
	if n < 0 {
		n += 1 << 32
	}
	return uint32(n)
}

func ToString(ctx *Context, v Value) (string, error) {
	switch v.kind {
	case KindUndefined:
		return "undefined", nil
	case KindNull:
		return "null", nil
	case KindBoolean:
		if v.b {
			return "true", nil
		}
		return "false", nil
	case KindNumber:
		return NumberToString(v.n), nil
	case KindString:
		return v.s, nil
	}
	if v.IsMissing() {
		return "null", nil
	}
	p, err := ToPrimitive(ctx, v, HintString)
	if err != nil {
		return "", err
	}
	return ToString(ctx, p)
}

// NumberToString formats a number the way the language prints it.
func NumberToString(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	case n == 0:
		return "0"
	}
	abs := math.Abs(n)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(n, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		sign := exp[0]
		exp = strings.TrimLeft(exp[1:], "0")
		return mant + "e" + string(sign) + exp
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// ToObject boxes primitives. Object-tagged values, the missing instance
// included, are returned unchanged; undefined and null fail with a
// TypeError. The missing instance has no payload, so callers that go on to
// read Object() must rule it out first, usually through IsNullish.
func ToObject(ctx *Context, v Value) (Value, error) {
	if v.kind == KindObject || v.kind == KindFunction {
		return v, nil
	}
	var proto *Object
	var class string
	switch v.kind {
	case KindBoolean:
		proto, class = ctx.realm.BooleanPrototype, config.BooleanTypeName
	case KindNumber:
		proto, class = ctx.realm.NumberPrototype, config.NumberTypeName
	case KindString:
		proto, class = ctx.realm.StringPrototype, config.StringTypeName
	default:
		return Undefined, ctx.typeError("Cannot convert %s to object", v.kindName())
	}
	obj := NewObject(proto)
	obj.class = class
	obj.primitive = v.WithAttributes(0)
	return ObjectValue(obj), nil
}

func (v Value) kindName() string {
	if v.IsMissing() {
		return "null"
	}
	return v.kind.String()
}

// ToPropertyKey converts a member expression key.
func ToPropertyKey(ctx *Context, v Value) (string, error) {
	if v.kind == KindString {
		return v.s, nil
	}
	return ToString(ctx, v)
}

// StrictEquals is the === operator.
func StrictEquals(a, b Value) bool {
	if a.IsMissing() {
		a = Null
	}
	if b.IsMissing() {
		b = Null
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindUndefined, KindNull:
		return true
	case KindBoolean:
		return a.b == b.b
	case KindNumber:
		return a.n == b.n
	case KindString:
		return a.s == b.s
	case KindObject:
		return a.obj == b.obj
	case KindFunction:
		return a.fn == b.fn
	}
	return false
}

// SameValue distinguishes NaN and signed zeros the way StrictEquals does not.
func SameValue(a, b Value) bool {
	if a.kind == KindNumber && b.kind == KindNumber {
		if math.IsNaN(a.n) && math.IsNaN(b.n) {
			return true
		}
		return a.n == b.n && math.Signbit(a.n) == math.Signbit(b.n)
	}
	return StrictEquals(a, b)
}

// LooseEquals is the == operator.
func LooseEquals(ctx *Context, a, b Value) (bool, error) {
	if a.IsMissing() {
		a = Null
	}
	if b.IsMissing() {
		b = Null
	}
	if a.kind == b.kind || (a.IsObject() && b.IsObject()) {
		return StrictEquals(a, b), nil
	}
	switch {
	case a.IsNullish() && b.IsNullish():
		return true, nil
	case a.IsNullish() || b.IsNullish():
		return false, nil
	case a.kind == KindNumber && b.kind == KindString:
		return a.n == StringToNumber(b.s), nil
	case a.kind == KindString && b.kind == KindNumber:
		return StringToNumber(a.s) == b.n, nil
	case a.kind == KindBoolean:
		n, _ := ToNumber(ctx, a)
		return LooseEquals(ctx, Number(n), b)
	case b.kind == KindBoolean:
		n, _ := ToNumber(ctx, b)
		return LooseEquals(ctx, a, Number(n))
	case a.IsObject() && b.IsPrimitive():
		p, err := ToPrimitive(ctx, a, HintDefault)
		if err != nil {
			return false, err
		}
		return LooseEquals(ctx, p, b)
	case a.IsPrimitive() && b.IsObject():
		p, err := ToPrimitive(ctx, b, HintDefault)
		if err != nil {
			return false, err
		}
		return LooseEquals(ctx, a, p)
	}
	return false, nil
}
