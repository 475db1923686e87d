package builtins

import (
	"math"
	"slices"
	"strings"
	"unicode/utf16"

	"github.com/rmja/niljs/internal/config"
	"github.com/rmja/niljs/internal/evaluator"
)

func installString(r *evaluator.Realm) {
	ctor := defineConstructor(r, config.StringTypeName, 1, r.StringPrototype, func(inv *evaluator.Invocation) (evaluator.Value, error) {
		s := ""
		if inv.Args.Len() > 0 {
			var err error
			if s, err = evaluator.ToString(inv.Context, inv.Arg(0)); err != nil {
				return evaluator.Undefined, err
			}
		}
		if inv.Construct {
			return evaluator.ToObject(inv.Context, evaluator.String(s))
		}
		return evaluator.String(s), nil
	})
	r.DefineMethod(&ctor.Object, "fromCharCode", 1, func(inv *evaluator.Invocation) (evaluator.Value, error) {
		units := make([]uint16, 0, inv.Args.Len())
		for _, v := range inv.Args.Values() {
			n, err := evaluator.ToUint32(inv.Context, v)
			if err != nil {
				return evaluator.Undefined, err
			}
			units = append(units, uint16(n))
		}
		return evaluator.String(string(utf16.Decode(units))), nil
	})
	defineMethods(r, r.StringPrototype, stringMethods())
}

// String methods index UTF-16 code units.
type units []uint16

func toUnits(s string) units { return utf16.Encode([]rune(s)) }

func (u units) String() string { return string(utf16.Decode(u)) }

func (u units) index(sub units, from int) int {
	for i := max(from, 0); i+len(sub) <= len(u); i++ {
		if slices.Equal(u[i:i+len(sub)], sub) {
			return i
		}
	}
	return -1
}

func (u units) lastIndex(sub units, from int) int {
	for i := min(from, len(u)-len(sub)); i >= 0; i-- {
		if slices.Equal(u[i:i+len(sub)], sub) {
			return i
		}
	}
	return -1
}

// thisString coerces the receiver of a String.prototype method.
func thisString(inv *evaluator.Invocation, method string) (string, error) {
	if inv.This.IsNullish() || inv.This.IsMissing() {
		return "", inv.Realm().NewError(evaluator.ErrType, "String.prototype.%s called on null or undefined", method)
	}
	return evaluator.ToString(inv.Context, inv.This)
}

// thisStringValue unwraps the receiver of toString and valueOf, which do
// not coerce.
func thisStringValue(inv *evaluator.Invocation, method string) (evaluator.Value, error) {
	v := inv.This
	if obj := v.Object(); obj != nil && obj.Class() == config.StringTypeName {
		v = obj.PrimitiveValue()
	}
	if v.Kind() != evaluator.KindString {
		return evaluator.Undefined, inv.Realm().NewError(evaluator.ErrType, "String.prototype.%s requires that 'this' be a String", method)
	}
	return v, nil
}

func argString(inv *evaluator.Invocation, i int) (string, error) {
	return evaluator.ToString(inv.Context, inv.Arg(i))
}

func stringMethods() map[string]method {
	return map[string]method{
		config.ToStringMethodName: {0, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			return thisStringValue(inv, "toString")
		}},
		config.ValueOfMethodName: {0, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			return thisStringValue(inv, "valueOf")
		}},
		"charAt": {1, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			s, err := thisString(inv, "charAt")
			if err != nil {
				return evaluator.Undefined, err
			}
			pos, err := argInteger(inv, 0, 0)
			if err != nil {
				return evaluator.Undefined, err
			}
			u := toUnits(s)
			if pos < 0 || pos >= float64(len(u)) {
				return evaluator.String(""), nil
			}
			return evaluator.String(u[int(pos) : int(pos)+1].String()), nil
		}},
		"charCodeAt": {1, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			s, err := thisString(inv, "charCodeAt")
			if err != nil {
				return evaluator.Undefined, err
			}
			pos, err := argInteger(inv, 0, 0)
			if err != nil {
				return evaluator.Undefined, err
			}
			u := toUnits(s)
			if pos < 0 || pos >= float64(len(u)) {
				return evaluator.Number(math.NaN()), nil
			}
			return evaluator.Number(float64(u[int(pos)])), nil
		}},
		"indexOf": {1, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			s, err := thisString(inv, "indexOf")
			if err != nil {
				return evaluator.Undefined, err
			}
			sub, err := argString(inv, 0)
			if err != nil {
				return evaluator.Undefined, err
			}
			pos, err := argInteger(inv, 1, 0)
			if err != nil {
				return evaluator.Undefined, err
			}
			u := toUnits(s)
			return evaluator.Int(u.index(toUnits(sub), relativeIndex(math.Max(pos, 0), float64(len(u))))), nil
		}},
		"lastIndexOf": {1, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			s, err := thisString(inv, "lastIndexOf")
			if err != nil {
				return evaluator.Undefined, err
			}
			sub, err := argString(inv, 0)
			if err != nil {
				return evaluator.Undefined, err
			}
			u := toUnits(s)
			pos, err := argInteger(inv, 1, float64(len(u)))
			if err != nil {
				return evaluator.Undefined, err
			}
			return evaluator.Int(u.lastIndex(toUnits(sub), relativeIndex(math.Max(pos, 0), float64(len(u))))), nil
		}},
		"substring": {2, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			s, err := thisString(inv, "substring")
			if err != nil {
				return evaluator.Undefined, err
			}
			u := toUnits(s)
			n := float64(len(u))
			start, err := argInteger(inv, 0, 0)
			if err != nil {
				return evaluator.Undefined, err
			}
			end, err := argInteger(inv, 1, n)
			if err != nil {
				return evaluator.Undefined, err
			}
			from, to := relativeIndex(math.Max(start, 0), n), relativeIndex(math.Max(end, 0), n)
			if from > to {
				from, to = to, from
			}
			return evaluator.String(u[from:to].String()), nil
		}},
		"substr": {2, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			s, err := thisString(inv, "substr")
			if err != nil {
				return evaluator.Undefined, err
			}
			u := toUnits(s)
			n := float64(len(u))
			start, err := argInteger(inv, 0, 0)
			if err != nil {
				return evaluator.Undefined, err
			}
			length, err := argInteger(inv, 1, n)
			if err != nil {
				return evaluator.Undefined, err
			}
			from := relativeIndex(start, n)
			to := relativeIndex(float64(from)+math.Max(length, 0), n)
			return evaluator.String(u[from:to].String()), nil
		}},
		"slice": {2, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			s, err := thisString(inv, "slice")
			if err != nil {
				return evaluator.Undefined, err
			}
			u := toUnits(s)
			n := float64(len(u))
			start, err := argInteger(inv, 0, 0)
			if err != nil {
				return evaluator.Undefined, err
			}
			end, err := argInteger(inv, 1, n)
			if err != nil {
				return evaluator.Undefined, err
			}
			from, to := relativeIndex(start, n), relativeIndex(end, n)
			if from >= to {
				return evaluator.String(""), nil
			}
			return evaluator.String(u[from:to].String()), nil
		}},
		"toUpperCase": {0, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			s, err := thisString(inv, "toUpperCase")
			return evaluator.String(strings.ToUpper(s)), err
		}},
		"toLowerCase": {0, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			s, err := thisString(inv, "toLowerCase")
			return evaluator.String(strings.ToLower(s)), err
		}},
		"trim": {0, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			s, err := thisString(inv, "trim")
			return evaluator.String(strings.TrimFunc(s, isSpace)), err
		}},
		"concat": {1, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			s, err := thisString(inv, "concat")
			if err != nil {
				return evaluator.Undefined, err
			}
			var b strings.Builder
			b.WriteString(s)
			for i := range inv.Args.Len() {
				part, err := argString(inv, i)
				if err != nil {
					return evaluator.Undefined, err
				}
				b.WriteString(part)
			}
			return evaluator.String(b.String()), nil
		}},
		"split": {2, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			s, err := thisString(inv, "split")
			if err != nil {
				return evaluator.Undefined, err
			}
			limit := uint32(math.MaxUint32)
			if !inv.Arg(1).IsUndefined() {
				if limit, err = evaluator.ToUint32(inv.Context, inv.Arg(1)); err != nil {
					return evaluator.Undefined, err
				}
			}
			var parts []string
			if inv.Arg(0).IsUndefined() {
				parts = []string{s}
			} else {
				sep, err := argString(inv, 0)
				if err != nil {
					return evaluator.Undefined, err
				}
				parts = splitUnits(s, sep)
			}
			if uint32(len(parts)) > limit {
				parts = parts[:limit]
			}
			values := make([]evaluator.Value, len(parts))
			for i, p := range parts {
				values[i] = evaluator.String(p)
			}
			return evaluator.ObjectValue(inv.Realm().NewArray(values...)), nil
		}},
	}
}

// splitUnits splits on sep; an empty separator splits into code units and
// an empty string yields no parts.
func splitUnits(s, sep string) []string {
	if sep == "" {
		u := toUnits(s)
		parts := make([]string, len(u))
		for i := range u {
			parts[i] = u[i : i+1].String()
		}
		return parts
	}
	return strings.Split(s, sep)
}
