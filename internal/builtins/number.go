package builtins

import (
	"math"
	"strconv"
	"strings"

	"github.com/rmja/niljs/internal/config"
	"github.com/rmja/niljs/internal/evaluator"
)

func installNumber(r *evaluator.Realm) {
	ctor := defineConstructor(r, config.NumberTypeName, 1, r.NumberPrototype, func(inv *evaluator.Invocation) (evaluator.Value, error) {
		n := 0.0
		if inv.Args.Len() > 0 {
			var err error
			if n, err = evaluator.ToNumber(inv.Context, inv.Arg(0)); err != nil {
				return evaluator.Undefined, err
			}
		}
		if inv.Construct {
			return evaluator.ToObject(inv.Context, evaluator.Number(n))
		}
		return evaluator.Number(n), nil
	})
	defineConstants(&ctor.Object, map[string]evaluator.Value{
		"MAX_VALUE":         evaluator.Number(math.MaxFloat64),
		"MIN_VALUE":         evaluator.Number(math.SmallestNonzeroFloat64),
		"NaN":               evaluator.Number(math.NaN()),
		"POSITIVE_INFINITY": evaluator.Number(math.Inf(1)),
		"NEGATIVE_INFINITY": evaluator.Number(math.Inf(-1)),
	})
	defineMethods(r, r.NumberPrototype, numberMethods())
}

// thisNumber unwraps the receiver of a Number.prototype method.
func thisNumber(inv *evaluator.Invocation, method string) (float64, error) {
	v := inv.This
	if obj := v.Object(); obj != nil && obj.Class() == config.NumberTypeName {
		v = obj.PrimitiveValue()
	}
	if v.Kind() != evaluator.KindNumber {
		return 0, inv.Realm().NewError(evaluator.ErrType, "Number.prototype.%s requires that 'this' be a Number", method)
	}
	return v.Number(), nil
}

func numberMethods() map[string]method {
	return map[string]method{
		config.ValueOfMethodName: {0, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			n, err := thisNumber(inv, "valueOf")
			return evaluator.Number(n), err
		}},
		config.ToStringMethodName: {1, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			n, err := thisNumber(inv, "toString")
			if err != nil {
				return evaluator.Undefined, err
			}
			radix, err := argInteger(inv, 0, 10)
			if err != nil {
				return evaluator.Undefined, err
			}
			if radix < 2 || radix > 36 {
				return evaluator.Undefined, inv.Realm().NewError(evaluator.ErrRange, "toString() radix must be between 2 and 36")
			}
			return evaluator.String(formatRadix(n, int(radix))), nil
		}},
		"toLocaleString": {0, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			n, err := thisNumber(inv, "toLocaleString")
			return evaluator.String(evaluator.NumberToString(n)), err
		}},
		"toFixed": {1, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			n, err := thisNumber(inv, "toFixed")
			if err != nil {
				return evaluator.Undefined, err
			}
			digits, err := argInteger(inv, 0, 0)
			if err != nil {
				return evaluator.Undefined, err
			}
			if digits < 0 || digits > 20 {
				return evaluator.Undefined, inv.Realm().NewError(evaluator.ErrRange, "toFixed() digits argument must be between 0 and 20")
			}
			if math.IsNaN(n) || math.Abs(n) >= 1e21 {
				return evaluator.String(evaluator.NumberToString(n)), nil
			}
			return evaluator.String(strconv.FormatFloat(n, 'f', int(digits), 64)), nil
		}},
	}
}

// formatRadix prints n in the given base. Fractions in bases other than
// ten are cut off after 20 digits.
func formatRadix(n float64, radix int) string {
	if radix == 10 || math.IsNaN(n) || math.IsInf(n, 0) {
		return evaluator.NumberToString(n)
	}
	neg := n < 0
	n = math.Abs(n)
	ip, fp := math.Modf(n)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	if ip < 1<<53 {
		b.WriteString(strconv.FormatInt(int64(ip), radix))
	} else {
		b.WriteString(evaluator.NumberToString(ip))
	}
	if fp > 0 {
		b.WriteByte('.')
		for i := 0; i < 20 && fp > 0; i++ {
			fp *= float64(radix)
			d, rest := math.Modf(fp)
			b.WriteString(strconv.FormatInt(int64(d), radix))
			fp = rest
		}
	}
	return b.String()
}
