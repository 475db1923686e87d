package builtins

import (
	"math"
	"math/rand/v2"

	"github.com/rmja/niljs/internal/config"
	"github.com/rmja/niljs/internal/evaluator"
)

func installMath(r *evaluator.Realm) {
	m := r.NewObject()
	m.SetClass(config.MathObjectName)
	defineConstants(m, map[string]evaluator.Value{
		"E":       evaluator.Number(math.E),
		"LN10":    evaluator.Number(math.Ln10),
		"LN2":     evaluator.Number(math.Ln2),
		"LOG10E":  evaluator.Number(math.Log10E),
		"LOG2E":   evaluator.Number(math.Log2E),
		"PI":      evaluator.Number(math.Pi),
		"SQRT1_2": evaluator.Number(math.Sqrt2 / 2),
		"SQRT2":   evaluator.Number(math.Sqrt2),
	})
	defineMethods(r, m, mathFunctions())
	r.Define(config.MathObjectName, evaluator.ObjectValue(m))
}

// unary adapts a float function to a native method of one argument.
func unary(f func(float64) float64) method {
	return method{1, func(inv *evaluator.Invocation) (evaluator.Value, error) {
		n, err := evaluator.ToNumber(inv.Context, inv.Arg(0))
		return evaluator.Number(f(n)), err
	}}
}

// extremum folds the arguments with pick; any NaN makes the result NaN.
func extremum(init float64, pick func(a, b float64) float64) method {
	return method{2, func(inv *evaluator.Invocation) (evaluator.Value, error) {
		result := init
		for _, v := range inv.Args.Values() {
			n, err := evaluator.ToNumber(inv.Context, v)
			if err != nil {
				return evaluator.Undefined, err
			}
			if math.IsNaN(n) {
				result = n
				continue
			}
			if !math.IsNaN(result) {
				result = pick(result, n)
			}
		}
		return evaluator.Number(result), nil
	}}
}

// round rounds half up, keeping the sign of zero.
func round(n float64) float64 {
	if math.IsNaN(n) || math.IsInf(n, 0) || n == 0 {
		return n
	}
	if n < 0 && n >= -0.5 {
		return math.Copysign(0, -1)
	}
	return math.Floor(n + 0.5)
}

func mathFunctions() map[string]method {
	return map[string]method{
		"pow": {2, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			x, err := evaluator.ToNumber(inv.Context, inv.Arg(0))
			if err != nil {
				return evaluator.Undefined, err
			}
			y, err := evaluator.ToNumber(inv.Context, inv.Arg(1))
			if err != nil {
				return evaluator.Undefined, err
			}
			if math.IsNaN(y) || (math.Abs(x) == 1 && math.IsInf(y, 0)) {
				return evaluator.Number(math.NaN()), nil
			}
			return evaluator.Number(math.Pow(x, y)), nil
		}},
		"atan2": {2, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			y, err := evaluator.ToNumber(inv.Context, inv.Arg(0))
			if err != nil {
				return evaluator.Undefined, err
			}
			x, err := evaluator.ToNumber(inv.Context, inv.Arg(1))
			return evaluator.Number(math.Atan2(y, x)), err
		}},
		"random": {0, func(*evaluator.Invocation) (evaluator.Value, error) {
			return evaluator.Number(rand.Float64()), nil
		}},
		"abs":   unary(math.Abs),
		"acos":  unary(math.Acos),
		"asin":  unary(math.Asin),
		"atan":  unary(math.Atan),
		"ceil":  unary(math.Ceil),
		"cos":   unary(math.Cos),
		"exp":   unary(math.Exp),
		"floor": unary(math.Floor),
		"log":   unary(math.Log),
		"max":   extremum(math.Inf(-1), math.Max),
		"min":   extremum(math.Inf(1), math.Min),
		"round": unary(round),
		"sin":   unary(math.Sin),
		"sqrt":  unary(math.Sqrt),
		"tan":   unary(math.Tan),
	}
}
