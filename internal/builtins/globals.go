package builtins

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/rmja/niljs/internal/config"
	"github.com/rmja/niljs/internal/evaluator"
	"github.com/rmja/niljs/internal/parser"
)

func installGlobals(r *evaluator.Realm) {
	defineMethods(r, r.Global, globalFunctions())
}

func globalFunctions() map[string]method {
	return map[string]method{
		"isNaN": {1, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			n, err := evaluator.ToNumber(inv.Context, inv.Arg(0))
			return evaluator.Bool(math.IsNaN(n)), err
		}},
		"isFinite": {1, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			n, err := evaluator.ToNumber(inv.Context, inv.Arg(0))
			return evaluator.Bool(!math.IsNaN(n) && !math.IsInf(n, 0)), err
		}},
		"parseInt": {2, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			s, err := evaluator.ToString(inv.Context, inv.Arg(0))
			if err != nil {
				return evaluator.Undefined, err
			}
			radix, err := evaluator.ToInt32(inv.Context, inv.Arg(1))
			if err != nil {
				return evaluator.Undefined, err
			}
			return evaluator.Number(parseInt(s, int(radix))), nil
		}},
		"parseFloat": {1, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			s, err := evaluator.ToString(inv.Context, inv.Arg(0))
			if err != nil {
				return evaluator.Undefined, err
			}
			return evaluator.Number(parseFloat(s)), nil
		}},
		config.EvalFuncName: {1, eval},
	}
}

// eval runs a string as code. A direct call shares the caller's scope and
// this; an indirect one runs at global level. Non-string arguments are
// returned unchanged.
func eval(inv *evaluator.Invocation) (evaluator.Value, error) {
	src := inv.Arg(0)
	if src.Kind() != evaluator.KindString {
		return src, nil
	}
	script, err := parser.ParseEval(src.Str())
	if err != nil {
		return evaluator.Undefined, inv.Realm().NewError(evaluator.ErrSyntax, "%s", err.Error())
	}
	if err := prepareEval(inv, script); err != nil {
		return evaluator.Undefined, err
	}
	return evaluator.EvalScript(inv.Context, script, inv.Flags&evaluator.CallDirectEval != 0)
}

// prepareEval runs the static passes over eval code and turns the first
// error diagnostic into a SyntaxError.
func prepareEval(inv *evaluator.Invocation, script *evaluator.Script) error {
	for _, d := range script.Prepare() {
		if d.Severity == evaluator.SeverityError {
			return inv.Realm().NewError(evaluator.ErrSyntax, "%s", d.Message)
		}
	}
	script.Simplify()
	return nil
}

func isSpace(r rune) bool { return unicode.IsSpace(r) || r == '\ufeff' }

func parseInt(s string, radix int) float64 {
	s = strings.TrimLeftFunc(s, isSpace)
	sign := 1.0
	if s != "" && (s[0] == '-' || s[0] == '+') {
		if s[0] == '-' {
			sign = -1
		}
		s = s[1:]
	}
	stripPrefix := true
	if radix != 0 {
		if radix < 2 || radix > 36 {
			return math.NaN()
		}
		stripPrefix = radix == 16
	} else {
		radix = 10
	}
	if stripPrefix && len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
		radix = 16
	}
	result, digits := 0.0, 0
	for _, c := range s {
		d := digitValue(c)
		if d < 0 || d >= radix {
			break
		}
		result = result*float64(radix) + float64(d)
		digits++
	}
	if digits == 0 {
		return math.NaN()
	}
	return sign * result
}

func digitValue(c rune) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	}
	return -1
}

// parseFloat reads the longest decimal literal prefix of s.
func parseFloat(s string) float64 {
	s = strings.TrimLeftFunc(s, isSpace)
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	if strings.HasPrefix(s[i:], "Infinity") {
		if s[0] == '-' {
			return math.Inf(-1)
		}
		return math.Inf(1)
	}
	digits := func() int {
		start := i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		return i - start
	}
	n := digits()
	if i < len(s) && s[i] == '.' {
		i++
		n += digits()
	}
	if n == 0 {
		return math.NaN()
	}
	end := i
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		if digits() > 0 {
			end = i
		}
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil && !isRangeError(err) {
		return math.NaN()
	}
	return f
}

// isRangeError accepts the ±Inf and 0 results ParseFloat reports for
// out-of-range literals.
func isRangeError(err error) bool {
	ne, ok := err.(*strconv.NumError)
	return ok && ne.Err == strconv.ErrRange
}
