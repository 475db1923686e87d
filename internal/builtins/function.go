package builtins

import (
	"github.com/rmja/niljs/internal/config"
	"github.com/rmja/niljs/internal/evaluator"
	"github.com/rmja/niljs/internal/parser"
)

func installFunction(r *evaluator.Realm) {
	defineConstructor(r, config.FunctionTypeName, 1, r.FunctionPrototype, functionConstructor)
}

// functionConstructor builds a function from parameter and body strings.
// The result closes over the global scope only.
func functionConstructor(inv *evaluator.Invocation) (evaluator.Value, error) {
	args := inv.Args.Values()
	var params []string
	body := ""
	for i, a := range args {
		s, err := evaluator.ToString(inv.Context, a)
		if err != nil {
			return evaluator.Undefined, err
		}
		if i == len(args)-1 {
			body = s
			break
		}
		params = append(params, s)
	}
	script, err := parser.ParseEval(parser.FunctionSource(params, body))
	if err != nil {
		return evaluator.Undefined, inv.Realm().NewError(evaluator.ErrSyntax, "%s", err.Error())
	}
	if err := prepareEval(inv, script); err != nil {
		return evaluator.Undefined, err
	}
	return evaluator.EvalScript(inv.Context, script, false)
}
