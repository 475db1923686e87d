package builtins

import (
	"fmt"
	"strings"

	"github.com/rmja/niljs/internal/config"
	"github.com/rmja/niljs/internal/evaluator"
)

// installDebug defines the Debug object and console.log, both writing to
// the realm output.
func installDebug(r *evaluator.Realm) {
	debug := r.NewObject()
	defineMethods(r, debug, map[string]method{
		"write": {1, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			return evaluator.Undefined, writeArgs(inv, "", "")
		}},
		"writeln": {1, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			return evaluator.Undefined, writeArgs(inv, "", "\n")
		}},
		"assert": {2, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			if evaluator.ToBoolean(inv.Arg(0)) {
				return evaluator.Undefined, nil
			}
			msg := "Assertion failed"
			if inv.Args.Len() > 1 {
				s, err := evaluator.ToString(inv.Context, inv.Arg(1))
				if err != nil {
					return evaluator.Undefined, err
				}
				msg += ": " + s
			}
			return evaluator.Undefined, inv.Realm().NewError(evaluator.ErrGeneric, "%s", msg)
		}},
	})
	r.Define(config.DebugObjectName, evaluator.ObjectValue(debug))

	console := r.NewObject()
	r.DefineMethod(console, "log", 0, func(inv *evaluator.Invocation) (evaluator.Value, error) {
		return evaluator.Undefined, writeArgs(inv, " ", "\n")
	})
	r.Define(config.ConsoleName, evaluator.ObjectValue(console))
}

func writeArgs(inv *evaluator.Invocation, sep, end string) error {
	parts := make([]string, inv.Args.Len())
	for i, v := range inv.Args.Values() {
		s, err := evaluator.ToString(inv.Context, v)
		if err != nil {
			return err
		}
		parts[i] = s
	}
	_, err := fmt.Fprint(inv.Realm().Out, strings.Join(parts, sep)+end)
	return err
}
