package builtins

import (
	"github.com/rmja/niljs/internal/evaluator"
)

var errorKinds = []evaluator.ErrorKind{
	evaluator.ErrGeneric,
	evaluator.ErrType,
	evaluator.ErrReference,
	evaluator.ErrRange,
	evaluator.ErrSyntax,
}

// installErrors defines one constructor per error kind. Calling and
// constructing behave the same.
func installErrors(r *evaluator.Realm) {
	for _, kind := range errorKinds {
		defineConstructor(r, kind.String(), 1, r.ErrorPrototypes[kind], func(inv *evaluator.Invocation) (evaluator.Value, error) {
			msg := ""
			if !inv.Arg(0).IsUndefined() {
				var err error
				if msg, err = evaluator.ToString(inv.Context, inv.Arg(0)); err != nil {
					return evaluator.Undefined, err
				}
			}
			return evaluator.ObjectValue(inv.Realm().NewErrorObject(kind, msg)), nil
		})
	}
}
