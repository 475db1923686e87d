package builtins

import (
	"github.com/rmja/niljs/internal/config"
	"github.com/rmja/niljs/internal/evaluator"
)

func installBoolean(r *evaluator.Realm) {
	defineConstructor(r, config.BooleanTypeName, 1, r.BooleanPrototype, func(inv *evaluator.Invocation) (evaluator.Value, error) {
		b := evaluator.Bool(evaluator.ToBoolean(inv.Arg(0)))
		if inv.Construct {
			return evaluator.ToObject(inv.Context, b)
		}
		return b, nil
	})
	defineMethods(r, r.BooleanPrototype, map[string]method{
		config.ToStringMethodName: {0, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			b, err := thisBoolean(inv, "toString")
			if err != nil {
				return evaluator.Undefined, err
			}
			if b {
				return evaluator.String("true"), nil
			}
			return evaluator.String("false"), nil
		}},
		config.ValueOfMethodName: {0, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			b, err := thisBoolean(inv, "valueOf")
			return evaluator.Bool(b), err
		}},
	})
}

func thisBoolean(inv *evaluator.Invocation, method string) (bool, error) {
	v := inv.This
	if obj := v.Object(); obj != nil && obj.Class() == config.BooleanTypeName {
		v = obj.PrimitiveValue()
	}
	if v.Kind() != evaluator.KindBoolean {
		return false, inv.Realm().NewError(evaluator.ErrType, "Boolean.prototype.%s requires that 'this' be a Boolean", method)
	}
	return v.Bool(), nil
}
