// Package builtins installs the builtin library on a realm: the standard
// constructors, Math, the global functions, Debug and console.
package builtins

import (
	"maps"
	"slices"

	"github.com/rmja/niljs/internal/config"
	"github.com/rmja/niljs/internal/evaluator"
)

// method is a native function together with its declared length.
type method struct {
	length int
	fn     evaluator.NativeFunc
}

// Install populates the global object of r.
func Install(r *evaluator.Realm) {
	installObject(r)
	installFunction(r)
	installArray(r)
	installNumber(r)
	installString(r)
	installBoolean(r)
	installErrors(r)
	installMath(r)
	installGlobals(r)
	installDebug(r)
}

// NewRealm creates a realm with the builtin library installed.
func NewRealm(opts config.EngineOptions) *evaluator.Realm {
	r := evaluator.NewRealm(opts)
	Install(r)
	return r
}

// defineMethods installs a method table on obj in name order.
func defineMethods(r *evaluator.Realm, obj *evaluator.Object, table map[string]method) {
	for _, name := range slices.Sorted(maps.Keys(table)) {
		m := table[name]
		r.DefineMethod(obj, name, m.length, m.fn)
	}
}

// defineConstants installs read-only, non-enumerable values on obj.
func defineConstants(obj *evaluator.Object, table map[string]evaluator.Value) {
	for _, name := range slices.Sorted(maps.Keys(table)) {
		obj.DefineOwn(name, table[name], 0)
	}
}

// defineConstructor creates a global constructor linked both ways with its
// prototype object.
func defineConstructor(r *evaluator.Realm, name string, length int, proto *evaluator.Object, impl evaluator.NativeFunc) *evaluator.Function {
	ctor := r.NewNativeFunction(name, length, impl)
	ctor.DefineOwn(config.PrototypePropName, evaluator.ObjectValue(proto), 0)
	proto.DefineOwn(config.ConstructorPropName, evaluator.FunctionValue(ctor), evaluator.AttrHidden)
	r.Define(name, evaluator.FunctionValue(ctor))
	return ctor
}

// thisObject converts the receiver, failing for undefined and null.
func thisObject(inv *evaluator.Invocation, method string) (evaluator.Value, *evaluator.Object, error) {
	if inv.This.IsNullish() || inv.This.IsMissing() {
		return evaluator.Undefined, nil, inv.Realm().NewError(evaluator.ErrType, "%s called on null or undefined", method)
	}
	v, err := evaluator.ToObject(inv.Context, inv.This)
	if err != nil {
		return evaluator.Undefined, nil, err
	}
	return v, v.Object(), nil
}

// callable returns the i-th argument as a function or a TypeError.
func callable(inv *evaluator.Invocation, i int) (*evaluator.Function, error) {
	arg := inv.Arg(i)
	fn := arg.Function()
	if fn == nil {
		return nil, inv.Realm().NewError(evaluator.ErrType, "%s is not a function", arg.Inspect())
	}
	return fn, nil
}

// argInteger converts the i-th argument with ToInteger, using def when it
// is undefined.
func argInteger(inv *evaluator.Invocation, i int, def float64) (float64, error) {
	v := inv.Arg(i)
	if v.IsUndefined() {
		return def, nil
	}
	return evaluator.ToInteger(inv.Context, v)
}

// relativeIndex resolves a possibly negative position against length.
func relativeIndex(pos, length float64) int {
	if pos < 0 {
		pos += length
		if pos < 0 {
			pos = 0
		}
	}
	if pos > length {
		pos = length
	}
	return int(pos)
}
