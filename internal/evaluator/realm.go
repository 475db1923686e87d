package evaluator

import (
	"io"
	"os"
	"strings"

	"github.com/rmja/niljs/internal/config"
)

// Realm is one global environment: the global object and the intrinsic
// prototypes the core itself relies on. The builtin library populates the
// rest of the global object.
type Realm struct {
	Global            *Object
	ObjectPrototype   *Object
	FunctionPrototype *Object
	ArrayPrototype    *Object
	NumberPrototype   *Object
	StringPrototype   *Object
	BooleanPrototype  *Object
	ErrorPrototypes   [errorKindCount]*Object

	// Out receives console and Debug output.
	Out io.Writer

	maxCallDepth int
	strict       bool
}

// NewRealm creates a realm with the core intrinsics installed.
func NewRealm(opts config.EngineOptions) *Realm {
	r := &Realm{
		Out:          os.Stdout,
		maxCallDepth: opts.MaxCallDepth,
		strict:       opts.Strict,
	}
	r.ObjectPrototype = NewObject(nil)
	r.FunctionPrototype = NewObject(r.ObjectPrototype)
	r.FunctionPrototype.class = config.FunctionTypeName
	r.ArrayPrototype = NewArrayObject(r.ObjectPrototype)
	r.NumberPrototype = r.wrapperPrototype(config.NumberTypeName, Int(0))
	r.StringPrototype = r.wrapperPrototype(config.StringTypeName, String(""))
	r.BooleanPrototype = r.wrapperPrototype(config.BooleanTypeName, False)
	r.Global = NewObject(r.ObjectPrototype)
	r.Global.class = "global"

	r.installObjectPrototype()
	r.installFunctionPrototype()
	r.installErrorPrototypes()

	r.Global.DefineOwn(config.UndefinedName, Undefined, 0)
	r.Global.DefineOwn(config.NaNName, Number(nan), 0)
	r.Global.DefineOwn(config.InfinityName, Number(posInf), 0)
	return r
}

func (r *Realm) wrapperPrototype(class string, primitive Value) *Object {
	p := NewObject(r.ObjectPrototype)
	p.class = class
	p.primitive = primitive
	return p
}

// MaxCallDepth is the nesting limit enforced by the stack guard.
func (r *Realm) MaxCallDepth() int { return r.maxCallDepth }

// Strict reports whether all code of the realm runs in strict mode.
func (r *Realm) Strict() bool { return r.strict }

// NewObject allocates a plain object.
func (r *Realm) NewObject() *Object { return NewObject(r.ObjectPrototype) }

// NewArray allocates an array holding values.
func (r *Realm) NewArray(values ...Value) *Object {
	return NewArrayObject(r.ArrayPrototype, values...)
}

// Define installs a non-enumerable global binding.
func (r *Realm) Define(name string, v Value) {
	r.Global.DefineOwn(name, v, AttrHidden)
}

// DefineMethod installs a native method on obj.
func (r *Realm) DefineMethod(obj *Object, name string, length int, impl NativeFunc) *Function {
	fn := r.NewNativeFunction(name, length, impl)
	obj.DefineOwn(name, FunctionValue(fn), AttrHidden)
	return fn
}

func (r *Realm) installObjectPrototype() {
	r.DefineMethod(r.ObjectPrototype, config.ToStringMethodName, 0, func(inv *Invocation) (Value, error) {
		switch {
		case inv.This.IsUndefined():
			return String("[object Undefined]"), nil
		case inv.This.IsNull() || inv.This.IsMissing():
			return String("[object Null]"), nil
		}
		o, err := ToObject(inv.Context, inv.This)
		if err != nil {
			return Undefined, err
		}
		return String("[object " + o.Object().Class() + "]"), nil
	})
	r.DefineMethod(r.ObjectPrototype, config.ValueOfMethodName, 0, func(inv *Invocation) (Value, error) {
		return ToObject(inv.Context, inv.This)
	})
}

func (r *Realm) installFunctionPrototype() {
	r.DefineMethod(r.FunctionPrototype, config.CallMethodName, 1, func(inv *Invocation) (Value, error) {
		fn := inv.This.Function()
		if fn == nil {
			return Undefined, inv.Context.typeError("Function.prototype.call called on non-function")
		}
		var rest []Value
		if inv.Args.Len() > 1 {
			rest = inv.Args.Values()[1:]
		}
		return fn.Call(inv.Context, inv.Arg(0), rest...)
	})
	r.DefineMethod(r.FunctionPrototype, config.ApplyMethodName, 2, func(inv *Invocation) (Value, error) {
		fn := inv.This.Function()
		if fn == nil {
			return Undefined, inv.Context.typeError("Function.prototype.apply called on non-function")
		}
		args := NewArguments(fn)
		if list := inv.Arg(1); !list.IsNullish() {
			if err := expandSpread(inv.Context, args, list); err != nil {
				return Undefined, err
			}
		}
		return fn.CallArguments(inv.Context, inv.Arg(0), args)
	})
	r.DefineMethod(r.FunctionPrototype, config.ToStringMethodName, 0, func(inv *Invocation) (Value, error) {
		fn := inv.This.Function()
		if fn == nil {
			return Undefined, inv.Context.typeError("Function.prototype.toString requires that 'this' be a Function")
		}
		return String(fn.Inspect()), nil
	})
}

func (r *Realm) installErrorPrototypes() {
	base := NewObject(r.ObjectPrototype)
	base.class = config.ErrorTypeName
	base.DefineOwn(config.NamePropName, String(ErrGeneric.String()), AttrHidden)
	base.DefineOwn(config.MessagePropName, String(""), AttrHidden)
	r.DefineMethod(base, config.ToStringMethodName, 0, errorToString)
	r.ErrorPrototypes[ErrGeneric] = base
	for k := ErrType; k < errorKindCount; k++ {
		p := NewObject(base)
		p.class = config.ErrorTypeName
		p.DefineOwn(config.NamePropName, String(k.String()), AttrHidden)
		p.DefineOwn(config.MessagePropName, String(""), AttrHidden)
		r.ErrorPrototypes[k] = p
	}
}

func errorToString(inv *Invocation) (Value, error) {
	obj := inv.This.Object()
	if obj == nil {
		return Undefined, inv.Context.typeError("Error.prototype.toString called on non-object")
	}
	part := func(key, fallback string) (string, error) {
		v, err := obj.Get(inv.Context, inv.This, key)
		if err != nil || v.IsUndefined() {
			return fallback, err
		}
		return ToString(inv.Context, v)
	}
	name, err := part(config.NamePropName, ErrGeneric.String())
	if err != nil {
		return Undefined, err
	}
	msg, err := part(config.MessagePropName, "")
	if err != nil {
		return Undefined, err
	}
	switch {
	case name == "":
		return String(msg), nil
	case msg == "":
		return String(name), nil
	}
	return String(strings.Join([]string{name, msg}, ": ")), nil
}
