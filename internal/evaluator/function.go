package evaluator

import (
	"strings"

	"github.com/rmja/niljs/internal/config"
)

// FunctionKind distinguishes interpreted, generator and host functions.
type FunctionKind uint8

const (
	FunctionOrdinary FunctionKind = iota
	FunctionGenerator
	FunctionNative
)

// CallFlags is the per-call-site overlay passed to an invocation. It never
// changes the shared Function.
type CallFlags uint8

const (
	// CallDirectEval marks a direct call of eval: the callee runs in the
	// caller's scope.
	CallDirectEval CallFlags = 1 << iota
)

// Invocation is what a native function receives.
type Invocation struct {
	// Context is the caller's frame.
	Context *Context
	// This is the receiver; MissingInstance for construct calls, which must
	// allocate their own instance.
	This      Value
	Args      *Arguments
	Callee    *Function
	Construct bool
	Flags     CallFlags
}

func (inv *Invocation) Realm() *Realm { return inv.Context.realm }

// Arg returns the i-th argument or Undefined.
func (inv *Invocation) Arg(i int) Value { return inv.Args.At(i) }

// NativeFunc implements a host function.
type NativeFunc func(inv *Invocation) (Value, error)

// Function is a callable object. Its descriptor fields are fixed at
// creation; everything that varies per call lives in Context.
type Function struct {
	Object
	kind   FunctionKind
	name   string
	length int
	def    *FunctionDefinition
	scope  *Scope
	native NativeFunc
	realm  *Realm
}

func (f *Function) Kind() FunctionKind              { return f.kind }
func (f *Function) Name() string                    { return f.name }
func (f *Function) Definition() *FunctionDefinition { return f.def }
func (f *Function) Realm() *Realm                   { return f.realm }

// Length is the declared parameter count.
func (f *Function) Length() int { return f.length }

// Parameters lists the declared parameters; nil for native functions.
func (f *Function) Parameters() []*Parameter {
	if f.def == nil {
		return nil
	}
	return f.def.Parameters
}

func (f *Function) Inspect() string {
	if f.kind == FunctionNative {
		return "function " + f.name + "() { [native code] }"
	}
	if f.def != nil && f.def.Source != "" {
		return f.def.Source
	}
	params := make([]string, len(f.Parameters()))
	for i, p := range f.Parameters() {
		params[i] = p.Name
	}
	return "function " + f.name + "(" + strings.Join(params, ", ") + ") { ... }"
}

// NewNativeFunction wraps a host function. It gets Function.prototype as
// prototype and non-enumerable name and length properties.
func (r *Realm) NewNativeFunction(name string, length int, impl NativeFunc) *Function {
	f := &Function{kind: FunctionNative, name: name, length: length, native: impl, realm: r}
	f.Object.init(r.FunctionPrototype, config.FunctionTypeName)
	f.Object.callable = f
	f.DefineOwn(config.NamePropName, String(name), 0)
	f.DefineOwn(config.LengthPropName, Int(length), 0)
	return f
}

// newClosure instantiates a function definition over the scope it was
// evaluated in.
func (r *Realm) newClosure(def *FunctionDefinition, scope *Scope) *Function {
	kind := FunctionOrdinary
	if def.Generator {
		kind = FunctionGenerator
	}
	f := &Function{kind: kind, name: def.Name, length: len(def.Parameters), def: def, scope: scope, realm: r}
	f.Object.init(r.FunctionPrototype, config.FunctionTypeName)
	f.Object.callable = f
	f.DefineOwn(config.NamePropName, String(def.Name), 0)
	f.DefineOwn(config.LengthPropName, Int(f.length), 0)
	proto := NewObject(r.ObjectPrototype)
	proto.DefineOwn(config.ConstructorPropName, FunctionValue(f), AttrHidden)
	f.DefineOwn(config.PrototypePropName, ObjectValue(proto), AttrWritable)
	return f
}

// Call invokes f with already evaluated arguments. The stack guard runs
// first.
func (f *Function) Call(ctx *Context, this Value, args ...Value) (Value, error) {
	if err := ctx.checkStack(); err != nil {
		return Undefined, err
	}
	return f.invoke(ctx, this, NewArguments(f, args...), false, 0)
}

// CallArguments is Call with a prepared argument list.
func (f *Function) CallArguments(ctx *Context, this Value, args *Arguments) (Value, error) {
	if err := ctx.checkStack(); err != nil {
		return Undefined, err
	}
	args.callee = f
	return f.invoke(ctx, this, args, false, 0)
}

// Construct invokes f as a constructor.
func (f *Function) Construct(ctx *Context, args ...Value) (Value, error) {
	if err := ctx.checkStack(); err != nil {
		return Undefined, err
	}
	return f.invoke(ctx, MissingInstance, NewArguments(f, args...), true, 0)
}

// prototypeObject is the prototype given to instances created by f.
func (f *Function) prototypeObject(ctx *Context) (*Object, error) {
	p, err := f.Get(ctx, FunctionValue(f), config.PrototypePropName)
	if err != nil {
		return nil, err
	}
	if p.IsObject() {
		return p.Object(), nil
	}
	return f.realm.ObjectPrototype, nil
}

// NewInstance allocates an object whose prototype is f's prototype
// property, for native constructors.
func (f *Function) NewInstance(ctx *Context) (*Object, error) {
	proto, err := f.prototypeObject(ctx)
	if err != nil {
		return nil, err
	}
	return NewObject(proto), nil
}
