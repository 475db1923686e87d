package evaluator

import (
	"strconv"

	"github.com/rmja/niljs/internal/config"
)

// Arguments is the ordered argument list of one invocation. Len may be
// smaller than the backing capacity when the list is reused by a
// tail-recursive loop.
type Arguments struct {
	values []Value
	length int
	callee *Function
}

func NewArguments(callee *Function, values ...Value) *Arguments {
	return &Arguments{values: values, length: len(values), callee: callee}
}

func (a *Arguments) Len() int {
	if a == nil {
		return 0
	}
	return a.length
}

// At returns Undefined past the end.
func (a *Arguments) At(i int) Value {
	if a == nil || i < 0 || i >= a.length {
		return Undefined
	}
	return a.values[i]
}

func (a *Arguments) Set(i int, v Value) {
	for i >= a.length {
		a.Append(Undefined)
	}
	a.values[i] = v
}

func (a *Arguments) Append(v Value) {
	if a.length < len(a.values) {
		a.values[a.length] = v
	} else {
		a.values = append(a.values, v)
	}
	a.length++
}

func (a *Arguments) Values() []Value {
	if a == nil {
		return nil
	}
	return a.values[:a.length]
}

func (a *Arguments) Callee() *Function {
	if a == nil {
		return nil
	}
	return a.callee
}

// reset empties the list for reuse, keeping its capacity.
func (a *Arguments) reset(callee *Function) {
	a.values = a.values[:cap(a.values)]
	clear(a.values)
	a.length = 0
	a.callee = callee
}

// packArguments evaluates argument expressions left to right. With spread
// set, the last expression is expanded as an array-like.
func packArguments(ctx *Context, into *Arguments, exprs []Expression, spread bool) error {
	for i, e := range exprs {
		if spread && i == len(exprs)-1 {
			if s, ok := e.(*Spread); ok {
				e = s.Argument
			}
			v, err := e.Evaluate(ctx)
			if err != nil {
				return err
			}
			if err := expandSpread(ctx, into, v); err != nil {
				return err
			}
			continue
		}
		v, err := e.Evaluate(ctx)
		if err != nil {
			return err
		}
		into.Append(v)
	}
	return nil
}

func expandSpread(ctx *Context, into *Arguments, v Value) error {
	if v.IsNullish() {
		return ctx.typeError("%s is not iterable", v.kindName())
	}
	ov, err := ToObject(ctx, v)
	if err != nil {
		return err
	}
	obj := ov.Object()
	n, err := obj.Length(ctx)
	if err != nil {
		return err
	}
	for i := uint32(0); i < n; i++ {
		item, err := obj.Get(ctx, ov, strconv.FormatUint(uint64(i), 10))
		if err != nil {
			return err
		}
		into.Append(item)
	}
	return nil
}

// newArgumentsObject builds the script-visible arguments object.
func (r *Realm) newArgumentsObject(args *Arguments) *Object {
	obj := NewObject(r.ObjectPrototype)
	obj.class = config.ArgumentsClass
	for i, v := range args.Values() {
		obj.DefineOwn(strconv.Itoa(i), v, AttrDefault)
	}
	obj.DefineOwn(config.LengthPropName, Int(args.Len()), AttrHidden)
	if args.callee != nil {
		obj.DefineOwn(config.CalleePropName, FunctionValue(args.callee), AttrHidden)
	}
	return obj
}
