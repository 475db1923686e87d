package niljs

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"

	"github.com/rmja/niljs/internal/config"
	"github.com/rmja/niljs/internal/evaluator"
)

var (
	valueType = reflect.TypeOf(evaluator.Value{})
	errorType = reflect.TypeOf((*error)(nil)).Elem()
)

// Marshaller handles conversion between Go and script values.
type Marshaller struct {
	realm *evaluator.Realm
	// hosts maps the objects standing for bound Go pointers back to them.
	hosts map[*evaluator.Object]reflect.Value
}

func NewMarshaller(r *evaluator.Realm) *Marshaller {
	return &Marshaller{realm: r, hosts: make(map[*evaluator.Object]reflect.Value)}
}

// ToValue converts a Go value to a script value. Pointers to structs
// become live host objects; structs, slices and maps are copied.
func (m *Marshaller) ToValue(val any) (evaluator.Value, error) {
	if val == nil {
		return evaluator.Null, nil
	}
	if v, ok := val.(evaluator.Value); ok {
		return v, nil
	}
	return m.toValue(reflect.ValueOf(val))
}

func (m *Marshaller) toValue(v reflect.Value) (evaluator.Value, error) {
	if !v.IsValid() {
		return evaluator.Null, nil
	}
	if v.Type() == valueType {
		return v.Interface().(evaluator.Value), nil
	}
	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return evaluator.Null, nil
		}
		return m.toValue(v.Elem())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return evaluator.Number(float64(v.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return evaluator.Number(float64(v.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return evaluator.Number(v.Float()), nil
	case reflect.Bool:
		return evaluator.Bool(v.Bool()), nil
	case reflect.String:
		return evaluator.String(v.String()), nil
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return evaluator.Null, nil
		}
		return m.sliceToArray(v)
	case reflect.Map:
		if v.IsNil() {
			return evaluator.Null, nil
		}
		return m.mapToObject(v)
	case reflect.Struct:
		return m.structToObject(v)
	case reflect.Ptr:
		if v.IsNil() {
			return evaluator.Null, nil
		}
		if v.Elem().Kind() == reflect.Struct {
			return evaluator.ObjectValue(m.hostObject(v)), nil
		}
		return m.toValue(v.Elem())
	case reflect.Func:
		if v.IsNil() {
			return evaluator.Null, nil
		}
		return evaluator.FunctionValue(m.hostFunction("", v)), nil
	}
	return evaluator.Undefined, fmt.Errorf("unsupported type for conversion: %s", v.Type())
}

func (m *Marshaller) sliceToArray(v reflect.Value) (evaluator.Value, error) {
	elements := make([]evaluator.Value, v.Len())
	for i := range elements {
		val, err := m.toValue(v.Index(i))
		if err != nil {
			return evaluator.Undefined, err
		}
		elements[i] = val
	}
	return evaluator.ObjectValue(m.realm.NewArray(elements...)), nil
}

func (m *Marshaller) mapToObject(v reflect.Value) (evaluator.Value, error) {
	if v.Type().Key().Kind() != reflect.String {
		return evaluator.Undefined, fmt.Errorf("map key type %s is not a string", v.Type().Key())
	}
	keys := v.MapKeys()
	slices.SortFunc(keys, func(a, b reflect.Value) int {
		switch {
		case a.String() < b.String():
			return -1
		case a.String() > b.String():
			return 1
		}
		return 0
	})
	obj := m.realm.NewObject()
	for _, k := range keys {
		val, err := m.toValue(v.MapIndex(k))
		if err != nil {
			return evaluator.Undefined, fmt.Errorf("map value %q: %w", k.String(), err)
		}
		obj.DefineOwn(k.String(), val, evaluator.AttrDefault)
	}
	return evaluator.ObjectValue(obj), nil
}

// fieldName is the script-side name of an exported struct field, or "" to
// skip it. A `niljs:"name"` tag renames the field; `niljs:"-"` hides it.
func fieldName(f reflect.StructField) string {
	if !f.IsExported() {
		return ""
	}
	switch tag := f.Tag.Get("niljs"); tag {
	case "-":
		return ""
	case "":
		return f.Name
	default:
		return tag
	}
}

func (m *Marshaller) structToObject(v reflect.Value) (evaluator.Value, error) {
	obj := m.realm.NewObject()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		name := fieldName(t.Field(i))
		if name == "" {
			continue
		}
		val, err := m.toValue(v.Field(i))
		if err != nil {
			return evaluator.Undefined, fmt.Errorf("field %s: %w", name, err)
		}
		obj.DefineOwn(name, val, evaluator.AttrDefault)
	}
	return evaluator.ObjectValue(obj), nil
}

// hostObject exposes a struct pointer: fields become accessors reading and
// writing the Go struct, methods become functions bound to it.
func (m *Marshaller) hostObject(ptr reflect.Value) *evaluator.Object {
	obj := m.realm.NewObject()
	elem := ptr.Elem()
	t := elem.Type()
	for i := 0; i < t.NumField(); i++ {
		name := fieldName(t.Field(i))
		if name == "" {
			continue
		}
		field := elem.Field(i)
		getter := m.realm.NewNativeFunction(name, 0, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			return m.toValue(field)
		})
		setter := m.realm.NewNativeFunction(name, 1, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			rv, err := m.convert(inv.Context, inv.Arg(0), field.Type())
			if err != nil {
				return evaluator.Undefined, inv.Realm().NewError(evaluator.ErrType, "cannot set %s: %v", name, err)
			}
			field.Set(rv)
			return evaluator.Undefined, nil
		})
		obj.DefineAccessor(name, getter, setter, evaluator.AttrEnumerable)
	}
	pt := ptr.Type()
	for i := 0; i < pt.NumMethod(); i++ {
		name := pt.Method(i).Name
		obj.DefineOwn(name, evaluator.FunctionValue(m.hostFunction(name, ptr.Method(i))), evaluator.AttrHidden)
	}
	m.hosts[obj] = ptr
	return obj
}

func (m *Marshaller) hostFunction(name string, fn reflect.Value) *evaluator.Function {
	length := fn.Type().NumIn()
	if fn.Type().IsVariadic() {
		length--
	}
	return m.realm.NewNativeFunction(name, length, func(inv *evaluator.Invocation) (evaluator.Value, error) {
		return m.callHost(inv, fn)
	})
}

// callHost converts the arguments to the parameter types of fn, calls it and
// converts the results back. A trailing error result is thrown as an Error;
// several other results come back as an array. A panic in fn is thrown as an
// Error, except a script exception raised by a callback, which is rethrown.
func (m *Marshaller) callHost(inv *evaluator.Invocation, fn reflect.Value) (result evaluator.Value, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		result = evaluator.Undefined
		if perr, ok := r.(error); ok {
			if _, isScript := evaluator.KindOf(perr); isScript || errors.Is(perr, context.Canceled) || errors.Is(perr, context.DeadlineExceeded) {
				err = perr
				return
			}
		}
		err = inv.Realm().NewError(evaluator.ErrGeneric, "%v", r)
	}()

	t := fn.Type()
	numIn := t.NumIn()
	args := inv.Args.Values()

	if t.IsVariadic() {
		if len(args) < numIn-1 {
			return evaluator.Undefined, inv.Realm().NewError(evaluator.ErrType, "expected at least %d arguments, got %d", numIn-1, len(args))
		}
	} else if len(args) != numIn {
		return evaluator.Undefined, inv.Realm().NewError(evaluator.ErrType, "expected %d arguments, got %d", numIn, len(args))
	}

	goArgs := make([]reflect.Value, len(args))
	for i, arg := range args {
		var target reflect.Type
		if t.IsVariadic() && i >= numIn-1 {
			target = t.In(numIn - 1).Elem()
		} else {
			target = t.In(i)
		}
		rv, err := m.convert(inv.Context, arg, target)
		if err != nil {
			return evaluator.Undefined, inv.Realm().NewError(evaluator.ErrType, "argument %d conversion failed: %v", i, err)
		}
		goArgs[i] = rv
	}

	results := fn.Call(goArgs)
	if n := len(results); n > 0 && t.Out(n-1) == errorType {
		if err, _ := results[n-1].Interface().(error); err != nil {
			return evaluator.Undefined, inv.Realm().NewError(evaluator.ErrGeneric, "%s", err.Error())
		}
		results = results[:n-1]
	}
	switch len(results) {
	case 0:
		return evaluator.Undefined, nil
	case 1:
		return m.toValue(results[0])
	}
	elements := make([]evaluator.Value, len(results))
	for i, res := range results {
		val, err := m.toValue(res)
		if err != nil {
			return evaluator.Undefined, err
		}
		elements[i] = val
	}
	return evaluator.ObjectValue(inv.Realm().NewArray(elements...)), nil
}

// FromValue converts a script value to a Go value.
// targetType is optional; if provided, the value is converted to that type.
func (m *Marshaller) FromValue(v evaluator.Value, targetType reflect.Type) (any, error) {
	ctx := m.realm.NewContext(context.Background())
	if targetType != nil {
		rv, err := m.convert(ctx, v, targetType)
		if err != nil {
			return nil, err
		}
		return rv.Interface(), nil
	}
	return m.export(ctx, v, map[*evaluator.Object]bool{})
}

// export picks the natural Go type: nil, bool, float64, string, []any,
// map[string]any, a func for script functions or the original pointer for
// host objects.
func (m *Marshaller) export(ctx *evaluator.Context, v evaluator.Value, seen map[*evaluator.Object]bool) (any, error) {
	switch v.Kind() {
	case evaluator.KindUndefined, evaluator.KindNull:
		return nil, nil
	case evaluator.KindBoolean:
		return v.Bool(), nil
	case evaluator.KindNumber:
		return v.Number(), nil
	case evaluator.KindString:
		return v.Str(), nil
	case evaluator.KindFunction:
		fn := v.Function()
		return func(args ...any) (any, error) {
			return m.callScript(ctx, fn, args)
		}, nil
	}
	obj := v.Object()
	if obj == nil {
		return nil, nil
	}
	if ptr, ok := m.hosts[obj]; ok {
		return ptr.Interface(), nil
	}
	if isWrapper(obj) {
		return m.export(ctx, obj.PrimitiveValue(), seen)
	}
	if seen[obj] {
		return nil, fmt.Errorf("cyclic object value")
	}
	seen[obj] = true
	defer delete(seen, obj)

	if obj.IsArray() {
		n, err := obj.Length(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]any, n)
		for i := range out {
			el, err := obj.Get(ctx, v, strconv.Itoa(i))
			if err != nil {
				return nil, err
			}
			if out[i], err = m.export(ctx, el, seen); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	out := make(map[string]any)
	for key := range obj.GetEnumerator(true, evaluator.EnumerateKeys) {
		el, err := obj.Get(ctx, v, key)
		if err != nil {
			return nil, err
		}
		if out[key], err = m.export(ctx, el, seen); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// convert coerces v to Go type t.
func (m *Marshaller) convert(ctx *evaluator.Context, v evaluator.Value, t reflect.Type) (reflect.Value, error) {
	if t == valueType {
		return reflect.ValueOf(v), nil
	}
	if v.IsNullish() {
		switch t.Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func:
			return reflect.Zero(t), nil
		}
		if v.IsUndefined() {
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("cannot convert null to %s", t)
	}
	if obj := v.Object(); obj != nil {
		if ptr, ok := m.hosts[obj]; ok && ptr.Type().AssignableTo(t) {
			return ptr, nil
		}
	}

	switch t.Kind() {
	case reflect.Interface:
		x, err := m.export(ctx, v, map[*evaluator.Object]bool{})
		if err != nil {
			return reflect.Value{}, err
		}
		if x == nil {
			return reflect.Zero(t), nil
		}
		rv := reflect.ValueOf(x)
		if !rv.Type().AssignableTo(t) {
			return reflect.Value{}, fmt.Errorf("%s does not implement %s", rv.Type(), t)
		}
		return rv, nil
	case reflect.Bool:
		return reflect.ValueOf(evaluator.ToBoolean(v)).Convert(t), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := evaluator.ToInteger(ctx, v)
		if err != nil {
			return reflect.Value{}, err
		}
		rv := reflect.New(t).Elem()
		if math.IsInf(n, 0) || rv.OverflowInt(int64(n)) {
			return reflect.Value{}, fmt.Errorf("%v overflows %s", n, t)
		}
		rv.SetInt(int64(n))
		return rv, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := evaluator.ToInteger(ctx, v)
		if err != nil {
			return reflect.Value{}, err
		}
		rv := reflect.New(t).Elem()
		if n < 0 || math.IsInf(n, 0) || rv.OverflowUint(uint64(n)) {
			return reflect.Value{}, fmt.Errorf("%v overflows %s", n, t)
		}
		rv.SetUint(uint64(n))
		return rv, nil
	case reflect.Float32, reflect.Float64:
		n, err := evaluator.ToNumber(ctx, v)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(n).Convert(t), nil
	case reflect.String:
		s, err := evaluator.ToString(ctx, v)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(s).Convert(t), nil
	case reflect.Slice:
		return m.convertSlice(ctx, v, t)
	case reflect.Map:
		return m.convertMap(ctx, v, t)
	case reflect.Struct:
		return m.convertStruct(ctx, v, t)
	case reflect.Ptr:
		rv, err := m.convert(ctx, v, t.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(t.Elem())
		p.Elem().Set(rv)
		return p, nil
	case reflect.Func:
		fn := v.Function()
		if fn == nil {
			return reflect.Value{}, fmt.Errorf("%s is not a function", v.Inspect())
		}
		return m.goFunc(ctx, fn, t), nil
	}
	return reflect.Value{}, fmt.Errorf("unsupported target type %s", t)
}

func (m *Marshaller) convertSlice(ctx *evaluator.Context, v evaluator.Value, t reflect.Type) (reflect.Value, error) {
	obj := v.Object()
	if obj == nil {
		return reflect.Value{}, fmt.Errorf("cannot convert %s to %s", v.Inspect(), t)
	}
	n, err := obj.Length(ctx)
	if err != nil {
		return reflect.Value{}, err
	}
	out := reflect.MakeSlice(t, int(n), int(n))
	for i := 0; i < int(n); i++ {
		el, err := obj.Get(ctx, v, strconv.Itoa(i))
		if err != nil {
			return reflect.Value{}, err
		}
		rv, err := m.convert(ctx, el, t.Elem())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("element %d: %w", i, err)
		}
		out.Index(i).Set(rv)
	}
	return out, nil
}

func (m *Marshaller) convertMap(ctx *evaluator.Context, v evaluator.Value, t reflect.Type) (reflect.Value, error) {
	obj := v.Object()
	if obj == nil || t.Key().Kind() != reflect.String {
		return reflect.Value{}, fmt.Errorf("cannot convert %s to %s", v.Inspect(), t)
	}
	out := reflect.MakeMap(t)
	for key := range obj.GetEnumerator(true, evaluator.EnumerateKeys) {
		el, err := obj.Get(ctx, v, key)
		if err != nil {
			return reflect.Value{}, err
		}
		rv, err := m.convert(ctx, el, t.Elem())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("map value %q: %w", key, err)
		}
		out.SetMapIndex(reflect.ValueOf(key).Convert(t.Key()), rv)
	}
	return out, nil
}

func (m *Marshaller) convertStruct(ctx *evaluator.Context, v evaluator.Value, t reflect.Type) (reflect.Value, error) {
	obj := v.Object()
	if obj == nil {
		return reflect.Value{}, fmt.Errorf("cannot convert %s to %s", v.Inspect(), t)
	}
	out := reflect.New(t).Elem()
	for i := 0; i < t.NumField(); i++ {
		name := fieldName(t.Field(i))
		if name == "" || !obj.HasProperty(name) {
			continue
		}
		el, err := obj.Get(ctx, v, name)
		if err != nil {
			return reflect.Value{}, err
		}
		rv, err := m.convert(ctx, el, t.Field(i).Type)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("field %s: %w", name, err)
		}
		out.Field(i).Set(rv)
	}
	return out, nil
}

// goFunc wraps a script function as a Go function of type t. The script runs
// as a callee of ctx, so call depth and host cancellation carry across the
// Go frame. A script exception is returned through a trailing error result,
// or panics when t has none; callHost turns that panic back into a throw.
func (m *Marshaller) goFunc(ctx *evaluator.Context, fn *evaluator.Function, t reflect.Type) reflect.Value {
	return reflect.MakeFunc(t, func(in []reflect.Value) []reflect.Value {
		if t.IsVariadic() && len(in) > 0 {
			rest := in[len(in)-1]
			in = in[:len(in)-1]
			for i := 0; i < rest.Len(); i++ {
				in = append(in, rest.Index(i))
			}
		}
		args := make([]any, len(in))
		for i, a := range in {
			args[i] = a.Interface()
		}

		out := make([]reflect.Value, t.NumOut())
		for i := range out {
			out[i] = reflect.Zero(t.Out(i))
		}
		hasErr := len(out) > 0 && t.Out(len(out)-1) == errorType

		res, err := m.call(ctx, fn, args)
		if err == nil && len(out) > 0 && !(hasErr && len(out) == 1) {
			var rv reflect.Value
			if rv, err = m.convert(ctx, res, t.Out(0)); err == nil {
				out[0] = rv
			}
		}
		if err != nil {
			if !hasErr {
				panic(err)
			}
			out[len(out)-1] = reflect.ValueOf(&err).Elem()
		}
		return out
	})
}

// call invokes a script function with Go arguments.
func (m *Marshaller) call(ctx *evaluator.Context, fn *evaluator.Function, args []any) (evaluator.Value, error) {
	values := make([]evaluator.Value, len(args))
	for i, a := range args {
		v, err := m.ToValue(a)
		if err != nil {
			return evaluator.Undefined, fmt.Errorf("argument %d: %w", i, err)
		}
		values[i] = v
	}
	return fn.Call(ctx, evaluator.Undefined, values...)
}

// callScript invokes fn and exports the result.
func (m *Marshaller) callScript(ctx *evaluator.Context, fn *evaluator.Function, args []any) (any, error) {
	res, err := m.call(ctx, fn, args)
	if err != nil {
		return nil, err
	}
	return m.export(ctx, res, map[*evaluator.Object]bool{})
}

// isWrapper reports objects created by the primitive constructors.
func isWrapper(obj *evaluator.Object) bool {
	switch obj.Class() {
	case config.NumberTypeName, config.StringTypeName, config.BooleanTypeName:
		return true
	}
	return false
}
