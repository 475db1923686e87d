package builtins

import (
	"github.com/rmja/niljs/internal/config"
	"github.com/rmja/niljs/internal/evaluator"
)

func installObject(r *evaluator.Realm) {
	ctor := defineConstructor(r, config.ObjectTypeName, 1, r.ObjectPrototype, objectConstructor)
	defineMethods(r, &ctor.Object, objectStatics())
	defineMethods(r, r.ObjectPrototype, objectPrototypeMethods())
}

// objectConstructor is Object(v) and new Object(v): a fresh object for
// undefined, null and the missing instance, the value itself for objects
// and the wrapper object for other primitives.
func objectConstructor(inv *evaluator.Invocation) (evaluator.Value, error) {
	v := inv.Arg(0)
	if v.IsNullish() || v.IsMissing() {
		return evaluator.ObjectValue(inv.Realm().NewObject()), nil
	}
	return evaluator.ToObject(inv.Context, v)
}

func argObject(inv *evaluator.Invocation, i int, fn string) (*evaluator.Object, error) {
	obj := inv.Arg(i).Object()
	if obj == nil {
		return nil, inv.Realm().NewError(evaluator.ErrType, "Object.%s called on non-object", fn)
	}
	return obj, nil
}

func objectStatics() map[string]method {
	return map[string]method{
		"getPrototypeOf": {1, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			obj, err := argObject(inv, 0, "getPrototypeOf")
			if err != nil {
				return evaluator.Undefined, err
			}
			if p := obj.Prototype(); p != nil {
				return evaluator.ObjectValue(p), nil
			}
			return evaluator.Null, nil
		}},
		"create": {2, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			proto := inv.Arg(0)
			if !proto.IsNull() && proto.Object() == nil {
				return evaluator.Undefined, inv.Realm().NewError(evaluator.ErrType, "Object prototype may only be an Object or null")
			}
			obj := evaluator.NewObject(proto.Object())
			if props := inv.Arg(1); !props.IsUndefined() {
				if err := defineProperties(inv, obj, props); err != nil {
					return evaluator.Undefined, err
				}
			}
			return evaluator.ObjectValue(obj), nil
		}},
		"keys": {1, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			obj, err := argObject(inv, 0, "keys")
			if err != nil {
				return evaluator.Undefined, err
			}
			var keys []evaluator.Value
			for k := range obj.GetEnumerator(true, evaluator.EnumerateKeys) {
				keys = append(keys, evaluator.String(k))
			}
			return evaluator.ObjectValue(inv.Realm().NewArray(keys...)), nil
		}},
		"getOwnPropertyNames": {1, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			obj, err := argObject(inv, 0, "getOwnPropertyNames")
			if err != nil {
				return evaluator.Undefined, err
			}
			var keys []evaluator.Value
			for _, k := range obj.OwnKeys(false) {
				keys = append(keys, evaluator.String(k))
			}
			return evaluator.ObjectValue(inv.Realm().NewArray(keys...)), nil
		}},
		"defineProperty": {3, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			obj, err := argObject(inv, 0, "defineProperty")
			if err != nil {
				return evaluator.Undefined, err
			}
			key, err := evaluator.ToPropertyKey(inv.Context, inv.Arg(1))
			if err != nil {
				return evaluator.Undefined, err
			}
			if err := defineProperty(inv, obj, key, inv.Arg(2)); err != nil {
				return evaluator.Undefined, err
			}
			return inv.Arg(0), nil
		}},
		"defineProperties": {2, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			obj, err := argObject(inv, 0, "defineProperties")
			if err != nil {
				return evaluator.Undefined, err
			}
			return inv.Arg(0), defineProperties(inv, obj, inv.Arg(1))
		}},
	}
}

func defineProperties(inv *evaluator.Invocation, obj *evaluator.Object, props evaluator.Value) error {
	if props.IsNullish() {
		return inv.Realm().NewError(evaluator.ErrType, "Cannot convert %s to object", props.Inspect())
	}
	src, err := evaluator.ToObject(inv.Context, props)
	if err != nil {
		return err
	}
	for key, desc := range src.Object().GetEnumerator(true, evaluator.EnumerateValues) {
		if err := defineProperty(inv, obj, key, desc); err != nil {
			return err
		}
	}
	return nil
}

// defineProperty applies a property descriptor object. Missing attribute
// fields default to false.
func defineProperty(inv *evaluator.Invocation, obj *evaluator.Object, key string, desc evaluator.Value) error {
	d := desc.Object()
	if d == nil {
		return inv.Realm().NewError(evaluator.ErrType, "Property description must be an object")
	}
	field := func(name string) (evaluator.Value, bool, error) {
		if !d.HasProperty(name) {
			return evaluator.Undefined, false, nil
		}
		v, err := d.Get(inv.Context, desc, name)
		return v, true, err
	}
	var attrs evaluator.Attributes
	for name, bit := range map[string]evaluator.Attributes{
		"enumerable":   evaluator.AttrEnumerable,
		"writable":     evaluator.AttrWritable,
		"configurable": evaluator.AttrConfigurable,
	} {
		v, _, err := field(name)
		if err != nil {
			return err
		}
		if evaluator.ToBoolean(v) {
			attrs |= bit
		}
	}
	get, hasGet, err := field("get")
	if err != nil {
		return err
	}
	set, hasSet, err := field("set")
	if err != nil {
		return err
	}
	if hasGet || hasSet {
		if (hasGet && !get.IsUndefined() && get.Function() == nil) || (hasSet && !set.IsUndefined() && set.Function() == nil) {
			return inv.Realm().NewError(evaluator.ErrType, "Getter or setter must be a function")
		}
		obj.DefineAccessor(key, get.Function(), set.Function(), attrs&^evaluator.AttrWritable)
		return nil
	}
	v, _, err := field("value")
	if err != nil {
		return err
	}
	obj.DefineOwn(key, v, attrs)
	return nil
}

func objectPrototypeMethods() map[string]method {
	return map[string]method{
		"hasOwnProperty": {1, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			_, obj, err := thisObject(inv, "Object.prototype.hasOwnProperty")
			if err != nil {
				return evaluator.Undefined, err
			}
			key, err := evaluator.ToPropertyKey(inv.Context, inv.Arg(0))
			if err != nil {
				return evaluator.Undefined, err
			}
			return evaluator.Bool(obj.HasOwnProperty(key)), nil
		}},
		"propertyIsEnumerable": {1, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			_, obj, err := thisObject(inv, "Object.prototype.propertyIsEnumerable")
			if err != nil {
				return evaluator.Undefined, err
			}
			key, err := evaluator.ToPropertyKey(inv.Context, inv.Arg(0))
			if err != nil {
				return evaluator.Undefined, err
			}
			p, ok := obj.GetOwnProperty(key)
			return evaluator.Bool(ok && p.Attrs.Has(evaluator.AttrEnumerable)), nil
		}},
		"isPrototypeOf": {1, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			v := inv.Arg(0).Object()
			if v == nil {
				return evaluator.False, nil
			}
			_, obj, err := thisObject(inv, "Object.prototype.isPrototypeOf")
			if err != nil {
				return evaluator.Undefined, err
			}
			for p := v.Prototype(); p != nil; p = p.Prototype() {
				if p == obj {
					return evaluator.True, nil
				}
			}
			return evaluator.False, nil
		}},
		"toLocaleString": {0, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			this, obj, err := thisObject(inv, "Object.prototype.toLocaleString")
			if err != nil {
				return evaluator.Undefined, err
			}
			m, err := obj.Get(inv.Context, this, config.ToStringMethodName)
			if err != nil {
				return evaluator.Undefined, err
			}
			fn := m.Function()
			if fn == nil {
				return evaluator.Undefined, inv.Realm().NewError(evaluator.ErrType, "toString is not a function")
			}
			return fn.Call(inv.Context, inv.This)
		}},
	}
}
