package builtins

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/rmja/niljs/internal/config"
	"github.com/rmja/niljs/internal/evaluator"
)

func installArray(r *evaluator.Realm) {
	ctor := defineConstructor(r, config.ArrayTypeName, 1, r.ArrayPrototype, arrayConstructor)
	r.DefineMethod(&ctor.Object, "isArray", 1, func(inv *evaluator.Invocation) (evaluator.Value, error) {
		obj := inv.Arg(0).Object()
		return evaluator.Bool(obj != nil && obj.IsArray()), nil
	})
	defineMethods(r, r.ArrayPrototype, arrayMethods())
}

func arrayConstructor(inv *evaluator.Invocation) (evaluator.Value, error) {
	r := inv.Realm()
	if inv.Args.Len() == 1 && inv.Arg(0).Kind() == evaluator.KindNumber {
		n := inv.Arg(0).Number()
		if n < 0 || n != math.Trunc(n) || n > math.MaxUint32 {
			return evaluator.Undefined, r.NewError(evaluator.ErrRange, "Invalid array length")
		}
		arr := r.NewArray()
		arr.DefineOwn(config.LengthPropName, evaluator.Number(n), 0)
		return evaluator.ObjectValue(arr), nil
	}
	return evaluator.ObjectValue(r.NewArray(inv.Args.Values()...)), nil
}

// arrayLike gives index access to any object with a length, so the array
// methods work generically on arguments objects and plain objects.
type arrayLike struct {
	ctx    *evaluator.Context
	this   evaluator.Value
	obj    *evaluator.Object
	length uint32
}

func toArrayLike(inv *evaluator.Invocation, method string) (*arrayLike, error) {
	this, obj, err := thisObject(inv, "Array.prototype."+method)
	if err != nil {
		return nil, err
	}
	n, err := obj.Length(inv.Context)
	if err != nil {
		return nil, err
	}
	return &arrayLike{ctx: inv.Context, this: this, obj: obj, length: n}, nil
}

func indexKey(i uint32) string { return strconv.FormatUint(uint64(i), 10) }

func (a *arrayLike) has(i uint32) bool { return a.obj.HasProperty(indexKey(i)) }

func (a *arrayLike) get(i uint32) (evaluator.Value, error) {
	return a.obj.Get(a.ctx, a.this, indexKey(i))
}

func (a *arrayLike) put(i uint32, v evaluator.Value) error {
	return a.obj.Put(a.ctx, a.this, indexKey(i), v)
}

func (a *arrayLike) remove(i uint32) { a.obj.Delete(indexKey(i)) }

func (a *arrayLike) setLength(n uint32) error {
	a.length = n
	return a.obj.Put(a.ctx, a.this, config.LengthPropName, evaluator.Number(float64(n)))
}

// values reads every index below length; holes read as undefined.
func (a *arrayLike) values() ([]evaluator.Value, error) {
	out := make([]evaluator.Value, 0, a.length)
	for i := uint32(0); i < a.length; i++ {
		v, err := a.get(i)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// iterate calls fn(value, index, object) for each present index until
// stop reports true.
func (a *arrayLike) iterate(inv *evaluator.Invocation, stop func(result, value evaluator.Value, i uint32) bool) error {
	fn, err := callable(inv, 0)
	if err != nil {
		return err
	}
	thisArg := inv.Arg(1)
	for i := uint32(0); i < a.length; i++ {
		if !a.has(i) {
			continue
		}
		v, err := a.get(i)
		if err != nil {
			return err
		}
		res, err := fn.Call(inv.Context, thisArg, v, evaluator.Number(float64(i)), a.this)
		if err != nil {
			return err
		}
		if stop(res, v, i) {
			return nil
		}
	}
	return nil
}

func (a *arrayLike) join(sep string) (string, error) {
	parts := make([]string, a.length)
	for i := uint32(0); i < a.length; i++ {
		v, err := a.get(i)
		if err != nil {
			return "", err
		}
		if v.IsNullish() || v.IsMissing() {
			continue
		}
		s, err := evaluator.ToString(a.ctx, v)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return strings.Join(parts, sep), nil
}

func arrayMethods() map[string]method {
	return map[string]method{
		"push": {1, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			a, err := toArrayLike(inv, "push")
			if err != nil {
				return evaluator.Undefined, err
			}
			n := a.length
			for _, v := range inv.Args.Values() {
				if err := a.put(n, v); err != nil {
					return evaluator.Undefined, err
				}
				n++
			}
			return evaluator.Number(float64(n)), a.setLength(n)
		}},
		"pop": {0, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			a, err := toArrayLike(inv, "pop")
			if err != nil {
				return evaluator.Undefined, err
			}
			if a.length == 0 {
				return evaluator.Undefined, a.setLength(0)
			}
			last := a.length - 1
			v, err := a.get(last)
			if err != nil {
				return evaluator.Undefined, err
			}
			a.remove(last)
			return v, a.setLength(last)
		}},
		"shift": {0, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			a, err := toArrayLike(inv, "shift")
			if err != nil {
				return evaluator.Undefined, err
			}
			if a.length == 0 {
				return evaluator.Undefined, a.setLength(0)
			}
			values, err := a.values()
			if err != nil {
				return evaluator.Undefined, err
			}
			for i, v := range values[1:] {
				if err := a.put(uint32(i), v); err != nil {
					return evaluator.Undefined, err
				}
			}
			a.remove(a.length - 1)
			return values[0], a.setLength(a.length - 1)
		}},
		"unshift": {1, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			a, err := toArrayLike(inv, "unshift")
			if err != nil {
				return evaluator.Undefined, err
			}
			values, err := a.values()
			if err != nil {
				return evaluator.Undefined, err
			}
			values = append(slices.Clone(inv.Args.Values()), values...)
			for i, v := range values {
				if err := a.put(uint32(i), v); err != nil {
					return evaluator.Undefined, err
				}
			}
			n := uint32(len(values))
			return evaluator.Number(float64(n)), a.setLength(n)
		}},
		"indexOf": {1, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			a, err := toArrayLike(inv, "indexOf")
			if err != nil {
				return evaluator.Undefined, err
			}
			from, err := argInteger(inv, 1, 0)
			if err != nil {
				return evaluator.Undefined, err
			}
			for i := uint32(relativeIndex(from, float64(a.length))); i < a.length; i++ {
				if !a.has(i) {
					continue
				}
				v, err := a.get(i)
				if err != nil {
					return evaluator.Undefined, err
				}
				if evaluator.StrictEquals(v, inv.Arg(0)) {
					return evaluator.Number(float64(i)), nil
				}
			}
			return evaluator.Number(-1), nil
		}},
		"lastIndexOf": {1, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			a, err := toArrayLike(inv, "lastIndexOf")
			if err != nil {
				return evaluator.Undefined, err
			}
			from, err := argInteger(inv, 1, float64(a.length)-1)
			if err != nil {
				return evaluator.Undefined, err
			}
			if from < 0 {
				from += float64(a.length)
			}
			for i := math.Min(from, float64(a.length)-1); i >= 0; i-- {
				idx := uint32(i)
				if !a.has(idx) {
					continue
				}
				v, err := a.get(idx)
				if err != nil {
					return evaluator.Undefined, err
				}
				if evaluator.StrictEquals(v, inv.Arg(0)) {
					return evaluator.Number(i), nil
				}
			}
			return evaluator.Number(-1), nil
		}},
		"some": {1, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			a, err := toArrayLike(inv, "some")
			if err != nil {
				return evaluator.Undefined, err
			}
			found := false
			err = a.iterate(inv, func(res, _ evaluator.Value, _ uint32) bool {
				found = evaluator.ToBoolean(res)
				return found
			})
			return evaluator.Bool(found), err
		}},
		"every": {1, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			a, err := toArrayLike(inv, "every")
			if err != nil {
				return evaluator.Undefined, err
			}
			all := true
			err = a.iterate(inv, func(res, _ evaluator.Value, _ uint32) bool {
				all = evaluator.ToBoolean(res)
				return !all
			})
			return evaluator.Bool(all), err
		}},
		"forEach": {1, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			a, err := toArrayLike(inv, "forEach")
			if err != nil {
				return evaluator.Undefined, err
			}
			return evaluator.Undefined, a.iterate(inv, func(evaluator.Value, evaluator.Value, uint32) bool { return false })
		}},
		"map": {1, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			a, err := toArrayLike(inv, "map")
			if err != nil {
				return evaluator.Undefined, err
			}
			out := inv.Realm().NewArray()
			out.DefineOwn(config.LengthPropName, evaluator.Number(float64(a.length)), 0)
			err = a.iterate(inv, func(res, _ evaluator.Value, i uint32) bool {
				out.DefineOwn(indexKey(i), res, evaluator.AttrDefault)
				return false
			})
			return evaluator.ObjectValue(out), err
		}},
		"filter": {1, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			a, err := toArrayLike(inv, "filter")
			if err != nil {
				return evaluator.Undefined, err
			}
			var kept []evaluator.Value
			err = a.iterate(inv, func(res, v evaluator.Value, _ uint32) bool {
				if evaluator.ToBoolean(res) {
					kept = append(kept, v)
				}
				return false
			})
			return evaluator.ObjectValue(inv.Realm().NewArray(kept...)), err
		}},
		"reduce": {1, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			a, err := toArrayLike(inv, "reduce")
			if err != nil {
				return evaluator.Undefined, err
			}
			fn, err := callable(inv, 0)
			if err != nil {
				return evaluator.Undefined, err
			}
			i := uint32(0)
			acc := inv.Arg(1)
			if inv.Args.Len() < 2 {
				for i < a.length && !a.has(i) {
					i++
				}
				if i == a.length {
					return evaluator.Undefined, inv.Realm().NewError(evaluator.ErrType, "Reduce of empty array with no initial value")
				}
				if acc, err = a.get(i); err != nil {
					return evaluator.Undefined, err
				}
				i++
			}
			for ; i < a.length; i++ {
				if !a.has(i) {
					continue
				}
				v, err := a.get(i)
				if err != nil {
					return evaluator.Undefined, err
				}
				acc, err = fn.Call(inv.Context, evaluator.Undefined, acc, v, evaluator.Number(float64(i)), a.this)
				if err != nil {
					return evaluator.Undefined, err
				}
			}
			return acc, nil
		}},
		"join": {1, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			a, err := toArrayLike(inv, "join")
			if err != nil {
				return evaluator.Undefined, err
			}
			sep := ","
			if !inv.Arg(0).IsUndefined() {
				if sep, err = evaluator.ToString(inv.Context, inv.Arg(0)); err != nil {
					return evaluator.Undefined, err
				}
			}
			s, err := a.join(sep)
			return evaluator.String(s), err
		}},
		config.ToStringMethodName: {0, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			a, err := toArrayLike(inv, "toString")
			if err != nil {
				return evaluator.Undefined, err
			}
			s, err := a.join(",")
			return evaluator.String(s), err
		}},
		"slice": {2, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			a, err := toArrayLike(inv, "slice")
			if err != nil {
				return evaluator.Undefined, err
			}
			n := float64(a.length)
			start, err := argInteger(inv, 0, 0)
			if err != nil {
				return evaluator.Undefined, err
			}
			end, err := argInteger(inv, 1, n)
			if err != nil {
				return evaluator.Undefined, err
			}
			var out []evaluator.Value
			for i := relativeIndex(start, n); i < relativeIndex(end, n); i++ {
				v, err := a.get(uint32(i))
				if err != nil {
					return evaluator.Undefined, err
				}
				out = append(out, v)
			}
			return evaluator.ObjectValue(inv.Realm().NewArray(out...)), nil
		}},
		"splice": {2, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			a, err := toArrayLike(inv, "splice")
			if err != nil {
				return evaluator.Undefined, err
			}
			values, err := a.values()
			if err != nil {
				return evaluator.Undefined, err
			}
			n := float64(a.length)
			start, err := argInteger(inv, 0, 0)
			if err != nil {
				return evaluator.Undefined, err
			}
			from := relativeIndex(start, n)
			count, err := argInteger(inv, 1, n-float64(from))
			if err != nil {
				return evaluator.Undefined, err
			}
			count = math.Max(0, math.Min(count, n-float64(from)))
			to := from + int(count)
			removed := slices.Clone(values[from:to])
			var inserted []evaluator.Value
			if inv.Args.Len() > 2 {
				inserted = inv.Args.Values()[2:]
			}
			values = slices.Concat(values[:from], inserted, values[to:])
			for i, v := range values {
				if err := a.put(uint32(i), v); err != nil {
					return evaluator.Undefined, err
				}
			}
			for i := uint32(len(values)); i < a.length; i++ {
				a.remove(i)
			}
			if err := a.setLength(uint32(len(values))); err != nil {
				return evaluator.Undefined, err
			}
			return evaluator.ObjectValue(inv.Realm().NewArray(removed...)), nil
		}},
		"concat": {1, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			a, err := toArrayLike(inv, "concat")
			if err != nil {
				return evaluator.Undefined, err
			}
			out, err := a.values()
			if err != nil {
				return evaluator.Undefined, err
			}
			for _, arg := range inv.Args.Values() {
				obj := arg.Object()
				if obj == nil || !obj.IsArray() {
					out = append(out, arg)
					continue
				}
				n, _ := obj.Length(inv.Context)
				other := &arrayLike{ctx: inv.Context, this: arg, obj: obj, length: n}
				vs, err := other.values()
				if err != nil {
					return evaluator.Undefined, err
				}
				out = append(out, vs...)
			}
			return evaluator.ObjectValue(inv.Realm().NewArray(out...)), nil
		}},
		"reverse": {0, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			a, err := toArrayLike(inv, "reverse")
			if err != nil {
				return evaluator.Undefined, err
			}
			values, err := a.values()
			if err != nil {
				return evaluator.Undefined, err
			}
			slices.Reverse(values)
			for i, v := range values {
				if err := a.put(uint32(i), v); err != nil {
					return evaluator.Undefined, err
				}
			}
			return a.this, nil
		}},
		"sort": {1, func(inv *evaluator.Invocation) (evaluator.Value, error) {
			a, err := toArrayLike(inv, "sort")
			if err != nil {
				return evaluator.Undefined, err
			}
			values, err := a.values()
			if err != nil {
				return evaluator.Undefined, err
			}
			compare := inv.Arg(0).Function()
			var sortErr error
			slices.SortStableFunc(values, func(x, y evaluator.Value) int {
				if sortErr != nil {
					return 0
				}
				var c int
				c, sortErr = compareElements(inv.Context, compare, x, y)
				return c
			})
			if sortErr != nil {
				return evaluator.Undefined, sortErr
			}
			for i, v := range values {
				if err := a.put(uint32(i), v); err != nil {
					return evaluator.Undefined, err
				}
			}
			return a.this, nil
		}},
	}
}

// compareElements orders undefined last, then by the comparator or by
// string value.
func compareElements(ctx *evaluator.Context, compare *evaluator.Function, x, y evaluator.Value) (int, error) {
	switch {
	case x.IsUndefined() && y.IsUndefined():
		return 0, nil
	case x.IsUndefined():
		return 1, nil
	case y.IsUndefined():
		return -1, nil
	}
	if compare != nil {
		res, err := compare.Call(ctx, evaluator.Undefined, x, y)
		if err != nil {
			return 0, err
		}
		n, err := evaluator.ToNumber(ctx, res)
		switch {
		case err != nil:
			return 0, err
		case n < 0:
			return -1, nil
		case n > 0:
			return 1, nil
		}
		return 0, nil
	}
	xs, err := evaluator.ToString(ctx, x)
	if err != nil {
		return 0, err
	}
	ys, err := evaluator.ToString(ctx, y)
	if err != nil {
		return 0, err
	}
	return strings.Compare(xs, ys), nil
}
