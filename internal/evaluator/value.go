package evaluator

import (
	"strconv"
)

// Kind is the runtime tag of a Value.
type Kind uint8

const (
	KindUndefined Kind = iota
	KindNull
	KindBoolean
	KindNumber
	KindString
	KindObject
	KindFunction
)

func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindFunction:
		return "function"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Attributes are the property attribute bits carried alongside a value.
type Attributes uint8

const (
	AttrEnumerable Attributes = 1 << iota
	AttrWritable
	AttrConfigurable
	// AttrEval marks the eval function so call sites can recognise it.
	AttrEval

	AttrDefault = AttrEnumerable | AttrWritable | AttrConfigurable
	// AttrHidden is used for builtin methods: writable and configurable but
	// skipped by enumeration.
	AttrHidden = AttrWritable | AttrConfigurable
)

func (a Attributes) Has(bits Attributes) bool { return a&bits == bits }

// Value is a tagged runtime value. Values are immutable and copied freely;
// the payload fields are only meaningful for the matching kind.
type Value struct {
	kind  Kind
	attrs Attributes
	b     bool
	n     float64
	s     string
	obj   *Object
	fn    *Function
}

var (
	Undefined = Value{kind: KindUndefined}
	Null      = Value{kind: KindNull}
	True      = Value{kind: KindBoolean, b: true}
	False     = Value{kind: KindBoolean}
	// MissingInstance is the object-tagged value without an object behind it.
	// It stands for "no instance bound yet" and is neither undefined nor null.
	MissingInstance = Value{kind: KindObject}
)

func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

func Int(i int) Value { return Value{kind: KindNumber, n: float64(i)} }

func String(s string) Value { return Value{kind: KindString, s: s} }

// ObjectValue wraps an object. Function objects are returned with the
// function tag.
func ObjectValue(o *Object) Value {
	if o == nil {
		return MissingInstance
	}
	if o.callable != nil {
		return Value{kind: KindFunction, fn: o.callable}
	}
	return Value{kind: KindObject, obj: o}
}

func FunctionValue(f *Function) Value {
	if f == nil {
		return MissingInstance
	}
	return Value{kind: KindFunction, fn: f}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) Attributes() Attributes { return v.attrs }

// WithAttributes returns a copy of v carrying the given attribute bits.
func (v Value) WithAttributes(a Attributes) Value {
	v.attrs = a
	return v
}

func (v Value) IsUndefined() bool { return v.kind == KindUndefined }
func (v Value) IsNull() bool      { return v.kind == KindNull }

// IsNullish reports undefined, null and the missing instance.
func (v Value) IsNullish() bool {
	return v.kind == KindUndefined || v.kind == KindNull || v.IsMissing()
}

func (v Value) IsMissing() bool { return v.kind == KindObject && v.obj == nil }

// IsObject reports whether v carries an object payload (plain or callable).
func (v Value) IsObject() bool {
	return (v.kind == KindObject && v.obj != nil) || v.kind == KindFunction
}

func (v Value) IsPrimitive() bool { return v.kind < KindObject }

func (v Value) IsCallable() bool { return v.kind == KindFunction && v.fn != nil }

func (v Value) Bool() bool { return v.b }

func (v Value) Number() float64 { return v.n }

func (v Value) Str() string { return v.s }

// Object returns the object payload; for functions it is the function's own
// property bag.
func (v Value) Object() *Object {
	switch v.kind {
	case KindObject:
		return v.obj
	case KindFunction:
		if v.fn != nil {
			return &v.fn.Object
		}
	}
	return nil
}

func (v Value) Function() *Function {
	if v.kind == KindFunction {
		return v.fn
	}
	return nil
}

// TypeOf is the result of the typeof operator.
func (v Value) TypeOf() string {
	if v.kind == KindNull || v.IsMissing() {
		return "object"
	}
	return v.kind.String()
}

// Inspect renders a value for diagnostics without running user code.
func (v Value) Inspect() string {
	switch v.kind {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBoolean:
		if v.b {
			return "true"
		}
		return "false"
	case KindNumber:
		return NumberToString(v.n)
	case KindString:
		return strconv.Quote(v.s)
	case KindFunction:
		return v.fn.Inspect()
	case KindObject:
		if v.obj == nil {
			return "<missing>"
		}
		return v.obj.Inspect()
	}
	return "?"
}

func (v Value) String() string { return v.Inspect() }
