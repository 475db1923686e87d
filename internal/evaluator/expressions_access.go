package evaluator

import (
	"strconv"
	"unicode/utf16"

	"github.com/rmja/niljs/internal/config"
)

// GetMember reads a property. Dot access has a constant string Property
// and Computed unset. Evaluating it leaves the base value in the context's
// object-source slot for a following call.
type GetMember struct {
	Object   Expression
	Property Expression
	Computed bool
}

func (n *GetMember) Accept(v Visitor)          { v.VisitGetMember(n) }
func (n *GetMember) expressionNode()           {}
func (n *GetMember) ResultType() PredictedType { return PredictUnknown }

func (n *GetMember) String() string {
	if c, ok := n.Property.(*Constant); ok && !n.Computed && c.Value.kind == KindString {
		return n.Object.String() + "." + c.Value.s
	}
	return n.Object.String() + "[" + n.Property.String() + "]"
}

// reference evaluates the base and the key, in that order.
func (n *GetMember) reference(ctx *Context) (Value, string, error) {
	base, err := n.Object.Evaluate(ctx)
	if err != nil {
		return Undefined, "", err
	}
	if c, ok := n.Property.(*Constant); ok && c.Value.kind == KindString {
		return base, c.Value.s, nil
	}
	kv, err := n.Property.Evaluate(ctx)
	if err != nil {
		return Undefined, "", err
	}
	key, err := ToPropertyKey(ctx, kv)
	if err != nil {
		return Undefined, "", err
	}
	return base, key, nil
}

func (n *GetMember) Evaluate(ctx *Context) (Value, error) {
	base, key, err := n.reference(ctx)
	if err != nil {
		return Undefined, err
	}
	v, err := GetValue(ctx, base, key)
	if err != nil {
		return Undefined, err
	}
	ctx.objectSource = base
	return v, nil
}

func (n *GetMember) Prepare(p *Preparer) Expression {
	if _, ok := n.Object.(*Super); ok && p.inFunction() {
		n.Object = superBase()
	}
	n.Object = n.Object.Prepare(p)
	n.Property = n.Property.Prepare(p)
	return n
}

func (n *GetMember) Simplify() Expression {
	n.Object = n.Object.Simplify()
	n.Property = n.Property.Simplify()
	if c, ok := n.Property.(*Constant); ok && c.Value.kind != KindString && c.Value.IsPrimitive() {
		key, _ := ToString(nil, c.Value)
		n.Property = &Constant{Value: String(key)}
	}
	return n
}

// GetValue reads key from any value, boxing primitives through their
// prototypes.
func GetValue(ctx *Context, base Value, key string) (Value, error) {
	switch base.kind {
	case KindObject, KindFunction:
		if obj := base.Object(); obj != nil {
			return obj.Get(ctx, base, key)
		}
	case KindString:
		if key == config.LengthPropName {
			return Int(len(utf16.Encode([]rune(base.s)))), nil
		}
		if idx, ok := arrayIndex(key); ok {
			units := utf16.Encode([]rune(base.s))
			if int(idx) < len(units) {
				return String(string(utf16.Decode(units[idx : idx+1]))), nil
			}
			return Undefined, nil
		}
		return ctx.realm.StringPrototype.Get(ctx, base, key)
	case KindNumber:
		return ctx.realm.NumberPrototype.Get(ctx, base, key)
	case KindBoolean:
		return ctx.realm.BooleanPrototype.Get(ctx, base, key)
	}
	return Undefined, ctx.typeError("Cannot read property '%s' of %s", key, base.kindName())
}

// PutValue writes key on any value. Writes to primitives have no effect
// outside strict mode.
func PutValue(ctx *Context, base Value, key string, v Value) error {
	if obj := base.Object(); obj != nil {
		return obj.Put(ctx, base, key, v)
	}
	if base.IsNullish() {
		return ctx.typeError("Cannot set property '%s' of %s", key, base.kindName())
	}
	if ctx.strict {
		return ctx.typeError("Cannot create property '%s' on %s", key, base.kind)
	}
	return nil
}

// IndexKey formats an array index as a property key.
func IndexKey(i int) string { return strconv.Itoa(i) }
