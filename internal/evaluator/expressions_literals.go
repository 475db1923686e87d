package evaluator

import (
	"strconv"
	"strings"

	"github.com/rmja/niljs/internal/config"
)

// Constant is a literal primitive value.
type Constant struct {
	Value Value
}

func NewConstant(v Value) *Constant { return &Constant{Value: v} }

func (n *Constant) Accept(v Visitor)                     { v.VisitConstant(n) }
func (n *Constant) expressionNode()                      {}
func (n *Constant) Evaluate(ctx *Context) (Value, error) { return n.Value, nil }
func (n *Constant) Prepare(p *Preparer) Expression       { return n }
func (n *Constant) Simplify() Expression                 { return n }
func (n *Constant) ResultType() PredictedType            { return predictionOf(n.Value) }

func (n *Constant) String() string {
	if n.Value.kind == KindString {
		return strconv.Quote(n.Value.s)
	}
	return n.Value.Inspect()
}

// PropertyKind distinguishes data entries from accessors in an object
// literal.
type PropertyKind uint8

const (
	PropertyInit PropertyKind = iota
	PropertyGet
	PropertySet
)

type PropertyDefinition struct {
	Key   string
	Kind  PropertyKind
	Value Expression
}

type ObjectLiteral struct {
	Properties []PropertyDefinition
}

func (n *ObjectLiteral) Accept(v Visitor)          { v.VisitObjectLiteral(n) }
func (n *ObjectLiteral) expressionNode()           {}
func (n *ObjectLiteral) ResultType() PredictedType { return PredictObject }

func (n *ObjectLiteral) Evaluate(ctx *Context) (Value, error) {
	obj := NewObject(ctx.realm.ObjectPrototype)
	for _, prop := range n.Properties {
		v, err := prop.Value.Evaluate(ctx)
		if err != nil {
			return Undefined, err
		}
		switch prop.Kind {
		case PropertyGet:
			obj.DefineAccessor(prop.Key, v.Function(), nil, AttrEnumerable|AttrConfigurable)
		case PropertySet:
			obj.DefineAccessor(prop.Key, nil, v.Function(), AttrEnumerable|AttrConfigurable)
		default:
			if prop.Key == config.ProtoPropName {
				if err := obj.Put(ctx, ObjectValue(obj), prop.Key, v); err != nil {
					return Undefined, err
				}
				continue
			}
			obj.DefineOwn(prop.Key, v, AttrDefault)
		}
	}
	return ObjectValue(obj), nil
}

func (n *ObjectLiteral) Prepare(p *Preparer) Expression {
	for i := range n.Properties {
		n.Properties[i].Value = n.Properties[i].Value.Prepare(p)
		if n.Properties[i].Kind != PropertyInit {
			if _, ok := n.Properties[i].Value.(*FunctionDefinition); !ok {
				p.report(SeverityError, "accessor must be a function", n)
			}
		}
	}
	return n
}

func (n *ObjectLiteral) Simplify() Expression {
	for i := range n.Properties {
		n.Properties[i].Value = n.Properties[i].Value.Simplify()
	}
	return n
}

func (n *ObjectLiteral) String() string {
	parts := make([]string, len(n.Properties))
	for i, p := range n.Properties {
		switch p.Kind {
		case PropertyGet:
			parts[i] = "get " + p.Key + "()"
		case PropertySet:
			parts[i] = "set " + p.Key + "()"
		default:
			parts[i] = p.Key + ": " + p.Value.String()
		}
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// ArrayLiteral elements may be nil for holes.
type ArrayLiteral struct {
	Elements []Expression
}

func (n *ArrayLiteral) Accept(v Visitor)          { v.VisitArrayLiteral(n) }
func (n *ArrayLiteral) expressionNode()           {}
func (n *ArrayLiteral) ResultType() PredictedType { return PredictObject }

func (n *ArrayLiteral) Evaluate(ctx *Context) (Value, error) {
	arr := NewArrayObject(ctx.realm.ArrayPrototype)
	for i, e := range n.Elements {
		if e == nil {
			continue
		}
		v, err := e.Evaluate(ctx)
		if err != nil {
			return Undefined, err
		}
		arr.DefineOwn(strconv.Itoa(i), v, AttrDefault)
	}
	arr.DefineOwn(config.LengthPropName, Int(len(n.Elements)), 0)
	return ObjectValue(arr), nil
}

func (n *ArrayLiteral) Prepare(p *Preparer) Expression {
	prepareExpressions(p, n.Elements)
	return n
}

func (n *ArrayLiteral) Simplify() Expression {
	for i, e := range n.Elements {
		if e != nil {
			n.Elements[i] = e.Simplify()
		}
	}
	return n
}

func (n *ArrayLiteral) String() string {
	parts := make([]string, len(n.Elements))
	for i, e := range n.Elements {
		if e != nil {
			parts[i] = e.String()
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
