package evaluator

import (
	"errors"
	"fmt"

	"github.com/rmja/niljs/internal/config"
)

// ErrorKind classifies language-level errors.
type ErrorKind uint8

const (
	ErrGeneric ErrorKind = iota
	ErrType
	ErrReference
	ErrRange
	ErrSyntax

	errorKindCount
)

func (k ErrorKind) String() string {
	switch k {
	case ErrType:
		return "TypeError"
	case ErrReference:
		return "ReferenceError"
	case ErrRange:
		return "RangeError"
	case ErrSyntax:
		return "SyntaxError"
	}
	return "Error"
}

func errorKindByName(name string) (ErrorKind, bool) {
	for k := ErrGeneric; k < errorKindCount; k++ {
		if k.String() == name {
			return k, true
		}
	}
	return ErrGeneric, false
}

// Exception is a thrown language value travelling as a Go error.
type Exception struct {
	Value Value
}

func (e *Exception) Error() string {
	obj := e.Value.Object()
	if obj == nil {
		if e.Value.kind == KindString {
			return e.Value.s
		}
		return "Uncaught " + e.Value.Inspect()
	}
	name, _ := obj.lookupData(config.NamePropName)
	msg, _ := obj.lookupData(config.MessagePropName)
	switch {
	case name.kind == KindString && msg.kind == KindString && msg.s != "":
		return name.s + ": " + msg.s
	case name.kind == KindString:
		return name.s
	}
	return "Uncaught " + e.Value.Inspect()
}

// Name returns the name property of a thrown object, or "" for thrown
// primitives.
func (e *Exception) Name() string {
	obj := e.Value.Object()
	if obj == nil {
		return ""
	}
	name, _ := obj.lookupData(config.NamePropName)
	if name.kind != KindString {
		return ""
	}
	return name.s
}

// Kind reports the error kind from the thrown object's name. Thrown
// primitives and unknown names are ErrGeneric.
func (e *Exception) Kind() ErrorKind {
	k, _ := errorKindByName(e.Name())
	return k
}

// Message returns the message property of a thrown error object.
func (e *Exception) Message() string {
	if obj := e.Value.Object(); obj != nil {
		if msg, ok := obj.lookupData(config.MessagePropName); ok && msg.kind == KindString {
			return msg.s
		}
	}
	return e.Error()
}

// KindOf extracts the language error kind of err. The second result is
// false when err is not a language exception.
func KindOf(err error) (ErrorKind, bool) {
	var exc *Exception
	if errors.As(err, &exc) {
		return exc.Kind(), true
	}
	return ErrGeneric, false
}

// NewError creates an error object of the given kind and returns it as an
// exception ready to be returned.
func (r *Realm) NewError(kind ErrorKind, format string, args ...any) *Exception {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &Exception{Value: ObjectValue(r.NewErrorObject(kind, msg))}
}

// NewErrorObject allocates an error instance without throwing it.
func (r *Realm) NewErrorObject(kind ErrorKind, msg string) *Object {
	obj := NewObject(r.ErrorPrototypes[kind])
	obj.class = config.ErrorTypeName
	if msg != "" {
		obj.DefineOwn(config.MessagePropName, String(msg), AttrHidden)
	}
	return obj
}

func (c *Context) typeError(format string, args ...any) error {
	return c.realm.NewError(ErrType, format, args...)
}

func (c *Context) referenceError(format string, args ...any) error {
	return c.realm.NewError(ErrReference, format, args...)
}

func (c *Context) rangeError(format string, args ...any) error {
	return c.realm.NewError(ErrRange, format, args...)
}

func (c *Context) syntaxError(format string, args ...any) error {
	return c.realm.NewError(ErrSyntax, format, args...)
}
