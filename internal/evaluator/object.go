package evaluator

import (
	"strconv"
	"sync"
	"unicode/utf16"

	"github.com/rmja/niljs/internal/config"
)

// Property is a named slot of an object. Accessor properties have a getter
// and/or setter and ignore Value.
type Property struct {
	Value  Value
	Attrs  Attributes
	Getter *Function
	Setter *Function
}

func (p *Property) IsAccessor() bool { return p.Getter != nil || p.Setter != nil }

// Object is a property bag with a prototype link. Functions embed an Object
// and set callable to themselves.
type Object struct {
	mu        sync.RWMutex
	proto     *Object
	class     string
	props     map[string]*Property
	keys      []string
	array     bool
	length    uint32
	primitive Value
	callable  *Function
}

func NewObject(proto *Object) *Object {
	o := &Object{}
	o.init(proto, config.ObjectTypeName)
	return o
}

func (o *Object) init(proto *Object, class string) {
	o.proto = proto
	o.class = class
	o.props = make(map[string]*Property)
}

// NewArrayObject creates an array holding values at indexes 0..len-1.
func NewArrayObject(proto *Object, values ...Value) *Object {
	o := &Object{}
	o.init(proto, config.ArrayTypeName)
	o.array = true
	for i, v := range values {
		key := strconv.Itoa(i)
		o.props[key] = &Property{Value: v, Attrs: AttrDefault}
		o.keys = append(o.keys, key)
	}
	o.length = uint32(len(values))
	return o
}

func (o *Object) Class() string { return o.class }

func (o *Object) SetClass(class string) { o.class = class }

func (o *Object) IsArray() bool { return o.array }

func (o *Object) Prototype() *Object {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.proto
}

func (o *Object) SetPrototype(p *Object) {
	o.mu.Lock()
	o.proto = p
	o.mu.Unlock()
}

// PrimitiveValue is the wrapped primitive of Number, String and Boolean
// objects. It is Undefined for other objects.
func (o *Object) PrimitiveValue() Value { return o.primitive }

func (o *Object) SetPrimitiveValue(v Value) { o.primitive = v }

// Value returns o as a language value, keeping the function tag for
// function objects.
func (o *Object) Value() Value { return ObjectValue(o) }

// arrayIndex parses a canonical array index.
func arrayIndex(key string) (uint32, bool) {
	if key == "" || len(key) > 10 || (len(key) > 1 && key[0] == '0') {
		return 0, false
	}
	n, err := strconv.ParseUint(key, 10, 32)
	if err != nil || n == 1<<32-1 {
		return 0, false
	}
	return uint32(n), true
}

// getOwn returns a copy of the own property named key, including the
// virtual length and index properties of arrays and string wrappers.
func (o *Object) getOwn(key string) (Property, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if p, ok := o.props[key]; ok {
		return *p, true
	}
	if key == config.LengthPropName {
		if o.array {
			return Property{Value: Number(float64(o.length)), Attrs: AttrWritable}, true
		}
		if o.primitive.kind == KindString {
			return Property{Value: Int(len(utf16.Encode([]rune(o.primitive.s))))}, true
		}
	}
	if o.primitive.kind == KindString {
		if idx, ok := arrayIndex(key); ok {
			units := utf16.Encode([]rune(o.primitive.s))
			if int(idx) < len(units) {
				return Property{Value: String(string(utf16.Decode(units[idx : idx+1]))), Attrs: AttrEnumerable}, true
			}
		}
	}
	return Property{}, false
}

// findProperty walks the prototype chain.
func (o *Object) findProperty(key string) (Property, bool) {
	for cur := o; cur != nil; cur = cur.Prototype() {
		if p, ok := cur.getOwn(key); ok {
			return p, true
		}
	}
	return Property{}, false
}

// lookupData reads a data property along the chain without running user
// code.
func (o *Object) lookupData(key string) (Value, bool) {
	p, ok := o.findProperty(key)
	if !ok || p.IsAccessor() {
		return Undefined, false
	}
	return p.Value, true
}

// GetOwnProperty returns the own property named key.
func (o *Object) GetOwnProperty(key string) (Property, bool) { return o.getOwn(key) }

func (o *Object) HasOwnProperty(key string) bool {
	_, ok := o.getOwn(key)
	return ok
}

func (o *Object) HasProperty(key string) bool {
	_, ok := o.findProperty(key)
	return ok
}

// Get reads key, running getters with this as receiver.
func (o *Object) Get(ctx *Context, this Value, key string) (Value, error) {
	if key == config.ProtoPropName {
		return ObjectValue(o.Prototype()).orNull(), nil
	}
	p, ok := o.findProperty(key)
	if !ok {
		return Undefined, nil
	}
	if p.IsAccessor() {
		if p.Getter == nil {
			return Undefined, nil
		}
		return p.Getter.Call(ctx, this)
	}
	return p.Value, nil
}

func (v Value) orNull() Value {
	if v.IsMissing() {
		return Null
	}
	return v
}

// Put assigns key, running setters found on the chain. Writes to
// read-only properties are ignored.
func (o *Object) Put(ctx *Context, this Value, key string, v Value) error {
	if key == config.ProtoPropName {
		switch {
		case v.IsObject():
			o.SetPrototype(v.Object())
		case v.IsNull():
			o.SetPrototype(nil)
		}
		return nil
	}
	if p, ok := o.findProperty(key); ok {
		if p.IsAccessor() {
			if p.Setter == nil {
				return nil
			}
			_, err := p.Setter.Call(ctx, this, v)
			return err
		}
		if !p.Attrs.Has(AttrWritable) {
			if ctx != nil && ctx.strict {
				return ctx.typeError("Cannot assign to read only property '%s'", key)
			}
			return nil
		}
	}
	o.set(key, v)
	return nil
}

// set stores an own data property, keeping the attributes of an existing one.
func (o *Object) set(key string, v Value) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.array && key == config.LengthPropName {
		o.truncate(v)
		return
	}
	if p, ok := o.props[key]; ok && !p.IsAccessor() {
		p.Value = v
		return
	}
	o.props[key] = &Property{Value: v, Attrs: AttrDefault}
	o.keys = append(o.keys, key)
	o.grow(key)
}

func (o *Object) grow(key string) {
	if !o.array {
		return
	}
	if idx, ok := arrayIndex(key); ok && idx >= o.length {
		o.length = idx + 1
	}
}

// truncate sets an array length, dropping indexes past it. Caller holds
// the lock.
func (o *Object) truncate(v Value) {
	n := v.n
	if v.kind != KindNumber || n < 0 || n != float64(uint32(n)) {
		return
	}
	newLen := uint32(n)
	if newLen < o.length {
		kept := o.keys[:0]
		for _, k := range o.keys {
			if idx, ok := arrayIndex(k); ok && idx >= newLen {
				delete(o.props, k)
				continue
			}
			kept = append(kept, k)
		}
		o.keys = kept
	}
	o.length = newLen
}

// DefineOwn creates or replaces an own data property with explicit attributes.
func (o *Object) DefineOwn(key string, v Value, attrs Attributes) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.array && key == config.LengthPropName {
		o.truncate(v)
		return
	}
	if p, ok := o.props[key]; ok {
		*p = Property{Value: v, Attrs: attrs}
		return
	}
	o.props[key] = &Property{Value: v, Attrs: attrs}
	o.keys = append(o.keys, key)
	o.grow(key)
}

// DefineAccessor installs a getter and/or setter. A nil function keeps the
// existing half of an accessor pair.
func (o *Object) DefineAccessor(key string, getter, setter *Function, attrs Attributes) {
	o.mu.Lock()
	defer o.mu.Unlock()
	p, ok := o.props[key]
	if !ok {
		p = &Property{}
		o.props[key] = p
		o.keys = append(o.keys, key)
	} else if !p.IsAccessor() {
		*p = Property{}
	}
	if getter != nil {
		p.Getter = getter
	}
	if setter != nil {
		p.Setter = setter
	}
	p.Attrs = attrs
}

// Delete removes an own configurable property and reports success.
func (o *Object) Delete(key string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	p, ok := o.props[key]
	if !ok {
		return !(o.array && key == config.LengthPropName)
	}
	if !p.Attrs.Has(AttrConfigurable) {
		return false
	}
	delete(o.props, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return true
}

// Length returns the array length, or the length property converted to
// uint32 for array-likes.
func (o *Object) Length(ctx *Context) (uint32, error) {
	if o.array {
		o.mu.RLock()
		defer o.mu.RUnlock()
		return o.length, nil
	}
	v, err := o.Get(ctx, ObjectValue(o), config.LengthPropName)
	if err != nil {
		return 0, err
	}
	return ToUint32(ctx, v)
}

func (o *Object) Inspect() string {
	if o.array {
		return "[Array(" + strconv.Itoa(int(o.length)) + ")]"
	}
	if o.primitive.kind != KindUndefined {
		return "[" + o.class + " " + o.primitive.Inspect() + "]"
	}
	return "[object " + o.class + "]"
}
