package evaluator

import (
	"iter"
	"slices"
	"strconv"
	"unicode/utf16"
)

// EnumerationMode selects what an enumerator yields alongside each key.
type EnumerationMode uint8

const (
	// EnumerateKeys yields keys with Undefined values.
	EnumerateKeys EnumerationMode = iota
	// EnumerateValues yields keys with their stored data values. Accessors
	// are not invoked and yield Undefined.
	EnumerateValues
)

// OwnKeys lists own property keys: array indexes ascending, then the
// remaining keys in insertion order.
func (o *Object) OwnKeys(hideNonEnumerable bool) []string {
	o.mu.RLock()
	defer o.mu.RUnlock()

	var indexes []uint32
	var named []string
	if o.primitive.kind == KindString {
		n := len(utf16.Encode([]rune(o.primitive.s)))
		for i := 0; i < n; i++ {
			indexes = append(indexes, uint32(i))
		}
	}
	for _, k := range o.keys {
		p := o.props[k]
		if hideNonEnumerable && !p.Attrs.Has(AttrEnumerable) {
			continue
		}
		if idx, ok := arrayIndex(k); ok {
			indexes = append(indexes, idx)
			continue
		}
		named = append(named, k)
	}
	slices.Sort(indexes)
	indexes = slices.Compact(indexes)
	keys := make([]string, 0, len(indexes)+len(named))
	for _, idx := range indexes {
		keys = append(keys, strconv.FormatUint(uint64(idx), 10))
	}
	return append(keys, named...)
}

// GetEnumerator iterates own properties. The key list is snapshotted when
// iteration starts; properties deleted while iterating are skipped.
func (o *Object) GetEnumerator(hideNonEnumerable bool, mode EnumerationMode) iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, k := range o.OwnKeys(hideNonEnumerable) {
			p, ok := o.getOwn(k)
			if !ok {
				continue
			}
			v := Undefined
			if mode == EnumerateValues && !p.IsAccessor() {
				v = p.Value
			}
			if !yield(k, v) {
				return
			}
		}
	}
}

// EnumerateChain iterates the properties of o and then of its prototypes,
// skipping keys already seen (including hidden ones) closer to o.
func EnumerateChain(o *Object, hideNonEnumerable bool, mode EnumerationMode) iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		seen := make(map[string]struct{})
		for cur := o; cur != nil; cur = cur.Prototype() {
			for _, k := range cur.OwnKeys(false) {
				if _, dup := seen[k]; dup {
					continue
				}
				seen[k] = struct{}{}
				p, ok := cur.getOwn(k)
				if !ok || (hideNonEnumerable && !p.Attrs.Has(AttrEnumerable)) {
					continue
				}
				v := Undefined
				if mode == EnumerateValues && !p.IsAccessor() {
					v = p.Value
				}
				if !yield(k, v) {
					return
				}
			}
		}
	}
}
