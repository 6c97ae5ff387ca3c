package reactive

import (
	"reflect"
	"sort"
)

// Object is a reactive proxy over a map[string]any.
type Object struct {
	cache  *Cache
	raw    map[string]any
	notify Notifier
	id     uint64
}

// ID returns the proxy's identity tag.
func (o *Object) ID() uint64 { return o.id }

// Raw returns the underlying map.
func (o *Object) Raw() map[string]any { return o.raw }

// Notifier returns the notifier the proxy reports to.
func (o *Object) Notifier() Notifier { return o.notify }

// Len returns the number of keys.
func (o *Object) Len() int { return len(o.raw) }

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.raw[key]
	return ok
}

// Keys returns the keys in sorted order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, len(o.raw))
	for k := range o.raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value stored under key, wrapping nested containers.
func (o *Object) Get(key string) any {
	v, _ := o.Lookup(key)
	return v
}

// Lookup is Get with a presence flag.
func (o *Object) Lookup(key string) (any, bool) {
	v, ok := o.raw[key]
	if !ok {
		return nil, false
	}
	switch x := v.(type) {
	case map[string]any:
		return o.cache.object(x, o.notify), true
	case []any:
		return o.cache.array(x, func(next []any) { o.Set(key, next) }, o.notify), true
	}
	return v, true
}

// Set writes value under key. The notifier runs exactly once, before the
// write, when the new value differs from the old one by identity.
func (o *Object) Set(key string, value any) {
	value = Unwrap(value)
	old, ok := o.raw[key]
	if ok && Same(old, value) {
		return
	}
	if o.notify != nil {
		o.notify()
	}
	o.raw[key] = value
}

// Delete removes key. Deletions always notify.
func (o *Object) Delete(key string) {
	if o.notify != nil {
		o.notify()
	}
	delete(o.raw, key)
}

// Unwrap returns the underlying container of a proxy, or v unchanged.
func Unwrap(v any) any {
	switch x := v.(type) {
	case *Object:
		return x.raw
	case *Array:
		return x.items
	}
	return v
}

// Same reports whether a and b are the same value: identical references for
// maps, slices, functions and pointers, == for comparable scalars.
func Same(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Type() != rb.Type() {
		return false
	}
	switch ra.Kind() {
	case reflect.Map, reflect.Func, reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return ra.Pointer() == rb.Pointer()
	case reflect.Slice:
		return ra.Pointer() == rb.Pointer() && ra.Len() == rb.Len()
	}
	if ra.Comparable() {
		return ra.Equal(rb)
	}
	return false
}

// Clone deep-copies maps and slices so instances never share containers.
// Other values, including functions, are copied by reference.
func Clone(v any) any {
	switch x := Unwrap(v).(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = Clone(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Clone(e)
		}
		return out
	default:
		return x
	}
}
