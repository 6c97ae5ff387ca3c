package reactive

import (
	"reflect"
	"runtime"
	"sync"
	"sync/atomic"
	"weak"
)

// Notifier is invoked when a wrapped value changes. It must only schedule
// work, never render directly.
type Notifier func()

type sliceKey struct {
	data uintptr
	len  int
}

// Cache maps underlying containers to their proxies.
type Cache struct {
	mu      sync.Mutex
	objects map[uintptr]weak.Pointer[Object]
	arrays  map[sliceKey]weak.Pointer[Array]
	nextID  atomic.Uint64
}

// NewCache creates an empty proxy cache.
func NewCache() *Cache {
	return &Cache{
		objects: make(map[uintptr]weak.Pointer[Object]),
		arrays:  make(map[sliceKey]weak.Pointer[Array]),
	}
}

// Len returns the number of live cache entries. Entries whose proxies were
// collected but not yet cleaned up are not counted.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, wp := range c.objects {
		if wp.Value() != nil {
			n++
		}
	}
	for _, wp := range c.arrays {
		if wp.Value() != nil {
			n++
		}
	}
	return n
}

func (c *Cache) id() uint64 { return c.nextID.Add(1) }

// Wrap returns a proxy for maps and slices and v itself for every other
// value. Proxies are returned unchanged.
func (c *Cache) Wrap(v any, n Notifier) any {
	switch x := v.(type) {
	case *Object, *Array:
		return x
	case map[string]any:
		return c.object(x, n)
	case []any:
		return c.array(x, nil, n)
	}
	return v
}

// WrapObject wraps m, which must not be nil.
func (c *Cache) WrapObject(m map[string]any, n Notifier) *Object {
	return c.object(m, n)
}

func (c *Cache) object(m map[string]any, n Notifier) *Object {
	if m == nil {
		return &Object{cache: c, raw: map[string]any{}, notify: n, id: c.id()}
	}
	key := reflect.ValueOf(m).Pointer()

	c.mu.Lock()
	defer c.mu.Unlock()
	if wp, ok := c.objects[key]; ok {
		if o := wp.Value(); o != nil {
			return o
		}
	}
	o := &Object{cache: c, raw: m, notify: n, id: c.id()}
	c.objects[key] = weak.Make(o)
	runtime.AddCleanup(o, c.evictObject, key)
	return o
}

func (c *Cache) evictObject(key uintptr) {
	c.mu.Lock()
	defer c.mu.Unlock()
	// The key may have been reused by a newer proxy for a new map.
	if wp, ok := c.objects[key]; ok && wp.Value() == nil {
		delete(c.objects, key)
	}
}

func keyOf(s []any) (sliceKey, bool) {
	// Zero-capacity slices share the runtime's zero-size allocation and
	// have no identity.
	if cap(s) == 0 {
		return sliceKey{}, false
	}
	return sliceKey{data: reflect.ValueOf(s).Pointer(), len: len(s)}, true
}

func (c *Cache) array(s []any, writeBack func([]any), n Notifier) *Array {
	key, ok := keyOf(s)
	if !ok {
		return &Array{cache: c, items: s, writeBack: writeBack, notify: n, id: c.id()}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if wp, ok := c.arrays[key]; ok {
		if a := wp.Value(); a != nil {
			return a
		}
	}
	a := &Array{cache: c, items: s, writeBack: writeBack, notify: n, id: c.id()}
	c.arrays[key] = weak.Make(a)
	runtime.AddCleanup(a, c.evictArray, key)
	return a
}

func (c *Cache) evictArray(key sliceKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if wp, ok := c.arrays[key]; ok && wp.Value() == nil {
		delete(c.arrays, key)
	}
}

// rekey moves a live array proxy to the identity of its new backing slice.
func (c *Cache) rekey(a *Array, old, next []any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if k, ok := keyOf(old); ok {
		if wp, ok := c.arrays[k]; ok && wp.Value() == a {
			delete(c.arrays, k)
		}
	}
	if k, ok := keyOf(next); ok {
		c.arrays[k] = weak.Make(a)
		runtime.AddCleanup(a, c.evictArray, k)
	}
}
