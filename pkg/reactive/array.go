package reactive

// Array is a reactive proxy over a []any.
//
// Writes to existing indexes happen in place. Operations that change the
// length produce a new slice which is written back through the slot the
// array was read from, so the owning object observes (and notifies for)
// exactly one change.
type Array struct {
	cache     *Cache
	items     []any
	writeBack func([]any)
	notify    Notifier
	id        uint64
}

// ID returns the proxy's identity tag.
func (a *Array) ID() uint64 { return a.id }

// Raw returns the underlying slice.
func (a *Array) Raw() []any { return a.items }

// Len returns the number of elements.
func (a *Array) Len() int { return len(a.items) }

// Index returns element i, wrapping nested containers. Out of range
// indexes yield nil.
func (a *Array) Index(i int) any {
	if i < 0 || i >= len(a.items) {
		return nil
	}
	return a.wrapItem(i)
}

func (a *Array) wrapItem(i int) any {
	switch x := a.items[i].(type) {
	case map[string]any:
		return a.cache.object(x, a.notify)
	case []any:
		return a.cache.array(x, func(next []any) { a.SetIndex(i, next) }, a.notify)
	default:
		return x
	}
}

// Items returns every element, wrapped.
func (a *Array) Items() []any {
	out := make([]any, len(a.items))
	for i := range a.items {
		out[i] = a.wrapItem(i)
	}
	return out
}

// SetIndex writes v at index i, notifying if the value changed. Writing one
// past the end appends.
func (a *Array) SetIndex(i int, v any) {
	v = Unwrap(v)
	switch {
	case i < 0:
		return
	case i < len(a.items):
		if Same(a.items[i], v) {
			return
		}
		if a.notify != nil {
			a.notify()
		}
		a.items[i] = v
	default:
		next := make([]any, i+1)
		copy(next, a.items)
		next[i] = v
		a.replace(next)
	}
}

// Push appends values and returns the new length.
func (a *Array) Push(values ...any) int {
	if len(values) == 0 {
		return len(a.items)
	}
	next := make([]any, len(a.items), len(a.items)+len(values))
	copy(next, a.items)
	for _, v := range values {
		next = append(next, Unwrap(v))
	}
	a.replace(next)
	return len(next)
}

// Pop removes and returns the last element.
func (a *Array) Pop() any {
	if len(a.items) == 0 {
		return nil
	}
	last := a.wrapItem(len(a.items) - 1)
	next := make([]any, len(a.items)-1)
	copy(next, a.items)
	a.replace(next)
	return last
}

// Splice removes count elements at start, inserts values there and returns
// the removed elements.
func (a *Array) Splice(start, count int, values ...any) []any {
	n := len(a.items)
	if start < 0 {
		start += n
		if start < 0 {
			start = 0
		}
	}
	if start > n {
		start = n
	}
	if count < 0 {
		count = 0
	}
	if start+count > n {
		count = n - start
	}
	if count == 0 && len(values) == 0 {
		return nil
	}
	removed := append([]any(nil), a.items[start:start+count]...)
	next := make([]any, 0, n-count+len(values))
	next = append(next, a.items[:start]...)
	for _, v := range values {
		next = append(next, Unwrap(v))
	}
	next = append(next, a.items[start+count:]...)
	a.replace(next)
	return removed
}

// IndexOf returns the index of the first element Same as v, or -1.
func (a *Array) IndexOf(v any) int {
	v = Unwrap(v)
	for i, x := range a.items {
		if Same(x, v) {
			return i
		}
	}
	return -1
}

func (a *Array) replace(next []any) {
	old := a.items
	a.items = next
	a.cache.rekey(a, old, next)
	if a.writeBack != nil {
		a.writeBack(next)
		return
	}
	if a.notify != nil {
		a.notify()
	}
}
