package expr

import "github.com/legodom/lego/pkg/reactive"

// Scope resolves identifiers during evaluation.
type Scope interface {
	// Lookup returns the value bound to name.
	Lookup(name string) (any, bool)

	// Assign binds name to v and reports whether the scope accepted it.
	Assign(name string, v any) bool
}

// Vars is a Scope over a plain map.
type Vars map[string]any

func (v Vars) Lookup(name string) (any, bool) {
	x, ok := v[name]
	return x, ok
}

func (v Vars) Assign(name string, x any) bool {
	v[name] = x
	return true
}

// StateScope exposes a reactive object's keys as identifiers. Assignments
// go through the proxy and therefore notify.
type StateScope struct {
	State *reactive.Object
}

func (s StateScope) Lookup(name string) (any, bool) {
	if s.State == nil {
		return nil, false
	}
	return s.State.Lookup(name)
}

func (s StateScope) Assign(name string, v any) bool {
	if s.State == nil {
		return false
	}
	s.State.Set(name, v)
	return true
}

// Chain searches scopes in order. Assignment targets the first scope that
// already binds the name, falling back to the first scope.
type Chain []Scope

func (c Chain) Lookup(name string) (any, bool) {
	for _, s := range c {
		if s == nil {
			continue
		}
		if v, ok := s.Lookup(name); ok {
			return v, true
		}
	}
	return nil, false
}

func (c Chain) Assign(name string, v any) bool {
	for _, s := range c {
		if s == nil {
			continue
		}
		if _, ok := s.Lookup(name); ok {
			return s.Assign(name, v)
		}
	}
	for _, s := range c {
		if s != nil && s.Assign(name, v) {
			return true
		}
	}
	return false
}

// readOnly wraps a scope so assignments are refused.
type readOnly struct{ Scope }

func (readOnly) Assign(string, any) bool { return false }

// ReadOnly returns a view of s that refuses assignment.
func ReadOnly(s Scope) Scope { return readOnly{s} }
