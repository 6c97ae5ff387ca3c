package component

import (
	"fmt"

	"github.com/legodom/lego/pkg/dom"
	"github.com/legodom/lego/pkg/expr"
	"github.com/legodom/lego/pkg/reactive"
	"github.com/legodom/lego/pkg/render"
)

// helpers is the read-only scope of $-prefixed functions available to an
// instance's expressions.
type helpers struct {
	m *Manager
	e *entry
}

func (h helpers) Lookup(name string) (any, bool) {
	switch name {
	case "$ancestors":
		return expr.Func(func(_ any, args ...any) (any, error) {
			tag, _ := arg(args, 0).(string)
			if s := h.m.ancestor(h.e.inst.Host, tag); s != nil {
				return s, nil
			}
			return nil, nil
		}), true
	case "$registry":
		return expr.Func(func(_ any, args ...any) (any, error) {
			tag, _ := arg(args, 0).(string)
			if s := h.m.Shared(tag); s != nil {
				h.m.read(tag, h.e)
				return s, nil
			}
			return nil, nil
		}), true
	case "$element":
		return expr.Func(func(_ any, args ...any) (any, error) {
			name, _ := arg(args, 0).(string)
			if name == "" {
				return render.ElementValue(h.e.inst.Host), nil
			}
			return render.ElementValue(h.e.inst.Refs()[name]), nil
		}), true
	case "$route":
		if g := h.m.cfg.Global; g != nil {
			return g.Get("$route"), true
		}
		return nil, true
	case "$go":
		return expr.Func(func(_ any, args ...any) (any, error) {
			if h.m.cfg.Navigate == nil {
				return nil, fmt.Errorf("$go: no router installed")
			}
			url, _ := arg(args, 0).(string)
			var targets []string
			for _, a := range args[min(1, len(args)):] {
				if s, ok := a.(string); ok {
					targets = append(targets, s)
				}
			}
			return nil, h.m.cfg.Navigate(url, targets...)
		}), true
	case "$emit":
		return expr.Func(func(_ any, args ...any) (any, error) {
			name, _ := arg(args, 0).(string)
			if name == "" {
				return nil, fmt.Errorf("$emit: event name required")
			}
			return h.e.ctx.Emit(name, arg(args, 1)), nil
		}), true
	}
	return nil, false
}

func (helpers) Assign(string, any) bool { return false }

func arg(args []any, i int) any {
	if i < len(args) {
		return args[i]
	}
	return nil
}

// ancestor walks up from el, crossing shadow boundaries, and returns the
// state of the nearest component instance with the given tag.
func (m *Manager) ancestor(el *dom.Node, tag string) *reactive.Object {
	for n := up(el); n != nil; n = up(n) {
		if n.Type != dom.ElementNode || n.Tag != tag {
			continue
		}
		if e, ok := n.Private(entryKey{}).(*entry); ok {
			return e.inst.State
		}
	}
	return nil
}

func up(n *dom.Node) *dom.Node {
	if p := n.Parent(); p != nil {
		if p.IsShadowRoot() {
			return p.Host()
		}
		return p
	}
	return n.Host()
}
