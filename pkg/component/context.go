package component

import (
	"github.com/legodom/lego/pkg/dom"
	"github.com/legodom/lego/pkg/reactive"
)

// Context is passed to lifecycle hooks.
type Context struct {
	// Element is the component's host element.
	Element *dom.Node

	// State is the instance's reactive state.
	State *reactive.Object

	m *Manager
	e *entry
}

// Refs returns the b-id references of the shadow tree.
func (c *Context) Refs() map[string]*dom.Node { return c.e.inst.Refs() }

// Ref returns the element registered under name, or nil.
func (c *Context) Ref(name string) *dom.Node { return c.Refs()[name] }

// Shadow returns the component's shadow root.
func (c *Context) Shadow() *dom.Node { return c.e.inst.Root }

// Emit dispatches a bubbling, composed custom event from the host element.
// It reports whether the default action was not prevented.
func (c *Context) Emit(name string, detail any) bool {
	return c.Element.Dispatch(dom.NewCustomEvent(name, detail))
}

// Render re-renders the instance synchronously.
func (c *Context) Render() { c.m.renderer.Render(c.e.inst) }

// Global returns the application-wide state, or nil.
func (c *Context) Global() *reactive.Object { return c.m.cfg.Global }

// Ancestor returns the state of the nearest enclosing instance of tag.
func (c *Context) Ancestor(tag string) *reactive.Object { return c.m.ancestor(c.Element, tag) }
