package render

import (
	"github.com/legodom/lego/pkg/binding"
	"github.com/legodom/lego/pkg/dom"
	"github.com/legodom/lego/pkg/expr"
	"github.com/legodom/lego/pkg/reactive"
)

// Instance is a rendered component: a host element, the tree its bindings
// live in and its reactive state.
type Instance struct {
	// Tag is the component's tag name.
	Tag string

	// Host is the component element. It is nil for the global holder.
	Host *dom.Node

	// Root is the tree scanned for bindings, normally Host's shadow root.
	Root *dom.Node

	State *reactive.Object

	// Helpers is consulted after state and the built-in names; the
	// component manager installs the $-prefixed helper namespace here.
	Helpers expr.Scope

	// Global marks the application-wide global state holder.
	Global bool

	bindings  *binding.Bindings
	rendering bool
	renders   uint64
}

// Bindings returns the cached scan result, or nil before the first render.
func (i *Instance) Bindings() *binding.Bindings { return i.bindings }

// GlobalDependent reports whether any binding references global state.
func (i *Instance) GlobalDependent() bool {
	return i.bindings != nil && i.bindings.Global
}

// Rendering reports whether a render of the instance is in progress.
func (i *Instance) Rendering() bool { return i.rendering }

// Renders returns the number of completed render passes.
func (i *Instance) Renders() uint64 { return i.renders }

// Refs returns the instance's b-id references.
func (i *Instance) Refs() map[string]*dom.Node {
	if i.bindings == nil {
		return nil
	}
	return i.bindings.Refs()
}

// Element returns the node errors and hooks are reported against.
func (i *Instance) Element() *dom.Node { return i.Host }
