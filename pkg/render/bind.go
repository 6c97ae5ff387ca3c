package render

import (
	"fmt"

	"github.com/legodom/lego/pkg/binding"
	"github.com/legodom/lego/pkg/dom"
	"github.com/legodom/lego/pkg/expr"
)

type boundKey struct{}

// Bind wires the @event and b-sync listeners under root, root included.
// Each node is wired at most once per event type and sync binding, so Bind
// may be called again after the tree grows. loop supplies list variables
// for list fragments and is nil otherwise.
func (r *Renderer) Bind(root *dom.Node, inst *Instance, loop expr.Scope) {
	r.bindItems(inst, binding.Interactive(root), loop)
}

func (r *Renderer) bindItems(inst *Instance, items []binding.Descriptor, loop expr.Scope) {
	for _, d := range items {
		switch d.Kind {
		case binding.KindEvent:
			if markBound(d.Node, binding.EventPrefix+d.Name) {
				r.bindEvent(inst, d, loop)
			}
		case binding.KindSync:
			if markBound(d.Node, binding.AttrSync) {
				r.bindSync(inst, d, loop)
			}
		}
	}
}

// markBound records key on n and reports whether it was new.
func markBound(n *dom.Node, key string) bool {
	set, _ := n.Private(boundKey{}).(map[string]bool)
	if set == nil {
		set = make(map[string]bool)
		n.SetPrivate(boundKey{}, set)
	}
	if set[key] {
		return false
	}
	set[key] = true
	return true
}

func (r *Renderer) bindEvent(inst *Instance, d binding.Descriptor, loop expr.Scope) {
	d.Node.AddEventListener(d.Name, func(ev *dom.Event) {
		scope := r.Scope(inst, loop, d.Node, ev)
		if _, err := r.cfg.Sandbox.Exec(d.Expr, scope); err != nil {
			r.Report(fmt.Errorf("@%s %q: %w", d.Name, d.Expr, err), CategoryEvent, inst.Host)
		}
	})
}

// bindSync writes control edits back to state on input and change.
func (r *Renderer) bindSync(inst *Instance, d binding.Descriptor, loop expr.Scope) {
	update := func(ev *dom.Event) {
		var v any
		switch d.Node.InputType() {
		case "checkbox":
			v = d.Node.Checked()
		case "radio":
			if !d.Node.Checked() {
				return
			}
			v = d.Node.Value()
		default:
			v = d.Node.Value()
		}
		scope := r.Scope(inst, loop, d.Node, ev)
		if err := r.cfg.Sandbox.Assign(d.Expr, scope, v); err != nil {
			r.Report(fmt.Errorf("b-sync %q: %w", d.Expr, err), CategorySync, inst.Host)
		}
	}
	d.Node.AddEventListener("input", update)
	d.Node.AddEventListener("change", update)
}
