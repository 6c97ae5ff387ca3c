package render

import (
	"github.com/legodom/lego/pkg/binding"
	"github.com/legodom/lego/pkg/dom"
	"github.com/legodom/lego/pkg/expr"
)

type htmlKey struct{}

// apply runs every descriptor against the tree. loop holds the list
// variables of the enclosing b-for fragments, if any.
func (r *Renderer) apply(inst *Instance, items []binding.Descriptor, loop expr.Scope) {
	scope, vars := r.scope(inst, loop, inst.Host, nil)
	for i := range items {
		d := &items[i]
		self := d.Node
		if self.Type == dom.TextNode {
			self = self.Parent()
		}
		vars["self"] = ElementValue(self)

		switch d.Kind {
		case binding.KindIf:
			r.applyIf(d, expr.Truthy(r.eval(inst, d.Expr, scope)))
		case binding.KindShow:
			d.Node.SetDisplay(expr.Truthy(r.eval(inst, d.Expr, scope)))
		case binding.KindText:
			out := r.interpolate(inst, d.Segments, scope)
			if d.Node.Data() != out {
				d.Node.SetData(out)
			}
		case binding.KindAttr:
			out := r.interpolate(inst, d.Segments, scope)
			if cur, ok := d.Node.GetAttribute(d.Name); !ok || cur != out {
				d.Node.SetAttribute(d.Name, out)
			}
		case binding.KindTextPath:
			out := EscapeHTML(expr.ToString(expr.Resolve(d.Path, scope)))
			if d.Node.TextContent() != out {
				d.Node.SetTextContent(out)
			}
		case binding.KindHTML:
			r.applyHTML(inst, d, expr.ToString(r.eval(inst, d.Expr, scope)))
		case binding.KindSync:
			syncControl(d.Node, expr.Resolve(d.Expr, scope))
		case binding.KindFor:
			r.applyFor(inst, d, scope, loop)
		}
	}
}

// applyIf attaches or detaches the node through its placeholder, touching
// the tree only when the attachment state changes.
func (r *Renderer) applyIf(d *binding.Descriptor, show bool) {
	n, ph := d.Node, d.Placeholder
	switch {
	case show && ph.Parent() != nil:
		_ = ph.ReplaceWith(n)
	case !show && n.Parent() != nil:
		_ = n.ReplaceWith(ph)
	}
}

// applyHTML assigns raw markup, unescaped. The last assigned markup is kept
// on the node so unchanged output leaves the children alone.
func (r *Renderer) applyHTML(inst *Instance, d *binding.Descriptor, markup string) {
	if prev, ok := d.Node.Private(htmlKey{}).(string); ok && prev == markup {
		return
	}
	if err := d.Node.SetInnerHTML(markup); err != nil {
		r.Report(err, CategoryRender, inst.Host)
		return
	}
	d.Node.SetPrivate(htmlKey{}, markup)
}

// syncControl pushes a state value into a form control.
func syncControl(n *dom.Node, v any) {
	switch n.InputType() {
	case "checkbox":
		if want := expr.Truthy(v); n.Checked() != want {
			n.SetChecked(want)
		}
	case "radio":
		if want := n.Value() == expr.ToString(v); n.Checked() != want {
			n.SetChecked(want)
		}
	default:
		if s := expr.ToString(v); n.Value() != s {
			n.SetValue(s)
		}
	}
}
