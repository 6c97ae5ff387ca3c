package render

import (
	"fmt"

	"github.com/legodom/lego/pkg/binding"
	"github.com/legodom/lego/pkg/dom"
	"github.com/legodom/lego/pkg/expr"
	"github.com/legodom/lego/pkg/reactive"
)

type poolKey struct{}

// fragment is one rendered list item. Its bindings were scanned from its
// own subtree and its loop variables are rebound on every render.
type fragment struct {
	node  *dom.Node
	ph    *dom.Node // placeholder of a b-if on node, if any
	items []binding.Descriptor
	vars  expr.Vars
	loop  expr.Scope
}

// current returns the node standing in the list for f: the root, or its
// placeholder while a b-if on the root is false.
func (f *fragment) current() *dom.Node {
	if f.ph != nil && f.ph.Parent() != nil {
		return f.ph
	}
	return f.node
}

// pool maps item keys to fragments. It lives in the b-for node's private
// data and goes away with the node.
type pool map[string]*fragment

// Pool returns the number of pooled fragments of a b-for element.
func Pool(n *dom.Node) int {
	p, _ := n.Private(poolKey{}).(pool)
	return len(p)
}

// ItemKey returns the reconciliation key of a list item. Objects and arrays
// are keyed by their proxy identity; other values by position and value.
func ItemKey(i int, item any) string {
	switch v := item.(type) {
	case *reactive.Object:
		return fmt.Sprintf("o%d", v.ID())
	case *reactive.Array:
		return fmt.Sprintf("a%d", v.ID())
	}
	return fmt.Sprintf("%d-%s", i, expr.ToString(item))
}

func listItems(v any) ([]any, bool) {
	switch l := v.(type) {
	case nil:
		return nil, true
	case *reactive.Array:
		return l.Items(), true
	case []any:
		return l, true
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out, true
	}
	return nil, false
}

// applyFor reconciles the children of a b-for element with its list.
// Fragments are reused by key, moved only when out of place, and removed
// when their key disappears. A fragment is positioned before its bindings
// run so a b-if on its root swaps in place.
func (r *Renderer) applyFor(inst *Instance, d *binding.Descriptor, scope, loop expr.Scope) {
	items, ok := listItems(r.eval(inst, d.Expr, scope))
	if !ok {
		r.Report(fmt.Errorf("b-for %q: value is not a list", d.Expr), CategoryRender, inst.Host)
		return
	}

	p, _ := d.Node.Private(poolKey{}).(pool)
	if p == nil {
		p = make(pool)
		d.Node.SetPrivate(poolKey{}, p)
	}

	seen := make(map[string]bool, len(items))
	pos := 0
	for i, item := range items {
		key := ItemKey(i, item)
		if seen[key] {
			key = fmt.Sprintf("%s#%d", key, i)
		}
		seen[key] = true

		f := p[key]
		if f == nil {
			if f = r.newFragment(inst, d, loop); f == nil {
				continue
			}
			p[key] = f
		}
		f.vars[d.Name] = item
		if d.Index != "" {
			f.vars[d.Index] = float64(i)
		}

		cur := f.current()
		kids := d.Node.Children()
		if pos >= len(kids) || kids[pos] != cur {
			var ref *dom.Node
			if pos < len(kids) {
				ref = kids[pos]
			}
			if err := d.Node.InsertBefore(cur, ref); err != nil {
				r.Report(err, CategoryRender, inst.Host)
			}
		}
		pos++
		r.apply(inst, f.items, f.loop)
	}

	for key, f := range p {
		if !seen[key] {
			f.node.Remove()
			if f.ph != nil {
				f.ph.Remove()
			}
			delete(p, key)
		}
	}
}

// newFragment instantiates the captured template. Its first element is the
// item root; content without an element is wrapped in a span.
func (r *Renderer) newFragment(inst *Instance, d *binding.Descriptor, outer expr.Scope) *fragment {
	frag, err := dom.FragmentFromHTML(d.Template)
	if err != nil {
		r.Report(fmt.Errorf("b-for %q: %w", d.Expr, err), CategoryRender, inst.Host)
		return nil
	}
	node := frag.FirstElementChild()
	if node == nil {
		node = dom.NewElement("span")
		node.ReplaceChildren(frag)
	}
	node.Remove()

	f := &fragment{
		node:  node,
		items: binding.ScanNode(node, r.cfg.Delimiters).Items,
		vars:  expr.Vars{},
	}
	for _, it := range f.items {
		if it.Kind == binding.KindIf && it.Node == node {
			f.ph = it.Placeholder
		}
	}
	f.loop = f.vars
	if outer != nil {
		f.loop = expr.Chain{f.vars, outer}
	}
	r.bindItems(inst, f.items, f.loop)
	return f
}
