package render

import (
	"fmt"
	"strings"

	"github.com/legodom/lego/pkg/dom"
	"github.com/legodom/lego/pkg/expr"
)

// Element exposes a DOM node to expressions as "self" or an event target.
type Element struct{ Node *dom.Node }

// ElementValue wraps n, returning nil for a nil node.
func ElementValue(n *dom.Node) any {
	if n == nil {
		return nil
	}
	return Element{Node: n}
}

func (e Element) Member(name string) (any, bool) {
	n := e.Node
	switch name {
	case "value":
		return n.Value(), true
	case "checked":
		return n.Checked(), true
	case "type":
		return n.InputType(), true
	case "id":
		return n.ID(), true
	case "tagName":
		return strings.ToUpper(n.Tag), true
	case "localName":
		return n.Tag, true
	case "textContent":
		return n.TextContent(), true
	case "innerHTML":
		return n.InnerHTML(), true
	case "hidden":
		return n.Hidden(), true
	case "isConnected":
		return n.IsConnected(), true
	case "parentElement":
		return ElementValue(n.Parent()), true
	case "host":
		return ElementValue(n.Host()), true
	case "getAttribute":
		return expr.Func(func(_ any, args ...any) (any, error) {
			if len(args) == 0 {
				return nil, nil
			}
			v, ok := n.GetAttribute(expr.ToString(args[0]))
			if !ok {
				return nil, nil
			}
			return v, nil
		}), true
	case "hasAttribute":
		return expr.Func(func(_ any, args ...any) (any, error) {
			return len(args) > 0 && n.HasAttribute(expr.ToString(args[0])), nil
		}), true
	case "setAttribute":
		return expr.Func(func(_ any, args ...any) (any, error) {
			if len(args) < 2 {
				return nil, fmt.Errorf("%w: setAttribute needs a name and a value", expr.ErrType)
			}
			n.SetAttribute(expr.ToString(args[0]), expr.ToString(args[1]))
			return nil, nil
		}), true
	case "focus", "blur":
		return expr.Func(func(any, ...any) (any, error) { return nil, nil }), true
	}
	return nil, false
}

func (e Element) SetMember(name string, v any) error {
	switch name {
	case "value":
		e.Node.SetValue(expr.ToString(v))
	case "checked":
		e.Node.SetChecked(expr.Truthy(v))
	case "textContent":
		e.Node.SetTextContent(expr.ToString(v))
	case "hidden":
		e.Node.SetDisplay(!expr.Truthy(v))
	default:
		return fmt.Errorf("%w: cannot set %q on <%s>", expr.ErrType, name, e.Node.Tag)
	}
	return nil
}

// Event exposes a DOM event to expressions as "event".
type Event struct{ Event *dom.Event }

// EventValue wraps ev, returning nil for a nil event.
func EventValue(ev *dom.Event) any {
	if ev == nil {
		return nil
	}
	return Event{Event: ev}
}

func (e Event) Member(name string) (any, bool) {
	ev := e.Event
	switch name {
	case "type":
		return ev.Type, true
	case "target":
		return ElementValue(ev.Target), true
	case "currentTarget":
		return ElementValue(ev.CurrentTarget), true
	case "detail":
		return ev.Detail, true
	case "defaultPrevented":
		return ev.DefaultPrevented(), true
	case "preventDefault":
		return expr.Func(func(any, ...any) (any, error) { ev.PreventDefault(); return nil, nil }), true
	case "stopPropagation":
		return expr.Func(func(any, ...any) (any, error) { ev.StopPropagation(); return nil, nil }), true
	}
	return nil, false
}
