package dom

// Event is a dispatched DOM event.
type Event struct {
	Type string

	// Target is the node the event was dispatched on, retargeted to the
	// shadow host once the event leaves a shadow tree.
	Target *Node

	// CurrentTarget is the node whose listener is running.
	CurrentTarget *Node

	// Detail carries the payload of custom events.
	Detail any

	Bubbles  bool
	Composed bool

	stopped          bool
	defaultPrevented bool
}

// NewEvent creates a bubbling, composed event of the given type.
func NewEvent(typ string) *Event {
	return &Event{Type: typ, Bubbles: true, Composed: true}
}

// NewCustomEvent creates a bubbling, composed event carrying detail.
func NewCustomEvent(typ string, detail any) *Event {
	return &Event{Type: typ, Detail: detail, Bubbles: true, Composed: true}
}

// StopPropagation prevents the event from reaching further nodes.
func (e *Event) StopPropagation() { e.stopped = true }

// PreventDefault marks the event's default action as cancelled.
func (e *Event) PreventDefault() { e.defaultPrevented = true }

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// Listener handles a dispatched event.
type Listener func(*Event)

type listener struct {
	fn      Listener
	removed bool
}

// AddEventListener registers fn for events of type typ on n. The returned
// function removes the listener.
func (n *Node) AddEventListener(typ string, fn Listener) (remove func()) {
	if n.listeners == nil {
		n.listeners = make(map[string][]*listener)
	}
	l := &listener{fn: fn}
	n.listeners[typ] = append(n.listeners[typ], l)
	return func() {
		l.removed = true
		list := n.listeners[typ]
		for i, x := range list {
			if x == l {
				n.listeners[typ] = append(list[:i], list[i+1:]...)
				return
			}
		}
	}
}

// ListenerCount returns the number of listeners registered for typ.
func (n *Node) ListenerCount(typ string) int {
	return len(n.listeners[typ])
}

// Dispatch delivers ev to n and, when it bubbles, to n's ancestors. A
// composed event crosses from a shadow root to its host and is retargeted.
// It returns false if a listener called PreventDefault.
func (n *Node) Dispatch(ev *Event) bool {
	ev.Target = n
	cur := n
	for cur != nil {
		cur.invoke(ev)
		if ev.stopped || !ev.Bubbles {
			break
		}
		switch {
		case cur.parent != nil:
			cur = cur.parent
		case cur.host != nil && ev.Composed:
			cur = cur.host
			ev.Target = cur
		default:
			cur = nil
		}
	}
	ev.CurrentTarget = nil
	return !ev.defaultPrevented
}

func (n *Node) invoke(ev *Event) {
	list := n.listeners[ev.Type]
	if len(list) == 0 {
		return
	}
	ev.CurrentTarget = n
	for _, l := range append([]*listener(nil), list...) {
		if l.removed {
			continue
		}
		l.fn(ev)
	}
}

// Click dispatches a click event on n.
func (n *Node) Click() bool {
	return n.Dispatch(NewEvent("click"))
}

// Input sets the value (or checked state for checkboxes and radios) of a
// form control and dispatches input and change events, as a user edit
// would.
func (n *Node) Input(value string) {
	switch n.InputType() {
	case "checkbox", "radio":
		n.SetChecked(value != "" && value != "false")
	default:
		n.SetValue(value)
	}
	n.Dispatch(NewEvent("input"))
	n.Dispatch(NewEvent("change"))
}
