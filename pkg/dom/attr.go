package dom

import "strings"

// Attrs returns a copy of the element's attributes in document order.
func (n *Node) Attrs() []Attr {
	return append([]Attr(nil), n.attrs...)
}

// GetAttribute returns the named attribute value and whether it exists.
func (n *Node) GetAttribute(name string) (string, bool) {
	name = strings.ToLower(name)
	for _, a := range n.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Attr returns the named attribute value or "".
func (n *Node) Attr(name string) string {
	v, _ := n.GetAttribute(name)
	return v
}

// HasAttribute reports whether the named attribute exists.
func (n *Node) HasAttribute(name string) bool {
	_, ok := n.GetAttribute(name)
	return ok
}

// SetAttribute sets an attribute, recording a mutation.
func (n *Node) SetAttribute(name, value string) {
	if n.Type != ElementNode {
		return
	}
	name = strings.ToLower(name)
	old, existed := "", false
	for i := range n.attrs {
		if n.attrs[i].Name == name {
			old, existed = n.attrs[i].Value, true
			n.attrs[i].Value = value
			break
		}
	}
	if !existed {
		n.attrs = append(n.attrs, Attr{Name: name, Value: value})
	}
	notify(n, &Record{Type: RecordAttributes, Target: n, AttributeName: name, OldValue: old})
}

// RemoveAttribute removes an attribute if present.
func (n *Node) RemoveAttribute(name string) {
	name = strings.ToLower(name)
	for i, a := range n.attrs {
		if a.Name == name {
			n.attrs = append(n.attrs[:i], n.attrs[i+1:]...)
			notify(n, &Record{Type: RecordAttributes, Target: n, AttributeName: name, OldValue: a.Value})
			return
		}
	}
}

// ID returns the id attribute.
func (n *Node) ID() string { return n.Attr("id") }

// HasClass reports whether the class attribute lists class.
func (n *Node) HasClass(class string) bool {
	for _, c := range strings.Fields(n.Attr("class")) {
		if c == class {
			return true
		}
	}
	return false
}

// InputType returns the lowercase type of a form control, "text" by default.
func (n *Node) InputType() string {
	if t := strings.ToLower(n.Attr("type")); t != "" {
		return t
	}
	return "text"
}

// Value returns the value property of a form control. Until it is set the
// property reflects the value attribute (or the text of a textarea).
func (n *Node) Value() string {
	if n.valueDirty {
		return n.value
	}
	if n.Tag == "textarea" {
		return n.TextContent()
	}
	return n.Attr("value")
}

// SetValue sets the value property. Properties are not attributes and do
// not produce mutation records.
func (n *Node) SetValue(v string) {
	n.value = v
	n.valueDirty = true
}

// Checked returns the checked property of a checkbox or radio control.
func (n *Node) Checked() bool {
	if n.checkDirty {
		return n.checked
	}
	return n.HasAttribute("checked")
}

// SetChecked sets the checked property.
func (n *Node) SetChecked(v bool) {
	n.checked = v
	n.checkDirty = true
}

// SetDisplay shows or hides an element through its inline style, leaving
// the rest of the style declaration untouched. It writes only when the
// visible state changes.
func (n *Node) SetDisplay(visible bool) {
	style := n.Attr("style")
	hidden := strings.Contains(strings.ReplaceAll(style, " ", ""), "display:none")
	if hidden == !visible {
		return
	}
	var decls []string
	for _, d := range strings.Split(style, ";") {
		d = strings.TrimSpace(d)
		if d == "" || strings.HasPrefix(strings.ReplaceAll(d, " ", ""), "display:") {
			continue
		}
		decls = append(decls, d)
	}
	if !visible {
		decls = append(decls, "display: none")
	}
	if len(decls) == 0 {
		n.RemoveAttribute("style")
		return
	}
	n.SetAttribute("style", strings.Join(decls, "; "))
}

// Hidden reports whether the element's inline style hides it.
func (n *Node) Hidden() bool {
	return strings.Contains(strings.ReplaceAll(n.Attr("style"), " ", ""), "display:none")
}
