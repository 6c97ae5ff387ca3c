package dom

import "errors"

// ErrHierarchy is returned when an insertion would make a node its own
// ancestor or targets a node that cannot have children.
var ErrHierarchy = errors.New("dom: hierarchy request error")

func (n *Node) indexOf(child *Node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

func (n *Node) canHaveChildren() bool {
	return n.Type == ElementNode || n.Type == DocumentNode || n.Type == FragmentNode
}

// detach unlinks n from its parent without recording a mutation.
func (n *Node) detach() (parent *Node, index int) {
	parent = n.parent
	if parent == nil {
		return nil, -1
	}
	index = parent.indexOf(n)
	if index >= 0 {
		parent.children = append(parent.children[:index], parent.children[index+1:]...)
	}
	n.parent = nil
	return parent, index
}

// expand turns a fragment argument into its children, emptying the fragment.
func expand(nodes []*Node) []*Node {
	var out []*Node
	for _, c := range nodes {
		if c == nil {
			continue
		}
		if c.Type == FragmentNode && c.host == nil {
			kids := append([]*Node(nil), c.children...)
			for _, k := range kids {
				k.parent = nil
			}
			c.children = nil
			out = append(out, kids...)
			continue
		}
		out = append(out, c)
	}
	return out
}

// InsertBefore inserts child before ref. A nil ref appends. A child that is
// already in a tree is moved. Inserting a fragment inserts its children.
func (n *Node) InsertBefore(child, ref *Node) error {
	if !n.canHaveChildren() {
		return ErrHierarchy
	}
	if ref != nil && ref.parent != n {
		return ErrHierarchy
	}
	nodes := expand([]*Node{child})
	for _, c := range nodes {
		if c.Contains(n) || c.Type == DocumentNode || c.IsShadowRoot() {
			return ErrHierarchy
		}
	}
	for _, c := range nodes {
		if c == ref {
			continue
		}
		if old, _ := c.detach(); old != nil {
			notify(old, &Record{Type: RecordChildList, Target: old, Removed: []*Node{c}})
		}
		idx := len(n.children)
		if ref != nil {
			idx = n.indexOf(ref)
		}
		n.children = append(n.children, nil)
		copy(n.children[idx+1:], n.children[idx:])
		n.children[idx] = c
		c.parent = n
	}
	if len(nodes) > 0 {
		notify(n, &Record{Type: RecordChildList, Target: n, Added: nodes})
	}
	return nil
}

// AppendChild appends child to n.
func (n *Node) AppendChild(child *Node) error {
	return n.InsertBefore(child, nil)
}

// RemoveChild removes child from n.
func (n *Node) RemoveChild(child *Node) error {
	if child == nil || child.parent != n {
		return ErrHierarchy
	}
	child.detach()
	notify(n, &Record{Type: RecordChildList, Target: n, Removed: []*Node{child}})
	return nil
}

// Remove removes n from its parent, if any.
func (n *Node) Remove() {
	if n.parent != nil {
		_ = n.parent.RemoveChild(n)
	}
}

// ReplaceWith replaces n in its parent with repl.
func (n *Node) ReplaceWith(repl *Node) error {
	parent := n.parent
	if parent == nil {
		return ErrHierarchy
	}
	if err := parent.InsertBefore(repl, n); err != nil {
		return err
	}
	return parent.RemoveChild(n)
}

// ReplaceChildren removes every child of n and appends nodes, recording a
// single mutation.
func (n *Node) ReplaceChildren(nodes ...*Node) {
	if !n.canHaveChildren() {
		return
	}
	removed := n.children
	n.children = nil
	for _, c := range removed {
		c.parent = nil
	}
	added := expand(nodes)
	for _, c := range added {
		if old, _ := c.detach(); old != nil {
			notify(old, &Record{Type: RecordChildList, Target: old, Removed: []*Node{c}})
		}
		c.parent = n
		n.children = append(n.children, c)
	}
	if len(removed) > 0 || len(added) > 0 {
		notify(n, &Record{Type: RecordChildList, Target: n, Added: added, Removed: removed})
	}
}

// ElementIndex returns the position of n among its parent's element
// children, or -1.
func (n *Node) ElementIndex() int {
	if n.parent == nil {
		return -1
	}
	i := 0
	for _, c := range n.parent.children {
		if c == n {
			return i
		}
		if c.Type == ElementNode {
			i++
		}
	}
	return -1
}
