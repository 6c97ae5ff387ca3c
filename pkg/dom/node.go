package dom

import (
	"strings"
)

// NodeType identifies the kind of a Node.
type NodeType uint8

const (
	ElementNode NodeType = iota + 1
	TextNode
	CommentNode
	DocumentNode
	// FragmentNode is a detached container. Shadow roots are fragments with
	// a host element.
	FragmentNode
)

// String returns the node type name.
func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case CommentNode:
		return "comment"
	case DocumentNode:
		return "document"
	case FragmentNode:
		return "fragment"
	default:
		return "unknown"
	}
}

// Attr is a single element attribute.
type Attr struct {
	Name  string
	Value string
}

// Node is a node of the document tree.
type Node struct {
	Type NodeType

	// Tag is the lowercase element name. Empty for non-elements.
	Tag string

	data     string
	attrs    []Attr
	parent   *Node
	children []*Node

	shadow *Node
	host   *Node

	value      string
	valueDirty bool
	checked    bool
	checkDirty bool

	listeners map[string][]*listener
	observers []*registration
	private   map[any]any
}

// NewElement creates a detached element.
func NewElement(tag string) *Node {
	return &Node{Type: ElementNode, Tag: strings.ToLower(tag)}
}

// NewText creates a detached text node.
func NewText(text string) *Node {
	return &Node{Type: TextNode, data: text}
}

// NewComment creates a detached comment node.
func NewComment(text string) *Node {
	return &Node{Type: CommentNode, data: text}
}

// NewFragment creates an empty detached fragment.
func NewFragment() *Node {
	return &Node{Type: FragmentNode}
}

// Parent returns the parent node, or nil. A shadow root has no parent; use
// Host to reach its element.
func (n *Node) Parent() *Node { return n.parent }

// Host returns the element a shadow root is attached to.
func (n *Node) Host() *Node { return n.host }

// ShadowRoot returns the element's shadow root, or nil.
func (n *Node) ShadowRoot() *Node { return n.shadow }

// IsShadowRoot reports whether n is a shadow root.
func (n *Node) IsShadowRoot() bool { return n.Type == FragmentNode && n.host != nil }

// Children returns the child nodes. The slice must not be modified.
func (n *Node) Children() []*Node { return n.children }

// FirstChild returns the first child or nil.
func (n *Node) FirstChild() *Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[0]
}

// ElementChildren returns the element children of n in order.
func (n *Node) ElementChildren() []*Node {
	var out []*Node
	for _, c := range n.children {
		if c.Type == ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// FirstElementChild returns the first element child or nil.
func (n *Node) FirstElementChild() *Node {
	for _, c := range n.children {
		if c.Type == ElementNode {
			return c
		}
	}
	return nil
}

// NextSibling returns the following sibling or nil.
func (n *Node) NextSibling() *Node {
	if n.parent == nil {
		return nil
	}
	i := n.parent.indexOf(n)
	if i < 0 || i+1 >= len(n.parent.children) {
		return nil
	}
	return n.parent.children[i+1]
}

// Data returns the content of a text or comment node.
func (n *Node) Data() string { return n.data }

// IsConnected reports whether n is reachable from a document, crossing
// shadow boundaries.
func (n *Node) IsConnected() bool {
	return n.Root().Type == DocumentNode
}

// Root returns the top of n's tree, crossing shadow roots to their host.
func (n *Node) Root() *Node {
	cur := n
	for {
		switch {
		case cur.parent != nil:
			cur = cur.parent
		case cur.host != nil:
			cur = cur.host
		default:
			return cur
		}
	}
}

// Contains reports whether other is n or a descendant of n (not crossing
// shadow roots).
func (n *Node) Contains(other *Node) bool {
	for cur := other; cur != nil; cur = cur.parent {
		if cur == n {
			return true
		}
	}
	return false
}

// Private returns the private data stored under key.
func (n *Node) Private(key any) any {
	if n.private == nil {
		return nil
	}
	return n.private[key]
}

// SetPrivate stores private data under key. A nil value deletes the entry.
func (n *Node) SetPrivate(key, value any) {
	if value == nil {
		delete(n.private, key)
		return
	}
	if n.private == nil {
		n.private = make(map[any]any)
	}
	n.private[key] = value
}

// AttachShadow attaches an open shadow root to an element and returns it.
// If one already exists it is returned unchanged.
func (n *Node) AttachShadow() *Node {
	if n.shadow == nil {
		n.shadow = &Node{Type: FragmentNode, host: n}
	}
	return n.shadow
}

// TextContent returns the concatenated text of n and its descendants.
func (n *Node) TextContent() string {
	switch n.Type {
	case TextNode, CommentNode:
		return n.data
	}
	var b strings.Builder
	n.collectText(&b)
	return b.String()
}

func (n *Node) collectText(b *strings.Builder) {
	for _, c := range n.children {
		switch c.Type {
		case TextNode:
			b.WriteString(c.data)
		case ElementNode, FragmentNode:
			c.collectText(b)
		}
	}
}

// SetTextContent replaces the content of n. For elements and fragments all
// children are replaced by a single text node.
func (n *Node) SetTextContent(text string) {
	switch n.Type {
	case TextNode, CommentNode:
		n.SetData(text)
		return
	}
	if text == "" {
		n.ReplaceChildren()
		return
	}
	n.ReplaceChildren(NewText(text))
}

// SetData updates the content of a text or comment node.
func (n *Node) SetData(text string) {
	if n.Type != TextNode && n.Type != CommentNode {
		return
	}
	old := n.data
	n.data = text
	notify(n, &Record{Type: RecordCharacterData, Target: n, OldValue: old})
}

// CloneNode copies n. Attributes and, when deep, descendants are copied;
// listeners, private data and shadow roots are not.
func (n *Node) CloneNode(deep bool) *Node {
	c := &Node{Type: n.Type, Tag: n.Tag, data: n.data}
	if len(n.attrs) > 0 {
		c.attrs = append([]Attr(nil), n.attrs...)
	}
	if deep {
		for _, child := range n.children {
			cc := child.CloneNode(true)
			cc.parent = c
			c.children = append(c.children, cc)
		}
	}
	return c
}

// Walk visits n and its descendants depth-first, not crossing into shadow
// roots. Returning false from fn skips the node's subtree.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range append([]*Node(nil), n.children...) {
		c.Walk(fn)
	}
}
