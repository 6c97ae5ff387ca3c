package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse parses a complete HTML document.
func Parse(markup string) (*Node, error) {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("dom: parse document: %w", err)
	}
	return fromHTML(root), nil
}

// NewDocument returns an empty document with html, head and body elements.
func NewDocument() *Node {
	doc, _ := Parse("<html><head></head><body></body></html>")
	return doc
}

// ParseFragment parses markup as the content of a body element.
func ParseFragment(markup string) ([]*Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), ctx)
	if err != nil {
		return nil, fmt.Errorf("dom: parse fragment: %w", err)
	}
	out := make([]*Node, 0, len(nodes))
	for _, hn := range nodes {
		if n := fromHTML(hn); n != nil {
			out = append(out, n)
		}
	}
	return out, nil
}

// FragmentFromHTML parses markup into a detached fragment.
func FragmentFromHTML(markup string) (*Node, error) {
	nodes, err := ParseFragment(markup)
	if err != nil {
		return nil, err
	}
	frag := NewFragment()
	for _, c := range nodes {
		c.parent = frag
		frag.children = append(frag.children, c)
	}
	return frag, nil
}

// SetInnerHTML replaces n's children with the parsed markup.
func (n *Node) SetInnerHTML(markup string) error {
	nodes, err := ParseFragment(markup)
	if err != nil {
		return err
	}
	n.ReplaceChildren(nodes...)
	return nil
}

// Body returns the first body element under n, or nil.
func (n *Node) Body() *Node {
	return n.QuerySelector("body")
}

func fromHTML(hn *html.Node) *Node {
	var n *Node
	switch hn.Type {
	case html.ElementNode:
		n = &Node{Type: ElementNode, Tag: hn.Data}
		for _, a := range hn.Attr {
			name := a.Key
			if a.Namespace != "" {
				name = a.Namespace + ":" + a.Key
			}
			n.attrs = append(n.attrs, Attr{Name: name, Value: a.Val})
		}
	case html.TextNode:
		return &Node{Type: TextNode, data: hn.Data}
	case html.CommentNode:
		return &Node{Type: CommentNode, data: hn.Data}
	case html.DocumentNode:
		n = &Node{Type: DocumentNode}
	default:
		return nil
	}
	for c := hn.FirstChild; c != nil; c = c.NextSibling {
		if cn := fromHTML(c); cn != nil {
			cn.parent = n
			n.children = append(n.children, cn)
		}
	}
	return n
}

// RenderOptions controls serialization.
type RenderOptions struct {
	// Composed serializes shadow roots as declarative shadow DOM
	// (<template shadowrootmode="open">) in front of the host's children.
	Composed bool
}

// Render writes the serialization of n to w.
func Render(w io.Writer, n *Node, opts RenderOptions) error {
	switch n.Type {
	case DocumentNode:
		if _, err := io.WriteString(w, "<!DOCTYPE html>"); err != nil {
			return err
		}
		for _, c := range n.children {
			if err := html.Render(w, toHTML(c, opts)); err != nil {
				return err
			}
		}
		return nil
	case FragmentNode:
		for _, c := range n.children {
			if err := html.Render(w, toHTML(c, opts)); err != nil {
				return err
			}
		}
		return nil
	}
	return html.Render(w, toHTML(n, opts))
}

// OuterHTML returns the serialization of n.
func (n *Node) OuterHTML() string {
	var buf bytes.Buffer
	_ = Render(&buf, n, RenderOptions{})
	return buf.String()
}

// InnerHTML returns the serialization of n's children.
func (n *Node) InnerHTML() string {
	var buf bytes.Buffer
	for _, c := range n.children {
		_ = html.Render(&buf, toHTML(c, RenderOptions{}))
	}
	return buf.String()
}

// ComposedInnerHTML serializes n's children including every shadow tree
// below them.
func (n *Node) ComposedInnerHTML() string {
	var buf bytes.Buffer
	for _, c := range n.children {
		_ = html.Render(&buf, toHTML(c, RenderOptions{Composed: true}))
	}
	return buf.String()
}

// ComposedHTML serializes n including every shadow tree below it.
func (n *Node) ComposedHTML() string {
	var buf bytes.Buffer
	_ = Render(&buf, n, RenderOptions{Composed: true})
	return buf.String()
}

func toHTML(n *Node, opts RenderOptions) *html.Node {
	switch n.Type {
	case TextNode:
		return &html.Node{Type: html.TextNode, Data: n.data}
	case CommentNode:
		return &html.Node{Type: html.CommentNode, Data: n.data}
	}
	hn := &html.Node{Type: html.ElementNode, Data: n.Tag, DataAtom: atom.Lookup([]byte(n.Tag))}
	if n.Type != ElementNode {
		hn = &html.Node{Type: html.DocumentNode}
	}
	for _, a := range n.attrs {
		hn.Attr = append(hn.Attr, html.Attribute{Key: a.Name, Val: a.Value})
	}
	if opts.Composed && n.shadow != nil {
		tpl := &html.Node{
			Type:     html.ElementNode,
			Data:     "template",
			DataAtom: atom.Template,
			Attr:     []html.Attribute{{Key: "shadowrootmode", Val: "open"}},
		}
		for _, c := range n.shadow.children {
			tpl.AppendChild(toHTML(c, opts))
		}
		hn.AppendChild(tpl)
	}
	for _, c := range n.children {
		hn.AppendChild(toHTML(c, opts))
	}
	return hn
}
