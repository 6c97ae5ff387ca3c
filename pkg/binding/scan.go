package binding

import (
	"regexp"
	"strings"

	"github.com/legodom/lego/pkg/dom"
)

// Kind classifies a binding.
type Kind uint8

const (
	KindIf       Kind = iota + 1 // b-if: conditional presence
	KindShow                     // b-show: conditional visibility
	KindFor                      // b-for: list repeat
	KindTextPath                 // b-text: plain path, no expression
	KindHTML                     // b-html: raw markup
	KindSync                     // b-sync: two-way form binding
	KindRef                      // b-id: element reference
	KindEvent                    // @event listener
	KindAttr                     // interpolated attribute value
	KindText                     // interpolated text node
)

var kindNames = [...]string{
	KindIf:       "if",
	KindShow:     "show",
	KindFor:      "for",
	KindTextPath: "text-path",
	KindHTML:     "html",
	KindSync:     "sync",
	KindRef:      "ref",
	KindEvent:    "event",
	KindAttr:     "attr",
	KindText:     "text",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// Directive attribute names.
const (
	AttrIf   = "b-if"
	AttrShow = "b-show"
	AttrFor  = "b-for"
	AttrText = "b-text"
	AttrHTML = "b-html"
	AttrSync = "b-sync"
	AttrRef  = "b-id"
	AttrData = "b-data"

	// EventPrefix starts an event listener attribute such as @click.
	EventPrefix = "@"
)

// Descriptor is one compiled binding. Descriptors are values and are not
// modified after Scan returns.
type Descriptor struct {
	Kind Kind
	Node *dom.Node

	// Expr is the expression of if, show, html and event bindings, the path
	// of sync bindings, and the list expression of for bindings.
	Expr string

	// Path is the b-text path.
	Path string

	// Name is the attribute name (attr), event type (event), reference
	// name (ref) or loop variable (for).
	Name string

	// Index is the optional loop index variable of a for binding.
	Index string

	// Template is the raw interpolated value (text, attr) or the captured
	// child markup of a for binding.
	Template string
	Segments []Segment

	// Placeholder marks the position of a detached b-if node.
	Placeholder *dom.Node
}

// Bindings is the result of a scan.
type Bindings struct {
	Items []Descriptor

	// Global is set when any binding references the global state.
	Global bool
}

// Refs returns the b-id references in scan order.
func (b *Bindings) Refs() map[string]*dom.Node {
	refs := make(map[string]*dom.Node)
	for _, d := range b.Items {
		if d.Kind == KindRef {
			if _, ok := refs[d.Name]; !ok {
				refs[d.Name] = d.Node
			}
		}
	}
	return refs
}

var (
	forPattern    = regexp.MustCompile(`^\s*\(?\s*([A-Za-z_$][\w$]*)\s*(?:,\s*([A-Za-z_$][\w$]*)\s*)?\)?\s+in\s+(.+?)\s*$`)
	globalPattern = regexp.MustCompile(`(^|[^\w$.])(global|\$route)\b`)
)

// ParseFor splits a b-for value of the form "item in list" or
// "(item, i) in list".
func ParseFor(v string) (item, index, list string, ok bool) {
	m := forPattern.FindStringSubmatch(v)
	if m == nil {
		return "", "", "", false
	}
	return m[1], m[2], m[3], true
}

// MentionsGlobal reports whether an expression refers to the global state,
// directly or through $route.
func MentionsGlobal(src string) bool { return globalPattern.MatchString(src) }

// IsDirective reports whether an attribute is a directive or listener and
// therefore never interpolated.
func IsDirective(name string) bool {
	return strings.HasPrefix(name, "b-") || strings.HasPrefix(name, EventPrefix)
}

// Scan walks root depth-first and returns its bindings. The children of a
// b-for element are captured into the descriptor's template and removed
// from the tree; they are scanned separately per list item.
func Scan(root *dom.Node, d Delimiters) *Bindings {
	s := &scanner{d: d, out: &Bindings{}, capture: true}
	for _, c := range root.Children() {
		s.walk(c)
	}
	return s.out
}

// ScanNode is Scan including root itself, as used for list fragments.
func ScanNode(root *dom.Node, d Delimiters) *Bindings {
	s := &scanner{d: d, out: &Bindings{}, capture: true}
	s.walk(root)
	return s.out
}

// Interactive returns the event and sync bindings under root, including
// root itself, without modifying the tree. Subtrees of b-for elements are
// skipped.
func Interactive(root *dom.Node) []Descriptor {
	s := &scanner{out: &Bindings{}}
	s.walk(root)
	var out []Descriptor
	for _, b := range s.out.Items {
		if b.Kind == KindEvent || b.Kind == KindSync {
			out = append(out, b)
		}
	}
	return out
}

type scanner struct {
	d   Delimiters
	out *Bindings

	// capture enables b-for template capture and interpolation scanning.
	capture bool
}

func (s *scanner) add(b Descriptor, exprs ...string) {
	for _, e := range exprs {
		if MentionsGlobal(e) {
			s.out.Global = true
		}
	}
	s.out.Items = append(s.out.Items, b)
}

func (s *scanner) walk(n *dom.Node) {
	switch n.Type {
	case dom.TextNode:
		if s.capture && s.d.Open != "" && s.d.Has(n.Data()) {
			tpl := n.Data()
			s.add(Descriptor{Kind: KindText, Node: n, Template: tpl, Segments: s.d.Split(tpl)}, tpl)
		}
		return
	case dom.FragmentNode, dom.DocumentNode:
		for _, c := range n.Children() {
			s.walk(c)
		}
		return
	case dom.ElementNode:
	default:
		return
	}

	if s.element(n) {
		return
	}
	for _, c := range n.Children() {
		s.walk(c)
	}
}

// element classifies n and reports whether its subtree must be skipped.
func (s *scanner) element(n *dom.Node) (skip bool) {
	if v, ok := n.GetAttribute(AttrIf); ok {
		s.add(Descriptor{Kind: KindIf, Node: n, Expr: v, Placeholder: dom.NewComment(AttrIf)}, v)
	}
	if v, ok := n.GetAttribute(AttrShow); ok {
		s.add(Descriptor{Kind: KindShow, Node: n, Expr: v}, v)
	}
	if v, ok := n.GetAttribute(AttrFor); ok {
		if item, index, list, ok := ParseFor(v); ok {
			skip = true
			if s.capture {
				tpl := n.InnerHTML()
				n.ReplaceChildren()
				s.add(Descriptor{Kind: KindFor, Node: n, Expr: list, Name: item, Index: index, Template: tpl}, list, tpl)
			}
		}
	}
	if v, ok := n.GetAttribute(AttrText); ok {
		s.add(Descriptor{Kind: KindTextPath, Node: n, Path: strings.TrimSpace(v)}, v)
	}
	if v, ok := n.GetAttribute(AttrHTML); ok {
		s.add(Descriptor{Kind: KindHTML, Node: n, Expr: v}, v)
	}
	if v, ok := n.GetAttribute(AttrSync); ok {
		s.add(Descriptor{Kind: KindSync, Node: n, Expr: strings.TrimSpace(v)}, v)
	}
	if v, ok := n.GetAttribute(AttrRef); ok && v != "" {
		s.add(Descriptor{Kind: KindRef, Node: n, Name: v})
	}
	for _, a := range n.Attrs() {
		if strings.HasPrefix(a.Name, EventPrefix) && len(a.Name) > 1 {
			s.add(Descriptor{Kind: KindEvent, Node: n, Name: a.Name[1:], Expr: a.Value})
		}
	}
	if s.capture && s.d.Open != "" {
		for _, a := range n.Attrs() {
			if IsDirective(a.Name) || !s.d.Has(a.Value) {
				continue
			}
			s.add(Descriptor{Kind: KindAttr, Node: n, Name: a.Name, Template: a.Value, Segments: s.d.Split(a.Value)}, a.Value)
		}
	}
	return skip
}
