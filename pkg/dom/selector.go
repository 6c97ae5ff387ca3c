package dom

import (
	"errors"
	"strings"
)

// ErrSelector is returned for selectors the engine cannot parse.
var ErrSelector = errors.New("dom: invalid selector")

// Selector is a compiled CSS selector group.
//
// The supported subset covers what templates and route targets use: type
// and universal selectors, #id, .class, attribute selectors with
// = ~= ^= $= *=, descendant and child combinators, and comma groups.
type Selector struct {
	alts []complexSel
}

type complexSel struct {
	// parts are ordered left to right; combs[i] joins parts[i] and parts[i+1].
	parts []compound
	combs []byte
}

type attrSel struct {
	name, op, value string
}

type compound struct {
	tag     string
	id      string
	classes []string
	attrs   []attrSel
}

// CompileSelector parses a selector group.
func CompileSelector(s string) (*Selector, error) {
	sel := &Selector{}
	for _, part := range splitTopLevel(s, ',') {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, ErrSelector
		}
		cx, err := parseComplex(part)
		if err != nil {
			return nil, err
		}
		sel.alts = append(sel.alts, cx)
	}
	if len(sel.alts) == 0 {
		return nil, ErrSelector
	}
	return sel, nil
}

func splitTopLevel(s string, sep byte) []string {
	var out []string
	depth, start := 0, 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '[':
			depth++
		case c == ']':
			depth--
		case c == sep && depth == 0:
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}

func parseComplex(s string) (complexSel, error) {
	var cx complexSel
	i := 0
	pending := byte(0)
	for i < len(s) {
		switch c := s[i]; {
		case c == ' ' || c == '\t' || c == '\n':
			if pending == 0 && len(cx.parts) > 0 {
				pending = ' '
			}
			i++
			continue
		case c == '>':
			if len(cx.parts) == 0 {
				return cx, ErrSelector
			}
			pending = '>'
			i++
			continue
		}
		cp, n, err := parseCompound(s[i:])
		if err != nil {
			return cx, err
		}
		if len(cx.parts) > 0 {
			if pending == 0 {
				return cx, ErrSelector
			}
			cx.combs = append(cx.combs, pending)
		}
		cx.parts = append(cx.parts, cp)
		pending = 0
		i += n
	}
	if len(cx.parts) == 0 || pending == '>' {
		return cx, ErrSelector
	}
	return cx, nil
}

func isIdentByte(c byte) bool {
	return c == '-' || c == '_' || c == '@' || c == ':' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c >= 0x80
}

func readIdent(s string) string {
	i := 0
	for i < len(s) && isIdentByte(s[i]) {
		i++
	}
	return s[:i]
}

func parseCompound(s string) (compound, int, error) {
	var cp compound
	i := 0
	if i < len(s) && s[i] == '*' {
		i++
	} else if id := readIdent(s); id != "" {
		cp.tag = strings.ToLower(id)
		i += len(id)
	}
	for i < len(s) {
		switch s[i] {
		case '#':
			id := readIdent(s[i+1:])
			if id == "" {
				return cp, 0, ErrSelector
			}
			cp.id = id
			i += 1 + len(id)
		case '.':
			cl := readIdent(s[i+1:])
			if cl == "" {
				return cp, 0, ErrSelector
			}
			cp.classes = append(cp.classes, cl)
			i += 1 + len(cl)
		case '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return cp, 0, ErrSelector
			}
			as, err := parseAttrSel(s[i+1 : i+end])
			if err != nil {
				return cp, 0, err
			}
			cp.attrs = append(cp.attrs, as)
			i += end + 1
		default:
			if i == 0 {
				return cp, 0, ErrSelector
			}
			return cp, i, nil
		}
	}
	if i == 0 {
		return cp, 0, ErrSelector
	}
	return cp, i, nil
}

func parseAttrSel(body string) (attrSel, error) {
	body = strings.TrimSpace(body)
	for _, op := range []string{"~=", "^=", "$=", "*=", "="} {
		if k := strings.Index(body, op); k > 0 {
			val := strings.TrimSpace(body[k+len(op):])
			val = strings.Trim(val, `"'`)
			return attrSel{name: strings.ToLower(strings.TrimSpace(body[:k])), op: op, value: val}, nil
		}
	}
	if body == "" {
		return attrSel{}, ErrSelector
	}
	return attrSel{name: strings.ToLower(body)}, nil
}

func (cp *compound) matches(n *Node) bool {
	if n.Type != ElementNode {
		return false
	}
	if cp.tag != "" && cp.tag != n.Tag {
		return false
	}
	if cp.id != "" && n.Attr("id") != cp.id {
		return false
	}
	for _, c := range cp.classes {
		if !n.HasClass(c) {
			return false
		}
	}
	for _, a := range cp.attrs {
		v, ok := n.GetAttribute(a.name)
		if !ok {
			return false
		}
		switch a.op {
		case "=":
			ok = v == a.value
		case "~=":
			ok = false
			for _, f := range strings.Fields(v) {
				if f == a.value {
					ok = true
				}
			}
		case "^=":
			ok = strings.HasPrefix(v, a.value)
		case "$=":
			ok = strings.HasSuffix(v, a.value)
		case "*=":
			ok = strings.Contains(v, a.value)
		}
		if !ok {
			return false
		}
	}
	return true
}

// Match reports whether n matches the selector. Ancestors are searched up to
// scope (exclusive); a nil scope searches to the tree root.
func (s *Selector) Match(n *Node, scope *Node) bool {
	for i := range s.alts {
		if s.alts[i].match(n, scope) {
			return true
		}
	}
	return false
}

func (cx *complexSel) match(n *Node, scope *Node) bool {
	return cx.matchAt(len(cx.parts)-1, n, scope)
}

func (cx *complexSel) matchAt(i int, n *Node, scope *Node) bool {
	if !cx.parts[i].matches(n) {
		return false
	}
	if i == 0 {
		return true
	}
	switch cx.combs[i-1] {
	case '>':
		p := n.parent
		if p == nil || p == scope {
			return false
		}
		return cx.matchAt(i-1, p, scope)
	default:
		for p := n.parent; p != nil && p != scope; p = p.parent {
			if cx.matchAt(i-1, p, scope) {
				return true
			}
		}
		return false
	}
}

// QuerySelectorAll returns the descendants of n matching sel in document
// order. Shadow trees are not searched.
func (n *Node) QuerySelectorAll(sel string) []*Node {
	s, err := CompileSelector(sel)
	if err != nil {
		return nil
	}
	return s.All(n)
}

// QuerySelector returns the first descendant of n matching sel, or nil.
func (n *Node) QuerySelector(sel string) *Node {
	s, err := CompileSelector(sel)
	if err != nil {
		return nil
	}
	return s.First(n)
}

// All returns the descendants of root matching s.
func (s *Selector) All(root *Node) []*Node {
	var out []*Node
	for _, c := range root.children {
		c.Walk(func(x *Node) bool {
			if s.Match(x, nil) {
				out = append(out, x)
			}
			return true
		})
	}
	return out
}

// First returns the first descendant of root matching s.
func (s *Selector) First(root *Node) *Node {
	var found *Node
	var visit func(*Node) bool
	visit = func(x *Node) bool {
		if s.Match(x, nil) {
			found = x
			return false
		}
		for _, c := range x.children {
			if !visit(c) {
				return false
			}
		}
		return true
	}
	for _, c := range root.children {
		if !visit(c) {
			break
		}
	}
	return found
}

// GetElementByID returns the first descendant element with the given id.
func (n *Node) GetElementByID(id string) *Node {
	var found *Node
	for _, c := range n.children {
		c.Walk(func(x *Node) bool {
			if found != nil {
				return false
			}
			if x.Type == ElementNode && x.Attr("id") == id {
				found = x
				return false
			}
			return true
		})
		if found != nil {
			break
		}
	}
	return found
}
