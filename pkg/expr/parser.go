package expr

import "fmt"

// SyntaxError reports a parse failure and the byte offset where it occurred.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("expr: syntax error at %d: %s", e.Pos, e.Msg)
}

var binaryPrec = map[string]int{
	"??": 1,
	"||": 2,
	"&&": 3,
	"==": 4, "!=": 4, "===": 4, "!==": 4,
	"<": 5, "<=": 5, ">": 5, ">=": 5,
	"+": 6, "-": 6,
	"*": 7, "/": 7, "%": 7,
}

var assignOps = map[string]bool{"=": true, "+=": true, "-=": true, "*=": true, "/=": true}

type parser struct {
	toks []token
	pos  int
}

// Parse compiles src into an AST. Statements separated by ';' form a
// Sequence.
func Parse(src string) (Node, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	return p.parseProgram()
}

// ParseObjectLiteral parses src as a single object literal, as used by
// b-data attributes. Surrounding whitespace is allowed.
func ParseObjectLiteral(src string) (*ObjectLit, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	if !p.is("{") {
		return nil, p.errorf("expected object literal")
	}
	n, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, p.errorf("unexpected %s after object literal", p.peek())
	}
	return n.(*ObjectLit), nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) is(punct string) bool {
	t := p.peek()
	return t.kind == tokPunct && t.text == punct
}

func (p *parser) accept(punct string) bool {
	if p.is(punct) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expect(punct string) error {
	if !p.accept(punct) {
		return p.errorf("expected %q, found %s", punct, p.peek())
	}
	return nil
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Pos: p.peek().pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) parseProgram() (Node, error) {
	var exprs []Node
	for p.peek().kind != tokEOF {
		if p.accept(";") {
			continue
		}
		n, err := p.parseComma()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, n)
		if p.peek().kind != tokEOF && !p.is(";") {
			return nil, p.errorf("unexpected %s", p.peek())
		}
	}
	switch len(exprs) {
	case 0:
		return &Literal{}, nil
	case 1:
		return exprs[0], nil
	}
	return &Sequence{Exprs: exprs}, nil
}

func (p *parser) parseComma() (Node, error) {
	first, err := p.parseAssign()
	if err != nil {
		return nil, err
	}
	if !p.is(",") {
		return first, nil
	}
	seq := &Sequence{Exprs: []Node{first}}
	for p.accept(",") {
		n, err := p.parseAssign()
		if err != nil {
			return nil, err
		}
		seq.Exprs = append(seq.Exprs, n)
	}
	return seq, nil
}

func (p *parser) parseAssign() (Node, error) {
	left, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	t := p.peek()
	if t.kind != tokPunct || !assignOps[t.text] {
		return left, nil
	}
	if !isTarget(left) {
		return nil, p.errorf("invalid assignment target")
	}
	p.next()
	value, err := p.parseAssign()
	if err != nil {
		return nil, err
	}
	return &Assign{Op: t.text, Target: left, Value: value}, nil
}

func isTarget(n Node) bool {
	switch x := n.(type) {
	case *Ident:
		return true
	case *Member:
		return !x.Optional
	}
	return false
}

func (p *parser) parseConditional() (Node, error) {
	test, err := p.parseBinary(0)
	if err != nil {
		return nil, err
	}
	if !p.accept("?") {
		return test, nil
	}
	then, err := p.parseAssign()
	if err != nil {
		return nil, err
	}
	if err := p.expect(":"); err != nil {
		return nil, err
	}
	els, err := p.parseAssign()
	if err != nil {
		return nil, err
	}
	return &Conditional{Test: test, Then: then, Else: els}, nil
}

func (p *parser) parseBinary(minPrec int) (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		prec, ok := binaryPrec[t.text]
		if t.kind != tokPunct || !ok || prec <= minPrec {
			return left, nil
		}
		p.next()
		right, err := p.parseBinary(prec)
		if err != nil {
			return nil, err
		}
		switch t.text {
		case "&&", "||", "??":
			left = &Logical{Op: t.text, Left: left, Right: right}
		default:
			left = &Binary{Op: t.text, Left: left, Right: right}
		}
	}
}

func (p *parser) parseUnary() (Node, error) {
	t := p.peek()
	switch {
	case t.kind == tokPunct && (t.text == "!" || t.text == "-" || t.text == "+"),
		t.kind == tokIdent && t.text == "typeof":
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: t.text, Operand: operand}, nil

	case t.kind == tokPunct && (t.text == "++" || t.text == "--"):
		p.next()
		target, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if !isTarget(target) {
			return nil, p.errorf("invalid %s operand", t.text)
		}
		return &Update{Op: t.text, Prefix: true, Target: target}, nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (Node, error) {
	n, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.accept("."):
			name := p.next()
			if name.kind != tokIdent {
				return nil, p.errorf("expected property name after '.'")
			}
			n = &Member{Object: n, Property: &Literal{Value: name.text}}

		case p.accept("?."):
			switch {
			case p.accept("["):
				prop, err := p.parseComma()
				if err != nil {
					return nil, err
				}
				if err := p.expect("]"); err != nil {
					return nil, err
				}
				n = &Member{Object: n, Property: prop, Computed: true, Optional: true}
			default:
				name := p.next()
				if name.kind != tokIdent {
					return nil, p.errorf("expected property name after '?.'")
				}
				n = &Member{Object: n, Property: &Literal{Value: name.text}, Optional: true}
			}

		case p.accept("["):
			prop, err := p.parseComma()
			if err != nil {
				return nil, err
			}
			if err := p.expect("]"); err != nil {
				return nil, err
			}
			n = &Member{Object: n, Property: prop, Computed: true}

		case p.accept("("):
			args, err := p.parseList(")")
			if err != nil {
				return nil, err
			}
			n = &Call{Callee: n, Args: args}

		case p.is("++") || p.is("--"):
			if !isTarget(n) {
				return n, nil
			}
			op := p.next().text
			return &Update{Op: op, Target: n}, nil

		default:
			return n, nil
		}
	}
}

// parseList parses comma separated expressions up to the closing
// punctuator, allowing a trailing comma.
func (p *parser) parseList(closing string) ([]Node, error) {
	var out []Node
	for !p.accept(closing) {
		n, err := p.parseAssign()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
		if !p.accept(",") {
			if err := p.expect(closing); err != nil {
				return nil, err
			}
			break
		}
	}
	return out, nil
}

func (p *parser) parsePrimary() (Node, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		return &Literal{Value: t.num}, nil
	case tokString:
		return &Literal{Value: t.text}, nil
	case tokIdent:
		switch t.text {
		case "true":
			return &Literal{Value: true}, nil
		case "false":
			return &Literal{Value: false}, nil
		case "null", "undefined":
			return &Literal{}, nil
		}
		return &Ident{Name: t.text}, nil
	case tokPunct:
		switch t.text {
		case "(":
			n, err := p.parseComma()
			if err != nil {
				return nil, err
			}
			if err := p.expect(")"); err != nil {
				return nil, err
			}
			return n, nil
		case "[":
			elems, err := p.parseList("]")
			if err != nil {
				return nil, err
			}
			return &ArrayLit{Elems: elems}, nil
		case "{":
			return p.parseObject()
		}
	}
	if t.kind != tokEOF {
		p.pos--
	}
	return nil, p.errorf("unexpected %s", t)
}

func (p *parser) parseObject() (Node, error) {
	obj := &ObjectLit{}
	for !p.accept("}") {
		t := p.next()
		var key string
		switch t.kind {
		case tokIdent, tokString:
			key = t.text
		case tokNumber:
			key = formatNumber(t.num)
		default:
			if t.kind != tokEOF {
				p.pos--
			}
			return nil, p.errorf("expected property key, found %s", t)
		}

		var value Node
		if p.accept(":") {
			v, err := p.parseAssign()
			if err != nil {
				return nil, err
			}
			value = v
		} else if t.kind == tokIdent {
			value = &Ident{Name: key}
		} else {
			return nil, p.errorf("expected ':' after %s", t)
		}
		obj.Keys = append(obj.Keys, key)
		obj.Values = append(obj.Values, value)

		if !p.accept(",") {
			if err := p.expect("}"); err != nil {
				return nil, err
			}
			break
		}
	}
	return obj, nil
}
