package binding

import (
	"fmt"
	"strings"
)

// Delimiters mark interpolations inside text and attribute values.
type Delimiters struct {
	Open, Close string
}

var (
	// Brackets is the default style: [[ expr ]].
	Brackets = Delimiters{Open: "[[", Close: "]]"}

	// Mustache is the alternative style: {{ expr }}.
	Mustache = Delimiters{Open: "{{", Close: "}}"}
)

// Syntax names accepted by ParseSyntax.
const (
	SyntaxBrackets = "brackets"
	SyntaxMustache = "mustache"
)

// ParseSyntax maps a configured syntax name to its delimiters. The empty
// string selects Brackets.
func ParseSyntax(name string) (Delimiters, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", SyntaxBrackets:
		return Brackets, nil
	case SyntaxMustache:
		return Mustache, nil
	}
	return Delimiters{}, fmt.Errorf("binding: unknown syntax %q", name)
}

func (d Delimiters) String() string { return d.Open + " " + d.Close }

// Has reports whether s contains an interpolation start token.
func (d Delimiters) Has(s string) bool { return strings.Contains(s, d.Open) }

// Segment is one piece of an interpolated template: literal text or an
// expression.
type Segment struct {
	Text   string
	IsExpr bool
}

// Split breaks s into literal and expression segments. Expression text is
// trimmed. An unterminated interpolation is kept as literal text.
func (d Delimiters) Split(s string) []Segment {
	var out []Segment
	for {
		i := strings.Index(s, d.Open)
		if i < 0 {
			break
		}
		j := strings.Index(s[i+len(d.Open):], d.Close)
		if j < 0 {
			break
		}
		if i > 0 {
			out = append(out, Segment{Text: s[:i]})
		}
		expr := s[i+len(d.Open) : i+len(d.Open)+j]
		out = append(out, Segment{Text: strings.TrimSpace(expr), IsExpr: true})
		s = s[i+len(d.Open)+j+len(d.Close):]
	}
	if s != "" {
		out = append(out, Segment{Text: s})
	}
	return out
}
