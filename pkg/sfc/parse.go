package sfc

import (
	stderrors "errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/legodom/lego/internal/errors"
	"github.com/legodom/lego/pkg/expr"
)

// File is a parsed single-file component.
type File struct {
	// Name is the kebab-case component name derived from the file name.
	Name string

	// Template is the inner markup of the <template> section.
	Template string

	// Styles lists the style sets named by the template's b-styles
	// attribute.
	Styles []string

	// Data is the template-level b-data literal, unparsed.
	Data string

	// Script is the raw <script> section.
	Script string

	// State is the evaluated script object.
	State map[string]any

	// Style is the raw <style> section.
	Style string
}

var (
	templateRe = regexp.MustCompile(`(?s)<template(\s[^>]*)?>(.*)</template>`)
	scriptRe   = regexp.MustCompile(`(?s)<script(\s[^>]*)?>(.*?)</script>`)
	styleRe    = regexp.MustCompile(`(?s)<style(\s[^>]*)?>(.*?)</style>`)
	attrRe     = regexp.MustCompile(`([\w:-]+)\s*=\s*(?:"([^"]*)"|'([^']*)')`)
	exportRe   = regexp.MustCompile(`^export\s+default\s+`)
)

// Parse splits src into its sections and evaluates the script. filename is
// used for the component name and error locations.
//
// The script must be a data object literal, optionally prefixed with
// "export default". Methods and lifecycle hooks are attached in Go.
func Parse(src, filename string) (*File, error) {
	f := &File{Name: NameFromFile(filename)}
	if !ValidName(f.Name) {
		return nil, errors.New("L001").
			WithDetail(fmt.Sprintf("%q does not produce a hyphenated component name (got %q).", filename, f.Name)).
			WithSuggestion("Name the file like todo-list.lego, TodoList.lego or todo_list.lego")
	}

	tplStart, tplEnd := -1, -1
	if m := templateRe.FindStringSubmatchIndex(src); m != nil {
		tplStart, tplEnd = m[0], m[1]
		f.Template = strings.TrimSpace(src[m[4]:m[5]])
		if m[2] >= 0 {
			attrs := parseAttrs(src[m[2]:m[3]])
			f.Styles = strings.Fields(attrs["b-styles"])
			f.Data = attrs["b-data"]
		}
	}

	scriptStart := -1
	if m := section(scriptRe, src, tplStart, tplEnd); m != nil {
		scriptStart = m[4]
		f.Script = src[m[4]:m[5]]
	}
	if m := section(styleRe, src, tplStart, tplEnd); m != nil {
		f.Style = strings.TrimSpace(src[m[4]:m[5]])
	}

	if f.Template == "" && strings.TrimSpace(f.Script) == "" && f.Style == "" {
		return nil, errors.New("L020").WithSource(filename, src, 0)
	}

	state, err := parseScript(f.Script)
	if err != nil {
		le := errors.New("L021").Wrap(err).
			WithExample("<script>\nexport default {\n  count: 0,\n  items: []\n}\n</script>")
		offset := max(scriptStart, 0)
		var se *expr.SyntaxError
		if stderrors.As(err, &se) {
			offset += leadingTrim(f.Script) + se.Pos
		}
		return nil, le.WithSource(filename, src, offset)
	}
	f.State = state
	return f, nil
}

// section returns the first match of re outside the template section, so
// <style> or <script> tags inside markup are not taken as sections.
func section(re *regexp.Regexp, src string, tplStart, tplEnd int) []int {
	for _, m := range re.FindAllStringSubmatchIndex(src, -1) {
		if m[0] > tplStart && m[0] < tplEnd {
			continue
		}
		return m
	}
	return nil
}

func parseScript(script string) (map[string]any, error) {
	body := strings.TrimSpace(script)
	body = exportRe.ReplaceAllString(body, "")
	body = strings.TrimSpace(strings.TrimSuffix(body, ";"))
	return expr.ParseData(body)
}

// leadingTrim returns the offset of the object literal inside script.
func leadingTrim(script string) int {
	body := strings.TrimLeft(script, " \t\r\n")
	n := len(script) - len(body)
	if loc := exportRe.FindStringIndex(body); loc != nil {
		n += loc[1]
	}
	return n
}

func parseAttrs(s string) map[string]string {
	out := make(map[string]string)
	for _, m := range attrRe.FindAllStringSubmatch(s, -1) {
		v := m[2]
		if v == "" {
			v = m[3]
		}
		out[m[1]] = v
	}
	return out
}

// Markup returns the template with the component's own style prepended, as
// installed into each shadow root.
func (f *File) Markup() string {
	if f.Style == "" {
		return f.Template
	}
	return "<style>" + f.Style + "</style>\n" + f.Template
}
