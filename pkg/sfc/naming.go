package sfc

import (
	"path"
	"regexp"
	"strings"
	"unicode"
)

// Ext is the single-file component extension.
const Ext = ".lego"

var validName = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)+$`)

// Kebab converts a component name written in PascalCase, camelCase or
// snake_case to kebab-case. Acronyms stay together: "HTMLView" becomes
// "html-view".
func Kebab(name string) string {
	rs := []rune(strings.ReplaceAll(strings.TrimSpace(name), "_", "-"))
	var b strings.Builder
	for i, r := range rs {
		if unicode.IsUpper(r) && i > 0 {
			prev := rs[i-1]
			nextLower := i+1 < len(rs) && unicode.IsLower(rs[i+1])
			if prev != '-' && (unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower)) {
				b.WriteByte('-')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// NameFromFile derives a component name from a file path:
// "components/TodoList.lego" becomes "todo-list".
func NameFromFile(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	return Kebab(strings.TrimSuffix(base, Ext))
}

// ValidName reports whether name is a usable custom element name:
// lowercase kebab-case with at least one hyphen.
func ValidName(name string) bool { return validName.MatchString(name) }
