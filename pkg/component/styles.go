package component

import (
	"regexp"

	"github.com/legodom/lego/pkg/dom"
)

// StyleSets are named style sheets applied verbatim to shadow trees.
type StyleSets map[string]string

var selfRe = regexp.MustCompile(`\bself\b`)

// ScopeStyle rewrites the self selector to :host.
func ScopeStyle(css string) string { return selfRe.ReplaceAllString(css, ":host") }

// applyStyles scopes the template's own style elements and prepends the
// definition's style sets in order.
func (m *Manager) applyStyles(shadow *dom.Node, def *Definition) {
	for _, s := range shadow.QuerySelectorAll("style") {
		if css := s.TextContent(); selfRe.MatchString(css) {
			s.SetTextContent(ScopeStyle(css))
		}
	}

	ref := shadow.FirstChild()
	for _, name := range def.Styles {
		css, ok := m.cfg.StyleSets[name]
		if !ok {
			m.logger.Warn("unknown style set", "tag", def.Tag, "set", name)
			continue
		}
		el := dom.NewElement("style")
		el.SetAttribute("data-style-set", name)
		el.SetTextContent(css)
		_ = shadow.InsertBefore(el, ref)
	}
}
