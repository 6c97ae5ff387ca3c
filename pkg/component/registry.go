package component

import (
	"maps"
	"slices"
	"strings"

	"github.com/legodom/lego/internal/errors"
	"github.com/legodom/lego/pkg/dom"
	"github.com/legodom/lego/pkg/reactive"
	"github.com/legodom/lego/pkg/sfc"
)

// Template element attributes read by LoadTemplates.
const (
	AttrComponent = "b-component"
	AttrStyles    = "b-styles"
)

// Method is a component method callable from template expressions. state
// is the instance's reactive state.
type Method func(state *reactive.Object, args ...any) (any, error)

// Hook is a lifecycle callback.
type Hook func(c *Context) error

// Script is the Go side of a component: default state, methods and
// lifecycle hooks.
type Script struct {
	// Data holds the script-level state defaults. Every instance receives
	// a deep copy.
	Data map[string]any

	Methods map[string]Method

	Mounted   Hook
	Unmounted Hook
	Updated   Hook
}

// Definition is a registered component.
type Definition struct {
	Tag string

	// Template is the shadow tree markup.
	Template string

	// Styles names the style sets applied to every instance.
	Styles []string

	// Data is the template-level b-data literal.
	Data string

	Script Script

	fragment *dom.Node
}

// Fragment returns a fresh copy of the parsed template.
func (d *Definition) Fragment() *dom.Node { return d.fragment.CloneNode(true) }

// FromSFC builds a definition from a parsed single-file component.
func FromSFC(f *sfc.File) *Definition {
	return &Definition{
		Tag:      f.Name,
		Template: f.Markup(),
		Styles:   f.Styles,
		Data:     f.Data,
		Script:   Script{Data: f.State},
	}
}

// Registry holds component definitions by tag. It starts empty.
type Registry struct {
	defs  map[string]*Definition
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Definition)}
}

// Define validates and registers def, replacing any definition with the
// same tag.
func (r *Registry) Define(def *Definition) error {
	def.Tag = strings.ToLower(strings.TrimSpace(def.Tag))
	if !sfc.ValidName(def.Tag) {
		return errors.New("L001").
			WithDetail(`Component name "` + def.Tag + `" must be kebab-case with at least one hyphen.`).
			WithSuggestion("Use a name like todo-list or user-card")
	}
	frag, err := dom.FragmentFromHTML(def.Template)
	if err != nil {
		return errors.New("L002").Wrap(err)
	}
	def.fragment = frag
	if _, ok := r.defs[def.Tag]; !ok {
		r.order = append(r.order, def.Tag)
	}
	r.defs[def.Tag] = def
	return nil
}

// Lookup returns the definition registered for tag.
func (r *Registry) Lookup(tag string) (*Definition, bool) {
	d, ok := r.defs[tag]
	return d, ok
}

// Tags returns the registered tags in registration order.
func (r *Registry) Tags() []string { return slices.Clone(r.order) }

// Len returns the number of definitions.
func (r *Registry) Len() int { return len(r.defs) }

// LoadTemplates registers every <template b-component="tag"> under root.
// Scripts are looked up by tag in scripts, which may be nil.
func (r *Registry) LoadTemplates(root *dom.Node, scripts map[string]Script) ([]string, error) {
	var tags []string
	for _, t := range root.QuerySelectorAll("template[" + AttrComponent + "]") {
		def := &Definition{
			Tag:      t.Attr(AttrComponent),
			Template: t.InnerHTML(),
			Styles:   strings.Fields(t.Attr(AttrStyles)),
			Data:     t.Attr("b-data"),
		}
		if s, ok := scripts[def.Tag]; ok {
			def.Script = s
		}
		if err := r.Define(def); err != nil {
			return tags, err
		}
		tags = append(tags, def.Tag)
	}
	return tags, nil
}

// Snapshot returns a copy of the definitions keyed by tag.
func (r *Registry) Snapshot() map[string]*Definition { return maps.Clone(r.defs) }
