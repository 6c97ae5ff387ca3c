// Package binding finds the directives and interpolations in a component
// tree and compiles them into descriptors.
//
// Recognized directives, in the order they are classified on a node:
//
//	b-if="expr"          conditional presence (node detached when falsy)
//	b-show="expr"        conditional visibility
//	b-for="x in list"    list repeat; "(x, i) in list" also binds the index
//	b-text="path"        plain path rendered as text
//	b-html="expr"        raw markup
//	b-sync="path"        two-way binding for form controls
//	b-id="name"          element reference
//	@event="expr"        event listener
//
// followed by attribute values and text nodes containing interpolations
// such as [[ expr ]] (or {{ expr }} with the Mustache delimiters).
package binding
