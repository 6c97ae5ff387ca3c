// Package expr evaluates the small expression language used in templates.
//
// Expressions are parsed once into an AST and interpreted; nothing is ever
// compiled to host code. The grammar covers literals, identifiers, member
// access, calls, array and object literals, unary and binary operators,
// ?? and ?:, assignment, ++/-- and ';' separated sequences:
//
//	count + 1
//	items.length > 0 ? "some" : "none"
//	todos.push({ text: draft, done: false }); draft = ""
//
// Identifiers resolve through a Scope. An identifier the scope does not
// bind evaluates to nil rather than failing, so templates can reference
// state that has not been populated yet.
//
// # Security
//
// Expressions can only reach values placed in their scope. In addition,
// any expression text containing a denylisted identifier (function, eval,
// constructor, window, =>, ...) is refused before parsing and evaluates to
// nil with a logged warning. The denylist is a best-effort guard against
// hostile markup, not a sound sandbox: templates must still come from
// trusted sources.
package expr
