// Package render applies template bindings to component trees.
//
// A Renderer evaluates the bindings of an Instance against its reactive
// state and touches the DOM only where a value changed:
//
//   - b-if swaps the element with a placeholder comment
//   - b-show toggles display: none in the inline style
//   - text and attribute interpolation writes escaped output
//   - b-text resolves a plain path without expression evaluation
//   - b-html assigns raw markup without escaping
//   - b-sync pushes state into form controls
//   - b-for reconciles a keyed pool of item fragments
//
// # Rendering
//
//	r := render.New(render.Config{Sandbox: expr.New(logger)})
//	inst := &render.Instance{Host: el, Root: el.ShadowRoot(), State: state}
//	r.Bind(inst.Root, inst, nil)
//	r.Render(inst)
//
// Render is guarded against re-entry per instance. The first render scans
// the instance tree and caches the result; later renders reuse it.
//
// # Lists
//
// Items of a b-for list are keyed by proxy identity for objects and arrays
// and by position and value for everything else. A fragment is created the
// first time its key appears, updated on every render, moved only when it
// is not at its expected position, and removed once its key is gone.
//
// # Errors
//
// Expression failures, event handler failures and panics are reported
// through Hooks.OnError with a Category naming the catch site. Without a
// hook they are logged. Nothing propagates to the caller of Render.
//
// # Security
//
// Interpolated output is escaped with EscapeHTML. b-html is unescaped: its
// markup is trusted by the template author.
package render
