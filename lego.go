// Package lego is a reactive component runtime. It binds declarative HTML
// templates to mutable state and re-renders only the parts of the
// document a change affects.
//
// Components are custom elements with their own shadow tree:
//
//	app, err := lego.New()
//	if err != nil {
//	    return err
//	}
//	err = app.Define("click-counter",
//	    `<button @click="count = count + 1">Clicked [[ count ]] times</button>`,
//	    component.Script{Data: map[string]any{"count": 0}})
//	if err != nil {
//	    return err
//	}
//	app.Start()
//	defer app.Stop()
//	err = app.Do(ctx, func() { err = app.LoadPage(`<click-counter></click-counter>`) })
//
// State changes mark their component dirty; dirty components render once
// per frame. Templates use b-if, b-show, b-for, b-sync, b-text, b-html,
// b-id references, @event listeners and [[ ]] (or {{ }}) interpolation in
// text and attribute values.
// Expressions run in a sandbox over the component state, the global state
// and the current loop scope.
//
// The document is an in-memory tree (package dom). App.HTML serializes it
// with declarative shadow roots; package live keeps it in sync with a
// browser over WebSocket.
package lego
