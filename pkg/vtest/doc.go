// Package vtest provides testing helpers for lego components.
//
// A Harness runs an App on a manual frame clock, so a test decides when
// renders happen and can observe batching directly.
//
// # Quick Start
//
//	func TestCounter(t *testing.T) {
//	    h := vtest.New(t).
//	        Define("x-counter", `<button @click="n = n + 1">[[ n ]]</button>`,
//	            component.Script{Data: map[string]any{"n": 0}}).
//	        Mount(`<x-counter></x-counter>`)
//
//	    h.Click("x-counter", "button")
//	    h.ExpectText("1", "x-counter", "button")
//	    h.ExpectNoErrors()
//	}
//
// # Paths
//
// Query, Text, State, Click and Input take a selector path. Every selector
// after the first is matched inside the shadow tree of the element found
// so far.
//
// # Frames
//
// State changes only mark instances dirty. Flush runs a single frame and
// its microtasks; Settle runs until nothing is queued.
package vtest
