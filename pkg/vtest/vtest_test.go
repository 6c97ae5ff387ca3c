package vtest_test

import (
	"errors"
	"testing"

	"github.com/legodom/lego"
	"github.com/legodom/lego/pkg/component"
	"github.com/legodom/lego/pkg/dom"
	"github.com/legodom/lego/pkg/render"
	"github.com/legodom/lego/pkg/vtest"
)

func TestHarness_ClickUpdatesAfterSettle(t *testing.T) {
	h := vtest.New(t).
		Define("x-counter", `<button @click="n = n + 1">[[ n ]]</button>`,
			component.Script{Data: map[string]any{"n": 0}}).
		Mount(`<x-counter></x-counter>`)

	h.ExpectText("0", "x-counter", "button")
	h.Click("x-counter", "button")
	h.Click("x-counter", "button")
	h.ExpectText("2", "x-counter", "button")
	h.ExpectNoErrors()
}

func TestHarness_FlushIsExplicit(t *testing.T) {
	h := vtest.New(t).
		Define("x-label", `<span>[[ text ]]</span>`,
			component.Script{Data: map[string]any{"text": "a"}}).
		Mount(`<x-label></x-label>`)

	h.State("x-label").Set("text", "b")
	h.ExpectText("a", "x-label", "span")
	if !h.Flush() {
		t.Fatal("Flush() ran no frame")
	}
	h.ExpectText("b", "x-label", "span")
	if h.Flush() {
		t.Error("second Flush() ran a frame with nothing dirty")
	}
}

func TestHarness_InputSyncsState(t *testing.T) {
	h := vtest.New(t).
		Define("name-field", `<input b-sync="name"><p>[[ name ]]</p>`,
			component.Script{Data: map[string]any{"name": ""}}).
		Mount(`<name-field></name-field>`)

	h.Input("Ada", "name-field", "input")
	if got := h.State("name-field").Get("name"); got != "Ada" {
		t.Errorf("state name = %v", got)
	}
	h.ExpectText("Ada", "name-field", "p")
}

func TestHarness_QueryPathCrossesShadowTrees(t *testing.T) {
	h := vtest.New(t).
		Define("todo-item", `<li>[[ label ]]</li>`,
			component.Script{Data: map[string]any{"label": "milk"}}).
		Define("todo-list", `<ul><todo-item></todo-item></ul>`, component.Script{}).
		Mount(`<todo-list></todo-list>`)

	h.ExpectText("milk", "todo-list", "todo-item", "li")
	h.ExpectContains("<li>milk</li>")
	h.ExpectNotContains("<li>bread</li>")
}

func TestHarness_RecordsErrorsAndForwards(t *testing.T) {
	var forwarded int
	h := vtest.New(t, lego.WithHooks(render.Hooks{
		OnError: func(error, render.Category, *dom.Node) { forwarded++ },
	})).
		Define("bad-box", `<p>x</p>`, component.Script{
			Mounted: func(*component.Context) error { return errors.New("nope") },
		}).
		Mount(`<bad-box></bad-box>`)

	errs := h.Errors()
	if len(errs) != 1 || errs[0].Category != render.CategoryMounted {
		t.Fatalf("Errors() = %+v", errs)
	}
	if errs[0].Element == nil || errs[0].Element.Tag != "bad-box" {
		t.Errorf("error element = %v", errs[0].Element)
	}
	if forwarded != 1 {
		t.Errorf("forwarded = %d, want 1", forwarded)
	}
}

func TestHarness_DefineSFC(t *testing.T) {
	h := vtest.New(t).
		DefineSFC(`<template><em>[[ greeting ]]</em></template>
<script>export default { greeting: 'hi' }</script>`, "GreetingLine.lego").
		Mount(`<greeting-line></greeting-line>`)

	h.ExpectText("hi", "greeting-line", "em")
}
