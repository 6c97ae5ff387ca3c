package lego

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/legodom/lego/pkg/component"
	"github.com/legodom/lego/pkg/dom"
	"github.com/legodom/lego/pkg/reactive"
	"github.com/legodom/lego/pkg/render"
	"github.com/legodom/lego/pkg/router"
	"github.com/legodom/lego/pkg/scheduler"
)

type caught struct {
	category render.Category
	err      error
}

type fixture struct {
	app  *App
	host *scheduler.ManualHost
	errs []caught
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{host: scheduler.NewManualHost()}
	base := []Option{
		WithHost(f.host),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithHooks(render.Hooks{OnError: func(err error, c render.Category, _ *dom.Node) {
			f.errs = append(f.errs, caught{c, err})
		}}),
	}
	app, err := New(append(base, opts...)...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	f.app = app
	return f
}

func (f *fixture) load(t *testing.T, body string) {
	t.Helper()
	if err := f.app.LoadPage("<html><body>" + body + "</body></html>"); err != nil {
		t.Fatalf("LoadPage() error: %v", err)
	}
}

func (f *fixture) el(t *testing.T, sel string) *dom.Node {
	t.Helper()
	n := f.app.Document().QuerySelector(sel)
	if n == nil {
		t.Fatalf("no element matches %q", sel)
	}
	return n
}

func shadowText(t *testing.T, host *dom.Node, sel string) string {
	t.Helper()
	if host.ShadowRoot() == nil {
		t.Fatalf("<%s> has no shadow root", host.Tag)
	}
	n := host.ShadowRoot().QuerySelector(sel)
	if n == nil {
		t.Fatalf("no %q in <%s>: %s", sel, host.Tag, host.ShadowRoot().InnerHTML())
	}
	return n.TextContent()
}

func TestNew_InvalidSyntax(t *testing.T) {
	if _, err := New(WithSyntax("handlebars"), WithHost(scheduler.NewManualHost())); err == nil {
		t.Fatal("New() accepted an unknown syntax")
	}
}

func TestApp_BatchesMutationsIntoOneRender(t *testing.T) {
	f := newFixture(t)
	updated := 0
	err := f.app.Define("x-counter", `<p>[[ count ]]</p>`, component.Script{
		Data:    map[string]any{"count": 0},
		Updated: func(*component.Context) error { updated++; return nil },
	})
	if err != nil {
		t.Fatal(err)
	}
	f.load(t, `<x-counter></x-counter>`)

	host := f.el(t, "x-counter")
	inst := f.app.Manager().Instance(host)
	if inst == nil {
		t.Fatal("x-counter was not attached")
	}
	before := inst.Renders()

	for i := 1; i <= 5; i++ {
		inst.State.Set("count", i)
	}
	if got := f.app.Pending(); got != 1 {
		t.Fatalf("Pending() = %d, want 1", got)
	}
	if f.host.PendingFrames() != 1 {
		t.Fatalf("PendingFrames() = %d, want 1", f.host.PendingFrames())
	}

	if updated != 0 {
		t.Errorf("updated ran before the frame")
	}
	f.host.Frame()
	if got := inst.Renders() - before; got != 1 {
		t.Errorf("renders after frame = %d, want 1", got)
	}
	if updated != 1 {
		t.Errorf("updated = %d, want 1", updated)
	}
	if f.host.Frame() {
		t.Error("a second frame was requested")
	}
	if got := shadowText(t, host, "p"); got != "5" {
		t.Errorf("text = %q, want %q", got, "5")
	}
}

func TestApp_ObserverAttachesAndDetaches(t *testing.T) {
	f := newFixture(t)
	unmounted := 0
	if err := f.app.Define("todo-item", `<li>[[ label ]]</li>`, component.Script{
		Data:      map[string]any{"label": "item"},
		Unmounted: func(*component.Context) error { unmounted++; return nil },
	}); err != nil {
		t.Fatal(err)
	}
	f.load(t, `<ul id="list"></ul>`)
	list := f.el(t, "#list")

	item := dom.NewElement("todo-item")
	if err := list.AppendChild(item); err != nil {
		t.Fatal(err)
	}
	if f.app.ActiveCount() != 0 {
		t.Fatal("attached before the microtask checkpoint")
	}
	f.host.RunMicrotasks()
	if f.app.ActiveCount() != 1 {
		t.Fatalf("ActiveCount() = %d after insert, want 1", f.app.ActiveCount())
	}
	if got := shadowText(t, item, "li"); got != "item" {
		t.Errorf("text = %q", got)
	}

	item.Remove()
	f.host.RunMicrotasks()
	if f.app.ActiveCount() != 0 || unmounted != 1 {
		t.Errorf("after removal: active = %d, unmounted = %d", f.app.ActiveCount(), unmounted)
	}
}

func TestApp_MovedNodeKeepsInstance(t *testing.T) {
	f := newFixture(t)
	mounted := 0
	if err := f.app.Define("x-card", `<p>card</p>`, component.Script{
		Mounted: func(*component.Context) error { mounted++; return nil },
	}); err != nil {
		t.Fatal(err)
	}
	f.load(t, `<div id="a"><x-card></x-card></div><div id="b"></div>`)
	card := f.el(t, "x-card")
	inst := f.app.Manager().Instance(card)

	if err := f.el(t, "#b").AppendChild(card); err != nil {
		t.Fatal(err)
	}
	f.host.RunMicrotasks()

	if f.app.Manager().Instance(card) != inst {
		t.Error("moved element got a new instance")
	}
	if mounted != 1 || f.app.ActiveCount() != 1 {
		t.Errorf("mounted = %d, active = %d", mounted, f.app.ActiveCount())
	}
}

func TestApp_NestedComponentsInShadowTrees(t *testing.T) {
	f := newFixture(t)
	if err := f.app.Define("todo-item", `<li>[[ name ]]</li>`, component.Script{
		Data: map[string]any{"name": "?"},
	}); err != nil {
		t.Fatal(err)
	}
	if err := f.app.Define("todo-list", `<ul b-for="t in todos"><todo-item></todo-item></ul>`, component.Script{
		Data: map[string]any{"todos": []any{"a", "b"}},
	}); err != nil {
		t.Fatal(err)
	}
	f.load(t, `<todo-list></todo-list>`)
	if f.app.ActiveCount() != 3 {
		t.Fatalf("ActiveCount() = %d, want 3", f.app.ActiveCount())
	}

	inst := f.app.Manager().Instance(f.el(t, "todo-list"))
	todos := inst.State.Get("todos").(*reactive.Array)
	todos.Push("c")
	f.host.Settle(4)

	if f.app.ActiveCount() != 4 {
		t.Errorf("ActiveCount() = %d after push, want 4", f.app.ActiveCount())
	}
}

func TestApp_HookErrorsAreIsolated(t *testing.T) {
	f := newFixture(t)
	if err := f.app.Define("bad-widget", `<p>bad</p>`, component.Script{
		Mounted: func(*component.Context) error { return errors.New("boom") },
	}); err != nil {
		t.Fatal(err)
	}
	if err := f.app.Define("good-widget", `<p>[[ msg ]]</p>`, component.Script{
		Data: map[string]any{"msg": "ok"},
	}); err != nil {
		t.Fatal(err)
	}
	f.load(t, `<bad-widget></bad-widget><good-widget></good-widget>`)

	if f.app.ActiveCount() != 2 {
		t.Errorf("ActiveCount() = %d, want 2", f.app.ActiveCount())
	}
	if got := shadowText(t, f.el(t, "good-widget"), "p"); got != "ok" {
		t.Errorf("good-widget text = %q", got)
	}
	if len(f.errs) != 1 || f.errs[0].category != render.CategoryMounted {
		t.Fatalf("errors = %+v, want one mounted error", f.errs)
	}
}

func TestApp_UpdatedErrorReported(t *testing.T) {
	f := newFixture(t)
	if err := f.app.Define("x-field", `<p>[[ v ]]</p>`, component.Script{
		Data:    map[string]any{"v": 1},
		Updated: func(*component.Context) error { return errors.New("bad update") },
	}); err != nil {
		t.Fatal(err)
	}
	f.load(t, `<x-field></x-field>`)
	f.app.Manager().Instance(f.el(t, "x-field")).State.Set("v", 2)
	f.host.Settle(2)

	if len(f.errs) != 1 || f.errs[0].category != render.CategoryUpdated {
		t.Fatalf("errors = %+v, want one updated error", f.errs)
	}
}

func TestApp_GlobalStateRerendersDependents(t *testing.T) {
	f := newFixture(t, WithGlobal(map[string]any{"user": "ann"}))
	if err := f.app.Define("user-badge", `<p>[[ global.user ]]</p>`, component.Script{}); err != nil {
		t.Fatal(err)
	}
	if err := f.app.Define("static-note", `<p>[[ text ]]</p>`, component.Script{
		Data: map[string]any{"text": "hi"},
	}); err != nil {
		t.Fatal(err)
	}
	f.load(t, `<user-badge></user-badge><static-note></static-note>`)
	badge := f.el(t, "user-badge")
	note := f.app.Manager().Instance(f.el(t, "static-note"))
	noteRenders := note.Renders()

	f.app.Global().Set("user", "bob")
	f.host.Settle(2)

	if got := shadowText(t, badge, "p"); got != "bob" {
		t.Errorf("badge = %q, want bob", got)
	}
	if note.Renders() != noteRenders {
		t.Error("global change re-rendered an independent instance")
	}
}

func TestApp_Define(t *testing.T) {
	tests := []struct {
		name    string
		tag     string
		wantErr bool
	}{
		{"UserCard", "user-card", false},
		{"todoList", "todo-list", false},
		{"nav_bar", "nav-bar", false},
		{"Widget", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			err := f.app.Define(tt.name, `<p></p>`, component.Script{})
			if (err != nil) != tt.wantErr {
				t.Fatalf("Define(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if _, ok := f.app.Registry().Lookup(tt.tag); !ok {
				t.Errorf("tag %q not registered", tt.tag)
			}
		})
	}
}

func TestApp_DefineUpgradesPresentElements(t *testing.T) {
	f := newFixture(t)
	f.load(t, `<late-comer></late-comer>`)
	if f.app.ActiveCount() != 0 {
		t.Fatal("unknown element attached")
	}
	if err := f.app.DefineSFC(`<template><p>[[ n ]]</p></template><script>export default {"n": 7}</script>`, "LateComer.lego"); err != nil {
		t.Fatal(err)
	}
	if got := shadowText(t, f.el(t, "late-comer"), "p"); got != "7" {
		t.Errorf("text = %q, want 7", got)
	}
}

func TestApp_PageTemplates(t *testing.T) {
	f := newFixture(t, WithScripts(map[string]component.Script{
		"hello-box": {Data: map[string]any{"who": "world"}},
	}))
	f.load(t, `<template b-component="hello-box"><p>hello [[ who ]]</p></template><hello-box></hello-box>`)

	if got := shadowText(t, f.el(t, "hello-box"), "p"); got != "hello world" {
		t.Errorf("text = %q", got)
	}
}

func TestApp_Navigate(t *testing.T) {
	f := newFixture(t, WithHistory())
	if err := f.app.Define("user-page", `<h1>[[ $route.params.id ]]</h1>`, component.Script{}); err != nil {
		t.Fatal(err)
	}
	if err := f.app.Route("/users/:id", "user-page", nil); err != nil {
		t.Fatal(err)
	}
	f.load(t, `<lego-router></lego-router>`)

	if err := f.app.Navigate(context.Background(), "/users/42"); err != nil {
		t.Fatalf("Navigate() error: %v", err)
	}
	f.host.RunMicrotasks()

	page := f.el(t, "lego-router > user-page")
	if got := shadowText(t, page, "h1"); got != "42" {
		t.Errorf("heading = %q, want 42", got)
	}
	if f.app.Router().History().Len() != 1 {
		t.Errorf("history length = %d", f.app.Router().History().Len())
	}

	err := f.app.Navigate(context.Background(), "/nowhere")
	if !errors.Is(err, router.ErrNoRoute) {
		t.Errorf("Navigate(/nowhere) error = %v, want ErrNoRoute", err)
	}
}

func TestApp_RouteRerendersPersistentComponents(t *testing.T) {
	f := newFixture(t, WithHistory())
	if err := f.app.Define("nav-bar", `<span>[[ $route.path ]]</span>`, component.Script{}); err != nil {
		t.Fatal(err)
	}
	if err := f.app.Define("any-page", `<p>page</p>`, component.Script{}); err != nil {
		t.Fatal(err)
	}
	for _, path := range []string{"/a", "/b"} {
		if err := f.app.Route(path, "any-page", nil); err != nil {
			t.Fatal(err)
		}
	}
	f.load(t, `<nav-bar></nav-bar><lego-router></lego-router>`)
	nav := f.el(t, "nav-bar")

	for _, path := range []string{"/a", "/b"} {
		if err := f.app.Navigate(context.Background(), path); err != nil {
			t.Fatalf("Navigate(%s) error: %v", path, err)
		}
		f.host.Settle(4)
		if got := shadowText(t, nav, "span"); got != path {
			t.Errorf("nav-bar after %s = %q", path, got)
		}
	}
}

func TestApp_RenderErrorsAreIsolated(t *testing.T) {
	f := newFixture(t)
	if err := f.app.Define("broken-view", `<p>[[ fail() ]]</p>`, component.Script{
		Data: map[string]any{"n": 1},
		Methods: map[string]component.Method{
			"fail": func(s *reactive.Object, _ ...any) (any, error) {
				if n, _ := s.Get("n").(int); n > 1 {
					return nil, errors.New("cannot render")
				}
				return "fine", nil
			},
		},
	}); err != nil {
		t.Fatal(err)
	}
	if err := f.app.Define("healthy-view", `<p>[[ n ]]</p>`, component.Script{
		Data: map[string]any{"n": 1},
	}); err != nil {
		t.Fatal(err)
	}
	f.load(t, `<broken-view></broken-view><healthy-view></healthy-view>`)
	if len(f.errs) != 0 {
		t.Fatalf("errors after load = %+v", f.errs)
	}

	f.app.Manager().Instance(f.el(t, "broken-view")).State.Set("n", 2)
	f.app.Manager().Instance(f.el(t, "healthy-view")).State.Set("n", 2)
	if got := f.app.Pending(); got != 2 {
		t.Fatalf("Pending() = %d, want 2", got)
	}
	f.app.Flush()

	if len(f.errs) != 1 || f.errs[0].category != render.CategoryRender {
		t.Fatalf("errors = %+v, want one render-error", f.errs)
	}
	if got := shadowText(t, f.el(t, "healthy-view"), "p"); got != "2" {
		t.Errorf("healthy-view text = %q, want 2", got)
	}
}

func TestApp_UnmountDetachesAll(t *testing.T) {
	f := newFixture(t)
	unmounted := 0
	if err := f.app.Define("x-a", `<p>a</p>`, component.Script{
		Unmounted: func(*component.Context) error { unmounted++; return nil },
	}); err != nil {
		t.Fatal(err)
	}
	f.load(t, `<x-a></x-a><x-a></x-a>`)
	f.app.Unmount()

	if f.app.ActiveCount() != 0 || unmounted != 2 {
		t.Errorf("active = %d, unmounted = %d", f.app.ActiveCount(), unmounted)
	}
	if _, err := f.app.HTML(); !errors.Is(err, ErrNoDocument) {
		t.Errorf("HTML() error = %v, want ErrNoDocument", err)
	}
}

func TestApp_HTMLComposesShadowRoots(t *testing.T) {
	f := newFixture(t)
	if err := f.app.Define("x-hi", `<b>[[ who ]]</b>`, component.Script{Data: map[string]any{"who": "there"}}); err != nil {
		t.Fatal(err)
	}
	f.load(t, `<x-hi></x-hi>`)
	out, err := f.app.HTML()
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`<template shadowrootmode="open">`, "<b>there</b>"} {
		if !strings.Contains(out, want) {
			t.Errorf("HTML() missing %q:\n%s", want, out)
		}
	}
}

func TestApp_LoopDispatch(t *testing.T) {
	app, err := New(
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithFrameInterval(time.Millisecond),
	)
	if err != nil {
		t.Fatal(err)
	}
	app.Start()
	defer app.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var loadErr error
	if err := app.Do(ctx, func() { loadErr = app.LoadPage(`<html><body></body></html>`) }); err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	if loadErr != nil {
		t.Fatalf("LoadPage() error: %v", loadErr)
	}

	done := make(chan struct{})
	if err := app.Dispatch(func() { close(done) }); err != nil {
		t.Fatalf("Dispatch() error: %v", err)
	}
	select {
	case <-done:
	case <-ctx.Done():
		t.Fatal("dispatched task never ran")
	}

	app.Stop()
	if err := app.Dispatch(func() {}); !errors.Is(err, scheduler.ErrLoopClosed) {
		t.Errorf("Dispatch() after Stop error = %v", err)
	}
}
