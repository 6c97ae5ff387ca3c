package render

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/legodom/lego/pkg/binding"
	"github.com/legodom/lego/pkg/dom"
	"github.com/legodom/lego/pkg/expr"
	"github.com/legodom/lego/pkg/reactive"
)

type reported struct {
	err      error
	category Category
	el       *dom.Node
}

type fixture struct {
	r       *Renderer
	inst    *Instance
	root    *dom.Node
	cache   *reactive.Cache
	errs    []reported
	notices int
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newFixture(t *testing.T, markup string, data map[string]any, opts ...func(*Config)) *fixture {
	t.Helper()
	f := &fixture{cache: reactive.NewCache()}
	cfg := Config{
		Sandbox: expr.New(quiet()),
		Logger:  quiet(),
		Hooks: Hooks{OnError: func(err error, c Category, el *dom.Node) {
			f.errs = append(f.errs, reported{err, c, el})
		}},
	}
	for _, o := range opts {
		o(&cfg)
	}
	f.r = New(cfg)

	host := dom.NewElement("x-test")
	f.root = host.AttachShadow()
	if err := f.root.SetInnerHTML(markup); err != nil {
		t.Fatalf("parse template: %v", err)
	}
	f.inst = &Instance{
		Tag:   "x-test",
		Host:  host,
		Root:  f.root,
		State: f.cache.WrapObject(data, func() { f.notices++ }),
	}
	f.r.Bind(f.root, f.inst, nil)
	f.r.Render(f.inst)
	return f
}

func (f *fixture) render() { f.r.Render(f.inst) }

func (f *fixture) q(t *testing.T, sel string) *dom.Node {
	t.Helper()
	n := f.root.QuerySelector(sel)
	if n == nil {
		t.Fatalf("no element matches %q in %s", sel, f.root.InnerHTML())
	}
	return n
}

func TestRender_Interpolation(t *testing.T) {
	f := newFixture(t, `<p class="card [[ tone ]]">Hello [[ name ]]!</p>`, map[string]any{
		"name": "World",
		"tone": "warm",
	})
	p := f.q(t, "p")
	if got := p.Attr("class"); got != "card warm" {
		t.Errorf("class = %q", got)
	}
	if got := p.TextContent(); got != "Hello World!" {
		t.Errorf("text = %q", got)
	}

	f.inst.State.Set("name", "Lego")
	f.render()
	if got := p.TextContent(); got != "Hello Lego!" {
		t.Errorf("text after update = %q", got)
	}
}

func TestRender_Idempotent(t *testing.T) {
	f := newFixture(t, `
		<h1 title="[[ title ]]">[[ title ]]</h1>
		<p b-if="open">open</p>
		<p b-show="open">shown</p>
		<div b-html="markup"></div>
		<span b-text="user.name"></span>
		<input b-sync="user.name">
		<ul b-for="(item, i) in items"><li data-i="[[ i ]]">[[ item.label ]]</li></ul>`,
		map[string]any{
			"title":  "Todos",
			"open":   false,
			"markup": "<b>bold</b>",
			"user":   map[string]any{"name": "Ann"},
			"items":  []any{map[string]any{"label": "a"}, map[string]any{"label": "b"}},
		})

	obs := dom.NewObserver(nil, nil)
	obs.Observe(f.root, dom.ObserveOptions{ChildList: true, Attributes: true, CharacterData: true, Subtree: true})
	f.render()
	if recs := obs.TakeRecords(); len(recs) != 0 {
		t.Errorf("second render produced %d mutation records", len(recs))
	}
	if len(f.errs) != 0 {
		t.Errorf("unexpected errors: %v", f.errs)
	}
}

func TestRender_EscapesInterpolatedText(t *testing.T) {
	f := newFixture(t, `<p>[[ msg ]]</p><a href="[[ msg ]]">x</a>`, map[string]any{
		"msg": "<script>alert(1)</script>",
	})
	if f.root.QuerySelector("script") != nil {
		t.Fatal("interpolation produced a script element")
	}
	if got := f.q(t, "p").TextContent(); !strings.HasPrefix(got, "&lt;script&gt;") {
		t.Errorf("text = %q", got)
	}
	if got := f.q(t, "a").Attr("href"); strings.Contains(got, "<") {
		t.Errorf("href = %q", got)
	}
}

func TestRender_HTMLIsRaw(t *testing.T) {
	f := newFixture(t, `<div b-html="markup"></div>`, map[string]any{"markup": "<em>hi</em>"})
	if f.root.QuerySelector("em") == nil {
		t.Fatalf("b-html output = %s", f.root.InnerHTML())
	}
}

func TestRender_IfSwapsPlaceholder(t *testing.T) {
	f := newFixture(t, `<main><p b-if="open">x</p><span>tail</span></main>`, map[string]any{"open": false})
	main := f.q(t, "main")
	if f.root.QuerySelector("p") != nil {
		t.Fatal("b-if element attached while false")
	}
	if c := main.FirstChild(); c == nil || c.Type != dom.CommentNode {
		t.Fatalf("placeholder missing: %s", main.InnerHTML())
	}

	f.inst.State.Set("open", true)
	f.render()
	p := main.FirstChild()
	if p == nil || p.Tag != "p" {
		t.Fatalf("b-if element not restored in place: %s", main.InnerHTML())
	}

	f.inst.State.Set("open", false)
	f.render()
	if p.Parent() != nil {
		t.Error("b-if element still attached")
	}
}

func TestRender_ShowTogglesDisplay(t *testing.T) {
	f := newFixture(t, `<p b-show="visible" style="color: red">x</p>`, map[string]any{"visible": false})
	p := f.q(t, "p")
	if !p.Hidden() {
		t.Fatal("b-show element visible while false")
	}
	f.inst.State.Set("visible", true)
	f.render()
	if p.Hidden() || p.Attr("style") != "color: red" {
		t.Errorf("style = %q", p.Attr("style"))
	}
}

func TestRender_TextPath(t *testing.T) {
	f := newFixture(t, `<span b-text="user.name"></span><i b-text="user.missing.deep"></i>`, map[string]any{
		"user": map[string]any{"name": "<Ann>"},
	})
	if got := f.q(t, "span").TextContent(); got != "&lt;Ann&gt;" {
		t.Errorf("b-text = %q", got)
	}
	if got := f.q(t, "i").TextContent(); got != "" {
		t.Errorf("missing path = %q", got)
	}
}

func TestRender_ListReusesFragmentsByIdentity(t *testing.T) {
	a := map[string]any{"id": "a"}
	b := map[string]any{"id": "b"}
	c := map[string]any{"id": "c"}
	f := newFixture(t, `<ul b-for="item in items"><li>[[ item.id ]]</li></ul>`, map[string]any{
		"items": []any{a, b, c},
	})
	ul := f.q(t, "ul")
	before := ul.ElementChildren()
	if len(before) != 3 {
		t.Fatalf("children = %s", ul.InnerHTML())
	}

	f.inst.State.Set("items", []any{c, a, map[string]any{"id": "d"}})
	f.render()

	after := ul.ElementChildren()
	if len(after) != 3 {
		t.Fatalf("children = %s", ul.InnerHTML())
	}
	if after[0] != before[2] || after[1] != before[0] {
		t.Error("fragments for c and a were not reused")
	}
	if after[2] == before[1] {
		t.Error("fragment for b reused for d")
	}
	if before[1].Parent() != nil {
		t.Error("fragment for b not removed")
	}
	var texts []string
	for _, li := range after {
		texts = append(texts, li.TextContent())
	}
	if got := strings.Join(texts, ","); got != "c,a,d" {
		t.Errorf("order = %s", got)
	}
	if n := Pool(ul); n != 3 {
		t.Errorf("pool size = %d", n)
	}
}

func TestRender_ListItemRootIf(t *testing.T) {
	a := map[string]any{"name": "a", "done": true}
	b := map[string]any{"name": "b", "done": false}
	c := map[string]any{"name": "c", "done": true}
	f := newFixture(t, `<ul b-for="t in todos"><li b-if="t.done">[[ t.name ]]</li></ul>`, map[string]any{
		"todos": []any{a, b, c},
	})
	ul := f.q(t, "ul")
	shape := func() string {
		var out []string
		for _, n := range ul.Children() {
			if n.Type == dom.CommentNode {
				out = append(out, "-")
			} else {
				out = append(out, n.TextContent())
			}
		}
		return strings.Join(out, ",")
	}
	if got := shape(); got != "a,-,c" {
		t.Fatalf("first render = %s", got)
	}
	f.render()
	if got := shape(); got != "a,-,c" {
		t.Errorf("second render = %s", got)
	}

	f.inst.State.Get("todos").(*reactive.Array).Items()[1].(*reactive.Object).Set("done", true)
	f.render()
	if got := shape(); got != "a,b,c" {
		t.Errorf("after done = %s", got)
	}

	f.inst.State.Get("todos").(*reactive.Array).Items()[0].(*reactive.Object).Set("done", false)
	f.inst.State.Set("todos", []any{c, a})
	f.render()
	if got := shape(); got != "c,-" {
		t.Errorf("after reorder = %s", got)
	}
}

func TestRender_ListPrimitivesWithIndex(t *testing.T) {
	f := newFixture(t, `<ol b-for="(x, i) in xs"><li>[[ i ]]:[[ x ]]</li></ol>`, map[string]any{
		"xs": []any{"a", "b"},
	})
	if got := f.q(t, "ol").TextContent(); got != "0:a1:b" {
		t.Errorf("list = %q", got)
	}

	f.inst.State.Get("xs").(*reactive.Array).Push("c")
	f.render()
	if got := f.q(t, "ol").TextContent(); got != "0:a1:b2:c" {
		t.Errorf("list after push = %q", got)
	}
}

func TestRender_ListEventsSeeTheirItem(t *testing.T) {
	f := newFixture(t, `
		<p>[[ picked ]]</p>
		<ul b-for="todo in todos"><li @click="picked = todo.text"><input type="checkbox" b-sync="todo.done"></li></ul>`,
		map[string]any{
			"picked": "",
			"todos": []any{
				map[string]any{"text": "one", "done": false},
				map[string]any{"text": "two", "done": false},
			},
		})
	lis := f.q(t, "ul").ElementChildren()
	lis[1].Click()
	if got := f.inst.State.Get("picked"); got != "two" {
		t.Errorf("picked = %v", got)
	}

	box := lis[0].FirstElementChild()
	box.Input("true")
	todo := f.inst.State.Get("todos").(*reactive.Array).Index(0).(*reactive.Object)
	if got := todo.Get("done"); got != true {
		t.Errorf("done = %v", got)
	}
}

func TestRender_Reentrancy(t *testing.T) {
	var f *fixture
	armed, calls := false, 0
	reenter := expr.Func(func(any, ...any) (any, error) {
		calls++
		if armed {
			f.r.Render(f.inst)
		}
		return "x", nil
	})
	f = newFixture(t, `<p>[[ reenter() ]]</p>`, map[string]any{"reenter": reenter})

	armed, calls = true, 0
	before := f.inst.Renders()
	f.render()
	if calls != 1 {
		t.Errorf("helper ran %d times", calls)
	}
	if got := f.inst.Renders() - before; got != 1 {
		t.Errorf("completed renders = %d, want 1", got)
	}
	if f.inst.Rendering() {
		t.Error("render guard left set")
	}
}

func TestRender_ErrorsAreIsolated(t *testing.T) {
	boom := expr.Func(func(any, ...any) (any, error) { panic("boom") })
	f := newFixture(t, `<p>[[ missing() ]]</p><b>[[ boom() ]]</b><span>[[ name ]]</span>`, map[string]any{
		"name": "ok",
		"boom": boom,
	})
	if got := f.q(t, "span").TextContent(); got != "ok" {
		t.Errorf("later binding = %q", got)
	}
	if len(f.errs) != 2 {
		t.Fatalf("errors = %v", f.errs)
	}
	for _, e := range f.errs {
		if e.category != CategoryRender || e.el != f.inst.Host {
			t.Errorf("reported %s on %v", e.category, e.el)
		}
		var herr *HookError
		if !errors.As(e.err, &herr) {
			t.Errorf("error %v is not a HookError", e.err)
		}
	}
}

func TestBind_EventHandlers(t *testing.T) {
	f := newFixture(t, `<button id="inc" @click="count++">+</button><button id="bad" @click="nope()">!</button>`, map[string]any{
		"count": 0.0,
	})
	f.q(t, "#inc").Click()
	f.q(t, "#inc").Click()
	if got := f.inst.State.Get("count"); got != 2.0 {
		t.Errorf("count = %v", got)
	}
	if f.notices != 2 {
		t.Errorf("notifications = %d", f.notices)
	}

	f.q(t, "#bad").Click()
	if len(f.errs) != 1 || f.errs[0].category != CategoryEvent {
		t.Errorf("errors = %v", f.errs)
	}

	f.r.Bind(f.root, f.inst, nil)
	if n := f.q(t, "#inc").ListenerCount("click"); n != 1 {
		t.Errorf("listeners after second Bind = %d", n)
	}
}

func TestBind_SyncBothWays(t *testing.T) {
	f := newFixture(t, `<input id="name" b-sync="name"><input id="done" type="checkbox" b-sync="done">`, map[string]any{
		"name": "Ann",
		"done": true,
	})
	name, done := f.q(t, "#name"), f.q(t, "#done")
	if name.Value() != "Ann" || !done.Checked() {
		t.Fatalf("initial sync: %q %v", name.Value(), done.Checked())
	}

	name.Input("Bo")
	done.Input("false")
	if f.inst.State.Get("name") != "Bo" || f.inst.State.Get("done") != false {
		t.Errorf("state = %v %v", f.inst.State.Get("name"), f.inst.State.Get("done"))
	}

	f.inst.State.Set("name", "Cy")
	f.render()
	if name.Value() != "Cy" {
		t.Errorf("value = %q", name.Value())
	}
}

func TestRender_GlobalHolderRerendersDependents(t *testing.T) {
	cache := reactive.NewCache()
	global := cache.WrapObject(map[string]any{"theme": "dark"}, nil)
	var dependents []*Instance
	f := newFixture(t, `<p>[[ global.theme ]]</p>`, map[string]any{}, func(c *Config) {
		c.Global = global
		c.Active = func() []*Instance { return dependents }
	})
	dependents = append(dependents, f.inst)
	if !f.inst.GlobalDependent() {
		t.Fatal("instance not marked global-dependent")
	}

	global.Set("theme", "light")
	f.r.Render(&Instance{Global: true, State: global})
	if got := f.q(t, "p").TextContent(); got != "light" {
		t.Errorf("theme = %q", got)
	}
}

func TestRender_MustacheDelimiters(t *testing.T) {
	f := newFixture(t, `<p>{{ a }} [[ a ]]</p>`, map[string]any{"a": "x"}, func(c *Config) {
		c.Delimiters = binding.Mustache
	})
	if got := f.q(t, "p").TextContent(); got != "x [[ a ]]" {
		t.Errorf("text = %q", got)
	}
}

func TestRender_Hooks(t *testing.T) {
	var starts, ends int
	f := newFixture(t, `<p>[[ a ]]</p>`, map[string]any{"a": "x"}, func(c *Config) {
		c.Hooks.OnRenderStart = func(*dom.Node) { starts++ }
		c.Hooks.OnRenderEnd = func(*dom.Node) { ends++ }
	})
	f.render()
	if starts != 2 || ends != 2 {
		t.Errorf("starts=%d ends=%d", starts, ends)
	}
}

func TestElementAdapter(t *testing.T) {
	f := newFixture(t, `<input id="x" value="v" @focus="seen = self.value + ':' + self.tagName">`, map[string]any{"seen": ""})
	f.q(t, "#x").Dispatch(dom.NewEvent("focus"))
	if got := f.inst.State.Get("seen"); got != "v:INPUT" {
		t.Errorf("seen = %v", got)
	}
}
