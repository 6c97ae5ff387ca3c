package binding

import (
	"testing"

	"github.com/legodom/lego/pkg/dom"
)

func fragment(t *testing.T, markup string) *dom.Node {
	t.Helper()
	frag, err := dom.FragmentFromHTML(markup)
	if err != nil {
		t.Fatalf("parse %q: %v", markup, err)
	}
	return frag
}

func kinds(b *Bindings) []Kind {
	out := make([]Kind, len(b.Items))
	for i, d := range b.Items {
		out[i] = d.Kind
	}
	return out
}

func TestScan_PriorityOrderPerNode(t *testing.T) {
	root := fragment(t, `<input b-if="open" b-show="visible" b-sync="name" b-id="field" @input="touched = true" title="[[ hint ]]">`)
	got := kinds(Scan(root, Brackets))
	want := []Kind{KindIf, KindShow, KindSync, KindRef, KindEvent, KindAttr}
	if len(got) != len(want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("kinds[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestScan_ForCapturesAndClearsTemplate(t *testing.T) {
	root := fragment(t, `<ul b-for="todo in todos"><li>[[ todo.text ]]</li></ul><p>[[ count ]]</p>`)
	b := Scan(root, Brackets)

	if len(b.Items) != 2 {
		t.Fatalf("items = %v", kinds(b))
	}
	f := b.Items[0]
	if f.Kind != KindFor || f.Name != "todo" || f.Expr != "todos" || f.Index != "" {
		t.Errorf("for descriptor = %+v", f)
	}
	if f.Template != "<li>[[ todo.text ]]</li>" {
		t.Errorf("template = %q", f.Template)
	}
	if len(f.Node.Children()) != 0 {
		t.Error("b-for children must be cleared")
	}
	if b.Items[1].Kind != KindText {
		t.Errorf("second binding = %s, want text", b.Items[1].Kind)
	}
}

func TestParseFor(t *testing.T) {
	tests := []struct {
		in                string
		item, index, list string
		ok                bool
	}{
		{"item in items", "item", "", "items", true},
		{"  row in data.rows  ", "row", "", "data.rows", true},
		{"(item, i) in items", "item", "i", "items", true},
		{"item of items", "", "", "", false},
		{"in items", "", "", "", false},
	}
	for _, tt := range tests {
		item, index, list, ok := ParseFor(tt.in)
		if ok != tt.ok || item != tt.item || index != tt.index || list != tt.list {
			t.Errorf("ParseFor(%q) = %q %q %q %v", tt.in, item, index, list, ok)
		}
	}
}

func TestScan_DelimiterIsolation(t *testing.T) {
	root := fragment(t, `<div>{{ msg }} - [[ msg ]]</div>`)

	b := Scan(root, Brackets)
	if len(b.Items) != 1 {
		t.Fatalf("brackets: %d bindings", len(b.Items))
	}
	segs := b.Items[0].Segments
	if len(segs) != 2 || segs[0].IsExpr || segs[0].Text != "{{ msg }} - " || !segs[1].IsExpr || segs[1].Text != "msg" {
		t.Errorf("segments = %+v", segs)
	}

	onlyBrackets := fragment(t, `<div>[[ msg ]]</div>`)
	if b := Scan(onlyBrackets, Mustache); len(b.Items) != 0 {
		t.Errorf("mustache scan bound bracket text: %v", kinds(b))
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		in   string
		want []Segment
	}{
		{"plain", []Segment{{Text: "plain"}}},
		{"[[a]]", []Segment{{Text: "a", IsExpr: true}}},
		{"x [[ a ]] y [[b]]", []Segment{{Text: "x "}, {Text: "a", IsExpr: true}, {Text: " y "}, {Text: "b", IsExpr: true}}},
		{"open [[ a", []Segment{{Text: "open [[ a"}}},
	}
	for _, tt := range tests {
		got := Brackets.Split(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("Split(%q) = %+v", tt.in, got)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Split(%q)[%d] = %+v, want %+v", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}

func TestScan_GlobalDependency(t *testing.T) {
	tests := []struct {
		markup string
		want   bool
	}{
		{`<p>[[ count ]]</p>`, false},
		{`<p>[[ global.user ]]</p>`, true},
		{`<p b-if="global.loggedIn"></p>`, true},
		{`<p b-text="global.title"></p>`, true},
		{`<ul b-for="x in items"><li>[[ global.theme ]]</li></ul>`, true},
		{`<p>[[ globalCount ]]</p>`, false},
		{`<p>[[ cfg.global ]]</p>`, false},
		{`<a b-if="$route.path == '/'">home</a>`, true},
		{`<p>[[ $route.params.id ]]</p>`, true},
		{`<p>[[ $router ]]</p>`, false},
		{`<p>[[ me.$route ]]</p>`, false},
	}
	for _, tt := range tests {
		if got := Scan(fragment(t, tt.markup), Brackets).Global; got != tt.want {
			t.Errorf("%s: global = %v, want %v", tt.markup, got, tt.want)
		}
	}
}

func TestScan_IfAllocatesPlaceholder(t *testing.T) {
	b := Scan(fragment(t, `<p b-if="ok">x</p>`), Brackets)
	ph := b.Items[0].Placeholder
	if ph == nil || ph.Type != dom.CommentNode {
		t.Fatalf("placeholder = %v", ph)
	}
}

func TestInteractive_DoesNotMutate(t *testing.T) {
	root := fragment(t, `<button @click="inc()">+</button><ul b-for="x in xs"><li @click="pick(x)">[[x]]</li></ul><input b-sync="name">`)
	before := root.InnerHTML()
	got := Interactive(root)
	if root.InnerHTML() != before {
		t.Error("Interactive modified the tree")
	}
	if len(got) != 2 || got[0].Kind != KindEvent || got[0].Name != "click" || got[1].Kind != KindSync {
		t.Errorf("interactive = %+v", got)
	}
}

func TestParseSyntax(t *testing.T) {
	if d, err := ParseSyntax(""); err != nil || d != Brackets {
		t.Errorf("default = %v, %v", d, err)
	}
	if d, err := ParseSyntax("Mustache"); err != nil || d != Mustache {
		t.Errorf("mustache = %v, %v", d, err)
	}
	if _, err := ParseSyntax("jinja"); err == nil {
		t.Error("unknown syntax accepted")
	}
}
