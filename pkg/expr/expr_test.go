package expr

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/legodom/lego/pkg/reactive"
)

func newSandbox() *Sandbox {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func stateScope(data map[string]any, notify reactive.Notifier) (*reactive.Object, Scope) {
	obj := reactive.NewCache().WrapObject(data, notify)
	return obj, Chain{StateScope{State: obj}, Vars{"this": obj}, Globals()}
}

func TestEval_Expressions(t *testing.T) {
	_, scope := stateScope(map[string]any{
		"count": 2.0,
		"name":  "Ada",
		"user":  map[string]any{"role": "admin", "tags": []any{"a", "b"}},
		"items": []any{1.0, 2.0, 3.0},
		"empty": "",
		"n":     7, // Go int from host data
	}, nil)

	tests := []struct {
		src  string
		want any
	}{
		{"count + 1", 3.0},
		{"count * 3 - 1", 5.0},
		{"(count + 1) * 2", 6.0},
		{"10 % 4", 2.0},
		{"-count", -2.0},
		{"'Hi ' + name", "Hi Ada"},
		{`"n=" + count`, "n=2"},
		{"user.role", "admin"},
		{"user['role']", "admin"},
		{"user.tags.length", 2.0},
		{"user.tags[1]", "b"},
		{"items.length > 2", true},
		{"items.indexOf(2)", 1.0},
		{"items.includes(9)", false},
		{"items.join('-')", "1-2-3"},
		{"name.toUpperCase()", "ADA"},
		{"name.length", 3.0},
		{"count === 2", true},
		{"count == '2'", true},
		{"count === '2'", false},
		{"count !== 3", true},
		{"!empty", true},
		{"empty || 'fallback'", "fallback"},
		{"name && 'yes'", "yes"},
		{"missing ?? 'default'", "default"},
		{"missing?.deep", nil},
		{"count > 1 ? 'many' : 'one'", "many"},
		{"typeof name", "string"},
		{"typeof missing", "undefined"},
		{"typeof items", "object"},
		{"n + 1", 8.0},
		{"Math.max(1, count, 5)", 5.0},
		{"Math.floor(2.7)", 2.0},
		{"(3.14159).toFixed(2)", "3.14"},
		{"String(count)", "2"},
		{"parseInt('42px')", 42.0},
		{"[1, 2].length", 2.0},
		{"({a: 1}).a", 1.0},
		{"'abc' < 'abd'", true},
		{"null", nil},
		{"", nil},
	}
	sb := newSandbox()
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := sb.Exec(tt.src, scope)
			if err != nil {
				t.Fatalf("Exec(%q): %v", tt.src, err)
			}
			if !strictEqual(got, tt.want) {
				t.Errorf("Exec(%q) = %#v, want %#v", tt.src, got, tt.want)
			}
		})
	}
}

func TestEval_AssignmentNotifiesThroughState(t *testing.T) {
	n := 0
	state, scope := stateScope(map[string]any{
		"count": 1.0,
		"todos": []any{},
		"draft": "milk",
	}, func() { n++ })
	sb := newSandbox()

	tests := []struct {
		src  string
		key  string
		want any
	}{
		{"count++", "count", 2.0},
		{"++count", "count", 3.0},
		{"count += 10", "count", 13.0},
		{"count -= 3", "count", 10.0},
		{"count *= 2", "count", 20.0},
		{"count /= 4", "count", 5.0},
		{"count--", "count", 4.0},
		{"draft = 'eggs'", "draft", "eggs"},
	}
	for _, tt := range tests {
		if _, err := sb.Exec(tt.src, scope); err != nil {
			t.Fatalf("Exec(%q): %v", tt.src, err)
		}
		if got := state.Get(tt.key); got != tt.want {
			t.Errorf("after %q: %s = %v, want %v", tt.src, tt.key, got, tt.want)
		}
	}
	if n != len(tests) {
		t.Errorf("notifications = %d, want %d", n, len(tests))
	}

	if _, err := sb.Exec("todos.push({text: draft, done: false}); draft = ''", scope); err != nil {
		t.Fatal(err)
	}
	todos := state.Get("todos").(*reactive.Array)
	if todos.Len() != 1 {
		t.Fatalf("todos = %v", todos.Raw())
	}
	if todo := todos.Index(0).(*reactive.Object); todo.Get("text") != "eggs" {
		t.Errorf("todo text = %v", todo.Get("text"))
	}
	if state.Get("draft") != "" {
		t.Errorf("draft = %q", state.Get("draft"))
	}
}

func TestEval_PostfixReturnsOldValue(t *testing.T) {
	_, scope := stateScope(map[string]any{"i": 5.0}, nil)
	got, err := newSandbox().Exec("i++", scope)
	if err != nil {
		t.Fatal(err)
	}
	if got != 5.0 {
		t.Errorf("i++ = %v, want 5", got)
	}
}

func TestEval_MemberAssignOnNestedObject(t *testing.T) {
	n := 0
	state, scope := stateScope(map[string]any{
		"item": map[string]any{"done": false},
	}, func() { n++ })
	if _, err := newSandbox().Exec("item.done = !item.done", scope); err != nil {
		t.Fatal(err)
	}
	if state.Get("item").(*reactive.Object).Get("done") != true {
		t.Error("nested write lost")
	}
	if n != 1 {
		t.Errorf("notifications = %d, want 1", n)
	}
}

func TestEval_CallsHostFunctions(t *testing.T) {
	var gotThis any
	var gotArgs []any
	_, scope := stateScope(map[string]any{
		"greet": func(name string) string { return "hello " + name },
		"add":   func(a, b int) int { return a + b },
		"fail":  func() error { return errors.New("nope") },
		"method": Func(func(this any, args ...any) (any, error) {
			gotThis, gotArgs = this, args
			return nil, nil
		}),
	}, nil)
	sb := newSandbox()

	if v, err := sb.Exec("greet('bob')", scope); err != nil || v != "hello bob" {
		t.Errorf("greet = %v, %v", v, err)
	}
	if v, err := sb.Exec("add(2, 3)", scope); err != nil || v != 5.0 {
		t.Errorf("add = %v, %v", v, err)
	}
	if _, err := sb.Exec("fail()", scope); err == nil || err.Error() != "nope" {
		t.Errorf("fail error = %v", err)
	}

	if _, err := sb.Exec("method(1, 'x')", scope); err != nil {
		t.Fatal(err)
	}
	if _, ok := gotThis.(*reactive.Object); !ok {
		t.Errorf("bare call receiver = %T, want state", gotThis)
	}
	if len(gotArgs) != 2 || gotArgs[1] != "x" {
		t.Errorf("args = %v", gotArgs)
	}
}

func TestExec_InvokesCallableResultWithEvent(t *testing.T) {
	var got any
	state := reactive.NewCache().WrapObject(map[string]any{
		"onClick": Func(func(this any, args ...any) (any, error) {
			got = args[0]
			return nil, nil
		}),
	}, nil)
	scope := Chain{StateScope{State: state}, Vars{"this": state, "event": "the-event"}}

	if _, err := newSandbox().Exec("onClick", scope); err != nil {
		t.Fatal(err)
	}
	if got != "the-event" {
		t.Errorf("handler received %v, want the event", got)
	}
}

func TestDenylist(t *testing.T) {
	tests := []string{
		"(function(){ pwned = true })()",
		"eval('1')",
		"constructor",
		"items.constructor.constructor('x')()",
		"x.__proto__",
		"window.location.href",
		"document.cookie",
		"globalThis",
		"require('fs')",
		"process.env",
		"(() => 1)()",
		"import('x')",
		"class",
		"Function('return 1')",
		"a.prototype",
	}
	pwned := false
	_, scope := stateScope(map[string]any{"pwned": false}, func() { pwned = true })
	sb := newSandbox()
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			if !Denied(src) {
				t.Fatalf("%q not denied", src)
			}
			v, err := sb.Exec(src, scope)
			if v != nil || err != nil {
				t.Errorf("Exec(%q) = %v, %v; want nil, nil", src, v, err)
			}
			if _, err := sb.Compile(src); !errors.Is(err, ErrDenied) {
				t.Errorf("Compile error = %v, want ErrDenied", err)
			}
		})
	}
	if pwned {
		t.Error("denied expression executed")
	}

	for _, ok := range []string{"functional", "classes.length", "evaluate", "windows"} {
		if Denied(ok) {
			t.Errorf("%q must not be denied", ok)
		}
	}
}

func TestSandbox_CachesByText(t *testing.T) {
	sb := newSandbox()
	a, err := sb.Compile("a + b")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := sb.Compile("a + b")
	if a != b {
		t.Error("identical text must reuse the compiled form")
	}
	sb.Compile("a+b")
	if sb.Len() != 2 {
		t.Errorf("cache size = %d, want 2", sb.Len())
	}
}

func TestEval_ReportsErrorsAndYieldsNil(t *testing.T) {
	sb := newSandbox()
	var reported []error
	sb.OnError = func(_ string, err error) { reported = append(reported, err) }
	_, scope := stateScope(map[string]any{}, nil)

	for _, src := range []string{"missing.deep", "nope()", "1 +", "'unterminated"} {
		if v := sb.Eval(src, scope); v != nil {
			t.Errorf("Eval(%q) = %v, want nil", src, v)
		}
	}
	if len(reported) != 4 {
		t.Fatalf("reported %d errors, want 4: %v", len(reported), reported)
	}
	if !errors.Is(reported[0], ErrType) {
		t.Errorf("member on undefined: %v", reported[0])
	}
	var syn *SyntaxError
	if !errors.As(reported[2], &syn) {
		t.Errorf("want SyntaxError, got %v", reported[2])
	}
}

func TestExec_RecoversPanics(t *testing.T) {
	_, scope := stateScope(map[string]any{
		"boom": func() { panic("kaboom") },
	}, nil)
	_, err := newSandbox().Exec("boom()", scope)
	if err == nil {
		t.Fatal("panic must surface as an error")
	}
}

func TestParseObjectLiteral(t *testing.T) {
	lit, err := ParseObjectLiteral(`{ msg: 'Hello', count: 3, nested: { ok: true }, list: [1, 2], "quoted key": null, }`)
	if err != nil {
		t.Fatal(err)
	}
	v, err := Run(lit, Vars{})
	if err != nil {
		t.Fatal(err)
	}
	m := v.(map[string]any)
	if m["msg"] != "Hello" || m["count"] != 3.0 {
		t.Errorf("got %v", m)
	}
	if m["nested"].(map[string]any)["ok"] != true {
		t.Errorf("nested = %v", m["nested"])
	}
	if _, ok := m["quoted key"]; !ok {
		t.Error("quoted key missing")
	}

	for _, bad := range []string{"[1]", "{ a: }", "{ a: 1 } extra", "{"} {
		if _, err := ParseObjectLiteral(bad); err == nil {
			t.Errorf("ParseObjectLiteral(%q) succeeded", bad)
		}
	}
}

func TestParseData(t *testing.T) {
	m, err := ParseData(`{ n: Math.max(1, 4), label: 'x' }`)
	if err != nil {
		t.Fatal(err)
	}
	if m["n"] != 4.0 || m["label"] != "x" {
		t.Errorf("got %v", m)
	}

	m, err = ParseData("  ")
	if err != nil || m == nil || len(m) != 0 {
		t.Errorf("blank input = %v, %v", m, err)
	}
	if _, err := ParseData(`{ f: constructor }`); !errors.Is(err, ErrDenied) {
		t.Errorf("denied input error = %v", err)
	}
	if _, err := ParseData(`{ a: `); err == nil {
		t.Error("malformed input succeeded")
	}
}

func TestToString(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{1.0, "1"},
		{1.5, "1.5"},
		{-0.25, "-0.25"},
		{math.NaN(), "NaN"},
		{true, "true"},
		{[]any{1.0, "a"}, "1,a"},
		{map[string]any{"a": 1.0}, `{"a":1}`},
		{42, "42"},
	}
	for _, tt := range tests {
		if got := ToString(tt.in); got != tt.want {
			t.Errorf("ToString(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
