package sfc

import (
	stderrors "errors"
	"testing"

	"github.com/legodom/lego/internal/errors"
)

func TestKebab(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"TodoList", "todo-list"},
		{"todoList", "todo-list"},
		{"todo_list", "todo-list"},
		{"todo-list", "todo-list"},
		{"HTMLView", "html-view"},
		{"UserCard2", "user-card2"},
		{"Button", "button"},
	}
	for _, tt := range tests {
		if got := Kebab(tt.in); got != tt.want {
			t.Errorf("Kebab(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNameFromFile(t *testing.T) {
	tests := []struct {
		in    string
		want  string
		valid bool
	}{
		{"components/TodoList.lego", "todo-list", true},
		{`src\ui\user_card.lego`, "user-card", true},
		{"sample-component.lego", "sample-component", true},
		{"Button.lego", "button", false},
	}
	for _, tt := range tests {
		got := NameFromFile(tt.in)
		if got != tt.want || ValidName(got) != tt.valid {
			t.Errorf("NameFromFile(%q) = %q (valid %v)", tt.in, got, ValidName(got))
		}
	}
}

func TestParse(t *testing.T) {
	src := `<template b-styles="base cards" b-data="{ open: true }">
  <p>[[ title ]]</p>
</template>
<script>
export default {
  title: 'Hello',
  items: [1, 2],
  nested: { on: false },
};
</script>
<style>
  self { display: block; }
</style>`

	f, err := Parse(src, "HelloCard.lego")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if f.Name != "hello-card" {
		t.Errorf("Name = %q", f.Name)
	}
	if f.Template != "<p>[[ title ]]</p>" {
		t.Errorf("Template = %q", f.Template)
	}
	if len(f.Styles) != 2 || f.Styles[0] != "base" || f.Styles[1] != "cards" {
		t.Errorf("Styles = %q", f.Styles)
	}
	if f.Data != "{ open: true }" {
		t.Errorf("Data = %q", f.Data)
	}
	if f.State["title"] != "Hello" {
		t.Errorf("State = %v", f.State)
	}
	if items, ok := f.State["items"].([]any); !ok || len(items) != 2 || items[1] != 2.0 {
		t.Errorf("items = %#v", f.State["items"])
	}
	if f.Style != "self { display: block; }" {
		t.Errorf("Style = %q", f.Style)
	}
	if got := f.Markup(); got != "<style>self { display: block; }</style>\n<p>[[ title ]]</p>" {
		t.Errorf("Markup = %q", got)
	}
}

func TestParse_SectionsInsideTemplateIgnored(t *testing.T) {
	src := `<template><div><style>.x{}</style></div></template><script>{ a: 1 }</script>`
	f, err := Parse(src, "x-y.lego")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if f.Style != "" {
		t.Errorf("Style = %q, want none", f.Style)
	}
	if f.State["a"] != 1.0 {
		t.Errorf("State = %v", f.State)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		filename string
		code     string
	}{
		{"no hyphen", "<template><p></p></template>", "Button.lego", "L001"},
		{"empty", "   ", "empty-one.lego", "L020"},
		{"script not a literal", "<script>const x = 1</script>", "bad-script.lego", "L021"},
		{"denied script", "<script>{ f: function() {} }</script>", "bad-script.lego", "L021"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src, tt.filename)
			if !stderrors.Is(err, errors.New(tt.code)) {
				t.Fatalf("err = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestParse_ScriptErrorLocation(t *testing.T) {
	src := "<template><p></p></template>\n<script>\nexport default {\n  a: 1 +\n}\n</script>"
	_, err := Parse(src, "loc-test.lego")
	var le *errors.LegoError
	if !stderrors.As(err, &le) {
		t.Fatalf("err = %v", err)
	}
	if le.Location == nil || le.Location.File != "loc-test.lego" || le.Location.Line < 3 {
		t.Errorf("location = %v", le.Location)
	}
}

func TestParse_EmptyScriptYieldsEmptyState(t *testing.T) {
	f, err := Parse("<template><p>x</p></template>", "plain-view.lego")
	if err != nil {
		t.Fatal(err)
	}
	if f.State == nil || len(f.State) != 0 {
		t.Errorf("State = %v", f.State)
	}
}
