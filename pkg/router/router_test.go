package router

import (
	stderrors "errors"
	"testing"

	"github.com/legodom/lego/internal/errors"
)

func TestMatch(t *testing.T) {
	r := New(Config{})
	for _, rt := range []struct{ pattern, tag string }{
		{"/users/:id", "user-page"},
		{"/users/:id/posts/:post", "user-post"},
		{"/files/*", "file-browser"},
		{"/", "home-page"},
	} {
		if err := r.Add(rt.pattern, rt.tag, nil); err != nil {
			t.Fatalf("Add(%q): %v", rt.pattern, err)
		}
	}

	tests := []struct {
		url    string
		tag    string
		params map[string]string
		ok     bool
	}{
		{"/users/42", "user-page", map[string]string{"id": "42"}, true},
		{"/users/42/", "user-page", map[string]string{"id": "42"}, true},
		{"/users/a%20b", "user-page", map[string]string{"id": "a b"}, true},
		{"/users/7/posts/9?x=1", "user-post", map[string]string{"id": "7", "post": "9"}, true},
		{"/files/a/b/c.txt", "file-browser", map[string]string{"*": "a/b/c.txt"}, true},
		{"/", "home-page", map[string]string{}, true},
		{"", "home-page", map[string]string{}, true},
		{"/nope", "", nil, false},
		{"/users", "", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			m, ok := r.Match(tt.url)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if m.Route.Tag != tt.tag {
				t.Errorf("tag = %q, want %q", m.Route.Tag, tt.tag)
			}
			if len(m.Params) != len(tt.params) {
				t.Fatalf("params = %v, want %v", m.Params, tt.params)
			}
			for k, v := range tt.params {
				if m.Params[k] != v {
					t.Errorf("param %s = %q, want %q", k, m.Params[k], v)
				}
			}
		})
	}
}

func TestMatch_FirstRegisteredWins(t *testing.T) {
	r := New(Config{})
	_ = r.Add("/items/:id", "item-generic", nil)
	_ = r.Add("/items/new", "item-new", nil)

	m, ok := r.Match("/items/new")
	if !ok || m.Route.Tag != "item-generic" {
		t.Errorf("matched %v, want item-generic", m.Route)
	}
}

func TestMatch_Query(t *testing.T) {
	r := New(Config{})
	_ = r.Add("/search", "search-page", nil)

	m, ok := r.Match("/search?q=go&page=2&q=ignored#results")
	if !ok {
		t.Fatal("no match")
	}
	q := m.Query()
	if q["q"] != "go" || q["page"] != "2" {
		t.Errorf("query = %v", q)
	}
	if m.Location.Hash != "results" {
		t.Errorf("hash = %q", m.Location.Hash)
	}
}

func TestAdd_InvalidPattern(t *testing.T) {
	r := New(Config{})
	for _, p := range []string{"/a/:", "/a/:id/:id", "/a/*/b", "/../x", `\a`} {
		err := r.Add(p, "x-y", nil)
		if !stderrors.Is(err, errors.New("L040")) {
			t.Errorf("Add(%q) = %v, want L040", p, err)
		}
	}
	if len(r.Routes()) != 0 {
		t.Errorf("invalid routes were registered")
	}
}

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		in, want string
		err      error
	}{
		{"", "/", nil},
		{"/", "/", nil},
		{"users", "/users", nil},
		{"/blog//post/", "/blog/post", nil},
		{"/blog/./post", "/blog/post", nil},
		{"/blog/../other", "/other", nil},
		{"/../secret", "", ErrPathEscapesRoot},
		{`/a\b`, "", ErrBackslashInPath},
		{"/a%00b", "", ErrNullByteInPath},
		{"/a%GG", "", ErrInvalidPercentEscape},
	}
	for _, tt := range tests {
		got, err := Canonicalize(tt.in)
		if !stderrors.Is(err, tt.err) || got != tt.want {
			t.Errorf("Canonicalize(%q) = %q, %v; want %q, %v", tt.in, got, err, tt.want, tt.err)
		}
	}
}

func TestParseLocation_RejectsAbsolute(t *testing.T) {
	for _, raw := range []string{"https://evil.example/x", "//evil.example/x"} {
		if _, err := ParseLocation(raw); !stderrors.Is(err, ErrAbsoluteURL) {
			t.Errorf("ParseLocation(%q) err = %v", raw, err)
		}
	}
}

func TestDecode(t *testing.T) {
	var p struct {
		ID     int      `param:"id"`
		Slug   string   `param:"slug"`
		Draft  bool     `param:"draft"`
		Rest   []string `param:"*"`
		Ignore string
	}
	err := Decode(map[string]string{"id": "12", "slug": "hello", "draft": "true", "*": "a/b"}, &p)
	if err != nil {
		t.Fatal(err)
	}
	if p.ID != 12 || p.Slug != "hello" || !p.Draft || len(p.Rest) != 2 {
		t.Errorf("decoded %+v", p)
	}

	if err := Decode(map[string]string{"id": "x"}, &p); err == nil {
		t.Error("bad integer accepted")
	}
	if err := Decode(nil, p); err == nil {
		t.Error("non-pointer accepted")
	}
}
