package reactive

import (
	"runtime"
	"testing"
	"time"
)

func counter() (*int, Notifier) {
	n := 0
	return &n, func() { n++ }
}

func TestWrap_PassesThroughScalars(t *testing.T) {
	c := NewCache()
	for _, v := range []any{nil, 1.0, "s", true} {
		if got := c.Wrap(v, nil); got != v {
			t.Errorf("Wrap(%v) = %v", v, got)
		}
	}
}

func TestWrap_IdentityStable(t *testing.T) {
	c := NewCache()
	m := map[string]any{"a": 1.0}
	p1 := c.Wrap(m, nil)
	p2 := c.Wrap(m, nil)
	if p1 != p2 {
		t.Fatal("same map must yield the same proxy")
	}
	if c.Wrap(p1, nil) != p1 {
		t.Fatal("wrapping a proxy must return it")
	}
	other := c.Wrap(map[string]any{"a": 1.0}, nil)
	if other == p1 {
		t.Fatal("distinct maps must yield distinct proxies")
	}
}

func TestObject_NestedReadsAreWrappedLazily(t *testing.T) {
	c := NewCache()
	count, notify := counter()
	root := c.WrapObject(map[string]any{
		"user": map[string]any{"name": "ada"},
	}, notify)

	user, ok := root.Get("user").(*Object)
	if !ok {
		t.Fatalf("nested map not wrapped: %T", root.Get("user"))
	}
	if root.Get("user") != user {
		t.Error("nested proxy identity must be stable")
	}
	user.Set("name", "grace")
	if *count != 1 {
		t.Errorf("notifications = %d, want 1", *count)
	}
	if root.Raw()["user"].(map[string]any)["name"] != "grace" {
		t.Error("write did not reach underlying data")
	}
}

func TestObject_SetNotifiesOnlyOnChange(t *testing.T) {
	c := NewCache()
	count, notify := counter()
	o := c.WrapObject(map[string]any{"n": 1.0}, notify)

	o.Set("n", 1.0)
	if *count != 0 {
		t.Fatalf("unchanged write notified %d times", *count)
	}
	o.Set("n", 2.0)
	o.Set("n", 2.0)
	if *count != 1 {
		t.Fatalf("notifications = %d, want 1", *count)
	}
	o.Delete("missing")
	if *count != 2 {
		t.Fatalf("delete must always notify, got %d", *count)
	}
}

func TestObject_SetComparesContainersByReference(t *testing.T) {
	c := NewCache()
	count, notify := counter()
	inner := map[string]any{}
	o := c.WrapObject(map[string]any{"m": inner}, notify)

	o.Set("m", o.Get("m"))
	if *count != 0 {
		t.Fatalf("writing the same proxy back must not notify")
	}
	o.Set("m", map[string]any{})
	if *count != 1 {
		t.Fatalf("replacing with an equal-looking map must notify")
	}
}

func TestArray_PushWritesBackThroughParent(t *testing.T) {
	c := NewCache()
	count, notify := counter()
	o := c.WrapObject(map[string]any{"items": []any{"a"}}, notify)

	items := o.Get("items").(*Array)
	if n := items.Push("b", "c"); n != 3 {
		t.Fatalf("Push returned %d", n)
	}
	if *count != 1 {
		t.Fatalf("Push notified %d times, want 1", *count)
	}
	raw := o.Raw()["items"].([]any)
	if len(raw) != 3 || raw[2] != "c" {
		t.Fatalf("parent slot = %v", raw)
	}
	if o.Get("items") != items {
		t.Error("array proxy identity must follow its new backing slice")
	}
}

func TestArray_SpliceAndPop(t *testing.T) {
	c := NewCache()
	_, notify := counter()
	o := c.WrapObject(map[string]any{"xs": []any{1.0, 2.0, 3.0, 4.0}}, notify)
	xs := o.Get("xs").(*Array)

	removed := xs.Splice(1, 2, "x")
	if len(removed) != 2 || removed[0] != 2.0 {
		t.Errorf("removed = %v", removed)
	}
	if got := xs.Raw(); len(got) != 3 || got[1] != "x" {
		t.Errorf("after splice = %v", got)
	}
	if last := xs.Pop(); last != 4.0 {
		t.Errorf("Pop = %v", last)
	}
	if xs.Len() != 2 || xs.IndexOf("x") != 1 {
		t.Errorf("state = %v", xs.Raw())
	}
}

func TestArray_SetIndexInPlace(t *testing.T) {
	c := NewCache()
	count, notify := counter()
	backing := []any{"a", "b"}
	o := c.WrapObject(map[string]any{"xs": backing}, notify)
	xs := o.Get("xs").(*Array)

	xs.SetIndex(1, "b")
	xs.SetIndex(1, "z")
	if *count != 1 {
		t.Fatalf("notifications = %d, want 1", *count)
	}
	if backing[1] != "z" {
		t.Error("in-place write must reach the shared backing array")
	}
}

func TestArray_ItemsKeepIdentityTags(t *testing.T) {
	c := NewCache()
	o := c.WrapObject(map[string]any{"xs": []any{map[string]any{"id": 1.0}}}, nil)
	first := o.Get("xs").(*Array).Index(0).(*Object)
	again := o.Get("xs").(*Array).Items()[0].(*Object)
	if first.ID() != again.ID() {
		t.Errorf("identity tag changed: %d vs %d", first.ID(), again.ID())
	}
	if _, ok := first.Raw()["__id"]; ok {
		t.Error("identity must not be written into application data")
	}
}

func TestCache_EvictsCollectedProxies(t *testing.T) {
	c := NewCache()
	func() {
		for i := 0; i < 8; i++ {
			_ = c.Wrap(map[string]any{"i": i}, nil)
		}
	}()
	deadline := time.Now().Add(2 * time.Second)
	for c.Len() != 0 && time.Now().Before(deadline) {
		runtime.GC()
		time.Sleep(10 * time.Millisecond)
	}
	if n := c.Len(); n != 0 {
		t.Errorf("live entries = %d, want 0", n)
	}
}

func TestSame(t *testing.T) {
	m := map[string]any{}
	s := []any{1}
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"nil nil", nil, nil, true},
		{"nil value", nil, 0.0, false},
		{"equal floats", 1.0, 1.0, true},
		{"int vs float", 1, 1.0, false},
		{"same map", m, m, true},
		{"different maps", m, map[string]any{}, false},
		{"same slice", s, s, true},
		{"resliced", s, s[:0], false},
		{"strings", "a", "a", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Same(tt.a, tt.b); got != tt.want {
				t.Errorf("Same = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClone_DeepCopiesContainers(t *testing.T) {
	src := map[string]any{"list": []any{map[string]any{"x": 1.0}}}
	dst := Clone(src).(map[string]any)
	dst["list"].([]any)[0].(map[string]any)["x"] = 2.0
	if src["list"].([]any)[0].(map[string]any)["x"] != 1.0 {
		t.Error("Clone must not share nested containers")
	}
}
