package vtest

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/legodom/lego"
	"github.com/legodom/lego/pkg/component"
	"github.com/legodom/lego/pkg/dom"
	"github.com/legodom/lego/pkg/reactive"
	"github.com/legodom/lego/pkg/render"
	"github.com/legodom/lego/pkg/scheduler"
)

// DefaultSettleFrames bounds Settle.
const DefaultSettleFrames = 32

// Caught is an error delivered to the harness error hook.
type Caught struct {
	Err      error
	Category render.Category
	Element  *dom.Node
}

// Harness runs an App on a manual frame clock. Frames and microtasks only
// run when the test asks for them.
type Harness struct {
	t    testing.TB
	App  *lego.App
	Host *scheduler.ManualHost

	errs []Caught
}

// New creates a harness. Options are applied after the harness defaults,
// except that the error hook always records into the harness before
// calling any hook passed with lego.WithHooks.
func New(t testing.TB, opts ...lego.Option) *Harness {
	t.Helper()
	h := &Harness{t: t, Host: scheduler.NewManualHost()}
	all := append([]lego.Option{
		lego.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)
	all = append(all, lego.WithHost(h.Host), h.recordErrors())
	app, err := lego.New(all...)
	if err != nil {
		t.Fatalf("vtest: lego.New: %v", err)
	}
	h.App = app
	return h
}

func (h *Harness) recordErrors() lego.Option {
	return func(c *lego.Config) {
		next := c.Hooks.OnError
		c.Hooks.OnError = func(err error, category render.Category, el *dom.Node) {
			h.errs = append(h.errs, Caught{Err: err, Category: category, Element: el})
			if next != nil {
				next(err, category, el)
			}
		}
	}
}

// Define registers a component or fails the test.
func (h *Harness) Define(name, template string, script component.Script) *Harness {
	h.t.Helper()
	if err := h.App.Define(name, template, script); err != nil {
		h.t.Fatalf("vtest: define %s: %v", name, err)
	}
	return h
}

// DefineSFC registers single-file component text or fails the test.
func (h *Harness) DefineSFC(src, filename string) *Harness {
	h.t.Helper()
	if err := h.App.DefineSFC(src, filename); err != nil {
		h.t.Fatalf("vtest: define %s: %v", filename, err)
	}
	return h
}

// Mount loads a page whose body is body and settles it.
func (h *Harness) Mount(body string) *Harness {
	h.t.Helper()
	if err := h.App.LoadPage("<html><head></head><body>" + body + "</body></html>"); err != nil {
		h.t.Fatalf("vtest: load page: %v", err)
	}
	h.Settle()
	return h
}

// Flush runs one frame and the microtasks it queued.
func (h *Harness) Flush() bool {
	ran := h.Host.Frame()
	h.Host.RunMicrotasks()
	return ran
}

// Settle runs tasks, microtasks and frames until the App is idle.
func (h *Harness) Settle() int {
	return h.Host.Settle(DefaultSettleFrames)
}

// Errors returns the errors caught so far.
func (h *Harness) Errors() []Caught { return h.errs }

// Query finds the first element matching a path of selectors. Each
// selector after the first is matched inside the shadow tree of the
// previous element: Query("todo-list", "todo-item", "li").
func (h *Harness) Query(path ...string) *dom.Node {
	h.t.Helper()
	root := h.App.Document()
	if root == nil {
		h.t.Fatalf("vtest: no document mounted")
	}
	var cur *dom.Node
	for i, sel := range path {
		if i > 0 {
			root = cur.ShadowRoot()
			if root == nil {
				h.t.Fatalf("vtest: %q has no shadow root", strings.Join(path[:i], " / "))
			}
		}
		cur = root.QuerySelector(sel)
		if cur == nil {
			h.t.Fatalf("vtest: no element matches %q", strings.Join(path[:i+1], " / "))
		}
	}
	return cur
}

// Text returns the text content of the element at path.
func (h *Harness) Text(path ...string) string {
	h.t.Helper()
	return h.Query(path...).TextContent()
}

// State returns the reactive state of the component at path.
func (h *Harness) State(path ...string) *reactive.Object {
	h.t.Helper()
	inst := h.App.Manager().Instance(h.Query(path...))
	if inst == nil {
		h.t.Fatalf("vtest: %q is not a component", strings.Join(path, " / "))
	}
	return inst.State
}

// Click clicks the element at path and settles.
func (h *Harness) Click(path ...string) {
	h.t.Helper()
	h.Query(path...).Click()
	h.Settle()
}

// Input edits the form control at path and settles.
func (h *Harness) Input(value string, path ...string) {
	h.t.Helper()
	h.Query(path...).Input(value)
	h.Settle()
}

// HTML returns the composed document markup.
func (h *Harness) HTML() string {
	h.t.Helper()
	out, err := h.App.HTML()
	if err != nil {
		h.t.Fatalf("vtest: %v", err)
	}
	return out
}

// ExpectText asserts the text content of the element at path.
func (h *Harness) ExpectText(want string, path ...string) {
	h.t.Helper()
	if got := strings.TrimSpace(h.Text(path...)); got != want {
		h.t.Errorf("text of %q = %q, want %q", strings.Join(path, " / "), got, want)
	}
}

// ExpectContains asserts that the composed markup contains expected.
func (h *Harness) ExpectContains(expected string) {
	h.t.Helper()
	if out := h.HTML(); !strings.Contains(out, expected) {
		h.t.Errorf("expected output to contain %q, got:\n%s", expected, truncate(out, 500))
	}
}

// ExpectNotContains asserts that the composed markup does not contain
// unexpected.
func (h *Harness) ExpectNotContains(unexpected string) {
	h.t.Helper()
	if out := h.HTML(); strings.Contains(out, unexpected) {
		h.t.Errorf("expected output to NOT contain %q, got:\n%s", unexpected, truncate(out, 500))
	}
}

// ExpectNoErrors asserts that nothing was reported to the error hook.
func (h *Harness) ExpectNoErrors() {
	h.t.Helper()
	for _, c := range h.errs {
		h.t.Errorf("unexpected %s error: %v", c.Category, c.Err)
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
