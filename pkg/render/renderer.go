package render

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/legodom/lego/pkg/binding"
	"github.com/legodom/lego/pkg/dom"
	"github.com/legodom/lego/pkg/expr"
	"github.com/legodom/lego/pkg/reactive"
)

// Config configures a Renderer.
type Config struct {
	// Sandbox evaluates binding expressions. Required.
	Sandbox *expr.Sandbox

	// Delimiters select the interpolation syntax. Defaults to brackets.
	Delimiters binding.Delimiters

	Hooks  Hooks
	Logger *slog.Logger

	// Global is the application-wide state exposed to expressions as
	// "global".
	Global *reactive.Object

	// Active lists the mounted instances. A render of the global holder
	// re-renders the global-dependent ones.
	Active func() []*Instance
}

// Renderer applies bindings to instances. It is not safe for concurrent
// use; all calls belong on the runtime goroutine.
type Renderer struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a renderer.
func New(cfg Config) *Renderer {
	if cfg.Sandbox == nil {
		cfg.Sandbox = expr.New(cfg.Logger)
	}
	if cfg.Delimiters.Open == "" {
		cfg.Delimiters = binding.Brackets
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Renderer{cfg: cfg, logger: cfg.Logger}
}

// Sandbox returns the renderer's expression sandbox.
func (r *Renderer) Sandbox() *expr.Sandbox { return r.cfg.Sandbox }

// Delimiters returns the active interpolation delimiters.
func (r *Renderer) Delimiters() binding.Delimiters { return r.cfg.Delimiters }

// Hooks returns the installed hooks.
func (r *Renderer) Hooks() Hooks { return r.cfg.Hooks }

// SetGlobal replaces the global state exposed to expressions.
func (r *Renderer) SetGlobal(g *reactive.Object) { r.cfg.Global = g }

// Render brings inst's tree in line with its state. A render already in
// progress for inst makes the call a no-op. Panics are caught and reported
// as render errors, leaving the tree as far as it got.
func (r *Renderer) Render(inst *Instance) {
	if inst == nil || inst.rendering {
		return
	}
	inst.rendering = true
	if r.cfg.Hooks.OnRenderStart != nil && inst.Host != nil {
		r.cfg.Hooks.OnRenderStart(inst.Host)
	}
	defer func() {
		if v := recover(); v != nil {
			r.Report(&PanicError{Value: v, Stack: debug.Stack()}, CategoryRender, inst.Host)
		}
		inst.rendering = false
		inst.renders++
		if r.cfg.Hooks.OnRenderEnd != nil && inst.Host != nil {
			r.cfg.Hooks.OnRenderEnd(inst.Host)
		}
	}()

	if inst.Root != nil {
		if inst.bindings == nil {
			inst.bindings = binding.Scan(inst.Root, r.cfg.Delimiters)
		}
		r.apply(inst, inst.bindings.Items, nil)
	}

	if inst.Global && r.cfg.Active != nil {
		for _, dep := range r.cfg.Active() {
			if dep != inst && dep.GlobalDependent() {
				r.Render(dep)
			}
		}
	}
}

// Report delivers err to the error hook, or logs it when none is set.
func (r *Renderer) Report(err error, category Category, el *dom.Node) {
	if err == nil {
		return
	}
	herr := &HookError{Category: category, Element: el, Err: err}
	if r.cfg.Hooks.OnError == nil {
		attrs := []any{"category", string(category), "error", err}
		if el != nil {
			attrs = append(attrs, "tag", el.Tag)
		}
		if pe, ok := err.(*PanicError); ok {
			attrs = append(attrs, "stack", string(pe.Stack))
		}
		r.logger.Error("lego error", attrs...)
		return
	}
	defer func() {
		if v := recover(); v != nil {
			r.logger.Error("error hook panicked", "panic", v, "error", herr)
		}
	}()
	r.cfg.Hooks.OnError(herr, category, el)
}

// Scope builds the evaluation scope of inst. loop, when non-nil, holds
// list variables and shadows everything else; self and ev become "self"
// and "event".
func (r *Renderer) Scope(inst *Instance, loop expr.Scope, self *dom.Node, ev *dom.Event) expr.Scope {
	s, _ := r.scope(inst, loop, self, ev)
	return s
}

// scope also returns the built-in variables so a render pass can rebind
// "self" per binding.
func (r *Renderer) scope(inst *Instance, loop expr.Scope, self *dom.Node, ev *dom.Event) (expr.Scope, expr.Vars) {
	builtins := expr.Vars{
		"this":  inst.State,
		"self":  ElementValue(self),
		"event": EventValue(ev),
	}
	if r.cfg.Global != nil {
		builtins["global"] = r.cfg.Global
	}
	chain := make(expr.Chain, 0, 5)
	if loop != nil {
		chain = append(chain, expr.ReadOnly(loop))
	}
	chain = append(chain, expr.StateScope{State: inst.State}, expr.ReadOnly(builtins))
	if inst.Helpers != nil {
		chain = append(chain, inst.Helpers)
	}
	return append(chain, expr.Globals()), builtins
}

// eval evaluates src for a render pass. Failures are reported as render
// errors and yield nil.
func (r *Renderer) eval(inst *Instance, src string, scope expr.Scope) any {
	v, err := r.cfg.Sandbox.Exec(src, scope)
	if err != nil {
		r.Report(fmt.Errorf("evaluate %q: %w", src, err), CategoryRender, inst.Host)
		return nil
	}
	return v
}

// interpolate renders segments with every expression result escaped.
func (r *Renderer) interpolate(inst *Instance, segs []binding.Segment, scope expr.Scope) string {
	if len(segs) == 1 && !segs[0].IsExpr {
		return segs[0].Text
	}
	var out []byte
	for _, s := range segs {
		if !s.IsExpr {
			out = append(out, s.Text...)
			continue
		}
		out = append(out, EscapeHTML(expr.ToString(r.eval(inst, s.Text, scope)))...)
	}
	return string(out)
}
