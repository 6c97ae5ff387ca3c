package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/legodom/lego/pkg/dom"
	"github.com/legodom/lego/pkg/reactive"
)

// Navigation errors.
var (
	ErrNoRoute   = errors.New("router: no route matches")
	ErrCancelled = errors.New("router: navigation cancelled by middleware")
	ErrNoTarget  = errors.New("router: no navigation target")
	ErrNoHistory = errors.New("router: no history entry")
)

// NavigateOptions configures a navigation.
type NavigateOptions struct {
	// Targets are selectors for the elements whose children are replaced.
	// "#id" looks an element up by id. Shadow trees are searched.
	Targets []string

	// TargetFunc selects targets among every element with a hyphenated
	// tag.
	TargetFunc func(el *dom.Node) bool

	// Method is the HTTP verb recorded with the navigation. Defaults to GET.
	Method string

	Body any

	// Replace overwrites the current history entry instead of pushing.
	Replace bool

	// Done receives the outcome when middleware runs asynchronously.
	Done func(error)

	replay bool
}

// NavigateOption is a functional option for Navigate.
type NavigateOption func(*NavigateOptions)

// WithTargets sets the target selectors.
func WithTargets(selectors ...string) NavigateOption {
	return func(o *NavigateOptions) { o.Targets = append(o.Targets, selectors...) }
}

// WithTargetFunc selects targets with fn.
func WithTargetFunc(fn func(el *dom.Node) bool) NavigateOption {
	return func(o *NavigateOptions) { o.TargetFunc = fn }
}

// WithMethod records the HTTP verb of the navigation.
func WithMethod(method string) NavigateOption {
	return func(o *NavigateOptions) {
		if method != "" {
			o.Method = strings.ToUpper(method)
		}
	}
}

// WithBody attaches a request body to the navigation.
func WithBody(body any) NavigateOption {
	return func(o *NavigateOptions) { o.Body = body }
}

// WithReplace replaces the current history entry instead of pushing.
func WithReplace() NavigateOption {
	return func(o *NavigateOptions) { o.Replace = true }
}

// OnDone registers a callback for the navigation's outcome.
func OnDone(fn func(error)) NavigateOption {
	return func(o *NavigateOptions) { o.Done = fn }
}

func replaying() NavigateOption {
	return func(o *NavigateOptions) { o.replay = true }
}

// Navigate matches raw against the route table, runs the route's
// middleware and, if it allows the navigation, publishes $route on the
// global state and mounts a fresh element of the route's tag into every
// target.
//
// When the route has middleware and Config.Post is set, the middleware
// runs on its own goroutine; Navigate then returns nil and the outcome is
// delivered to the OnDone callback.
func (r *Router) Navigate(ctx context.Context, raw string, opts ...NavigateOption) error {
	o := NavigateOptions{Method: http.MethodGet}
	for _, opt := range opts {
		opt(&o)
	}

	m, ok := r.Match(raw)
	if !ok {
		return r.finish(o, fmt.Errorf("%w: %s", ErrNoRoute, raw))
	}
	mw := m.Route.Middleware
	if mw == nil {
		return r.finish(o, r.commit(m, o))
	}

	var global map[string]any
	if g := r.cfg.Global; g != nil {
		global, _ = reactive.Clone(g.Raw()).(map[string]any)
	}
	if r.cfg.Post == nil {
		allowed, err := mw(ctx, m.Params, global)
		return r.finish(o, r.guarded(m, o, allowed, err))
	}
	go func() {
		allowed, err := mw(ctx, m.Params, global)
		posted := r.cfg.Post(func() { _ = r.finish(o, r.guarded(m, o, allowed, err)) })
		if !posted && o.Done != nil {
			o.Done(context.Canceled)
		}
	}()
	return nil
}

// Back replays the previous history entry.
func (r *Router) Back(ctx context.Context) error {
	if r.cfg.History == nil {
		return ErrNoHistory
	}
	e, ok := r.cfg.History.Back()
	if !ok {
		return ErrNoHistory
	}
	return r.replay(ctx, e)
}

// Forward replays the next history entry.
func (r *Router) Forward(ctx context.Context) error {
	if r.cfg.History == nil {
		return ErrNoHistory
	}
	e, ok := r.cfg.History.Forward()
	if !ok {
		return ErrNoHistory
	}
	return r.replay(ctx, e)
}

func (r *Router) replay(ctx context.Context, e Entry) error {
	return r.Navigate(ctx, e.URL,
		WithTargets(e.Targets...),
		WithMethod(e.Method),
		WithBody(e.Body),
		replaying())
}

func (r *Router) finish(o NavigateOptions, err error) error {
	if err != nil {
		r.logger.Debug("navigation failed", "error", err)
	}
	if o.Done != nil {
		o.Done(err)
	}
	return err
}

func (r *Router) guarded(m *Match, o NavigateOptions, allowed bool, err error) error {
	if err != nil {
		return fmt.Errorf("router: middleware for %s: %w", m.Route.Pattern, err)
	}
	if !allowed {
		return fmt.Errorf("%w: %s", ErrCancelled, m.Location.Path)
	}
	return r.commit(m, o)
}

// commit applies a matched navigation to the document.
func (r *Router) commit(m *Match, o NavigateOptions) error {
	if r.cfg.Document == nil {
		return ErrNoTarget
	}
	targets := r.resolve(r.cfg.Document(), o)
	if len(targets) == 0 {
		return fmt.Errorf("%w for %s", ErrNoTarget, m.Location.Path)
	}

	if g := r.cfg.Global; g != nil {
		g.Set("$route", routeValue(m, o))
	}
	for _, t := range targets {
		t.ReplaceChildren(dom.NewElement(m.Route.Tag))
	}

	if h := r.cfg.History; h != nil && !o.replay {
		e := Entry{URL: m.Location.String(), Targets: o.Targets, Method: o.Method, Body: o.Body}
		var err error
		if o.Replace {
			err = h.Replace(e)
		} else {
			err = h.Push(e)
		}
		if err != nil {
			r.logger.Warn("history entry not recorded", "url", e.URL, "error", err)
		}
	}
	r.logger.Debug("navigated", "url", m.Location.String(), "route", m.Route.Pattern, "targets", len(targets))
	return nil
}

func routeValue(m *Match, o NavigateOptions) map[string]any {
	params := make(map[string]any, len(m.Params))
	for k, v := range m.Params {
		params[k] = v
	}
	query := make(map[string]any)
	for k, v := range m.Query() {
		query[k] = v
	}
	return map[string]any{
		"url":    m.Location.String(),
		"path":   m.Location.Path,
		"route":  m.Route.Pattern,
		"params": params,
		"query":  query,
		"hash":   m.Location.Hash,
		"method": o.Method,
		"body":   o.Body,
	}
}

// resolve finds the navigation targets. Explicit selectors and TargetFunc
// take precedence; the outlet is used when they find nothing.
func (r *Router) resolve(doc *dom.Node, o NavigateOptions) []*dom.Node {
	if doc == nil {
		return nil
	}
	var out []*dom.Node
	add := func(n *dom.Node) {
		if !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	for _, t := range o.Targets {
		if id, ok := strings.CutPrefix(t, "#"); ok {
			if n := findFirst(doc, func(n *dom.Node) bool { return n.ID() == id }); n != nil {
				add(n)
			}
			continue
		}
		sel, err := dom.CompileSelector(t)
		if err != nil {
			r.logger.Warn("invalid navigation target", "selector", t, "error", err)
			continue
		}
		for _, n := range findAll(doc, func(n *dom.Node) bool { return sel.Match(n, nil) }) {
			add(n)
		}
	}
	if o.TargetFunc != nil {
		for _, n := range findAll(doc, func(n *dom.Node) bool {
			return strings.Contains(n.Tag, "-") && o.TargetFunc(n)
		}) {
			add(n)
		}
	}
	if len(out) > 0 {
		return out
	}
	if len(o.Targets) > 0 || o.TargetFunc != nil {
		r.logger.Warn("navigation targets not found, using outlet", "targets", o.Targets, "outlet", r.cfg.Outlet)
	}
	sel, err := dom.CompileSelector(r.cfg.Outlet)
	if err != nil {
		return nil
	}
	if n := findFirst(doc, func(n *dom.Node) bool { return sel.Match(n, nil) }); n != nil {
		return []*dom.Node{n}
	}
	return nil
}

// findAll returns the elements under root matching pred in document
// order, descending into shadow trees.
func findAll(root *dom.Node, pred func(*dom.Node) bool) []*dom.Node {
	var out []*dom.Node
	var visit func(n *dom.Node)
	visit = func(n *dom.Node) {
		for _, c := range n.Children() {
			if c.Type != dom.ElementNode {
				continue
			}
			if pred(c) {
				out = append(out, c)
			}
			visit(c)
			if sh := c.ShadowRoot(); sh != nil {
				visit(sh)
			}
		}
	}
	visit(root)
	return out
}

func findFirst(root *dom.Node, pred func(*dom.Node) bool) *dom.Node {
	if all := findAll(root, pred); len(all) > 0 {
		return all[0]
	}
	return nil
}
