package lego

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/legodom/lego/pkg/binding"
	"github.com/legodom/lego/pkg/component"
	"github.com/legodom/lego/pkg/dom"
	"github.com/legodom/lego/pkg/reactive"
	"github.com/legodom/lego/pkg/render"
	"github.com/legodom/lego/pkg/router"
	"github.com/legodom/lego/pkg/scheduler"
	"github.com/legodom/lego/pkg/sfc"
)

var (
	// ErrNoDocument is returned by operations that need a mounted document.
	ErrNoDocument = errors.New("lego: no document mounted")

	// ErrNoPoster is returned by Dispatch on a host that cannot accept
	// work from other goroutines.
	ErrNoPoster = errors.New("lego: host does not accept posted work")
)

// =============================================================================
// App Type
// =============================================================================

// App is the runtime context. It owns the template registry, the proxy
// cache, the active instance set, the global state and the router; two
// Apps share nothing.
//
// All methods except Dispatch, Do, Start, Run and Stop belong on the
// runtime goroutine. From elsewhere, hand work over with Dispatch or Do:
//
//	app, err := lego.New(lego.WithLoader(loader.Func(l)))
//	if err != nil {
//	    return err
//	}
//	app.Start()
//	defer app.Stop()
//	err = app.Do(ctx, func() { err = app.LoadPage(page) })
type App struct {
	config Config
	logger *slog.Logger

	host   scheduler.Host
	loop   *scheduler.Loop
	poster scheduler.Poster

	cache    *reactive.Cache
	registry *component.Registry
	renderer *render.Renderer
	manager  *component.Manager
	batcher  *scheduler.Batcher[*render.Instance]
	router   *router.Router
	observer *dom.Observer

	global *reactive.Object
	holder *render.Instance
	doc    *dom.Node
}

// New creates an App.
func New(opts ...Option) (*App, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	delims, err := binding.ParseSyntax(cfg.Syntax)
	if err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	a := &App{
		config:   cfg,
		logger:   cfg.Logger,
		host:     cfg.Host,
		cache:    reactive.NewCache(),
		registry: component.NewRegistry(),
	}
	if a.host == nil {
		a.loop = scheduler.NewLoop(
			scheduler.WithFrameInterval(cfg.FrameInterval),
			scheduler.WithLogger(cfg.Logger),
		)
		a.host = a.loop
	}
	if p, ok := a.host.(scheduler.Poster); ok {
		a.poster = p
	}

	// The global holder has no tree; rendering it re-renders every
	// global-dependent instance.
	a.holder = &render.Instance{Tag: "global", Global: true}
	seed := cfg.Global
	if seed == nil {
		seed = make(map[string]any)
	}
	a.global = a.cache.WrapObject(seed, func() { a.batcher.Add(a.holder) })
	a.holder.State = a.global

	a.renderer = render.New(render.Config{
		Delimiters: delims,
		Hooks:      cfg.Hooks,
		Logger:     cfg.Logger,
		Global:     a.global,
		Active:     func() []*render.Instance { return a.manager.Active() },
	})
	a.batcher = scheduler.NewBatcher(a.host, scheduler.Options[*render.Instance]{
		Render:  a.renderer.Render,
		Updated: func(inst *render.Instance) error { return a.manager.Updated(inst) },
		OnUpdatedError: func(inst *render.Instance, err error) {
			a.renderer.Report(fmt.Errorf("updated hook: %w", err), render.CategoryUpdated, inst.Host)
		},
		Flushed: func(int) {
			if cfg.OnFlush != nil {
				cfg.OnFlush()
			}
		},
		Logger: cfg.Logger,
	})

	var history *router.History
	if cfg.History {
		history = router.NewHistory()
	}
	var post func(func()) bool
	if a.poster != nil {
		post = a.poster.Post
	}
	a.router = router.New(router.Config{
		Global:   a.global,
		Document: a.Document,
		Outlet:   cfg.Outlet,
		Post:     post,
		History:  history,
		Logger:   cfg.Logger,
	})

	ignore := []string{router.DefaultOutlet}
	if cfg.Outlet != "" {
		ignore = append(ignore, cfg.Outlet)
	}
	a.manager = component.New(component.Config{
		Registry:    a.registry,
		Renderer:    a.renderer,
		Cache:       a.cache,
		Global:      a.global,
		StyleSets:   cfg.StyleSets,
		Schedule:    a.batcher.Add,
		Cancel:      a.batcher.Remove,
		Loader:      cfg.Loader,
		LoadTimeout: cfg.LoadTimeout,
		Post:        post,
		Roots:       a.roots,
		Navigate:    a.navigate,
		OnMount:     a.observeShadow,
		Ignore:      ignore,
		Logger:      cfg.Logger,
	})

	a.observer = dom.NewObserver(a.mutated, a.host.QueueMicrotask)
	return a, nil
}

// =============================================================================
// Accessors
// =============================================================================

// Config returns the configuration the App was built with.
func (a *App) Config() Config { return a.config }

// Document returns the mounted document, or nil.
func (a *App) Document() *dom.Node { return a.doc }

// Global returns the application-wide reactive state.
func (a *App) Global() *reactive.Object { return a.global }

// Registry returns the template registry.
func (a *App) Registry() *component.Registry { return a.registry }

// Renderer returns the renderer.
func (a *App) Renderer() *render.Renderer { return a.renderer }

// Manager returns the component lifecycle manager.
func (a *App) Manager() *component.Manager { return a.manager }

// Router returns the router.
func (a *App) Router() *router.Router { return a.router }

// Host returns the frame and microtask host.
func (a *App) Host() scheduler.Host { return a.host }

// ActiveCount returns the number of mounted component instances.
func (a *App) ActiveCount() int { return a.manager.ActiveCount() }

// Pending returns the number of instances waiting for the next frame.
func (a *App) Pending() int { return a.batcher.Pending() }

// maxFlushPasses bounds Flush when renders keep dirtying instances.
const maxFlushPasses = 16

// Flush renders dirty instances now instead of on the next frame,
// repeating while renders dirty further instances. It returns the number
// of passes run.
func (a *App) Flush() int {
	n := 0
	for ; n < maxFlushPasses && a.batcher.Pending() > 0; n++ {
		a.batcher.Flush()
	}
	return n
}

// =============================================================================
// Documents
// =============================================================================

// Mount makes doc the App's document. Page templates are registered,
// present component elements are attached and later insertions and
// removals are tracked.
func (a *App) Mount(doc *dom.Node) error {
	if doc == nil {
		return ErrNoDocument
	}
	if a.doc != nil {
		a.Unmount()
	}
	a.doc = doc
	tags, err := a.registry.LoadTemplates(doc, a.config.Scripts)
	if err != nil {
		return err
	}
	a.observer.Observe(doc, dom.ObserveOptions{ChildList: true, Subtree: true})
	a.manager.Attach(doc)
	a.logger.Debug("document mounted", "templates", len(tags), "active", a.manager.ActiveCount())
	return nil
}

// LoadPage parses markup as a document and mounts it.
func (a *App) LoadPage(markup string) error {
	doc, err := dom.Parse(markup)
	if err != nil {
		return err
	}
	return a.Mount(doc)
}

// Unmount detaches every instance and stops tracking the document.
func (a *App) Unmount() {
	if a.doc == nil {
		return
	}
	a.observer.Disconnect()
	a.manager.Detach(a.doc)
	a.doc = nil
}

// HTML serializes the document with shadow trees as declarative shadow
// roots.
func (a *App) HTML() (string, error) {
	if a.doc == nil {
		return "", ErrNoDocument
	}
	return a.doc.ComposedHTML(), nil
}

func (a *App) roots() []*dom.Node {
	if a.doc == nil {
		return nil
	}
	return []*dom.Node{a.doc}
}

// mutated connects the document observer to the lifecycle manager. Nodes
// moved within the batch are still connected and keep their instances.
func (a *App) mutated(records []dom.Record) {
	for _, r := range records {
		if r.Type != dom.RecordChildList {
			continue
		}
		for _, n := range r.Removed {
			if !n.IsConnected() {
				a.manager.Detach(n)
			}
		}
		for _, n := range r.Added {
			if n.IsConnected() {
				a.manager.Attach(n)
			}
		}
	}
}

// observeShadow extends mutation tracking into a new shadow tree, which
// records on the document do not reach.
func (a *App) observeShadow(inst *render.Instance) {
	if inst.Root != nil && a.doc != nil {
		a.observer.Observe(inst.Root, dom.ObserveOptions{ChildList: true, Subtree: true})
	}
}

// =============================================================================
// Components
// =============================================================================

// Define registers a component from template markup and a script.
// PascalCase, camelCase and snake_case names are converted to kebab-case.
func (a *App) Define(name, template string, script component.Script) error {
	return a.DefineComponent(&component.Definition{
		Tag:      sfc.Kebab(name),
		Template: template,
		Script:   script,
	})
}

// DefineComponent registers def and upgrades present elements of its tag.
func (a *App) DefineComponent(def *component.Definition) error {
	return a.manager.Define(def)
}

// DefineSFC parses single-file component text and registers it. The tag
// is derived from filename.
func (a *App) DefineSFC(src, filename string) error {
	return a.manager.DefineSFC(src, filename)
}

// =============================================================================
// Routing
// =============================================================================

// Route registers pattern for tag.
func (a *App) Route(pattern, tag string, mw router.Middleware) error {
	return a.router.Add(pattern, tag, mw)
}

// Navigate navigates to url. See router.Router.Navigate.
func (a *App) Navigate(ctx context.Context, url string, opts ...router.NavigateOption) error {
	return a.router.Navigate(ctx, url, opts...)
}

func (a *App) navigate(url string, targets ...string) error {
	var opts []router.NavigateOption
	if len(targets) > 0 {
		opts = append(opts, router.WithTargets(targets...))
	}
	return a.router.Navigate(context.Background(), url, opts...)
}

// =============================================================================
// Loop
// =============================================================================

// Dispatch queues fn to run on the runtime goroutine.
func (a *App) Dispatch(fn func()) error {
	if a.poster == nil {
		return ErrNoPoster
	}
	if !a.poster.Post(fn) {
		return scheduler.ErrLoopClosed
	}
	return nil
}

// Do runs fn on the runtime goroutine and waits for it. With a host other
// than the default loop fn runs immediately on the caller.
func (a *App) Do(ctx context.Context, fn func()) error {
	if a.loop == nil {
		fn()
		return nil
	}
	return a.loop.Do(ctx, fn)
}

// Start runs the default loop on a new goroutine.
func (a *App) Start() {
	if a.loop != nil {
		a.loop.Start()
	}
}

// Run runs the default loop until ctx is cancelled or Stop is called.
func (a *App) Run(ctx context.Context) error {
	if a.loop == nil {
		<-ctx.Done()
		return ctx.Err()
	}
	return a.loop.Run(ctx)
}

// Stop stops the default loop. Pending work is discarded.
func (a *App) Stop() {
	if a.loop != nil {
		a.loop.Stop()
	}
}
