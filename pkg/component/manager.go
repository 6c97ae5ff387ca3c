package component

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"slices"
	"strings"
	"time"

	"github.com/legodom/lego/pkg/dom"
	"github.com/legodom/lego/pkg/reactive"
	"github.com/legodom/lego/pkg/render"
	"github.com/legodom/lego/pkg/sfc"
)

// DefaultLoadTimeout bounds a single remote component load.
const DefaultLoadTimeout = 10 * time.Second

// Config configures a Manager.
type Config struct {
	Registry *Registry
	Renderer *render.Renderer
	Cache    *reactive.Cache

	// Global is the application-wide state. $route is read from it.
	Global *reactive.Object

	StyleSets StyleSets

	// Schedule queues a render of inst; Cancel drops a queued one. Without
	// Schedule the manager queues renders itself until Flush.
	Schedule func(inst *render.Instance)
	Cancel   func(inst *render.Instance)

	// Loader resolves unknown hyphenated tags. It runs off the runtime
	// goroutine when Post is set; its result is committed through Post.
	Loader      LoaderFunc
	LoadTimeout time.Duration
	Post        func(fn func()) bool

	// Roots returns the trees searched when a definition is added.
	Roots func() []*dom.Node

	// Navigate backs the $go helper.
	Navigate func(url string, targets ...string) error

	// OnMount is called with each new instance before its first render,
	// once its shadow tree is populated.
	OnMount func(inst *render.Instance)

	// Ignore lists hyphenated tags that are not components, such as the
	// router outlet.
	Ignore []string

	Logger *slog.Logger
}

type entryKey struct{}

// entry is the manager's record for one component element.
type entry struct {
	inst   *render.Instance
	def    *Definition
	ctx    *Context
	active bool
}

// Manager attaches and detaches component instances. All methods belong
// on the runtime goroutine.
type Manager struct {
	cfg      Config
	logger   *slog.Logger
	renderer *render.Renderer

	active    []*entry
	pending   []*render.Instance
	shared    map[string]*reactive.Object
	readers   map[string][]*entry
	requested map[string]bool
	warned    map[string]bool
}

// New creates a manager. Registry, Renderer and Cache default to fresh
// values.
func New(cfg Config) *Manager {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Registry == nil {
		cfg.Registry = NewRegistry()
	}
	if cfg.Cache == nil {
		cfg.Cache = reactive.NewCache()
	}
	if cfg.Renderer == nil {
		cfg.Renderer = render.New(render.Config{Logger: cfg.Logger, Global: cfg.Global})
	}
	if cfg.LoadTimeout <= 0 {
		cfg.LoadTimeout = DefaultLoadTimeout
	}
	return &Manager{
		cfg:       cfg,
		logger:    cfg.Logger,
		renderer:  cfg.Renderer,
		shared:    make(map[string]*reactive.Object),
		readers:   make(map[string][]*entry),
		requested: make(map[string]bool),
		warned:    make(map[string]bool),
	}
}

// Registry returns the template registry.
func (m *Manager) Registry() *Registry { return m.cfg.Registry }

// Define registers def and attaches any present elements of its tag.
func (m *Manager) Define(def *Definition) error {
	if err := m.cfg.Registry.Define(def); err != nil {
		return err
	}
	delete(m.shared, def.Tag)
	delete(m.readers, def.Tag)
	m.upgrade()
	return nil
}

// DefineSFC parses a single-file component and defines it.
func (m *Manager) DefineSFC(src, filename string) error {
	f, err := sfc.Parse(src, filename)
	if err != nil {
		return err
	}
	return m.Define(FromSFC(f))
}

func (m *Manager) upgrade() {
	if m.cfg.Roots == nil {
		return
	}
	for _, root := range m.cfg.Roots() {
		m.Attach(root)
	}
}

// Attach initializes n and every component element below it, descending
// into light children and shadow trees. Elements already initialized are
// skipped; one that was detached is reactivated with its state intact.
func (m *Manager) Attach(n *dom.Node) {
	if n == nil {
		return
	}
	switch n.Type {
	case dom.ElementNode:
		if n.Tag == "template" {
			return
		}
		m.attachElement(n)
	case dom.DocumentNode, dom.FragmentNode:
	default:
		return
	}
	for _, c := range slices.Clone(n.Children()) {
		m.Attach(c)
	}
	if sh := n.ShadowRoot(); sh != nil {
		for _, c := range slices.Clone(sh.Children()) {
			m.Attach(c)
		}
	}
}

func (m *Manager) attachElement(el *dom.Node) {
	if e, ok := el.Private(entryKey{}).(*entry); ok {
		if !e.active {
			m.activate(e)
			m.renderer.Render(e.inst)
			m.runHook(e, e.def.Script.Mounted, render.CategoryMounted)
		}
		return
	}
	def, ok := m.cfg.Registry.Lookup(el.Tag)
	if !ok {
		if strings.Contains(el.Tag, "-") && !slices.Contains(m.cfg.Ignore, el.Tag) {
			m.unknown(el.Tag)
		}
		return
	}
	m.mount(el, def)
}

func (m *Manager) mount(el *dom.Node, def *Definition) {
	shadow := el.AttachShadow()
	shadow.ReplaceChildren(def.Fragment())
	m.applyStyles(shadow, def)

	e := &entry{def: def}
	inst := &render.Instance{Tag: def.Tag, Host: el, Root: shadow}
	var self *reactive.Object
	data := m.initialState(def, el, &self)
	self = m.cfg.Cache.WrapObject(data, func() { m.schedule(inst) })
	inst.State = self
	inst.Helpers = helpers{m: m, e: e}
	e.inst = inst
	e.ctx = &Context{Element: el, State: self, m: m, e: e}
	el.SetPrivate(entryKey{}, e)
	if m.cfg.OnMount != nil {
		m.cfg.OnMount(inst)
	}

	m.renderer.Bind(shadow, inst, nil)
	m.activate(e)
	m.renderer.Render(inst)
	m.logger.Debug("component attached", "tag", def.Tag, "active", len(m.active))
	m.runHook(e, def.Script.Mounted, render.CategoryMounted)
}

// Detach runs the unmounted hooks of n and every component below it and
// removes them from the active set. Pending renders are dropped.
func (m *Manager) Detach(n *dom.Node) {
	if n == nil {
		return
	}
	if e, ok := n.Private(entryKey{}).(*entry); ok && e.active {
		m.runHook(e, e.def.Script.Unmounted, render.CategoryUnmounted)
		m.deactivate(e)
		m.cancel(e.inst)
		m.logger.Debug("component detached", "tag", e.def.Tag, "active", len(m.active))
	}
	for _, c := range slices.Clone(n.Children()) {
		m.Detach(c)
	}
	if sh := n.ShadowRoot(); sh != nil {
		for _, c := range slices.Clone(sh.Children()) {
			m.Detach(c)
		}
	}
}

func (m *Manager) activate(e *entry) {
	e.active = true
	m.active = append(m.active, e)
}

func (m *Manager) deactivate(e *entry) {
	e.active = false
	m.active = slices.DeleteFunc(m.active, func(x *entry) bool { return x == e })
}

func (m *Manager) schedule(inst *render.Instance) {
	if m.cfg.Schedule != nil {
		m.cfg.Schedule(inst)
		return
	}
	if !slices.Contains(m.pending, inst) {
		m.pending = append(m.pending, inst)
	}
}

func (m *Manager) cancel(inst *render.Instance) {
	if m.cfg.Cancel != nil {
		m.cfg.Cancel(inst)
		return
	}
	m.pending = slices.DeleteFunc(m.pending, func(x *render.Instance) bool { return x == inst })
}

// Flush renders the instances queued since the last flush and runs their
// updated hooks. Renders queued by those hooks run in the same call. It
// does nothing when Config.Schedule is set.
func (m *Manager) Flush() {
	for len(m.pending) > 0 {
		batch := m.pending
		m.pending = nil
		for _, inst := range batch {
			m.renderer.Render(inst)
		}
		for _, inst := range batch {
			if err := m.Updated(inst); err != nil {
				m.renderer.Report(fmt.Errorf("updated hook: %w", err), render.CategoryUpdated, inst.Host)
			}
		}
	}
}

// Active returns the active instances in attach order.
func (m *Manager) Active() []*render.Instance {
	out := make([]*render.Instance, len(m.active))
	for i, e := range m.active {
		out[i] = e.inst
	}
	return out
}

// ActiveCount returns the number of active instances.
func (m *Manager) ActiveCount() int { return len(m.active) }

// Instance returns the instance hosted by el, or nil.
func (m *Manager) Instance(el *dom.Node) *render.Instance {
	if e, ok := el.Private(entryKey{}).(*entry); ok {
		return e.inst
	}
	return nil
}

// Updated runs the updated hook of inst. It is called after a flush.
func (m *Manager) Updated(inst *render.Instance) error {
	if inst.Host == nil {
		return nil
	}
	e, ok := inst.Host.Private(entryKey{}).(*entry)
	if !ok || !e.active || e.def.Script.Updated == nil {
		return nil
	}
	return e.def.Script.Updated(e.ctx)
}

// Shared returns the state shared by every instance of tag, created from
// the script defaults on first use. Changes re-render the tag's active
// instances and any active instance that read it through $registry. It
// returns nil for an unknown tag.
func (m *Manager) Shared(tag string) *reactive.Object {
	if s, ok := m.shared[tag]; ok {
		return s
	}
	def, ok := m.cfg.Registry.Lookup(tag)
	if !ok {
		return nil
	}
	data, _ := reactive.Clone(def.Script.Data).(map[string]any)
	if data == nil {
		data = make(map[string]any)
	}
	s := m.cfg.Cache.WrapObject(data, func() {
		for _, e := range m.active {
			if e.def.Tag == tag || slices.Contains(m.readers[tag], e) {
				m.schedule(e.inst)
			}
		}
	})
	m.shared[tag] = s
	return s
}

// read records that e reads the shared state of tag.
func (m *Manager) read(tag string, e *entry) {
	if e.def.Tag != tag && !slices.Contains(m.readers[tag], e) {
		m.readers[tag] = append(m.readers[tag], e)
	}
}

// runHook invokes a lifecycle hook, reporting errors and panics under
// category.
func (m *Manager) runHook(e *entry, hook Hook, category render.Category) {
	if hook == nil {
		return
	}
	defer func() {
		if v := recover(); v != nil {
			m.renderer.Report(&render.PanicError{Value: v, Stack: debug.Stack()}, category, e.inst.Host)
		}
	}()
	if err := hook(e.ctx); err != nil {
		m.renderer.Report(fmt.Errorf("%s hook: %w", category, err), category, e.inst.Host)
	}
}
