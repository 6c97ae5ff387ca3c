package lego

import (
	"log/slog"
	"time"

	"github.com/legodom/lego/pkg/binding"
	"github.com/legodom/lego/pkg/component"
	"github.com/legodom/lego/pkg/render"
	"github.com/legodom/lego/pkg/scheduler"
)

// =============================================================================
// Configuration Types
// =============================================================================

// Config is the runtime configuration of an App. Build it with Options.
type Config struct {
	// Syntax selects the interpolation delimiters: "brackets" ([[ x ]],
	// the default) or "mustache" ({{ x }}).
	Syntax string

	// Logger is the structured logger for the runtime.
	// If nil, slog.Default() is used.
	Logger *slog.Logger

	// Hooks receive caught errors and render timings. With no OnError hook
	// errors are logged.
	Hooks render.Hooks

	// Loader resolves unknown hyphenated tags to single-file component
	// text. See pkg/loader.
	Loader      component.LoaderFunc
	LoadTimeout time.Duration

	// StyleSets are named style sheets components opt into with
	// b-stylesheets.
	StyleSets component.StyleSets

	// Scripts supplies the Go side of components declared as page
	// templates, keyed by tag.
	Scripts map[string]component.Script

	// Outlet is the selector of the default router target.
	// Default: "lego-router".
	Outlet string

	// History enables the router history adapter.
	History bool

	// Host runs frames and microtasks. If nil the App creates a
	// scheduler.Loop, which must be started with Start or Run.
	Host scheduler.Host

	// FrameInterval is the frame period of the default loop.
	FrameInterval time.Duration

	// Global seeds the global state.
	Global map[string]any

	// OnFlush runs on the runtime goroutine after each render pass.
	OnFlush func()
}

// DefaultConfig returns the default runtime configuration.
func DefaultConfig() Config {
	return Config{
		Syntax:        binding.SyntaxBrackets,
		LoadTimeout:   component.DefaultLoadTimeout,
		FrameInterval: scheduler.DefaultFrameInterval,
	}
}

// =============================================================================
// Options
// =============================================================================

// Option configures an App.
type Option func(*Config)

// WithSyntax selects the interpolation syntax by name.
func WithSyntax(name string) Option {
	return func(c *Config) { c.Syntax = name }
}

// WithLogger sets the runtime logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) { c.Logger = logger }
}

// WithHooks installs error and render hooks.
func WithHooks(hooks render.Hooks) Option {
	return func(c *Config) { c.Hooks = hooks }
}

// WithLoader installs the remote component loader.
func WithLoader(fn component.LoaderFunc) Option {
	return func(c *Config) { c.Loader = fn }
}

// WithLoadTimeout bounds a single remote component load.
func WithLoadTimeout(d time.Duration) Option {
	return func(c *Config) { c.LoadTimeout = d }
}

// WithStyleSets registers named style sheets.
func WithStyleSets(sets component.StyleSets) Option {
	return func(c *Config) { c.StyleSets = sets }
}

// WithScripts supplies scripts for page-declared templates.
func WithScripts(scripts map[string]component.Script) Option {
	return func(c *Config) { c.Scripts = scripts }
}

// WithOutlet sets the default router target selector.
func WithOutlet(selector string) Option {
	return func(c *Config) { c.Outlet = selector }
}

// WithHistory enables router history.
func WithHistory() Option {
	return func(c *Config) { c.History = true }
}

// WithHost replaces the default loop. Tests pass a scheduler.ManualHost.
func WithHost(host scheduler.Host) Option {
	return func(c *Config) { c.Host = host }
}

// WithFrameInterval sets the frame period of the default loop.
func WithFrameInterval(d time.Duration) Option {
	return func(c *Config) { c.FrameInterval = d }
}

// WithGlobal seeds the global state.
func WithGlobal(values map[string]any) Option {
	return func(c *Config) { c.Global = values }
}

// WithOnFlush registers a callback that runs after each render pass.
func WithOnFlush(fn func()) Option {
	return func(c *Config) { c.OnFlush = fn }
}
