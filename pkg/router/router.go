package router

import (
	"log/slog"
	"net/url"
	"regexp"
	"slices"
	"strings"

	"github.com/legodom/lego/internal/errors"
	"github.com/legodom/lego/pkg/dom"
	"github.com/legodom/lego/pkg/reactive"
)

// DefaultOutlet is the tag of the element routed components are mounted
// into when a navigation names no targets.
const DefaultOutlet = "lego-router"

// Route is a registered pattern.
type Route struct {
	// Pattern is the registered path. ":name" segments capture one path
	// segment; a final "*" captures the remainder.
	Pattern string

	// Tag is the component mounted on a match.
	Tag string

	Middleware Middleware

	re     *regexp.Regexp
	params []string
}

// Params returns the names of the route's captures in order.
func (r *Route) Params() []string { return slices.Clone(r.params) }

// Match is the result of matching a URL against the route table.
type Match struct {
	Route    *Route
	Location Location
	Params   map[string]string
}

// Query returns the first value of each query parameter.
func (m *Match) Query() map[string]string {
	out := make(map[string]string, len(m.Location.Query))
	for k, v := range m.Location.Query {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}

// Config configures a Router.
type Config struct {
	// Global receives the $route object after each navigation.
	Global *reactive.Object

	// Document returns the tree targets are resolved in. Required for
	// Navigate.
	Document func() *dom.Node

	// Outlet is the default target selector. Defaults to DefaultOutlet.
	Outlet string

	// Post hands work back to the runtime goroutine. When set, middleware
	// runs on its own goroutine and the navigation is committed through
	// Post.
	Post func(fn func()) bool

	// History records committed navigations. Optional.
	History *History

	Logger *slog.Logger
}

// Router matches URLs to components and swaps them into the document.
// Methods other than Match belong on the runtime goroutine.
type Router struct {
	cfg    Config
	logger *slog.Logger
	routes []*Route
}

// New creates a router with an empty route table.
func New(cfg Config) *Router {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Outlet == "" {
		cfg.Outlet = DefaultOutlet
	}
	return &Router{cfg: cfg, logger: cfg.Logger}
}

// History returns the router's history, or nil.
func (r *Router) History() *History { return r.cfg.History }

// Add registers pattern for tag. Routes match in registration order; the
// first match wins.
func (r *Router) Add(pattern, tag string, mw Middleware) error {
	route, err := compile(pattern)
	if err != nil {
		return err
	}
	route.Tag = strings.ToLower(tag)
	route.Middleware = mw
	r.routes = append(r.routes, route)
	return nil
}

// Routes returns the route table in registration order.
func (r *Router) Routes() []*Route { return slices.Clone(r.routes) }

// Match returns the first route matching raw, which may carry a query and
// fragment.
func (r *Router) Match(raw string) (*Match, bool) {
	loc, err := ParseLocation(raw)
	if err != nil {
		return nil, false
	}
	for _, route := range r.routes {
		sub := route.re.FindStringSubmatch(loc.Path)
		if sub == nil {
			continue
		}
		params := make(map[string]string, len(route.params))
		for i, name := range route.params {
			v, err := url.PathUnescape(sub[i+1])
			if err != nil {
				v = sub[i+1]
			}
			params[name] = v
		}
		return &Match{Route: route, Location: loc, Params: params}, true
	}
	return nil, false
}

func compile(pattern string) (*Route, error) {
	invalid := func(detail string) error {
		return errors.New("L040").WithDetail(`Route "` + pattern + `": ` + detail)
	}
	p, err := Canonicalize(pattern)
	if err != nil {
		return nil, invalid(err.Error())
	}

	route := &Route{Pattern: p}
	var b strings.Builder
	b.WriteString("^")
	segs := strings.Split(strings.TrimPrefix(p, "/"), "/")
	for i, seg := range segs {
		if seg == "" {
			continue
		}
		b.WriteString("/")
		switch {
		case seg == "*":
			if i != len(segs)-1 {
				return nil, invalid("* must be the last segment")
			}
			route.params = append(route.params, "*")
			b.WriteString("(.*)")
		case strings.HasPrefix(seg, ":"):
			name := seg[1:]
			if name == "" {
				return nil, invalid("empty parameter name")
			}
			if slices.Contains(route.params, name) {
				return nil, invalid("duplicate parameter :" + name)
			}
			route.params = append(route.params, name)
			b.WriteString("([^/]+)")
		default:
			b.WriteString(regexp.QuoteMeta(seg))
		}
	}
	if p == "/" {
		b.WriteString("/")
	}
	b.WriteString("$")
	route.re = regexp.MustCompile(b.String())
	return route, nil
}
