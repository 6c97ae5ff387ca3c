package expr

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"runtime/debug"
	"strings"
	"sync"
)

// ErrDenied is reported when an expression matches the denylist.
var ErrDenied = errors.New("expr: expression denied")

// denylist matches identifiers that have no business in a template
// expression. The interpreter cannot reach host globals anyway; this is a
// best-effort guard that keeps obviously hostile markup from evaluating at
// all, not a sound sandbox.
var denylist = regexp.MustCompile(`\b(function|eval|import|class|constructor|prototype|__proto__|Function|globalThis|window|document|process|require)\b|=>`)

// Denied reports whether src matches the denylist.
func Denied(src string) bool { return denylist.MatchString(src) }

type compiled struct {
	node   Node
	err    error
	denied bool
}

// Sandbox evaluates template expressions. Compiled forms are cached by
// expression text and shared across every call site.
//
// A Sandbox is safe for concurrent use, although evaluation itself touches
// reactive state and belongs on the runtime goroutine.
type Sandbox struct {
	mu     sync.RWMutex
	cache  map[string]*compiled
	logger *slog.Logger

	// OnError, if set, receives evaluation errors from Eval. Exec returns
	// them instead.
	OnError func(src string, err error)
}

// New creates a sandbox with an empty cache.
func New(logger *slog.Logger) *Sandbox {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sandbox{cache: make(map[string]*compiled), logger: logger}
}

// Len returns the number of cached expressions.
func (s *Sandbox) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}

// Compile returns the cached AST for src, parsing it on first use.
// Denied expressions compile to ErrDenied.
func (s *Sandbox) Compile(src string) (Node, error) {
	c := s.compile(src)
	if c.denied {
		return nil, ErrDenied
	}
	return c.node, c.err
}

func (s *Sandbox) compile(src string) *compiled {
	s.mu.RLock()
	c, ok := s.cache[src]
	s.mu.RUnlock()
	if ok {
		return c
	}

	c = &compiled{}
	if Denied(src) {
		c.denied = true
	} else {
		c.node, c.err = Parse(src)
	}

	s.mu.Lock()
	if existing, ok := s.cache[src]; ok {
		c = existing
	} else {
		s.cache[src] = c
	}
	s.mu.Unlock()
	return c
}

// Eval evaluates src and returns its value. Failures are reported through
// OnError (or logged) and yield nil.
func (s *Sandbox) Eval(src string, scope Scope) any {
	v, err := s.Exec(src, scope)
	if err != nil {
		if s.OnError != nil {
			s.OnError(src, err)
		} else {
			s.logger.Warn("expression failed", "expr", src, "error", err)
		}
		return nil
	}
	return v
}

// Exec evaluates src and returns evaluation errors to the caller. If the
// result is callable it is invoked once more with the scope's event.
//
// A denied expression evaluates to nil without error after logging a
// security warning.
func (s *Sandbox) Exec(src string, scope Scope) (result any, err error) {
	c := s.compile(src)
	if c.denied {
		s.logger.Warn("expression blocked by security denylist", "expr", src)
		return nil, nil
	}
	if c.err != nil {
		return nil, c.err
	}
	if scope == nil {
		scope = Vars{}
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Debug("expression panic", "expr", src, "stack", string(debug.Stack()))
			result, err = nil, fmt.Errorf("expr: panic evaluating %q: %v", src, r)
		}
	}()

	v, err := Run(c.node, scope)
	if err != nil {
		return nil, err
	}
	if Callable(v) {
		this, _ := scope.Lookup("this")
		event, _ := scope.Lookup("event")
		return call(v, this, []any{event})
	}
	return v, nil
}

// Assign writes v to the identifier or member path target, as b-sync does
// when a form control changes.
func (s *Sandbox) Assign(target string, scope Scope, v any) (err error) {
	c := s.compile(target)
	if c.denied {
		s.logger.Warn("assignment blocked by security denylist", "expr", target)
		return ErrDenied
	}
	if c.err != nil {
		return c.err
	}
	if !isTarget(c.node) {
		return fmt.Errorf("%w: %q is not assignable", ErrAssign, target)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("expr: panic assigning %q: %v", target, r)
		}
	}()
	return (&evaluator{scope: scope}).assign(c.node, v)
}

// Resolve reads a dotted path such as "user.name" without evaluating an
// expression. Missing segments yield nil.
func Resolve(path string, scope Scope) any {
	var cur any
	for i, part := range strings.Split(strings.TrimSpace(path), ".") {
		part = strings.TrimSpace(part)
		if i == 0 {
			cur, _ = scope.Lookup(part)
			cur = Normalize(cur)
			continue
		}
		if cur == nil {
			return nil
		}
		v, err := member(cur, part)
		if err != nil {
			return nil
		}
		cur = Normalize(v)
	}
	return cur
}

// ParseData parses and evaluates a data object literal such as a b-data
// value. Identifiers resolve against the built-in globals only. Blank input
// yields an empty map.
func ParseData(src string) (map[string]any, error) {
	if strings.TrimSpace(src) == "" {
		return map[string]any{}, nil
	}
	if Denied(src) {
		return nil, ErrDenied
	}
	lit, err := ParseObjectLiteral(src)
	if err != nil {
		return nil, err
	}
	v, err := Run(lit, Globals())
	if err != nil {
		return nil, err
	}
	m, _ := v.(map[string]any)
	return m, nil
}
