package render

import (
	"fmt"

	"github.com/legodom/lego/pkg/dom"
)

// Category classifies a reported error by the catch site that caught it.
type Category string

const (
	CategoryRender    Category = "render-error"
	CategoryEvent     Category = "event-handler"
	CategoryMounted   Category = "mounted"
	CategoryUnmounted Category = "unmounted"
	CategorySync      Category = "sync-update"
	CategoryUpdated   Category = "updated"
)

// Hooks are the error and timing callbacks installed by the host
// application. Every field is optional.
type Hooks struct {
	// OnError receives every caught error with its category and the
	// component element it belongs to.
	OnError func(err error, category Category, el *dom.Node)

	// OnRenderStart and OnRenderEnd bracket each render call.
	OnRenderStart func(el *dom.Node)
	OnRenderEnd   func(el *dom.Node)
}

// HookError is the error type passed to OnError.
type HookError struct {
	Category Category
	Element  *dom.Node
	Err      error
}

func (e *HookError) Error() string {
	if e.Element != nil {
		return fmt.Sprintf("%s <%s>: %v", e.Category, e.Element.Tag, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Category, e.Err)
}

func (e *HookError) Unwrap() error { return e.Err }

// PanicError wraps a value recovered from a panic.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string { return fmt.Sprintf("panic: %v", e.Value) }
