package scheduler

import (
	"fmt"
	"log/slog"
	"runtime/debug"
)

// Options configures a Batcher.
type Options[S comparable] struct {
	// Render is invoked once per dirty subject per flush.
	Render func(S)

	// Updated, if set, runs for every rendered subject in a microtask after
	// the render pass completes.
	Updated func(S) error

	// OnUpdatedError receives errors and recovered panics from Updated.
	// When nil they are logged.
	OnUpdatedError func(S, error)

	// Flushed runs after each render pass with the number of subjects
	// rendered, before the Updated microtask.
	Flushed func(n int)

	Logger *slog.Logger
}

// Batcher groups dirty subjects into one render pass per frame.
//
// A Batcher is confined to its host's goroutine and is not safe for
// concurrent use.
type Batcher[S comparable] struct {
	host Host
	opts Options[S]

	pending map[S]struct{}
	order   []S

	// scheduled is true while a frame request is outstanding.
	scheduled bool
	flushing  bool
	flushes   uint64
}

// NewBatcher creates a batcher that schedules flushes on host.
func NewBatcher[S comparable](host Host, opts Options[S]) *Batcher[S] {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Batcher[S]{
		host:    host,
		opts:    opts,
		pending: make(map[S]struct{}),
	}
}

// Add marks s dirty. The first Add after a flush requests a frame; adds made
// while a flush is running belong to the next batch.
func (b *Batcher[S]) Add(s S) {
	if _, ok := b.pending[s]; ok {
		return
	}
	b.pending[s] = struct{}{}
	b.order = append(b.order, s)
	if !b.scheduled {
		b.scheduled = true
		b.host.RequestFrame(b.flush)
	}
}

// Remove drops s from the pending set. A frame that was already requested
// still runs but no longer renders s.
func (b *Batcher[S]) Remove(s S) {
	if _, ok := b.pending[s]; !ok {
		return
	}
	delete(b.pending, s)
	for i, x := range b.order {
		if x == s {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

// Pending returns the number of subjects waiting for the next flush.
func (b *Batcher[S]) Pending() int { return len(b.pending) }

// Has reports whether s is waiting for the next flush.
func (b *Batcher[S]) Has(s S) bool {
	_, ok := b.pending[s]
	return ok
}

// Flushing reports whether a render pass is in progress.
func (b *Batcher[S]) Flushing() bool { return b.flushing }

// Flushes returns the number of completed render passes.
func (b *Batcher[S]) Flushes() uint64 { return b.flushes }

// Flush renders the pending subjects now instead of on the requested
// frame. The frame still runs and finds nothing to do.
func (b *Batcher[S]) Flush() {
	if b.flushing {
		return
	}
	b.flush()
}

func (b *Batcher[S]) flush() {
	// Clear first so adds during the pass schedule a fresh frame.
	b.scheduled = false
	if len(b.order) == 0 {
		return
	}
	batch := b.order
	b.order = nil
	b.pending = make(map[S]struct{}, len(batch))

	b.flushing = true
	for _, s := range batch {
		b.render(s)
	}
	b.flushing = false
	b.flushes++

	b.opts.Logger.Debug("scheduler flush", "subjects", len(batch), "next", len(b.order))
	if b.opts.Flushed != nil {
		b.opts.Flushed(len(batch))
	}

	if b.opts.Updated == nil {
		return
	}
	b.host.QueueMicrotask(func() {
		for _, s := range batch {
			b.updated(s)
		}
	})
}

func (b *Batcher[S]) render(s S) {
	defer func() {
		if r := recover(); r != nil {
			b.opts.Logger.Error("render panic",
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	b.opts.Render(s)
}

func (b *Batcher[S]) updated(s S) {
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("updated hook panic: %v", r)
			}
		}()
		err = b.opts.Updated(s)
	}()
	if err == nil {
		return
	}
	if b.opts.OnUpdatedError != nil {
		b.opts.OnUpdatedError(s, err)
		return
	}
	b.opts.Logger.Error("updated hook failed", "error", err)
}
