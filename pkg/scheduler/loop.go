package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultFrameInterval approximates one display refresh.
const DefaultFrameInterval = 16 * time.Millisecond

// ErrLoopClosed is returned when work is posted to a stopped loop.
var ErrLoopClosed = errors.New("scheduler: loop closed")

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithFrameInterval sets the delay between a frame request and the frame.
func WithFrameInterval(d time.Duration) LoopOption {
	return func(l *Loop) {
		if d > 0 {
			l.interval = d
		}
	}
}

// WithQueueSize sets the capacity of the cross-goroutine task queue.
func WithQueueSize(n int) LoopOption {
	return func(l *Loop) {
		if n > 0 {
			l.tasks = make(chan func(), n)
		}
	}
}

// WithLogger sets the loop's logger.
func WithLogger(logger *slog.Logger) LoopOption {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// Loop is a single-goroutine event loop. Every task, frame callback and
// microtask runs on the loop goroutine; other goroutines hand work over with
// Post or Do.
type Loop struct {
	tasks    chan func()
	interval time.Duration
	logger   *slog.Logger

	// Frame and microtask queues are only touched on the loop goroutine, but
	// RequestFrame may be called before Run starts.
	mu     sync.Mutex
	frames []func()
	micro  []func()

	done    chan struct{}
	closed  atomic.Bool
	running atomic.Bool
	stop    sync.Once
}

// NewLoop creates a loop. Call Run or Start to process work.
func NewLoop(opts ...LoopOption) *Loop {
	l := &Loop{
		tasks:    make(chan func(), 256),
		interval: DefaultFrameInterval,
		logger:   slog.Default(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// RequestFrame queues fn for the next frame.
func (l *Loop) RequestFrame(fn func()) {
	l.mu.Lock()
	l.frames = append(l.frames, fn)
	l.mu.Unlock()
	// Wake an idle loop so it arms the frame timer.
	select {
	case l.tasks <- func() {}:
	default:
	}
}

// QueueMicrotask queues fn to run after the current task.
func (l *Loop) QueueMicrotask(fn func()) {
	l.mu.Lock()
	l.micro = append(l.micro, fn)
	l.mu.Unlock()
}

// Post queues fn to run on the loop goroutine. It reports false if the loop
// is closed or its queue is full.
func (l *Loop) Post(fn func()) bool {
	if l.closed.Load() {
		return false
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.done:
		return false
	default:
		l.logger.Warn("loop queue full, discarding task")
		return false
	}
}

// Do runs fn on the loop goroutine and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	task := func() {
		defer close(finished)
		fn()
	}
	select {
	case l.tasks <- task:
	case <-l.done:
		return ErrLoopClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrLoopClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start runs the loop on a new goroutine.
func (l *Loop) Start() {
	go func() { _ = l.Run(context.Background()) }()
}

// Stop terminates the loop. Pending work is discarded.
func (l *Loop) Stop() {
	l.stop.Do(func() {
		l.closed.Store(true)
		close(l.done)
	})
}

// Done is closed when the loop stops.
func (l *Loop) Done() <-chan struct{} { return l.done }

// Run processes tasks and frames until ctx is cancelled or Stop is called.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return errors.New("scheduler: loop already running")
	}
	defer l.running.Store(false)

	var timer *time.Timer
	var frameC <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		if frameC == nil && l.hasFrames() {
			if timer == nil {
				timer = time.NewTimer(l.interval)
			} else {
				timer.Reset(l.interval)
			}
			frameC = timer.C
		}

		select {
		case fn := <-l.tasks:
			l.execute(fn)
		case <-frameC:
			frameC = nil
			l.runFrame()
		case <-l.done:
			return nil
		case <-ctx.Done():
			l.Stop()
			return ctx.Err()
		}
	}
}

func (l *Loop) hasFrames() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.frames) > 0
}

func (l *Loop) runFrame() {
	l.mu.Lock()
	frames := l.frames
	l.frames = nil
	l.mu.Unlock()
	for _, fn := range frames {
		l.execute(fn)
	}
}

// execute runs one task followed by every microtask it queued.
func (l *Loop) execute(fn func()) {
	l.safe(fn)
	l.drainMicrotasks()
}

func (l *Loop) drainMicrotasks() {
	for {
		l.mu.Lock()
		if len(l.micro) == 0 {
			l.mu.Unlock()
			return
		}
		fn := l.micro[0]
		l.micro = l.micro[1:]
		l.mu.Unlock()
		l.safe(fn)
	}
}

func (l *Loop) safe(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("loop task panic",
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}
