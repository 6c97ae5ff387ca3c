package scheduler

import "sync"

// ManualHost is a Host driven explicitly by the caller. Nothing runs until
// Frame, RunMicrotasks, RunTasks or Settle is called, which makes scheduling
// deterministic in tests.
type ManualHost struct {
	mu     sync.Mutex
	tasks  []func()
	frames []func()
	micro  []func()
	count  int
}

// NewManualHost returns an idle manual host.
func NewManualHost() *ManualHost { return &ManualHost{} }

// RequestFrame queues fn for the next Frame call.
func (h *ManualHost) RequestFrame(fn func()) {
	h.mu.Lock()
	h.frames = append(h.frames, fn)
	h.mu.Unlock()
}

// QueueMicrotask queues fn for the next microtask drain.
func (h *ManualHost) QueueMicrotask(fn func()) {
	h.mu.Lock()
	h.micro = append(h.micro, fn)
	h.mu.Unlock()
}

// Post queues fn as a task. It is safe to call from any goroutine.
func (h *ManualHost) Post(fn func()) bool {
	h.mu.Lock()
	h.tasks = append(h.tasks, fn)
	h.mu.Unlock()
	return true
}

// PendingFrames returns the number of queued frame callbacks.
func (h *ManualHost) PendingFrames() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.frames)
}

// Frames returns the number of frames run so far.
func (h *ManualHost) Frames() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

// Frame runs the callbacks queued before the call, then drains microtasks.
// Callbacks requested during the frame wait for the next one. It reports
// whether any callback ran.
func (h *ManualHost) Frame() bool {
	h.mu.Lock()
	frames := h.frames
	h.frames = nil
	if len(frames) > 0 {
		h.count++
	}
	h.mu.Unlock()
	for _, fn := range frames {
		fn()
		h.RunMicrotasks()
	}
	return len(frames) > 0
}

// RunMicrotasks drains the microtask queue, including microtasks queued
// while draining.
func (h *ManualHost) RunMicrotasks() {
	for {
		h.mu.Lock()
		if len(h.micro) == 0 {
			h.mu.Unlock()
			return
		}
		fn := h.micro[0]
		h.micro = h.micro[1:]
		h.mu.Unlock()
		fn()
	}
}

// RunTasks runs posted tasks, each followed by a microtask drain.
func (h *ManualHost) RunTasks() int {
	n := 0
	for {
		h.mu.Lock()
		if len(h.tasks) == 0 {
			h.mu.Unlock()
			return n
		}
		fn := h.tasks[0]
		h.tasks = h.tasks[1:]
		h.mu.Unlock()
		fn()
		h.RunMicrotasks()
		n++
	}
}

// Settle runs tasks, microtasks and frames until nothing is queued or max
// frames have run. It returns the number of frames run.
func (h *ManualHost) Settle(max int) int {
	frames := 0
	for frames < max {
		h.RunTasks()
		h.RunMicrotasks()
		if !h.Frame() {
			break
		}
		frames++
	}
	h.RunTasks()
	return frames
}
