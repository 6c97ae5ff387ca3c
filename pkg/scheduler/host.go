package scheduler

// Host provides the two deferral points the runtime needs: the next frame
// and the microtask queue that drains after the current task.
type Host interface {
	RequestFrame(fn func())
	QueueMicrotask(fn func())
}

// Poster is implemented by hosts that accept work from other goroutines.
// Post reports whether fn was accepted.
type Poster interface {
	Post(fn func()) bool
}
