// Package scheduler coalesces change notifications into frame-aligned render
// passes.
//
// A Batcher keeps a deduplicated set of dirty subjects. The first Add in an
// idle period asks the Host for one frame; when the frame runs, the pending
// set is snapshotted and cleared, each subject is rendered exactly once, and
// post-update hooks run afterwards in a microtask.
//
// Subjects that become dirty while a flush is running, including mutations
// made by render itself, are collected into the next batch and never
// re-enter the current one. Render loops therefore converge one frame at a
// time instead of recursing.
//
// Two hosts are provided: Loop, a single-goroutine event loop with a frame
// ticker used in production, and ManualHost, a deterministic clock for
// tests.
package scheduler
