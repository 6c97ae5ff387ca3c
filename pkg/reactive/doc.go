// Package reactive wraps plain state values in change-observing proxies.
//
// State is ordinary Go data in the shape JSON decoding produces:
// map[string]any for objects, []any for arrays, and scalars. Wrapping a
// container returns a proxy (*Object or *Array) whose accessors report
// writes to a Notifier:
//
//	cache := reactive.NewCache()
//	state := cache.Wrap(map[string]any{"count": 0.0}, func() {
//	    batcher.Add(instance)
//	}).(*reactive.Object)
//
//	state.Set("count", 1.0) // notifies once
//	state.Set("count", 1.0) // unchanged, no notification
//
// Nested containers are wrapped lazily on read, so the cost of deep
// reactivity is paid only for paths that are actually accessed.
//
// # Identity
//
// A Cache returns the same proxy for the same underlying map (or the same
// backing array and length for slices) for as long as that proxy is
// reachable. Entries are held through weak pointers and evicted by runtime
// cleanups, so a proxy never outlives its last user.
//
// Every proxy also carries a stable identity tag (ID) which the list
// reconciler uses as a key. The tag lives on the proxy; application data is
// never modified to hold it.
//
// # Concurrency
//
// Proxies are not safe for concurrent use; the runtime confines state
// access to its host goroutine. The Cache itself is safe for concurrent use
// because eviction runs on the runtime's cleanup goroutine.
package reactive
