// Package dom is the in-memory document model the lego runtime renders into.
//
// It models the parts of a browser DOM the runtime depends on: elements,
// text and comment nodes, open shadow roots, form-control properties
// (value and checked, which are distinct from their attributes), event
// dispatch with bubbling across shadow boundaries, and subtree mutation
// observation.
//
// Markup is parsed and serialized with golang.org/x/net/html, so the tree a
// template produces is the same tree a browser's fragment parser would
// produce for the same text.
//
// # Private Data
//
// Every node carries a private data slot keyed by any comparable value.
// The runtime stores per-node bookkeeping there (list pools, listener-bound
// flags, interpolation templates) instead of in side tables, so the data is
// reclaimed together with the node.
//
// # Concurrency
//
// A document is not safe for concurrent use. The runtime confines all DOM
// access to the scheduler's host goroutine.
package dom
