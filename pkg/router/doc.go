// Package router maps URL paths to components and swaps them into the
// document.
//
// Routes are matched in registration order and the first match wins; there
// is no specificity ranking:
//
//	r := router.New(router.Config{Global: global, Document: app.Document})
//	r.Add("/users/:id", "user-page", router.RequireGlobal("user"))
//	r.Add("/files/*", "file-browser", nil)
//	r.Add("/", "home-page", nil)
//
// Navigate runs the matched route's middleware first and changes nothing if
// it refuses. A successful navigation publishes $route on the global state
// ({url, path, route, params, query, hash, method, body}) and replaces the
// children of each target with a fresh element of the route's tag. Targets
// are CSS selectors, "#id" lookups or a predicate over hyphenated elements,
// searched through shadow trees; with none found the lego-router outlet is
// used. The component manager attaches the new element when the mutation
// is observed.
//
// History stores each navigation as a msgpack-encoded Entry so Back and
// Forward replay the same targets, method and body.
package router
