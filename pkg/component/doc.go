// Package component defines components and manages their instances.
//
// A Definition pairs shadow tree markup with a Script holding state
// defaults, methods and lifecycle hooks. Definitions come from Go code,
// from <template b-component> elements via Registry.LoadTemplates, or from
// single-file components parsed by package sfc.
//
// The Manager upgrades elements whose tag is registered: it attaches a
// shadow root, clones the template into it, merges state from the script,
// the template's b-data and the element's b-data (later tiers win), wraps
// the state reactively and renders. Detaching runs unmounted hooks and
// removes the instance from the active set; reattaching the same element
// restores it with its state and runs mounted again.
//
// Expressions see a small set of helpers:
//
//	$ancestors(tag)    state of the nearest enclosing instance of tag
//	$registry(tag)     state shared by all instances of tag
//	$element(name?)    the host element, or a b-id reference
//	$route             the current route, when a router is installed
//	$go(url, targets)  navigate
//	$emit(name, data)  dispatch a custom event from the host
package component
