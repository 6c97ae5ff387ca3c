// Package errors provides coded, actionable errors for Lego tooling.
//
// Errors carry a code (e.g. "L001") that maps to a category, a short
// message, a longer explanation and a documentation URL. Source locations
// can point into a file on disk or into in-memory text such as a component
// fetched by a remote loader.
//
// # Categories
//
//   - component: definitions, templates and state literals
//   - sfc: single-file component parsing and naming
//   - router: route patterns and matching
//   - loader: remote component loading
//   - config: project configuration
//   - cli: command failures
//
// # Usage
//
//	err := errors.New("L001").
//	    WithSource("todoList.lego", src, 0).
//	    WithSuggestion(`Rename the file to "todo-list.lego"`)
//
//	fmt.Println(err.Format())
//
// A coded error matches any other error with the same code under
// errors.Is, so registered codes double as sentinels.
package errors
