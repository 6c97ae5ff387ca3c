package live

import "github.com/a-h/templ"

//go:generate templ generate -f shell.templ

// ShellData is the content of a page shell.
type ShellData struct {
	Title     string
	SessionID string
	Socket    string

	// Head is rendered inside <head>, for style sheets and meta tags.
	Head templ.Component

	// Body is trusted body markup produced by the runtime.
	Body string
}
