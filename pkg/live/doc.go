// Package live serves a lego document to a browser and keeps it in sync
// over a WebSocket.
//
// Every page request builds a fresh App through the configured Factory
// and renders it on the server. The returned page carries the composed
// markup (shadow trees as declarative shadow roots) and a small client
// that opens a WebSocket for the session. From then on the browser
// forwards clicks, input and navigation to the server and receives the
// body markup after every render pass.
//
//	h := live.New(live.Config{
//	    Title: "Todo",
//	    Factory: func(r *http.Request, opts ...lego.Option) (*lego.App, error) {
//	        app, err := lego.New(opts...)
//	        if err != nil {
//	            return nil, err
//	        }
//	        // define components, load the page ...
//	        return app, nil
//	    },
//	})
//	http.ListenAndServe(":8080", h)
//
// # Protocol
//
// Messages are JSON objects. The client sends
//
//	{"type": "event", "event": "click", "path": ["0", "s", "1"]}
//	{"type": "event", "event": "input", "path": [...], "value": "milk"}
//	{"type": "navigate", "url": "/users/7"}
//	{"type": "back"} / {"type": "forward"}
//
// and receives
//
//	{"type": "hello", "session": "<id>"}
//	{"type": "html", "html": "<body markup>"}
//	{"type": "error", "error": "..."}
//
// A path locates an element from the body: each entry is an index among
// element children, and "s" steps into the shadow root of the current
// element.
//
// Sessions that are not claimed by a WebSocket within SessionTTL are
// discarded. Closing the socket stops the session's App.
package live
